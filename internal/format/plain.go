// Package format renders lists and results as plain text lines.
package format

import (
	"fmt"
	"strings"

	"pkt.systems/ahalaj/core"
	"pkt.systems/ahalaj/schema"
)

// PickedMarker prefixes picked results.
const PickedMarker = "Picked"

// PlainRenderer formats lists as plain text lines.
type PlainRenderer struct{}

// NewPlainRenderer returns a default plain-text renderer.
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// Tabs lists every list with its position; the current one is starred.
func (p *PlainRenderer) Tabs(c schema.Collection, current schema.TabID) []string {
	lines := make([]string, 0, len(c))
	for i, tab := range c {
		marker := " "
		if tab.ID == current {
			marker = "*"
		}
		line := fmt.Sprintf("%s %d. %s", marker, i+1, tab.DisplayName())
		if label := core.TabLabel(tab); label != "" {
			line += fmt.Sprintf(" (%s)", label)
		}
		lines = append(lines, line)
	}
	return lines
}

// Items lists a list's items by position.
func (p *PlainRenderer) Items(tab schema.Tab) []string {
	lines := []string{fmt.Sprintf("%s (pick %d)", tab.DisplayName(), tab.TargetPickCount)}
	for i, item := range tab.Items {
		text := item.Text
		if item.Blank() {
			text = "(blank)"
		}
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, text))
	}
	return lines
}

// Results renders a result view.
func (p *PlainRenderer) Results(view core.ResultView) []string {
	if !view.Visible {
		return []string{"No results yet."}
	}
	lines := []string{"Results:"}
	for _, group := range view.Groups {
		if group.Heading != "" {
			lines = append(lines, group.Heading)
		}
		for i, entry := range group.Entries {
			prefix := strings.Repeat(" ", len(PickedMarker))
			if entry.Picked {
				prefix = PickedMarker
			}
			lines = append(lines, fmt.Sprintf("  %2d. %s %s", i+1, prefix, entry.Item.Text))
		}
	}
	if view.CanShowAll && !view.ShowAll {
		lines = append(lines, "(more lists have results; use \"results all\")")
	}
	return lines
}

// Notices renders pending notices.
func (p *PlainRenderer) Notices(notices []schema.Notice) []string {
	lines := make([]string, 0, len(notices))
	for _, notice := range notices {
		lines = append(lines, fmt.Sprintf("! %s", notice.Message))
	}
	return lines
}
