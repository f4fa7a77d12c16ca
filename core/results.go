package core

import (
	"fmt"

	"pkt.systems/ahalaj/schema"
)

// ResultEntry is one resolved position of a list's results.
type ResultEntry struct {
	Position int
	Item     schema.Item
	Picked   bool
}

// ResultGroup holds the displayed results of one list.
type ResultGroup struct {
	TabID   schema.TabID
	Heading string
	Colour  schema.Colour
	Entries []ResultEntry
}

// ResultView is what a surface needs to render results.
type ResultView struct {
	// Visible is false when the current list has no results.
	Visible bool
	// CanShowAll is set when more than one list has results.
	CanShowAll bool
	// ShowAll is the effective toggle state.
	ShowAll bool
	Groups  []ResultGroup
}

// Entries resolves a list's results in order. Dangling ids are skipped but
// still count towards the picked positions.
func Entries(tab schema.Tab) []ResultEntry {
	out := make([]ResultEntry, 0, len(tab.Results))
	for pos, id := range tab.Results {
		item, ok := tab.Item(id)
		if !ok {
			continue
		}
		out = append(out, ResultEntry{
			Position: pos,
			Item:     item,
			Picked:   pos < tab.TargetPickCount,
		})
	}
	return out
}

// Picked returns the items in the picked positions.
func Picked(tab schema.Tab) []schema.Item {
	var out []schema.Item
	for _, entry := range Entries(tab) {
		if entry.Picked {
			out = append(out, entry.Item)
		}
	}
	return out
}

// BuildResultView assembles the results for the current list, or the picked
// results of every list when showAll is requested and available.
func BuildResultView(c schema.Collection, current schema.Tab, showAll bool) ResultView {
	withResults := 0
	for _, tab := range c {
		if tab.HasResults() {
			withResults++
		}
	}
	view := ResultView{
		Visible:    current.HasResults(),
		CanShowAll: withResults > 1,
	}
	if !view.Visible {
		return view
	}
	view.ShowAll = showAll && view.CanShowAll
	if !view.ShowAll {
		view.Groups = []ResultGroup{{
			TabID:   current.ID,
			Colour:  current.ResultsColour,
			Entries: Entries(current),
		}}
		return view
	}
	for _, tab := range c {
		if !tab.HasResults() {
			continue
		}
		group := ResultGroup{
			TabID:   tab.ID,
			Heading: fmt.Sprintf("List: %s (%d out of %d)", tab.Name, tab.TargetPickCount, len(tab.Items)),
			Colour:  tab.ResultsColour,
		}
		for _, entry := range Entries(tab) {
			if entry.Picked {
				group.Entries = append(group.Entries, entry)
			}
		}
		view.Groups = append(view.Groups, group)
	}
	return view
}

// TabLabel returns "<picked>/<results>" for a randomised list, or "".
func TabLabel(tab schema.Tab) string {
	if !tab.HasResults() {
		return ""
	}
	return fmt.Sprintf("%d/%d", tab.TargetPickCount, len(tab.Results))
}

// Title returns the window title for a list.
func Title(tab schema.Tab, appTitle string) string {
	return fmt.Sprintf("%s | %s", tab.Name, appTitle)
}
