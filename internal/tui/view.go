package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pkt.systems/ahalaj/core"
	"pkt.systems/ahalaj/internal/colour"
)

const fallbackResultsColour = "#cccccc"

var (
	tabStyle        = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	currentTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Reverse(true)
	labelStyle      = lipgloss.NewStyle().Width(8).Foreground(lipgloss.Color("245"))
	focusedColour   = lipgloss.Color("212")
	headingStyle    = lipgloss.NewStyle().Bold(true)
	pickedStyle     = lipgloss.NewStyle().Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dialogStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2).BorderForeground(lipgloss.Color("9"))
)

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.notices) > 0 {
		return m.viewNotices()
	}
	var b strings.Builder
	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")
	b.WriteString(m.viewFields())
	if results := m.viewResults(); results != "" {
		b.WriteString("\n")
		b.WriteString(results)
	}
	b.WriteString("\n")
	if m.confirming {
		b.WriteString(dialogStyle.Render(fmt.Sprintf("Remove list %q? (y/n)", m.current.DisplayName())))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Width(max(m.width, 40)).Render(helpText))
	return b.String()
}

func (m *Model) viewTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for _, tab := range m.tabs {
		label := tab.DisplayName()
		if extra := core.TabLabel(tab); extra != "" {
			label += " " + extra
		}
		style := tabStyle
		if tab.ID == m.current.ID {
			style = currentTabStyle
		}
		parts = append(parts, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) viewFields() string {
	var b strings.Builder
	for i, input := range m.inputs {
		label := ""
		switch {
		case i == fieldName:
			label = "Name"
		case i == fieldPick:
			label = "Pick"
		default:
			label = fmt.Sprintf("%d.", i-fieldFirstItem+1)
		}
		style := labelStyle
		if i == m.focus {
			style = style.Foreground(focusedColour)
		}
		b.WriteString(style.Render(label))
		b.WriteString(input.View())
		b.WriteString("\n")
		if i == fieldPick {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) viewResults() string {
	view := core.BuildResultView(m.tabs, m.current, m.prefs.ShowAll())
	if !view.Visible {
		return ""
	}
	var b strings.Builder
	heading := "Results"
	if view.CanShowAll {
		heading += helpStyle.Render(" (^t toggles all lists)")
	}
	b.WriteString(headingStyle.Render(heading))
	b.WriteString("\n")
	for _, group := range view.Groups {
		bg := lipgloss.Color(colour.Hex(group.Colour, fallbackResultsColour))
		block := lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color("#000000")).Padding(0, 1)
		var lines []string
		if group.Heading != "" {
			lines = append(lines, headingStyle.Render(group.Heading))
		}
		for i, entry := range group.Entries {
			line := fmt.Sprintf("%2d. %s", i+1, entry.Item.Text)
			if entry.Picked {
				line = pickedStyle.Render(line)
			}
			lines = append(lines, line)
		}
		b.WriteString(block.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) viewNotices() string {
	lines := make([]string, 0, len(m.notices)+2)
	for _, notice := range m.notices {
		lines = append(lines, notice.Message)
	}
	lines = append(lines, "", "Press enter to continue.")
	return dialogStyle.Render(strings.Join(lines, "\n"))
}
