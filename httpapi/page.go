package httpapi

import (
	"strconv"

	"pkt.systems/ahalaj/core"
	"pkt.systems/ahalaj/internal/colour"
	"pkt.systems/ahalaj/schema"
)

const fallbackResultsColour = "#cccccc"

// page is the template model for a list form.
type page struct {
	Title        string
	BaseHref     string
	AssetBase    string
	StreamURL    string
	Action       string
	NoticeAction string

	Tabs          []tabLink
	Tab           schema.Tab
	TabName       string
	PickCount     string
	Items         []itemRow
	CanRemoveList bool
	CanRemoveItem bool
	ShowAll       bool

	Results    resultsView
	Notices    []schema.Notice
	NoticeUpTo int64
	Error      string
	Confirm    bool
}

type tabLink struct {
	Name    string
	Label   string
	Href    string
	Current bool
}

type itemRow struct {
	ID    string
	Field string
	Text  string
}

type resultsView struct {
	Visible    bool
	CanShowAll bool
	ShowAll    bool
	ToggleHref string
	Groups     []resultGroup
}

type resultGroup struct {
	Heading string
	Colour  string
	Entries []resultEntry
}

type resultEntry struct {
	Text   string
	Picked bool
}

func (s *Server) buildPage(resp schema.ListTabsResponse, showAll bool) page {
	current := resp.Current
	view := core.BuildResultView(resp.Tabs, current, showAll)
	data := page{
		Title:         core.Title(current, s.cfg.Title),
		BaseHref:      s.baseHref,
		AssetBase:     s.basePath + "/assets",
		Action:        s.formPath(current.ID, false),
		NoticeAction:  s.basePath + "/notices/ack",
		Tab:           current,
		TabName:       current.DisplayName(),
		PickCount:     strconv.Itoa(current.TargetPickCount),
		CanRemoveList: len(resp.Tabs) > 1,
		CanRemoveItem: len(current.Items) > 1,
		ShowAll:       view.ShowAll,
		Notices:       resp.Notices,
		Results: resultsView{
			Visible:    view.Visible,
			CanShowAll: view.CanShowAll,
			ShowAll:    view.ShowAll,
			ToggleHref: s.formPath(current.ID, !view.ShowAll),
		},
	}
	if s.bus != nil {
		data.StreamURL = s.basePath + "/api/stream"
	}
	if n := len(resp.Notices); n > 0 {
		data.NoticeUpTo = resp.Notices[n-1].ID
	}
	for _, tab := range resp.Tabs {
		data.Tabs = append(data.Tabs, tabLink{
			Name:    tab.DisplayName(),
			Label:   core.TabLabel(tab),
			Href:    s.formPath(tab.ID, view.ShowAll),
			Current: tab.ID == current.ID,
		})
	}
	for _, item := range current.Items {
		data.Items = append(data.Items, itemRow{
			ID:    item.ID.String(),
			Field: itemField(item.ID),
			Text:  item.Text,
		})
	}
	for _, group := range view.Groups {
		out := resultGroup{
			Heading: group.Heading,
			Colour:  colour.Hex(group.Colour, fallbackResultsColour),
		}
		for _, entry := range group.Entries {
			out.Entries = append(out.Entries, resultEntry{Text: entry.Item.Text, Picked: entry.Picked})
		}
		data.Results.Groups = append(data.Results.Groups, out)
	}
	return data
}
