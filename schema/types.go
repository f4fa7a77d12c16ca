package schema

import (
	"math"
	"strconv"
	"strings"
)

// TabID identifies a list.
type TabID string

// TabName is the user-facing name of a list.
type TabName string

// ItemID identifies an item within a list.
//
// Stored blobs written by older clients carry fractional ids, so the type is
// a float and new ids are allocated as integers above the current maximum.
type ItemID float64

// String renders the id the same way it is written to the wire.
func (id ItemID) String() string {
	return strconv.FormatFloat(float64(id), 'g', -1, 64)
}

// ParseItemID parses an id previously rendered with String.
func ParseItemID(raw string) (ItemID, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrItemNotFound
	}
	return ItemID(value), nil
}

// Colour is a CSS colour token such as "hsl(120, 100%, 70%)".
type Colour string

// Item is a single text candidate within a list.
type Item struct {
	ID   ItemID `json:"id"`
	Text string `json:"text"`
}

// Blank reports whether the item text is empty after trimming.
func (i Item) Blank() bool {
	return strings.TrimSpace(i.Text) == ""
}

// Tab is one named list with its items and last randomisation.
type Tab struct {
	ID              TabID    `json:"id"`
	Name            TabName  `json:"name"`
	Items           []Item   `json:"data"`
	TargetPickCount int      `json:"itemCount"`
	Results         []ItemID `json:"results"`
	ResultsColour   Colour   `json:"resultsColour,omitempty"`
}

// Clone returns a deep copy of the tab.
func (t Tab) Clone() Tab {
	out := t
	out.Items = append([]Item(nil), t.Items...)
	if t.Results != nil {
		out.Results = append([]ItemID{}, t.Results...)
	} else {
		out.Results = []ItemID{}
	}
	return out
}

// Item returns the item with the given id.
func (t Tab) Item(id ItemID) (Item, bool) {
	for _, item := range t.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// HasResults reports whether the list has been randomised.
func (t Tab) HasResults() bool {
	return len(t.Results) > 0
}

// DisplayName returns the name, or "#<id>" when the name is empty.
func (t Tab) DisplayName() string {
	if t.Name == "" {
		return "#" + string(t.ID)
	}
	return string(t.Name)
}

// Collection is the ordered set of lists. It is never empty once loaded.
type Collection []Tab

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, tab := range c {
		out[i] = tab.Clone()
	}
	return out
}

// Index returns the position of the tab with the given id, or -1.
func (c Collection) Index(id TabID) int {
	for i, tab := range c {
		if tab.ID == id {
			return i
		}
	}
	return -1
}

// Tab returns the tab with the given id.
func (c Collection) Tab(id TabID) (Tab, bool) {
	if idx := c.Index(id); idx >= 0 {
		return c[idx], true
	}
	return Tab{}, false
}
