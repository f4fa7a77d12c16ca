package core

import (
	"fmt"
	"strings"

	"pkt.systems/ahalaj/schema"
)

// NewTab builds a fresh list with one blank item. ordinal is the list's
// one-based position and only feeds the generated name.
func NewTab(cfg schema.ServiceConfig, id schema.TabID, ordinal int) schema.Tab {
	return schema.Tab{
		ID:              id,
		Name:            schema.TabName(fmt.Sprintf("%s %d", cfg.NamePrefix, ordinal)),
		Items:           []schema.Item{{ID: 1, Text: ""}},
		TargetPickCount: cfg.DefaultPickCount,
		Results:         []schema.ItemID{},
	}
}

// DefaultCollection returns the collection used when nothing is stored.
func DefaultCollection(cfg schema.ServiceConfig, ids IDSource) schema.Collection {
	return schema.Collection{NewTab(cfg, ids.NewTabID(), 1)}
}

// CreateTab appends a fresh list.
func CreateTab(c schema.Collection, cfg schema.ServiceConfig, ids IDSource) (schema.Collection, schema.Tab) {
	tab := NewTab(cfg, ids.NewTabID(), len(c)+1)
	out := make(schema.Collection, 0, len(c)+1)
	out = append(out, c...)
	out = append(out, tab)
	return out, tab
}

// RemoveTab removes a list. Removal needs confirmation, and the last list
// can never be removed.
func RemoveTab(c schema.Collection, id schema.TabID, confirmed bool) (schema.Collection, error) {
	idx := c.Index(id)
	if idx < 0 {
		return c, schema.ErrTabNotFound
	}
	if len(c) <= 1 {
		return c, schema.ErrLastTab
	}
	if !confirmed {
		return c, schema.ErrConfirmationRequired
	}
	out := make(schema.Collection, 0, len(c)-1)
	out = append(out, c[:idx]...)
	out = append(out, c[idx+1:]...)
	return out, nil
}

// ReplaceTab returns a collection with the tab of the same id replaced.
func ReplaceTab(c schema.Collection, tab schema.Tab) schema.Collection {
	out := make(schema.Collection, len(c))
	copy(out, c)
	if idx := out.Index(tab.ID); idx >= 0 {
		out[idx] = tab
	}
	return out
}

// CurrentTab resolves the requested list, falling back to the last one.
// The collection must not be empty.
func CurrentTab(c schema.Collection, requested schema.TabID) (schema.Tab, error) {
	if len(c) == 0 {
		return schema.Tab{}, schema.ErrEmptyCollection
	}
	if requested != "" {
		if tab, ok := c.Tab(requested); ok {
			return tab, nil
		}
	}
	return c[len(c)-1], nil
}

// AddItem appends an item whose text continues the numbering of the
// previous item, if it has any.
func AddItem(tab schema.Tab) (schema.Tab, schema.Item) {
	text := ""
	if n := len(tab.Items); n > 0 {
		text = NextItemText(tab.Items[n-1].Text)
	}
	item := schema.Item{ID: NextItemID(tab), Text: text}
	out := tab.Clone()
	out.Items = append(out.Items, item)
	return out, item
}

// NextItemText adds one to the first number in prev. Text without digits
// yields an empty string. "Item 9" becomes "Item 10", "007" becomes "008"
// and "-3 x" becomes "-2 x"; a minus sign counts when it starts the text or
// follows a space.
func NextItemText(prev string) string {
	start := strings.IndexFunc(prev, isDigit)
	if start < 0 {
		return ""
	}
	end := start
	for end < len(prev) && isDigit(rune(prev[end])) {
		end++
	}
	digits := prev[start:end]
	if !negativeAt(prev, start) {
		return prev[:start] + incrementDigits(digits) + prev[end:]
	}
	if isZero(digits) {
		return prev[:start-1] + "1" + prev[end:]
	}
	next := decrementDigits(digits)
	sign := "-"
	if isZero(next) {
		sign = ""
	}
	return prev[:start-1] + sign + next + prev[end:]
}

func negativeAt(text string, start int) bool {
	if start == 0 || text[start-1] != '-' {
		return false
	}
	return start == 1 || text[start-2] == ' '
}

func isZero(digits string) bool {
	return strings.Trim(digits, "0") == ""
}

// decrementDigits subtracts one from a non-zero digit run. Leading zeros
// are kept only when the input had them.
func decrementDigits(digits string) string {
	buf := []byte(digits)
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i] > '0' {
			buf[i]--
			break
		}
		buf[i] = '9'
	}
	if digits[0] == '0' {
		return string(buf)
	}
	if trimmed := strings.TrimLeft(string(buf), "0"); trimmed != "" {
		return trimmed
	}
	return "0"
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func incrementDigits(digits string) string {
	buf := []byte(digits)
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i] < '9' {
			buf[i]++
			return string(buf)
		}
		buf[i] = '0'
	}
	return "1" + string(buf)
}

// UpdateItem replaces the item with the same id. Unknown ids are ignored.
func UpdateItem(tab schema.Tab, item schema.Item) schema.Tab {
	out := tab.Clone()
	for i := range out.Items {
		if out.Items[i].ID == item.ID {
			out.Items[i] = item
		}
	}
	return out
}

// RemoveItem removes an item. The sole remaining item cannot be removed.
func RemoveItem(tab schema.Tab, id schema.ItemID) (schema.Tab, error) {
	if _, ok := tab.Item(id); !ok {
		return tab, schema.ErrItemNotFound
	}
	if len(tab.Items) <= 1 {
		return tab, schema.ErrLastItem
	}
	out := tab.Clone()
	out.Items = out.Items[:0]
	for _, item := range tab.Items {
		if item.ID != id {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

// RenameTab sets the list name.
func RenameTab(tab schema.Tab, name schema.TabName) schema.Tab {
	out := tab.Clone()
	out.Name = name
	return out
}

// SetTargetPickCount validates raw input and stores it. Invalid input keeps
// the previous value and reports schema.ErrInvalidPickCount.
func SetTargetPickCount(tab schema.Tab, raw string) (schema.Tab, error) {
	value, err := schema.ParsePickCount(raw)
	if err != nil {
		return tab, err
	}
	out := tab.Clone()
	out.TargetPickCount = value
	return out, nil
}
