package schema

// Lists.

// ListTabsRequest asks for the collection with the list at TabID selected.
type ListTabsRequest struct {
	TabID TabID
}

// ListTabsResponse reports the collection and the resolved current list.
type ListTabsResponse struct {
	Tabs    Collection
	Current Tab
	// Replace is set when Current differs from the requested id and the
	// caller should replace its location rather than push a new one.
	Replace bool
	Notices []Notice
}

// CreateTabRequest describes a request to append a list.
type CreateTabRequest struct{}

// CreateTabResponse reports the appended list.
type CreateTabResponse struct {
	Tab Tab
}

// RemoveTabRequest describes a request to remove a list.
type RemoveTabRequest struct {
	TabID TabID
	// Confirmed carries the user's confirmation or a modifier-key bypass.
	Confirmed bool
}

// RemoveTabResponse reports the removed list and the new current list.
type RemoveTabResponse struct {
	Removed Tab
	Current Tab
}

// RenameTabRequest describes a request to rename a list.
type RenameTabRequest struct {
	TabID TabID
	Name  TabName
}

// SetPickCountRequest describes a pick count update from raw user input.
type SetPickCountRequest struct {
	TabID TabID
	Value string
}

// TabResponse reports a list after an update.
type TabResponse struct {
	Tab Tab
}

// Items.

// AddItemRequest describes a request to append an item.
type AddItemRequest struct {
	TabID TabID
}

// AddItemResponse reports the list and the appended item.
type AddItemResponse struct {
	Tab  Tab
	Item Item
}

// UpdateItemRequest describes a text edit.
type UpdateItemRequest struct {
	TabID TabID
	Item  Item
}

// RemoveItemRequest describes an item removal.
type RemoveItemRequest struct {
	TabID  TabID
	ItemID ItemID
}

// EditTabRequest applies several field edits to one list in one transition.
type EditTabRequest struct {
	TabID TabID
	// Name is applied when non-nil.
	Name *TabName
	// PickCount is applied when non-nil; invalid values are ignored.
	PickCount *string
	// Items are matched by id; unknown ids are ignored.
	Items []Item
}

// Randomisation.

// RandomizeRequest asks for new results on a list.
type RandomizeRequest struct {
	TabID TabID
}

// RandomizeOutcome describes what a submission did.
type RandomizeOutcome string

const (
	// OutcomeRandomized indicates new results were stored.
	OutcomeRandomized RandomizeOutcome = "randomized"
	// OutcomeItemAdded indicates there were too few items, so one was added.
	OutcomeItemAdded RandomizeOutcome = "item_added"
)

// RandomizeResponse reports the list after a submission.
type RandomizeResponse struct {
	Tab     Tab
	Outcome RandomizeOutcome
}

// Notices.

// AcknowledgeNoticesRequest clears notices up to and including UpTo.
// A zero UpTo clears everything pending.
type AcknowledgeNoticesRequest struct {
	UpTo int64
}

// AcknowledgeNoticesResponse reports how many notices were cleared.
type AcknowledgeNoticesResponse struct {
	Cleared int
}
