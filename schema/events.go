package schema

import "time"

// ChangeType describes what kind of mutation produced a collection snapshot.
type ChangeType string

const (
	// ChangeLoaded indicates the collection was loaded or defaulted at startup.
	ChangeLoaded ChangeType = "loaded"
	// ChangeTabCreated indicates a list was appended.
	ChangeTabCreated ChangeType = "tab_created"
	// ChangeTabRemoved indicates a list was removed.
	ChangeTabRemoved ChangeType = "tab_removed"
	// ChangeTabUpdated indicates a list name or pick count changed.
	ChangeTabUpdated ChangeType = "tab_updated"
	// ChangeItemsUpdated indicates items were added, edited or removed.
	ChangeItemsUpdated ChangeType = "items_updated"
	// ChangeRandomized indicates new results were stored.
	ChangeRandomized ChangeType = "randomized"
)

// ChangeEvent is emitted after every collection mutation.
type ChangeEvent struct {
	Type       ChangeType
	TabID      TabID
	Collection Collection
	// Persist is false for events that must not be written back, such as a
	// load that fell back to defaults after a read failure.
	Persist bool
}

// NoticeKind classifies user-facing notices.
type NoticeKind string

const (
	// NoticeStorageRead reports a failed load.
	NoticeStorageRead NoticeKind = "storage_read"
	// NoticeStorageWrite reports a failed save.
	NoticeStorageWrite NoticeKind = "storage_write"
)

// Notice is a blocking message that stays pending until acknowledged.
type Notice struct {
	ID      int64
	Kind    NoticeKind
	Message string
	At      time.Time
}
