package core

import (
	"math"

	"github.com/google/uuid"
	"pkt.systems/ahalaj/schema"
)

// IDSource allocates list ids.
type IDSource interface {
	NewTabID() schema.TabID
}

// UUIDSource allocates random version 4 UUIDs.
type UUIDSource struct{}

// NewTabID returns a fresh UUID.
func (UUIDSource) NewTabID() schema.TabID {
	return schema.TabID(uuid.NewString())
}

// NextItemID returns an id above every id already used in the tab.
func NextItemID(tab schema.Tab) schema.ItemID {
	var highest schema.ItemID
	for _, item := range tab.Items {
		if item.ID > highest {
			highest = item.ID
		}
	}
	return schema.ItemID(math.Floor(float64(highest))) + 1
}
