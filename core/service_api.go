package core

import (
	"context"

	"pkt.systems/ahalaj/schema"
)

// Service is the transport-agnostic API for managing lists and their results.
type Service interface {
	ListTabs(ctx context.Context, req schema.ListTabsRequest) (schema.ListTabsResponse, error)
	CreateTab(ctx context.Context, req schema.CreateTabRequest) (schema.CreateTabResponse, error)
	RemoveTab(ctx context.Context, req schema.RemoveTabRequest) (schema.RemoveTabResponse, error)
	RenameTab(ctx context.Context, req schema.RenameTabRequest) (schema.TabResponse, error)
	SetPickCount(ctx context.Context, req schema.SetPickCountRequest) (schema.TabResponse, error)
	EditTab(ctx context.Context, req schema.EditTabRequest) (schema.TabResponse, error)
	AddItem(ctx context.Context, req schema.AddItemRequest) (schema.AddItemResponse, error)
	UpdateItem(ctx context.Context, req schema.UpdateItemRequest) (schema.TabResponse, error)
	RemoveItem(ctx context.Context, req schema.RemoveItemRequest) (schema.TabResponse, error)
	Randomize(ctx context.Context, req schema.RandomizeRequest) (schema.RandomizeResponse, error)
	Notices(ctx context.Context) []schema.Notice
	AcknowledgeNotices(ctx context.Context, req schema.AcknowledgeNoticesRequest) (schema.AcknowledgeNoticesResponse, error)
	Config() schema.ServiceConfig
}

// Loader reads the stored collection. A missing collection reports
// found=false with a nil error.
type Loader interface {
	Load(ctx context.Context) (schema.Collection, bool, error)
}

// Listener is notified after every collection change.
type Listener interface {
	OnCollectionChanged(ctx context.Context, event schema.ChangeEvent) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, event schema.ChangeEvent) error

// OnCollectionChanged calls f.
func (f ListenerFunc) OnCollectionChanged(ctx context.Context, event schema.ChangeEvent) error {
	return f(ctx, event)
}
