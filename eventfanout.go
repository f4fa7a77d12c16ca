package ahalaj

import (
	"context"
	"errors"

	"pkt.systems/ahalaj/core"
	"pkt.systems/ahalaj/schema"
)

type eventFanout struct {
	listeners []core.Listener
}

// OnCollectionChanged delivers the event to every listener, in order, and
// joins their errors.
func (f eventFanout) OnCollectionChanged(ctx context.Context, event schema.ChangeEvent) error {
	var errs []error
	for _, listener := range f.listeners {
		if listener == nil {
			continue
		}
		if err := listener.OnCollectionChanged(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
