package eventbus

import (
	"context"
	"sync"

	"pkt.systems/ahalaj/schema"
	"pkt.systems/pslog"
)

// Event is a collection change delivered to live sessions.
type Event struct {
	schema.ChangeEvent
	// Origin identifies the session that caused the change, if known.
	Origin string
}

type originKey struct{}

// WithOrigin tags changes made with ctx as coming from origin.
func WithOrigin(ctx context.Context, origin string) context.Context {
	if ctx == nil || origin == "" {
		return ctx
	}
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFromContext returns the origin set with WithOrigin.
func OriginFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	origin, _ := ctx.Value(originKey{}).(string)
	return origin
}

// Bus fans collection changes out to subscribers.
type Bus struct {
	mu    sync.Mutex
	subs  map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[chan Event]struct{}),
		log:   logger,
		depth: 64,
	}
}

// Subscribe registers a subscriber and returns a channel + cancel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()
	b.log.Debug("eventbus subscribe", "subs", count)
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			close(ch)
			b.mu.Unlock()
			b.log.Debug("eventbus unsubscribe")
		})
	}
}

// OnCollectionChanged publishes the change. It never fails and never blocks.
func (b *Bus) OnCollectionChanged(ctx context.Context, event schema.ChangeEvent) error {
	b.publish(Event{ChangeEvent: event, Origin: OriginFromContext(ctx)})
	return nil
}

func (b *Bus) publish(event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	dropped := 0
	for sub := range b.subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		b.log.Trace("eventbus dropped", "count", dropped, "change", string(event.Type))
	}
}
