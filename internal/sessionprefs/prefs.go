package sessionprefs

import (
	"context"
	"sync"

	"pkt.systems/ahalaj/schema"
)

// Prefs captures per-session view state. Surfaces without a location (the
// SSH shell and the TUI) keep their current list here.
type Prefs struct {
	mu         sync.Mutex
	currentTab schema.TabID
	showAll    bool
}

type prefsKey struct{}

// New returns a new Prefs instance with defaults applied.
func New() *Prefs {
	return &Prefs{}
}

// CurrentTab returns the list selected in this session.
func (p *Prefs) CurrentTab() schema.TabID {
	if p == nil {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentTab
}

// SetCurrentTab selects a list for this session.
func (p *Prefs) SetCurrentTab(id schema.TabID) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.currentTab = id
	p.mu.Unlock()
}

// ShowAll reports whether results of every list are shown.
func (p *Prefs) ShowAll() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.showAll
}

// SetShowAll toggles the all-lists results view.
func (p *Prefs) SetShowAll(value bool) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.showAll = value
	p.mu.Unlock()
}

// WithContext stores prefs in the context.
func WithContext(ctx context.Context, prefs *Prefs) context.Context {
	if ctx == nil || prefs == nil {
		return ctx
	}
	return context.WithValue(ctx, prefsKey{}, prefs)
}

// FromContext returns the prefs stored in the context, if any.
func FromContext(ctx context.Context) *Prefs {
	if ctx == nil {
		return nil
	}
	if value := ctx.Value(prefsKey{}); value != nil {
		if prefs, ok := value.(*Prefs); ok {
			return prefs
		}
	}
	return nil
}
