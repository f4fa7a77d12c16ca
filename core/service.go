package core

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"pkt.systems/ahalaj/internal/logx"
	"pkt.systems/ahalaj/internal/sessionprefs"
	"pkt.systems/ahalaj/schema"
	"pkt.systems/pslog"
)

// service implements the core service behavior.
type service struct {
	cfg      schema.ServiceConfig
	listener Listener
	ids      IDSource
	rand     *rand.Rand
	logger   pslog.Logger
	now      func() time.Time

	mu         sync.Mutex
	collection schema.Collection
	notices    []schema.Notice
	noticeSeq  int64
}

// NewService constructs the service and loads the stored collection. A
// read failure does not fail construction: the default collection is used
// and a notice stays pending until acknowledged.
//
// Listeners run while the service lock is held and must not call back into
// the service.
func NewService(ctx context.Context, cfg schema.ServiceConfig, deps ServiceDeps) (Service, error) {
	normalized, err := schema.NormalizeServiceConfig(cfg)
	if err != nil {
		return nil, err
	}
	if deps.IDs == nil {
		deps.IDs = UUIDSource{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(ctx)
	}
	s := &service{
		cfg:      normalized,
		listener: deps.Listener,
		ids:      deps.IDs,
		rand:     deps.Rand,
		logger:   logger,
		now:      time.Now,
	}
	s.load(ctx, deps.Loader)
	return s, nil
}

func (s *service) load(ctx context.Context, loader Loader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	persist := false
	if loader != nil {
		collection, found, err := loader.Load(ctx)
		switch {
		case err != nil:
			s.addNoticeLocked(schema.NoticeStorageRead, err)
			s.logger.Warn("state load failed, using default lists", "err", err)
		case found:
			s.collection = collection
		default:
			persist = true
		}
	}
	defaulted := len(s.collection) == 0
	if defaulted {
		s.collection = DefaultCollection(s.cfg, s.ids)
	}
	s.logger.Info("lists loaded", "tabs", len(s.collection), "defaulted", defaulted)
	s.emitLocked(ctx, schema.ChangeEvent{
		Type:    schema.ChangeLoaded,
		TabID:   s.collection[len(s.collection)-1].ID,
		Persist: persist,
	})
}

func (s *service) Config() schema.ServiceConfig {
	return s.cfg
}

func (s *service) ListTabs(ctx context.Context, req schema.ListTabsRequest) (schema.ListTabsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	requested := req.TabID
	if requested == "" {
		requested = sessionprefs.FromContext(ctx).CurrentTab()
	}
	current, err := CurrentTab(s.collection, requested)
	if err != nil {
		return schema.ListTabsResponse{}, err
	}
	return schema.ListTabsResponse{
		Tabs:    s.collection.Clone(),
		Current: current.Clone(),
		Replace: current.ID != req.TabID,
		Notices: append([]schema.Notice(nil), s.notices...),
	}, nil
}

func (s *service) CreateTab(ctx context.Context, _ schema.CreateTabRequest) (schema.CreateTabResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	collection, tab := CreateTab(s.collection, s.cfg, s.ids)
	s.collection = collection
	sessionprefs.FromContext(ctx).SetCurrentTab(tab.ID)
	logx.WithTab(ctx, tab.ID).Info("list created", "name", tab.Name, "tabs", len(collection))
	s.emitLocked(ctx, schema.ChangeEvent{Type: schema.ChangeTabCreated, TabID: tab.ID, Persist: true})
	return schema.CreateTabResponse{Tab: tab.Clone()}, nil
}

func (s *service) RemoveTab(ctx context.Context, req schema.RemoveTabRequest) (schema.RemoveTabResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, err := s.resolveLocked(ctx, req.TabID)
	if err != nil {
		return schema.RemoveTabResponse{}, err
	}
	log := logx.WithTab(ctx, target.ID)
	collection, err := RemoveTab(s.collection, target.ID, req.Confirmed)
	if err != nil {
		log.Debug("list remove rejected", "err", err)
		return schema.RemoveTabResponse{}, err
	}
	s.collection = collection
	prefs := sessionprefs.FromContext(ctx)
	if prefs.CurrentTab() == target.ID {
		prefs.SetCurrentTab("")
	}
	current, _ := CurrentTab(collection, prefs.CurrentTab())
	log.Info("list removed", "name", target.Name, "tabs", len(collection))
	s.emitLocked(ctx, schema.ChangeEvent{Type: schema.ChangeTabRemoved, TabID: target.ID, Persist: true})
	return schema.RemoveTabResponse{Removed: target.Clone(), Current: current.Clone()}, nil
}

func (s *service) RenameTab(ctx context.Context, req schema.RenameTabRequest) (schema.TabResponse, error) {
	tab, err := s.updateTab(ctx, req.TabID, schema.ChangeTabUpdated, func(tab schema.Tab) (schema.Tab, error) {
		return RenameTab(tab, req.Name), nil
	})
	return schema.TabResponse{Tab: tab}, err
}

func (s *service) SetPickCount(ctx context.Context, req schema.SetPickCountRequest) (schema.TabResponse, error) {
	tab, err := s.updateTab(ctx, req.TabID, schema.ChangeTabUpdated, func(tab schema.Tab) (schema.Tab, error) {
		return SetTargetPickCount(tab, req.Value)
	})
	return schema.TabResponse{Tab: tab}, err
}

func (s *service) EditTab(ctx context.Context, req schema.EditTabRequest) (schema.TabResponse, error) {
	tab, err := s.updateTab(ctx, req.TabID, schema.ChangeTabUpdated, func(tab schema.Tab) (schema.Tab, error) {
		if req.Name != nil {
			tab = RenameTab(tab, *req.Name)
		}
		if req.PickCount != nil {
			if updated, err := SetTargetPickCount(tab, *req.PickCount); err == nil {
				tab = updated
			} else {
				logx.WithTab(ctx, tab.ID).Debug("pick count ignored", "value", *req.PickCount)
			}
		}
		for _, item := range req.Items {
			tab = UpdateItem(tab, item)
		}
		return tab, nil
	})
	return schema.TabResponse{Tab: tab}, err
}

func (s *service) AddItem(ctx context.Context, req schema.AddItemRequest) (schema.AddItemResponse, error) {
	var added schema.Item
	tab, err := s.updateTab(ctx, req.TabID, schema.ChangeItemsUpdated, func(tab schema.Tab) (schema.Tab, error) {
		var out schema.Tab
		out, added = AddItem(tab)
		return out, nil
	})
	return schema.AddItemResponse{Tab: tab, Item: added}, err
}

func (s *service) UpdateItem(ctx context.Context, req schema.UpdateItemRequest) (schema.TabResponse, error) {
	tab, err := s.updateTab(ctx, req.TabID, schema.ChangeItemsUpdated, func(tab schema.Tab) (schema.Tab, error) {
		if _, ok := tab.Item(req.Item.ID); !ok {
			return tab, schema.ErrItemNotFound
		}
		return UpdateItem(tab, req.Item), nil
	})
	return schema.TabResponse{Tab: tab}, err
}

func (s *service) RemoveItem(ctx context.Context, req schema.RemoveItemRequest) (schema.TabResponse, error) {
	tab, err := s.updateTab(ctx, req.TabID, schema.ChangeItemsUpdated, func(tab schema.Tab) (schema.Tab, error) {
		return RemoveItem(tab, req.ItemID)
	})
	return schema.TabResponse{Tab: tab}, err
}

func (s *service) Randomize(ctx context.Context, req schema.RandomizeRequest) (schema.RandomizeResponse, error) {
	var outcome schema.RandomizeOutcome
	tab, err := s.updateTab(ctx, req.TabID, schema.ChangeRandomized, func(tab schema.Tab) (schema.Tab, error) {
		var out schema.Tab
		out, outcome = Randomize(tab, s.rand)
		return out, nil
	})
	if err != nil {
		return schema.RandomizeResponse{}, err
	}
	logx.WithTab(ctx, tab.ID).Info("list randomized", "outcome", string(outcome), "results", len(tab.Results), "pick", tab.TargetPickCount)
	return schema.RandomizeResponse{Tab: tab, Outcome: outcome}, nil
}

func (s *service) Notices(_ context.Context) []schema.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schema.Notice(nil), s.notices...)
}

func (s *service) AcknowledgeNotices(ctx context.Context, req schema.AcknowledgeNoticesRequest) (schema.AcknowledgeNoticesResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.notices[:0]
	cleared := 0
	for _, notice := range s.notices {
		if req.UpTo == 0 || notice.ID <= req.UpTo {
			cleared++
			continue
		}
		kept = append(kept, notice)
	}
	s.notices = kept
	if cleared > 0 {
		pslog.Ctx(ctx).Debug("notices acknowledged", "count", cleared)
	}
	return schema.AcknowledgeNoticesResponse{Cleared: cleared}, nil
}

// updateTab applies fn to one list and publishes the result.
func (s *service) updateTab(ctx context.Context, id schema.TabID, change schema.ChangeType, fn func(schema.Tab) (schema.Tab, error)) (schema.Tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tab, err := s.resolveLocked(ctx, id)
	if err != nil {
		return schema.Tab{}, err
	}
	updated, err := fn(tab)
	if err != nil {
		logx.WithTab(ctx, tab.ID).Debug("list update rejected", "change", string(change), "err", err)
		return tab.Clone(), err
	}
	s.collection = ReplaceTab(s.collection, updated)
	logx.WithTab(ctx, tab.ID).Trace("list updated", "change", string(change), "items", len(updated.Items))
	s.emitLocked(ctx, schema.ChangeEvent{Type: change, TabID: updated.ID, Persist: true})
	return updated.Clone(), nil
}

// resolveLocked finds the list a mutation targets. An empty id selects the
// session's list, or the last list.
func (s *service) resolveLocked(ctx context.Context, id schema.TabID) (schema.Tab, error) {
	if id == "" {
		return CurrentTab(s.collection, sessionprefs.FromContext(ctx).CurrentTab())
	}
	tab, ok := s.collection.Tab(id)
	if !ok {
		return schema.Tab{}, schema.ErrTabNotFound
	}
	return tab, nil
}

func (s *service) emitLocked(ctx context.Context, event schema.ChangeEvent) {
	if s.listener == nil {
		return
	}
	event.Collection = s.collection.Clone()
	if err := s.listener.OnCollectionChanged(ctx, event); err != nil {
		kind := schema.NoticeStorageWrite
		if errors.Is(err, schema.ErrStorageRead) {
			kind = schema.NoticeStorageRead
		}
		s.addNoticeLocked(kind, err)
		logx.WithTab(ctx, event.TabID).Warn("change listener failed", "change", string(event.Type), "err", err)
	}
}

func (s *service) addNoticeLocked(kind schema.NoticeKind, err error) {
	s.noticeSeq++
	s.notices = append(s.notices, schema.Notice{
		ID:      s.noticeSeq,
		Kind:    kind,
		Message: err.Error(),
		At:      s.now(),
	})
}
