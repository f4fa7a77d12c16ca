package ahalaj

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pkt.systems/ahalaj/core"
	"pkt.systems/ahalaj/internal/kvstore"
	"pkt.systems/ahalaj/internal/persist"
	"pkt.systems/ahalaj/schema"
)

func TestNewRequiresAService(t *testing.T) {
	_, err := New(context.Background(), ServerConfig{}, ServerDeps{Store: kvstore.NewMemory()})
	if err == nil {
		t.Fatalf("expected error without services")
	}
}

func TestOpenListsPersistsBeforePublishing(t *testing.T) {
	store := kvstore.NewMemory()
	lists, err := OpenLists(context.Background(), schema.ServiceConfig{}, ServerDeps{Store: store})
	if err != nil {
		t.Fatalf("OpenLists: %v", err)
	}
	if store.Puts() != 1 {
		t.Fatalf("expected the default collection to be stored, got %d writes", store.Puts())
	}
	events, cancel := lists.Bus.Subscribe()
	defer cancel()

	created, err := lists.Service.CreateTab(context.Background(), schema.CreateTabRequest{})
	if err != nil {
		t.Fatalf("CreateTab: %v", err)
	}
	select {
	case ev := <-events:
		if ev.Type != schema.ChangeTabCreated || ev.TabID != created.Tab.ID {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected a change event")
	}
	raw, ok, err := store.Get(context.Background(), schema.DefaultStoreKey)
	if err != nil || !ok {
		t.Fatalf("expected stored collection, ok=%v err=%v", ok, err)
	}
	stored, err := persist.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected two stored lists, got %d", len(stored))
	}
}

func TestOpenListsKeepsExtraListener(t *testing.T) {
	var seen []schema.ChangeType
	deps := ServerDeps{
		Store: kvstore.NewMemory(),
		ServiceDeps: core.ServiceDeps{
			Listener: core.ListenerFunc(func(_ context.Context, ev schema.ChangeEvent) error {
				seen = append(seen, ev.Type)
				return nil
			}),
		},
	}
	if _, err := OpenLists(context.Background(), schema.ServiceConfig{}, deps); err != nil {
		t.Fatalf("OpenLists: %v", err)
	}
	if len(seen) != 1 || seen[0] != schema.ChangeLoaded {
		t.Fatalf("expected load event, got %v", seen)
	}
}

func TestOpenListsRequiresStore(t *testing.T) {
	if _, err := OpenLists(context.Background(), schema.ServiceConfig{}, ServerDeps{}); err == nil {
		t.Fatalf("expected error without store")
	}
}

func TestServerStartStop(t *testing.T) {
	if testing.Short() {
		t.Skip("binds network listeners")
	}
	cfg := ServerConfig{}
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.SSH.Addr = "127.0.0.1:0"
	cfg.SSH.HostKeyPath = filepath.Join(t.TempDir(), "host_key")
	server, err := New(context.Background(), cfg, ServerDeps{Store: kvstore.NewMemory()}, WithHTTP(), WithSSH())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if server.Lists().Service == nil {
		t.Fatalf("expected service")
	}
	if err := server.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := server.Start(context.Background()); err == nil {
		t.Fatalf("expected second start to fail")
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := server.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestEventFanoutJoinsErrors(t *testing.T) {
	calls := 0
	ok := core.ListenerFunc(func(context.Context, schema.ChangeEvent) error {
		calls++
		return nil
	})
	failing := core.ListenerFunc(func(context.Context, schema.ChangeEvent) error {
		calls++
		return schema.ErrStorageWrite
	})
	err := eventFanout{listeners: []core.Listener{failing, nil, ok}}.OnCollectionChanged(context.Background(), schema.ChangeEvent{})
	if !errors.Is(err, schema.ErrStorageWrite) || calls != 2 {
		t.Fatalf("unexpected fanout result err=%v calls=%d", err, calls)
	}
}
