package eventbus

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
	"pkt.systems/ahalaj/schema"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSubscribeAndPublish(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	defer cancel()

	ctx := WithOrigin(context.Background(), "ssh-1")
	event := schema.ChangeEvent{Type: schema.ChangeTabCreated, TabID: "tab1"}
	if err := bus.OnCollectionChanged(ctx, event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-ch:
		if got.Type != schema.ChangeTabCreated || got.TabID != "tab1" {
			t.Fatalf("unexpected payload: %+v", got)
		}
		if got.Origin != "ssh-1" {
			t.Fatalf("expected origin, got %q", got.Origin)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}
	_ = bus.OnCollectionChanged(context.Background(), schema.ChangeEvent{Type: schema.ChangeTabUpdated})
}

func TestPublishDoesNotBlockWhenFull(t *testing.T) {
	bus := New(nil)
	bus.depth = 1
	ch, cancel := bus.Subscribe()
	defer cancel()

	_ = bus.OnCollectionChanged(context.Background(), schema.ChangeEvent{Type: schema.ChangeTabUpdated})
	done := make(chan struct{})
	go func() {
		_ = bus.OnCollectionChanged(context.Background(), schema.ChangeEvent{Type: schema.ChangeRandomized})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("publish blocked on full subscriber")
	}
	got := <-ch
	if got.Type != schema.ChangeTabUpdated {
		t.Fatalf("expected first event to survive, got %s", got.Type)
	}
}

func TestConcurrentCancelAndPublish(t *testing.T) {
	bus := New(nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 200 {
			_ = bus.OnCollectionChanged(context.Background(), schema.ChangeEvent{Type: schema.ChangeTabUpdated})
		}
	}()
	for range 200 {
		_, cancel := bus.Subscribe()
		cancel()
	}
	<-done
}
