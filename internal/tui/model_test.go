package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"pkt.systems/ahalaj/core"
	"pkt.systems/ahalaj/internal/eventbus"
	"pkt.systems/ahalaj/internal/kvstore"
	"pkt.systems/ahalaj/internal/persist"
	"pkt.systems/ahalaj/schema"
)

type seqIDs struct {
	next int
}

func (s *seqIDs) NewTabID() schema.TabID {
	s.next++
	return schema.TabID(fmt.Sprintf("tab-%d", s.next))
}

func newTestModel(t *testing.T, store *kvstore.MemoryStore) (*Model, core.Service) {
	t.Helper()
	deps := core.ServiceDeps{IDs: &seqIDs{}, Rand: rand.New(rand.NewPCG(5, 6))}
	if store != nil {
		bridge, err := persist.NewBridge(store, "data", nil)
		if err != nil {
			t.Fatalf("NewBridge: %v", err)
		}
		deps.Loader = bridge
		deps.Listener = bridge
	}
	svc, err := core.NewService(context.Background(), schema.ServiceConfig{}, deps)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	m, err := New(context.Background(), svc, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m, svc
}

func ctrl(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func TestTypingThenSavingEditsTheList(t *testing.T) {
	m, svc := newTestModel(t, nil)
	press(m, ctrl(tea.KeyCtrlU), runes("Lunch"), ctrl(tea.KeyTab), ctrl(tea.KeyTab), runes("Pizza 1"), ctrl(tea.KeyCtrlA))

	resp, err := svc.ListTabs(context.Background(), schema.ListTabsRequest{})
	if err != nil {
		t.Fatalf("ListTabs: %v", err)
	}
	tab := resp.Current
	if tab.Name != "Lunch" {
		t.Fatalf("expected name to be saved, got %q", tab.Name)
	}
	if len(tab.Items) != 2 || tab.Items[0].Text != "Pizza 1" || tab.Items[1].Text != "Pizza 2" {
		t.Fatalf("unexpected items %+v", tab.Items)
	}
	if m.focus != fieldFirstItem+1 {
		t.Fatalf("expected focus on the new item, got %d", m.focus)
	}
}

func TestRandomiseShortListAddsItem(t *testing.T) {
	m, _ := newTestModel(t, nil)
	press(m, ctrl(tea.KeyCtrlG))
	if len(m.current.Items) != 2 || m.current.HasResults() {
		t.Fatalf("expected an added item and no results, got %+v", m.current)
	}
	if !strings.Contains(m.status, "at least 2") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestRandomiseShowsResultsAndCopies(t *testing.T) {
	m, _ := newTestModel(t, nil)
	press(m, ctrl(tea.KeyTab), ctrl(tea.KeyTab), runes("a"), ctrl(tea.KeyCtrlA), runes("b"))
	press(m, ctrl(tea.KeyShiftTab), ctrl(tea.KeyShiftTab), ctrl(tea.KeyBackspace), runes("1"))
	press(m, ctrl(tea.KeyCtrlG))
	if len(m.current.Results) != 2 || m.current.TargetPickCount != 1 {
		t.Fatalf("expected randomised list, got %+v", m.current)
	}
	if !strings.Contains(m.View(), "Results") {
		t.Fatalf("expected results panel")
	}
	var copied string
	m.copyText = func(s string) error {
		copied = s
		return nil
	}
	press(m, ctrl(tea.KeyCtrlY))
	picked := core.Picked(m.current)
	if len(picked) != 1 || copied != picked[0].Text {
		t.Fatalf("unexpected clipboard %q for %+v", copied, picked)
	}
	m.copyText = func(string) error { return errors.New("no clipboard") }
	press(m, ctrl(tea.KeyCtrlY))
	if !strings.Contains(m.status, "no clipboard") {
		t.Fatalf("expected clipboard error in status, got %q", m.status)
	}
}

func TestRemoveListAsksForConfirmation(t *testing.T) {
	m, svc := newTestModel(t, nil)
	press(m, ctrl(tea.KeyCtrlN))
	if m.current.ID != "tab-2" {
		t.Fatalf("expected the new list to be current, got %q", m.current.ID)
	}
	press(m, ctrl(tea.KeyCtrlX))
	if !m.confirming {
		t.Fatalf("expected confirmation prompt")
	}
	press(m, runes("n"))
	if len(m.tabs) != 2 || m.confirming {
		t.Fatalf("expected removal to be cancelled")
	}
	press(m, ctrl(tea.KeyCtrlX), runes("y"))
	if len(m.tabs) != 1 || m.current.ID != "tab-1" {
		t.Fatalf("expected list to be removed, got %d lists", len(m.tabs))
	}

	press(m, ctrl(tea.KeyCtrlN), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true})
	resp, err := svc.ListTabs(context.Background(), schema.ListTabsRequest{})
	if err != nil {
		t.Fatalf("ListTabs: %v", err)
	}
	if len(resp.Tabs) != 1 || m.confirming {
		t.Fatalf("expected alt+x to remove without prompting, got %d lists", len(resp.Tabs))
	}

	press(m, ctrl(tea.KeyCtrlX))
	if m.status != schema.ErrLastTab.Error() {
		t.Fatalf("expected last list message, got %q", m.status)
	}
}

func TestSwitchListWraps(t *testing.T) {
	m, _ := newTestModel(t, nil)
	press(m, ctrl(tea.KeyCtrlN))
	press(m, ctrl(tea.KeyPgDown))
	if m.current.ID != "tab-1" {
		t.Fatalf("expected wrap to the first list, got %q", m.current.ID)
	}
	press(m, ctrl(tea.KeyPgUp))
	if m.current.ID != "tab-2" {
		t.Fatalf("expected the second list, got %q", m.current.ID)
	}
}

func TestNoticesBlockUntilAcknowledged(t *testing.T) {
	store := kvstore.NewMemory()
	store.FailGets(errors.New("disk unavailable"))
	m, svc := newTestModel(t, store)
	if !strings.Contains(m.View(), "error when getting the data") {
		t.Fatalf("expected notice overlay")
	}
	press(m, ctrl(tea.KeyCtrlN))
	if len(m.tabs) != 1 {
		t.Fatalf("expected keys to be blocked by the notice")
	}
	press(m, ctrl(tea.KeyEnter))
	if len(m.notices) != 0 || len(svc.Notices(context.Background())) != 0 {
		t.Fatalf("expected notices to be acknowledged")
	}
}

func TestChangeFromElsewhereReloads(t *testing.T) {
	m, svc := newTestModel(t, nil)
	if _, err := svc.CreateTab(context.Background(), schema.CreateTabRequest{}); err != nil {
		t.Fatalf("CreateTab: %v", err)
	}
	m.Update(changeMsg{event: eventbus.Event{ChangeEvent: schema.ChangeEvent{Type: schema.ChangeTabCreated, TabID: "tab-2"}, Origin: "http"}})
	if len(m.tabs) != 2 {
		t.Fatalf("expected reload to pick up the new list, got %d", len(m.tabs))
	}
	if m.current.ID != "tab-1" {
		t.Fatalf("expected the session's list to stay current, got %q", m.current.ID)
	}
}
