package sshserver

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"pkt.systems/ahalaj/core"
	"pkt.systems/ahalaj/internal/command"
	"pkt.systems/ahalaj/internal/eventbus"
	"pkt.systems/ahalaj/internal/sessionprefs"
	"pkt.systems/ahalaj/schema"
)

type fakeTerm struct {
	mu      sync.Mutex
	lines   []string
	prompts []string
	out     strings.Builder
}

func (f *fakeTerm) ReadLine() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func (f *fakeTerm) SetPrompt(prompt string) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
}

func (f *fakeTerm) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.Write(p)
}

func (f *fakeTerm) output() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.String()
}

type seqIDs struct {
	next int
}

func (s *seqIDs) NewTabID() schema.TabID {
	s.next++
	return schema.TabID(fmt.Sprintf("tab-%d", s.next))
}

func newTestShell(t *testing.T, lines ...string) (*shell, *fakeTerm, core.Service) {
	t.Helper()
	svc, err := core.NewService(context.Background(), schema.ServiceConfig{}, core.ServiceDeps{IDs: &seqIDs{}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := sessionprefs.WithContext(context.Background(), sessionprefs.New())
	term := &fakeTerm{lines: lines}
	return newShell(ctx, term, command.NewHandler(svc, command.HandlerConfig{}), "> ", "ssh test"), term, svc
}

func tabCount(t *testing.T, svc core.Service) int {
	t.Helper()
	resp, err := svc.ListTabs(context.Background(), schema.ListTabsRequest{})
	if err != nil {
		t.Fatalf("ListTabs: %v", err)
	}
	return len(resp.Tabs)
}

func TestShellConfirmsListRemoval(t *testing.T) {
	sh, term, svc := newTestShell(t, "new", "close", "y")
	if err := sh.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tabCount(t, svc) != 1 {
		t.Fatalf("expected list to be removed")
	}
	if !strings.Contains(term.output(), "removed List 2") {
		t.Fatalf("unexpected output %q", term.output())
	}
	if len(term.prompts) != 2 || term.prompts[1] != "> " {
		t.Fatalf("expected prompt to be restored, got %q", term.prompts)
	}
}

func TestShellCancelsListRemoval(t *testing.T) {
	sh, term, svc := newTestShell(t, "new", "close", "", "quit", "lists")
	if err := sh.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tabCount(t, svc) != 2 {
		t.Fatalf("expected list to survive")
	}
	out := term.output()
	if !strings.Contains(out, "cancelled") {
		t.Fatalf("unexpected output %q", out)
	}
	if strings.Contains(out, "* 2. List 2") {
		t.Fatalf("expected quit to stop the shell")
	}
}

func TestShellReportsErrors(t *testing.T) {
	sh, term, _ := newTestShell(t, "pick nope")
	if err := sh.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(term.output(), "error: ") {
		t.Fatalf("expected error line, got %q", term.output())
	}
}

func TestShellWatchSkipsOwnChanges(t *testing.T) {
	sh, term, _ := newTestShell(t)
	events := make(chan eventbus.Event, 3)
	collection := schema.Collection{{ID: "a", Name: "Lunch"}}
	events <- eventbus.Event{ChangeEvent: schema.ChangeEvent{Type: schema.ChangeRandomized, TabID: "a", Collection: collection}, Origin: "ssh test"}
	events <- eventbus.Event{ChangeEvent: schema.ChangeEvent{Type: schema.ChangeRandomized, TabID: "a", Collection: collection}, Origin: "http 10.0.0.1"}
	events <- eventbus.Event{ChangeEvent: schema.ChangeEvent{Type: schema.ChangeTabRemoved, TabID: "b", Collection: collection}, Origin: "tui"}
	close(events)
	sh.watch(events)

	out := term.output()
	if strings.Count(out, "elsewhere") != 2 {
		t.Fatalf("expected two announcements, got %q", out)
	}
	if !strings.Contains(out, "* Lunch was randomised elsewhere") || !strings.Contains(out, "* #b was removed elsewhere") {
		t.Fatalf("unexpected announcements %q", out)
	}
}
