package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"pkt.systems/ahalaj/core"
	"pkt.systems/ahalaj/internal/eventbus"
)

// Run starts the terminal UI and blocks until the user quits or ctx ends.
func Run(ctx context.Context, service core.Service, bus *eventbus.Bus) error {
	var events <-chan eventbus.Event
	if bus != nil {
		ch, unsubscribe := bus.Subscribe()
		defer unsubscribe()
		events = ch
	}
	m, err := New(ctx, service, events)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
