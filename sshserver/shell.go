package sshserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pkt.systems/ahalaj/internal/eventbus"
	"pkt.systems/ahalaj/internal/logx"
	"pkt.systems/ahalaj/schema"
)

// lineIO is the part of x/term's Terminal the shell uses.
type lineIO interface {
	io.Writer
	ReadLine() (string, error)
	SetPrompt(prompt string)
}

const forceCloseCommand = "close --force"

type shell struct {
	ctx     context.Context
	term    lineIO
	handler CommandHandler
	prompt  string
	origin  string
}

func newShell(ctx context.Context, term lineIO, handler CommandHandler, prompt, origin string) *shell {
	return &shell{ctx: ctx, term: term, handler: handler, prompt: prompt, origin: origin}
}

// Run reads command lines until the client disconnects or quits.
func (s *shell) Run() error {
	s.println(`Type "help" for commands, "quit" to leave.`)
	for {
		if err := s.ctx.Err(); err != nil {
			return nil
		}
		line, err := s.term.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "quit", "exit", "/quit", "/exit":
			return nil
		}
		s.execute(line)
	}
}

func (s *shell) execute(line string) {
	err := s.handler.Handle(s.ctx, s.term, line)
	if errors.Is(err, schema.ErrConfirmationRequired) {
		ok, readErr := s.confirm("Remove this list? [y/N] ")
		if readErr != nil || !ok {
			s.println("cancelled")
			return
		}
		err = s.handler.Handle(s.ctx, s.term, forceCloseCommand)
	}
	if err != nil {
		s.println(fmt.Sprintf("error: %v", err))
	}
}

func (s *shell) confirm(question string) (bool, error) {
	s.term.SetPrompt(question)
	defer s.term.SetPrompt(s.prompt)
	answer, err := s.term.ReadLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// watch announces changes made by other sessions until events closes.
func (s *shell) watch(events <-chan eventbus.Event) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Origin == s.origin || ev.Type == schema.ChangeLoaded {
				continue
			}
			logx.WithTab(s.ctx, ev.TabID).Trace("ssh change announced", "change", string(ev.Type), "origin", ev.Origin)
			s.println(describeChange(ev))
		}
	}
}

func describeChange(ev eventbus.Event) string {
	name := "#" + string(ev.TabID)
	if tab, ok := ev.Collection.Tab(ev.TabID); ok {
		name = tab.DisplayName()
	}
	switch ev.Type {
	case schema.ChangeTabCreated:
		return fmt.Sprintf("* %s was added elsewhere", name)
	case schema.ChangeTabRemoved:
		return fmt.Sprintf("* %s was removed elsewhere", name)
	case schema.ChangeRandomized:
		return fmt.Sprintf("* %s was randomised elsewhere", name)
	default:
		return fmt.Sprintf("* %s was changed elsewhere", name)
	}
}

func (s *shell) println(line string) {
	_, _ = io.WriteString(s.term, line+"\n")
}
