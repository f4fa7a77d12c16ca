package sshserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	gliderssh "github.com/gliderlabs/ssh"
	"golang.org/x/term"

	"pkt.systems/ahalaj/internal/eventbus"
	"pkt.systems/ahalaj/internal/logx"
	"pkt.systems/ahalaj/internal/sessionprefs"
	"pkt.systems/pslog"
)

// CommandHandler runs shell command lines.
type CommandHandler interface {
	Handle(ctx context.Context, w io.Writer, input string) error
}

// Server exposes the lists over SSH as a line shell. Clients are not
// authenticated; bind it to a trusted address.
type Server struct {
	Addr        string
	HostKeyPath string
	Listener    net.Listener
	Handler     CommandHandler
	Prompt      string
	EventBus    *eventbus.Bus
	logger      pslog.Logger
}

// ListenAndServe starts the SSH server and shuts down on context cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.Prompt == "" {
		s.Prompt = "> "
	}
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}
	if s.Handler == nil {
		return fmt.Errorf("ssh command handler is required")
	}

	signer, err := EnsureHostKey(s.HostKeyPath)
	if err != nil {
		return err
	}

	server := &gliderssh.Server{
		Addr:    s.Addr,
		Handler: s.handleSession,
	}
	server.AddHostKey(signer)

	errCh := make(chan error, 1)
	go func() {
		if s.Listener != nil {
			errCh <- server.Serve(s.Listener)
			return
		}
		errCh <- server.ListenAndServe()
	}()
	s.logger.Info("ssh listening", "addr", s.Addr)

	select {
	case <-ctx.Done():
		_ = server.Close()
		s.logger.Info("ssh stopped", "addr", s.Addr)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleSession(sess gliderssh.Session) {
	remote := sess.RemoteAddr().String()
	sshSession := sess.Context().SessionID()
	if len(sshSession) > 12 {
		sshSession = sshSession[:12]
	}
	log := s.logger.With("remote", remote, "ssh_session", sshSession)
	ctx := pslog.ContextWithLogger(sess.Context(), log)
	ctx = logx.ContextWithSurface(ctx, logx.SurfaceSSH)
	origin := "ssh " + sshSession
	ctx = eventbus.WithOrigin(ctx, origin)
	ctx = sessionprefs.WithContext(ctx, sessionprefs.New())

	if raw := strings.TrimSpace(sess.RawCommand()); raw != "" {
		log.Info("ssh exec", "command", raw)
		if err := s.Handler.Handle(ctx, sess, raw); err != nil {
			_, _ = fmt.Fprintf(sess.Stderr(), "error: %v\n", err)
			_ = sess.Exit(1)
			return
		}
		_ = sess.Exit(0)
		return
	}

	_, winCh, isPty := sess.Pty()
	terminal := term.NewTerminal(sess, s.Prompt)
	if isPty {
		go func() {
			for win := range winCh {
				_ = terminal.SetSize(win.Width, win.Height)
			}
		}()
	}

	log.Info("ssh session opened", "pty", isPty)
	sh := newShell(ctx, terminal, s.Handler, s.Prompt, origin)
	if s.EventBus != nil {
		events, unsubscribe := s.EventBus.Subscribe()
		defer unsubscribe()
		go sh.watch(events)
	}
	if err := sh.Run(); err != nil {
		log.Warn("ssh session failed", "err", err)
	}
	log.Info("ssh session closed")
}
