package ahalaj

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"pkt.systems/ahalaj/core"
	"pkt.systems/ahalaj/httpapi"
	"pkt.systems/ahalaj/internal/command"
	"pkt.systems/ahalaj/internal/eventbus"
	"pkt.systems/ahalaj/internal/kvstore"
	"pkt.systems/ahalaj/internal/persist"
	"pkt.systems/ahalaj/schema"
	"pkt.systems/ahalaj/sshserver"
	"pkt.systems/pslog"
)

// Server composes the HTTP and SSH front ends around one list service.
type Server interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
	Lists() Lists
}

// ServerConfig configures the compositor.
type ServerConfig struct {
	Service             schema.ServiceConfig
	HTTP                httpapi.Config
	SSH                 sshserver.Config
	DisableAuditLogging bool
}

// ServerDeps captures dependencies required to build the server.
type ServerDeps struct {
	// Store holds the persisted collection. It is not closed by the server.
	Store       kvstore.Store
	ServiceDeps core.ServiceDeps
}

// Lists is a loaded list service with persistence and change fan-out wired.
type Lists struct {
	Service core.Service
	Bus     *eventbus.Bus
	Bridge  *persist.Bridge
}

// OpenLists builds the persistence bridge and event bus and loads the
// service. Changes are written through to the store before they reach any
// bus subscriber.
func OpenLists(ctx context.Context, cfg schema.ServiceConfig, deps ServerDeps) (Lists, error) {
	if deps.Store == nil {
		return Lists{}, errors.New("store dependency is required")
	}
	normalized, err := schema.NormalizeServiceConfig(cfg)
	if err != nil {
		return Lists{}, err
	}
	serviceDeps := deps.ServiceDeps
	logger := serviceDeps.Logger
	if logger == nil {
		logger = pslog.Ctx(ctx)
		serviceDeps.Logger = logger
	}
	bridge, err := persist.NewBridge(deps.Store, normalized.StoreKey, logger)
	if err != nil {
		return Lists{}, err
	}
	bus := eventbus.New(logger)
	listeners := []core.Listener{bridge, bus}
	if serviceDeps.Listener != nil {
		listeners = append(listeners, serviceDeps.Listener)
	}
	serviceDeps.Loader = bridge
	serviceDeps.Listener = eventFanout{listeners: listeners}
	service, err := core.NewService(ctx, normalized, serviceDeps)
	if err != nil {
		return Lists{}, err
	}
	return Lists{Service: service, Bus: bus, Bridge: bridge}, nil
}

// ServerOption toggles compositor components.
type ServerOption func(*serverOptions)

type serverOptions struct {
	enableHTTP bool
	enableSSH  bool
}

// WithHTTP enables the HTTP form UI.
func WithHTTP() ServerOption {
	return func(o *serverOptions) { o.enableHTTP = true }
}

// WithSSH enables the SSH shell.
func WithSSH() ServerOption {
	return func(o *serverOptions) { o.enableSSH = true }
}

// New constructs a composable server. The stored collection is loaded here.
func New(ctx context.Context, cfg ServerConfig, deps ServerDeps, opts ...ServerOption) (Server, error) {
	options := serverOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if !options.enableHTTP && !options.enableSSH {
		return nil, errors.New("no services enabled")
	}
	lists, err := OpenLists(ctx, cfg.Service, deps)
	if err != nil {
		return nil, err
	}
	cfg.Service = lists.Service.Config()
	if cfg.HTTP.Title == "" {
		cfg.HTTP.Title = cfg.Service.Title
	}

	cmdHandler := command.NewHandler(lists.Service, command.HandlerConfig{
		BaseURL:             cfg.HTTP.BaseURL,
		BasePath:            cfg.HTTP.BasePath,
		DisableAuditLogging: cfg.DisableAuditLogging,
	})

	var httpSrv *httpapi.Server
	var sshSrv *sshserver.Server
	if options.enableHTTP {
		httpSrv = httpapi.NewServer(cfg.HTTP, lists.Service, lists.Bus)
	}
	if options.enableSSH {
		sshSrv = &sshserver.Server{
			Addr:        cfg.SSH.Addr,
			HostKeyPath: cfg.SSH.HostKeyPath,
			Handler:     cmdHandler,
			Prompt:      cfg.SSH.Prompt,
			EventBus:    lists.Bus,
		}
	}
	return &compositeServer{
		cfg:     cfg,
		options: options,
		lists:   lists,
		httpSrv: httpSrv,
		sshSrv:  sshSrv,
	}, nil
}

type compositeServer struct {
	cfg     ServerConfig
	options serverOptions
	lists   Lists
	httpSrv *httpapi.Server
	sshSrv  *sshserver.Server
	logger  pslog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	started bool
}

func (s *compositeServer) Lists() Lists {
	return s.lists
}

func (s *compositeServer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		pslog.Ctx(ctx).Warn("server start rejected", "reason", "already started")
		return errors.New("server already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.started = true
	s.logger = pslog.Ctx(s.ctx)
	s.mu.Unlock()

	log := s.logger
	log.Info(
		"server start",
		"http", s.options.enableHTTP,
		"ssh", s.options.enableSSH,
		"http_addr", s.cfg.HTTP.Addr,
		"http_base_url", s.cfg.HTTP.BaseURL,
		"http_base_path", s.cfg.HTTP.BasePath,
		"ssh_addr", s.cfg.SSH.Addr,
	)
	group, groupCtx := errgroup.WithContext(s.ctx)
	if s.httpSrv != nil {
		group.Go(func() error {
			if err := httpapi.ListenAndServe(groupCtx, s.cfg.HTTP.Addr, s.httpSrv.Handler()); err != nil {
				log.Error("http server failed", "err", err)
				return fmt.Errorf("http: %w", err)
			}
			return nil
		})
	}
	if s.sshSrv != nil {
		group.Go(func() error {
			if err := s.sshSrv.ListenAndServe(groupCtx); err != nil {
				log.Error("ssh server failed", "err", err)
				return fmt.Errorf("ssh: %w", err)
			}
			return nil
		})
	}
	go func() {
		err := group.Wait()
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	}()
	return nil
}

func (s *compositeServer) Wait() error {
	s.mu.Lock()
	done := s.done
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.New("server not started")
	}
	<-done
	s.mu.Lock()
	err := s.err
	s.mu.Unlock()
	if err != nil {
		pslog.Ctx(s.ctx).Error("server stopped", "err", err)
	}
	return err
}

func (s *compositeServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	started := s.started
	log := s.logger
	s.mu.Unlock()
	if !started {
		return nil
	}
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	log.Info("server stop requested")
	if cancel != nil {
		cancel()
	}
	if ctx == nil {
		log.Info("server stop completed")
		return nil
	}
	select {
	case <-ctx.Done():
		log.Warn("server stop timed out", "err", ctx.Err())
		return ctx.Err()
	case <-done:
		log.Info("server stopped")
		return nil
	}
}
