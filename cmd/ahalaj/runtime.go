package main

import (
	"context"

	"pkt.systems/ahalaj"
	"pkt.systems/ahalaj/core"
	"pkt.systems/ahalaj/httpapi"
	"pkt.systems/ahalaj/internal/appconfig"
	"pkt.systems/ahalaj/internal/kvstore"
	"pkt.systems/ahalaj/sshserver"
	"pkt.systems/pslog"
)

func loadConfig(opts *rootOptions) (appconfig.Config, error) {
	cfg, err := appconfig.Load(opts.configPath)
	if err != nil {
		return appconfig.Config{}, err
	}
	if opts.ephemeral {
		cfg.Storage.Backend = string(kvstore.BackendMemory)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg appconfig.Config) (kvstore.Store, error) {
	backend, err := kvstore.ParseBackend(cfg.Storage.Backend)
	if err != nil {
		return nil, err
	}
	logger := pslog.Ctx(ctx)
	logger.Info("storage open", "backend", backend, "path", cfg.StoragePath(), "key", cfg.Storage.Key)
	return kvstore.Open(ctx, kvstore.Options{
		Backend: backend,
		Path:    cfg.StoragePath(),
		Logger:  logger,
	})
}

// openLists opens the configured store and loads the lists from it. The
// returned close function releases the store.
func openLists(ctx context.Context, cfg appconfig.Config) (ahalaj.Lists, func() error, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return ahalaj.Lists{}, nil, err
	}
	lists, err := ahalaj.OpenLists(ctx, cfg.ServiceConfig(), ahalaj.ServerDeps{
		Store:       store,
		ServiceDeps: core.ServiceDeps{Logger: pslog.Ctx(ctx)},
	})
	if err != nil {
		_ = store.Close()
		return ahalaj.Lists{}, nil, err
	}
	return lists, store.Close, nil
}

func toHTTPConfig(cfg appconfig.Config) httpapi.Config {
	return httpapi.Config{
		Addr:     cfg.HTTP.Addr,
		BaseURL:  cfg.HTTP.BaseURL,
		BasePath: cfg.HTTP.BasePath,
		Title:    cfg.Lists.Title,
	}
}

func toSSHConfig(cfg appconfig.Config) sshserver.Config {
	return sshserver.Config{
		Addr:        cfg.SSH.Addr,
		HostKeyPath: cfg.SSH.HostKeyPath,
	}
}

// externalBaseURL is the root that list links are built on.
func externalBaseURL(cfg appconfig.Config) string {
	if cfg.HTTP.BaseURL != "" {
		return cfg.HTTP.BaseURL
	}
	return "http://" + cfg.HTTP.Addr
}
