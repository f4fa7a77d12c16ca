package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/ahalaj"
	"pkt.systems/ahalaj/core"
	"pkt.systems/pslog"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var enableSSH bool
	var disableAuditTrails bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web form and, if enabled, the SSH shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if enableSSH {
				cfg.SSH.Enabled = true
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			serverCfg := ahalaj.ServerConfig{
				Service:             cfg.ServiceConfig(),
				HTTP:                toHTTPConfig(cfg),
				SSH:                 toSSHConfig(cfg),
				DisableAuditLogging: disableAuditTrails,
			}
			if serverCfg.HTTP.BaseURL == "" {
				serverCfg.HTTP.BaseURL = externalBaseURL(cfg)
			}
			serverOpts := []ahalaj.ServerOption{ahalaj.WithHTTP()}
			if cfg.SSH.Enabled {
				serverOpts = append(serverOpts, ahalaj.WithSSH())
			}
			server, err := ahalaj.New(cmd.Context(), serverCfg, ahalaj.ServerDeps{
				Store:       store,
				ServiceDeps: core.ServiceDeps{Logger: logger},
			}, serverOpts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Stop(stopCtx); err != nil {
					logger.Warn("server stop failed", "err", err)
				}
			}()
			if err := server.Start(ctx); err != nil {
				return err
			}
			return server.Wait()
		},
	}
	cmd.Flags().BoolVar(&enableSSH, "ssh", false, "enable the SSH shell regardless of config")
	cmd.Flags().BoolVar(&disableAuditTrails, "disable-audit-trails", false, "disable audit trail logging for commands")
	return cmd
}
