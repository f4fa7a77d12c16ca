package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pkt.systems/ahalaj/internal/logx"
	"pkt.systems/ahalaj/internal/tui"
	"pkt.systems/pslog"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Edit and shuffle lists in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logOut, closeLog, err := tuiLogWriter(cfg.TUI.LogFile)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()
			logger := pslog.NewWithOptions(logOut, pslog.Options{
				Mode:     pslog.ModeStructured,
				NoColor:  true,
				MinLevel: pslog.DebugLevel,
			})
			ctx := pslog.ContextWithLogger(cmd.Context(), logger)
			ctx = logx.ContextWithSurface(ctx, logx.SurfaceTUI)

			lists, closeStore, err := openLists(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()
			return tui.Run(ctx, lists.Service, lists.Bus)
		},
	}
}

// tuiLogWriter keeps logs off the terminal the TUI draws on.
func tuiLogWriter(path string) (io.Writer, func() error, error) {
	if path == "" {
		return io.Discard, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
