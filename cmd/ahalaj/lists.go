package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"

	"pkt.systems/ahalaj/internal/appconfig"
	"pkt.systems/ahalaj/internal/command"
	"pkt.systems/ahalaj/internal/logx"
	"pkt.systems/ahalaj/internal/sessionprefs"
	"pkt.systems/ahalaj/schema"
	"pkt.systems/pslog"
)

type lineOptions struct {
	// list selects a list by position or id; empty means the last list.
	list string
	// acknowledge clears notices raised while loading, so the command runs
	// on the default lists and overwrites an unreadable store.
	acknowledge bool
}

// runLine executes one shell command line against the stored lists. Notices
// raised while loading stop the command before anything is written unless
// acknowledged; notices raised by the command itself fail it.
func runLine(ctx context.Context, cfg appconfig.Config, w io.Writer, opts lineOptions, line string) error {
	lists, closeStore, err := openLists(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	if notices := lists.Service.Notices(ctx); len(notices) > 0 {
		last := notices[len(notices)-1]
		if !opts.acknowledge {
			return fmt.Errorf("%w: %s (rerun with --acknowledge to continue with the default lists)", schema.ErrNoticesPending, last.Message)
		}
		pslog.Ctx(ctx).Warn("notices acknowledged", "count", len(notices), "last", last.Message)
		if _, err := lists.Service.AcknowledgeNotices(ctx, schema.AcknowledgeNoticesRequest{UpTo: last.ID}); err != nil {
			return err
		}
	}

	ctx = sessionprefs.WithContext(ctx, sessionprefs.New())
	ctx = logx.ContextWithSurface(ctx, logx.SurfaceCLI)
	handler := command.NewHandler(lists.Service, command.HandlerConfig{
		BaseURL:  externalBaseURL(cfg),
		BasePath: cfg.HTTP.BasePath,
	})
	if opts.list != "" {
		if err := handler.Handle(ctx, io.Discard, "use "+opts.list); err != nil {
			return fmt.Errorf("select list %q: %w", opts.list, err)
		}
	}
	if err := handler.Handle(ctx, w, line); err != nil {
		return err
	}
	if notices := lists.Service.Notices(ctx); len(notices) > 0 {
		return fmt.Errorf("storage: %s", notices[len(notices)-1].Message)
	}
	return nil
}

func addLineFlags(cmd *cobra.Command, opts *lineOptions) {
	cmd.Flags().StringVarP(&opts.list, "list", "l", "", "list position or id (default: last list)")
	cmd.Flags().BoolVar(&opts.acknowledge, "acknowledge", false, "acknowledge storage notices and continue with the default lists")
}

func lineCmd(opts *rootOptions, cmd *cobra.Command, line func(args []string) string) *cobra.Command {
	var lineOpts lineOptions
	addLineFlags(cmd, &lineOpts)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(opts)
		if err != nil {
			return err
		}
		return runLine(cmd.Context(), cfg, cmd.OutOrStdout(), lineOpts, line(args))
	}
	return cmd
}

func newListsCmd(opts *rootOptions) *cobra.Command {
	return lineCmd(opts, &cobra.Command{
		Use:   "lists",
		Short: "Show every list",
		Args:  cobra.NoArgs,
	}, func([]string) string { return "lists" })
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := lineCmd(opts, &cobra.Command{
		Use:   "show",
		Short: "Show the items of a list",
		Args:  cobra.NoArgs,
	}, func([]string) string {
		if all {
			return "show all"
		}
		return "show"
	})
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include the results of every list")
	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return lineCmd(opts, &cobra.Command{
		Use:   "add [text]",
		Short: "Append an item to a list",
	}, func(args []string) string {
		return strings.TrimSpace("add " + strings.Join(args, " "))
	})
}

func newShuffleCmd(opts *rootOptions) *cobra.Command {
	return lineCmd(opts, &cobra.Command{
		Use:     "shuffle",
		Aliases: []string{"randomise", "randomize"},
		Short:   "Shuffle a list and pick items from it",
		Args:    cobra.NoArgs,
	}, func([]string) string { return "shuffle" })
}

func newQRCmd(opts *rootOptions) *cobra.Command {
	var lineOpts lineOptions
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Print the web location of a list as a QR code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := runLine(cmd.Context(), cfg, &buf, lineOpts, "url"); err != nil {
				return err
			}
			url := strings.TrimSpace(buf.String())
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, url)
			qrterminal.GenerateHalfBlock(url, qrterminal.L, w)
			return nil
		},
	}
	addLineFlags(cmd, &lineOpts)
	return cmd
}
