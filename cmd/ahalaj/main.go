package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("ahalaj command failed")
		return 1
	}
	return 0
}

type rootOptions struct {
	configPath string
	ephemeral  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "ahalaj",
		Short:         "Ahalaj shuffles lists and picks items from them",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	root.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "keep lists in memory only")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newListsCmd(opts))
	root.AddCommand(newShowCmd(opts))
	root.AddCommand(newAddCmd(opts))
	root.AddCommand(newShuffleCmd(opts))
	root.AddCommand(newQRCmd(opts))
	root.AddCommand(newInitConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}
