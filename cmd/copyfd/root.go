package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/copyfd/cmd/copyfd/commands"
	"github.com/walteh/copyfd/cmd/copyfd/opts"
	"github.com/walteh/copyfd/pkg/log"
)

var (
	// Flags
	debug bool
)

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&o.Async, "async", false, "run transfers on background goroutines")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	zlog := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &zlog
}

// newRootCmd builds the copyfd command tree
func newRootCmd() *cobra.Command {
	o := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "copyfd",
		Short: "Copy and move files with progress reporting",
		Long: `copyfd copies and moves single files with throttled progress
updates. Moves between paths on the same device are performed as an
atomic rename; everything else streams the file content and cleans up
the destination on failure.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
			zlog := zerolog.New(os.Stderr).With().Timestamp().Logger()
			o.UserLogger = log.New(os.Stdout, zlog)
		},
	}

	addRootFlags(cmd, o)

	cmd.AddCommand(
		commands.NewCopyCmd(o),
		commands.NewMoveCmd(o),
		commands.NewBatchCmd(o),
	)

	return cmd
}
