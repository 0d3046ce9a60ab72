package commands

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/copyfd/cmd/copyfd/opts"
	"github.com/walteh/copyfd/pkg/config"
	"github.com/walteh/copyfd/pkg/fsops"
	"gitlab.com/tozd/go/errors"
)

// NewCopyCmd creates a new copy command
func NewCopyCmd(o *opts.RootOpts) *cobra.Command {
	var progress bool

	cmd := &cobra.Command{
		Use:   "copy <source> <destination>",
		Short: "Copy a file",
		Long: `Copy streams a single file to the destination, creating or
truncating it with the source's mode bits. A failed copy never leaves a
partial file behind.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "copy").Logger().WithContext(cmd.Context())
			return runTransfer(ctx, o, config.ModeCopy, args[0], args[1], progress)
		},
	}

	cmd.Flags().BoolVarP(&progress, "progress", "p", false, "print progress updates")

	return cmd
}

// runTransfer executes one copy or move through the runner and reports
// it through the user logger. Shared by the copy and move commands.
// With --async the transfer runs on its own goroutine and the command
// blocks in Wait until the sink has fired; Wait orders the outcome
// write before the read below.
func runTransfer(ctx context.Context, o *opts.RootOpts, mode config.Mode, source, destination string, progress bool) error {
	o.UserLogger.StartTransfer(source, destination, mode)

	runner := fsops.NewRunner(o.Async)

	var outcome error
	req := fsops.Request{
		Source:      source,
		Destination: destination,
		OnComplete:  func(err error) { outcome = err },
	}
	if progress {
		req.OnProgress = func(completed, total int64) {
			o.UserLogger.Progress(source, completed, total)
		}
	}

	var err error
	switch mode {
	case config.ModeMove:
		err = runner.Move(ctx, req)
	default:
		err = runner.Copy(ctx, req)
	}
	if err != nil {
		return errors.Errorf("invalid request: %w", err)
	}
	runner.Wait()

	o.UserLogger.FinishTransfer(source, outcome)
	if outcome != nil {
		return errors.Errorf("%s %s: %w", mode, source, outcome)
	}
	return nil
}
