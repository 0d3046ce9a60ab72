package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/copyfd/cmd/copyfd/opts"
	"github.com/walteh/copyfd/pkg/config"
)

// NewMoveCmd creates a new move command
func NewMoveCmd(o *opts.RootOpts) *cobra.Command {
	var progress bool

	cmd := &cobra.Command{
		Use:   "move <source> <destination>",
		Short: "Move a file",
		Long: `Move renames the file when source and destination share a device,
which is O(1) regardless of size. Across devices it falls back to a
streamed copy followed by removal of the source.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "move").Logger().WithContext(cmd.Context())
			return runTransfer(ctx, o, config.ModeMove, args[0], args[1], progress)
		},
	}

	cmd.Flags().BoolVarP(&progress, "progress", "p", false, "print progress updates")

	return cmd
}
