package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/copyfd/cmd/copyfd/opts"
	"github.com/walteh/copyfd/pkg/batch"
	"github.com/walteh/copyfd/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// NewBatchCmd creates a new batch command
func NewBatchCmd(o *opts.RootOpts) *cobra.Command {
	var (
		manifestFile string
		parallel     int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run every transfer listed in a manifest",
		Long: `Batch loads a manifest (YAML, JSON, or HCL), expands its glob
sources, and runs the resulting transfers with bounded parallelism.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "batch").Logger().WithContext(cmd.Context())

			manifest, err := config.Load(ctx, manifestFile)
			if err != nil {
				return errors.Errorf("loading manifest: %w", err)
			}
			if parallel > 0 {
				manifest.Parallel = parallel
			}

			ex, err := batch.New(batch.Options{
				Manifest: manifest,
				Reporter: o.UserLogger,
			})
			if err != nil {
				return errors.Errorf("creating executor: %w", err)
			}

			o.UserLogger.Header(fmt.Sprintf("%d transfers from %s", len(manifest.Transfers), manifest.Location()))

			if err := ex.Execute(ctx); err != nil {
				o.UserLogger.Error("batch failed", err)
				return errors.Errorf("executing manifest: %w", err)
			}

			o.UserLogger.Success("batch complete")
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestFile, "manifest", "c", ".copyfd", "manifest file path")
	cmd.Flags().IntVarP(&parallel, "parallel", "j", 0, "override the manifest's parallel limit")

	return cmd
}
