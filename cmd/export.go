package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ftl/lwplot/config"
	"github.com/ftl/lwplot/export"
)

var exportFlags = struct {
	compression string
}{}

var exportCmd = &cobra.Command{
	Use:   "export <ldump>...",
	Short: "export the reduced panels of each dump file into <ldump>.parquet",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWithCtx(runExport),
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFlags.compression, "compression", "snappy", "the parquet compression: snappy, zstd, gzip or none")
}

func runExport(ctx context.Context, cfg *config.Config, _ *cobra.Command, args []string) error {
	compression, err := export.Compression(exportFlags.compression)
	if err != nil {
		return err
	}

	for _, filename := range args {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		a, err := analyze(filename, cfg)
		if err != nil {
			return err
		}
		grid, err := a.grid(cfg)
		if err != nil {
			return err
		}

		points := export.GridPoints(grid)
		points = append(points, export.PanelPoints(grid.Rows, 0, a.correlation(cfg))...)
		err = export.WriteFile(export.Filename(filename), points, compression)
		if err != nil {
			return err
		}
		zap.S().Infof("%s exported, %d points", filename, len(points))
	}
	return nil
}
