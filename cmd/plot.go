package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ftl/lwplot/config"
	"github.com/ftl/lwplot/figure"
)

var plotFlags = struct {
	correlation bool
	noise       bool
}{}

var plotCmd = &cobra.Command{
	Use:   "plot <ldump>...",
	Short: "plot the diagnostic grid of each dump file into <ldump>_grid.png",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWithCtx(runPlot),
}

func init() {
	rootCmd.AddCommand(plotCmd)

	plotCmd.Flags().BoolVar(&plotFlags.correlation, "correlation", true, "also plot the moving average of channel 2 against channel 1 into <ldump>.png")
	plotCmd.Flags().BoolVar(&plotFlags.noise, "noise", false, "also plot the magnitude spectrum and the integrated noise of each channel into <ldump>_noise.png")
}

func runPlot(ctx context.Context, cfg *config.Config, _ *cobra.Command, args []string) error {
	size := figure.Inches(cfg.Figure.Width, cfg.Figure.Height)
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
		err = figure.SaveGrid(figure.GridFilename(filename), grid, size)
		if err != nil {
			return err
		}

		if plotFlags.correlation {
			err = figure.SavePanel(figure.PanelFilename(filename), a.correlation(cfg), size)
			if err != nil {
				return err
			}
		}
		if plotFlags.noise {
			noise, err := a.noise(cfg)
			if err != nil {
				return err
			}
			err = figure.SaveGrid(figure.NoiseFilename(filename), noise, size)
			if err != nil {
				return err
			}
		}
		zap.S().Infof("%s plotted", filename)
	}
	return nil
}
