package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ftl/lwplot/config"
	"github.com/ftl/lwplot/figure"
	"github.com/ftl/lwplot/panel"
	"github.com/ftl/lwplot/wave"
)

var overlayFlags = struct {
	channel int
	out     string
	title   string
}{}

var overlayCmd = &cobra.Command{
	Use:   "overlay <ldump>...",
	Short: "plot the moving average of one channel of several dump files into one figure",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWithCtx(runOverlay),
}

func init() {
	rootCmd.AddCommand(overlayCmd)

	overlayCmd.Flags().IntVar(&overlayFlags.channel, "channel", 2, "the channel to compare (0-3)")
	overlayCmd.Flags().StringVar(&overlayFlags.out, "out", "overlay.png", "the filename of the figure")
	overlayCmd.Flags().StringVar(&overlayFlags.title, "title", "", "the title of the figure")
}

func runOverlay(ctx context.Context, cfg *config.Config, _ *cobra.Command, args []string) error {
	if overlayFlags.channel < 0 || overlayFlags.channel >= wave.ChannelCount {
		return fmt.Errorf("channel %d must be within [0, %d]", overlayFlags.channel, wave.ChannelCount-1)
	}

	sources := make([]panel.Source, len(args))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())
	for i, filename := range args {
		group.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a, err := analyze(filename, cfg)
			if err != nil {
				return err
			}
			sources[i] = panel.Source{
				Name:   a.name(),
				Set:    a.set,
				Timing: a.timing,
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	overlay, err := panel.BuildOverlay(overlayFlags.title, sources, overlayFlags.channel, panel.NewOptions(cfg))
	if err != nil {
		return err
	}
	return figure.SavePanel(overlayFlags.out, overlay, figure.Inches(cfg.Figure.Width, cfg.Figure.Height))
}
