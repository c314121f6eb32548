package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ftl/lwplot/config"
	"github.com/ftl/lwplot/scope"
)

var scopeFlags = struct {
	interval time.Duration
}{}

var scopeCmd = &cobra.Command{
	Use:   "scope <ldump>...",
	Short: "serve the panels of the dump files to remote viewers until interrupted",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWithCtx(runScope),
}

func init() {
	rootCmd.AddCommand(scopeCmd)

	defaults := config.DefaultConfig()
	scopeCmd.Flags().String("grpc-address", defaults.Scope.GRPCAddress, "the listening address of the gRPC scope server, empty to disable")
	scopeCmd.Flags().String("websocket-address", defaults.Scope.WebsocketAddress, "the listening address of the websocket feed, empty to disable")
	scopeCmd.Flags().DurationVar(&scopeFlags.interval, "interval", 5*time.Second, "the interval to repeat the frames for new viewers")

	bindFlag("scope.grpc_address", scopeCmd.Flags().Lookup("grpc-address"))
	bindFlag("scope.websocket_address", scopeCmd.Flags().Lookup("websocket-address"))
}

func runScope(ctx context.Context, cfg *config.Config, _ *cobra.Command, args []string) error {
	var frames []*scope.Frame
	for _, filename := range args {
		a, err := analyze(filename, cfg)
		if err != nil {
			return err
		}
		grid, err := a.grid(cfg)
		if err != nil {
			return err
		}
		frames = append(frames, scope.GridFrames(scope.StreamID(a.name()), grid, time.Now())...)
	}

	server := scope.NewServer(cfg.Scope.GRPCAddress, cfg.Scope.WebsocketAddress)
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	return serveFrames(ctx, server, frames, scopeFlags.interval)
}

// serveFrames shows the frames repeatedly until the context is done.
func serveFrames(ctx context.Context, server *scope.Server, frames []*scope.Frame, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		for _, frame := range frames {
			if err := server.Show(frame); err != nil {
				return err
			}
		}
		zap.L().Debug("frames shown", zap.Int("frames", len(frames)))

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
