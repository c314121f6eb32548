package cmd

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ftl/lwplot/config"
)

var (
	version   string = "develop"
	gitCommit string = "-"
	buildTime string = "-"
)

var rootFlags = struct {
	pprof  bool
	debug  bool
	config string
}{}

var rootCmd = &cobra.Command{
	Use:   "lwplot",
	Short: "lwplot - analyse and plot the waveform dumps of the longwave boards",

	SilenceUsage: true,
}

// v holds the analysis configuration of all commands.
var v = viper.New()

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaults := config.DefaultConfig()

	rootCmd.PersistentFlags().BoolVar(&rootFlags.pprof, "pprof", false, "enable pprof")
	rootCmd.PersistentFlags().BoolVar(&rootFlags.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootFlags.config, "config", "", "the configuration file (YAML)")
	rootCmd.PersistentFlags().MarkHidden("pprof")

	rootCmd.PersistentFlags().Float64("clock", defaults.Clock, "the ADC clock in Hz")
	rootCmd.PersistentFlags().Int("window", defaults.Window, "the window of the moving averages in rows")
	rootCmd.PersistentFlags().Int("step", defaults.SampleStep, "use only every n-th sample in the I/Q and correlation panels")
	rootCmd.PersistentFlags().StringSlice("boards", defaults.Boards, "the board name of each of the four channels")
	rootCmd.PersistentFlags().Bool("reduce", defaults.Reduction.Time, "reduce the time domain panels to min/mean/max groups")
	rootCmd.PersistentFlags().String("time-mode", defaults.Reduction.Mode, "the group spacing of the time domain panels: lin or log")
	rootCmd.PersistentFlags().Bool("reduce-spectrum", defaults.Reduction.Spectrum, "reduce the spectrum panels to logarithmic groups")
	rootCmd.PersistentFlags().Int("factor", defaults.Reduction.Factor, "the number of samples per group in the time domain panels")
	rootCmd.PersistentFlags().Int("log-groups", defaults.Reduction.LogGroups, "the number of groups in the spectrum panels")
	rootCmd.PersistentFlags().Float64("width", defaults.Figure.Width, "the width of the figures in inches")
	rootCmd.PersistentFlags().Float64("height", defaults.Figure.Height, "the height of the figures in inches")
	rootCmd.PersistentFlags().Bool("heatmap", defaults.Figure.Heatmap, "show the I/Q panels as heatmap instead of scatter plot")

	bindFlag("clock", rootCmd.PersistentFlags().Lookup("clock"))
	bindFlag("window", rootCmd.PersistentFlags().Lookup("window"))
	bindFlag("sample_step", rootCmd.PersistentFlags().Lookup("step"))
	bindFlag("boards", rootCmd.PersistentFlags().Lookup("boards"))
	bindFlag("reduction.time", rootCmd.PersistentFlags().Lookup("reduce"))
	bindFlag("reduction.mode", rootCmd.PersistentFlags().Lookup("time-mode"))
	bindFlag("reduction.spectrum", rootCmd.PersistentFlags().Lookup("reduce-spectrum"))
	bindFlag("reduction.factor", rootCmd.PersistentFlags().Lookup("factor"))
	bindFlag("reduction.log_groups", rootCmd.PersistentFlags().Lookup("log-groups"))
	bindFlag("figure.width", rootCmd.PersistentFlags().Lookup("width"))
	bindFlag("figure.height", rootCmd.PersistentFlags().Lookup("height"))
	bindFlag("figure.heatmap", rootCmd.PersistentFlags().Lookup("heatmap"))
}

func runWithCtx(f func(ctx context.Context, cfg *config.Config, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		logger := newLogger(os.Stderr, rootFlags.debug)
		defer logger.Sync()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Debugf("lwplot Version %s", formatVersion())

		if rootFlags.pprof {
			go func() {
				zap.L().Info("starting pprof on http://localhost:6060/debug/pprof")
				zap.L().Info("pprof stopped", zap.Error(http.ListenAndServe("localhost:6060", nil)))
			}()
		}

		cfg, err := config.Load(v, rootFlags.config)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		defer signal.Stop(signals)
		go handleCancelation(signals, cancel)

		return f(ctx, cfg, cmd, args)
	}
}

func formatVersion() string {
	if gitCommit == "-" && buildTime == "-" {
		return version
	}
	return fmt.Sprintf("%s_%s_%s", version, gitCommit, buildTime)
}

func handleCancelation(signals <-chan os.Signal, cancel context.CancelFunc) {
	count := 0
	for range signals {
		count++
		if count == 1 {
			cancel()
		} else {
			zap.L().Fatal("hard shutdown")
		}
	}
}
