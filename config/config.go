// Package config provides the analysis configuration for lwplot.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ftl/lwplot/reduce"
	"github.com/ftl/lwplot/wave"
)

const EnvPrefix = "LWPLOT"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the complete analysis configuration
type Config struct {
	Clock      float64      `mapstructure:"clock"`       // ADC clock in Hz
	Window     int          `mapstructure:"window"`      // moving average window in rows
	SampleStep int          `mapstructure:"sample_step"` // decimation of the I/Q scatter panels
	Boards     []string     `mapstructure:"boards"`      // board name of each channel
	Reduction  Reduction    `mapstructure:"reduction"`
	Figure     FigureConfig `mapstructure:"figure"`
	Scope      ScopeConfig  `mapstructure:"scope"`
}

// Reduction configures the visual data reduction of the panels.
type Reduction struct {
	Time      bool   `mapstructure:"time"`       // reduce the time domain panels
	Mode      string `mapstructure:"mode"`       // group spacing of the time domain panels: lin or log
	Spectrum  bool   `mapstructure:"spectrum"`   // reduce the spectrum panels
	Factor    int    `mapstructure:"factor"`     // group size of the time domain panels
	LogGroups int    `mapstructure:"log_groups"` // number of groups of the spectrum panels
}

// FigureConfig configures the rendered figures.
type FigureConfig struct {
	Width   float64 `mapstructure:"width"`  // in inches
	Height  float64 `mapstructure:"height"` // in inches
	Heatmap bool    `mapstructure:"heatmap"`
}

// ScopeConfig configures the scope server.
type ScopeConfig struct {
	GRPCAddress      string `mapstructure:"grpc_address"`
	WebsocketAddress string `mapstructure:"websocket_address"`
}

// DefaultConfig returns the configuration used for the longwave lab setup.
func DefaultConfig() *Config {
	return &Config{
		Clock:      wave.DefaultClock,
		Window:     512,
		SampleStep: 1,
		Boards:     []string{"llrf1", "llrf1molk1", "llrf1molk2", "llrf2molk1"},
		Reduction: Reduction{
			Time:      true,
			Mode:      reduce.Linear.String(),
			Spectrum:  true,
			Factor:    16384,
			LogGroups: 512,
		},
		Figure: FigureConfig{
			Width:   30,
			Height:  20,
			Heatmap: false,
		},
		Scope: ScopeConfig{
			GRPCAddress:      ":35369",
			WebsocketAddress: "",
		},
	}
}

// SetDefaults registers the default configuration with the given viper instance.
func SetDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("clock", defaults.Clock)
	v.SetDefault("window", defaults.Window)
	v.SetDefault("sample_step", defaults.SampleStep)
	v.SetDefault("boards", defaults.Boards)
	v.SetDefault("reduction.time", defaults.Reduction.Time)
	v.SetDefault("reduction.mode", defaults.Reduction.Mode)
	v.SetDefault("reduction.spectrum", defaults.Reduction.Spectrum)
	v.SetDefault("reduction.factor", defaults.Reduction.Factor)
	v.SetDefault("reduction.log_groups", defaults.Reduction.LogGroups)
	v.SetDefault("figure.width", defaults.Figure.Width)
	v.SetDefault("figure.height", defaults.Figure.Height)
	v.SetDefault("figure.heatmap", defaults.Figure.Heatmap)
	v.SetDefault("scope.grpc_address", defaults.Scope.GRPCAddress)
	v.SetDefault("scope.websocket_address", defaults.Scope.WebsocketAddress)
}

// Load reads the configuration file (if any) and the environment into a validated Config.
func Load(v *viper.Viper, filename string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
	}

	result := DefaultConfig()
	if err := v.Unmarshal(result); err != nil {
		return nil, fmt.Errorf("cannot unmarshal config: %w", err)
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// Validate checks the configuration for values the analysis cannot work with.
func (c *Config) Validate() error {
	if c.Clock <= 0 {
		return fmt.Errorf("%w: clock %v must be positive", ErrInvalidConfig, c.Clock)
	}
	if c.Window < 1 {
		return fmt.Errorf("%w: window %d must be positive", ErrInvalidConfig, c.Window)
	}
	if c.SampleStep < 1 {
		return fmt.Errorf("%w: sample step %d must be positive", ErrInvalidConfig, c.SampleStep)
	}
	if len(c.Boards) != wave.ChannelCount {
		return fmt.Errorf("%w: %d board names given, one for each of the %d channels required", ErrInvalidConfig, len(c.Boards), wave.ChannelCount)
	}
	if c.Reduction.Factor < 1 {
		return fmt.Errorf("%w: reduction factor %d must be positive", ErrInvalidConfig, c.Reduction.Factor)
	}
	if _, err := reduce.ParseMode(c.Reduction.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Reduction.LogGroups < 1 {
		return fmt.Errorf("%w: %d log groups", ErrInvalidConfig, c.Reduction.LogGroups)
	}
	if c.Figure.Width <= 0 || c.Figure.Height <= 0 {
		return fmt.Errorf("%w: figure size %vx%v", ErrInvalidConfig, c.Figure.Width, c.Figure.Height)
	}
	return nil
}
