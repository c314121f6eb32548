package cmd

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ftl/lwplot/config"
	"github.com/ftl/lwplot/ldump"
	"github.com/ftl/lwplot/panel"
	"github.com/ftl/lwplot/wave"
)

// analysis is a decoded dump file.
type analysis struct {
	filename string
	dump     *ldump.Dump
	set      wave.ChannelSet
	timing   wave.Timing
}

func analyze(filename string, cfg *config.Config) (*analysis, error) {
	dump, err := ldump.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	set, err := dump.Decode(cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", filename, err)
	}
	zap.L().Debug("dump decoded", zap.String("filename", filename), zap.Int("samples", set.Len()))

	return &analysis{
		filename: filename,
		dump:     dump,
		set:      set,
		timing:   wave.NewTiming(cfg.Clock, dump.Header.WavesPerSample),
	}, nil
}

func (a *analysis) name() string {
	return filepath.Base(a.filename)
}

func (a *analysis) grid(cfg *config.Config) (*panel.Grid, error) {
	result, err := panel.BuildGrid(a.name(), a.set, a.timing, panel.NewOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("cannot build the panels of %s: %w", a.filename, err)
	}
	return result, nil
}

func (a *analysis) noise(cfg *config.Config) (*panel.Grid, error) {
	result, err := panel.BuildNoise(a.name(), a.set, a.timing, panel.NewOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("cannot build the noise panels of %s: %w", a.filename, err)
	}
	return result, nil
}

func (a *analysis) correlation(cfg *config.Config) panel.Panel {
	return panel.BuildCorrelation(a.name(), a.set, 2, 1, panel.NewOptions(cfg))
}
