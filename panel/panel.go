// Package panel assembles the diagnostic panels of a longwave dump as reduced numeric series.
// Rendering the panels is left to the figure, export and scope packages.
package panel

import (
	"fmt"

	"github.com/ftl/lwplot/config"
	"github.com/ftl/lwplot/reduce"
)

type Scale int

const (
	LinearScale Scale = iota
	LogScale
)

func (s Scale) String() string {
	if s == LogScale {
		return "log"
	}
	return "linear"
}

func ParseScale(s string) (Scale, error) {
	switch s {
	case "linear":
		return LinearScale, nil
	case "log":
		return LogScale, nil
	default:
		return LinearScale, fmt.Errorf("unknown scale %q", s)
	}
}

type Kind int

const (
	Lines Kind = iota
	Scatter
	Heatmap
)

func (k Kind) String() string {
	switch k {
	case Scatter:
		return "scatter"
	case Heatmap:
		return "heatmap"
	default:
		return "lines"
	}
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "lines":
		return Lines, nil
	case "scatter":
		return Scatter, nil
	case "heatmap":
		return Heatmap, nil
	default:
		return Lines, fmt.Errorf("unknown panel kind %q", s)
	}
}

// Series is a named reduced series within a panel.
type Series struct {
	Name string
	reduce.Series
}

// Density is a two dimensional histogram. Counts are indexed [x][y], empty cells are NaN.
type Density struct {
	Counts [][]float64
	XEdges []float64
	YEdges []float64
}

// Panel describes one plot.
type Panel struct {
	Title  string
	XLabel string
	YLabel string
	XScale Scale
	YScale Scale
	Kind   Kind
	Series []Series

	// Density is only set for Heatmap panels.
	Density *Density
}

// Grid is a row-major table of panels.
type Grid struct {
	Title  string
	Rows   int
	Cols   int
	Panels []Panel
}

func NewGrid(title string, rows, cols int) *Grid {
	return &Grid{
		Title:  title,
		Rows:   rows,
		Cols:   cols,
		Panels: make([]Panel, rows*cols),
	}
}

// At returns the panel in the given row and column.
func (g *Grid) At(row, col int) *Panel {
	return &g.Panels[row*g.Cols+col]
}

// Options control how the panels are built.
type Options struct {
	Boards     []string
	Window     int
	SampleStep int

	ReduceTime     bool
	TimeMode       reduce.Mode
	ReduceSpectrum bool
	Factor         int
	LogGroups      int

	Heatmap     bool
	HeatmapBins int
}

// NewOptions derives the panel options from the given validated configuration.
func NewOptions(cfg *config.Config) Options {
	timeMode, err := reduce.ParseMode(cfg.Reduction.Mode)
	if err != nil {
		timeMode = reduce.Linear
	}
	return Options{
		Boards:         cfg.Boards,
		Window:         cfg.Window,
		SampleStep:     cfg.SampleStep,
		ReduceTime:     cfg.Reduction.Time,
		TimeMode:       timeMode,
		ReduceSpectrum: cfg.Reduction.Spectrum,
		Factor:         cfg.Reduction.Factor,
		LogGroups:      cfg.Reduction.LogGroups,
		Heatmap:        cfg.Figure.Heatmap,
		HeatmapBins:    defaultHeatmapBins,
	}
}

func (o Options) timeScale() Scale {
	if o.ReduceTime && o.TimeMode == reduce.Logarithmic {
		return LogScale
	}
	return LinearScale
}

func (o Options) board(channel int) string {
	if channel < len(o.Boards) {
		return o.Boards[channel]
	}
	return fmt.Sprintf("ch%d", channel)
}
