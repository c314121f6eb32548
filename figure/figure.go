// Package figure renders panels into PNG images using gonum/plot.
package figure

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ftl/lwplot/panel"
)

const (
	GridSuffix  = "_grid.png"
	NoiseSuffix = "_noise.png"
	PanelSuffix = ".png"

	heatmapColors = 255
)

type Size struct {
	Width  vg.Length
	Height vg.Length
}

func Inches(width, height float64) Size {
	return Size{
		Width:  vg.Length(width) * vg.Inch,
		Height: vg.Length(height) * vg.Inch,
	}
}

// GridFilename is the filename of the grid figure of the given dump file.
func GridFilename(dumpFilename string) string {
	return dumpFilename + GridSuffix
}

// NoiseFilename is the filename of the noise figure of the given dump file.
func NoiseFilename(dumpFilename string) string {
	return dumpFilename + NoiseSuffix
}

// PanelFilename is the filename of the single panel figure of the given dump file.
func PanelFilename(dumpFilename string) string {
	return dumpFilename + PanelSuffix
}

// NewPlot converts the given panel into a plot. Points that cannot be drawn (NaN, infinite, or not positive
// on a logarithmic axis) are left out.
func NewPlot(p panel.Panel) (*plot.Plot, error) {
	result := plot.New()
	result.Title.Text = p.Title
	result.X.Label.Text = p.XLabel
	result.Y.Label.Text = p.YLabel
	result.Add(plotter.NewGrid())

	switch p.Kind {
	case panel.Heatmap:
		if p.Density == nil {
			return nil, fmt.Errorf("heatmap panel %q without density", p.Title)
		}
		heatmap := plotter.NewHeatMap(density{p.Density}, palette.Heat(heatmapColors, 1))
		heatmap.NaN = color.Transparent
		if math.IsInf(heatmap.Min, 1) {
			heatmap.Min, heatmap.Max = 0, 1
		}
		if heatmap.Max <= heatmap.Min {
			heatmap.Max = heatmap.Min + 1
		}
		result.Add(heatmap)
		return result, nil
	case panel.Scatter, panel.Lines:
	default:
		return nil, fmt.Errorf("unknown panel kind %v", p.Kind)
	}

	var drawn int
	for i, series := range p.Series {
		points := drawablePoints(series.X, series.Y, p.XScale == panel.LogScale, p.YScale == panel.LogScale)
		if len(points) == 0 {
			zap.L().Debug("nothing to draw", zap.String("panel", p.Title), zap.String("series", series.Name))
			continue
		}
		drawn++

		if p.Kind == panel.Scatter {
			scatter, err := plotter.NewScatter(points)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", series.Name, err)
			}
			scatter.GlyphStyle.Color = plotutil.Color(i)
			scatter.GlyphStyle.Radius = vg.Points(1)
			scatter.GlyphStyle.Shape = draw.CircleGlyph{}
			result.Add(scatter)
			continue
		}

		line, err := plotter.NewLine(points)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", series.Name, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1)
		result.Add(line)
		if len(p.Series) > 1 {
			result.Legend.Add(series.Name, line)
		}
	}

	if drawn > 0 {
		if p.XScale == panel.LogScale {
			result.X.Scale = plot.LogScale{}
			result.X.Tick.Marker = plot.LogTicks{Prec: -1}
		}
		if p.YScale == panel.LogScale {
			result.Y.Scale = plot.LogScale{}
			result.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		}
	}
	result.Legend.Top = true

	return result, nil
}

func drawablePoints(x, y []float64, logX, logY bool) plotter.XYs {
	n := min(len(x), len(y))
	result := make(plotter.XYs, 0, n)
	for i := range n {
		if !drawable(x[i], logX) || !drawable(y[i], logY) {
			continue
		}
		result = append(result, plotter.XY{X: x[i], Y: y[i]})
	}
	return result
}

func drawable(value float64, logScale bool) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false
	}
	return !logScale || value > 0
}

// density adapts a panel density to plotter.GridXYZ.
type density struct {
	*panel.Density
}

func (d density) Dims() (c, r int) {
	if len(d.Counts) == 0 {
		return 0, 0
	}
	return len(d.Counts), len(d.Counts[0])
}

func (d density) Z(c, r int) float64 {
	return d.Counts[c][r]
}

func (d density) X(c int) float64 {
	return (d.XEdges[c] + d.XEdges[c+1]) / 2
}

func (d density) Y(r int) float64 {
	return (d.YEdges[r] + d.YEdges[r+1]) / 2
}

// RenderGrid draws all panels of the grid as tiles of one PNG image.
func RenderGrid(w io.Writer, grid *panel.Grid, size Size) error {
	plots := make([][]*plot.Plot, grid.Rows)
	for row := range plots {
		plots[row] = make([]*plot.Plot, grid.Cols)
		for col := range plots[row] {
			p, err := NewPlot(*grid.At(row, col))
			if err != nil {
				return fmt.Errorf("panel %d/%d: %w", row, col, err)
			}
			plots[row][col] = p
		}
	}

	img := vgimg.New(size.Width, size.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: grid.Rows,
		Cols: grid.Cols,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,

		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
	}
	canvases := plot.Align(plots, tiles, dc)
	for row := range plots {
		for col := range plots[row] {
			plots[row][col].Draw(canvases[row][col])
		}
	}

	_, err := vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}

// RenderPanel draws a single panel as PNG image.
func RenderPanel(w io.Writer, p panel.Panel, size Size) error {
	pl, err := NewPlot(p)
	if err != nil {
		return err
	}

	img := vgimg.New(size.Width, size.Height)
	pl.Draw(draw.New(img))

	_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}

func SaveGrid(filename string, grid *panel.Grid, size Size) error {
	return save(filename, func(w io.Writer) error {
		return RenderGrid(w, grid, size)
	})
}

func SavePanel(filename string, p panel.Panel, size Size) error {
	return save(filename, func(w io.Writer) error {
		return RenderPanel(w, p, size)
	})
}

func save(filename string, render func(io.Writer) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create figure: %w", err)
	}
	defer f.Close()

	if err := render(f); err != nil {
		return fmt.Errorf("cannot render %s: %w", filename, err)
	}
	zap.L().Debug("figure saved", zap.String("filename", filename))
	return f.Close()
}
