package figure

import (
	"bytes"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ftl/lwplot/panel"
	"github.com/ftl/lwplot/reduce"
)

func linePanel(scale panel.Scale) panel.Panel {
	return panel.Panel{
		Title:  "lines",
		XScale: scale,
		Kind:   panel.Lines,
		Series: []panel.Series{
			{Name: "one", Series: reduce.Series{X: []float64{0, 1, 2, 3}, Y: []float64{math.NaN(), 1, 4, 9}}},
			{Name: "two", Series: reduce.Series{X: []float64{0, 1, 2, 3}, Y: []float64{0, 1, 2, 3}}},
		},
	}
}

func TestDrawablePoints(t *testing.T) {
	tt := []struct {
		desc     string
		x        []float64
		y        []float64
		logX     bool
		expected int
	}{
		{"all", []float64{0, 1, 2}, []float64{1, 2, 3}, false, 3},
		{"nan", []float64{0, 1, 2}, []float64{math.NaN(), 2, 3}, false, 2},
		{"inf", []float64{0, math.Inf(1), 2}, []float64{1, 2, 3}, false, 2},
		{"log x", []float64{0, 1, 2}, []float64{1, 2, 3}, true, 2},
		{"log x negative", []float64{-1, 1, 2}, []float64{1, 2, 3}, true, 2},
		{"length mismatch", []float64{0, 1, 2}, []float64{1, 2}, false, 2},
		{"empty", nil, nil, false, 0},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual := drawablePoints(tc.x, tc.y, tc.logX, false)
			assert.Len(t, actual, tc.expected)
		})
	}
}

func TestNewPlot_Lines(t *testing.T) {
	p, err := NewPlot(linePanel(panel.LinearScale))
	require.NoError(t, err)

	assert.Equal(t, "lines", p.Title.Text)
	assert.Equal(t, 0.0, p.X.Min)
	assert.Equal(t, 3.0, p.X.Max)
	assert.Equal(t, 9.0, p.Y.Max)
}

func TestNewPlot_LogScale(t *testing.T) {
	p, err := NewPlot(linePanel(panel.LogScale))
	require.NoError(t, err)

	assert.IsType(t, plot.LogScale{}, p.X.Scale)
	assert.Equal(t, 1.0, p.X.Min)
}

func TestNewPlot_LogScaleWithoutPoints(t *testing.T) {
	p, err := NewPlot(panel.Panel{
		Kind:   panel.Lines,
		XScale: panel.LogScale,
		Series: []panel.Series{{Name: "empty", Series: reduce.Series{X: []float64{0}, Y: []float64{1}}}},
	})
	require.NoError(t, err)

	assert.IsType(t, plot.LinearScale{}, p.X.Scale)
}

func TestNewPlot_HeatmapWithoutDensity(t *testing.T) {
	_, err := NewPlot(panel.Panel{Kind: panel.Heatmap})
	assert.Error(t, err)
}

func TestRenderPanel(t *testing.T) {
	var buffer bytes.Buffer

	err := RenderPanel(&buffer, linePanel(panel.LinearScale), Inches(4, 3))
	require.NoError(t, err)

	img, err := png.Decode(&buffer)
	require.NoError(t, err)
	assert.Equal(t, 4*96, img.Bounds().Dx())
	assert.Equal(t, 3*96, img.Bounds().Dy())
}

func TestRenderGrid(t *testing.T) {
	grid := panel.NewGrid("grid", 2, 2)
	*grid.At(0, 0) = linePanel(panel.LinearScale)
	*grid.At(0, 1) = linePanel(panel.LogScale)
	*grid.At(1, 0) = panel.Panel{
		Kind:   panel.Scatter,
		Series: []panel.Series{{Name: "I/Q", Series: reduce.Series{X: []float64{1, 2, 3}, Y: []float64{-1, 0, 1}}}},
	}
	*grid.At(1, 1) = panel.Panel{
		Kind: panel.Heatmap,
		Density: &panel.Density{
			Counts: [][]float64{{1, math.NaN()}, {math.NaN(), 3}},
			XEdges: []float64{0, 1, 2},
			YEdges: []float64{0, 1, 2},
		},
	}
	var buffer bytes.Buffer

	err := RenderGrid(&buffer, grid, Inches(6, 4))
	require.NoError(t, err)

	_, err = png.Decode(&buffer)
	assert.NoError(t, err)
}

func TestNewPlot_UniformHeatmap(t *testing.T) {
	p, err := NewPlot(panel.Panel{
		Kind: panel.Heatmap,
		Density: &panel.Density{
			Counts: [][]float64{{1, 1}, {1, math.NaN()}},
			XEdges: []float64{0, 1, 2},
			YEdges: []float64{0, 1, 2},
		},
	})
	require.NoError(t, err)

	var buffer bytes.Buffer
	img := vgimg.New(Inches(3, 2).Width, Inches(3, 2).Height)
	p.Draw(draw.New(img))
	_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(&buffer)
	assert.NoError(t, err)
}

func TestSavePanel(t *testing.T) {
	filename := PanelFilename(filepath.Join(t.TempDir(), "dump.txt"))

	err := SavePanel(filename, linePanel(panel.LinearScale), Inches(3, 2))
	require.NoError(t, err)

	assert.FileExists(t, filename)
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "dump.txt_grid.png", GridFilename("dump.txt"))
	assert.Equal(t, "dump.txt_noise.png", NoiseFilename("dump.txt"))
	assert.Equal(t, "dump.txt.png", PanelFilename("dump.txt"))
}
