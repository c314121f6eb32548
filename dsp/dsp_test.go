package dsp

import (
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock_MinMax_FirstOccurrence(t *testing.T) {
	tt := []struct {
		block        Block[float64]
		from, to     int
		expectedMin  float64
		expectedMinI int
		expectedMax  float64
		expectedMaxI int
	}{
		{Block[float64]{5, 1, 3, 9}, 0, 3, 1, 1, 9, 3},
		{Block[float64]{2, 2, 2}, 0, 2, 2, 0, 2, 0},
		{Block[float64]{7, 1, 9, 1, 9}, 0, 4, 1, 1, 9, 2},
		{Block[float64]{7, 1, 9, 1, 9}, 3, 4, 1, 3, 9, 4},
		{Block[float64]{4}, 0, 0, 4, 0, 4, 0},
	}
	for i, tc := range tt {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			minValue, minI := tc.block.Min(tc.from, tc.to)
			maxValue, maxI := tc.block.Max(tc.from, tc.to)

			assert.Equal(t, tc.expectedMin, minValue, "min")
			assert.Equal(t, tc.expectedMinI, minI, "min index")
			assert.Equal(t, tc.expectedMax, maxValue, "max")
			assert.Equal(t, tc.expectedMaxI, maxI, "max index")
		})
	}
}

func TestBlock_MinMax_SkipsNaN(t *testing.T) {
	tt := []struct {
		desc         string
		block        Block[float64]
		expectedMin  float64
		expectedMinI int
		expectedMax  float64
		expectedMaxI int
	}{
		{"leading NaN", Block[float64]{math.NaN(), 3, 1, 5}, 1, 2, 5, 3},
		{"NaN in between", Block[float64]{2, math.NaN(), 7, 1}, 1, 3, 7, 2},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			minValue, minI := tc.block.Min(0, len(tc.block)-1)
			maxValue, maxI := tc.block.Max(0, len(tc.block)-1)

			assert.Equal(t, tc.expectedMin, minValue)
			assert.Equal(t, tc.expectedMinI, minI)
			assert.Equal(t, tc.expectedMax, maxValue)
			assert.Equal(t, tc.expectedMaxI, maxI)
		})
	}
}

func TestBlock_MinMax_OnlyNaN(t *testing.T) {
	block := Block[float64]{math.NaN(), math.NaN()}

	minValue, minI := block.Min(0, 1)
	maxValue, maxI := block.Max(0, 1)

	assert.True(t, math.IsNaN(minValue))
	assert.Equal(t, 0, minI)
	assert.True(t, math.IsNaN(maxValue))
	assert.Equal(t, 0, maxI)
}

func TestTrailingMean(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	actual := TrailingMean(values, 3)

	require.Len(t, actual, len(values))
	assert.True(t, math.IsNaN(actual[0]))
	assert.True(t, math.IsNaN(actual[1]))
	assert.InDelta(t, 2.0, actual[2], 1e-12)
	assert.InDelta(t, 3.0, actual[3], 1e-12)
	assert.InDelta(t, 4.0, actual[4], 1e-12)
}

func TestTrailingMean_WindowOfOne(t *testing.T) {
	values := []float64{1, 0, 2}

	actual := TrailingMean(values, 1)

	assert.Equal(t, values, actual)
}

func TestRollingMean_Full(t *testing.T) {
	mean := NewRollingMean[float64](2)

	mean.Put(4)
	assert.False(t, mean.Full())
	assert.Equal(t, 3.0, mean.Put(2))
	assert.True(t, mean.Full())
}

func TestRollingMean_Integer(t *testing.T) {
	mean := NewRollingMean[int](2)

	mean.Put(4)
	mean.Put(2)

	assert.Equal(t, 5, mean.Put(8))
}

func TestTrailingMean_RecoversAfterSpike(t *testing.T) {
	values := []float64{1e17, 1, 1, 1, 1}

	actual := TrailingMean(values, 2)

	assert.True(t, math.IsNaN(actual[0]))
	assert.InDelta(t, 5e16, actual[1], 1e2)
	assert.Equal(t, []float64{1, 1, 1}, actual[2:])
}

func TestMeanPhasor(t *testing.T) {
	assert.Equal(t, complex(0, 0), MeanPhasor(nil))
	assert.Equal(t, complex(2, -1), MeanPhasor([]complex128{complex(1, 0), complex(3, -2)}))
}

func TestUnwrap(t *testing.T) {
	tt := []struct {
		desc     string
		phase    []float64
		expected []float64
	}{
		{"empty", []float64{}, []float64{}},
		{"no jumps", []float64{0, 0.5, 1, 1.5}, []float64{0, 0.5, 1, 1.5}},
		{"positive wrap", []float64{3, -3}, []float64{3, 2*math.Pi - 3}},
		{"negative wrap", []float64{-3, 3}, []float64{-3, 3 - 2*math.Pi}},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual := Unwrap(tc.phase)
			require.Len(t, actual, len(tc.expected))
			for i := range tc.expected {
				assert.InDelta(t, tc.expected[i], actual[i], 1e-12, "index %d", i)
			}
		})
	}
}

func TestUnwrap_RotatingPhasor(t *testing.T) {
	n := 64
	step := 0.4
	z := make([]complex128, n)
	for i := range z {
		z[i] = cmplx.Rect(1, float64(i)*step)
	}

	actual := Unwrap(Angle(z))

	for i := range actual {
		assert.InDelta(t, float64(i)*step, actual[i], 1e-9, "index %d", i)
	}
}

func TestHistogram2D(t *testing.T) {
	x := []float64{0, 0, 1, 1}
	y := []float64{0, 0, 0, 1}

	counts, xEdges, yEdges := Histogram2D(x, y, 2)

	require.Len(t, xEdges, 3)
	require.Len(t, yEdges, 3)
	assert.Equal(t, 2.0, counts[0][0])
	assert.Equal(t, 0.0, counts[0][1])
	assert.Equal(t, 1.0, counts[1][0])
	assert.Equal(t, 1.0, counts[1][1])
}

func TestHistogram2D_ConstantValues(t *testing.T) {
	counts, xEdges, _ := Histogram2D([]float64{1, 1}, []float64{2, 2}, 4)

	assert.Equal(t, 0.5, xEdges[0])
	assert.Equal(t, 1.5, xEdges[4])
	var total float64
	for _, column := range counts {
		for _, c := range column {
			total += c
		}
	}
	assert.Equal(t, 2.0, total)
}
