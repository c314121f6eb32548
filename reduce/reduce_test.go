package reduce

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int) []float64 {
	result := make([]float64, n)
	for i := range result {
		result[i] = float64(i)
	}
	return result
}

func TestReduceLinear_SingleGroup(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{5, 1, 3, 9}

	actual, err := Reduce(x, y, Linear, 4)
	require.NoError(t, err)

	assert.Equal(t, 1, actual.Groups())
	assert.Equal(t, []float64{1, 4.5, 9}, actual.Y)
	assert.Equal(t, []float64{1, 1.5, 3}, actual.X)
}

func TestReduceLinear_Length(t *testing.T) {
	tt := []struct {
		n      int
		factor int
		groups int
	}{
		{n: 4, factor: 1, groups: 4},
		{n: 16, factor: 4, groups: 4},
		{n: 17, factor: 4, groups: 4},
		{n: 19, factor: 4, groups: 4},
		{n: 100000, factor: 16384, groups: 6},
	}
	for _, tc := range tt {
		t.Run(fmt.Sprintf("%d_%d", tc.n, tc.factor), func(t *testing.T) {
			actual, err := ReduceLinear(ramp(tc.n), ramp(tc.n), tc.factor)
			require.NoError(t, err)

			assert.Len(t, actual.X, PointsPerGroup*tc.groups)
			assert.Len(t, actual.Y, PointsPerGroup*tc.groups)
			assert.Equal(t, tc.groups, actual.Groups())
		})
	}
}

func TestReduceLinear_LastGroupTakesRemainder(t *testing.T) {
	x := ramp(7)
	y := []float64{0, 0, 0, 1, 2, 3, 10}

	actual, err := ReduceLinear(x, y, 3)
	require.NoError(t, err)

	require.Equal(t, 2, actual.Groups())
	assert.Equal(t, []float64{1, 4, 10}, actual.Y[3:])
	assert.Equal(t, []float64{3, 4.5, 6}, actual.X[3:])
}

func TestReduceLinear_GroupsInOrderMinMeanMax(t *testing.T) {
	x := ramp(6)
	y := []float64{9, 1, 5, 2, 8, 5}

	actual, err := ReduceLinear(x, y, 3)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 5, 9, 2, 5, 8}, actual.Y)
	// the minimum of the first group comes after its maximum
	assert.Equal(t, []float64{1, 1, 0, 3, 4, 4}, actual.X)
}

func TestReduce_StableTieBreak(t *testing.T) {
	x := []float64{10, 20, 30, 40}
	y := []float64{2, 1, 1, 2}

	actual, err := ReduceLinear(x, y, 4)
	require.NoError(t, err)

	assert.Equal(t, 20.0, actual.X[0], "first minimum")
	assert.Equal(t, 10.0, actual.X[2], "first maximum")
}

func TestReduce_GroupOfOne(t *testing.T) {
	x := []float64{3, 4}
	y := []float64{7, 8}

	actual, err := ReduceLinear(x, y, 1)
	require.NoError(t, err)

	assert.Equal(t, []float64{3, 3, 3, 4, 4, 4}, actual.X)
	assert.Equal(t, []float64{7, 7, 7, 8, 8, 8}, actual.Y)
}

func TestReduce_Errors(t *testing.T) {
	tt := []struct {
		desc     string
		x, y     []float64
		mode     Mode
		factor   int
		expected error
	}{
		{"factor larger than series", ramp(4), ramp(4), Linear, 5, ErrInvalidReductionFactor},
		{"zero factor", ramp(4), ramp(4), Linear, 0, ErrInvalidReductionFactor},
		{"negative factor", ramp(4), ramp(4), Logarithmic, -1, ErrInvalidReductionFactor},
		{"log factor larger than series", ramp(4), ramp(4), Logarithmic, 5, ErrInvalidReductionFactor},
		{"empty series", nil, nil, Linear, 1, ErrInvalidReductionFactor},
		{"length mismatch", ramp(4), ramp(5), Linear, 1, ErrLengthMismatch},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := Reduce(tc.x, tc.y, tc.mode, tc.factor)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestReduceLog_Errors(t *testing.T) {
	_, err := ReduceLog(ramp(4), ramp(4), 0)
	assert.ErrorIs(t, err, ErrInvalidReductionFactor)

	_, err = ReduceLog(nil, nil, 1)
	assert.ErrorIs(t, err, ErrInvalidReductionFactor)

	_, err = ReduceLog(ramp(2), ramp(3), 1)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestLogBoundaries(t *testing.T) {
	tt := []struct {
		n        int
		groups   int
		expected []int
	}{
		{n: 1000, groups: 3, expected: []int{1, 10, 100, 1000}},
		{n: 100, groups: 4, expected: []int{1, 3, 10, 32, 100}},
		{n: 1, groups: 2, expected: []int{1, 1, 1}},
	}
	for _, tc := range tt {
		t.Run(fmt.Sprintf("%d_%d", tc.n, tc.groups), func(t *testing.T) {
			assert.Equal(t, tc.expected, logBoundaries(tc.n, tc.groups))
		})
	}
}

func TestReduceLog(t *testing.T) {
	x := ramp(1000)
	y := ramp(1000)

	actual, err := ReduceLog(x, y, 3)
	require.NoError(t, err)

	require.Equal(t, 3, actual.Groups())
	assert.Equal(t, []float64{1, 5, 9, 10, 54.5, 99, 100, 549.5, 999}, actual.Y)
	assert.Equal(t, actual.Y, actual.X)
}

func TestReduceLog_DegenerateGroups(t *testing.T) {
	x := ramp(4)
	y := []float64{4, 3, 2, 1}

	actual, err := ReduceLog(x, y, 8)
	require.NoError(t, err)

	require.Len(t, actual.Y, 8*PointsPerGroup)
	for i, v := range actual.X {
		assert.True(t, v >= 1 && v <= 3, "x[%d]=%v must be within the samples 1..3", i, v)
	}
}

func TestReduceLog_SingleSample(t *testing.T) {
	actual, err := ReduceLog([]float64{5}, []float64{6}, 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{5, 5, 5, 5, 5, 5}, actual.X)
	assert.Equal(t, []float64{6, 6, 6, 6, 6, 6}, actual.Y)
}

func TestReduce_Repeated(t *testing.T) {
	n := 10000
	x := ramp(n)
	y := make([]float64, n)
	for i := range y {
		y[i] = math.Sin(float64(i) / 50)
	}

	first, err := Reduce(x, y, Linear, 16)
	require.NoError(t, err)
	assert.Equal(t, PointsPerGroup*(n/16), first.Len())

	second, err := Reduce(first.X, first.Y, Linear, 16)
	require.NoError(t, err)
	assert.Equal(t, PointsPerGroup*(first.Len()/16), second.Len())
	assert.Less(t, second.Len(), first.Len())

	third, err := Reduce(second.X, second.Y, Logarithmic, 16)
	require.NoError(t, err)
	assert.Equal(t, PointsPerGroup*(second.Len()/16), third.Len())
}

func TestReduce_IgnoresNaN(t *testing.T) {
	nan := math.NaN()
	x := ramp(6)
	y := []float64{nan, nan, 2, 4, nan, nan}

	actual, err := ReduceLinear(x, y, 3)
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 2, 2}, actual.Y[:3])
	assert.Equal(t, []float64{2, 2, 2}, actual.X[:3])
	assert.Equal(t, []float64{4, 4, 4}, actual.Y[3:])
	assert.Equal(t, []float64{3, 3, 3}, actual.X[3:])
}

func TestReduce_MeanXFollowsValidSamples(t *testing.T) {
	nan := math.NaN()
	x := ramp(4)
	y := []float64{nan, nan, 2, 6}

	actual, err := ReduceLinear(x, y, 4)
	require.NoError(t, err)

	assert.Equal(t, 4.0, actual.Y[1])
	assert.Equal(t, 2.5, actual.X[1])
}

func TestReduce_OnlyNaNGroup(t *testing.T) {
	nan := math.NaN()
	x := ramp(4)
	y := []float64{nan, nan, 1, 3}

	actual, err := ReduceLinear(x, y, 2)
	require.NoError(t, err)

	for _, v := range actual.Y[:3] {
		assert.True(t, math.IsNaN(v))
	}
	assert.Equal(t, []float64{0, 0.5, 0}, actual.X[:3])
	assert.Equal(t, []float64{1, 2, 3}, actual.Y[3:])
}

func TestParseMode(t *testing.T) {
	tt := []struct {
		value    string
		expected Mode
		valid    bool
	}{
		{"lin", Linear, true},
		{"LOG", Logarithmic, true},
		{"logarithmic", Logarithmic, true},
		{"cubic", 0, false},
	}
	for _, tc := range tt {
		t.Run(tc.value, func(t *testing.T) {
			actual, err := ParseMode(tc.value)
			if !tc.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
			assert.Equal(t, actual, mustParse(t, actual.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Mode {
	t.Helper()
	result, err := ParseMode(s)
	require.NoError(t, err)
	return result
}
