// Package reduce shrinks long (x, y) series into a bounded number of points for plotting.
//
// The samples are split into groups. Each group is represented by three points: the
// minimum, the mean and the maximum of its y values. This keeps sharp transients visible
// while the output size only depends on the number of groups.
package reduce

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/ftl/lwplot/dsp"
)

// PointsPerGroup is the number of output points for each group: min, mean, max.
const PointsPerGroup = 3

var (
	ErrInvalidReductionFactor = errors.New("invalid reduction factor")
	ErrLengthMismatch         = errors.New("x and y must have the same length")
)

// Mode selects how the group boundaries are spaced.
type Mode int

const (
	// Linear groups have a constant size.
	Linear Mode = iota
	// Logarithmic groups grow geometrically, for plots with a logarithmic x axis.
	Logarithmic
)

func (m Mode) String() string {
	switch m {
	case Linear:
		return "lin"
	case Logarithmic:
		return "log"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "lin" or "log".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "lin", "linear":
		return Linear, nil
	case "log", "logarithmic":
		return Logarithmic, nil
	default:
		return 0, fmt.Errorf("unknown reduction mode %q, must be lin or log", s)
	}
}

// Series is a reduced series. X and Y have the same length.
// Within each group the points are ordered min, mean, max, so X is not necessarily monotonic.
type Series struct {
	X []float64
	Y []float64
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Y)
}

// Groups returns the number of groups the series was reduced to.
func (s Series) Groups() int {
	return len(s.Y) / PointsPerGroup
}

// Reduce the given series with the given mode. For Linear, factor is the group size.
// For Logarithmic, len(y)/factor is the number of groups.
func Reduce(x, y []float64, mode Mode, factor int) (Series, error) {
	if factor < 1 {
		return Series{}, fmt.Errorf("%w: factor %d must be positive", ErrInvalidReductionFactor, factor)
	}
	switch mode {
	case Linear:
		return ReduceLinear(x, y, factor)
	case Logarithmic:
		return ReduceLog(x, y, len(y)/factor)
	default:
		return Series{}, fmt.Errorf("unknown reduction mode %v", mode)
	}
}

// ReduceLinear reduces the given series into len(y)/factor groups of factor samples each.
// The last group also takes the remaining samples.
func ReduceLinear(x, y []float64, factor int) (Series, error) {
	if len(x) != len(y) {
		return Series{}, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(x), len(y))
	}
	if factor < 1 {
		return Series{}, fmt.Errorf("%w: factor %d must be positive", ErrInvalidReductionFactor, factor)
	}
	groups := len(y) / factor
	if groups < 1 {
		return Series{}, fmt.Errorf("%w: factor %d exceeds the series length %d", ErrInvalidReductionFactor, factor, len(y))
	}

	return reduce(x, y, linearBoundaries(len(y), groups, factor)), nil
}

// ReduceLog reduces the given series into the given number of groups.
// The group boundaries are spaced geometrically from index 1 to len(y).
func ReduceLog(x, y []float64, groups int) (Series, error) {
	if len(x) != len(y) {
		return Series{}, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(x), len(y))
	}
	if groups < 1 {
		return Series{}, fmt.Errorf("%w: %d groups for %d samples", ErrInvalidReductionFactor, groups, len(y))
	}
	if len(y) == 0 {
		return Series{}, fmt.Errorf("%w: cannot reduce an empty series", ErrInvalidReductionFactor)
	}

	return reduce(x, y, logBoundaries(len(y), groups)), nil
}

func linearBoundaries(n int, groups int, factor int) []int {
	result := make([]int, groups+1)
	for g := range groups {
		result[g] = g * factor
	}
	result[groups] = n
	return result
}

func logBoundaries(n int, groups int) []int {
	result := make([]int, groups+1)
	exponent := math.Log10(float64(n))
	for g := range groups {
		result[g] = int(math.Round(math.Pow(10, float64(g)/float64(groups)*exponent)))
	}
	result[groups] = n
	return result
}

func reduce(x, y []float64, boundaries []int) Series {
	n := len(y)
	groups := len(boundaries) - 1
	result := Series{
		X: make([]float64, 0, groups*PointsPerGroup),
		Y: make([]float64, 0, groups*PointsPerGroup),
	}

	values := dsp.Block[float64](y)
	for g := range groups {
		low, high := groupRange(boundaries[g], boundaries[g+1], n)

		minY, minI := values.Min(low, high-1)
		maxY, maxI := values.Max(low, high-1)
		meanX, meanY := groupMean(x[low:high], y[low:high])

		result.X = append(result.X, x[minI], meanX, x[maxI])
		result.Y = append(result.Y, minY, meanY, maxY)
	}

	return result
}

// groupRange returns the half-open index range of a group. A group always contains at least one sample
// and never reaches beyond the last sample.
func groupRange(low, high, n int) (int, int) {
	if high <= low {
		high = low + 1
	}
	if high > n {
		high = n
	}
	if low >= high {
		low = high - 1
	}
	return low, high
}

// groupMean is the mean of the y values that are not NaN and the mean of the corresponding x values.
// If all y values are NaN, the mean y is NaN and the mean x is taken over the whole group.
func groupMean(x, y []float64) (float64, float64) {
	weights := make([]float64, len(y))
	var count int
	for i, v := range y {
		if math.IsNaN(v) {
			continue
		}
		weights[i] = 1
		count++
	}
	if count == 0 {
		return stat.Mean(x, nil), math.NaN()
	}

	var sum float64
	for i, v := range y {
		if weights[i] != 0 {
			sum += v
		}
	}
	return stat.Mean(x, weights), sum / float64(count)
}
