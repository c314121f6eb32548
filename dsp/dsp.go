// Package dsp provides generic implementations of the numeric building blocks used to
// analyze longwave waveform dumps.
package dsp

import (
	"math"
	"math/cmplx"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
)

type Number interface {
	constraints.Integer | constraints.Float
}

// Block represents a block of samples that are processed as one unit.
type Block[T Number] []T

// Max imum value in the given section of this block and its index. NaN values are skipped.
// If the maximum occurs more than once, the first index is returned.
// If the section holds only NaN values, the result is the value at from.
func (b Block[T]) Max(from, to int) (T, int) {
	maxValue := b[from]
	maxI := from
	for i := from + 1; i <= to; i++ {
		if isNaN(b[i]) {
			continue
		}
		if isNaN(maxValue) || maxValue < b[i] {
			maxValue = b[i]
			maxI = i
		}
	}
	return maxValue, maxI
}

// Min imum value in the given section of this block and its index. NaN values are skipped.
// If the minimum occurs more than once, the first index is returned.
// If the section holds only NaN values, the result is the value at from.
func (b Block[T]) Min(from, to int) (T, int) {
	minValue := b[from]
	minI := from
	for i := from + 1; i <= to; i++ {
		if isNaN(b[i]) {
			continue
		}
		if isNaN(minValue) || minValue > b[i] {
			minValue = b[i]
			minI = i
		}
	}
	return minValue, minI
}

func isNaN[T Number](v T) bool {
	return v != v
}

func abs[T Number](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// RollingMean calculates the mean over n values. The window sum is compensated (Neumaier).
type RollingMean[T Number] struct {
	values []T
	n      T
	next   int
	filled int

	sum          T
	compensation T
}

// NewRollingMean with size n.
func NewRollingMean[T Number](n int) *RollingMean[T] {
	return &RollingMean[T]{
		values: make([]T, n),
		n:      T(n),
	}
}

// Put a new value into the rolling window and get the new mean back.
func (v *RollingMean[T]) Put(value T) T {
	v.add(-v.values[v.next])
	v.values[v.next] = value
	v.add(value)

	v.next = (v.next + 1) % len(v.values)
	if v.filled < len(v.values) {
		v.filled++
	}

	return (v.sum + v.compensation) / v.n
}

func (v *RollingMean[T]) add(value T) {
	t := v.sum + value
	if abs(v.sum) >= abs(value) {
		v.compensation += (v.sum - t) + value
	} else {
		v.compensation += (value - t) + v.sum
	}
	v.sum = t
}

// Full indicates if the rolling window has seen at least n values.
func (v *RollingMean[T]) Full() bool {
	return v.filled == len(v.values)
}

// TrailingMean returns the trailing rolling mean of the given values over window values.
// The first window-1 entries are NaN, there is not enough history for them yet.
func TrailingMean(values []float64, window int) []float64 {
	result := make([]float64, len(values))
	mean := NewRollingMean[float64](window)
	for i, value := range values {
		m := mean.Put(value)
		if mean.Full() {
			result[i] = m
		} else {
			result[i] = math.NaN()
		}
	}
	return result
}

// MeanPhasor returns the arithmetic mean of the given complex samples.
func MeanPhasor(z []complex128) complex128 {
	if len(z) == 0 {
		return 0
	}
	var sum complex128
	for _, v := range z {
		sum += v
	}
	return sum / complex(float64(len(z)), 0)
}

// Angle returns the phase of every sample in z.
func Angle(z []complex128) []float64 {
	result := make([]float64, len(z))
	for i, v := range z {
		result[i] = cmplx.Phase(v)
	}
	return result
}

// Unwrap removes jumps greater than pi between consecutive phase values by adding multiples of 2*pi.
func Unwrap(phase []float64) []float64 {
	result := make([]float64, len(phase))
	if len(phase) == 0 {
		return result
	}

	result[0] = phase[0]
	var correction float64
	for i := 1; i < len(phase); i++ {
		delta := phase[i] - phase[i-1]
		wrapped := math.Mod(delta+math.Pi, 2*math.Pi)
		if wrapped < 0 {
			wrapped += 2 * math.Pi
		}
		wrapped -= math.Pi
		if wrapped == -math.Pi && delta > 0 {
			wrapped = math.Pi
		}
		if math.Abs(delta) >= math.Pi {
			correction += wrapped - delta
		}
		result[i] = phase[i] + correction
	}
	return result
}

// Histogram2D counts the (x, y) pairs in a bins x bins grid spanning the value ranges of x and y.
// Counts are indexed [xBin][yBin]. The edges slices hold bins+1 values each.
func Histogram2D(x, y []float64, bins int) (counts [][]float64, xEdges []float64, yEdges []float64) {
	counts = make([][]float64, bins)
	for i := range counts {
		counts[i] = make([]float64, bins)
	}
	if len(x) == 0 || len(x) != len(y) {
		return counts, linspace(0, 1, bins+1), linspace(0, 1, bins+1)
	}

	xEdges = edges(x, bins)
	yEdges = edges(y, bins)
	for i := range x {
		xi := binIndex(x[i], xEdges)
		yi := binIndex(y[i], yEdges)
		if xi < 0 || yi < 0 {
			continue
		}
		counts[xi][yi]++
	}
	return counts, xEdges, yEdges
}

func edges(values []float64, bins int) []float64 {
	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	return linspace(lo, hi, bins+1)
}

func binIndex(value float64, edges []float64) int {
	if math.IsNaN(value) {
		return -1
	}
	bins := len(edges) - 1
	lo, hi := edges[0], edges[bins]
	if value < lo || value > hi {
		return -1
	}
	i := int((value - lo) / (hi - lo) * float64(bins))
	return min(i, bins-1)
}

func linspace(from, to float64, n int) []float64 {
	result := make([]float64, n)
	return floats.Span(result, from, to)
}
