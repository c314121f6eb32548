// Package wave decodes the sample rows of a longwave dump into complex baseband channels.
package wave

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"go.uber.org/zap"

	"github.com/ftl/lwplot/dsp"
)

const (
	// ChannelCount is fixed by the ADC board layout: four complex channels per row.
	ChannelCount = 4
	// FieldCount is the number of numeric fields in one sample row, interleaved real and imaginary parts.
	FieldCount = 2 * ChannelCount
)

var (
	ErrInvalidScale  = errors.New("invalid scale")
	ErrInvalidWindow = errors.New("invalid window")
)

// Row is one sample row of a dump. Missing or unparseable fields are NaN.
type Row [FieldCount]float64

// Valid indicates that all fields of the row carry a finite number.
func (r Row) Valid() bool {
	for _, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Channel holds the decoded series of one ADC channel. All series have the same length.
type Channel struct {
	Raw           []complex128
	Magnitude     []float64
	MovingAverage []float64
}

// Len returns the number of samples in this channel.
func (c Channel) Len() int {
	return len(c.Raw)
}

// ChannelSet holds the four channels of one decoded dump.
type ChannelSet [ChannelCount]Channel

// Len returns the number of samples per channel.
func (s ChannelSet) Len() int {
	return s[0].Len()
}

// Decode converts the given rows into a ChannelSet. Rows with any missing field are dropped as a whole.
// Each complex sample is scaled down by yscale. The moving average is the trailing mean of the magnitude
// over window samples, its first window-1 values are NaN.
func Decode(rows []Row, yscale int, window int) (ChannelSet, error) {
	var result ChannelSet
	if yscale == 0 {
		return result, fmt.Errorf("%w: yscale must not be 0", ErrInvalidScale)
	}

	valid := make([]int, 0, len(rows))
	for i, row := range rows {
		if row.Valid() {
			valid = append(valid, i)
		}
	}
	if dropped := len(rows) - len(valid); dropped > 0 {
		zap.L().Debug("dropped incomplete rows", zap.Int("dropped", dropped), zap.Int("rows", len(rows)))
	}

	n := len(valid)
	if window <= 0 || window > n {
		return result, fmt.Errorf("%w: window %d must be within [1, %d]", ErrInvalidWindow, window, n)
	}

	scale := complex(float64(yscale), 0)
	for c := range result {
		raw := make([]complex128, n)
		magnitude := make([]float64, n)
		for i, rowIndex := range valid {
			row := rows[rowIndex]
			raw[i] = complex(row[2*c], row[2*c+1]) / scale
			magnitude[i] = cmplx.Abs(raw[i])
		}
		result[c] = Channel{
			Raw:           raw,
			Magnitude:     magnitude,
			MovingAverage: dsp.TrailingMean(magnitude, window),
		}
	}

	return result, nil
}

// MovingMean returns the trailing rolling mean of values over window samples. The first window-1 values are NaN.
func MovingMean(values []float64, window int) ([]float64, error) {
	if window <= 0 || window > len(values) {
		return nil, fmt.Errorf("%w: window %d must be within [1, %d]", ErrInvalidWindow, window, len(values))
	}
	return dsp.TrailingMean(values, window), nil
}
