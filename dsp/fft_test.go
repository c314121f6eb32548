package dsp

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpectrum_Length(t *testing.T) {
	tt := []struct {
		size     int
		expected int
	}{
		{size: 0, expected: 0},
		{size: 1, expected: 0},
		{size: 8, expected: 4},
		{size: 9, expected: 4},
	}
	for _, tc := range tt {
		actual, _ := Spectrum(make([]complex128, tc.size))
		assert.Len(t, actual, tc.expected, "size %d", tc.size)
	}
}

func TestSpectrum_FullScaleDC(t *testing.T) {
	samples := make([]complex128, 16)
	for i := range samples {
		samples[i] = 1
	}

	magnitudes, gain := Spectrum(samples)
	require.Len(t, magnitudes, 8)

	assert.InDelta(t, gain, magnitudes[0], 1e-9)
	assert.InDelta(t, 0.0, DBFS(magnitudes, gain)[0], 1e-9)
}

func TestSpectrum_TonePeak(t *testing.T) {
	n := 256
	bin := 32
	samples := make([]complex128, n)
	for i := range samples {
		samples[i] = cmplx.Rect(0.5, 2*math.Pi*float64(bin*i)/float64(n))
	}

	magnitudes, gain := Spectrum(samples)
	db := DBFS(magnitudes, gain)

	peak := Block[float64](magnitudes)
	_, peakBin := peak.Max(0, len(magnitudes)-1)
	assert.Equal(t, bin, peakBin)
	assert.InDelta(t, 20*math.Log10(0.5), db[bin], 0.1)
}

func TestRealSpectrum(t *testing.T) {
	values := []float64{1, 1, 1, 1}

	magnitudes, gain := RealSpectrum(values)

	require.Len(t, magnitudes, 2)
	assert.InDelta(t, gain, magnitudes[0], 1e-9)
}

func TestDBFS_Floor(t *testing.T) {
	actual := DBFS([]float64{0, 1e-20, 1}, 1)

	assert.Equal(t, MinDBFS, actual[0])
	assert.Equal(t, MinDBFS, actual[1])
	assert.Equal(t, 0.0, actual[2])
}
