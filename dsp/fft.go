package dsp

import (
	"math"

	"github.com/mjibson/go-dsp/dsputils"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// MinDBFS is the floor for spectrum values in dBFS, it replaces -Inf for empty bins.
const MinDBFS = -200.0

func PSD[T Number](fftValue complex128) T {
	return T(math.Pow(real(fftValue), 2) + math.Pow(imag(fftValue), 2))
}

func Magnitude[T Number](fftValue complex128) T {
	return T(math.Sqrt(float64(PSD[float64](fftValue))))
}

// Hann returns a Hann window of the given length.
func Hann(n int) []float64 {
	return window.Hann(n)
}

// Spectrum returns the magnitude of the DFT of the Hann windowed samples.
// Only the first len(samples)/2 bins are returned, the Nyquist bin is not included.
// The second result is the coherent gain of the window, i.e. the magnitude a full scale tone would produce.
func Spectrum(samples []complex128) ([]float64, float64) {
	n := len(samples)
	if n == 0 {
		return []float64{}, 0
	}

	w := Hann(n)
	windowed := make([]complex128, n)
	for i, s := range samples {
		windowed[i] = s * complex(w[i], 0)
	}

	fftResult := fft.FFT(windowed)
	result := make([]float64, n/2)
	for i := range result {
		result[i] = Magnitude[float64](fftResult[i])
	}
	return result, floats.Sum(w)
}

// RealSpectrum is Spectrum for a real valued series.
func RealSpectrum(values []float64) ([]float64, float64) {
	return Spectrum(dsputils.ToComplex(values))
}

// DBFS converts the given magnitudes into dB relative to the reference magnitude.
func DBFS(magnitudes []float64, reference float64) []float64 {
	result := make([]float64, len(magnitudes))
	for i, m := range magnitudes {
		if m <= 0 || reference <= 0 {
			result[i] = MinDBFS
			continue
		}
		result[i] = max(MinDBFS, 20*math.Log10(m/reference))
	}
	return result
}
