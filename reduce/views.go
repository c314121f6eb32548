package reduce

import (
	"math/cmplx"

	"github.com/ftl/lwplot/dsp"
)

// PhaseUnwrap returns the phase of z relative to the phase of its mean phasor, unwrapped.
func PhaseUnwrap(z []complex128) []float64 {
	reference := cmplx.Phase(dsp.MeanPhasor(z))
	phase := dsp.Angle(z)
	for i := range phase {
		phase[i] -= reference
	}
	return dsp.Unwrap(phase)
}

// RecenterPolar rotates z so that its mean phasor lies on the positive real axis and
// returns the in-phase and quadrature parts.
func RecenterPolar(z []complex128) (i []float64, q []float64) {
	rotation := cmplx.Rect(1, -cmplx.Phase(dsp.MeanPhasor(z)))
	i = make([]float64, len(z))
	q = make([]float64, len(z))
	for k, v := range z {
		rotated := v * rotation
		i[k] = real(rotated)
		q[k] = imag(rotated)
	}
	return i, q
}

// PowerSpectrum returns the magnitude of the DFT of the Hann windowed series, first half only.
func PowerSpectrum(y []float64) []float64 {
	result, _ := dsp.RealSpectrum(y)
	return result
}

// PowerSpectrumDB returns the spectrum of the Hann windowed complex series in dB relative to full scale,
// first half only.
func PowerSpectrumDB(z []complex128) []float64 {
	magnitudes, gain := dsp.Spectrum(z)
	return dsp.DBFS(magnitudes, gain)
}

// Decimate returns every step-th value of values, starting with the first one.
func Decimate[T any](values []T, step int) []T {
	if step <= 1 {
		return values
	}
	result := make([]T, 0, (len(values)+step-1)/step)
	for i := 0; i < len(values); i += step {
		result = append(result, values[i])
	}
	return result
}
