package wave

// DefaultClock is the ADC clock frequency of the longwave board in Hz.
const DefaultClock = 1300e6 / 7.0 * 11 / 20

// wavePeriods is the number of clock periods covered by one wave sample per wave_samp_per.
const wavePeriods = 22 * 2

// Timing maps sample indexes to time and frequency.
type Timing struct {
	Clock          float64
	WavesPerSample int
}

func NewTiming(clock float64, wavesPerSample int) Timing {
	if clock <= 0 {
		clock = DefaultClock
	}
	return Timing{
		Clock:          clock,
		WavesPerSample: wavesPerSample,
	}
}

// SampleTime is the duration of one clock period in seconds.
func (t Timing) SampleTime() float64 {
	return 1 / t.Clock
}

// WaveTime is the time between two consecutive rows in seconds.
func (t Timing) WaveTime() float64 {
	return float64(t.WavesPerSample) / t.Clock * wavePeriods
}

// TimeAxis returns the time of each of the n rows.
func (t Timing) TimeAxis(n int) []float64 {
	result := make([]float64, n)
	waveTime := t.WaveTime()
	for i := range result {
		result[i] = float64(i) * waveTime
	}
	return result
}

// FrequencyResolution is the bin width of a spectrum over n rows.
func (t Timing) FrequencyResolution(n int) float64 {
	if n == 0 {
		return 0
	}
	return 1 / t.WaveTime() / float64(n)
}

// FrequencyAxis returns the frequency of each of the n bins of a spectrum over n rows.
func (t Timing) FrequencyAxis(n int) []float64 {
	result := make([]float64, n)
	resolution := t.FrequencyResolution(n)
	for i := range result {
		result[i] = float64(i) * resolution
	}
	return result
}
