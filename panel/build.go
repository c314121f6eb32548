package panel

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/ftl/lwplot/dsp"
	"github.com/ftl/lwplot/reduce"
	"github.com/ftl/lwplot/wave"
)

const (
	GridRows  = 4
	NoiseRows = 2

	// NoiseAverageChannel is the channel whose moving average is added to the noise spectrum.
	NoiseAverageChannel = 2

	defaultHeatmapBins = 100
	heatmapThreshold   = 1
)

// BuildGrid builds the diagnostic grid of a decoded dump: one column per channel, with the rows
// amplitude vs time, phase vs time, Q vs I and power spectrum vs frequency.
func BuildGrid(title string, set wave.ChannelSet, timing wave.Timing, opts Options) (*Grid, error) {
	n := set.Len()
	timeAxis := timing.TimeAxis(n)
	frequencyAxis := timing.FrequencyAxis(n)

	result := NewGrid(title, GridRows, wave.ChannelCount)
	for c, channel := range set {
		board := opts.board(c)

		amplitude, err := amplitudePanel(board, channel, timeAxis, opts)
		if err != nil {
			return nil, fmt.Errorf("channel %d amplitude: %w", c, err)
		}
		*result.At(0, c) = amplitude

		phase, err := phasePanel(board, channel, timeAxis, opts)
		if err != nil {
			return nil, fmt.Errorf("channel %d phase: %w", c, err)
		}
		*result.At(1, c) = phase

		*result.At(2, c) = iqPanel(board, channel, opts)

		spectrum, err := spectrumPanel(board, channel, frequencyAxis, opts)
		if err != nil {
			return nil, fmt.Errorf("channel %d spectrum: %w", c, err)
		}
		*result.At(3, c) = spectrum
	}

	return result, nil
}

func amplitudePanel(board string, channel wave.Channel, timeAxis []float64, opts Options) (Panel, error) {
	magnitude, err := reduceTime(timeAxis, channel.Magnitude, opts)
	if err != nil {
		return Panel{}, err
	}
	average, err := reduceTime(timeAxis, channel.MovingAverage, opts)
	if err != nil {
		return Panel{}, err
	}

	return Panel{
		Title:  fmt.Sprintf("Amplitude vs Time (%s)", board),
		XLabel: "Time (s)",
		YLabel: "Amplitude (% of FS)",
		XScale: opts.timeScale(),
		Kind:   Lines,
		Series: []Series{
			{Name: "magnitude", Series: magnitude},
			{Name: "moving average", Series: average},
		},
	}, nil
}

func phasePanel(board string, channel wave.Channel, timeAxis []float64, opts Options) (Panel, error) {
	phase := reduce.PhaseUnwrap(channel.Raw)
	average, err := wave.MovingMean(phase, min(opts.Window, len(phase)))
	if err != nil {
		return Panel{}, err
	}

	reducedPhase, err := reduceTime(timeAxis, phase, opts)
	if err != nil {
		return Panel{}, err
	}
	reducedAverage, err := reduceTime(timeAxis, average, opts)
	if err != nil {
		return Panel{}, err
	}

	return Panel{
		Title:  fmt.Sprintf("Phase vs Time (%s)", board),
		XLabel: "Time (s)",
		YLabel: "Phase (rad)",
		XScale: opts.timeScale(),
		Kind:   Lines,
		Series: []Series{
			{Name: "phase", Series: reducedPhase},
			{Name: "moving average", Series: reducedAverage},
		},
	}, nil
}

func iqPanel(board string, channel wave.Channel, opts Options) Panel {
	i, q := reduce.RecenterPolar(reduce.Decimate(channel.Raw, opts.SampleStep))
	result := Panel{
		Title:  fmt.Sprintf("Q vs I (%s)", board),
		XLabel: "I (au)",
		YLabel: "Q (au)",
	}

	if !opts.Heatmap {
		result.Kind = Scatter
		result.Series = []Series{{Name: "I/Q", Series: reduce.Series{X: i, Y: q}}}
		return result
	}

	bins := opts.HeatmapBins
	if bins < 1 {
		bins = defaultHeatmapBins
	}
	counts, xEdges, yEdges := dsp.Histogram2D(i, q, bins)
	for _, column := range counts {
		for k, count := range column {
			if count < heatmapThreshold {
				column[k] = math.NaN()
			}
		}
	}
	result.Kind = Heatmap
	result.Density = &Density{
		Counts: counts,
		XEdges: xEdges,
		YEdges: yEdges,
	}
	return result
}

func spectrumPanel(board string, channel wave.Channel, frequencyAxis []float64, opts Options) (Panel, error) {
	spectrum := reduce.PowerSpectrumDB(channel.Raw)
	series, err := reduceSpectrum(frequencyAxis[:len(spectrum)], spectrum, opts)
	if err != nil {
		return Panel{}, err
	}

	return Panel{
		Title:  fmt.Sprintf("Power Spectrum vs Frequency (%s)", board),
		XLabel: "Freq (Hz)",
		YLabel: "Power Spectrum (dBFS)",
		XScale: LogScale,
		Kind:   Lines,
		Series: []Series{{Name: "spectrum", Series: series}},
	}, nil
}

// BuildNoise builds the noise grid of a decoded dump: one column per channel, with the magnitude spectrum of the
// channel magnitude on log-log axes and the integrated noise sqrt(cumsum(|X|²)) below. The spectrum of the moving
// average of NoiseAverageChannel is added to its magnitude spectrum panel.
func BuildNoise(title string, set wave.ChannelSet, timing wave.Timing, opts Options) (*Grid, error) {
	frequencyAxis := timing.FrequencyAxis(set.Len())

	result := NewGrid(title, NoiseRows, wave.ChannelCount)
	for c, channel := range set {
		board := opts.board(c)

		spectrum := reduce.PowerSpectrum(channel.Magnitude)
		frequencies := frequencyAxis[:len(spectrum)]

		magnitude, err := reduceSpectrum(frequencies, spectrum, opts)
		if err != nil {
			return nil, fmt.Errorf("channel %d noise spectrum: %w", c, err)
		}
		magnitudePanel := Panel{
			Title:  fmt.Sprintf("Magnitude Spectrum vs Frequency (%s)", board),
			XLabel: "Freq (Hz)",
			YLabel: "Magnitude (au)",
			XScale: LogScale,
			YScale: LogScale,
			Kind:   Lines,
			Series: []Series{{Name: "magnitude", Series: magnitude}},
		}
		if c == NoiseAverageChannel {
			average, err := averageSpectrum(channel.MovingAverage, timing, opts)
			if err != nil {
				return nil, fmt.Errorf("channel %d moving average spectrum: %w", c, err)
			}
			magnitudePanel.Series = append(magnitudePanel.Series, Series{Name: "moving average", Series: average})
		}
		*result.At(0, c) = magnitudePanel

		integrated, err := reduceSpectrum(frequencies, IntegratedNoise(spectrum), opts)
		if err != nil {
			return nil, fmt.Errorf("channel %d integrated noise: %w", c, err)
		}
		*result.At(1, c) = Panel{
			Title:  fmt.Sprintf("Integrated Noise vs Frequency (%s)", board),
			XLabel: "Freq (Hz)",
			YLabel: "Integrated Noise (au)",
			XScale: LogScale,
			Kind:   Lines,
			Series: []Series{{Name: "integrated noise", Series: integrated}},
		}
	}

	return result, nil
}

// IntegratedNoise returns sqrt(cumsum(|X|²)) of the given magnitude spectrum.
func IntegratedNoise(magnitudes []float64) []float64 {
	result := make([]float64, len(magnitudes))
	for i, m := range magnitudes {
		result[i] = m * m
	}
	floats.CumSum(result, result)
	for i, v := range result {
		result[i] = math.Sqrt(v)
	}
	return result
}

// averageSpectrum is the magnitude spectrum of the moving average without its undefined head.
func averageSpectrum(average []float64, timing wave.Timing, opts Options) (reduce.Series, error) {
	head := 0
	for head < len(average) && math.IsNaN(average[head]) {
		head++
	}
	defined := average[head:]
	spectrum := reduce.PowerSpectrum(defined)
	frequencies := timing.FrequencyAxis(len(defined))[:len(spectrum)]
	return reduceSpectrum(frequencies, spectrum, opts)
}

// reduceSpectrum reduces a spectrum logarithmically, if enabled and there is anything to reduce.
func reduceSpectrum(frequencies, values []float64, opts Options) (reduce.Series, error) {
	if !opts.ReduceSpectrum || len(values) == 0 {
		return reduce.Series{X: frequencies, Y: values}, nil
	}
	return reduce.ReduceLog(frequencies, values, opts.LogGroups)
}

// BuildCorrelation plots the moving average of channel y against the moving average of channel x.
func BuildCorrelation(title string, set wave.ChannelSet, x, y int, opts Options) Panel {
	return Panel{
		Title:  title,
		XLabel: fmt.Sprintf("Moving Average (%s)", opts.board(x)),
		YLabel: fmt.Sprintf("Moving Average (%s)", opts.board(y)),
		Kind:   Lines,
		Series: []Series{{
			Name: fmt.Sprintf("%s vs %s", opts.board(y), opts.board(x)),
			Series: reduce.Series{
				X: reduce.Decimate(set[x].MovingAverage, opts.SampleStep),
				Y: reduce.Decimate(set[y].MovingAverage, opts.SampleStep),
			},
		}},
	}
}

// Source is one decoded dump taking part in an overlay.
type Source struct {
	Name   string
	Set    wave.ChannelSet
	Timing wave.Timing
}

// BuildOverlay plots the moving average of the given channel of all sources on one panel.
func BuildOverlay(title string, sources []Source, channel int, opts Options) (Panel, error) {
	result := Panel{
		Title:  title,
		XLabel: "Time (s)",
		YLabel: fmt.Sprintf("Moving Average (%s)", opts.board(channel)),
		XScale: opts.timeScale(),
		Kind:   Lines,
		Series: make([]Series, 0, len(sources)),
	}
	for _, source := range sources {
		average := source.Set[channel].MovingAverage
		series, err := reduceTime(source.Timing.TimeAxis(len(average)), average, opts)
		if err != nil {
			return Panel{}, fmt.Errorf("%s: %w", source.Name, err)
		}
		result.Series = append(result.Series, Series{Name: source.Name, Series: series})
	}
	return result, nil
}

// reduceTime reduces a time domain series with the configured mode. Series that are shorter than one group are
// kept as they are.
func reduceTime(x, y []float64, opts Options) (reduce.Series, error) {
	if !opts.ReduceTime || len(y) < opts.Factor {
		if opts.ReduceTime {
			zap.L().Debug("series too short to reduce", zap.Int("length", len(y)), zap.Int("factor", opts.Factor))
		}
		return reduce.Series{X: x, Y: y}, nil
	}
	return reduce.Reduce(x, y, opts.TimeMode, opts.Factor)
}
