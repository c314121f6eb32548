// Package ldump reads longwave waveform dump files.
//
// A dump starts with a fixed size header of comment lines. The second line carries the
// number of wave samples per row ("# wave_samp_per is N"), the third line the y scale
// ("# yscale is N"). Every following line is one sample row with eight whitespace
// separated numbers; missing values are marked with "#".
package ldump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ftl/lwplot/wave"
)

const (
	// HeaderLines is the number of lines before the first sample row.
	HeaderLines = 4
	// MissingValue marks a field without a value.
	MissingValue = "#"

	wavesPerSampleLine = 1
	yscaleLine         = 2

	maxLineLength = 1024 * 1024
)

var ErrInvalidHeader = errors.New("invalid ldump header")

var (
	wavesPerSampleExpression = regexp.MustCompile(`^# wave_samp_per is (\d+)`)
	yscaleExpression         = regexp.MustCompile(`^# yscale is (\d+)`)
)

// Header carries the metadata of a dump.
type Header struct {
	WavesPerSample int
	YScale         int
}

// Dump is the content of one ldump file.
type Dump struct {
	Header Header
	Rows   []wave.Row

	// Incomplete is the number of rows with at least one missing or unparseable field.
	Incomplete int
}

// Decode the rows of this dump into channels, using the y scale from the header.
func (d *Dump) Decode(window int) (wave.ChannelSet, error) {
	return wave.Decode(d.Rows, d.Header.YScale, window)
}

// ReadFile reads the dump file with the given name.
func ReadFile(filename string) (*Dump, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open ldump file: %w", err)
	}
	defer f.Close()

	result, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", filename, err)
	}
	zap.L().Debug("ldump file read",
		zap.String("file", filename),
		zap.Int("rows", len(result.Rows)),
		zap.Int("incomplete", result.Incomplete),
		zap.Int("wave_samp_per", result.Header.WavesPerSample),
		zap.Int("yscale", result.Header.YScale),
	)
	return result, nil
}

// Read a dump from the given reader.
func Read(r io.Reader) (*Dump, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	header := make([]string, 0, HeaderLines)
	for len(header) < HeaderLines && scanner.Scan() {
		header = append(header, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	result := &Dump{}
	var err error
	result.Header, err = ParseHeader(header)
	if err != nil {
		return nil, err
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		row := ParseRow(line)
		if !row.Valid() {
			result.Incomplete++
		}
		result.Rows = append(result.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ParseHeader extracts the metadata from the header lines of a dump.
func ParseHeader(lines []string) (Header, error) {
	var result Header
	var err error

	result.WavesPerSample, err = headerValue(lines, wavesPerSampleLine, wavesPerSampleExpression)
	if err != nil {
		return Header{}, err
	}
	result.YScale, err = headerValue(lines, yscaleLine, yscaleExpression)
	if err != nil {
		return Header{}, err
	}

	return result, nil
}

func headerValue(lines []string, lineIndex int, expression *regexp.Regexp) (int, error) {
	if lineIndex >= len(lines) {
		return 0, fmt.Errorf("%w: line %d is missing", ErrInvalidHeader, lineIndex+1)
	}
	match := expression.FindStringSubmatch(lines[lineIndex])
	if match == nil {
		return 0, fmt.Errorf("%w: line %d %q does not match %q", ErrInvalidHeader, lineIndex+1, lines[lineIndex], expression)
	}
	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: %v", ErrInvalidHeader, lineIndex+1, err)
	}
	return value, nil
}

// ParseRow parses one sample row. Fields that are missing, marked as missing, not numeric or not finite are NaN.
// Fields beyond the eighth are ignored.
func ParseRow(line string) wave.Row {
	var result wave.Row
	fields := strings.Fields(line)
	for i := range result {
		if i >= len(fields) || fields[i] == MissingValue {
			result[i] = math.NaN()
			continue
		}
		value, err := strconv.ParseFloat(fields[i], 64)
		if err != nil || math.IsInf(value, 0) {
			result[i] = math.NaN()
			continue
		}
		result[i] = value
	}
	return result
}
