// Package export stores the reduced panel series as parquet files.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	parquet "github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/ftl/lwplot/panel"
)

const Suffix = ".parquet"

var ErrUnknownCompression = errors.New("unknown compression")

// Point is one exported point of a panel series. Z is only set for the cells of a heatmap panel.
type Point struct {
	Row    int32    `parquet:"row"`
	Col    int32    `parquet:"col"`
	Panel  string   `parquet:"panel,dict"`
	Series string   `parquet:"series,dict"`
	Index  int64    `parquet:"index"`
	X      float64  `parquet:"x"`
	Y      float64  `parquet:"y"`
	Z      *float64 `parquet:"z,optional"`
}

// Filename is the filename of the export of the given dump file.
func Filename(dumpFilename string) string {
	return dumpFilename + Suffix
}

// Compression returns the writer option for the compression codec with the given name.
func Compression(name string) (parquet.WriterOption, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return parquet.Compression(&parquet.Snappy), nil
	case "zstd":
		return parquet.Compression(&parquet.Zstd), nil
	case "gzip", "gz":
		return parquet.Compression(&parquet.Gzip), nil
	case "none":
		return parquet.Compression(&parquet.Uncompressed), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompression, name)
	}
}

// GridPoints flattens all panels of the grid into points.
func GridPoints(grid *panel.Grid) []Point {
	var result []Point
	for row := range grid.Rows {
		for col := range grid.Cols {
			result = append(result, PanelPoints(row, col, *grid.At(row, col))...)
		}
	}
	return result
}

// PanelPoints flattens the given panel into points.
func PanelPoints(row, col int, p panel.Panel) []Point {
	var result []Point
	if p.Density != nil {
		var index int64
		for c, column := range p.Density.Counts {
			for r, count := range column {
				z := count
				result = append(result, Point{
					Row:    int32(row),
					Col:    int32(col),
					Panel:  p.Title,
					Series: "density",
					Index:  index,
					X:      (p.Density.XEdges[c] + p.Density.XEdges[c+1]) / 2,
					Y:      (p.Density.YEdges[r] + p.Density.YEdges[r+1]) / 2,
					Z:      &z,
				})
				index++
			}
		}
		return result
	}

	for _, series := range p.Series {
		for i := range series.Len() {
			result = append(result, Point{
				Row:    int32(row),
				Col:    int32(col),
				Panel:  p.Title,
				Series: series.Name,
				Index:  int64(i),
				X:      series.X[i],
				Y:      series.Y[i],
			})
		}
	}
	return result
}

// Write the given points in parquet format.
func Write(w io.Writer, points []Point, compression parquet.WriterOption) error {
	writer := parquet.NewGenericWriter[Point](w, compression)
	if _, err := writer.Write(points); err != nil {
		return fmt.Errorf("cannot write points: %w", err)
	}
	return writer.Close()
}

func WriteFile(filename string, points []Point, compression parquet.WriterOption) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create export: %w", err)
	}
	defer f.Close()

	if err := Write(f, points, compression); err != nil {
		return err
	}
	zap.L().Debug("points exported", zap.String("filename", filename), zap.Int("points", len(points)))
	return f.Close()
}

// Read all points from the given parquet data.
func Read(r io.ReaderAt) ([]Point, error) {
	reader := parquet.NewGenericReader[Point](r)
	defer reader.Close()

	result := make([]Point, 0, reader.NumRows())
	batch := make([]Point, 1024)
	for {
		n, err := reader.Read(batch)
		result = append(result, batch[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read points: %w", err)
		}
	}
	return result, nil
}

func ReadFile(filename string) ([]Point, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open export: %w", err)
	}
	defer f.Close()

	return Read(f)
}
