// Package scope streams the panels of analysed dumps to remote viewers over gRPC and websocket.
package scope

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ftl/lwplot/panel"
	"github.com/ftl/lwplot/reduce"
)

type StreamID string

// Frame carries one panel of a grid.
type Frame struct {
	Stream    StreamID
	Timestamp time.Time
	Row       int
	Col       int
	Panel     panel.Panel
}

// GridFrames returns one frame for each panel of the given grid.
func GridFrames(stream StreamID, grid *panel.Grid, timestamp time.Time) []*Frame {
	result := make([]*Frame, 0, len(grid.Panels))
	for row := range grid.Rows {
		for col := range grid.Cols {
			result = append(result, &Frame{
				Stream:    stream,
				Timestamp: timestamp,
				Row:       row,
				Col:       col,
				Panel:     *grid.At(row, col),
			})
		}
	}
	return result
}

func encodeFrame(frame *Frame) (*structpb.Struct, error) {
	p := frame.Panel
	series := make([]any, 0, len(p.Series))
	for _, s := range p.Series {
		series = append(series, map[string]any{
			"name": s.Name,
			"x":    numbers(s.X),
			"y":    numbers(s.Y),
		})
	}

	fields := map[string]any{
		"stream":    string(frame.Stream),
		"timestamp": frame.Timestamp.Format(time.RFC3339Nano),
		"row":       frame.Row,
		"col":       frame.Col,
		"title":     p.Title,
		"x_label":   p.XLabel,
		"y_label":   p.YLabel,
		"x_scale":   p.XScale.String(),
		"y_scale":   p.YScale.String(),
		"kind":      p.Kind.String(),
		"series":    series,
	}
	if p.Density != nil {
		counts := make([]any, 0, len(p.Density.Counts))
		for _, column := range p.Density.Counts {
			counts = append(counts, numbers(column))
		}
		fields["density"] = map[string]any{
			"counts":  counts,
			"x_edges": numbers(p.Density.XEdges),
			"y_edges": numbers(p.Density.YEdges),
		}
	}

	result, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("cannot encode frame %s %d/%d: %w", frame.Stream, frame.Row, frame.Col, err)
	}
	return result, nil
}

// numbers converts the values into a list value, NaN becomes null.
func numbers(values []float64) []any {
	result := make([]any, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			result[i] = nil
			continue
		}
		result[i] = v
	}
	return result
}

func decodeFrame(s *structpb.Struct) (*Frame, error) {
	fields := s.GetFields()

	timestamp, err := time.Parse(time.RFC3339Nano, fields["timestamp"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("invalid frame timestamp: %w", err)
	}
	xScale, err := panel.ParseScale(fields["x_scale"].GetStringValue())
	if err != nil {
		return nil, err
	}
	yScale, err := panel.ParseScale(fields["y_scale"].GetStringValue())
	if err != nil {
		return nil, err
	}
	kind, err := panel.ParseKind(fields["kind"].GetStringValue())
	if err != nil {
		return nil, err
	}

	result := &Frame{
		Stream:    StreamID(fields["stream"].GetStringValue()),
		Timestamp: timestamp,
		Row:       int(fields["row"].GetNumberValue()),
		Col:       int(fields["col"].GetNumberValue()),
		Panel: panel.Panel{
			Title:  fields["title"].GetStringValue(),
			XLabel: fields["x_label"].GetStringValue(),
			YLabel: fields["y_label"].GetStringValue(),
			XScale: xScale,
			YScale: yScale,
			Kind:   kind,
		},
	}

	for _, value := range fields["series"].GetListValue().GetValues() {
		series := value.GetStructValue().GetFields()
		result.Panel.Series = append(result.Panel.Series, panel.Series{
			Name: series["name"].GetStringValue(),
			Series: reduce.Series{
				X: floats(series["x"].GetListValue()),
				Y: floats(series["y"].GetListValue()),
			},
		})
	}

	if density, ok := fields["density"]; ok {
		densityFields := density.GetStructValue().GetFields()
		counts := densityFields["counts"].GetListValue().GetValues()
		result.Panel.Density = &panel.Density{
			Counts: make([][]float64, len(counts)),
			XEdges: floats(densityFields["x_edges"].GetListValue()),
			YEdges: floats(densityFields["y_edges"].GetListValue()),
		}
		for i, column := range counts {
			result.Panel.Density.Counts[i] = floats(column.GetListValue())
		}
	}

	return result, nil
}

func floats(list *structpb.ListValue) []float64 {
	values := list.GetValues()
	result := make([]float64, len(values))
	for i, v := range values {
		if _, null := v.GetKind().(*structpb.Value_NullValue); null {
			result[i] = math.NaN()
			continue
		}
		result[i] = v.GetNumberValue()
	}
	return result
}
