// Package chart renders resolved series to PNG and owns the live chart per chart id
package chart

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/finote/internal/models"
)

const (
	chartWidth  = 900
	chartHeight = 400
	maxTicks    = 12
)

// RenderLineChart renders a PNG line chart of series with its labels as the
// categorical x-axis. At most maxTicks labels are drawn; the newest is always kept.
// A single point is drawn as a marker and an empty series as an empty frame.
func RenderLineChart(title string, series models.ResolvedSeries) ([]byte, error) {
	n := series.Len()
	if len(series.Values) != n {
		return nil, fmt.Errorf("labels and values are not aligned: %d labels, %d values", n, len(series.Values))
	}

	labels, values := series.Labels, series.Values
	xValues := make([]float64, n)
	for i := range xValues {
		xValues[i] = float64(i)
	}
	stroke := drawing.ColorFromHex("2563eb") // blue-600
	var marker []chart.Series

	switch n {
	case 0:
		// go-chart needs a series with some x extent
		labels = []string{""}
		xValues = []float64{-0.5, 0.5}
		values = []float64{0, 0}
		stroke = drawing.ColorTransparent
	case 1:
		xValues = []float64{-0.5, 0.5}
		values = []float64{values[0], values[0]}
		marker = append(marker, chart.ContinuousSeries{
			Style: chart.Style{
				StrokeColor: drawing.ColorTransparent,
				DotColor:    stroke,
				DotWidth:    5,
			},
			XValues: []float64{0},
			YValues: []float64{values[0]},
		})
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		// go-chart rejects a zero-height range
		lo, hi = lo-1, hi+1
	}

	line := chart.ContinuousSeries{
		Name: title,
		Style: chart.Style{
			StrokeColor: stroke,
			StrokeWidth: 2.5,
			FillColor:   stroke.WithAlpha(32),
		},
		XValues: xValues,
		YValues: values,
	}

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Ticks: ticks(labels),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return formatValue(f)
				}
				return ""
			},
		},
		Series: append([]chart.Series{line}, marker...),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

func ticks(labels []string) []chart.Tick {
	step := (len(labels) + maxTicks - 1) / maxTicks
	if step < 1 {
		step = 1
	}
	var out []chart.Tick
	last := len(labels) - 1
	for i := last; i >= 0; i -= step {
		out = append([]chart.Tick{{Value: float64(i), Label: labels[i]}}, out...)
	}
	return out
}

func formatValue(f float64) string {
	switch abs := math.Abs(f); {
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", f/1e6)
	case abs >= 1e4:
		return fmt.Sprintf("%.0fK", f/1e3)
	default:
		return fmt.Sprintf("%.0f", f)
	}
}
