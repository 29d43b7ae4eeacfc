package renderer

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/etnz/marketwatch"
)

// benchmarkColors cycles through the benchmark series.
var benchmarkColors = []string{
	"9ca3af", // gray-400
	"f59e0b", // amber-500
	"10b981", // emerald-500
	"8b5cf6", // violet-500
}

// TimelineChart renders the timeline as a PNG line chart: the portfolio in
// blue, each benchmark dashed, the fixed deposit dotted.
func TimelineChart(w io.Writer, s *marketwatch.TimelineSeries) error {
	if len(s.Days) < 2 {
		return fmt.Errorf("need at least 2 data points, got %d", len(s.Days))
	}

	xValues := make([]time.Time, len(s.Days))
	for i, day := range s.Days {
		xValues[i] = day.Time()
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name: "Portfolio",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
				StrokeWidth: 2.5,
			},
			XValues: xValues,
			YValues: s.Portfolio,
		},
	}

	benchmarks := make([]string, 0, len(s.Baselines))
	for name := range s.Baselines {
		benchmarks = append(benchmarks, name)
	}
	sort.Strings(benchmarks)
	for i, name := range benchmarks {
		series = append(series, chart.TimeSeries{
			Name: name,
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex(benchmarkColors[i%len(benchmarkColors)]),
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: xValues,
			YValues: s.Baselines[name],
		})
	}

	series = append(series, chart.TimeSeries{
		Name: "Fixed Deposit",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("6b7280"), // gray-500
			StrokeWidth:     1.0,
			StrokeDashArray: []float64{2.0, 2.0},
		},
		XValues: xValues,
		YValues: s.FixedDeposit,
	})

	graph := chart.Chart{
		Title:  "Portfolio Timeline",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("chart render failed: %w", err)
	}
	return nil
}
