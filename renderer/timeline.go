package renderer

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/etnz/marketwatch"
	md "github.com/nao1215/markdown"
)

// TimelineMarkdown renders the timeline as a summary table plus a monthly
// sample of each series. The full daily resolution is for the chart.
func TimelineMarkdown(s *marketwatch.TimelineSeries) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Timeline")
	if len(s.Days) == 0 {
		doc.PlainText("No trading days in range.")
		return doc.String()
	}
	first, last := s.Days[0], s.Days[len(s.Days)-1]
	doc.PlainText(fmt.Sprintf("%s to %s, %d trading days", first, last, len(s.Days)))

	names, series := timelineSeries(s)

	summary := md.TableSet{
		Header: []string{"Series", "Start", "End", "Change"},
	}
	for i, name := range names {
		values := series[i]
		change := "-"
		if values[0] != 0 {
			change = signedPercent(values[len(values)-1]/values[0] - 1)
		}
		summary.Rows = append(summary.Rows, []string{
			name,
			fmt.Sprintf("%.2f", values[0]),
			fmt.Sprintf("%.2f", values[len(values)-1]),
			change,
		})
	}
	doc.Table(summary)

	// One row per ~month keeps the table readable over long ranges.
	doc.H2("Monthly Samples")
	sample := md.TableSet{Header: append([]string{"Date"}, names...)}
	for i := 0; i < len(s.Days); i += 21 {
		row := []string{s.Days[i].String()}
		for _, values := range series {
			row = append(row, fmt.Sprintf("%.2f", values[i]))
		}
		sample.Rows = append(sample.Rows, row)
	}
	doc.Table(sample)

	if len(s.Skipped) > 0 {
		doc.H2("Skipped")
		doc.BulletList(s.Skipped...)
	}
	return doc.String()
}

// timelineSeries flattens the timeline into named aligned series, portfolio
// first, benchmarks sorted, fixed deposit last.
func timelineSeries(s *marketwatch.TimelineSeries) ([]string, [][]float64) {
	names := []string{"Portfolio"}
	series := [][]float64{s.Portfolio}
	for _, name := range sortedKeys(s.Baselines) {
		names = append(names, name)
		series = append(series, s.Baselines[name])
	}
	names = append(names, "Fixed Deposit")
	series = append(series, s.FixedDeposit)
	return names, series
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
