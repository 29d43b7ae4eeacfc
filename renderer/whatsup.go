package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/marketwatch"
	md "github.com/nao1215/markdown"
)

// WhatsUpMarkdown renders the daily report, most unusual movers first.
func WhatsUpMarkdown(r *marketwatch.WhatsUpReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("What's Up")
	doc.PlainText(fmt.Sprintf("%s, over the last %d trading days", r.On, r.Lookback))

	if len(r.Entries) > 0 {
		table := md.TableSet{
			Header: []string{
				"Ticker",
				"Close",
				"Day",
				"21d Trend",
				"Quantile",
			},
		}
		for _, e := range r.Entries {
			table.Rows = append(table.Rows, []string{
				mark(e),
				fmt.Sprintf("%.2f", e.LastClose),
				signedPercent(e.DailyReturn),
				signedPercent(e.TrendMean),
				fmt.Sprintf("%.0f%%", 100*e.Quantile),
			})
		}
		doc.Table(table)
	}

	if len(r.Skipped) > 0 {
		doc.H2("Skipped")
		var skipped []string
		for _, s := range r.Skipped {
			skipped = append(skipped, fmt.Sprintf("%s: %s", s.Security, s.Reason))
		}
		doc.BulletList(skipped...)
	}

	return doc.String()
}

// mark bolds the tickers sitting in the tails of their own history.
func mark(e marketwatch.WhatsUpEntry) string {
	if e.Extremeness >= 0.4 {
		return md.Bold(e.Security)
	}
	return e.Security
}
