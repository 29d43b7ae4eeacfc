package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/marketwatch"
	md "github.com/nao1215/markdown"
)

// InvestMarkdown renders the simulation report, calmest candidate first.
func InvestMarkdown(r *marketwatch.InvestReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Investment Simulation")
	doc.PlainText(fmt.Sprintf("Deploying %.2f on %s, anchored on the %s calendar", r.Amount, r.On, r.Baseline))

	if len(r.Candidates) > 0 {
		table := md.TableSet{
			Header: []string{
				"Ticker",
				"Volatility change",
				"Anchors",
			},
		}
		for _, c := range r.Candidates {
			table.Rows = append(table.Rows, []string{
				c.Security,
				signedPercent(c.MeanDelta),
				fmt.Sprintf("%d", c.Anchors),
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
