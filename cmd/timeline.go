package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/marketwatch"
	"github.com/etnz/marketwatch/date"
	"github.com/etnz/marketwatch/renderer"
	"github.com/google/subcommands"
)

type timelineCmd struct {
	start string
	end   string
	png   string
}

func (*timelineCmd) Name() string     { return "timeline" }
func (*timelineCmd) Synopsis() string { return "plot the portfolio value against its benchmarks" }
func (*timelineCmd) Usage() string {
	return `mw timeline [-s <start>] [-e <end>] [-png <file>]

  Computes the daily portfolio value over the date range (the ledger's life
  by default) against the flow-adjusted benchmarks and the fixed deposit.
  With -png the chart is written to a file instead of printing the table.
`
}

func (c *timelineCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "start date (defaults to the first event)")
	f.StringVar(&c.end, "e", "", "end date (defaults to today)")
	f.StringVar(&c.png, "png", "", "write the chart as PNG to this file")
}

func (c *timelineCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var from, to date.Date
	var err error
	if c.start != "" {
		if from, err = date.Parse(c.start); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}
	if c.end != "" {
		if to, err = date.Parse(c.end); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}

	ledger, err := loadLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	series, err := marketwatch.Timeline(ctx, ledger, provider(), from, to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.png != "" {
		w, err := os.Create(c.png)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		defer w.Close()
		if err := renderer.TimelineChart(w, series); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Wrote %s\n", c.png)
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.TimelineMarkdown(series))
	return subcommands.ExitSuccess
}
