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

type statusCmd struct {
	day     string
	offline bool
}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show the reconstructed portfolio at a date" }
func (*statusCmd) Usage() string {
	return `mw status [-d <date>] [-offline]

  Replays the event log up to the date and values positions at the last known
  close. With -offline no prices are fetched and positions are valued at
  cost.
`
}

func (c *statusCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.day, "d", "", "date to reconstruct (defaults to today)")
	f.BoolVar(&c.offline, "offline", false, "skip price fetching, value at cost")
}

func (c *statusCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, err := parseDay(c.day)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	ledger, err := loadLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	snap, err := marketwatch.BuildSnapshot(ledger, day)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	prices := make(map[string]float64)
	if !c.offline {
		prices = lastCloses(ctx, snap.Securities(), day)
	}
	printMarkdown(renderer.RenderStatus(renderer.NewStatus(snap, prices)))
	return subcommands.ExitSuccess
}

// lastCloses fetches the last known close at or before day for each security.
// A security without a price is left out, it will be valued at cost.
func lastCloses(ctx context.Context, securities []string, day date.Date) map[string]float64 {
	src := provider()
	prices := make(map[string]float64, len(securities))
	for _, sec := range securities {
		closes, err := src.DailySeries(ctx, sec, day.Add(-30), day)
		if err != nil {
			logger().Warn().Err(err).Str("security", sec).Msg("no price, valuing at cost")
			continue
		}
		if price, ok := closes.AsOf(day); ok && price > 0 {
			prices[sec] = price
		}
	}
	return prices
}
