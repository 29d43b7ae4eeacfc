package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/marketwatch"
	"github.com/google/subcommands"
)

type addCmd struct {
	security string
	units    float64
	cost     float64
	day      string
	note     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a trade, positive units buy, negative units sell" }
func (*addCmd) Usage() string {
	return `mw add -s <ticker> -units <n> [-cost <per-unit>] [-d <date>] [-note <why>]

  Buys recompute the weighted average cost basis; sells keep it. Selling more
  than is held is rejected.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.security, "s", "", "security ticker")
	f.Float64Var(&c.units, "units", 0, "units to add (negative to sell)")
	f.Float64Var(&c.cost, "cost", 0, "per-unit cost (required for buys)")
	f.StringVar(&c.day, "d", "", "effective date (defaults to today)")
	f.StringVar(&c.note, "note", "", "rationale for the trade")
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, err := parseDay(c.day)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	ev := marketwatch.NewTradeAdd(day, c.note, c.security, marketwatch.Q(c.units), marketwatch.M(c.cost))
	return record(ev)
}
