package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/marketwatch"
	"github.com/google/subcommands"
)

type targetCmd struct {
	security  string
	buy       float64
	sell      float64
	intrinsic float64
	maxWeight float64
	fdRate    float64
	day       string
	note      string
}

func (*targetCmd) Name() string     { return "target" }
func (*targetCmd) Synopsis() string { return "set price targets and limits for a security" }
func (*targetCmd) Usage() string {
	return `mw target -s <ticker> [-buy <n>] [-sell <n>] [-intrinsic <n>] [-max-weight <0..1>] [-fd-rate <n>] [-d <date>] [-note <why>]

  Only the levels given are updated, the others keep their previous value.
  Without -s, only -fd-rate is allowed and sets the portfolio fixed-deposit
  rate.
`
}

func (c *targetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.security, "s", "", "security ticker")
	f.Float64Var(&c.buy, "buy", 0, "buy below this price")
	f.Float64Var(&c.sell, "sell", 0, "sell above this price")
	f.Float64Var(&c.intrinsic, "intrinsic", 0, "estimated intrinsic value per unit")
	f.Float64Var(&c.maxWeight, "max-weight", 0, "maximum portfolio weight, as a fraction")
	f.Float64Var(&c.fdRate, "fd-rate", 0, "portfolio fixed-deposit annual rate")
	f.StringVar(&c.day, "d", "", "effective date (defaults to today)")
	f.StringVar(&c.note, "note", "", "rationale for the targets")
}

func (c *targetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, err := parseDay(c.day)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	ev := marketwatch.NewSetTarget(day, c.note, c.security)
	// Only flags the user actually passed become part of the event.
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "buy":
			m := marketwatch.M(c.buy)
			ev.Buy = &m
		case "sell":
			m := marketwatch.M(c.sell)
			ev.Sell = &m
		case "intrinsic":
			m := marketwatch.M(c.intrinsic)
			ev.Intrinsic = &m
		case "max-weight":
			w := c.maxWeight
			ev.MaxWeight = &w
		case "fd-rate":
			r := c.fdRate
			ev.FDRate = &r
		}
	})
	return record(ev)
}
