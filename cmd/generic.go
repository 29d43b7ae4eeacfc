package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/marketwatch"
	"github.com/etnz/marketwatch/date"
	"github.com/google/subcommands"
)

type genericCmd struct {
	cash  float64
	days  int
	pnl   float64
	close string
	day   string
	note  string
}

func (*genericCmd) Name() string { return "generic" }
func (*genericCmd) Synopsis() string {
	return "record a fixed-term trade outside the unit model"
}
func (*genericCmd) Usage() string {
	return `mw generic -cash <n> -days <n> -pnl <n> [-close <date>] [-d <date>] [-note <why>]

  The committed cash shows as reserved until the close date, then the profit
  or loss lands in cash. Without -close the close date is the open date plus
  the duration.
`
}

func (c *genericCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.cash, "cash", 0, "cash committed to the trade")
	f.IntVar(&c.days, "days", 0, "duration of the trade in days")
	f.Float64Var(&c.pnl, "pnl", 0, "profit or loss at close")
	f.StringVar(&c.close, "close", "", "close date (defaults to open date plus duration)")
	f.StringVar(&c.day, "d", "", "effective date (defaults to today)")
	f.StringVar(&c.note, "note", "", "rationale for the trade")
}

func (c *genericCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, err := parseDay(c.day)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	var close date.Date
	if c.close != "" {
		close, err = date.Parse(c.close)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}
	ev := marketwatch.NewGenericTrade(day, c.note, marketwatch.M(c.cash), c.days, marketwatch.M(c.pnl), close)
	return record(ev)
}
