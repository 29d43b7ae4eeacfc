package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/marketwatch"
	"github.com/google/subcommands"
)

type cashCmd struct {
	amount float64
	day    string
	note   string
}

func (*cashCmd) Name() string     { return "cash" }
func (*cashCmd) Synopsis() string { return "record an external deposit or withdrawal" }
func (*cashCmd) Usage() string {
	return `mw cash -amount <n> [-d <date>] [-note <why>]

  Positive amounts deposit, negative amounts withdraw.
`
}

func (c *cashCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.amount, "amount", 0, "amount to move (negative to withdraw)")
	f.StringVar(&c.day, "d", "", "effective date (defaults to today)")
	f.StringVar(&c.note, "note", "", "rationale for the movement")
}

func (c *cashCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, err := parseDay(c.day)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return record(marketwatch.NewCashMovement(day, c.note, marketwatch.M(c.amount)))
}
