package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/marketwatch"
	"github.com/etnz/marketwatch/renderer"
	"github.com/google/subcommands"
)

type investCmd struct {
	amount   float64
	day      string
	years    int
	horizon  int
	timeout  time.Duration
	parallel int
}

func (*investCmd) Name() string     { return "invest" }
func (*investCmd) Synopsis() string { return "simulate a cash deployment and rank the candidates" }
func (*investCmd) Usage() string {
	return `mw invest -amount <n> [-d <date>] [-years <n>] [-horizon <days>] [-timeout <duration>] [-parallel <n>]

  Simulates buying each candidate at weekly historical anchors and ranks the
  candidates by the volatility the purchase would have added to the portfolio
  as it stood. Reads only, never appends.
`
}

func (c *investCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.amount, "amount", 0, "cash to deploy")
	f.StringVar(&c.day, "d", "", "simulation date (defaults to today)")
	f.IntVar(&c.years, "years", marketwatch.DefaultLookbackYears, "anchor window in years")
	f.IntVar(&c.horizon, "horizon", marketwatch.DefaultHorizon, "forward window in trading days")
	f.DurationVar(&c.timeout, "timeout", 30*time.Second, "per-candidate time budget, 0 for none")
	f.IntVar(&c.parallel, "parallel", marketwatch.DefaultParallelism, "concurrent candidate evaluations")
}

func (c *investCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	report, err := marketwatch.Invest(ctx, ledger, provider(), day, marketwatch.InvestRequest{
		Amount:        c.amount,
		LookbackYears: c.years,
		Horizon:       c.horizon,
		Timeout:       c.timeout,
		Parallelism:   c.parallel,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.InvestMarkdown(report))
	return subcommands.ExitSuccess
}
