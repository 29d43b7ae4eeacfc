package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/marketwatch"
	"github.com/etnz/marketwatch/renderer"
	"github.com/google/subcommands"
)

type whatsupCmd struct {
	day      string
	lookback int
}

func (*whatsupCmd) Name() string     { return "whatsup" }
func (*whatsupCmd) Synopsis() string { return "rank the portfolio universe by how unusual today's move is" }
func (*whatsupCmd) Usage() string {
	return `mw whatsup [-d <date>] [-lookback <days>]

  For each held security and each baseline, ranks the last daily return
  against the security's own lookback window. Moves in the tails top the
  report.
`
}

func (c *whatsupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.day, "d", "", "report date (defaults to today)")
	f.IntVar(&c.lookback, "lookback", marketwatch.DefaultLookback, "lookback window in trading days")
}

func (c *whatsupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	report, err := marketwatch.WhatsUp(ctx, ledger, provider(), day, c.lookback)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.WhatsUpMarkdown(report))
	return subcommands.ExitSuccess
}
