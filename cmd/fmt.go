package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/marketwatch"
	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string     { return "fmt" }
func (*fmtCmd) Synopsis() string { return "rewrite the event log in canonical form" }
func (*fmtCmd) Usage() string {
	return `mw fmt

  Decodes and re-encodes the event log: one JSON object per line, keys in
  canonical order, events in append order. The content never changes, two
  runs produce identical files.
`
}

func (*fmtCmd) SetFlags(f *flag.FlagSet) {}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := marketwatch.UpdateLedger(portfolioDir(), func(*marketwatch.Ledger) error { return nil })
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println("Event log formatted.")
	return subcommands.ExitSuccess
}
