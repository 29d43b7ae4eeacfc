package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/marketwatch/renderer"
	"github.com/google/subcommands"
)

type logCmd struct{}

func (*logCmd) Name() string     { return "log" }
func (*logCmd) Synopsis() string { return "display the chronological event log" }
func (*logCmd) Usage() string {
	return `mw log

  Shows every recorded event in effective date order, superseded events
  struck through.
`
}

func (*logCmd) SetFlags(f *flag.FlagSet) {}

func (c *logCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := loadLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.LogMarkdown(ledger))
	return subcommands.ExitSuccess
}
