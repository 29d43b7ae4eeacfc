package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/marketwatch"
	"github.com/google/subcommands"
)

type correctCmd struct {
	target int64
	reason string
	with   string
	day    string
}

func (*correctCmd) Name() string     { return "correct" }
func (*correctCmd) Synopsis() string { return "supersede a recorded event, optionally with a replacement" }
func (*correctCmd) Usage() string {
	return `mw correct -target <id> -reason <why> [-with <event json>] [-d <date>]

  Without -with the target event is nullified. With -with, the replacement
  event (one JSON object in the event log format) folds at the target's
  original date and slot. The ledger is never edited: the correction is a new
  event and the mistake stays visible in the log.
`
}

func (c *correctCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.target, "target", 0, "id of the event to supersede")
	f.StringVar(&c.reason, "reason", "", "why the event was wrong (required)")
	f.StringVar(&c.with, "with", "", "replacement event as JSON, empty to nullify")
	f.StringVar(&c.day, "d", "", "correction date (defaults to today)")
}

func (c *correctCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, err := parseDay(c.day)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	var replacement marketwatch.Event
	if c.with != "" {
		replacement, err = marketwatch.DecodeEvent([]byte(c.with))
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid replacement: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	ev := marketwatch.NewCorrection(day, marketwatch.EventID(c.target), c.reason, replacement)
	return record(ev)
}
