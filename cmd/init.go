package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/marketwatch"
	"github.com/google/subcommands"
)

type initCmd struct {
	dir     string
	current bool
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a new portfolio directory" }
func (*initCmd) Usage() string {
	return `mw init [-dir <path>] [-current=false]

  Creates the portfolio directory with an empty event log, and records it as
  the current portfolio.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", ".", "directory to create the portfolio in")
	f.BoolVar(&c.current, "current", true, "record the new portfolio as the current one")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	dir, err := filepath.Abs(c.dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	ledgerFile := filepath.Join(dir, marketwatch.LedgerFileName)
	if _, err := os.Stat(ledgerFile); err == nil {
		fmt.Fprintf(os.Stderr, "portfolio already exists in %s\n", dir)
		return subcommands.ExitFailure
	}
	if err := marketwatch.SaveLedger(dir, marketwatch.NewLedger()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.current {
		home := homeDir()
		if err := os.MkdirAll(home, 0755); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(filepath.Join(home, "current"), []byte(dir+"\n"), 0644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	logger().Info().Str("dir", dir).Msg("portfolio created")
	fmt.Printf("Created portfolio in %s\n", dir)
	return subcommands.ExitSuccess
}
