package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/marketwatch"
	"github.com/google/subcommands"
)

type importCmd struct {
	file string
	cash float64
	day  string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import existing holdings from a CSV file" }
func (*importCmd) Usage() string {
	return `mw import -file <holdings.csv> [-cash <amount>] [-d <date>]

  Appends one opening position per CSV row (security, quantity, cost_basis)
  and one cash movement for the opening cash.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "holdings CSV file to import")
	f.Float64Var(&c.cash, "cash", 0, "opening cash balance")
	f.StringVar(&c.day, "d", "", "effective date (defaults to today)")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "missing -file")
		return subcommands.ExitUsageError
	}
	day, err := parseDay(c.day)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	r, err := os.Open(c.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer r.Close()

	var count int
	err = marketwatch.UpdateLedger(portfolioDir(), func(ledger *marketwatch.Ledger) error {
		var err error
		count, err = marketwatch.ImportHoldings(ledger, r, day, marketwatch.M(c.cash))
		return err
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	logger().Info().Int("events", count).Str("file", c.file).Msg("holdings imported")
	fmt.Printf("Imported %d events from %s\n", count, c.file)
	return subcommands.ExitSuccess
}
