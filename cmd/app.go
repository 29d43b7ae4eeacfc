// Package cmd implements the CLI application to watch a portfolio.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/marketwatch"
	"github.com/etnz/marketwatch/date"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package calls Register() to declare the subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&initCmd{}, "portfolio")
	c.Register(&importCmd{}, "portfolio")
	c.Register(&fmtCmd{}, "portfolio")

	c.Register(&addCmd{}, "events")
	c.Register(&cashCmd{}, "events")
	c.Register(&genericCmd{}, "events")
	c.Register(&targetCmd{}, "events")
	c.Register(&correctCmd{}, "events")
	c.Register(&logCmd{}, "events")

	c.Register(&statusCmd{}, "reports")
	c.Register(&whatsupCmd{}, "reports")
	c.Register(&investCmd{}, "reports")
	c.Register(&timelineCmd{}, "reports")

	c.Register(&topicCmd{}, "help")
	c.Register(&assistCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var portfolioFlag = flag.String("C", "", "Path to the portfolio directory (overrides settings and the current file)")

// CommandNames lists every registered subcommand, for shell completion.
func CommandNames() []string {
	return []string{
		"init", "import", "fmt",
		"add", "cash", "generic", "target", "correct", "log",
		"status", "whatsup", "invest", "timeline",
		"topic", "assist",
	}
}

// portfolioDir resolves the portfolio directory: the -C flag first, then the
// settings, then the "current" file in the marketwatch home, then the working
// directory.
func portfolioDir() string {
	if *portfolioFlag != "" {
		return *portfolioFlag
	}
	if dir := settings.GetString("portfolio.dir"); dir != "" {
		return dir
	}
	current := filepath.Join(homeDir(), "current")
	if content, err := os.ReadFile(current); err == nil {
		if dir := strings.TrimSpace(string(content)); dir != "" {
			return dir
		}
	}
	return "."
}

// loadLedger loads the portfolio ledger from the resolved directory.
func loadLedger() (*marketwatch.Ledger, error) {
	return marketwatch.LoadLedger(portfolioDir())
}

// record validates and appends a single event, then persists the ledger.
func record(ev marketwatch.Event) subcommands.ExitStatus {
	var id marketwatch.EventID
	err := marketwatch.UpdateLedger(portfolioDir(), func(ledger *marketwatch.Ledger) error {
		var err error
		id, err = ledger.Append(ev)
		return err
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	logger().Info().Stringer("id", id).Str("kind", string(ev.Kind())).Msg("event recorded")
	fmt.Printf("Recorded %s as %s\n", ev.Kind(), id)
	return subcommands.ExitSuccess
}

// provider returns the price source: EODHD behind the per-symbol CSV cache.
func provider() marketwatch.PriceProvider {
	source := marketwatch.NewEODHD(settings.GetString("eodhd.api_key"))
	cacheDir := settings.GetString("cache.dir")
	if cacheDir == "" {
		cacheDir = filepath.Join(homeDir(), "prices")
	}
	return marketwatch.NewCachedProvider(cacheDir, source)
}

// parseDay parses a -d flag value, "" meaning today.
func parseDay(s string) (date.Date, error) {
	if s == "" {
		return date.Today(), nil
	}
	return date.Parse(s)
}

// printMarkdown renders markdown for the terminal. On any styling error the
// raw markdown is still printed.
func printMarkdown(markdown string) {
	out, err := glamour.Render(markdown, "auto")
	if err != nil {
		fmt.Print(markdown)
		return
	}
	fmt.Print(out)
}
