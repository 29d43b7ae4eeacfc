package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/marketwatch"
	"github.com/etnz/marketwatch/renderer"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

const assistModel = "gemini-2.5-pro"

const assistInstruction = `You are a cautious financial analyst commenting on a
private portfolio. You receive the portfolio status and the daily unusual-move
report, both as markdown. Comment on concentration, on positions near their
configured targets, and on anything unusual in today's moves. Be concrete and
brief. You give context, never orders: no buy or sell recommendations.`

type assistCmd struct {
	day string
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "ask Gemini for a commentary on the portfolio" }
func (*assistCmd) Usage() string {
	return `mw assist [-d <date>] [question]

  Sends the status and whatsup reports to Gemini for a one-shot commentary.
  An optional question focuses the commentary. Requires Gemini credentials in
  the environment.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.day, "d", "", "report date (defaults to today)")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	snap, err := marketwatch.BuildSnapshot(ledger, day)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	prices := lastCloses(ctx, snap.Securities(), day)

	var prompt strings.Builder
	prompt.WriteString(renderer.RenderStatus(renderer.NewStatus(snap, prices)))
	if report, err := marketwatch.WhatsUp(ctx, ledger, provider(), day, 0); err == nil {
		prompt.WriteString("\n")
		prompt.WriteString(renderer.WhatsUpMarkdown(report))
	} else {
		logger().Warn().Err(err).Msg("whatsup unavailable, commenting on status only")
	}
	if f.NArg() > 0 {
		prompt.WriteString("\nQuestion: ")
		prompt.WriteString(strings.Join(f.Args(), " "))
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}
	resp, err := client.Models.GenerateContent(ctx, assistModel, genai.Text(prompt.String()),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: assistInstruction}}},
		})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Gemini request failed:", err)
		return subcommands.ExitFailure
	}

	printMarkdown(resp.Text())
	return subcommands.ExitSuccess
}
