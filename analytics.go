package marketwatch

import (
	"context"
	"sort"

	"github.com/etnz/marketwatch/date"
)

// DefaultLookback is the default analytics window, one trading year.
const DefaultLookback = 252

// shortTermWindow is the number of daily returns averaged into the
// short-term trend.
const shortTermWindow = 21

// WhatsUpEntry is the daily read on one security.
type WhatsUpEntry struct {
	Security    string
	LastClose   float64
	DailyReturn float64 // last day-over-day return
	TrendMean   float64 // mean of the last 21 daily returns
	Quantile    float64 // fraction of lookback returns strictly below today's
	Extremeness float64 // distance of the quantile from the median
}

// WhatsUpSkip records a security left out of the report and why. A gap on one
// security never fails the whole run.
type WhatsUpSkip struct {
	Security string
	Reason   string
}

// WhatsUpReport ranks the portfolio universe by how unusual today's move is.
type WhatsUpReport struct {
	On       date.Date
	Lookback int
	Entries  []WhatsUpEntry // sorted by descending extremeness, ties by ticker
	Skipped  []WhatsUpSkip
}

// WhatsUp builds the daily report for the universe made of held securities
// and the configured baselines, as of a given day. A zero lookback uses
// DefaultLookback.
func WhatsUp(ctx context.Context, ledger *Ledger, provider PriceProvider, on date.Date, lookback int) (*WhatsUpReport, error) {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	snap, err := BuildSnapshot(ledger, on)
	if err != nil {
		return nil, err
	}

	report := &WhatsUpReport{On: on, Lookback: lookback}
	// Calendar days comfortably covering the lookback trading days.
	from := on.Add(-2*lookback - 10)

	for _, security := range universe(snap) {
		entry, err := whatsUpOne(ctx, provider, security, from, on, lookback)
		if err != nil {
			report.Skipped = append(report.Skipped, WhatsUpSkip{Security: security, Reason: err.Error()})
			continue
		}
		report.Entries = append(report.Entries, entry)
	}

	sort.Slice(report.Entries, func(i, j int) bool {
		a, b := report.Entries[i], report.Entries[j]
		if a.Extremeness != b.Extremeness {
			return a.Extremeness > b.Extremeness
		}
		return a.Security < b.Security
	})
	return report, nil
}

// universe returns held securities plus configured baselines, deduplicated,
// in ascending order.
func universe(snap *Snapshot) []string {
	seen := make(map[string]struct{})
	for ticker := range snap.Positions {
		seen[ticker] = struct{}{}
	}
	for _, ticker := range snap.Config.Baselines {
		seen[ticker] = struct{}{}
	}
	tickers := make([]string, 0, len(seen))
	for t := range seen {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

func whatsUpOne(ctx context.Context, provider PriceProvider, security string, from, to date.Date, lookback int) (WhatsUpEntry, error) {
	closes, err := provider.DailySeries(ctx, security, from, to)
	if err != nil {
		return WhatsUpEntry{}, err
	}

	returns := dailyReturns(closes)
	if len(returns) > lookback {
		returns = returns[len(returns)-lookback:]
	}
	if len(returns) < 2 {
		return WhatsUpEntry{}, &InsufficientHistoryError{Security: security, Got: len(returns), Want: 2}
	}

	today := returns[len(returns)-1]
	below := 0
	for _, r := range returns {
		if r < today {
			below++
		}
	}
	quantile := float64(below) / float64(len(returns))
	extremeness := quantile - 0.5
	if extremeness < 0 {
		extremeness = -extremeness
	}

	trend := returns
	if len(trend) > shortTermWindow {
		trend = trend[len(trend)-shortTermWindow:]
	}
	_, last := closes.Latest()

	return WhatsUpEntry{
		Security:    security,
		LastClose:   last,
		DailyReturn: today,
		TrendMean:   mean(trend),
		Quantile:    quantile,
		Extremeness: extremeness,
	}, nil
}
