package marketwatch

import (
	"context"
	"sort"

	"github.com/etnz/marketwatch/date"
)

// tradingYear is the number of trading days the fixed-deposit baseline
// compounds over in a year.
const tradingYear = 252

// TimelineSeries is the daily value of the portfolio against its baselines,
// over the life of the ledger. All series share Days and are flow-adjusted:
// an external cash flow buys baseline units at that day's price, so the
// comparison stays fair after deposits and withdrawals.
type TimelineSeries struct {
	Days         []date.Date
	Portfolio    []float64
	Baselines    map[string][]float64 // buy-and-hold per benchmark ticker
	FixedDeposit []float64            // compounding at Config.FDRate/252 per trading day
	Skipped      []string             // benchmarks left out, with the reason
}

// Timeline computes the daily portfolio value series between from and to,
// alongside each configured benchmark and the fixed-deposit baseline. Zero
// bounds default to the ledger's life.
func Timeline(ctx context.Context, ledger *Ledger, provider PriceProvider, from, to date.Date) (*TimelineSeries, error) {
	if from.IsZero() {
		from = ledger.OldestEventDate()
	}
	if to.IsZero() {
		to = date.Today()
	}
	if from.IsZero() {
		return nil, validationErrorf("empty ledger has no timeline")
	}
	if !date.NewRange(from, to).IsValid() {
		return nil, validationErrorf("invalid timeline range %s to %s", from, to)
	}

	final, err := BuildSnapshot(ledger, to)
	if err != nil {
		return nil, err
	}
	cfg := final.Config

	// The primary benchmark drives the trading calendar.
	calCloses, err := provider.DailySeries(ctx, cfg.Baseline(), from, to)
	if err != nil {
		return nil, &DataUnavailableError{Security: cfg.Baseline(), Err: err}
	}
	var days []date.Date
	for day := range calCloses.Days() {
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, &InsufficientHistoryError{Security: cfg.Baseline(), Got: 0, Want: 1}
	}

	series := &TimelineSeries{Days: days, Baselines: make(map[string][]float64)}

	// Portfolio value per trading day, and the external flows that bought it.
	heldSeries := make(map[string]*date.History[float64])
	for sec := range ledger.Securities() {
		closes, err := provider.DailySeries(ctx, sec, from, to)
		if err != nil {
			closes = &date.History[float64]{}
		}
		heldSeries[sec] = closes
	}
	flows := externalFlows(ledger, days)
	for _, day := range days {
		snap, err := BuildSnapshot(ledger, day)
		if err != nil {
			return nil, err
		}
		series.Portfolio = append(series.Portfolio, snap.MarketValue(pricesAsOf(snap, heldSeries, day)))
	}

	// Benchmarks: start from the portfolio's day-zero value, then let every
	// external flow buy or sell units at that day's close.
	for _, bench := range cfg.Baselines {
		closes := calCloses
		if bench != cfg.Baseline() {
			closes, err = provider.DailySeries(ctx, bench, from, to)
			if err != nil {
				series.Skipped = append(series.Skipped, bench+": "+err.Error())
				continue
			}
		}
		values, ok := buyAndHold(series.Portfolio[0], days, flows, closes)
		if !ok {
			series.Skipped = append(series.Skipped, bench+": insufficient history")
			continue
		}
		series.Baselines[bench] = values
	}

	// Fixed deposit: same start, daily compounding, flows at face value.
	balance := series.Portfolio[0]
	dailyRate := cfg.FDRate / tradingYear
	for i := range days {
		if i > 0 {
			balance *= 1 + dailyRate
			balance += flows[i]
		}
		series.FixedDeposit = append(series.FixedDeposit, balance)
	}
	return series, nil
}

// externalFlows sums the cash movements between consecutive trading days.
// flows[i] is the net external flow attributed to days[i]; movements before
// the first trading day are part of the day-zero value, not flows.
func externalFlows(ledger *Ledger, days []date.Date) []float64 {
	flows := make([]float64, len(days))
	for ev := range ledger.Effective() {
		cm, ok := ev.(CashMovement)
		if !ok {
			continue
		}
		// Attribute the flow to the first trading day at or after the event.
		i := sort.Search(len(days), func(i int) bool { return !days[i].Before(cm.When()) })
		if i == 0 || i >= len(days) {
			continue
		}
		flows[i] += cm.Amount.AsFloat()
	}
	return flows
}

// buyAndHold simulates holding a benchmark with the portfolio's flows: the
// opening value buys units at the first close, later flows trade at their
// day's close.
func buyAndHold(opening float64, days []date.Date, flows []float64, closes *date.History[float64]) ([]float64, bool) {
	first, ok := closes.AsOf(days[0])
	if !ok || first <= 0 {
		return nil, false
	}
	units := opening / first
	values := make([]float64, 0, len(days))
	for i, day := range days {
		price, ok := closes.AsOf(day)
		if !ok || price <= 0 {
			price = first
		}
		if i > 0 && flows[i] != 0 {
			units += flows[i] / price
		}
		values = append(values, units*price)
	}
	return values, true
}
