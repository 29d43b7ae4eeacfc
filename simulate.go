package marketwatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/etnz/marketwatch/date"
)

// Simulation defaults.
const (
	DefaultLookbackYears = 5
	DefaultHorizon       = 21 // forward trading days
	DefaultParallelism   = 4

	// anchorStride spaces simulation anchors every 5th trading day of the
	// baseline calendar, one per week. The stride is fixed so two runs over
	// the same data always pick the same anchors.
	anchorStride = 5
)

// InvestRequest parameterizes a simulation run. Zero fields take defaults.
type InvestRequest struct {
	Amount        float64       // cash to deploy, in base currency
	LookbackYears int           // anchor window, years back from the run date
	Horizon       int           // forward trading days measured per anchor
	Timeout       time.Duration // per-candidate budget, 0 means none
	Parallelism   int           // concurrent candidate evaluations
}

// InvestCandidate is the aggregate outcome for one security.
type InvestCandidate struct {
	Security  string
	MeanDelta float64 // mean volatility delta vs the unmodified portfolio, lower is calmer
	Anchors   int     // number of anchors that produced a measurement
}

// InvestSkip records a candidate excluded from the ranking and why.
type InvestSkip struct {
	Security string
	Reason   string
}

// InvestReport ranks candidate purchases by how much they would have calmed
// or stirred the portfolio, measured over historical anchors.
type InvestReport struct {
	On         date.Date
	Amount     float64
	Baseline   string
	Candidates []InvestCandidate // ranked ascending by mean delta
	Skipped    []InvestSkip
}

// Invest simulates deploying an amount of cash into each candidate security
// at weekly historical anchors and measures the forward realized volatility
// of the hypothetical portfolio against the portfolio as it stood, without
// the purchase. Candidates are held securities plus securities with a
// configured buy target.
//
// Evaluations run in parallel and only read: the ledger is never modified.
func Invest(ctx context.Context, ledger *Ledger, provider PriceProvider, on date.Date, req InvestRequest) (*InvestReport, error) {
	if req.LookbackYears <= 0 {
		req.LookbackYears = DefaultLookbackYears
	}
	if req.Horizon <= 0 {
		req.Horizon = DefaultHorizon
	}
	if req.Parallelism <= 0 {
		req.Parallelism = DefaultParallelism
	}
	if req.Amount <= 0 {
		return nil, validationErrorf("invest amount must be positive, got %v", req.Amount)
	}

	snap, err := BuildSnapshot(ledger, on)
	if err != nil {
		return nil, err
	}
	baseline := snap.Config.Baseline()
	from := on.AddYears(-req.LookbackYears)

	baseCloses, err := provider.DailySeries(ctx, baseline, from, on)
	if err != nil {
		return nil, &DataUnavailableError{Security: baseline, Err: err}
	}
	cal := newCalendar(baseCloses)
	if len(cal.days) <= req.Horizon+1 {
		return nil, &InsufficientHistoryError{Security: baseline, Got: len(cal.days), Want: req.Horizon + 2}
	}

	// Snapshots are shared by every candidate: one replay per anchor.
	anchors := make([]int, 0, len(cal.days)/anchorStride)
	snaps := make(map[int]*Snapshot)
	for i := 0; i+req.Horizon < len(cal.days); i += anchorStride {
		s, err := BuildSnapshot(ledger, cal.days[i])
		if err != nil {
			return nil, err
		}
		anchors = append(anchors, i)
		snaps[i] = s
	}

	// Price series for every security the ledger ever held are shared too,
	// fetched once: anchor snapshots may hold positions since closed.
	heldSeries := make(map[string]*date.History[float64])
	for sec := range ledger.Securities() {
		closes, err := provider.DailySeries(ctx, sec, from, on)
		if err != nil {
			// A held security without prices degrades to its cost value,
			// contributing no volatility. The run goes on.
			closes = &date.History[float64]{}
		}
		heldSeries[sec] = closes
	}

	candidates := investUniverse(snap)
	results := make([]investResult, len(candidates))
	sem := make(chan struct{}, req.Parallelism)
	var wg sync.WaitGroup
	for i, sec := range candidates {
		wg.Add(1)
		go func(i int, sec string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			cctx := ctx
			if req.Timeout > 0 {
				var cancel context.CancelFunc
				cctx, cancel = context.WithTimeout(ctx, req.Timeout)
				defer cancel()
			}
			results[i] = evaluateCandidate(cctx, provider, sec, from, on, req, cal, anchors, snaps, heldSeries, snap.Config)
		}(i, sec)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &InvestReport{On: on, Amount: req.Amount, Baseline: baseline}
	for _, r := range results {
		if r.skipped != "" {
			report.Skipped = append(report.Skipped, InvestSkip{Security: r.security, Reason: r.skipped})
			continue
		}
		report.Candidates = append(report.Candidates, InvestCandidate{
			Security:  r.security,
			MeanDelta: r.meanDelta,
			Anchors:   r.anchors,
		})
	}
	sort.Slice(report.Candidates, func(i, j int) bool {
		a, b := report.Candidates[i], report.Candidates[j]
		if a.MeanDelta != b.MeanDelta {
			return a.MeanDelta < b.MeanDelta
		}
		return a.Security < b.Security
	})
	sort.Slice(report.Skipped, func(i, j int) bool {
		return report.Skipped[i].Security < report.Skipped[j].Security
	})
	return report, nil
}

// investUniverse returns held securities plus securities with a configured
// buy target, deduplicated, in ascending order.
func investUniverse(snap *Snapshot) []string {
	seen := make(map[string]struct{})
	for ticker := range snap.Positions {
		seen[ticker] = struct{}{}
	}
	for ticker, target := range snap.Config.Targets {
		if target.Buy != nil {
			seen[ticker] = struct{}{}
		}
	}
	tickers := make([]string, 0, len(seen))
	for t := range seen {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// calendar is the baseline trading calendar.
type calendar struct {
	days []date.Date
}

func newCalendar(h *date.History[float64]) *calendar {
	c := &calendar{}
	for day := range h.Days() {
		c.days = append(c.days, day)
	}
	return c
}

type investResult struct {
	security  string
	meanDelta float64
	anchors   int
	skipped   string
}

// skipReason maps a context error to the wording used in skip reports.
func skipReason(ctx context.Context) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "timeout"
	}
	return "canceled"
}

// evaluateCandidate runs every anchor for one candidate. Anchors where the
// purchase would breach the candidate's max weight are skipped, not capped.
func evaluateCandidate(ctx context.Context, provider PriceProvider, security string, from, to date.Date, req InvestRequest, cal *calendar, anchors []int, snaps map[int]*Snapshot, heldSeries map[string]*date.History[float64], cfg Config) investResult {
	res := investResult{security: security}

	closes, err := provider.DailySeries(ctx, security, from, to)
	if err != nil {
		if ctx.Err() != nil {
			res.skipped = skipReason(ctx)
			return res
		}
		res.skipped = fmt.Sprintf("no price data: %v", err)
		return res
	}

	maxWeight := cfg.MaxWeightFor(security)
	var deltaSum float64
	var counted, breached int

	for _, i := range anchors {
		if ctx.Err() != nil {
			res.skipped = skipReason(ctx)
			return res
		}
		day := cal.days[i]
		price, ok := closes.AsOf(day)
		if !ok || price <= 0 {
			continue
		}
		snap := snaps[i]

		// Weight of the candidate right after the hypothetical purchase.
		prices := pricesAsOf(snap, heldSeries, day)
		prices[security] = price
		total := snap.MarketValue(prices) + req.Amount
		held := snap.Position(security).Quantity.AsFloat() * price
		if total > 0 && (held+req.Amount)/total > maxWeight {
			breached++
			continue
		}

		// Forward value of the portfolio as it stands, and of the same
		// portfolio plus the purchase. The delta compares the two: the
		// purchase is judged against what holding still would have done.
		units := req.Amount / price
		base := make([]float64, 0, req.Horizon+1)
		hypo := make([]float64, 0, req.Horizon+1)
		for t := i; t <= i+req.Horizon; t++ {
			d := cal.days[t]
			v := snap.Cash.AsFloat()
			for sec, pos := range snap.Positions {
				if p, ok := heldSeries[sec].AsOf(d); ok && p > 0 {
					v += pos.Quantity.AsFloat() * p
				} else {
					v += pos.CostBasis.Mul(pos.Quantity).AsFloat()
				}
			}
			base = append(base, v)
			if p, ok := closes.AsOf(d); ok && p > 0 {
				v += units * p
			} else {
				v += units * price
			}
			hypo = append(hypo, v)
		}

		deltaSum += stdev(seriesReturns(hypo)) - stdev(seriesReturns(base))
		counted++
	}

	if counted == 0 {
		if breached > 0 {
			res.skipped = "all anchors exceed max weight"
		} else {
			res.skipped = "insufficient history"
		}
		return res
	}
	res.meanDelta = deltaSum / float64(counted)
	res.anchors = counted
	return res
}

// seriesReturns converts a value series into day-over-day returns.
func seriesReturns(values []float64) []float64 {
	returns := make([]float64, 0, len(values))
	for t := 1; t < len(values); t++ {
		if values[t-1] != 0 {
			returns = append(returns, values[t]/values[t-1]-1)
		}
	}
	return returns
}

// pricesAsOf collects the last known price at or before day for every held
// security.
func pricesAsOf(snap *Snapshot, series map[string]*date.History[float64], day date.Date) map[string]float64 {
	prices := make(map[string]float64, len(snap.Positions))
	for sec := range snap.Positions {
		if h, ok := series[sec]; ok {
			if p, found := h.AsOf(day); found && p > 0 {
				prices[sec] = p
			}
		}
	}
	return prices
}
