package marketwatch

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

// investLedger builds a cash-only portfolio with buy targets on the given
// securities, each allowed up to the full portfolio.
func investLedger(t *testing.T, securities ...string) *Ledger {
	t.Helper()
	ledger := NewLedger()
	mustAppend(t, ledger, NewCashMovement(day("2025-01-02"), "funding", M(10000)))
	one := 1.0
	for _, sec := range securities {
		buy := M(100)
		ev := NewSetTarget(day("2025-01-02"), "", sec)
		ev.Buy = &buy
		ev.MaxWeight = &one
		mustAppend(t, ledger, ev)
	}
	return ledger
}

// investProvider serves 30 trading days from 2025-01-06: a gently moving
// baseline, a flat candidate and a choppy one.
func investProvider() *fakeProvider {
	spy := make([]float64, 30)
	flat := make([]float64, 30)
	chop := make([]float64, 30)
	for i := range spy {
		spy[i] = 500 + float64(i%3)
		flat[i] = 100
		chop[i] = 100 + 10*float64(i%2)
	}
	provider := newFakeProvider()
	provider.add("SPY", day("2025-01-06"), spy...)
	provider.add("FLAT", day("2025-01-06"), flat...)
	provider.add("CHOP", day("2025-01-06"), chop...)
	return provider
}

func TestInvest_RanksCalmerCandidateFirst(t *testing.T) {
	ledger := investLedger(t, "FLAT", "CHOP")
	req := InvestRequest{Amount: 1000, LookbackYears: 1, Horizon: 5, Parallelism: 2}

	report, err := Invest(context.Background(), ledger, investProvider(), day("2025-02-14"), req)
	if err != nil {
		t.Fatalf("Invest() failed: %v", err)
	}
	if report.Baseline != "SPY" {
		t.Errorf("baseline = %q, want SPY", report.Baseline)
	}
	if len(report.Candidates) != 2 {
		t.Fatalf("candidates = %+v, want FLAT and CHOP ranked", report.Candidates)
	}
	if report.Candidates[0].Security != "FLAT" {
		t.Errorf("top candidate = %q, want FLAT (it adds no volatility)", report.Candidates[0].Security)
	}
	if flat, chop := report.Candidates[0], report.Candidates[1]; flat.MeanDelta >= chop.MeanDelta {
		t.Errorf("mean delta: FLAT %v not below CHOP %v", flat.MeanDelta, chop.MeanDelta)
	}
	for _, c := range report.Candidates {
		if c.Anchors == 0 {
			t.Errorf("%s measured over 0 anchors", c.Security)
		}
	}
}

func TestInvest_FlatBuyOnCashPortfolioHasZeroDelta(t *testing.T) {
	// An all-cash portfolio has no volatility, and neither does a constant
	// candidate. The purchase changes nothing, so the delta is exactly zero.
	ledger := investLedger(t, "FLAT")
	req := InvestRequest{Amount: 1000, LookbackYears: 1, Horizon: 5}

	report, err := Invest(context.Background(), ledger, investProvider(), day("2025-02-14"), req)
	if err != nil {
		t.Fatalf("Invest() failed: %v", err)
	}
	if len(report.Candidates) != 1 {
		t.Fatalf("candidates = %+v, want FLAT only", report.Candidates)
	}
	if got := report.Candidates[0].MeanDelta; got != 0 {
		t.Errorf("mean delta = %v, want 0", got)
	}
}

func TestInvest_CancellationIsNotReportedAsTimeout(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, stop := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer stop()

	req := InvestRequest{Amount: 1000, Horizon: 5}
	from, to := day("2025-01-06"), day("2025-02-14")
	if res := evaluateCandidate(canceled, investProvider(), "FLAT", from, to, req, nil, nil, nil, nil, DefaultConfig()); res.skipped != "canceled" {
		t.Errorf("canceled context: reason = %q, want canceled", res.skipped)
	}
	if res := evaluateCandidate(expired, investProvider(), "FLAT", from, to, req, nil, nil, nil, nil, DefaultConfig()); res.skipped != "timeout" {
		t.Errorf("expired context: reason = %q, want timeout", res.skipped)
	}
}

func TestInvest_IsDeterministic(t *testing.T) {
	req := InvestRequest{Amount: 1000, LookbackYears: 1, Horizon: 5, Parallelism: 4}
	run := func() *InvestReport {
		report, err := Invest(context.Background(), investLedger(t, "FLAT", "CHOP"), investProvider(), day("2025-02-14"), req)
		if err != nil {
			t.Fatalf("Invest() failed: %v", err)
		}
		return report
	}
	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Errorf("two runs differ:\n%+v\n%+v", a, b)
	}
}

func TestInvest_MaxWeightSkipsAnchors(t *testing.T) {
	ledger := investLedger(t, "FLAT")
	// A 1000 purchase on an 11000 portfolio weighs ~9%, above this cap on
	// every anchor. The candidate must be skipped, not scaled down.
	tight := 0.05
	buy := M(100)
	ev := NewSetTarget(day("2025-01-02"), "", "CHOP")
	ev.Buy = &buy
	ev.MaxWeight = &tight
	mustAppend(t, ledger, ev)

	req := InvestRequest{Amount: 1000, LookbackYears: 1, Horizon: 5}
	report, err := Invest(context.Background(), ledger, investProvider(), day("2025-02-14"), req)
	if err != nil {
		t.Fatalf("Invest() failed: %v", err)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Security != "CHOP" {
		t.Fatalf("skipped = %+v, want CHOP only", report.Skipped)
	}
	if got := report.Skipped[0].Reason; got != "all anchors exceed max weight" {
		t.Errorf("reason = %q", got)
	}
	if len(report.Candidates) != 1 || report.Candidates[0].Security != "FLAT" {
		t.Errorf("candidates = %+v, want FLAT still ranked", report.Candidates)
	}
}

func TestInvest_SlowCandidateTimesOut(t *testing.T) {
	ledger := investLedger(t, "FLAT")
	provider := investProvider()
	provider.delay = 50 * time.Millisecond

	req := InvestRequest{Amount: 1000, LookbackYears: 1, Horizon: 5, Timeout: time.Millisecond}
	report, err := Invest(context.Background(), ledger, provider, day("2025-02-14"), req)
	if err != nil {
		t.Fatalf("Invest() failed: %v", err)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Security != "FLAT" {
		t.Fatalf("skipped = %+v, want FLAT", report.Skipped)
	}
	if got := report.Skipped[0].Reason; got != "timeout" {
		t.Errorf("reason = %q, want timeout", got)
	}
}

func TestInvest_RejectsNonPositiveAmount(t *testing.T) {
	ledger := investLedger(t, "FLAT")
	_, err := Invest(context.Background(), ledger, investProvider(), day("2025-02-14"), InvestRequest{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Invest() error = %v, want a validation error", err)
	}
}

func TestInvest_MissingBaselineIsFatal(t *testing.T) {
	ledger := investLedger(t, "FLAT")
	provider := newFakeProvider()
	provider.add("FLAT", day("2025-01-06"), 100, 100, 100, 100, 100)

	_, err := Invest(context.Background(), ledger, provider, day("2025-02-14"), InvestRequest{Amount: 1000})
	var derr *DataUnavailableError
	if !errors.As(err, &derr) {
		t.Fatalf("Invest() error = %v, want data unavailable for the baseline", err)
	}
	if derr.Security != "SPY" {
		t.Errorf("failing security = %q, want SPY", derr.Security)
	}
}
