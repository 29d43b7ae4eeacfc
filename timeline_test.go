package marketwatch

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/etnz/marketwatch/date"
)

func timelineLedger(t *testing.T) *Ledger {
	t.Helper()
	ledger := NewLedger()
	mustAppend(t, ledger, NewCashMovement(day("2025-01-02"), "funding", M(10000)))
	mustAppend(t, ledger, NewInitPosition(day("2025-01-02"), "", "AAPL", Q(10), M(100)))
	return ledger
}

func TestTimeline_FlatPricesHoldSteady(t *testing.T) {
	ledger := timelineLedger(t)
	provider := newFakeProvider()
	provider.add("SPY", day("2025-01-06"), 500, 500, 500, 500, 500, 500, 500, 500, 500, 500)
	provider.add("AAPL", day("2025-01-06"), 100, 100, 100, 100, 100, 100, 100, 100, 100, 100)

	series, err := Timeline(context.Background(), ledger, provider, day("2025-01-06"), day("2025-01-17"))
	if err != nil {
		t.Fatalf("Timeline() failed: %v", err)
	}
	if len(series.Days) != 10 {
		t.Fatalf("days = %v, want 10 trading days", series.Days)
	}
	for i, v := range series.Portfolio {
		if v != 11000 {
			t.Errorf("portfolio[%d] = %v, want 11000", i, v)
		}
	}
	spy, ok := series.Baselines["SPY"]
	if !ok {
		t.Fatalf("baselines = %v, want SPY present", series.Baselines)
	}
	for i, v := range spy {
		if math.Abs(v-11000) > 1e-9 {
			t.Errorf("SPY[%d] = %v, want 11000", i, v)
		}
	}
	// QQQ has no prices: reported, not fatal.
	if len(series.Skipped) != 1 {
		t.Errorf("skipped = %v, want the QQQ benchmark only", series.Skipped)
	}

	rate := 1 + 0.05/252
	want := 11000.0
	for i, v := range series.FixedDeposit {
		if math.Abs(v-want) > 1e-6 {
			t.Errorf("fixed deposit[%d] = %v, want %v", i, v, want)
		}
		want *= rate
	}
}

func TestTimeline_FlowsBuyBenchmarkUnits(t *testing.T) {
	ledger := timelineLedger(t)
	mustAppend(t, ledger, NewCashMovement(day("2025-01-13"), "top-up", M(1000)))

	provider := newFakeProvider()
	// The benchmark doubles on the deposit day: earlier value rides the move,
	// the deposit buys at the new price.
	provider.add("SPY", day("2025-01-06"), 500, 500, 500, 500, 500, 1000, 1000, 1000, 1000, 1000)
	provider.add("AAPL", day("2025-01-06"), 100, 100, 100, 100, 100, 100, 100, 100, 100, 100)

	series, err := Timeline(context.Background(), ledger, provider, day("2025-01-06"), day("2025-01-17"))
	if err != nil {
		t.Fatalf("Timeline() failed: %v", err)
	}
	if got := series.Portfolio[4]; got != 11000 {
		t.Errorf("portfolio before deposit = %v, want 11000", got)
	}
	if got := series.Portfolio[5]; got != 12000 {
		t.Errorf("portfolio on deposit day = %v, want 12000", got)
	}

	// 11000 buys 22 units at 500. The 1000 deposit buys 1 more at 1000.
	spy := series.Baselines["SPY"]
	if got := spy[4]; math.Abs(got-11000) > 1e-9 {
		t.Errorf("SPY before deposit = %v, want 11000", got)
	}
	for i := 5; i < len(spy); i++ {
		if math.Abs(spy[i]-23000) > 1e-9 {
			t.Errorf("SPY[%d] = %v, want 23000", i, spy[i])
		}
	}

	rate := 1 + 0.05/252
	want := 11000.0
	for i, v := range series.FixedDeposit {
		if i > 0 {
			want *= rate
			if i == 5 {
				want += 1000
			}
		}
		if math.Abs(v-want) > 1e-6 {
			t.Errorf("fixed deposit[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestTimeline_EmptyLedger(t *testing.T) {
	_, err := Timeline(context.Background(), NewLedger(), newFakeProvider(), date.Date{}, date.Date{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Timeline() error = %v, want a validation error", err)
	}
}

func TestTimeline_MissingPrimaryBenchmarkIsFatal(t *testing.T) {
	ledger := timelineLedger(t)
	provider := newFakeProvider()
	provider.add("AAPL", day("2025-01-06"), 100, 100, 100)

	_, err := Timeline(context.Background(), ledger, provider, day("2025-01-06"), day("2025-01-08"))
	var derr *DataUnavailableError
	if !errors.As(err, &derr) {
		t.Fatalf("Timeline() error = %v, want data unavailable", err)
	}
	if derr.Security != "SPY" {
		t.Errorf("failing security = %q, want the primary benchmark", derr.Security)
	}
}
