package marketwatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etnz/marketwatch/date"
)

// day is a shorthand for dates in tests.
func day(s string) date.Date { return date.MustParse(s) }

// mustAppend appends an event and fails the test on a validation error.
func mustAppend(t *testing.T, ledger *Ledger, ev Event) EventID {
	t.Helper()
	id, err := ledger.Append(ev)
	if err != nil {
		t.Fatalf("Append(%v on %s) failed: %v", ev.Kind(), ev.When(), err)
	}
	return id
}

// fakeProvider serves daily series from memory. It honors context
// cancellation so timeout paths can be tested deterministically.
type fakeProvider struct {
	series map[string]*date.History[float64]
	delay  time.Duration
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{series: make(map[string]*date.History[float64])}
}

// add records closes for consecutive weekdays starting at start.
func (f *fakeProvider) add(security string, start date.Date, closes ...float64) {
	h, ok := f.series[security]
	if !ok {
		h = &date.History[float64]{}
		f.series[security] = h
	}
	d := start
	for _, close := range closes {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.Add(1)
		}
		h.Append(d, close)
		d = d.Add(1)
	}
}

func (f *fakeProvider) DailySeries(ctx context.Context, security string, from, to date.Date) (*date.History[float64], error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h, ok := f.series[security]
	if !ok {
		return nil, &DataUnavailableError{Security: security, Err: errors.New("unknown security")}
	}
	sub := h.Between(from, to)
	if sub.Len() == 0 {
		return nil, &DataUnavailableError{Security: security, Err: errors.New("no points in range")}
	}
	return sub, nil
}
