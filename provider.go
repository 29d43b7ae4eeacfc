package marketwatch

import (
	"context"
	"math"

	"github.com/etnz/marketwatch/date"
)

// PriceProvider delivers daily adjusted close prices for a security.
//
// Implementations return the points they have inside [from, to]: a partially
// covered range is not an error. A security the provider knows nothing about
// yields a DataUnavailableError.
type PriceProvider interface {
	DailySeries(ctx context.Context, security string, from, to date.Date) (*date.History[float64], error)
}

// dailyReturns computes the day-over-day returns of a close series, in
// chronological order. A series of n closes yields n-1 returns.
func dailyReturns(closes *date.History[float64]) []float64 {
	returns := make([]float64, 0, closes.Len())
	prev := 0.0
	first := true
	for _, close := range closes.Values() {
		if !first && prev != 0 {
			returns = append(returns, close/prev-1)
		}
		prev = close
		first = false
	}
	return returns
}

// mean returns the arithmetic mean of xs, 0 for an empty slice.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdev returns the population standard deviation of xs.
func stdev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}
