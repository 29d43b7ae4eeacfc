package date

import (
	"iter"
	"slices"
)

// History stores a chronological series of values, each associated with a
// specific date. Dates are unique and the series is always sorted, so price
// series read from providers in any order end up canonical.
type History[T any] struct {
	days   []Date
	values []T
}

// Len returns the number of points in the history.
func (h *History[T]) Len() int { return len(h.days) }

// Append adds a point to the history. An existing value at that date is
// overwritten: the last data wins.
func (h *History[T]) Append(on Date, v T) *History[T] {
	i, found := slices.BinarySearchFunc(h.days, on, Date.Compare)
	if found {
		h.values[i] = v
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// Get returns the value exactly at 'day', or the zero value and false.
func (h *History[T]) Get(day Date) (T, bool) {
	i, found := slices.BinarySearchFunc(h.days, day, Date.Compare)
	if found {
		return h.values[i], true
	}
	var zero T
	return zero, false
}

// AsOf returns the value on a given day, or the most recent value before it.
func (h *History[T]) AsOf(day Date) (T, bool) {
	i, found := slices.BinarySearchFunc(h.days, day, Date.Compare)
	if found {
		return h.values[i], true
	}
	if i == 0 {
		var zero T
		return zero, false
	}
	return h.values[i-1], true
}

// First returns the earliest date and value, or zero values on an empty history.
func (h *History[T]) First() (Date, T) {
	if len(h.days) == 0 {
		var zero T
		return Date{}, zero
	}
	return h.days[0], h.values[0]
}

// Latest returns the latest date and value, or zero values on an empty history.
func (h *History[T]) Latest() (Date, T) {
	last := len(h.days) - 1
	if last < 0 {
		var zero T
		return Date{}, zero
	}
	return h.days[last], h.values[last]
}

// Values returns an iterator over all date/value pairs in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// Days returns an iterator over the dates of the history, in order.
func (h *History[T]) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for _, on := range h.days {
			if !yield(on) {
				return
			}
		}
	}
}

// Between returns a copy of the history restricted to [from, to], boundaries
// included.
func (h *History[T]) Between(from, to Date) *History[T] {
	out := &History[T]{}
	for i, on := range h.days {
		if on.Before(from) || on.After(to) {
			continue
		}
		out.days = append(out.days, on)
		out.values = append(out.values, h.values[i])
	}
	return out
}
