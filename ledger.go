package marketwatch

import (
	"iter"
	"sort"
	"sync"

	"github.com/etnz/marketwatch/date"
)

// Ledger represents the append-only event log of a single portfolio.
//
// Events are immutable once appended. The ledger keeps them in replay order,
// effective date first, append sequence second, so that identical logs always
// fold into identical snapshots. A Ledger is safe for concurrent use: Append
// serializes writers, reads see a committed prefix.
type Ledger struct {
	mu         sync.RWMutex
	events     []Event             // in (date, seq) order
	byID       map[EventID]Event   // index events by id
	superseded map[EventID]EventID // index target id by the correction that superseded it
	nextID     EventID
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		events:     make([]Event, 0),
		byID:       make(map[EventID]Event),
		superseded: make(map[EventID]EventID),
		nextID:     1,
	}
}

// Append validates the event, assigns its id and append sequence, and commits
// it. Validation failures leave the ledger untouched: an invalid event never
// enters the log.
func (l *Ledger) Append(ev Event) (EventID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ev, err := ev.Validate(l)
	if err != nil {
		return 0, err
	}
	id := l.nextID
	ev = ev.identify(id, int64(id))
	l.commit(ev)
	return id, nil
}

// commit inserts an already-identified event. Callers hold the lock or own
// the ledger exclusively.
func (l *Ledger) commit(ev Event) {
	l.events = append(l.events, ev)
	l.byID[ev.ID()] = ev
	if ev.ID() >= l.nextID {
		l.nextID = ev.ID() + 1
	}
	if c, ok := ev.(Correction); ok {
		l.superseded[c.Target] = c.ID()
	}
	l.stableSort()
}

// stableSort restores the (effective date, append sequence) order. The sort
// is stable and sequence numbers are unique, so the order is total.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.events, func(i, j int) bool {
		if c := l.events[i].When().Compare(l.events[j].When()); c != 0 {
			return c < 0
		}
		return l.events[i].Seq() < l.events[j].Seq()
	})
}

// Get returns the event with the given id, or a NotFoundError.
func (l *Ledger) Get(id EventID) (Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.get(id)
}

// get is Get without the lock, for callers that already hold it.
func (l *Ledger) get(id EventID) (Event, error) {
	ev, ok := l.byID[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return ev, nil
}

// SupersededBy reports whether the event with the given id has been
// superseded, and by which correction.
func (l *Ledger) SupersededBy(id EventID) (EventID, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.supersededBy(id)
}

// supersededBy is SupersededBy without the lock.
func (l *Ledger) supersededBy(id EventID) (EventID, bool) {
	by, ok := l.superseded[id]
	return by, ok
}

// Len returns the number of events in the ledger, corrections included.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// committed returns a copy of the event slice. Events themselves are
// immutable, so the copy pins either the pre- or post-state of any
// concurrent append, even though Append re-sorts the live slice in place.
func (l *Ledger) committed() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	events := make([]Event, len(l.events))
	copy(events, l.events)
	return events
}

// Events returns an iterator over events between from and to inclusive, in
// replay order. Zero bounds are open.
func (l *Ledger) Events(from, to date.Date) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, ev := range l.committed() {
			if !from.IsZero() && ev.When().Before(from) {
				continue
			}
			if !to.IsZero() && ev.When().After(to) {
				// The ledger is sorted by date, so it's safe to return.
				return
			}
			if !yield(ev) {
				return
			}
		}
	}
}

// All returns an iterator over every event in replay order.
func (l *Ledger) All() iter.Seq[Event] {
	return l.Events(date.Date{}, date.Date{})
}

// Effective returns an iterator over the events that actually fold into a
// snapshot: superseded events are dropped, corrections are replaced by their
// replacement (if any) at the superseded event's effective date and sequence.
func (l *Ledger) Effective() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		// The whole resolution runs under the read lock; only the finished
		// slice is yielded, so user code may append mid-iteration.
		l.mu.RLock()
		effective := make([]Event, 0, len(l.events))
		for _, ev := range l.events {
			if _, gone := l.superseded[ev.ID()]; gone {
				continue
			}
			c, ok := ev.(Correction)
			if !ok {
				effective = append(effective, ev)
				continue
			}
			if c.Replacement == nil {
				continue
			}
			// The replacement takes the slot of the event it replaces.
			if target, err := l.get(c.Target); err == nil {
				effective = append(effective, c.Replacement.identify(c.ID(), target.Seq()))
			}
		}
		l.mu.RUnlock()
		sort.SliceStable(effective, func(i, j int) bool {
			if c := effective[i].When().Compare(effective[j].When()); c != 0 {
				return c < 0
			}
			return effective[i].Seq() < effective[j].Seq()
		})
		for _, ev := range effective {
			if !yield(ev) {
				return
			}
		}
	}
}

// OldestEventDate returns the date of the earliest event in the ledger, or
// the zero date when the ledger is empty.
func (l *Ledger) OldestEventDate() date.Date {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.events) == 0 {
		return date.Date{}
	}
	return l.events[0].When()
}

// NewestEventDate returns the date of the latest event in the ledger, or the
// zero date when the ledger is empty.
func (l *Ledger) NewestEventDate() date.Date {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.events) == 0 {
		return date.Date{}
	}
	return l.events[len(l.events)-1].When()
}

// Securities returns an iterator over the unique tickers the ledger's
// effective events mention, in ascending order.
func (l *Ledger) Securities() iter.Seq[string] {
	return func(yield func(string) bool) {
		visited := make(map[string]struct{})
		for ev := range l.Effective() {
			var ticker string
			switch v := ev.(type) {
			case InitPosition:
				ticker = v.Security
			case TradeAdd:
				ticker = v.Security
			case SetTarget:
				ticker = v.Security
			default:
				continue
			}
			if ticker == "" {
				continue
			}
			visited[ticker] = struct{}{}
		}
		tickers := make([]string, 0, len(visited))
		for t := range visited {
			tickers = append(tickers, t)
		}
		sort.Strings(tickers)
		for _, t := range tickers {
			if !yield(t) {
				return
			}
		}
	}
}

// BySecurity returns a predicate that filters events by security ticker.
func BySecurity(ticker string) func(Event) bool {
	return func(ev Event) bool {
		switch v := ev.(type) {
		case InitPosition:
			return v.Security == ticker
		case TradeAdd:
			return v.Security == ticker
		case SetTarget:
			return v.Security == ticker
		default:
			return false
		}
	}
}

// ByKind returns a predicate that filters events by kind.
func ByKind(kind Kind) func(Event) bool {
	return func(ev Event) bool { return ev.Kind() == kind }
}

// Filter returns an iterator over events in replay order accepted by any of
// the predicates.
func (l *Ledger) Filter(filters ...func(Event) bool) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, ev := range l.committed() {
			accept := len(filters) == 0
			for _, filter := range filters {
				if filter(ev) {
					accept = true
					break
				}
			}
			if !accept {
				continue
			}
			if !yield(ev) {
				return
			}
		}
	}
}
