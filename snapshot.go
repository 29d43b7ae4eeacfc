package marketwatch

import (
	"fmt"
	"sort"

	"github.com/etnz/marketwatch/date"
)

// Position is a holding reconstructed by replay.
type Position struct {
	Quantity  Quantity // number of units held
	CostBasis Money    // weighted-average acquisition cost per unit
}

// Anomaly records a suspicious but tolerated fact met during replay, such as
// a position initialized twice.
type Anomaly struct {
	Event   EventID
	Message string
}

// Snapshot is the state of the portfolio at a point in time. It is the value
// of a pure fold over the ledger's effective events: rebuilding a snapshot
// from the same events always yields the same value, whatever the wall clock
// says.
type Snapshot struct {
	On        date.Date
	Positions map[string]Position
	Cash      Money
	Reserved  Money // capital tied up by generic trades still open on On
	Config    Config
	Anomalies []Anomaly
}

// BuildSnapshot replays the ledger up to and including asOf and returns the
// resulting snapshot. A sell that would drive a position negative stops the
// whole replay with an OverSellError: no partial snapshot is returned.
func BuildSnapshot(ledger *Ledger, asOf date.Date) (*Snapshot, error) {
	s := &Snapshot{
		On:        asOf,
		Positions: make(map[string]Position),
		Config:    DefaultConfig(),
	}

	for ev := range ledger.Effective() {
		if ev.When().After(asOf) {
			break
		}
		if err := s.fold(ev); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// fold applies one event to the snapshot.
func (s *Snapshot) fold(ev Event) error {
	switch v := ev.(type) {
	case InitPosition:
		if _, seen := s.Positions[v.Security]; seen {
			// A second init for a known security reads as an addition,
			// flagged so the owner can append a correction.
			s.Anomalies = append(s.Anomalies, Anomaly{
				Event:   v.ID(),
				Message: fmt.Sprintf("position %s initialized twice, folded as a trade", v.Security),
			})
			return s.trade(v.Security, v.Quantity, v.CostBasis, v.ID())
		}
		s.Positions[v.Security] = Position{Quantity: v.Quantity, CostBasis: v.CostBasis}

	case TradeAdd:
		return s.trade(v.Security, v.Units, v.CostBasis, v.ID())

	case CashMovement:
		s.Cash = s.Cash.Add(v.Amount)

	case GenericTrade:
		if v.CloseDate.After(s.On) {
			// Still open: the reserved capital is informational only.
			s.Reserved = s.Reserved.Add(v.CashNeeded)
			return nil
		}
		s.Cash = s.Cash.Add(v.PnL)

	case SetTarget:
		s.Config.apply(v)
	}
	return nil
}

// trade applies a signed position change. Buys recompute the weighted-average
// cost basis; sells leave it untouched.
func (s *Snapshot) trade(security string, units Quantity, cost Money, source EventID) error {
	pos := s.Positions[security]
	if units.IsPositive() {
		total := pos.CostBasis.Mul(pos.Quantity).Add(cost.Mul(units))
		pos.Quantity = pos.Quantity.Add(units)
		pos.CostBasis = total.Div(pos.Quantity)
		s.Positions[security] = pos
		return nil
	}
	sold := units.Neg()
	if pos.Quantity.LessThan(sold) {
		return &OverSellError{Security: security, Event: source, Held: pos.Quantity, Sold: sold}
	}
	pos.Quantity = pos.Quantity.Sub(sold)
	if pos.Quantity.IsZero() {
		delete(s.Positions, security)
		return nil
	}
	s.Positions[security] = pos
	return nil
}

// Position returns the holding for a security. The zero Position means the
// security is not held.
func (s *Snapshot) Position(security string) Position {
	return s.Positions[security]
}

// Securities returns the held tickers in ascending order.
func (s *Snapshot) Securities() []string {
	tickers := make([]string, 0, len(s.Positions))
	for t := range s.Positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// CostValue returns the total acquisition cost of all positions.
func (s *Snapshot) CostValue() Money {
	var total Money
	for _, pos := range s.Positions {
		total = total.Add(pos.CostBasis.Mul(pos.Quantity))
	}
	return total
}

// MarketValue returns cash plus the value of all positions at the given
// prices. Securities missing from the price map contribute their cost value,
// the best estimate available.
func (s *Snapshot) MarketValue(prices map[string]float64) float64 {
	total := s.Cash.AsFloat()
	for ticker, pos := range s.Positions {
		price, ok := prices[ticker]
		if !ok {
			total += pos.CostBasis.Mul(pos.Quantity).AsFloat()
			continue
		}
		total += pos.Quantity.AsFloat() * price
	}
	return total
}

// Weight returns the share of portfolio market value held in one security.
// It returns 0 when the portfolio is worthless.
func (s *Snapshot) Weight(security string, prices map[string]float64) float64 {
	total := s.MarketValue(prices)
	if total <= 0 {
		return 0
	}
	pos, ok := s.Positions[security]
	if !ok {
		return 0
	}
	price, ok := prices[security]
	if !ok {
		return pos.CostBasis.Mul(pos.Quantity).AsFloat() / total
	}
	return pos.Quantity.AsFloat() * price / total
}
