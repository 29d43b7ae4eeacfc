package renderer

import (
	"sort"

	"github.com/etnz/marketwatch"
	"github.com/etnz/marketwatch/date"
)

// Status is the view behind the status report: the reconstructed portfolio
// with the day's prices applied. Amounts keep the exact decimal types so the
// templates can rely on their formatting.
type Status struct {
	Date         date.Date
	BaseCurrency string
	TotalValue   marketwatch.Money
	Cash         marketwatch.Money
	Reserved     marketwatch.Money
	Positions    []StatusPosition
	Targets      []StatusTarget
	Anomalies    []string
}

// StatusPosition is one held security. A security without a price is valued
// at cost.
type StatusPosition struct {
	Ticker      string
	Quantity    marketwatch.Quantity
	CostBasis   marketwatch.Money
	LastPrice   marketwatch.Money
	MarketValue marketwatch.Money
	Weight      float64 // percent of total value
}

// StatusTarget is one configured price target. Unset levels render as "-".
type StatusTarget struct {
	Ticker    string
	Buy       string
	Sell      string
	Intrinsic string
	MaxWeight string
	Note      string
}

// NewStatus builds the status view from a snapshot and the last known price
// per held security.
func NewStatus(s *marketwatch.Snapshot, prices map[string]float64) *Status {
	cur := s.Config.BaseCurrency
	v := &Status{
		Date:         s.On,
		BaseCurrency: cur,
		TotalValue:   marketwatch.M(s.MarketValue(prices)).In(cur),
		Cash:         s.Cash.In(cur),
		Reserved:     s.Reserved.In(cur),
	}

	for _, ticker := range s.Securities() {
		pos := s.Position(ticker)
		price := pos.CostBasis
		if p, ok := prices[ticker]; ok && p > 0 {
			price = marketwatch.M(p)
		}
		v.Positions = append(v.Positions, StatusPosition{
			Ticker:      ticker,
			Quantity:    pos.Quantity,
			CostBasis:   pos.CostBasis.In(cur),
			LastPrice:   price.In(cur),
			MarketValue: price.Mul(pos.Quantity).In(cur),
			Weight:      100 * s.Weight(ticker, prices),
		})
	}

	tickers := make([]string, 0, len(s.Config.Targets))
	for ticker := range s.Config.Targets {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	for _, ticker := range tickers {
		target := s.Config.Targets[ticker]
		v.Targets = append(v.Targets, StatusTarget{
			Ticker:    ticker,
			Buy:       moneyOrDash(target.Buy, cur),
			Sell:      moneyOrDash(target.Sell, cur),
			Intrinsic: moneyOrDash(target.Intrinsic, cur),
			MaxWeight: percentOrDash(target.MaxWeight),
			Note:      target.Note,
		})
	}

	for _, a := range s.Anomalies {
		v.Anomalies = append(v.Anomalies, a.Message)
	}
	return v
}
