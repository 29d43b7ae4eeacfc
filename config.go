package marketwatch

// Target holds the desired levels for one security. Nil fields were never
// set. Targets accrete: each SetTarget event merges its non-nil fields over
// the previous state, latest event wins field by field.
type Target struct {
	Buy       *Money   // buy at or below
	Sell      *Money   // sell at or above
	Intrinsic *Money   // estimated intrinsic value per unit
	MaxWeight *float64 // cap on the security's share of portfolio value
	Note      string
}

// Config is the portfolio configuration as reconstructed by replay. It is
// never read from a file: changing it means appending an event.
type Config struct {
	BaseCurrency     string
	Baselines        []string // benchmark tickers, first one drives the trading calendar
	FDRate           float64  // annual fixed-deposit baseline rate
	DefaultMaxWeight float64  // max weight for securities without an explicit target
	Targets          map[string]Target
}

// DefaultConfig returns the configuration of a portfolio whose ledger sets
// nothing.
func DefaultConfig() Config {
	return Config{
		BaseCurrency:     "USD",
		Baselines:        []string{"SPY", "QQQ"},
		FDRate:           0.05,
		DefaultMaxWeight: 0.05,
		Targets:          make(map[string]Target),
	}
}

// Baseline returns the primary benchmark ticker.
func (c Config) Baseline() string { return c.Baselines[0] }

// Target returns the target for a security, and whether one was ever set.
func (c Config) Target(security string) (Target, bool) {
	t, ok := c.Targets[security]
	return t, ok
}

// MaxWeightFor returns the max weight cap for a security, falling back to the
// portfolio default when the security has no explicit cap.
func (c Config) MaxWeightFor(security string) float64 {
	if t, ok := c.Targets[security]; ok && t.MaxWeight != nil {
		return *t.MaxWeight
	}
	return c.DefaultMaxWeight
}

// apply merges one SetTarget event into the configuration.
func (c *Config) apply(ev SetTarget) {
	if ev.FDRate != nil {
		c.FDRate = *ev.FDRate
	}
	if ev.Security == "" {
		return
	}
	t := c.Targets[ev.Security]
	if ev.Buy != nil {
		t.Buy = ev.Buy
	}
	if ev.Sell != nil {
		t.Sell = ev.Sell
	}
	if ev.Intrinsic != nil {
		t.Intrinsic = ev.Intrinsic
	}
	if ev.MaxWeight != nil {
		t.MaxWeight = ev.MaxWeight
	}
	if ev.Note != "" {
		t.Note = ev.Note
	}
	c.Targets[ev.Security] = t
}
