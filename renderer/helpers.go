package renderer

import (
	"fmt"

	"github.com/etnz/marketwatch"
)

// moneyOrDash formats an optional amount, "-" when unset.
func moneyOrDash(m *marketwatch.Money, currency string) string {
	if m == nil {
		return "-"
	}
	return m.In(currency).String()
}

// percentOrDash formats an optional fraction as a percentage, "-" when unset.
func percentOrDash(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", 100**f)
}

// signedPercent formats a fraction as a signed percentage.
func signedPercent(f float64) string {
	return fmt.Sprintf("%+.2f%%", 100*f)
}
