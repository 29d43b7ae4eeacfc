package renderer

import (
	"fmt"

	"github.com/etnz/marketwatch"
)

// Event renders an event to a one-line string.
func Event(ev marketwatch.Event) string {
	switch v := ev.(type) {
	case marketwatch.InitPosition:
		return fmt.Sprintf("Opened %s of %s at %s", v.Quantity, v.Security, v.CostBasis.Amount())
	case marketwatch.TradeAdd:
		if v.Units.IsNegative() {
			return fmt.Sprintf("Sold %s of %s", v.Units.Neg(), v.Security)
		}
		return fmt.Sprintf("Bought %s of %s at %s", v.Units, v.Security, v.CostBasis.Amount())
	case marketwatch.CashMovement:
		if v.Amount.IsNegative() {
			return fmt.Sprintf("Withdrew %s", v.Amount.Neg().Amount())
		}
		return fmt.Sprintf("Deposited %s", v.Amount.Amount())
	case marketwatch.GenericTrade:
		return fmt.Sprintf("Committed %s for %d days, P&L %s on %s",
			v.CashNeeded.Amount(), v.Duration, v.PnL.Amount(), v.CloseDate)
	case marketwatch.SetTarget:
		if v.Security == "" {
			return "Updated portfolio targets"
		}
		return fmt.Sprintf("Updated targets for %s", v.Security)
	case marketwatch.Correction:
		if v.Replacement == nil {
			return fmt.Sprintf("Voided %s: %s", v.Target, v.Reason)
		}
		return fmt.Sprintf("Replaced %s: %s", v.Target, v.Reason)
	default:
		return string(ev.Kind())
	}
}
