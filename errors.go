package marketwatch

import "fmt"

// ValidationError reports an event that was rejected before being appended to
// the ledger.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid event: " + e.Reason }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// OverSellError reports a replay that would drive a position negative. The
// fold stops on the offending event and no snapshot is produced.
type OverSellError struct {
	Security string
	Event    EventID
	Held     Quantity
	Sold     Quantity
}

func (e *OverSellError) Error() string {
	return fmt.Sprintf("event %s sells %s %s but only %s held", e.Event, e.Sold, e.Security, e.Held)
}

// NotFoundError reports a lookup of an event id the ledger does not contain.
type NotFoundError struct {
	ID EventID
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("event %s not found", e.ID) }

// UnknownTargetError reports a correction aimed at an event id the ledger does
// not contain.
type UnknownTargetError struct {
	Target EventID
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("correction targets unknown event %s", e.Target)
}

// AlreadySupersededError reports a correction aimed at an event another
// correction already superseded. Corrections target originals only, never
// chain.
type AlreadySupersededError struct {
	Target EventID
	By     EventID
}

func (e *AlreadySupersededError) Error() string {
	return fmt.Sprintf("event %s already superseded by %s", e.Target, e.By)
}

// DataUnavailableError reports a price series a provider could not deliver.
type DataUnavailableError struct {
	Security string
	Err      error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("no price data for %s: %v", e.Security, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// InsufficientHistoryError reports an analytics window with too few
// observations to be meaningful.
type InsufficientHistoryError struct {
	Security string
	Got      int
	Want     int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("%s: %d observation(s), need at least %d", e.Security, e.Got, e.Want)
}
