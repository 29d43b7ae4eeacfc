package marketwatch

import (
	"encoding/json"
	"fmt"

	"github.com/etnz/marketwatch/date"
)

// Kind is a typed string identifying an event in the ledger.
type Kind string

// Event kinds used on the wire.
const (
	KindInit    Kind = "init"
	KindTrade   Kind = "trade"
	KindCash    Kind = "cash"
	KindGeneric Kind = "generic"
	KindTarget  Kind = "target"
	KindCorrect Kind = "correct"
)

// EventID identifies an event in the ledger. Ids are assigned by Append,
// monotonically, and are never reused.
type EventID int64

func (id EventID) String() string { return fmt.Sprintf("#%d", int64(id)) }

// Event defines the common interface for all facts recorded in the ledger.
// Events are immutable once appended; mistakes are fixed by appending a
// Correction, never by editing history.
type Event interface {
	Kind() Kind     // Kind returns the wire discriminator of the event.
	When() date.Date // When returns the effective date of the event.
	ID() EventID    // ID returns the ledger-assigned id, 0 before Append.
	Seq() int64     // Seq returns the append sequence, 0 before Append.
	Equal(Event) bool
	Validate(ledger *Ledger) (Event, error)

	// Rationale returns the free-form note attached to the event, "" if none.
	Rationale() string

	// identify returns a copy carrying the ledger-assigned identity.
	identify(id EventID, seq int64) Event
}

type header struct {
	EvID   EventID   `json:"id"`
	EvKind Kind      `json:"kind"`
	Date   date.Date `json:"date"`
	EvSeq  int64     `json:"seq"`
	Note   string    `json:"note,omitempty"` // Note provides an optional rationale for the event.
}

func (h header) Kind() Kind      { return h.EvKind }
func (h header) When() date.Date { return h.Date }
func (h header) ID() EventID     { return h.EvID }
func (h header) Seq() int64      { return h.EvSeq }

// Rationale returns the note associated with the event.
func (h header) Rationale() string { return h.Note }

func (h header) withIdentity(id EventID, seq int64) header {
	h.EvID = id
	h.EvSeq = seq
	return h
}

// MarshalJSON implements the json.Marshaler interface for header.
// Note is appended by each event type after its payload, so that lines read
// id, kind, date, seq, payload, note.
func (h header) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", h.EvID)
	w.Append("kind", h.EvKind)
	w.Append("date", h.Date)
	w.Append("seq", h.EvSeq)
	return w.MarshalJSON()
}

// Validate checks the header fields. It sets the date to today if it's zero.
// It's meant to be embedded in other event validation methods.
func (h *header) Validate() {
	if h.Date.IsZero() {
		h.Date = date.Today()
	}
}

// --- InitPosition ---

// InitPosition declares an opening position: a quantity of a security held
// before the ledger started tracking it, with its acquisition cost per unit.
type InitPosition struct {
	header
	Security  string   // Security is the ticker symbol of the position.
	Quantity  Quantity // Quantity is the number of units held.
	CostBasis Money    // CostBasis is the acquisition cost per unit.
}

// NewInitPosition creates a new InitPosition event.
func NewInitPosition(day date.Date, note, security string, quantity Quantity, costBasis Money) InitPosition {
	return InitPosition{
		header:    header{EvKind: KindInit, Date: day, Note: note},
		Security:  security,
		Quantity:  quantity,
		CostBasis: costBasis,
	}
}

// MarshalJSON implements the json.Marshaler interface for InitPosition.
func (t InitPosition) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.header)
	w.Append("security", t.Security)
	w.Append("quantity", t.Quantity)
	w.Append("cost", t.CostBasis)
	w.Optional("note", t.Note)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for InitPosition.
func (t *InitPosition) UnmarshalJSON(data []byte) error {
	var temp struct {
		header
		Security  string   `json:"security"`
		Quantity  Quantity `json:"quantity"`
		CostBasis Money    `json:"cost"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.header = temp.header
	t.Security = temp.Security
	t.Quantity = temp.Quantity
	t.CostBasis = temp.CostBasis
	return nil
}

func (t InitPosition) Equal(other Event) bool {
	o, ok := other.(InitPosition)
	return ok && t.header == o.header && t.Security == o.Security &&
		t.Quantity.Equal(o.Quantity) && t.CostBasis.Equal(o.CostBasis)
}

func (t InitPosition) identify(id EventID, seq int64) Event {
	t.header = t.header.withIdentity(id, seq)
	return t
}

// Validate checks the InitPosition event's fields. It ensures the quantity is
// positive and the cost basis is not negative.
func (t InitPosition) Validate(ledger *Ledger) (Event, error) {
	t.header.Validate()
	if t.Security == "" {
		return t, validationErrorf("init position security is missing")
	}
	if !t.Quantity.IsPositive() {
		return t, validationErrorf("init position quantity must be positive, got %s", t.Quantity)
	}
	if t.CostBasis.IsNegative() {
		return t, validationErrorf("init position cost basis cannot be negative, got %s", t.CostBasis)
	}
	return t, nil
}

// --- TradeAdd ---

// TradeAdd records units added to (positive) or removed from (negative) a
// position. For buys CostBasis is the per-unit cost and the position's
// weighted-average cost is recomputed; for sells the cost basis is untouched.
type TradeAdd struct {
	header
	Security  string   // Security is the ticker symbol of the position.
	Units     Quantity // Units is the signed number of units, negative to sell.
	CostBasis Money    // CostBasis is the per-unit cost, required for buys.
}

// NewTradeAdd creates a new TradeAdd event.
func NewTradeAdd(day date.Date, note, security string, units Quantity, costBasis Money) TradeAdd {
	return TradeAdd{
		header:    header{EvKind: KindTrade, Date: day, Note: note},
		Security:  security,
		Units:     units,
		CostBasis: costBasis,
	}
}

// MarshalJSON implements the json.Marshaler interface for TradeAdd.
func (t TradeAdd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.header)
	w.Append("security", t.Security)
	w.Append("units", t.Units)
	w.Optional("cost", t.CostBasis)
	w.Optional("note", t.Note)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for TradeAdd.
func (t *TradeAdd) UnmarshalJSON(data []byte) error {
	var temp struct {
		header
		Security  string   `json:"security"`
		Units     Quantity `json:"units"`
		CostBasis Money    `json:"cost"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.header = temp.header
	t.Security = temp.Security
	t.Units = temp.Units
	t.CostBasis = temp.CostBasis
	return nil
}

func (t TradeAdd) Equal(other Event) bool {
	o, ok := other.(TradeAdd)
	return ok && t.header == o.header && t.Security == o.Security &&
		t.Units.Equal(o.Units) && t.CostBasis.Equal(o.CostBasis)
}

func (t TradeAdd) identify(id EventID, seq int64) Event {
	t.header = t.header.withIdentity(id, seq)
	return t
}

// Validate checks the TradeAdd event's fields. Units must be non-zero; buys
// must carry a positive per-unit cost. Oversells are caught at replay, not
// here, because a later correction may change the position history.
func (t TradeAdd) Validate(ledger *Ledger) (Event, error) {
	t.header.Validate()
	if t.Security == "" {
		return t, validationErrorf("trade security is missing")
	}
	if t.Units.IsZero() {
		return t, validationErrorf("trade units cannot be zero")
	}
	if t.Units.IsPositive() && !t.CostBasis.IsPositive() {
		return t, validationErrorf("buy of %s requires a positive per-unit cost, got %s", t.Security, t.CostBasis)
	}
	if t.CostBasis.IsNegative() {
		return t, validationErrorf("trade cost basis cannot be negative, got %s", t.CostBasis)
	}
	return t, nil
}

// --- CashMovement ---

// CashMovement records an external cash flow: positive for a deposit,
// negative for a withdrawal or fee.
type CashMovement struct {
	header
	Amount Money // Amount is the signed cash delta.
}

// NewCashMovement creates a new CashMovement event.
func NewCashMovement(day date.Date, note string, amount Money) CashMovement {
	return CashMovement{
		header: header{EvKind: KindCash, Date: day, Note: note},
		Amount: amount,
	}
}

// MarshalJSON implements the json.Marshaler interface for CashMovement.
func (t CashMovement) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.header)
	w.Append("amount", t.Amount)
	w.Optional("note", t.Note)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for CashMovement.
func (t *CashMovement) UnmarshalJSON(data []byte) error {
	var temp struct {
		header
		Amount Money `json:"amount"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.header = temp.header
	t.Amount = temp.Amount
	return nil
}

func (t CashMovement) Equal(other Event) bool {
	o, ok := other.(CashMovement)
	return ok && t.header == o.header && t.Amount.Equal(o.Amount)
}

func (t CashMovement) identify(id EventID, seq int64) Event {
	t.header = t.header.withIdentity(id, seq)
	return t
}

// Validate checks the CashMovement event's fields.
func (t CashMovement) Validate(ledger *Ledger) (Event, error) {
	t.header.Validate()
	if t.Amount.IsZero() {
		return t, validationErrorf("cash movement amount cannot be zero")
	}
	return t, nil
}

// --- GenericTrade ---

// GenericTrade records a strategy trade that ties up cash for a while and
// settles to a profit or loss, such as an option spread. The cash needed and
// duration are analytics metadata; only the settled profit or loss moves cash,
// from its close date onward.
type GenericTrade struct {
	header
	CashNeeded Money     // CashNeeded is the capital reserved by the trade.
	Duration   int       // Duration is the expected life of the trade in days.
	PnL        Money     // PnL is the signed settlement amount.
	CloseDate  date.Date // CloseDate is the day the PnL settles.
}

// NewGenericTrade creates a new GenericTrade event.
func NewGenericTrade(day date.Date, note string, cashNeeded Money, duration int, pnl Money, closeDate date.Date) GenericTrade {
	return GenericTrade{
		header:     header{EvKind: KindGeneric, Date: day, Note: note},
		CashNeeded: cashNeeded,
		Duration:   duration,
		PnL:        pnl,
		CloseDate:  closeDate,
	}
}

// MarshalJSON implements the json.Marshaler interface for GenericTrade.
func (t GenericTrade) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.header)
	w.Append("cash_needed", t.CashNeeded)
	w.Append("duration", t.Duration)
	w.Append("pnl", t.PnL)
	w.Append("close_date", t.CloseDate)
	w.Optional("note", t.Note)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for GenericTrade.
func (t *GenericTrade) UnmarshalJSON(data []byte) error {
	var temp struct {
		header
		CashNeeded Money     `json:"cash_needed"`
		Duration   int       `json:"duration"`
		PnL        Money     `json:"pnl"`
		CloseDate  date.Date `json:"close_date"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.header = temp.header
	t.CashNeeded = temp.CashNeeded
	t.Duration = temp.Duration
	t.PnL = temp.PnL
	t.CloseDate = temp.CloseDate
	return nil
}

func (t GenericTrade) Equal(other Event) bool {
	o, ok := other.(GenericTrade)
	return ok && t.header == o.header && t.CashNeeded.Equal(o.CashNeeded) &&
		t.Duration == o.Duration && t.PnL.Equal(o.PnL) && t.CloseDate == o.CloseDate
}

func (t GenericTrade) identify(id EventID, seq int64) Event {
	t.header = t.header.withIdentity(id, seq)
	return t
}

// Validate checks the GenericTrade event's fields. The close date defaults to
// the open date plus the duration.
func (t GenericTrade) Validate(ledger *Ledger) (Event, error) {
	t.header.Validate()
	if !t.CashNeeded.IsPositive() {
		return t, validationErrorf("generic trade cash needed must be positive, got %s", t.CashNeeded)
	}
	if t.Duration <= 0 {
		return t, validationErrorf("generic trade duration must be positive, got %d", t.Duration)
	}
	if t.CloseDate.IsZero() {
		t.CloseDate = t.Date.Add(t.Duration)
	}
	if t.CloseDate.Before(t.Date) {
		return t, validationErrorf("generic trade close date %s is before open date %s", t.CloseDate, t.Date)
	}
	return t, nil
}

// --- SetTarget ---

// SetTarget records target levels for a security, or portfolio-level settings
// when the security is empty. Each field is independently optional: an unset
// field leaves the previous value untouched, so targets accrete over time.
type SetTarget struct {
	header
	Security  string   // Security is the ticker symbol, empty for portfolio-level settings.
	Buy       *Money   // Buy is the price at or below which the security is a buy.
	Sell      *Money   // Sell is the price at or above which the security is a sell.
	Intrinsic *Money   // Intrinsic is the estimated intrinsic value per unit.
	MaxWeight *float64 // MaxWeight caps the security's share of portfolio value, as a fraction.
	FDRate    *float64 // FDRate is the annual fixed-deposit baseline rate, portfolio-level.
}

// NewSetTarget creates a new SetTarget event. Nil fields are left untouched
// when the event folds.
func NewSetTarget(day date.Date, note, security string) SetTarget {
	return SetTarget{
		header:   header{EvKind: KindTarget, Date: day, Note: note},
		Security: security,
	}
}

// MarshalJSON implements the json.Marshaler interface for SetTarget.
func (t SetTarget) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.header)
	w.Optional("security", t.Security)
	w.Optional("buy", t.Buy)
	w.Optional("sell", t.Sell)
	w.Optional("intrinsic", t.Intrinsic)
	w.Optional("max_weight", t.MaxWeight)
	w.Optional("fd_rate", t.FDRate)
	w.Optional("note", t.Note)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for SetTarget.
func (t *SetTarget) UnmarshalJSON(data []byte) error {
	var temp struct {
		header
		Security  string   `json:"security"`
		Buy       *Money   `json:"buy"`
		Sell      *Money   `json:"sell"`
		Intrinsic *Money   `json:"intrinsic"`
		MaxWeight *float64 `json:"max_weight"`
		FDRate    *float64 `json:"fd_rate"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.header = temp.header
	t.Security = temp.Security
	t.Buy = temp.Buy
	t.Sell = temp.Sell
	t.Intrinsic = temp.Intrinsic
	t.MaxWeight = temp.MaxWeight
	t.FDRate = temp.FDRate
	return nil
}

func (t SetTarget) Equal(other Event) bool {
	o, ok := other.(SetTarget)
	return ok && t.header == o.header && t.Security == o.Security &&
		eqMoneyPtr(t.Buy, o.Buy) && eqMoneyPtr(t.Sell, o.Sell) && eqMoneyPtr(t.Intrinsic, o.Intrinsic) &&
		eqFloatPtr(t.MaxWeight, o.MaxWeight) && eqFloatPtr(t.FDRate, o.FDRate)
}

func eqMoneyPtr(a, b *Money) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func eqFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (t SetTarget) identify(id EventID, seq int64) Event {
	t.header = t.header.withIdentity(id, seq)
	return t
}

// Validate checks the SetTarget event's fields.
func (t SetTarget) Validate(ledger *Ledger) (Event, error) {
	t.header.Validate()
	if t.Buy == nil && t.Sell == nil && t.Intrinsic == nil && t.MaxWeight == nil && t.FDRate == nil {
		return t, validationErrorf("target event sets nothing")
	}
	if t.Security == "" && (t.Buy != nil || t.Sell != nil || t.Intrinsic != nil || t.MaxWeight != nil) {
		return t, validationErrorf("target levels require a security")
	}
	if t.MaxWeight != nil && (*t.MaxWeight <= 0 || *t.MaxWeight > 1) {
		return t, validationErrorf("max weight must be in (0, 1], got %v", *t.MaxWeight)
	}
	if t.FDRate != nil && *t.FDRate < 0 {
		return t, validationErrorf("fd rate cannot be negative, got %v", *t.FDRate)
	}
	return t, nil
}

// --- Correction ---

// Correction supersedes an earlier event. Without a replacement the target is
// nullified; with one, the replacement folds in the target's place, at the
// target's effective date. Corrections target originals only: correcting a
// correction is rejected, re-correct the original id instead.
type Correction struct {
	header
	Target      EventID // Target is the id of the event being superseded.
	Reason      string  // Reason documents why the target was wrong.
	Replacement Event   // Replacement optionally takes the target's place.
}

// NewCorrection creates a new Correction event. A nil replacement nullifies
// the target.
func NewCorrection(day date.Date, target EventID, reason string, replacement Event) Correction {
	return Correction{
		header:      header{EvKind: KindCorrect, Date: day},
		Target:      target,
		Reason:      reason,
		Replacement: replacement,
	}
}

// MarshalJSON implements the json.Marshaler interface for Correction.
func (t Correction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.header)
	w.Append("supersedes", t.Target)
	w.Append("reason", t.Reason)
	if t.Replacement != nil {
		w.Append("replacement", t.Replacement)
	}
	w.Optional("note", t.Note)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Correction.
// The replacement, when present, is decoded by its own kind discriminator.
func (t *Correction) UnmarshalJSON(data []byte) error {
	var temp struct {
		header
		Target      EventID         `json:"supersedes"`
		Reason      string          `json:"reason"`
		Replacement json.RawMessage `json:"replacement"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.header = temp.header
	t.Target = temp.Target
	t.Reason = temp.Reason
	t.Replacement = nil
	if len(temp.Replacement) > 0 {
		ev, err := DecodeEvent(temp.Replacement)
		if err != nil {
			return fmt.Errorf("invalid replacement in correction: %w", err)
		}
		t.Replacement = ev
	}
	return nil
}

func (t Correction) Equal(other Event) bool {
	o, ok := other.(Correction)
	if !ok || t.header != o.header || t.Target != o.Target || t.Reason != o.Reason {
		return false
	}
	if t.Replacement == nil || o.Replacement == nil {
		return t.Replacement == o.Replacement
	}
	return t.Replacement.Equal(o.Replacement)
}

func (t Correction) identify(id EventID, seq int64) Event {
	t.header = t.header.withIdentity(id, seq)
	return t
}

// Validate checks the Correction event's fields. It ensures the target
// exists, is not itself a correction, and has not been superseded already.
func (t Correction) Validate(ledger *Ledger) (Event, error) {
	t.header.Validate()
	if t.Reason == "" {
		return t, validationErrorf("correction reason is missing")
	}
	// Append holds the write lock during validation, use the lock-free reads.
	target, err := ledger.get(t.Target)
	if err != nil {
		return t, &UnknownTargetError{Target: t.Target}
	}
	if target.Kind() == KindCorrect {
		return t, validationErrorf("cannot correct correction %s, correct the original event instead", t.Target)
	}
	if by, superseded := ledger.supersededBy(t.Target); superseded {
		return t, &AlreadySupersededError{Target: t.Target, By: by}
	}
	if t.Replacement != nil {
		if t.Replacement.Kind() == KindCorrect {
			return t, validationErrorf("replacement cannot be a correction")
		}
		rep, err := t.Replacement.Validate(ledger)
		if err != nil {
			return t, fmt.Errorf("invalid replacement: %w", err)
		}
		// The replacement folds at the target's effective date, whatever
		// date it was written with.
		t.Replacement = redate(rep, target.When())
	}
	return t, nil
}

// redate returns a copy of the event moved to the given effective date.
func redate(ev Event, day date.Date) Event {
	switch v := ev.(type) {
	case InitPosition:
		v.Date = day
		return v
	case TradeAdd:
		v.Date = day
		return v
	case CashMovement:
		v.Date = day
		return v
	case GenericTrade:
		v.Date = day
		return v
	case SetTarget:
		v.Date = day
		return v
	default:
		return ev
	}
}
