package marketwatch

import (
	"fmt"
	"io"

	"github.com/etnz/marketwatch/date"
	"github.com/gocarina/gocsv"
)

// holdingRecord is one row of a holdings CSV, the format brokers commonly
// offer as a positions export.
type holdingRecord struct {
	Security  string  `csv:"security"`
	Quantity  float64 `csv:"quantity"`
	CostBasis float64 `csv:"cost_basis"` // per unit
}

// eventRecord is one row of an exported event list, flattened for
// spreadsheets. Only the columns meaningful for the kind are filled. The id
// is a bare number, without the display prefix EventID prints with.
type eventRecord struct {
	ID       int64     `csv:"id"`
	Kind     Kind      `csv:"kind"`
	Date     date.Date `csv:"date"`
	Security string    `csv:"security,omitempty"`
	Units    string    `csv:"units,omitempty"`
	Cost     string    `csv:"cost,omitempty"`
	Amount   string    `csv:"amount,omitempty"`
	Note     string    `csv:"note,omitempty"`
}

// ImportHoldings reads a holdings CSV and appends the matching opening
// events to the ledger: one position initialization per row, plus one cash
// movement for the opening cash when it is not zero. It returns the number
// of events appended. The first error stops the import, rows before it are
// already committed.
func ImportHoldings(ledger *Ledger, r io.Reader, day date.Date, openingCash Money) (int, error) {
	var records []holdingRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return 0, fmt.Errorf("could not parse holdings: %w", err)
	}

	count := 0
	for i, rec := range records {
		ev := NewInitPosition(day, "imported", rec.Security, Q(rec.Quantity), M(rec.CostBasis))
		if _, err := ledger.Append(ev); err != nil {
			return count, fmt.Errorf("holdings row %d (%s): %w", i+1, rec.Security, err)
		}
		count++
	}
	if !openingCash.IsZero() {
		if _, err := ledger.Append(NewCashMovement(day, "opening cash", openingCash)); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// ExportEvents writes the ledger's effective events, corrections resolved, as
// CSV.
func ExportEvents(w io.Writer, ledger *Ledger) error {
	var records []eventRecord
	for ev := range ledger.Effective() {
		rec := eventRecord{ID: int64(ev.ID()), Kind: ev.Kind(), Date: ev.When()}
		switch v := ev.(type) {
		case InitPosition:
			rec.Security = v.Security
			rec.Units = v.Quantity.String()
			rec.Cost = v.CostBasis.Amount()
			rec.Note = v.Note
		case TradeAdd:
			rec.Security = v.Security
			rec.Units = v.Units.String()
			rec.Cost = v.CostBasis.Amount()
			rec.Note = v.Note
		case CashMovement:
			rec.Amount = v.Amount.Amount()
			rec.Note = v.Note
		case GenericTrade:
			rec.Amount = v.PnL.Amount()
			rec.Note = v.Note
		case SetTarget:
			rec.Security = v.Security
			rec.Note = v.Note
		}
		records = append(records, rec)
	}
	return gocsv.Marshal(&records, w)
}
