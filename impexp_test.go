package marketwatch

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestImportHoldings(t *testing.T) {
	csv := "security,quantity,cost_basis\n" +
		"AAPL,10,150.5\n" +
		"MSFT,5,300\n"
	ledger := NewLedger()

	count, err := ImportHoldings(ledger, strings.NewReader(csv), day("2025-01-02"), M(2000))
	if err != nil {
		t.Fatalf("ImportHoldings() failed: %v", err)
	}
	if count != 3 {
		t.Errorf("appended %d events, want 2 positions and the opening cash", count)
	}

	snap, err := BuildSnapshot(ledger, day("2025-01-02"))
	if err != nil {
		t.Fatalf("BuildSnapshot() failed: %v", err)
	}
	if !snap.Cash.Equal(M(2000)) {
		t.Errorf("cash = %v, want 2000", snap.Cash)
	}
	aapl := snap.Position("AAPL")
	if !aapl.Quantity.Equal(Q(10)) || !aapl.CostBasis.Equal(M(150.5)) {
		t.Errorf("AAPL = %+v, want 10 units at 150.5", aapl)
	}
	msft := snap.Position("MSFT")
	if !msft.Quantity.Equal(Q(5)) || !msft.CostBasis.Equal(M(300)) {
		t.Errorf("MSFT = %+v, want 5 units at 300", msft)
	}
}

func TestImportHoldings_StopsOnBadRow(t *testing.T) {
	csv := "security,quantity,cost_basis\n" +
		"AAPL,10,150\n" +
		"MSFT,-5,300\n"
	ledger := NewLedger()

	count, err := ImportHoldings(ledger, strings.NewReader(csv), day("2025-01-02"), M(0))
	if err == nil {
		t.Fatal("ImportHoldings() accepted a negative quantity")
	}
	if count != 1 || ledger.Len() != 1 {
		t.Errorf("count = %d, len = %d, want the rows before the bad one kept", count, ledger.Len())
	}
}

func TestExportEvents(t *testing.T) {
	ledger := NewLedger()
	mustAppend(t, ledger, NewCashMovement(day("2025-01-02"), "funding", M(10000)))
	mustAppend(t, ledger, NewTradeAdd(day("2025-01-03"), "", "AAPL", Q(10), M(150)))
	bad := mustAppend(t, ledger, NewCashMovement(day("2025-01-06"), "typo", M(999)))
	mustAppend(t, ledger, NewCorrection(day("2025-01-07"), bad, "never happened", nil))

	var buf bytes.Buffer
	if err := ExportEvents(&buf, ledger); err != nil {
		t.Fatalf("ExportEvents() failed: %v", err)
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"id,kind,date,security,units,cost,amount,note",
		"1,cash,2025-01-02,,,,10000,funding",
		"2,trade,2025-01-03,AAPL,10,150,,",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("exported CSV:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}
