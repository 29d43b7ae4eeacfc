package marketwatch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLedger_MissingFileIsEmpty(t *testing.T) {
	ledger, err := LoadLedger(t.TempDir())
	if err != nil {
		t.Fatalf("LoadLedger() failed: %v", err)
	}
	if ledger.Len() != 0 {
		t.Errorf("len = %d, want an empty ledger", ledger.Len())
	}
}

func TestSaveLedger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ledger := NewLedger()
	mustAppend(t, ledger, NewCashMovement(day("2025-01-02"), "funding", M(10000)))
	mustAppend(t, ledger, NewTradeAdd(day("2025-01-03"), "", "AAPL", Q(10), M(150)))

	if err := SaveLedger(dir, ledger); err != nil {
		t.Fatalf("SaveLedger() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, LedgerFileName)); err != nil {
		t.Fatalf("ledger file missing: %v", err)
	}

	loaded, err := LoadLedger(dir)
	if err != nil {
		t.Fatalf("LoadLedger() failed: %v", err)
	}
	if loaded.Len() != ledger.Len() {
		t.Fatalf("len = %d, want %d", loaded.Len(), ledger.Len())
	}
	for ev := range ledger.All() {
		got, err := loaded.Get(ev.ID())
		if err != nil {
			t.Fatalf("event %v lost: %v", ev.ID(), err)
		}
		if !got.Equal(ev) {
			t.Errorf("event %v = %+v, want %+v", ev.ID(), got, ev)
		}
	}
}

func TestUpdateLedger_AppendsAndPersists(t *testing.T) {
	dir := t.TempDir()
	err := UpdateLedger(dir, func(ledger *Ledger) error {
		_, err := ledger.Append(NewCashMovement(day("2025-01-02"), "funding", M(500)))
		return err
	})
	if err != nil {
		t.Fatalf("UpdateLedger() failed: %v", err)
	}

	loaded, err := LoadLedger(dir)
	if err != nil {
		t.Fatalf("LoadLedger() failed: %v", err)
	}
	if loaded.Len() != 1 {
		t.Errorf("len = %d, want the appended event persisted", loaded.Len())
	}
}
