package marketwatch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LedgerFileName is the name of the event log inside a portfolio directory.
const LedgerFileName = "events.jsonl"

// LoadLedger opens and decodes the ledger of a portfolio directory. A missing
// file is not an error: it loads as an empty ledger, ready for a first
// Append.
func LoadLedger(dir string) (*Ledger, error) {
	path := filepath.Join(dir, LedgerFileName)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open ledger file %q: %w", path, err)
	}
	defer f.Close()

	ledger, err := DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode ledger file %q: %w", path, err)
	}
	return ledger, nil
}

// SaveLedger persists the ledger into a portfolio directory. The write is
// atomic: the file is fully written to a sibling temp file then renamed, so a
// crash leaves either the old log or the new one, never a truncated mix.
func SaveLedger(dir string, ledger *Ledger) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create portfolio directory %q: %w", dir, err)
	}
	path := filepath.Join(dir, LedgerFileName)

	tmp, err := os.CreateTemp(dir, LedgerFileName+".*")
	if err != nil {
		return fmt.Errorf("could not create temp ledger file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := EncodeLedger(tmp, ledger); err != nil {
		tmp.Close()
		return fmt.Errorf("could not encode ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close temp ledger file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("could not replace ledger file %q: %w", path, err)
	}
	return nil
}

// UpdateLedger loads the ledger of a portfolio directory, applies fn, and
// saves it back when fn succeeds. It is the one way commands mutate a
// portfolio.
func UpdateLedger(dir string, fn func(*Ledger) error) error {
	ledger, err := LoadLedger(dir)
	if err != nil {
		return err
	}
	if err := fn(ledger); err != nil {
		return err
	}
	return SaveLedger(dir, ledger)
}
