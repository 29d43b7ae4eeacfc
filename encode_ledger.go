package marketwatch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeEvent decodes a single JSON object into the event struct named by its
// kind discriminator.
func DecodeEvent(data []byte) (Event, error) {
	var identifier struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &identifier); err != nil {
		return nil, fmt.Errorf("could not identify kind in %q: %w", string(data), err)
	}

	var decoded Event
	var err error
	switch identifier.Kind {
	case KindInit:
		var ev InitPosition
		err = json.Unmarshal(data, &ev)
		decoded = ev
	case KindTrade:
		var ev TradeAdd
		err = json.Unmarshal(data, &ev)
		decoded = ev
	case KindCash:
		var ev CashMovement
		err = json.Unmarshal(data, &ev)
		decoded = ev
	case KindGeneric:
		var ev GenericTrade
		err = json.Unmarshal(data, &ev)
		decoded = ev
	case KindTarget:
		var ev SetTarget
		err = json.Unmarshal(data, &ev)
		decoded = ev
	case KindCorrect:
		var ev Correction
		err = json.Unmarshal(data, &ev)
		decoded = ev
	default:
		err = fmt.Errorf("unknown event kind: %q", identifier.Kind)
	}
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

// DecodeLedger decodes events from a stream of JSONL data, one event per
// line, and returns the ledger in replay order. Ids and sequences are taken
// from the lines, not reassigned, so a decode round trip is the identity.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		ev, err := DecodeEvent(lineBytes)
		if err != nil {
			return nil, err
		}
		if ev.ID() == 0 {
			return nil, fmt.Errorf("event without id in line %q", string(lineBytes))
		}
		if _, exists := ledger.byID[ev.ID()]; exists {
			return nil, fmt.Errorf("duplicate event id %s", ev.ID())
		}
		ledger.commit(ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return ledger, nil
}

// EncodeEvent marshals a single event to JSON and writes it to the writer,
// followed by a newline, in JSONL format. Keys come out in a canonical order
// so encoded ledgers diff cleanly.
func EncodeEvent(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// EncodeLedger persists the ledger to an io.Writer in JSONL format, one event
// per line, in append order so that sequence numbers read monotonically.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	byAppend := ledger.committed()
	sort.Slice(byAppend, func(i, j int) bool { return byAppend[i].Seq() < byAppend[j].Seq() })
	for _, ev := range byAppend {
		if err := EncodeEvent(w, ev); err != nil {
			return err
		}
	}
	return nil
}
