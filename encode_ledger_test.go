package marketwatch

import (
	"bytes"
	"strings"
	"testing"
)

// fullLedger builds a ledger exercising every event kind.
func fullLedger(t *testing.T) *Ledger {
	t.Helper()
	ledger := NewLedger()
	mustAppend(t, ledger, NewCashMovement(day("2025-01-02"), "funding", M(10000)))
	mustAppend(t, ledger, NewInitPosition(day("2025-01-02"), "", "AAPL", Q(50), M(150)))
	bad := mustAppend(t, ledger, NewTradeAdd(day("2025-01-10"), "", "MSFT", Q(5), M(400)))
	mustAppend(t, ledger, NewGenericTrade(day("2025-01-12"), "put spread", M(500), 30, M(-80), day("2025-02-11")))
	target := NewSetTarget(day("2025-01-15"), "looks cheap", "AAPL")
	buy := M(120)
	target.Buy = &buy
	mustAppend(t, ledger, target)
	mustAppend(t, ledger, NewCorrection(day("2025-01-20"), bad, "wrong ticker",
		NewTradeAdd(day("2025-01-20"), "", "MSTR", Q(5), M(400))))
	return ledger
}

func TestEncodeDecodeLedger_RoundTrip(t *testing.T) {
	ledger := fullLedger(t)

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, ledger); err != nil {
		t.Fatalf("EncodeLedger() failed: %v", err)
	}
	decoded, err := DecodeLedger(&buf)
	if err != nil {
		t.Fatalf("DecodeLedger() failed: %v", err)
	}

	if decoded.Len() != ledger.Len() {
		t.Fatalf("decoded %d events, want %d", decoded.Len(), ledger.Len())
	}
	for ev := range ledger.All() {
		got, err := decoded.Get(ev.ID())
		if err != nil {
			t.Fatalf("decoded ledger misses event %v", ev.ID())
		}
		if !ev.Equal(got) {
			t.Errorf("event %v round trip mismatch:\n got %#v\nwant %#v", ev.ID(), got, ev)
		}
	}
}

func TestEncodeLedger_Canonical(t *testing.T) {
	ledger := fullLedger(t)

	var a, b bytes.Buffer
	if err := EncodeLedger(&a, ledger); err != nil {
		t.Fatalf("EncodeLedger() failed: %v", err)
	}
	if err := EncodeLedger(&b, ledger); err != nil {
		t.Fatalf("EncodeLedger() failed: %v", err)
	}
	if a.String() != b.String() {
		t.Error("two encodings of the same ledger differ")
	}

	// Lines carry the header fields first, in a fixed order.
	first := strings.SplitN(a.String(), "\n", 2)[0]
	if !strings.HasPrefix(first, `{"id":1,"kind":"cash","date":"2025-01-02","seq":1,`) {
		t.Errorf("unexpected first line: %s", first)
	}
}

func TestDecodeLedger_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"unknown kind", `{"id":1,"kind":"wat","date":"2025-01-02","seq":1}`},
		{"missing id", `{"kind":"cash","date":"2025-01-02","seq":1,"amount":10}`},
		{"duplicate id", `{"id":1,"kind":"cash","date":"2025-01-02","seq":1,"amount":10}` + "\n" +
			`{"id":1,"kind":"cash","date":"2025-01-03","seq":2,"amount":20}`},
		{"garbage", `not json`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeLedger(strings.NewReader(tc.input)); err == nil {
				t.Error("DecodeLedger() accepted invalid input")
			}
		})
	}
}

func TestDecodeLedger_SkipsEmptyLines(t *testing.T) {
	input := `{"id":1,"kind":"cash","date":"2025-01-02","seq":1,"amount":10}` + "\n\n" +
		`{"id":2,"kind":"cash","date":"2025-01-03","seq":2,"amount":20}` + "\n"
	ledger, err := DecodeLedger(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeLedger() failed: %v", err)
	}
	if ledger.Len() != 2 {
		t.Errorf("decoded %d events, want 2", ledger.Len())
	}
}
