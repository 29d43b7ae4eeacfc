package renderer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/etnz/marketwatch"
	"github.com/etnz/marketwatch/date"
)

func day(s string) date.Date { return date.MustParse(s) }

func testSnapshot(t *testing.T) *marketwatch.Snapshot {
	t.Helper()
	ledger := marketwatch.NewLedger()
	appendEvent(t, ledger, marketwatch.NewCashMovement(day("2025-01-02"), "funding", marketwatch.M(10000)))
	appendEvent(t, ledger, marketwatch.NewInitPosition(day("2025-01-02"), "", "AAPL", marketwatch.Q(10), marketwatch.M(150)))
	target := marketwatch.NewSetTarget(day("2025-01-03"), "looks cheap", "AAPL")
	buy := marketwatch.M(120)
	target.Buy = &buy
	appendEvent(t, ledger, target)

	snap, err := marketwatch.BuildSnapshot(ledger, day("2025-01-10"))
	if err != nil {
		t.Fatalf("BuildSnapshot() failed: %v", err)
	}
	return snap
}

func appendEvent(t *testing.T, ledger *marketwatch.Ledger, ev marketwatch.Event) {
	t.Helper()
	if _, err := ledger.Append(ev); err != nil {
		t.Fatalf("Append(%v) failed: %v", ev, err)
	}
}

func TestRenderStatus(t *testing.T) {
	snap := testSnapshot(t)
	got := RenderStatus(NewStatus(snap, map[string]float64{"AAPL": 160}))

	for _, want := range []string{
		"# Portfolio Status",
		"## Positions",
		"AAPL",
		"## Targets",
		"looks cheap",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("status report missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "## Anomalies") {
		t.Errorf("anomalies section rendered for a clean portfolio:\n%s", got)
	}
}

func TestRenderStatus_UnsetTargetLevelsDashed(t *testing.T) {
	snap := testSnapshot(t)
	view := NewStatus(snap, nil)
	if len(view.Targets) != 1 {
		t.Fatalf("targets = %+v, want one", view.Targets)
	}
	target := view.Targets[0]
	if target.Sell != "-" || target.Intrinsic != "-" || target.MaxWeight != "-" {
		t.Errorf("unset levels = %+v, want dashes", target)
	}
	if target.Buy == "-" {
		t.Error("buy level set but rendered as a dash")
	}
}

func TestWhatsUpMarkdown(t *testing.T) {
	report := &marketwatch.WhatsUpReport{
		On:       day("2025-01-10"),
		Lookback: 252,
		Entries: []marketwatch.WhatsUpEntry{
			{Security: "AAPL", LastClose: 160, DailyReturn: 0.031, Quantile: 0.98, Extremeness: 0.48},
			{Security: "SPY", LastClose: 500, DailyReturn: 0.001, Quantile: 0.5},
		},
		Skipped: []marketwatch.WhatsUpSkip{{Security: "GHOST", Reason: "no price data"}},
	}
	got := WhatsUpMarkdown(report)

	if !strings.Contains(got, "**AAPL**") {
		t.Errorf("extreme mover not bolded:\n%s", got)
	}
	if strings.Contains(got, "**SPY**") {
		t.Errorf("ordinary mover bolded:\n%s", got)
	}
	if !strings.Contains(got, "GHOST: no price data") {
		t.Errorf("skipped section missing:\n%s", got)
	}
}

func TestInvestMarkdown(t *testing.T) {
	report := &marketwatch.InvestReport{
		On:       day("2025-01-10"),
		Amount:   1000,
		Baseline: "SPY",
		Candidates: []marketwatch.InvestCandidate{
			{Security: "KO", MeanDelta: -0.002, Anchors: 48},
		},
		Skipped: []marketwatch.InvestSkip{{Security: "TSLA", Reason: "all anchors exceed max weight"}},
	}
	got := InvestMarkdown(report)

	for _, want := range []string{"KO", "SPY", "TSLA: all anchors exceed max weight"} {
		if !strings.Contains(got, want) {
			t.Errorf("invest report missing %q:\n%s", want, got)
		}
	}
}

func TestLogMarkdown_StrikesSupersededEvents(t *testing.T) {
	ledger := marketwatch.NewLedger()
	appendEvent(t, ledger, marketwatch.NewCashMovement(day("2025-01-02"), "funding", marketwatch.M(10000)))
	appendEvent(t, ledger, marketwatch.NewCashMovement(day("2025-01-03"), "typo", marketwatch.M(999)))
	appendEvent(t, ledger, marketwatch.NewCorrection(day("2025-01-06"), 2, "never happened", nil))

	got := LogMarkdown(ledger)
	if !strings.Contains(got, "~~") {
		t.Errorf("superseded event not struck through:\n%s", got)
	}
	if !strings.Contains(got, "Voided #2: never happened") {
		t.Errorf("correction line missing:\n%s", got)
	}
	if !strings.Contains(got, "Deposited 10000") {
		t.Errorf("live event missing:\n%s", got)
	}
}

func TestTimelineChart(t *testing.T) {
	series := &marketwatch.TimelineSeries{
		Days:         []date.Date{day("2025-01-06"), day("2025-01-07"), day("2025-01-08")},
		Portfolio:    []float64{11000, 11100, 11050},
		Baselines:    map[string][]float64{"SPY": {11000, 11020, 11040}},
		FixedDeposit: []float64{11000, 11002, 11004},
	}
	var buf bytes.Buffer
	if err := TimelineChart(&buf, series); err != nil {
		t.Fatalf("TimelineChart() failed: %v", err)
	}
	// PNG magic number.
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Errorf("output is not a PNG (%d bytes)", buf.Len())
	}
}

func TestTimelineChart_TooFewPoints(t *testing.T) {
	series := &marketwatch.TimelineSeries{Days: []date.Date{day("2025-01-06")}}
	if err := TimelineChart(&bytes.Buffer{}, series); err == nil {
		t.Error("TimelineChart() accepted a single point")
	}
}
