package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/marketwatch/date"
)

func TestParseDay(t *testing.T) {
	got, err := parseDay("2025-01-02")
	if err != nil {
		t.Fatalf("parseDay() failed: %v", err)
	}
	if got != date.MustParse("2025-01-02") {
		t.Errorf("parseDay() = %v", got)
	}

	today, err := parseDay("")
	if err != nil {
		t.Fatalf("parseDay(\"\") failed: %v", err)
	}
	if today != date.Today() {
		t.Errorf("parseDay(\"\") = %v, want today", today)
	}

	if _, err := parseDay("not-a-date"); err == nil {
		t.Error("parseDay() accepted garbage")
	}
}

func TestPortfolioDir_FlagWins(t *testing.T) {
	old := *portfolioFlag
	defer func() { *portfolioFlag = old }()

	*portfolioFlag = "/tmp/somewhere"
	if got := portfolioDir(); got != "/tmp/somewhere" {
		t.Errorf("portfolioDir() = %q, want the -C flag value", got)
	}
}

func TestPortfolioDir_CurrentFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("MARKETWATCH_HOME", home)

	if err := os.WriteFile(filepath.Join(home, "current"), []byte("/portfolios/main\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := portfolioDir(); got != "/portfolios/main" {
		t.Errorf("portfolioDir() = %q, want the current file content", got)
	}
}

func TestPortfolioDir_DefaultsToCwd(t *testing.T) {
	t.Setenv("MARKETWATCH_HOME", t.TempDir()) // no current file there
	if got := portfolioDir(); got != "." {
		t.Errorf("portfolioDir() = %q, want the working directory", got)
	}
}
