package marketwatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCachedProvider_FetchesAndPersists(t *testing.T) {
	source := newFakeProvider()
	source.add("AAPL", day("2025-01-06"), 100, 101, 102, 103, 104)

	dir := t.TempDir()
	cache := NewCachedProvider(dir, source)

	got, err := cache.DailySeries(context.Background(), "AAPL", day("2025-01-06"), day("2025-01-10"))
	if err != nil {
		t.Fatalf("DailySeries failed: %v", err)
	}
	if got.Len() != 5 {
		t.Fatalf("got %d points, want 5", got.Len())
	}
	if _, err := os.Stat(filepath.Join(dir, "AAPL.csv")); err != nil {
		t.Errorf("cache file was not written: %v", err)
	}
}

func TestCachedProvider_ServesCachedWhenSourceFails(t *testing.T) {
	source := newFakeProvider()
	source.add("AAPL", day("2025-01-06"), 100, 101, 102, 103, 104)

	dir := t.TempDir()
	cache := NewCachedProvider(dir, source)
	if _, err := cache.DailySeries(context.Background(), "AAPL", day("2025-01-06"), day("2025-01-10")); err != nil {
		t.Fatalf("warm-up fetch failed: %v", err)
	}

	// The source forgets the security and the requested range extends past
	// the cache, so the failed fetch falls back to the cached points.
	delete(source.series, "AAPL")
	got, err := cache.DailySeries(context.Background(), "AAPL", day("2025-01-06"), day("2025-01-31"))
	if err != nil {
		t.Fatalf("DailySeries after source failure: %v", err)
	}
	if got.Len() != 5 {
		t.Errorf("got %d points, want 5", got.Len())
	}
	if v, ok := got.Get(day("2025-01-08")); !ok || v != 102 {
		t.Errorf("close on 2025-01-08 = %v, %v, want 102, true", v, ok)
	}
}

func TestCachedProvider_CoveredRangeSkipsSource(t *testing.T) {
	source := newFakeProvider()
	source.add("AAPL", day("2025-01-06"), 100, 101, 102, 103, 104)

	dir := t.TempDir()
	cache := NewCachedProvider(dir, source)
	if _, err := cache.DailySeries(context.Background(), "AAPL", day("2025-01-06"), day("2025-01-10")); err != nil {
		t.Fatalf("warm-up fetch failed: %v", err)
	}

	// Mutate the source; a covered range must come from disk, unchanged.
	source.series["AAPL"].Append(day("2025-01-08"), 999)
	got, err := cache.DailySeries(context.Background(), "AAPL", day("2025-01-06"), day("2025-01-10"))
	if err != nil {
		t.Fatalf("DailySeries failed: %v", err)
	}
	if v, _ := got.Get(day("2025-01-08")); v != 102 {
		t.Errorf("close on 2025-01-08 = %v, want cached 102", v)
	}
}
