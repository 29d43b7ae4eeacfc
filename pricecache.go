package marketwatch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/marketwatch/date"
	"github.com/gocarina/gocsv"
)

// priceRecord is one row of a cached per-security price file.
type priceRecord struct {
	Date  date.Date `csv:"date"`
	Close float64   `csv:"close"`
}

// CachedProvider wraps a PriceProvider with a directory of per-security CSV
// files, one file per ticker. The cache is consulted first; only ranges it
// does not cover reach the wrapped provider, and fetched points are merged
// back so the cache grows over time.
//
// When the wrapped provider fails but the cache holds data for the requested
// range, the cached data is returned: stale prices beat no prices for
// analytics over history.
type CachedProvider struct {
	dir    string
	source PriceProvider
}

// NewCachedProvider creates a cache over source rooted at dir. The directory
// is created on first write.
func NewCachedProvider(dir string, source PriceProvider) *CachedProvider {
	return &CachedProvider{dir: dir, source: source}
}

func (p *CachedProvider) file(security string) string {
	// Tickers may carry an exchange suffix like "NVD.F", keep it readable.
	name := strings.ReplaceAll(security, string(filepath.Separator), "_")
	return filepath.Join(p.dir, name+".csv")
}

// DailySeries implements PriceProvider.
func (p *CachedProvider) DailySeries(ctx context.Context, security string, from, to date.Date) (*date.History[float64], error) {
	cached, err := p.read(security)
	if err != nil {
		return nil, err
	}

	if covers(cached, from, to) {
		return cached.Between(from, to), nil
	}

	fetched, err := p.source.DailySeries(ctx, security, from, to)
	if err != nil {
		// Serve from cache when it can answer at least part of the range.
		if partial := cached.Between(from, to); partial.Len() > 0 {
			return partial, nil
		}
		return nil, err
	}
	for day, close := range fetched.Values() {
		cached.Append(day, close)
	}
	if err := p.write(security, cached); err != nil {
		return nil, fmt.Errorf("could not update price cache for %s: %w", security, err)
	}
	return cached.Between(from, to), nil
}

// covers reports whether the cached series spans the requested range. The
// last trading day can lag a few calendar days behind 'to' over weekends, so
// coverage at the end is accepted within a week.
func covers(cached *date.History[float64], from, to date.Date) bool {
	if cached.Len() == 0 {
		return false
	}
	first, _ := cached.First()
	last, _ := cached.Latest()
	return !first.After(from) && !last.Before(to.Add(-7))
}

// read loads the cached file of one security. A missing file is an empty
// history.
func (p *CachedProvider) read(security string) (*date.History[float64], error) {
	f, err := os.Open(p.file(security))
	if errors.Is(err, fs.ErrNotExist) {
		return &date.History[float64]{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open price cache for %s: %w", security, err)
	}
	defer f.Close()

	var records []priceRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("could not parse price cache for %s: %w", security, err)
	}
	closes := &date.History[float64]{}
	for _, rec := range records {
		closes.Append(rec.Date, rec.Close)
	}
	return closes, nil
}

// write persists the series of one security, sorted, full rewrite.
func (p *CachedProvider) write(security string, closes *date.History[float64]) error {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return err
	}
	records := make([]priceRecord, 0, closes.Len())
	for day, close := range closes.Values() {
		records = append(records, priceRecord{Date: day, Close: close})
	}
	f, err := os.Create(p.file(security))
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&records, f)
}
