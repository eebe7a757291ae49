// Package cache reads per-ticker daily OHLCV series from a directory of
// provider cache files. The cache is written by an external fetcher and is
// never guaranteed complete; a missing ticker is a normal outcome here and
// reported with ErrNoCacheFile rather than treated as a failure.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/domain"
)

// ErrNoCacheFile is returned when no cache file exists for a ticker.
var ErrNoCacheFile = errors.New("no cache file for ticker")

// Dir reads price series from a cache directory.
type Dir struct {
	path string
}

// NewDir creates a reader over the given cache directory.
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

// filePatterns are the provider's cache file naming schemes, in preference
// order. The first pattern with any match wins.
func filePatterns(ticker string) []string {
	return []string{
		fmt.Sprintf("_historical-price-full_%s_*.json", ticker),
		fmt.Sprintf("historical_%s_*.json", ticker),
	}
}

// barRecord is the provider's per-day JSON shape. Files carry either a bare
// array of these or an object with a "historical" field holding the array.
type barRecord struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

type historicalEnvelope struct {
	Historical []barRecord `json:"historical"`
}

// SelectFile resolves the cache file for a ticker. When several candidates
// match one pattern, the largest file wins: re-fetches append data, so the
// biggest file is the most complete series.
func (d *Dir) SelectFile(ticker string) (string, error) {
	for _, pattern := range filePatterns(ticker) {
		matches, err := filepath.Glob(filepath.Join(d.path, pattern))
		if err != nil {
			return "", fmt.Errorf("glob cache files for %s: %w", ticker, err)
		}
		if len(matches) == 0 {
			continue
		}
		sort.Slice(matches, func(i, j int) bool {
			return fileSize(matches[i]) > fileSize(matches[j])
		})
		return matches[0], nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoCacheFile, ticker)
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}

// LoadTicker reads the bar series for one ticker, ascending by date.
// Returns ErrNoCacheFile when the ticker has no cache file.
func (d *Dir) LoadTicker(ticker string) ([]domain.PriceBar, error) {
	file, err := d.SelectFile(ticker)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read cache file %s: %w", file, err)
	}

	records, err := decodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("decode cache file %s: %w", file, err)
	}

	bars := make([]domain.PriceBar, 0, len(records))
	for _, rec := range records {
		date, err := parseBarDate(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("cache file %s: %w", file, err)
		}
		bars = append(bars, domain.PriceBar{
			Ticker: ticker,
			Date:   date,
			Open:   rec.Open,
			High:   rec.High,
			Low:    rec.Low,
			Close:  rec.Close,
			Volume: rec.Volume,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// LoadAll reads series for every ticker, skipping tickers with no cache
// file. Corrupt files are real errors and abort the load.
func (d *Dir) LoadAll(tickers []string) (map[string][]domain.PriceBar, error) {
	series := make(map[string][]domain.PriceBar, len(tickers))
	for _, ticker := range tickers {
		bars, err := d.LoadTicker(ticker)
		if err != nil {
			if errors.Is(err, ErrNoCacheFile) {
				continue
			}
			return nil, err
		}
		if len(bars) > 0 {
			series[ticker] = bars
		}
	}
	return series, nil
}

func decodeRecords(data []byte) ([]barRecord, error) {
	var envelope historicalEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Historical != nil {
		return envelope.Historical, nil
	}

	var records []barRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unrecognized cache shape: %w", err)
	}
	return records, nil
}

// parseBarDate accepts YYYY-MM-DD with or without a trailing time component.
func parseBarDate(s string) (time.Time, error) {
	if len(s) > len(dates.Layout) {
		s = s[:len(dates.Layout)]
	}
	return dates.Parse(s)
}
