// Package pricestore answers point and range queries over daily OHLCV bars.
//
// Absence of data is never an error here: every query returns an explicit
// ok/found flag and callers apply their own drop or fallback policy. The
// store is immutable after construction and safe for concurrent readers,
// which is what lets robustness runs share one copy.
package pricestore

import (
	"context"
	"sort"
	"time"

	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/storage"
)

// Store indexes per-ticker bar series, ascending by date.
type Store struct {
	bars map[string][]domain.PriceBar
}

// New builds a Store from per-ticker series. Input slices are sorted and
// retained; callers must not mutate them afterward.
func New(series map[string][]domain.PriceBar) *Store {
	for _, bars := range series {
		sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	}
	return &Store{bars: series}
}

// Load pulls full bar series for the given tickers out of a PriceBarStore.
// Tickers with no stored bars are simply absent from the result.
func Load(ctx context.Context, src storage.PriceBarStore, tickers []string) (*Store, error) {
	series := make(map[string][]domain.PriceBar, len(tickers))
	for _, ticker := range tickers {
		bars, err := src.GetByTicker(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if len(bars) == 0 {
			continue
		}
		out := make([]domain.PriceBar, len(bars))
		for i, b := range bars {
			out[i] = *b
		}
		series[ticker] = out
	}
	return New(series), nil
}

// HasTicker reports whether any bars exist for ticker.
func (s *Store) HasTicker(ticker string) bool {
	return len(s.bars[ticker]) > 0
}

// Tickers returns all tickers with at least one bar, sorted.
func (s *Store) Tickers() []string {
	out := make([]string, 0, len(s.bars))
	for t := range s.bars {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// PricesFor returns the full bar series for ticker, ascending by date.
// The returned slice is shared; callers must treat it as read-only.
func (s *Store) PricesFor(ticker string) []domain.PriceBar {
	return s.bars[ticker]
}

// Range returns the bars for ticker with start <= date <= end.
func (s *Store) Range(ticker string, start, end time.Time) []domain.PriceBar {
	bars := s.bars[ticker]
	lo := sort.Search(len(bars), func(i int) bool { return !bars[i].Date.Before(start) })
	hi := sort.Search(len(bars), func(i int) bool { return bars[i].Date.After(end) })
	if lo >= hi {
		return nil
	}
	return bars[lo:hi]
}

// CloseOnOrBefore returns the latest close at or before date.
func (s *Store) CloseOnOrBefore(ticker string, date time.Time) (float64, bool) {
	bars := s.bars[ticker]
	idx := sort.Search(len(bars), func(i int) bool { return bars[i].Date.After(date) })
	if idx == 0 {
		return 0, false
	}
	return bars[idx-1].Close, true
}

// CloseOnDate returns the close for the exact date only.
func (s *Store) CloseOnDate(ticker string, date time.Time) (float64, bool) {
	bars := s.bars[ticker]
	idx := sort.Search(len(bars), func(i int) bool { return !bars[i].Date.Before(date) })
	if idx < len(bars) && bars[idx].Date.Equal(date) {
		return bars[idx].Close, true
	}
	return 0, false
}

// CloseWithinWindow returns a close near date: the exact date first, then
// each later date up to maxDays forward, then each earlier date up to
// maxDays back. Forward matches win so an entry scheduled on a holiday
// fills on the next trading day rather than the previous close.
func (s *Store) CloseWithinWindow(ticker string, date time.Time, maxDays int) (float64, time.Time, bool) {
	if price, ok := s.CloseOnDate(ticker, date); ok {
		return price, date, true
	}
	for offset := 1; offset <= maxDays; offset++ {
		later := dates.AddDays(date, offset)
		if price, ok := s.CloseOnDate(ticker, later); ok {
			return price, later, true
		}
	}
	for offset := 1; offset <= maxDays; offset++ {
		earlier := dates.AddDays(date, -offset)
		if price, ok := s.CloseOnDate(ticker, earlier); ok {
			return price, earlier, true
		}
	}
	return 0, time.Time{}, false
}

// LatestClose returns the most recent close for ticker and its date.
func (s *Store) LatestClose(ticker string) (float64, time.Time, bool) {
	bars := s.bars[ticker]
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Close > 0 {
			return bars[i].Close, bars[i].Date, true
		}
	}
	return 0, time.Time{}, false
}

// LowestLow returns the minimum low in [start, end].
func (s *Store) LowestLow(ticker string, start, end time.Time) (float64, bool) {
	lowest := 0.0
	found := false
	for _, bar := range s.Range(ticker, start, end) {
		if bar.Low <= 0 {
			continue
		}
		if !found || bar.Low < lowest {
			lowest = bar.Low
			found = true
		}
	}
	return lowest, found
}

// CoverageRatio returns actual trading days with data divided by the
// expected trading-day count (5/7 of calendar days) over [start, end].
// A zero-length window counts as fully covered: a brand-new position has
// simply not had time to accumulate gaps.
func (s *Store) CoverageRatio(ticker string, start, end time.Time) float64 {
	expected := dates.ExpectedTradingDays(start, end)
	if expected <= 0 {
		return 1
	}
	actual := float64(len(s.Range(ticker, start, end)))
	return actual / expected
}
