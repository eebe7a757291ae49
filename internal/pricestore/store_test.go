package pricestore

import (
	"context"
	"testing"

	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/storage/memory"
)

func newTestStore() *Store {
	// AAPL trades Mon-Fri for two weeks with a gap on 2023-01-09.
	aapl := []domain.PriceBar{
		{Ticker: "AAPL", Date: dates.MustParse("2023-01-03"), Open: 100, High: 102, Low: 99, Close: 101},
		{Ticker: "AAPL", Date: dates.MustParse("2023-01-04"), Open: 101, High: 103, Low: 100, Close: 102},
		{Ticker: "AAPL", Date: dates.MustParse("2023-01-05"), Open: 102, High: 104, Low: 98, Close: 99},
		{Ticker: "AAPL", Date: dates.MustParse("2023-01-06"), Open: 99, High: 101, Low: 97, Close: 100},
		{Ticker: "AAPL", Date: dates.MustParse("2023-01-10"), Open: 100, High: 106, Low: 100, Close: 105},
	}
	return New(map[string][]domain.PriceBar{"AAPL": aapl})
}

func TestStore_CloseOnOrBefore(t *testing.T) {
	s := newTestStore()

	// Exact hit
	price, ok := s.CloseOnOrBefore("AAPL", dates.MustParse("2023-01-05"))
	if !ok || price != 99 {
		t.Errorf("Expected 99 on exact date, got %v ok=%v", price, ok)
	}

	// Weekend rolls back to Friday
	price, ok = s.CloseOnOrBefore("AAPL", dates.MustParse("2023-01-08"))
	if !ok || price != 100 {
		t.Errorf("Expected Friday close 100 for Sunday query, got %v ok=%v", price, ok)
	}

	// Before all data
	_, ok = s.CloseOnOrBefore("AAPL", dates.MustParse("2023-01-01"))
	if ok {
		t.Error("Expected no close before first bar")
	}

	// Unknown ticker
	_, ok = s.CloseOnOrBefore("ZZZZ", dates.MustParse("2023-01-05"))
	if ok {
		t.Error("Expected no close for unknown ticker")
	}
}

func TestStore_CloseWithinWindowPrefersForward(t *testing.T) {
	s := newTestStore()

	// 2023-01-07 is a Saturday with no bar. Forward probing should land on
	// 2023-01-10 (105), not back on 2023-01-06 (100).
	price, date, ok := s.CloseWithinWindow("AAPL", dates.MustParse("2023-01-07"), 5)
	if !ok {
		t.Fatal("Expected a close within window")
	}
	if price != 105 || !date.Equal(dates.MustParse("2023-01-10")) {
		t.Errorf("Expected forward match 105 on 2023-01-10, got %v on %s", price, dates.Format(date))
	}
}

func TestStore_CloseWithinWindowFallsBack(t *testing.T) {
	s := newTestStore()

	// 2023-01-12 has no bar and nothing after it; backward probing finds
	// 2023-01-10.
	price, date, ok := s.CloseWithinWindow("AAPL", dates.MustParse("2023-01-12"), 5)
	if !ok {
		t.Fatal("Expected a close within window")
	}
	if price != 105 || !date.Equal(dates.MustParse("2023-01-10")) {
		t.Errorf("Expected backward match 105 on 2023-01-10, got %v on %s", price, dates.Format(date))
	}
}

func TestStore_CloseWithinWindowExhausted(t *testing.T) {
	s := newTestStore()

	_, _, ok := s.CloseWithinWindow("AAPL", dates.MustParse("2023-03-01"), 5)
	if ok {
		t.Error("Expected no close far outside the data")
	}
}

func TestStore_LowestLow(t *testing.T) {
	s := newTestStore()

	low, ok := s.LowestLow("AAPL", dates.MustParse("2023-01-03"), dates.MustParse("2023-01-10"))
	if !ok || low != 97 {
		t.Errorf("Expected lowest low 97, got %v ok=%v", low, ok)
	}

	_, ok = s.LowestLow("AAPL", dates.MustParse("2023-02-01"), dates.MustParse("2023-02-28"))
	if ok {
		t.Error("Expected no low in empty range")
	}
}

func TestStore_LatestClose(t *testing.T) {
	s := newTestStore()

	price, date, ok := s.LatestClose("AAPL")
	if !ok || price != 105 || !date.Equal(dates.MustParse("2023-01-10")) {
		t.Errorf("Expected latest close 105 on 2023-01-10, got %v on %s", price, dates.Format(date))
	}

	_, _, ok = s.LatestClose("ZZZZ")
	if ok {
		t.Error("Expected no latest close for unknown ticker")
	}
}

func TestStore_CoverageRatio(t *testing.T) {
	s := newTestStore()

	// 7 calendar days from 01-03 to 01-10: expected 5 trading days, 5 bars.
	got := s.CoverageRatio("AAPL", dates.MustParse("2023-01-03"), dates.MustParse("2023-01-10"))
	if got < 0.99 || got > 1.01 {
		t.Errorf("Expected full coverage, got %v", got)
	}

	// Zero-length window counts as covered.
	got = s.CoverageRatio("AAPL", dates.MustParse("2023-01-03"), dates.MustParse("2023-01-03"))
	if got != 1 {
		t.Errorf("Expected coverage 1 for zero-length window, got %v", got)
	}

	// No data at all.
	got = s.CoverageRatio("ZZZZ", dates.MustParse("2023-01-03"), dates.MustParse("2023-01-31"))
	if got != 0 {
		t.Errorf("Expected coverage 0 for unknown ticker, got %v", got)
	}
}

func TestStore_LoadFromBarStore(t *testing.T) {
	ctx := context.Background()
	barStore := memory.NewPriceBarStore()

	err := barStore.InsertBulk(ctx, []*domain.PriceBar{
		{Ticker: "AAPL", Date: dates.MustParse("2023-01-04"), Close: 102},
		{Ticker: "AAPL", Date: dates.MustParse("2023-01-03"), Close: 101},
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	s, err := Load(ctx, barStore, []string{"AAPL", "MSFT"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !s.HasTicker("AAPL") {
		t.Error("Expected AAPL to be loaded")
	}
	if s.HasTicker("MSFT") {
		t.Error("MSFT has no bars and should be absent")
	}

	bars := s.PricesFor("AAPL")
	if len(bars) != 2 || !bars[0].Date.Before(bars[1].Date) {
		t.Errorf("Expected 2 sorted bars, got %+v", bars)
	}
}
