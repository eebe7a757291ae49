package ledger

import (
	"errors"
	"math"
	"testing"
	"time"

	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/domain"
)

func testPosition(ticker string, shares int, entryPrice float64) *domain.Position {
	return &domain.Position{
		Ticker:       ticker,
		EntryDate:    dates.MustParse("2023-03-17"),
		EntryPrice:   entryPrice,
		Shares:       shares,
		CostBasis:    float64(shares) * entryPrice,
		PeakPrice:    entryPrice,
		CurrentPrice: entryPrice,
	}
}

func TestLedger_OpenDeductsCash(t *testing.T) {
	l := New(100_000)

	if err := l.Open(testPosition("AAPL", 40, 100)); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if l.Cash() != 96_000 {
		t.Errorf("Expected cash 96000, got %v", l.Cash())
	}
	if !l.HasPosition("AAPL") || l.OpenCount() != 1 {
		t.Error("Position not recorded")
	}
}

func TestLedger_OpenRejectsDuplicateTicker(t *testing.T) {
	l := New(100_000)

	if err := l.Open(testPosition("AAPL", 40, 100)); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	err := l.Open(testPosition("AAPL", 10, 100))
	if !errors.Is(err, ErrDuplicateTicker) {
		t.Errorf("Expected ErrDuplicateTicker, got %v", err)
	}
}

func TestLedger_OpenRejectsOverspend(t *testing.T) {
	l := New(1000)

	err := l.Open(testPosition("AAPL", 40, 100))
	if !errors.Is(err, ErrInsufficientCash) {
		t.Errorf("Expected ErrInsufficientCash, got %v", err)
	}
	if l.Cash() != 1000 {
		t.Errorf("Failed open must not touch cash, got %v", l.Cash())
	}
}

func TestLedger_CloseConservesValue(t *testing.T) {
	l := New(100_000)
	if err := l.Open(testPosition("AAPL", 40, 100)); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	closed, err := l.Close("AAPL", dates.MustParse("2024-03-17"), 118, domain.ExitReasonTime)
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if closed.Proceeds != 4720 {
		t.Errorf("Expected proceeds 4720, got %v", closed.Proceeds)
	}
	if closed.PnL != 720 {
		t.Errorf("Expected pnl 720, got %v", closed.PnL)
	}
	if math.Abs(closed.PnLPct-0.18) > 1e-9 {
		t.Errorf("Expected pnl pct 0.18, got %v", closed.PnLPct)
	}
	if closed.HoldingDays != 366 {
		t.Errorf("Expected 366 holding days, got %d", closed.HoldingDays)
	}
	if closed.ExitReason != domain.ExitReasonTime {
		t.Errorf("Wrong exit reason %q", closed.ExitReason)
	}

	// Cash out equals cash in plus pnl
	if l.Cash() != 100_720 {
		t.Errorf("Expected cash 100720 after close, got %v", l.Cash())
	}
	if l.HasPosition("AAPL") {
		t.Error("Position should be removed after close")
	}
}

func TestLedger_CloseUnknownTicker(t *testing.T) {
	l := New(100_000)

	_, err := l.Close("AAPL", time.Now(), 100, domain.ExitReasonTime)
	if !errors.Is(err, ErrNoPosition) {
		t.Errorf("Expected ErrNoPosition, got %v", err)
	}
}

func TestLedger_MarkToMarketUpdatesPeak(t *testing.T) {
	l := New(100_000)
	if err := l.Open(testPosition("AAPL", 40, 100)); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	prices := map[string]float64{"AAPL": 110}
	priceAt := func(ticker string, _ time.Time) (float64, bool) {
		p, ok := prices[ticker]
		return p, ok
	}

	l.MarkToMarket(dates.MustParse("2023-04-01"), priceAt)

	p := l.Position("AAPL")
	if p.CurrentPrice != 110 || p.PeakPrice != 110 {
		t.Errorf("Expected current and peak 110, got %v / %v", p.CurrentPrice, p.PeakPrice)
	}

	// Price drops: current follows, peak holds.
	prices["AAPL"] = 95
	l.MarkToMarket(dates.MustParse("2023-04-02"), priceAt)
	if p.CurrentPrice != 95 || p.PeakPrice != 110 {
		t.Errorf("Expected current 95 peak 110, got %v / %v", p.CurrentPrice, p.PeakPrice)
	}

	// No price available: last known price sticks.
	delete(prices, "AAPL")
	l.MarkToMarket(dates.MustParse("2023-04-03"), priceAt)
	if p.CurrentPrice != 95 {
		t.Errorf("Expected stale price 95 to persist, got %v", p.CurrentPrice)
	}
}

func TestLedger_PortfolioValue(t *testing.T) {
	l := New(100_000)
	if err := l.Open(testPosition("AAPL", 40, 100)); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := l.Open(testPosition("MSFT", 10, 200)); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// 100000 - 4000 - 2000 cash, positions at cost
	if l.PortfolioValue() != 100_000 {
		t.Errorf("Expected portfolio value 100000 at cost, got %v", l.PortfolioValue())
	}

	l.Position("AAPL").CurrentPrice = 110
	if l.PortfolioValue() != 100_400 {
		t.Errorf("Expected portfolio value 100400 after mark, got %v", l.PortfolioValue())
	}
}
