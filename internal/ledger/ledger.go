// Package ledger tracks cash and open positions during a simulation run.
// It enforces the structural rules of the book: one position per ticker,
// no spending beyond cash, every close conserves value. Pricing policy
// (what to pay, when to sell) lives with the caller.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/domain"
)

// Ledger errors.
var (
	ErrDuplicateTicker  = errors.New("position already open for ticker")
	ErrInsufficientCash = errors.New("insufficient cash")
	ErrNoPosition       = errors.New("no open position for ticker")
)

// Ledger is the cash and position book for one run. Not safe for concurrent
// use; each simulation run owns its own ledger.
type Ledger struct {
	cash      float64
	positions map[string]*domain.Position
}

// New creates a ledger holding the initial capital in cash.
func New(initialCash float64) *Ledger {
	return &Ledger{
		cash:      initialCash,
		positions: make(map[string]*domain.Position),
	}
}

// Cash returns the current uninvested cash.
func (l *Ledger) Cash() float64 {
	return l.cash
}

// OpenCount returns the number of open positions.
func (l *Ledger) OpenCount() int {
	return len(l.positions)
}

// HasPosition reports whether a position is open for ticker.
func (l *Ledger) HasPosition(ticker string) bool {
	_, ok := l.positions[ticker]
	return ok
}

// Position returns the open position for ticker, or nil.
func (l *Ledger) Position(ticker string) *domain.Position {
	return l.positions[ticker]
}

// Positions returns all open positions sorted by ticker.
func (l *Ledger) Positions() []*domain.Position {
	out := make([]*domain.Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Open books a new position, deducting its cost basis from cash.
func (l *Ledger) Open(p *domain.Position) error {
	if p == nil || p.Ticker == "" {
		return errors.New("open: position has no ticker")
	}
	if _, exists := l.positions[p.Ticker]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTicker, p.Ticker)
	}
	if p.CostBasis > l.cash {
		return fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCash, p.CostBasis, l.cash)
	}

	l.cash -= p.CostBasis
	l.positions[p.Ticker] = p
	return nil
}

// Close removes the position for ticker, credits proceeds to cash, and
// returns the resulting trade record. TradeID is left empty for the caller
// to assign.
func (l *Ledger) Close(ticker string, exitDate time.Time, exitPrice float64, reason string) (*domain.ClosedPosition, error) {
	p, ok := l.positions[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPosition, ticker)
	}

	proceeds := float64(p.Shares) * exitPrice
	pnl := proceeds - p.CostBasis
	pnlPct := 0.0
	if p.CostBasis > 0 {
		pnlPct = pnl / p.CostBasis
	}

	closed := &domain.ClosedPosition{
		Ticker:      p.Ticker,
		EntryDate:   p.EntryDate,
		ExitDate:    exitDate,
		EntryPrice:  p.EntryPrice,
		ExitPrice:   exitPrice,
		Shares:      p.Shares,
		CostBasis:   p.CostBasis,
		Proceeds:    proceeds,
		PnL:         pnl,
		PnLPct:      pnlPct,
		HoldingDays: dates.DaysBetween(p.EntryDate, exitDate),
		ExitReason:  reason,
		Score:       p.Score,
	}

	l.cash += proceeds
	delete(l.positions, ticker)
	return closed, nil
}

// MarkToMarket updates each open position's current price from the pricing
// function. Tickers the function cannot price keep their last known price.
func (l *Ledger) MarkToMarket(asOf time.Time, priceAt func(ticker string, date time.Time) (float64, bool)) {
	for _, p := range l.positions {
		if price, ok := priceAt(p.Ticker, asOf); ok {
			p.CurrentPrice = price
			if price > p.PeakPrice {
				p.PeakPrice = price
			}
		}
	}
}

// PortfolioValue returns cash plus the market value of all open positions.
func (l *Ledger) PortfolioValue() float64 {
	total := l.cash
	for _, p := range l.positions {
		total += p.MarketValue()
	}
	return total
}
