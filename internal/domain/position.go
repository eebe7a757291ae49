package domain

import "time"

// Exit reason codes recorded on closed positions.
const (
	ExitReasonTime         = "time"
	ExitReasonStopLoss     = "stop_loss"
	ExitReasonTrailingStop = "trailing_stop"
	ExitReasonTakeProfit   = "take_profit"
	ExitReasonEndOfSim     = "end_of_sim"
	ExitReasonOpen         = "open" // strict variant: still holding at latest price
)

// Position is one open holding, owned by the ledger while open.
// CurrentPrice and PeakPrice are refreshed each simulated day; everything
// else is fixed at entry.
type Position struct {
	Ticker     string
	EntryDate  time.Time
	EntryPrice float64
	Shares     int
	CostBasis  float64 // Shares * EntryPrice
	Score      int
	SignalDate time.Time

	PeakPrice    float64
	CurrentPrice float64
}

// MarketValue returns shares valued at the last known price, or cost basis
// when no price has ever been observed.
func (p *Position) MarketValue() float64 {
	if p.CurrentPrice <= 0 {
		return p.CostBasis
	}
	return float64(p.Shares) * p.CurrentPrice
}

// DaysHeld returns whole calendar days from entry to asOf.
func (p *Position) DaysHeld(asOf time.Time) int {
	return int(asOf.Sub(p.EntryDate).Hours() / 24)
}

// ClosedPosition is the immutable record of a completed round trip.
// Created once at close time and appended to the run's trade list.
type ClosedPosition struct {
	TradeID     string // deterministic sha256 hex, set when persisted
	Ticker      string
	EntryDate   time.Time
	ExitDate    time.Time
	EntryPrice  float64
	ExitPrice   float64
	Shares      int
	CostBasis   float64
	Proceeds    float64
	PnL         float64
	PnLPct      float64
	HoldingDays int
	ExitReason  string
	Score       int
}

// IsLongTerm reports whether the holding qualifies for long-term capital
// gains treatment (held more than one year).
func (c *ClosedPosition) IsLongTerm() bool {
	return c.HoldingDays > 365
}

// IsWinner reports whether the trade closed with a positive PnL.
func (c *ClosedPosition) IsWinner() bool {
	return c.PnL > 0
}
