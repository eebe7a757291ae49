package domain

import (
	"errors"
	"fmt"
	"time"
)

// Position sizing modes.
const (
	SizeModeEqual         = "equal"
	SizeModeScoreWeighted = "score_weighted"
	SizeModeFixedDollar   = "fixed_dollar"
)

// ErrInvalidConfig wraps all StrategyConfig validation failures.
var ErrInvalidConfig = errors.New("invalid strategy config")

// StrategyConfig holds every knob for one simulation run. Immutable once
// validated; a run never mutates its config.
type StrategyConfig struct {
	Name           string
	InitialCapital float64

	// Position sizing
	PositionSizeMode  string  // equal | score_weighted | fixed_dollar
	MaxPositionPct    float64 // hard cap per position as fraction of portfolio
	FixedDollarAmount float64 // used by fixed_dollar mode
	MinScore          int
	MaxScore          int // 99 = effectively unbounded

	// Exit rules
	HoldingPeriodDays int
	StopLossPct       float64 // 0 disables
	TrailingStopPct   float64 // 0 disables
	TakeProfitPct     float64 // 0 disables

	// Portfolio limits
	MaxPositions int

	// Weekly entry day. Zero value means Friday (time.Friday != 0, so the
	// loader sets it explicitly).
	EntryWeekday time.Weekday
}

// DefaultStrategyConfig mirrors the knobs of the reference strategy set:
// 12-month hold, -25% stop, 4% positions, scores 5 and up.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		Name:              "default",
		InitialCapital:    100_000,
		PositionSizeMode:  SizeModeEqual,
		MaxPositionPct:    0.04,
		FixedDollarAmount: 2_000,
		MinScore:          5,
		MaxScore:          99,
		HoldingPeriodDays: 365,
		StopLossPct:       0.25,
		MaxPositions:      40,
		EntryWeekday:      time.Friday,
	}
}

// Validate fails fast on configurations that would corrupt a run.
// Called once before the simulation starts; never mid-run.
func (c *StrategyConfig) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("%w: initial capital must be positive, got %.2f", ErrInvalidConfig, c.InitialCapital)
	}
	if c.HoldingPeriodDays <= 0 {
		return fmt.Errorf("%w: holding period must be positive, got %d", ErrInvalidConfig, c.HoldingPeriodDays)
	}
	if c.MinScore > c.MaxScore {
		return fmt.Errorf("%w: min score %d exceeds max score %d", ErrInvalidConfig, c.MinScore, c.MaxScore)
	}
	if c.MaxPositions <= 0 {
		return fmt.Errorf("%w: max positions must be positive, got %d", ErrInvalidConfig, c.MaxPositions)
	}
	if c.MaxPositionPct <= 0 || c.MaxPositionPct > 1 {
		return fmt.Errorf("%w: max position pct must be in (0,1], got %.4f", ErrInvalidConfig, c.MaxPositionPct)
	}
	if c.StopLossPct < 0 || c.StopLossPct >= 1 {
		return fmt.Errorf("%w: stop loss pct must be in [0,1), got %.4f", ErrInvalidConfig, c.StopLossPct)
	}
	if c.TrailingStopPct < 0 || c.TrailingStopPct >= 1 {
		return fmt.Errorf("%w: trailing stop pct must be in [0,1), got %.4f", ErrInvalidConfig, c.TrailingStopPct)
	}
	if c.TakeProfitPct < 0 {
		return fmt.Errorf("%w: take profit pct must be non-negative, got %.4f", ErrInvalidConfig, c.TakeProfitPct)
	}
	switch c.PositionSizeMode {
	case SizeModeEqual, SizeModeScoreWeighted, SizeModeFixedDollar:
	default:
		return fmt.Errorf("%w: unknown position size mode %q", ErrInvalidConfig, c.PositionSizeMode)
	}
	if c.PositionSizeMode == SizeModeFixedDollar && c.FixedDollarAmount <= 0 {
		return fmt.Errorf("%w: fixed dollar amount must be positive, got %.2f", ErrInvalidConfig, c.FixedDollarAmount)
	}
	return nil
}
