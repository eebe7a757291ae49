// Package sizing computes the dollar allocation for a new position.
package sizing

import (
	"math"

	"stock-signal-lab/internal/domain"
)

// Minimum dollar size for a position. Anything smaller is not worth the
// bookkeeping and is rejected outright.
const minPositionSize = 100

// Score-weighted mode: 2% of portfolio as base, plus 0.5% per score point
// above the baseline score of 5.
const (
	scoreBase     = 0.02
	scorePerPoint = 0.005
	baselineScore = 5
)

// Fraction of cash kept uninvested when sizing against available cash.
const cashBuffer = 0.95

// Size returns the dollar amount to invest for a signal, or 0 when no
// position should be opened. The amount is capped by available cash (with a
// 5% buffer) and by the per-position portfolio cap, whichever is tighter.
func Size(cfg *domain.StrategyConfig, cash, portfolioValue float64, sig *domain.Signal, openPositions int) float64 {
	if openPositions >= cfg.MaxPositions {
		return 0
	}

	var size float64
	switch cfg.PositionSizeMode {
	case domain.SizeModeFixedDollar:
		size = cfg.FixedDollarAmount
	case domain.SizeModeScoreWeighted:
		base := portfolioValue * scoreBase
		bonus := float64(sig.Score-baselineScore) * (portfolioValue * scorePerPoint)
		size = base + math.Max(0, bonus)
	default: // equal
		size = portfolioValue * cfg.MaxPositionPct
	}

	size = math.Min(size, cash*cashBuffer)
	size = math.Min(size, portfolioValue*cfg.MaxPositionPct)

	if size < minPositionSize {
		return 0
	}
	return size
}

// Shares converts a dollar size to whole shares at the entry price.
func Shares(size, entryPrice float64) int {
	if entryPrice <= 0 {
		return 0
	}
	return int(math.Floor(size / entryPrice))
}
