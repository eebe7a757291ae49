// Package metrics turns a finished run's equity curve and trade list into
// performance statistics. Analysis is a pure function of its inputs: running
// it twice on the same result yields the same Summary.
package metrics

import (
	"math"

	"stock-signal-lab/internal/domain"
)

const daysPerYear = 365.25

// Analyze computes the performance summary for a completed run.
func Analyze(initialCapital float64, equityCurve []domain.EquityPoint, closed []*domain.ClosedPosition) domain.Summary {
	s := domain.Summary{
		ExitReasonCounts: make(map[string]int),
	}

	// Final value is post-liquidation cash: the initial capital plus the
	// realized pnl of every closed trade. The equity curve is sampled on
	// entry days and can lag the run end, so it informs drawdown only.
	finalValue := initialCapital
	for _, p := range closed {
		finalValue += p.PnL
	}
	s.FinalValue = finalValue
	if initialCapital > 0 {
		s.TotalReturn = (finalValue - initialCapital) / initialCapital
	}

	s.CAGR = cagr(initialCapital, finalValue, equityCurve)
	s.MaxDrawdown = maxDrawdown(initialCapital, equityCurve)

	// Trade statistics. A trade with zero pnl counts as a loser: it paid
	// its way in and out and produced nothing.
	var winPcts, lossPcts []float64
	var totalWinPnL, totalLossPnL float64
	for _, p := range closed {
		s.TotalTrades++
		s.ExitReasonCounts[p.ExitReason]++
		if p.IsWinner() {
			s.WinningTrades++
			winPcts = append(winPcts, p.PnLPct)
			totalWinPnL += p.PnL
		} else {
			s.LosingTrades++
			lossPcts = append(lossPcts, p.PnLPct)
			totalLossPnL += p.PnL
		}
		if p.IsLongTerm() {
			s.LongTermTrades++
		} else {
			s.ShortTermTrades++
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades)
		s.LongTermPct = float64(s.LongTermTrades) / float64(s.TotalTrades)
	}
	s.AvgWinPct = Mean(winPcts)
	s.AvgLossPct = Mean(lossPcts)
	s.ProfitFactor = profitFactor(totalWinPnL, totalLossPnL)

	return s
}

// cagr annualizes the total return over the equity curve's span.
// Returns 0 when the curve spans no time at all.
func cagr(initialCapital, finalValue float64, curve []domain.EquityPoint) float64 {
	if len(curve) < 2 || initialCapital <= 0 {
		return 0
	}
	years := curve[len(curve)-1].Date.Sub(curve[0].Date).Hours() / 24 / daysPerYear
	if years <= 0 {
		return 0
	}
	return math.Pow(finalValue/initialCapital, 1/years) - 1
}

// maxDrawdown finds the worst peak-to-trough decline. The peak is seeded
// with the initial capital so a curve that only ever falls still registers.
func maxDrawdown(initialCapital float64, curve []domain.EquityPoint) float64 {
	peak := initialCapital
	maxDD := 0.0
	for _, pt := range curve {
		if pt.Value > peak {
			peak = pt.Value
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - pt.Value) / peak
		if dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// profitFactor is gross wins over gross losses. With wins and no losses it
// is +Inf; serialization caps it via Summary.ProfitFactorCapped.
func profitFactor(totalWinPnL, totalLossPnL float64) float64 {
	losses := math.Abs(totalLossPnL)
	if losses == 0 {
		if totalWinPnL > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return totalWinPnL / losses
}
