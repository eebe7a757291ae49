package domain

import (
	"encoding/json"
	"math"
	"time"
)

// ProfitFactorCap is the serialized stand-in for an infinite profit factor
// (no losing trades). JSON cannot carry +Inf, so every external surface
// reports this cap instead.
const ProfitFactorCap = 99.99

// EquityPoint is one sample of the weekly equity curve.
type EquityPoint struct {
	Date  time.Time
	Value float64
}

// Summary holds the performance metrics computed from a completed run.
// A pure function of the run's equity curve and closed positions.
type Summary struct {
	FinalValue  float64
	TotalReturn float64
	CAGR        float64
	MaxDrawdown float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	AvgWinPct     float64
	AvgLossPct    float64
	ProfitFactor  float64 // +Inf when there are no losers; cap before serializing

	LongTermTrades  int
	ShortTermTrades int
	LongTermPct     float64

	ExitReasonCounts map[string]int
}

// ProfitFactorCapped returns the profit factor with infinity replaced by
// ProfitFactorCap, safe for JSON and SQL columns.
func (s *Summary) ProfitFactorCapped() float64 {
	if math.IsInf(s.ProfitFactor, 1) {
		return ProfitFactorCap
	}
	return s.ProfitFactor
}

// MarshalJSON serializes the summary with the profit factor capped.
// encoding/json rejects +Inf outright, so the raw value never leaves the
// process.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	capped := plain(s)
	capped.ProfitFactor = s.ProfitFactorCapped()
	return json.Marshal(capped)
}

// SimulationResult is the aggregate output of one simulation run.
// Produced once, immutable afterward; the robustness harness collects many
// of these without touching any of them.
type SimulationResult struct {
	Config          StrategyConfig
	StartDate       time.Time
	EndDate         time.Time
	EquityCurve     []EquityPoint
	ClosedPositions []*ClosedPosition
	Summary         Summary

	// Audit counters: candidates seen vs rejected during entry, by reason.
	SignalsConsidered  int
	SkippedNoPrice     int
	SkippedScoreFilter int
	SkippedCapital     int
	SkippedDuplicate   int
}
