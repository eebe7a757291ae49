package domain

import "time"

// RunRecord is the persisted summary of one simulation run, keyed by a
// deterministic run_id. This is what the Monte-Carlo harness stores per
// start date and what cmd/report reads back.
type RunRecord struct {
	RunID        string
	StrategyName string
	StartDate    time.Time
	EndDate      time.Time

	TotalReturn  float64
	CAGR         float64
	MaxDrawdown  float64
	WinRate      float64
	AvgWinPct    float64
	AvgLossPct   float64
	ProfitFactor float64 // already capped for storage
	FinalValue   float64
	TotalTrades  int

	StopLossCount int
	TimeExitCount int

	CreatedAt time.Time
}
