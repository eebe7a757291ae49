package reporting

import (
	"time"

	"stock-signal-lab/internal/domain"
)

// Report summarizes every persisted simulation run for review.
type Report struct {
	GeneratedAt time.Time
	RunCount    int

	// Runs sorted by start date, then strategy name.
	Runs []domain.RunRecord

	// Cross-run aggregates.
	MeanReturn     float64
	MedianReturn   float64
	MeanDrawdown   float64
	MeanWinRate    float64
	ProfitableRuns int
}

// estimated differential between short-term and long-term capital gains
// rates, used for the tax note in single-run reports.
const taxRateDifferential = 0.20

// TaxSavingsEstimate returns the rough tax saved by long-term winners
// versus the same gains taken short-term.
func TaxSavingsEstimate(closed []*domain.ClosedPosition) float64 {
	var longTermGains float64
	for _, p := range closed {
		if p.IsLongTerm() && p.PnL > 0 {
			longTermGains += p.PnL
		}
	}
	return longTermGains * taxRateDifferential
}
