package reporting

import (
	"context"
	"sort"
	"time"

	"stock-signal-lab/internal/metrics"
	"stock-signal-lab/internal/storage"
)

// Generator produces reports from stored runs.
type Generator struct {
	runStore storage.RunStore
	now      func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(runStore storage.RunStore) *Generator {
	return &Generator{
		runStore: runStore,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate loads every persisted run and builds the cross-run report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	runs, err := g.runStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt: g.now(),
		RunCount:    len(runs),
	}

	var returns, drawdowns, winRates []float64
	for _, r := range runs {
		report.Runs = append(report.Runs, *r)
		returns = append(returns, r.TotalReturn)
		drawdowns = append(drawdowns, r.MaxDrawdown)
		winRates = append(winRates, r.WinRate)
		if r.TotalReturn > 0 {
			report.ProfitableRuns++
		}
	}

	sort.Slice(report.Runs, func(i, j int) bool {
		if !report.Runs[i].StartDate.Equal(report.Runs[j].StartDate) {
			return report.Runs[i].StartDate.Before(report.Runs[j].StartDate)
		}
		return report.Runs[i].StrategyName < report.Runs[j].StrategyName
	})

	report.MeanReturn = metrics.Mean(returns)
	report.MedianReturn = metrics.Median(returns)
	report.MeanDrawdown = metrics.Mean(drawdowns)
	report.MeanWinRate = metrics.Mean(winRates)

	return report, nil
}
