// Package robustness stress-tests a strategy by rerunning the same
// simulation from many offset start dates and measuring how much the
// outcome depends on timing. A strategy whose return distribution is tight
// across start dates is robust; one that only works from a lucky week is
// not.
package robustness

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/feed"
	"stock-signal-lab/internal/idhash"
	"stock-signal-lab/internal/metrics"
	"stock-signal-lab/internal/pricestore"
	"stock-signal-lab/internal/simulation"
)

// Consistency classification of the return distribution, from the
// coefficient of variation (stddev / mean).
const (
	ConsistencyHigh   = "HIGH"
	ConsistencyMedium = "MEDIUM"
	ConsistencyLow    = "LOW"
)

// DefaultSeed makes repeated harness runs reproduce the same start dates.
const DefaultSeed = 42

// Options controls start-date generation and run parallelism.
type Options struct {
	StartYear   int
	EndYear     int
	MinGapWeeks int
	MaxGapWeeks int
	Seed        int64
	Parallelism int // 0 means unbounded
}

// DefaultOptions covers 2023 through 2025 with 6 to 8 week gaps.
func DefaultOptions() Options {
	return Options{
		StartYear:   2023,
		EndYear:     2025,
		MinGapWeeks: 6,
		MaxGapWeeks: 8,
		Seed:        DefaultSeed,
	}
}

func (o *Options) validate() error {
	if o.StartYear > o.EndYear {
		return fmt.Errorf("start year %d after end year %d", o.StartYear, o.EndYear)
	}
	if o.MinGapWeeks <= 0 || o.MaxGapWeeks < o.MinGapWeeks {
		return fmt.Errorf("invalid gap range %d-%d weeks", o.MinGapWeeks, o.MaxGapWeeks)
	}
	return nil
}

// GenerateStartDates walks from Jan 1 of the start year to Dec 31 of the
// end year, emitting a date then jumping a seeded-random gap in
// [minGap, maxGap] weeks. The same seed always produces the same dates.
func GenerateStartDates(opts Options) ([]time.Time, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	cursor := time.Date(opts.StartYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(opts.EndYear, time.December, 31, 0, 0, 0, 0, time.UTC)

	var out []time.Time
	for !cursor.After(last) {
		out = append(out, cursor)
		gapWeeks := opts.MinGapWeeks + rng.Intn(opts.MaxGapWeeks-opts.MinGapWeeks+1)
		cursor = dates.AddDays(cursor, gapWeeks*7)
	}
	return out, nil
}

// FilterStartDates keeps only start dates that leave at least one and a
// half holding periods of data before end. A later start would measure
// mostly forced end-of-run closes rather than the strategy's own exits.
func FilterStartDates(startDates []time.Time, end time.Time, holdingDays int) []time.Time {
	required := holdingDays * 3 / 2
	var out []time.Time
	for _, start := range startDates {
		if dates.DaysBetween(start, end) >= required {
			out = append(out, start)
		}
	}
	return out
}

// Distribution summarizes one metric across all runs.
type Distribution struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
}

func distribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean := metrics.Mean(sorted)
	return Distribution{
		Mean:   mean,
		Std:    metrics.Stddev(sorted, mean),
		Median: metrics.Median(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P10:    metrics.Percentile(sorted, 0.10),
		P25:    metrics.Percentile(sorted, 0.25),
		P75:    metrics.Percentile(sorted, 0.75),
		P90:    metrics.Percentile(sorted, 0.90),
	}
}

// Report aggregates every per-start-date run into distribution statistics
// and a robustness verdict.
type Report struct {
	GeneratedAt time.Time          `json:"generated_at"`
	NumRuns     int                `json:"num_simulations"`
	Runs        []domain.RunRecord `json:"individual_runs"`

	TotalReturn  Distribution `json:"total_return"`
	CAGR         Distribution `json:"cagr"`
	MaxDrawdown  Distribution `json:"max_drawdown"`
	WinRate      Distribution `json:"win_rate"`
	Trades       Distribution `json:"trades"`
	ProfitFactor Distribution `json:"profit_factor"`

	ProfitableRuns   int     `json:"profitable_runs"`
	ProfitablePct    float64 `json:"profitable_pct"`
	WorstReturn      float64 `json:"worst_return"`
	CV               float64 `json:"return_cv"`
	Consistency      string  `json:"return_consistency"`
	ReturnToDrawdown float64 `json:"return_to_drawdown"`
}

// Harness reruns one strategy from many start dates over a shared feed and
// price store. The driver is stateless across runs, so runs execute in
// parallel.
type Harness struct {
	signals *feed.Feed
	driver  *simulation.Driver
}

// New creates a harness over the given feed and price store.
func New(signals *feed.Feed, prices *pricestore.Store) *Harness {
	return &Harness{
		signals: signals,
		driver:  simulation.New(signals, prices),
	}
}

// Run executes one simulation per start date, ending all of them at end,
// and aggregates the results. Start dates with no signals on or after them
// are skipped, matching a live dataset that simply ran out.
func (h *Harness) Run(ctx context.Context, cfg domain.StrategyConfig, startDates []time.Time, end time.Time, parallelism int) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(startDates) == 0 {
		return nil, fmt.Errorf("no start dates to simulate")
	}

	records := make([]*domain.RunRecord, len(startDates))

	g, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, start := range startDates {
		i, start := i, start
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if len(h.signals.FromDate(start)) == 0 {
				return nil
			}

			runCfg := cfg
			runCfg.Name = fmt.Sprintf("MC_%s", dates.Format(start))
			result, err := h.driver.Run(runCfg, start, end)
			if err != nil {
				return fmt.Errorf("run from %s: %w", dates.Format(start), err)
			}
			records[i] = RecordFromResult(runCfg.Name, result)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var runs []domain.RunRecord
	for _, r := range records {
		if r != nil {
			runs = append(runs, *r)
		}
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no start date produced any signals")
	}

	return aggregate(runs), nil
}

// RecordFromResult flattens a simulation result into a persistable run row.
// The run end date is the last equity sample, not the requested end, so a
// run that exhausted its data reports the span it actually covered.
func RecordFromResult(name string, result *domain.SimulationResult) *domain.RunRecord {
	end := result.EndDate
	if n := len(result.EquityCurve); n > 0 {
		end = result.EquityCurve[n-1].Date
	}

	s := result.Summary
	return &domain.RunRecord{
		RunID:         idhash.ComputeRunID(name, result.StartDate, end),
		StrategyName:  name,
		StartDate:     result.StartDate,
		EndDate:       end,
		TotalReturn:   s.TotalReturn,
		CAGR:          s.CAGR,
		MaxDrawdown:   s.MaxDrawdown,
		WinRate:       s.WinRate,
		AvgWinPct:     s.AvgWinPct,
		AvgLossPct:    s.AvgLossPct,
		ProfitFactor:  s.ProfitFactorCapped(),
		FinalValue:    s.FinalValue,
		TotalTrades:   s.TotalTrades,
		StopLossCount: s.ExitReasonCounts[domain.ExitReasonStopLoss],
		TimeExitCount: s.ExitReasonCounts[domain.ExitReasonTime],
		CreatedAt:     time.Now().UTC(),
	}
}

func aggregate(runs []domain.RunRecord) *Report {
	rep := &Report{
		GeneratedAt: time.Now().UTC(),
		NumRuns:     len(runs),
		Runs:        runs,
	}

	var returns, cagrs, drawdowns, winRates, trades, profitFactors []float64
	for _, r := range runs {
		returns = append(returns, r.TotalReturn)
		cagrs = append(cagrs, r.CAGR)
		drawdowns = append(drawdowns, r.MaxDrawdown)
		winRates = append(winRates, r.WinRate)
		trades = append(trades, float64(r.TotalTrades))
		profitFactors = append(profitFactors, r.ProfitFactor)

		if r.TotalReturn > 0 {
			rep.ProfitableRuns++
		}
	}

	rep.TotalReturn = distribution(returns)
	rep.CAGR = distribution(cagrs)
	rep.MaxDrawdown = distribution(drawdowns)
	rep.WinRate = distribution(winRates)
	rep.Trades = distribution(trades)
	rep.ProfitFactor = distribution(profitFactors)

	rep.ProfitablePct = float64(rep.ProfitableRuns) / float64(len(runs))
	rep.WorstReturn = rep.TotalReturn.Min

	if rep.TotalReturn.Mean > 0 {
		rep.CV = rep.TotalReturn.Std / rep.TotalReturn.Mean
		rep.Consistency = classifyCV(rep.CV)
	}
	if rep.CAGR.Mean > 0 && rep.MaxDrawdown.Mean > 0 {
		rep.ReturnToDrawdown = rep.CAGR.Mean / rep.MaxDrawdown.Mean
	}
	return rep
}

func classifyCV(cv float64) string {
	switch {
	case cv < 0.5:
		return ConsistencyHigh
	case cv < 1.0:
		return ConsistencyMedium
	default:
		return ConsistencyLow
	}
}
