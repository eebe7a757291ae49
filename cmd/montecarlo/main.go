package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-signal-lab/internal/cache"
	"stock-signal-lab/internal/config"
	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/feed"
	"stock-signal-lab/internal/pricestore"
	"stock-signal-lab/internal/robustness"
	"stock-signal-lab/internal/storage/migrations"
	pgstore "stock-signal-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "TOML config file path")
	presetName := flag.String("preset", "", "Named strategy preset (overrides config strategy)")
	signalsFile := flag.String("signals", "", "Signals JSON file (overrides config)")
	cacheDir := flag.String("cache-dir", "", "Price cache directory (overrides config)")
	endDate := flag.String("end", "", "Simulation end date YYYY-MM-DD (default: last price bar)")

	startYear := flag.Int("start-year", 0, "First year for start dates (overrides config)")
	endYear := flag.Int("end-year", 0, "Last year for start dates (overrides config)")
	minGap := flag.Int("min-gap", 0, "Minimum weeks between start dates (overrides config)")
	maxGap := flag.Int("max-gap", 0, "Maximum weeks between start dates (overrides config)")
	seed := flag.Int64("seed", 0, "Random seed for start-date generation (overrides config)")
	parallelism := flag.Int("parallelism", 0, "Max concurrent simulations (0 = unbounded)")

	outputPath := flag.String("output", "", "Write the full report JSON to this path")
	persistRuns := flag.Bool("persist", false, "Persist each run record to PostgreSQL")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (required with --persist)")
	runMigrations := flag.Bool("migrate", false, "Run postgres migrations before persisting")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[montecarlo] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *signalsFile != "" {
		cfg.Data.SignalsFile = *signalsFile
	}
	if *cacheDir != "" {
		cfg.Data.PriceCacheDir = *cacheDir
	}
	applyFlagOverrides(cfg, *startYear, *endYear, *minGap, *maxGap, *seed, *parallelism)

	strategy, err := resolveStrategy(cfg, *presetName)
	if err != nil {
		logger.Fatalf("resolve strategy: %v", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	signals, err := feed.LoadFile(cfg.Data.SignalsFile)
	if err != nil {
		logger.Fatalf("load signals: %v", err)
	}
	bars, err := cache.NewDir(cfg.Data.PriceCacheDir).LoadAll(signals.Tickers())
	if err != nil {
		logger.Fatalf("load price cache: %v", err)
	}
	prices := pricestore.New(bars)

	opts := robustness.Options{
		StartYear:   cfg.Robust.StartYear,
		EndYear:     cfg.Robust.EndYear,
		MinGapWeeks: cfg.Robust.MinGapWeeks,
		MaxGapWeeks: cfg.Robust.MaxGapWeeks,
		Seed:        cfg.Robust.Seed,
	}
	startDates, err := robustness.GenerateStartDates(opts)
	if err != nil {
		logger.Fatalf("generate start dates: %v", err)
	}

	end, err := resolveEnd(*endDate, prices)
	if err != nil {
		logger.Fatalf("resolve end date: %v", err)
	}

	usable := robustness.FilterStartDates(startDates, end, strategy.HoldingPeriodDays)
	if len(usable) == 0 {
		logger.Fatalf("no start date leaves 1.5 holding periods (%d days) before %s",
			strategy.HoldingPeriodDays*3/2, dates.Format(end))
	}
	if dropped := len(startDates) - len(usable); dropped > 0 {
		logger.Printf("Dropped %d start dates too close to %s", dropped, dates.Format(end))
	}
	startDates = usable

	logger.Printf("Running %d simulations: strategy=%q gaps=%d-%d weeks seed=%d end=%s",
		len(startDates), strategy.Name, opts.MinGapWeeks, opts.MaxGapWeeks, opts.Seed, dates.Format(end))

	harness := robustness.New(signals, prices)
	report, err := harness.Run(ctx, strategy, startDates, end, cfg.Robust.Parallelism)
	if err != nil {
		logger.Fatalf("monte carlo failed: %v", err)
	}

	if *persistRuns {
		if err := persist(ctx, *postgresDSN, *runMigrations, report, logger); err != nil {
			logger.Fatalf("persist: %v", err)
		}
	}

	if *outputPath != "" {
		output, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			logger.Fatalf("marshal report: %v", err)
		}
		if err := os.WriteFile(*outputPath, output, 0o644); err != nil {
			logger.Fatalf("write report: %v", err)
		}
		logger.Printf("Report written to %s", *outputPath)
	}

	printReport(report)
}

func resolveStrategy(cfg *config.Config, presetName string) (domain.StrategyConfig, error) {
	if presetName != "" {
		return config.PresetByName(presetName)
	}
	return cfg.Strategy.ToDomain()
}

func applyFlagOverrides(cfg *config.Config, startYear, endYear, minGap, maxGap int, seed int64, parallelism int) {
	if startYear > 0 {
		cfg.Robust.StartYear = startYear
	}
	if endYear > 0 {
		cfg.Robust.EndYear = endYear
	}
	if minGap > 0 {
		cfg.Robust.MinGapWeeks = minGap
	}
	if maxGap > 0 {
		cfg.Robust.MaxGapWeeks = maxGap
	}
	if seed != 0 {
		cfg.Robust.Seed = seed
	}
	if parallelism > 0 {
		cfg.Robust.Parallelism = parallelism
	}
}

// resolveEnd defaults the simulation end to the latest bar across all
// tickers.
func resolveEnd(endFlag string, prices *pricestore.Store) (time.Time, error) {
	if endFlag != "" {
		return dates.Parse(endFlag)
	}

	var end time.Time
	for _, ticker := range prices.Tickers() {
		if _, latest, ok := prices.LatestClose(ticker); ok && latest.After(end) {
			end = latest
		}
	}
	if end.IsZero() {
		return end, fmt.Errorf("price store is empty; pass --end explicitly")
	}
	return end, nil
}

func persist(ctx context.Context, dsn string, migrate bool, report *robustness.Report, logger *log.Logger) error {
	if dsn == "" {
		return fmt.Errorf("--postgres-dsn is required with --persist")
	}

	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	store := pgstore.NewRunStore(pool)
	for i := range report.Runs {
		if err := store.Insert(ctx, &report.Runs[i]); err != nil {
			return fmt.Errorf("insert run %s: %w", report.Runs[i].RunID, err)
		}
	}
	logger.Printf("Persisted %d run records", len(report.Runs))
	return nil
}

// printReport outputs the robustness assessment.
func printReport(r *robustness.Report) {
	fmt.Println()
	fmt.Println("=== Monte Carlo Results ===")
	fmt.Printf("Simulations:        %d\n", r.NumRuns)
	fmt.Println()

	fmt.Println("Total Return:")
	fmt.Printf("  Mean:             %+.1f%%  (std: %.1f%%)\n", r.TotalReturn.Mean*100, r.TotalReturn.Std*100)
	fmt.Printf("  Median:           %+.1f%%\n", r.TotalReturn.Median*100)
	fmt.Printf("  Range:            %+.1f%% to %+.1f%%\n", r.TotalReturn.Min*100, r.TotalReturn.Max*100)
	fmt.Printf("  10th-90th:        %+.1f%% to %+.1f%%\n", r.TotalReturn.P10*100, r.TotalReturn.P90*100)
	fmt.Printf("  25th-75th:        %+.1f%% to %+.1f%%\n", r.TotalReturn.P25*100, r.TotalReturn.P75*100)
	fmt.Println()

	fmt.Println("CAGR:")
	fmt.Printf("  Mean:             %+.1f%%  (std: %.1f%%)\n", r.CAGR.Mean*100, r.CAGR.Std*100)
	fmt.Printf("  10th-90th:        %+.1f%% to %+.1f%%\n", r.CAGR.P10*100, r.CAGR.P90*100)
	fmt.Println()

	fmt.Println("Max Drawdown:")
	fmt.Printf("  Mean:             %.1f%%\n", r.MaxDrawdown.Mean*100)
	fmt.Printf("  Worst:            %.1f%%\n", r.MaxDrawdown.Max*100)
	fmt.Println()

	fmt.Println("Individual Runs:")
	fmt.Printf("  %-12s %10s %8s %8s %8s %12s\n", "Start", "Return", "CAGR", "MaxDD", "Trades", "Final$")
	for _, run := range r.Runs {
		fmt.Printf("  %-12s %+9.1f%% %+7.1f%% %7.1f%% %8d %12.0f\n",
			dates.Format(run.StartDate), run.TotalReturn*100, run.CAGR*100,
			run.MaxDrawdown*100, run.TotalTrades, run.FinalValue)
	}
	fmt.Println()

	fmt.Println("Robustness:")
	fmt.Printf("  Profitable runs:  %d/%d (%.1f%%)\n", r.ProfitableRuns, r.NumRuns, r.ProfitablePct*100)
	if r.Consistency != "" {
		fmt.Printf("  Consistency:      %s (CV = %.2f)\n", r.Consistency, r.CV)
	}
	if r.WorstReturn > 0 {
		fmt.Printf("  Worst case still profitable: YES (%+.1f%%)\n", r.WorstReturn*100)
	} else {
		fmt.Printf("  Worst case still profitable: NO (%+.1f%%)\n", r.WorstReturn*100)
	}
	if r.ReturnToDrawdown > 0 {
		fmt.Printf("  Return/Drawdown:  %.2f\n", r.ReturnToDrawdown)
	}
}
