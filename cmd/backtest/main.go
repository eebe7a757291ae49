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
	"stock-signal-lab/internal/reporting"
	"stock-signal-lab/internal/robustness"
	"stock-signal-lab/internal/simulation"
	"stock-signal-lab/internal/storage/migrations"
	pgstore "stock-signal-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "TOML config file path")
	presetName := flag.String("preset", "", "Named strategy preset (overrides config strategy)")
	signalsFile := flag.String("signals", "", "Signals JSON file (overrides config)")
	cacheDir := flag.String("cache-dir", "", "Price cache directory (overrides config)")
	startDate := flag.String("start", "", "Simulation start date YYYY-MM-DD (default: first signal)")
	endDate := flag.String("end", "", "Simulation end date YYYY-MM-DD (default: last price bar)")

	// Output
	outputJSON := flag.Bool("json", false, "Output result as JSON")
	reportPath := flag.String("report", "", "Write markdown report to this path")
	tradesCSV := flag.String("trades-csv", "", "Write closed trades CSV to this path")

	// Persistence
	persistResult := flag.Bool("persist", false, "Persist run and trades to PostgreSQL")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (required with --persist)")
	runMigrations := flag.Bool("migrate", false, "Run postgres migrations before persisting")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

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

	strategy, err := resolveStrategy(cfg, *presetName)
	if err != nil {
		logger.Fatalf("resolve strategy: %v", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	signals, prices, err := loadData(cfg, logger)
	if err != nil {
		logger.Fatalf("load data: %v", err)
	}

	start, end, err := resolveWindow(*startDate, *endDate, signals, prices)
	if err != nil {
		logger.Fatalf("resolve window: %v", err)
	}

	logger.Printf("Running backtest: strategy=%q window=%s..%s signals=%d tickers=%d",
		strategy.Name, dates.Format(start), dates.Format(end), signals.Len(), len(prices.Tickers()))

	driver := simulation.New(signals, prices)
	result, err := driver.Run(strategy, start, end)
	if err != nil {
		logger.Fatalf("backtest failed: %v", err)
	}

	if *persistResult {
		if err := persist(ctx, *postgresDSN, *runMigrations, result, logger); err != nil {
			logger.Fatalf("persist: %v", err)
		}
	}

	if *reportPath != "" {
		md := reporting.RenderResultMarkdown(result)
		if err := os.WriteFile(*reportPath, []byte(md), 0o644); err != nil {
			logger.Fatalf("write report: %v", err)
		}
		logger.Printf("Markdown report written to %s", *reportPath)
	}
	if *tradesCSV != "" {
		csv := reporting.RenderTradesCSV(result.ClosedPositions)
		if err := os.WriteFile(*tradesCSV, []byte(csv), 0o644); err != nil {
			logger.Fatalf("write trades csv: %v", err)
		}
		logger.Printf("Trades CSV written to %s", *tradesCSV)
	}

	if *outputJSON {
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Fatalf("marshal result: %v", err)
		}
		fmt.Println(string(output))
	} else {
		printSummary(result)
	}
}

// resolveStrategy picks a named preset when given, otherwise the config's
// strategy block.
func resolveStrategy(cfg *config.Config, presetName string) (domain.StrategyConfig, error) {
	if presetName != "" {
		return config.PresetByName(presetName)
	}
	return cfg.Strategy.ToDomain()
}

// loadData reads the signal feed and fills a price store from the cache
// directory for every ticker the feed references.
func loadData(cfg *config.Config, logger *log.Logger) (*feed.Feed, *pricestore.Store, error) {
	signals, err := feed.LoadFile(cfg.Data.SignalsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load signals: %w", err)
	}

	dir := cache.NewDir(cfg.Data.PriceCacheDir)
	bars, err := dir.LoadAll(signals.Tickers())
	if err != nil {
		return nil, nil, fmt.Errorf("load price cache: %w", err)
	}

	prices := pricestore.New(bars)
	missing := 0
	for _, ticker := range signals.Tickers() {
		if !prices.HasTicker(ticker) {
			missing++
		}
	}
	if missing > 0 {
		logger.Printf("Warning: no price data for %d of %d tickers", missing, len(signals.Tickers()))
	}
	return signals, prices, nil
}

// resolveWindow turns the optional start/end flags into concrete dates,
// defaulting to the feed's first signal and the feed's last signal date.
func resolveWindow(startFlag, endFlag string, signals *feed.Feed, prices *pricestore.Store) (start, end time.Time, err error) {
	first, last, ok := signals.DateBounds()
	if !ok {
		return start, end, fmt.Errorf("signal feed is empty")
	}

	start = first
	if startFlag != "" {
		if start, err = dates.Parse(startFlag); err != nil {
			return start, end, err
		}
	}

	end = last
	for _, ticker := range prices.Tickers() {
		if _, latest, ok := prices.LatestClose(ticker); ok && latest.After(end) {
			end = latest
		}
	}
	if endFlag != "" {
		if end, err = dates.Parse(endFlag); err != nil {
			return start, end, err
		}
	}

	if end.Before(start) {
		return start, end, fmt.Errorf("end %s precedes start %s", dates.Format(end), dates.Format(start))
	}
	return start, end, nil
}

// persist stores the run record and its closed positions in PostgreSQL.
func persist(ctx context.Context, dsn string, migrate bool, result *domain.SimulationResult, logger *log.Logger) error {
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

	record := robustness.RecordFromResult(result.Config.Name, result)
	if err := pgstore.NewRunStore(pool).Insert(ctx, record); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	if err := pgstore.NewClosedPositionStore(pool).InsertBulk(ctx, record.RunID, result.ClosedPositions); err != nil {
		return fmt.Errorf("insert trades: %w", err)
	}

	logger.Printf("Persisted run %s with %d trades", record.RunID, len(result.ClosedPositions))
	return nil
}

// printSummary outputs a human-readable run summary.
func printSummary(result *domain.SimulationResult) {
	s := result.Summary

	fmt.Println()
	fmt.Println("=== Backtest Result ===")
	fmt.Printf("Strategy:           %s\n", result.Config.Name)
	fmt.Printf("Window:             %s to %s\n", dates.Format(result.StartDate), dates.Format(result.EndDate))
	fmt.Println()

	fmt.Println("Performance:")
	fmt.Printf("  Initial Capital:  $%.2f\n", result.Config.InitialCapital)
	fmt.Printf("  Final Value:      $%.2f\n", s.FinalValue)
	fmt.Printf("  Total Return:     %+.2f%%\n", s.TotalReturn*100)
	fmt.Printf("  CAGR:             %+.2f%%\n", s.CAGR*100)
	fmt.Printf("  Max Drawdown:     %.2f%%\n", s.MaxDrawdown*100)
	fmt.Println()

	fmt.Println("Trades:")
	fmt.Printf("  Total:            %d (%dW / %dL)\n", s.TotalTrades, s.WinningTrades, s.LosingTrades)
	fmt.Printf("  Win Rate:         %.1f%%\n", s.WinRate*100)
	fmt.Printf("  Avg Win:          %+.1f%%\n", s.AvgWinPct*100)
	fmt.Printf("  Avg Loss:         %+.1f%%\n", s.AvgLossPct*100)
	fmt.Printf("  Profit Factor:    %.2f\n", s.ProfitFactorCapped())
	fmt.Printf("  Long-Term:        %d (%.1f%%)\n", s.LongTermTrades, s.LongTermPct*100)
	fmt.Println()

	fmt.Println("Exit Reasons:")
	for _, reason := range []string{
		domain.ExitReasonStopLoss,
		domain.ExitReasonTrailingStop,
		domain.ExitReasonTakeProfit,
		domain.ExitReasonTime,
		domain.ExitReasonEndOfSim,
	} {
		if count := s.ExitReasonCounts[reason]; count > 0 {
			fmt.Printf("  %-16s%d\n", reason+":", count)
		}
	}
	fmt.Println()

	fmt.Println("Signal Audit:")
	fmt.Printf("  Considered:       %d\n", result.SignalsConsidered)
	fmt.Printf("  Skipped:          %d duplicate, %d score, %d no price, %d capital\n",
		result.SkippedDuplicate, result.SkippedScoreFilter, result.SkippedNoPrice, result.SkippedCapital)
}
