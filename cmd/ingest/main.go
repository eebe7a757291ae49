package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"stock-signal-lab/internal/cache"
	"stock-signal-lab/internal/config"
	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/feed"
	"stock-signal-lab/internal/storage"
	chstore "stock-signal-lab/internal/storage/clickhouse"
	"stock-signal-lab/internal/storage/memory"
	"stock-signal-lab/internal/storage/migrations"
	pgstore "stock-signal-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "TOML config file path")
	signalsFile := flag.String("signals", "", "Signals JSON file (overrides config)")
	cacheDir := flag.String("cache-dir", "", "Price cache directory (overrides config)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (signals)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (price bars)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage (dry run)")
	runMigrations := flag.Bool("migrate", false, "Run migrations before ingesting")
	skipSignals := flag.Bool("skip-signals", false, "Skip signal ingestion")
	skipPrices := flag.Bool("skip-prices", false, "Skip price bar ingestion")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[ingest] ", log.LstdFlags)

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
	if *postgresDSN != "" {
		cfg.Storage.PostgresDSN = *postgresDSN
	}
	if *clickhouseDSN != "" {
		cfg.Storage.ClickHouseDSN = *clickhouseDSN
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

	migrate := *runMigrations || cfg.Storage.RunMigrations
	signalStore, barStore, cleanup, err := createStores(ctx, cfg, *useMemory, migrate)
	if err != nil {
		logger.Fatalf("create stores: %v", err)
	}
	defer cleanup()

	if !*skipSignals {
		if err := ingestSignals(ctx, cfg.Data.SignalsFile, signalStore, logger); err != nil {
			logger.Fatalf("ingest signals: %v", err)
		}
	}
	if !*skipPrices {
		if err := ingestPrices(ctx, cfg, barStore, logger); err != nil {
			logger.Fatalf("ingest prices: %v", err)
		}
	}

	logger.Println("Ingestion complete")
}

// createStores wires the signal and price-bar stores: postgres and
// clickhouse normally, memory for dry runs.
func createStores(ctx context.Context, cfg *config.Config, useMemory, migrate bool) (storage.SignalStore, storage.PriceBarStore, func(), error) {
	if useMemory {
		return memory.NewSignalStore(), memory.NewPriceBarStore(), func() {}, nil
	}

	if cfg.Storage.PostgresDSN == "" || cfg.Storage.ClickHouseDSN == "" {
		return nil, nil, nil, fmt.Errorf("postgres and clickhouse DSNs are required without --use-memory")
	}

	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
	}

	var conn *chstore.Conn
	if migrate {
		conn, err = migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickHouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
	} else {
		conn, err = chstore.NewConn(ctx, cfg.Storage.ClickHouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
	}

	cleanup := func() {
		pool.Close()
		conn.Close()
	}
	return pgstore.NewSignalStore(pool), chstore.NewPriceBarStore(conn), cleanup, nil
}

// ingestSignals loads the feed file and bulk-inserts every signal.
func ingestSignals(ctx context.Context, path string, store storage.SignalStore, logger *log.Logger) error {
	signals, err := feed.LoadFile(path)
	if err != nil {
		return err
	}

	all := signals.All()
	batch := make([]*domain.Signal, len(all))
	for i := range all {
		batch[i] = &all[i]
	}

	if err := store.InsertBulk(ctx, batch); err != nil {
		return err
	}
	logger.Printf("Ingested %d signals from %s", len(batch), path)
	return nil
}

// ingestPrices loads the cache directory for every ticker the feed
// references and bulk-inserts each series.
func ingestPrices(ctx context.Context, cfg *config.Config, store storage.PriceBarStore, logger *log.Logger) error {
	signals, err := feed.LoadFile(cfg.Data.SignalsFile)
	if err != nil {
		return err
	}

	series, err := cache.NewDir(cfg.Data.PriceCacheDir).LoadAll(signals.Tickers())
	if err != nil {
		return err
	}

	total := 0
	for ticker, bars := range series {
		batch := make([]*domain.PriceBar, len(bars))
		for i := range bars {
			batch[i] = &bars[i]
		}
		if err := store.InsertBulk(ctx, batch); err != nil {
			return fmt.Errorf("insert bars for %s: %w", ticker, err)
		}
		total += len(batch)
	}
	logger.Printf("Ingested %d price bars for %d tickers", total, len(series))
	return nil
}
