package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"stock-signal-lab/internal/cache"
	"stock-signal-lab/internal/config"
	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/feed"
	"stock-signal-lab/internal/pricestore"
	"stock-signal-lab/internal/strict"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "TOML config file path")
	signalsFile := flag.String("signals", "", "Signals JSON file (overrides config)")
	cacheDir := flag.String("cache-dir", "", "Price cache directory (overrides config)")

	holdingDays := flag.Int("holding-days", 365, "Holding period in days")
	stopLoss := flag.Float64("stop-loss", 0.25, "Stop loss fraction (0.25 = -25%)")
	minScore := flag.Int("min-score", 5, "Minimum signal score")
	maxScore := flag.Int("max-score", 7, "Maximum signal score")

	printTrades := flag.Bool("print-trades", false, "Print every validated trade")
	outputJSON := flag.Bool("json", false, "Output result as JSON")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[strict] ", log.LstdFlags)

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

	signals, err := feed.LoadFile(cfg.Data.SignalsFile)
	if err != nil {
		logger.Fatalf("load signals: %v", err)
	}
	bars, err := cache.NewDir(cfg.Data.PriceCacheDir).LoadAll(signals.Tickers())
	if err != nil {
		logger.Fatalf("load price cache: %v", err)
	}
	prices := pricestore.New(bars)

	strictCfg := strict.Config{
		HoldingDays: *holdingDays,
		StopLossPct: *stopLoss,
		MinScore:    *minScore,
		MaxScore:    *maxScore,
	}

	logger.Printf("Strict analysis: signals=%d scores=%d-%d hold=%dd stop=-%.0f%%",
		signals.Len(), strictCfg.MinScore, strictCfg.MaxScore, strictCfg.HoldingDays, strictCfg.StopLossPct*100)

	result := strict.New(signals, prices).Analyze(strictCfg)

	if *outputJSON {
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Fatalf("marshal result: %v", err)
		}
		fmt.Println(string(output))
		return
	}

	printResult(result)
	if *printTrades {
		printTradeTable(result)
	}
}

// printResult outputs the validation and performance breakdown.
func printResult(r *strict.Result) {
	fmt.Println()
	fmt.Println("=== Strict Validation ===")
	fmt.Printf("Total signals:      %d\n", r.TotalSignals)
	fmt.Printf("After score filter: %d\n", r.FilteredSignals)
	fmt.Printf("Valid trades:       %d (%d closed, %d open)\n", len(r.Trades), r.ClosedTrades, r.OpenTrades)
	fmt.Printf("Dropped:            %d\n", len(r.Dropped))

	if len(r.DroppedByReason) > 0 {
		reasons := make([]string, 0, len(r.DroppedByReason))
		for reason := range r.DroppedByReason {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Printf("  %-24s%d\n", reason+":", r.DroppedByReason[reason])
		}
	}

	if len(r.Trades) == 0 {
		fmt.Println()
		fmt.Println("No valid trades.")
		return
	}

	fmt.Println()
	fmt.Println("Performance (closed trades only):")
	fmt.Printf("  Avg Return:       %+.1f%%\n", r.AvgReturnClosed*100)
	fmt.Printf("  Win Rate:         %.1f%%\n", r.WinRateClosed*100)

	fmt.Println()
	fmt.Println("Performance (all trades, open at latest price):")
	fmt.Printf("  Avg Return:       %+.1f%%\n", r.AvgReturnAll*100)
	fmt.Printf("  Win Rate:         %.1f%% (%dW / %dL)\n", r.WinRateAll*100, r.Winners, r.Losers)
	fmt.Printf("  Avg Win:          %+.1f%%\n", r.AvgWin*100)
	fmt.Printf("  Avg Loss:         %+.1f%%\n", r.AvgLoss*100)
	fmt.Printf("  Best:             %+.1f%%\n", r.BestReturn*100)
	fmt.Printf("  Worst:            %+.1f%%\n", r.WorstReturn*100)

	fmt.Println()
	fmt.Println("Exit reasons:")
	fmt.Printf("  Stop loss:        %d (%.1f%% of closed)\n", r.StopLossCount, r.StopLossPctOfClosed*100)
	fmt.Printf("  Time:             %d\n", r.TimeExitCount)
	fmt.Printf("  Open:             %d\n", r.OpenTrades)
}

// printTradeTable outputs every validated trade as a table.
func printTradeTable(r *strict.Result) {
	fmt.Println()
	fmt.Printf("All Trades (%d):\n", len(r.Trades))
	fmt.Printf("%-12s %-12s %-8s %5s %10s %10s %10s %6s %-10s\n",
		"Entry", "Exit", "Ticker", "Score", "Entry$", "Exit$", "Return", "Days", "Reason")

	for _, t := range r.Trades {
		fmt.Printf("%-12s %-12s %-8s %5d %10.2f %10.2f %+9.1f%% %6d %-10s\n",
			dates.Format(t.EntryDate), dates.Format(t.ExitDate), t.Ticker, t.Score,
			t.EntryPrice, t.ExitPrice, t.ReturnPct*100, t.DaysHeld, t.ExitReason)
	}
}
