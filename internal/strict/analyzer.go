// Package strict re-evaluates signals under hard data-quality rules. The
// regular simulation trusts the signal's recorded entry price; this variant
// only admits trades whose prices can be verified against actual bars, and
// reports exactly what was dropped and why. The two views bracket the
// strategy: simulated performance versus performance on provable data.
package strict

import (
	"sort"
	"time"

	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/feed"
	"stock-signal-lab/internal/metrics"
	"stock-signal-lab/internal/pricestore"
)

// Drop reason codes.
const (
	DropNoEntryPrice         = "no_entry_price"
	DropNoPriceData          = "no_price_data"
	DropInsufficientCoverage = "insufficient_coverage"
)

const (
	// entryWindowDays is how far from the nominal entry date a real close
	// may be and still anchor the trade.
	entryWindowDays = 5

	// minCoverage is the fraction of expected trading days that must have
	// bars between entry and the effective end. Catches delistings and
	// gaps in the middle of the holding period.
	minCoverage = 0.3
)

// Config holds the strict evaluation knobs.
type Config struct {
	HoldingDays int
	StopLossPct float64
	MinScore    int
	MaxScore    int
}

// DefaultConfig mirrors the reference strategy: 12-month hold, -25% stop,
// scores 5 through 7.
func DefaultConfig() Config {
	return Config{
		HoldingDays: 365,
		StopLossPct: 0.25,
		MinScore:    5,
		MaxScore:    7,
	}
}

// Trade is one validated round trip. Unlike the simulation's ledger, the
// strict analyzer sizes nothing: each trade is a unit bet measured by
// return percentage alone.
type Trade struct {
	Ticker     string
	Score      int
	EntryDate  time.Time
	EntryPrice float64
	ExitDate   time.Time
	ExitPrice  float64
	DaysHeld   int
	ReturnPct  float64
	ExitReason string
}

// DroppedSignal records one rejected signal and the rule that rejected it.
type DroppedSignal struct {
	Ticker    string
	EntryDate time.Time
	Reason    string
}

// Result is the full strict evaluation: validated trades, the drop list,
// and summary statistics split closed-versus-all.
type Result struct {
	TotalSignals    int
	FilteredSignals int

	Trades  []Trade
	Dropped []DroppedSignal

	DroppedByReason map[string]int

	ClosedTrades int
	OpenTrades   int

	AvgReturnClosed float64
	AvgReturnAll    float64
	WinRateClosed   float64
	WinRateAll      float64
	Winners         int
	Losers          int
	AvgWin          float64
	AvgLoss         float64
	BestReturn      float64
	WorstReturn     float64

	StopLossCount       int
	TimeExitCount       int
	StopLossPctOfClosed float64
}

// Analyzer evaluates a feed against a price store under strict rules.
type Analyzer struct {
	signals *feed.Feed
	prices  *pricestore.Store
}

// New creates a strict analyzer.
func New(signals *feed.Feed, prices *pricestore.Store) *Analyzer {
	return &Analyzer{signals: signals, prices: prices}
}

// Analyze validates every score-filtered signal and computes summary
// statistics. Signals failing validation land in the drop list instead of
// the trade list; nothing errors, absence of data is the finding itself.
func (a *Analyzer) Analyze(cfg Config) *Result {
	res := &Result{
		TotalSignals:    a.signals.Len(),
		DroppedByReason: make(map[string]int),
	}

	filtered := a.signals.FilterScore(cfg.MinScore, cfg.MaxScore)
	res.FilteredSignals = len(filtered)

	for _, sig := range filtered {
		trade, dropped := a.evaluate(&sig, cfg)
		if dropped != nil {
			res.Dropped = append(res.Dropped, *dropped)
			res.DroppedByReason[dropped.Reason]++
			continue
		}
		res.Trades = append(res.Trades, *trade)
	}

	sort.Slice(res.Trades, func(i, j int) bool {
		if !res.Trades[i].EntryDate.Equal(res.Trades[j].EntryDate) {
			return res.Trades[i].EntryDate.Before(res.Trades[j].EntryDate)
		}
		return res.Trades[i].Ticker < res.Trades[j].Ticker
	})

	summarize(res)
	return res
}

// evaluate runs one signal through the validation gauntlet. Returns a
// trade or a drop record, never both.
func (a *Analyzer) evaluate(sig *domain.Signal, cfg Config) (*Trade, *DroppedSignal) {
	ticker := sig.Ticker
	entryDate := sig.EffectiveEntryDate()

	entryPrice, actualEntry, ok := a.prices.CloseWithinWindow(ticker, entryDate, entryWindowDays)
	if !ok {
		return nil, &DroppedSignal{Ticker: ticker, EntryDate: entryDate, Reason: DropNoEntryPrice}
	}

	// The schedule re-anchors on the bar actually used for entry.
	scheduledExit := dates.AddDays(actualEntry, cfg.HoldingDays)

	latestClose, latestDate, ok := a.prices.LatestClose(ticker)
	if !ok {
		return nil, &DroppedSignal{Ticker: ticker, EntryDate: entryDate, Reason: DropNoPriceData}
	}

	effectiveEnd := scheduledExit
	if latestDate.Before(effectiveEnd) {
		effectiveEnd = latestDate
	}

	if a.prices.CoverageRatio(ticker, actualEntry, effectiveEnd) < minCoverage {
		return nil, &DroppedSignal{Ticker: ticker, EntryDate: entryDate, Reason: DropInsufficientCoverage}
	}

	exitDate, exitPrice, reason := a.resolveExit(ticker, actualEntry, entryPrice, scheduledExit, effectiveEnd, latestClose, latestDate, cfg)

	return &Trade{
		Ticker:     ticker,
		Score:      sig.Score,
		EntryDate:  actualEntry,
		EntryPrice: entryPrice,
		ExitDate:   exitDate,
		ExitPrice:  exitPrice,
		DaysHeld:   dates.DaysBetween(actualEntry, exitDate),
		ReturnPct:  (exitPrice - entryPrice) / entryPrice,
		ExitReason: reason,
	}, nil
}

// resolveExit decides how the trade ended: stop first, then the scheduled
// time exit, otherwise the position is still open at the latest price.
func (a *Analyzer) resolveExit(ticker string, entry time.Time, entryPrice float64, scheduledExit, effectiveEnd time.Time, latestClose float64, latestDate time.Time, cfg Config) (time.Time, float64, string) {
	if cfg.StopLossPct > 0 {
		stopPrice := entryPrice * (1 - cfg.StopLossPct)
		for _, bar := range a.prices.Range(ticker, entry, effectiveEnd) {
			if bar.Low > 0 && bar.Low <= stopPrice {
				return bar.Date, stopPrice, domain.ExitReasonStopLoss
			}
		}
	}

	if exitPrice, actualExit, ok := a.prices.CloseWithinWindow(ticker, scheduledExit, entryWindowDays); ok {
		return actualExit, exitPrice, domain.ExitReasonTime
	}

	return latestDate, latestClose, domain.ExitReasonOpen
}

func summarize(res *Result) {
	if len(res.Trades) == 0 {
		return
	}

	var allReturns, closedReturns, winReturns, lossReturns []float64
	var closedWinners int

	for _, t := range res.Trades {
		allReturns = append(allReturns, t.ReturnPct)

		if t.ReturnPct > 0 {
			res.Winners++
			winReturns = append(winReturns, t.ReturnPct)
		} else {
			res.Losers++
			lossReturns = append(lossReturns, t.ReturnPct)
		}

		switch t.ExitReason {
		case domain.ExitReasonStopLoss:
			res.StopLossCount++
		case domain.ExitReasonTime:
			res.TimeExitCount++
		}

		if t.ExitReason == domain.ExitReasonOpen {
			res.OpenTrades++
		} else {
			res.ClosedTrades++
			closedReturns = append(closedReturns, t.ReturnPct)
			if t.ReturnPct > 0 {
				closedWinners++
			}
		}
	}

	res.AvgReturnAll = metrics.Mean(allReturns)
	res.AvgReturnClosed = metrics.Mean(closedReturns)
	res.AvgWin = metrics.Mean(winReturns)
	res.AvgLoss = metrics.Mean(lossReturns)
	res.WinRateAll = float64(res.Winners) / float64(len(res.Trades))
	if res.ClosedTrades > 0 {
		res.WinRateClosed = float64(closedWinners) / float64(res.ClosedTrades)
		res.StopLossPctOfClosed = float64(res.StopLossCount) / float64(res.ClosedTrades)
	}

	res.BestReturn = allReturns[0]
	res.WorstReturn = allReturns[0]
	for _, r := range allReturns[1:] {
		if r > res.BestReturn {
			res.BestReturn = r
		}
		if r < res.WorstReturn {
			res.WorstReturn = r
		}
	}
}
