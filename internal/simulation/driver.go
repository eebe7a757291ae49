// Package simulation replays scored signals day by day against real price
// history and produces a complete run result.
//
// The loop per calendar day:
//
//  1. evaluate exits for every open position and close the triggered ones
//  2. on the weekly entry day, open positions for that week's signals
//  3. mark open positions to market at the day's close
//  4. on the entry day, sample the equity curve
//
// Whatever is still open when the window ends is force-closed at its last
// marked price so every run accounts for all capital.
package simulation

import (
	"time"

	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/exitrule"
	"stock-signal-lab/internal/feed"
	"stock-signal-lab/internal/idhash"
	"stock-signal-lab/internal/ledger"
	"stock-signal-lab/internal/metrics"
	"stock-signal-lab/internal/pricestore"
	"stock-signal-lab/internal/sizing"
)

// Driver runs simulations over a fixed feed and price store. Safe for
// concurrent Run calls: all mutable state lives inside each run.
type Driver struct {
	signals *feed.Feed
	prices  *pricestore.Store
	exits   *exitrule.Engine
}

// New creates a simulation driver.
func New(signals *feed.Feed, prices *pricestore.Store) *Driver {
	return &Driver{
		signals: signals,
		prices:  prices,
		exits:   exitrule.New(prices),
	}
}

// Run replays [start, end] under the given strategy.
func (d *Driver) Run(cfg domain.StrategyConfig, start, end time.Time) (*domain.SimulationResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start = dates.Truncate(start)
	end = dates.Truncate(end)

	result := &domain.SimulationResult{
		Config:    cfg,
		StartDate: start,
		EndDate:   end,
	}
	book := ledger.New(cfg.InitialCapital)

	for day := start; !day.After(end); day = dates.AddDays(day, 1) {
		d.processExits(book, &cfg, day, result)

		if day.Weekday() == cfg.EntryWeekday {
			d.processEntries(book, &cfg, day, start, result)
		}

		book.MarkToMarket(day, d.prices.CloseOnDate)

		if day.Weekday() == cfg.EntryWeekday {
			result.EquityCurve = append(result.EquityCurve, domain.EquityPoint{
				Date:  day,
				Value: book.PortfolioValue(),
			})
		}
	}

	d.forceCloseAll(book, end, result)

	result.Summary = metrics.Analyze(cfg.InitialCapital, result.EquityCurve, result.ClosedPositions)
	return result, nil
}

// processExits evaluates every open position and closes the triggered ones.
// Decisions are collected first so closing cannot disturb iteration.
func (d *Driver) processExits(book *ledger.Ledger, cfg *domain.StrategyConfig, day time.Time, result *domain.SimulationResult) {
	type pending struct {
		ticker   string
		decision exitrule.Decision
	}

	var toClose []pending
	for _, p := range book.Positions() {
		decision := d.exits.Evaluate(p, cfg, day)
		if decision.Exit {
			toClose = append(toClose, pending{p.Ticker, decision})
		}
	}

	for _, pc := range toClose {
		closed, err := book.Close(pc.ticker, pc.decision.Date, pc.decision.Price, pc.decision.Reason)
		if err != nil {
			continue
		}
		closed.TradeID = idhash.ComputeTradeID(closed.Ticker, closed.EntryDate, closed.ExitDate, closed.ExitReason)
		result.ClosedPositions = append(result.ClosedPositions, closed)
	}
}

// processEntries opens positions for this week's signals, tracking every
// rejection by reason.
func (d *Driver) processEntries(book *ledger.Ledger, cfg *domain.StrategyConfig, day, runStart time.Time, result *domain.SimulationResult) {
	for _, sig := range d.signals.WeekWindow(day) {
		sig := sig
		if sig.EffectiveEntryDate().Before(runStart) {
			continue
		}
		result.SignalsConsidered++

		if book.HasPosition(sig.Ticker) {
			result.SkippedDuplicate++
			continue
		}
		if sig.Score < cfg.MinScore || sig.Score > cfg.MaxScore {
			result.SkippedScoreFilter++
			continue
		}
		if sig.EntryPrice <= 0 {
			result.SkippedNoPrice++
			continue
		}

		size := sizing.Size(cfg, book.Cash(), book.PortfolioValue(), &sig, book.OpenCount())
		if size <= 0 {
			result.SkippedCapital++
			continue
		}
		shares := sizing.Shares(size, sig.EntryPrice)
		if shares <= 0 {
			result.SkippedCapital++
			continue
		}
		cost := float64(shares) * sig.EntryPrice
		if cost > book.Cash() {
			result.SkippedCapital++
			continue
		}

		err := book.Open(&domain.Position{
			Ticker:       sig.Ticker,
			EntryDate:    sig.EffectiveEntryDate(),
			EntryPrice:   sig.EntryPrice,
			Shares:       shares,
			CostBasis:    cost,
			Score:        sig.Score,
			SignalDate:   sig.SignalDate,
			PeakPrice:    sig.EntryPrice,
			CurrentPrice: sig.EntryPrice,
		})
		if err != nil {
			result.SkippedCapital++
		}
	}
}

// forceCloseAll liquidates everything still open at the last marked price.
func (d *Driver) forceCloseAll(book *ledger.Ledger, end time.Time, result *domain.SimulationResult) {
	for _, p := range book.Positions() {
		price := p.CurrentPrice
		if price <= 0 {
			price = p.EntryPrice
		}
		closed, err := book.Close(p.Ticker, end, price, domain.ExitReasonEndOfSim)
		if err != nil {
			continue
		}
		closed.TradeID = idhash.ComputeTradeID(closed.Ticker, closed.EntryDate, closed.ExitDate, closed.ExitReason)
		result.ClosedPositions = append(result.ClosedPositions, closed)
	}
}
