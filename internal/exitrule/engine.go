// Package exitrule decides when an open position must close.
//
// Rules are evaluated in fixed precedence: stop loss, trailing stop, take
// profit, then the time exit. The precedence is part of the strategy's
// meaning: a position that breached its stop earlier in the window exits as
// a stop even if its holding period also expired.
package exitrule

import (
	"time"

	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/pricestore"
)

// Decision is the outcome of one evaluation. Zero value means hold.
type Decision struct {
	Exit   bool
	Reason string
	Price  float64
	Date   time.Time
}

func hold() Decision {
	return Decision{}
}

func exit(reason string, price float64, date time.Time) Decision {
	return Decision{Exit: true, Reason: reason, Price: price, Date: date}
}

// Engine evaluates exit rules against real bar data.
type Engine struct {
	prices *pricestore.Store
}

// New creates an exit rule engine over the given price store.
func New(prices *pricestore.Store) *Engine {
	return &Engine{prices: prices}
}

// Evaluate checks whether the position should close as of the given day.
// The whole holding window [entry, asOf] is rescanned so an intraday breach
// is attributed to the day it happened, not the day it was noticed.
// With no bar data in the window the position holds; the driver applies its
// own fallback at the end of the run.
func (e *Engine) Evaluate(p *domain.Position, cfg *domain.StrategyConfig, asOf time.Time) Decision {
	window := e.prices.Range(p.Ticker, p.EntryDate, asOf)
	if len(window) == 0 {
		return hold()
	}

	if cfg.StopLossPct > 0 {
		if d, ok := e.checkStopLoss(p, cfg, window); ok {
			return d
		}
	}
	if cfg.TrailingStopPct > 0 {
		if d, ok := e.checkTrailingStop(p, cfg, window); ok {
			return d
		}
	}
	if cfg.TakeProfitPct > 0 {
		if d, ok := e.checkTakeProfit(p, cfg, window); ok {
			return d
		}
	}
	if dates.DaysBetween(p.EntryDate, asOf) >= cfg.HoldingPeriodDays {
		if d, ok := e.checkTimeExit(p, cfg, window, asOf); ok {
			return d
		}
	}

	return hold()
}

// checkStopLoss fires on the first day whose low breaches the stop level.
// The fill is the stop price itself, not the day's low.
func (e *Engine) checkStopLoss(p *domain.Position, cfg *domain.StrategyConfig, window []domain.PriceBar) (Decision, bool) {
	for _, day := range window {
		if day.Low <= 0 {
			continue
		}
		pnlFromLow := (day.Low - p.EntryPrice) / p.EntryPrice
		if pnlFromLow <= -cfg.StopLossPct {
			stopPrice := p.EntryPrice * (1 - cfg.StopLossPct)
			return exit(domain.ExitReasonStopLoss, stopPrice, day.Date), true
		}
	}
	return hold(), false
}

// checkTrailingStop tracks the running peak of highs and fires when a low
// gives back the configured fraction from that peak.
func (e *Engine) checkTrailingStop(p *domain.Position, cfg *domain.StrategyConfig, window []domain.PriceBar) (Decision, bool) {
	peak := p.EntryPrice
	for _, day := range window {
		if day.High > peak {
			peak = day.High
		}
		if day.Low <= 0 || peak <= 0 {
			continue
		}
		drawdown := (peak - day.Low) / peak
		if drawdown >= cfg.TrailingStopPct {
			trailPrice := peak * (1 - cfg.TrailingStopPct)
			return exit(domain.ExitReasonTrailingStop, trailPrice, day.Date), true
		}
	}
	return hold(), false
}

// checkTakeProfit fires on the first day whose high reaches the target.
func (e *Engine) checkTakeProfit(p *domain.Position, cfg *domain.StrategyConfig, window []domain.PriceBar) (Decision, bool) {
	for _, day := range window {
		if day.High <= 0 {
			continue
		}
		pnlFromHigh := (day.High - p.EntryPrice) / p.EntryPrice
		if pnlFromHigh >= cfg.TakeProfitPct {
			targetPrice := p.EntryPrice * (1 + cfg.TakeProfitPct)
			return exit(domain.ExitReasonTakeProfit, targetPrice, day.Date), true
		}
	}
	return hold(), false
}

// checkTimeExit closes at the close of the scheduled exit day. When that day
// has no bar, the latest close in the window stands in; failing that, the
// position's last marked price as of the evaluation day.
func (e *Engine) checkTimeExit(p *domain.Position, cfg *domain.StrategyConfig, window []domain.PriceBar, asOf time.Time) (Decision, bool) {
	exitDate := dates.AddDays(p.EntryDate, cfg.HoldingPeriodDays)

	if price, ok := e.prices.CloseOnDate(p.Ticker, exitDate); ok {
		return exit(domain.ExitReasonTime, price, exitDate), true
	}

	for i := len(window) - 1; i >= 0; i-- {
		if window[i].Close > 0 {
			return exit(domain.ExitReasonTime, window[i].Close, window[i].Date), true
		}
	}

	if p.CurrentPrice > 0 {
		return exit(domain.ExitReasonTime, p.CurrentPrice, asOf), true
	}
	return hold(), false
}
