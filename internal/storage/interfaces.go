package storage

import (
	"context"
	"time"

	"stock-signal-lab/internal/domain"
)

// SignalStore provides access to scored entry signals.
type SignalStore interface {
	// Insert adds a new signal. Returns ErrDuplicateKey if (ticker, signal_date) exists.
	Insert(ctx context.Context, s *domain.Signal) error

	// InsertBulk adds multiple signals atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, signals []*domain.Signal) error

	// GetByTicker retrieves all signals for a ticker, ordered by signal_date ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.Signal, error)

	// GetByDateRange retrieves signals with signal_date within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Signal, error)

	// GetByMinScore retrieves all signals with score >= minScore.
	GetByMinScore(ctx context.Context, minScore int) ([]*domain.Signal, error)

	// GetAll retrieves all signals, ordered by signal_date ASC.
	GetAll(ctx context.Context) ([]*domain.Signal, error)
}

// PriceBarStore provides access to daily OHLCV bars.
type PriceBarStore interface {
	// InsertBulk adds multiple bars. Fails entire batch on duplicate (ticker, date).
	InsertBulk(ctx context.Context, bars []*domain.PriceBar) error

	// GetByTicker retrieves all bars for a ticker, ordered by date ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.PriceBar, error)

	// GetByDateRange retrieves bars for a ticker within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, ticker string, start, end time.Time) ([]*domain.PriceBar, error)

	// Tickers retrieves the distinct tickers with at least one bar.
	Tickers(ctx context.Context) ([]string, error)
}

// RunStore provides access to persisted simulation run summaries.
type RunStore interface {
	// Insert adds a new run record. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.RunRecord) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunRecord, error)

	// GetByStrategy retrieves all runs for a strategy, ordered by start_date ASC.
	GetByStrategy(ctx context.Context, strategyName string) ([]*domain.RunRecord, error)

	// GetAll retrieves all runs, ordered by start_date ASC.
	GetAll(ctx context.Context) ([]*domain.RunRecord, error)
}

// ClosedPositionStore provides access to per-trade records of completed runs.
type ClosedPositionStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if (run_id, trade_id) exists.
	Insert(ctx context.Context, runID string, p *domain.ClosedPosition) error

	// InsertBulk adds multiple trades for one run atomically. Fails entire
	// batch on any duplicate.
	InsertBulk(ctx context.Context, runID string, positions []*domain.ClosedPosition) error

	// GetByRunID retrieves all trades for a run, ordered by exit_date ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.ClosedPosition, error)

	// GetByTicker retrieves all trades for a ticker across runs, ordered by exit_date ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.ClosedPosition, error)
}
