package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/storage"
)

// SignalStore implements storage.SignalStore using PostgreSQL.
type SignalStore struct {
	pool *Pool
}

// NewSignalStore creates a new SignalStore.
func NewSignalStore(pool *Pool) *SignalStore {
	return &SignalStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

const signalColumns = `
	ticker, signal_date, entry_date, entry_price, signal_price, score, signal_types
`

const insertSignalQuery = `
	INSERT INTO signals (
		ticker, signal_date, entry_date, entry_price, signal_price, score, signal_types
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// Insert adds a new signal. Returns ErrDuplicateKey if (ticker, signal_date) exists.
func (s *SignalStore) Insert(ctx context.Context, sig *domain.Signal) error {
	_, err := s.pool.Exec(ctx, insertSignalQuery,
		sig.Ticker, sig.SignalDate, nullableDate(sig.EntryDate),
		sig.EntryPrice, sig.SignalPrice, sig.Score, sig.SignalTypes,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert signal: %w", err)
	}
	return nil
}

// InsertBulk adds multiple signals atomically. Fails entire batch on any duplicate.
func (s *SignalStore) InsertBulk(ctx context.Context, signals []*domain.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, sig := range signals {
		_, err := tx.Exec(ctx, insertSignalQuery,
			sig.Ticker, sig.SignalDate, nullableDate(sig.EntryDate),
			sig.EntryPrice, sig.SignalPrice, sig.Score, sig.SignalTypes,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert signal in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByTicker retrieves all signals for a ticker, ordered by signal_date ASC.
func (s *SignalStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE ticker = $1
		ORDER BY signal_date ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("get signals by ticker: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// GetByDateRange retrieves signals with signal_date within [start, end] (inclusive).
func (s *SignalStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE signal_date >= $1 AND signal_date <= $2
		ORDER BY signal_date ASC, ticker ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get signals by date range: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// GetByMinScore retrieves all signals with score >= minScore.
func (s *SignalStore) GetByMinScore(ctx context.Context, minScore int) ([]*domain.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE score >= $1
		ORDER BY signal_date ASC, ticker ASC
	`

	rows, err := s.pool.Query(ctx, query, minScore)
	if err != nil {
		return nil, fmt.Errorf("get signals by min score: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// GetAll retrieves all signals, ordered by signal_date ASC.
func (s *SignalStore) GetAll(ctx context.Context) ([]*domain.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		ORDER BY signal_date ASC, ticker ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all signals: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// nullableDate maps the zero time to SQL NULL.
func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// scanSignals scans multiple rows into a slice of Signal.
func scanSignals(rows pgx.Rows) ([]*domain.Signal, error) {
	var signals []*domain.Signal

	for rows.Next() {
		var sig domain.Signal
		var entryDate *time.Time

		err := rows.Scan(
			&sig.Ticker, &sig.SignalDate, &entryDate,
			&sig.EntryPrice, &sig.SignalPrice, &sig.Score, &sig.SignalTypes,
		)
		if err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}
		if entryDate != nil {
			sig.EntryDate = *entryDate
		}

		signals = append(signals, &sig)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signal rows: %w", err)
	}

	return signals, nil
}
