package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/storage"
)

// ClosedPositionStore implements storage.ClosedPositionStore using PostgreSQL.
type ClosedPositionStore struct {
	pool *Pool
}

// NewClosedPositionStore creates a new ClosedPositionStore.
func NewClosedPositionStore(pool *Pool) *ClosedPositionStore {
	return &ClosedPositionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClosedPositionStore = (*ClosedPositionStore)(nil)

const closedPositionColumns = `
	trade_id, ticker, entry_date, exit_date, entry_price, exit_price,
	shares, cost_basis, proceeds, pnl, pnl_pct, holding_days, exit_reason, score
`

const insertClosedPositionQuery = `
	INSERT INTO closed_positions (
		run_id,
		trade_id, ticker, entry_date, exit_date, entry_price, exit_price,
		shares, cost_basis, proceeds, pnl, pnl_pct, holding_days, exit_reason, score
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

// Insert adds a new trade. Returns ErrDuplicateKey if (run_id, trade_id) exists.
func (s *ClosedPositionStore) Insert(ctx context.Context, runID string, p *domain.ClosedPosition) error {
	_, err := s.pool.Exec(ctx, insertClosedPositionQuery, closedPositionArgs(runID, p)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert closed position: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades for one run atomically. Fails entire batch
// on any duplicate.
func (s *ClosedPositionStore) InsertBulk(ctx context.Context, runID string, positions []*domain.ClosedPosition) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range positions {
		_, err := tx.Exec(ctx, insertClosedPositionQuery, closedPositionArgs(runID, p)...)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert closed position in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByRunID retrieves all trades for a run, ordered by exit_date ASC.
func (s *ClosedPositionStore) GetByRunID(ctx context.Context, runID string) ([]*domain.ClosedPosition, error) {
	query := `
		SELECT ` + closedPositionColumns + `
		FROM closed_positions
		WHERE run_id = $1
		ORDER BY exit_date ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get closed positions by run id: %w", err)
	}
	defer rows.Close()

	return scanClosedPositions(rows)
}

// GetByTicker retrieves all trades for a ticker across runs, ordered by exit_date ASC.
func (s *ClosedPositionStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.ClosedPosition, error) {
	query := `
		SELECT ` + closedPositionColumns + `
		FROM closed_positions
		WHERE ticker = $1
		ORDER BY exit_date ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("get closed positions by ticker: %w", err)
	}
	defer rows.Close()

	return scanClosedPositions(rows)
}

func closedPositionArgs(runID string, p *domain.ClosedPosition) []any {
	return []any{
		runID,
		p.TradeID, p.Ticker, p.EntryDate, p.ExitDate, p.EntryPrice, p.ExitPrice,
		p.Shares, p.CostBasis, p.Proceeds, p.PnL, p.PnLPct, p.HoldingDays, p.ExitReason, p.Score,
	}
}

// scanClosedPositions scans multiple rows into a slice of ClosedPosition.
func scanClosedPositions(rows pgx.Rows) ([]*domain.ClosedPosition, error) {
	var positions []*domain.ClosedPosition

	for rows.Next() {
		var p domain.ClosedPosition

		err := rows.Scan(
			&p.TradeID, &p.Ticker, &p.EntryDate, &p.ExitDate, &p.EntryPrice, &p.ExitPrice,
			&p.Shares, &p.CostBasis, &p.Proceeds, &p.PnL, &p.PnLPct, &p.HoldingDays, &p.ExitReason, &p.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("scan closed position row: %w", err)
		}

		positions = append(positions, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate closed position rows: %w", err)
	}

	return positions, nil
}
