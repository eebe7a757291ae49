package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

const runColumns = `
	run_id, strategy_name, start_date, end_date,
	total_return, cagr, max_drawdown, win_rate, avg_win_pct, avg_loss_pct,
	profit_factor, final_value, total_trades,
	stop_loss_count, time_exit_count, created_at
`

// Insert adds a new run record. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.RunRecord) error {
	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.StrategyName, r.StartDate, r.EndDate,
		r.TotalReturn, r.CAGR, r.MaxDrawdown, r.WinRate, r.AvgWinPct, r.AvgLossPct,
		r.ProfitFactor, r.FinalValue, r.TotalTrades,
		r.StopLossCount, r.TimeExitCount, r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.RunRecord, error) {
	query := `
		SELECT ` + runColumns + `
		FROM runs
		WHERE run_id = $1
	`

	row := s.pool.QueryRow(ctx, query, runID)
	r, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	return r, nil
}

// GetByStrategy retrieves all runs for a strategy, ordered by start_date ASC.
func (s *RunStore) GetByStrategy(ctx context.Context, strategyName string) ([]*domain.RunRecord, error) {
	query := `
		SELECT ` + runColumns + `
		FROM runs
		WHERE strategy_name = $1
		ORDER BY start_date ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query, strategyName)
	if err != nil {
		return nil, fmt.Errorf("get runs by strategy: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetAll retrieves all runs, ordered by start_date ASC.
func (s *RunStore) GetAll(ctx context.Context) ([]*domain.RunRecord, error) {
	query := `
		SELECT ` + runColumns + `
		FROM runs
		ORDER BY start_date ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// scanRun scans a single row into a RunRecord.
func scanRun(row pgx.Row) (*domain.RunRecord, error) {
	var r domain.RunRecord

	err := row.Scan(
		&r.RunID, &r.StrategyName, &r.StartDate, &r.EndDate,
		&r.TotalReturn, &r.CAGR, &r.MaxDrawdown, &r.WinRate, &r.AvgWinPct, &r.AvgLossPct,
		&r.ProfitFactor, &r.FinalValue, &r.TotalTrades,
		&r.StopLossCount, &r.TimeExitCount, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// scanRuns scans multiple rows into a slice of RunRecord.
func scanRuns(rows pgx.Rows) ([]*domain.RunRecord, error) {
	var runs []*domain.RunRecord

	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	return runs, nil
}
