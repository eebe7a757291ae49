package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/storage"
)

// ClosedPositionStore is an in-memory implementation of storage.ClosedPositionStore.
type ClosedPositionStore struct {
	mu   sync.RWMutex
	data map[string]*tradeRow // keyed by (run_id, trade_id)
}

type tradeRow struct {
	runID    string
	position domain.ClosedPosition
}

// NewClosedPositionStore creates a new in-memory closed position store.
func NewClosedPositionStore() *ClosedPositionStore {
	return &ClosedPositionStore{
		data: make(map[string]*tradeRow),
	}
}

// tradeKey generates a unique key for a trade within a run.
func tradeKey(runID, tradeID string) string {
	return fmt.Sprintf("%s|%s", runID, tradeID)
}

// Insert adds a new trade. Returns ErrDuplicateKey if (run_id, trade_id) exists.
func (s *ClosedPositionStore) Insert(_ context.Context, runID string, p *domain.ClosedPosition) error {
	if p == nil || runID == "" || p.TradeID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := tradeKey(runID, p.TradeID)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[key] = &tradeRow{runID: runID, position: *p}
	return nil
}

// InsertBulk adds multiple trades for one run atomically. Fails entire batch
// on any duplicate.
func (s *ClosedPositionStore) InsertBulk(_ context.Context, runID string, positions []*domain.ClosedPosition) error {
	if len(positions) == 0 {
		return nil
	}
	if runID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(positions))

	// First pass: check for duplicates (existing + intra-batch)
	for _, p := range positions {
		if p == nil || p.TradeID == "" {
			return storage.ErrInvalidInput
		}
		key := tradeKey(runID, p.TradeID)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range positions {
		s.data[tradeKey(runID, p.TradeID)] = &tradeRow{runID: runID, position: *p}
	}

	return nil
}

// GetByRunID retrieves all trades for a run, ordered by exit_date ASC.
func (s *ClosedPositionStore) GetByRunID(_ context.Context, runID string) ([]*domain.ClosedPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ClosedPosition
	for _, row := range s.data {
		if row.runID == runID {
			posCopy := row.position
			result = append(result, &posCopy)
		}
	}

	sortClosedPositions(result)
	return result, nil
}

// GetByTicker retrieves all trades for a ticker across runs, ordered by exit_date ASC.
func (s *ClosedPositionStore) GetByTicker(_ context.Context, ticker string) ([]*domain.ClosedPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ClosedPosition
	for _, row := range s.data {
		if row.position.Ticker == ticker {
			posCopy := row.position
			result = append(result, &posCopy)
		}
	}

	sortClosedPositions(result)
	return result, nil
}

func sortClosedPositions(positions []*domain.ClosedPosition) {
	sort.Slice(positions, func(i, j int) bool {
		if !positions[i].ExitDate.Equal(positions[j].ExitDate) {
			return positions[i].ExitDate.Before(positions[j].ExitDate)
		}
		return positions[i].TradeID < positions[j].TradeID
	})
}

var _ storage.ClosedPositionStore = (*ClosedPositionStore)(nil)
