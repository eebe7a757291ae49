package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/storage"
)

// SignalStore is an in-memory implementation of storage.SignalStore.
type SignalStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Signal // keyed by (ticker, signal_date)
}

// NewSignalStore creates a new in-memory signal store.
func NewSignalStore() *SignalStore {
	return &SignalStore{
		data: make(map[string]*domain.Signal),
	}
}

// signalKey generates a unique key for a signal.
func signalKey(ticker string, signalDate time.Time) string {
	return fmt.Sprintf("%s|%s", ticker, signalDate.Format("2006-01-02"))
}

// Insert adds a new signal. Returns ErrDuplicateKey if (ticker, signal_date) exists.
func (s *SignalStore) Insert(_ context.Context, sig *domain.Signal) error {
	if sig == nil || sig.Ticker == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := signalKey(sig.Ticker, sig.SignalDate)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	sigCopy := *sig
	s.data[key] = &sigCopy
	return nil
}

// InsertBulk adds multiple signals atomically. Fails entire batch on any duplicate.
func (s *SignalStore) InsertBulk(_ context.Context, signals []*domain.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(signals))

	// First pass: check for duplicates (existing + intra-batch)
	for _, sig := range signals {
		if sig == nil || sig.Ticker == "" {
			return storage.ErrInvalidInput
		}
		key := signalKey(sig.Ticker, sig.SignalDate)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, sig := range signals {
		sigCopy := *sig
		s.data[signalKey(sig.Ticker, sig.SignalDate)] = &sigCopy
	}

	return nil
}

// GetByTicker retrieves all signals for a ticker, ordered by signal_date ASC.
func (s *SignalStore) GetByTicker(_ context.Context, ticker string) ([]*domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Signal
	for _, sig := range s.data {
		if sig.Ticker == ticker {
			sigCopy := *sig
			result = append(result, &sigCopy)
		}
	}

	sortSignals(result)
	return result, nil
}

// GetByDateRange retrieves signals with signal_date within [start, end] (inclusive).
func (s *SignalStore) GetByDateRange(_ context.Context, start, end time.Time) ([]*domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Signal
	for _, sig := range s.data {
		if !sig.SignalDate.Before(start) && !sig.SignalDate.After(end) {
			sigCopy := *sig
			result = append(result, &sigCopy)
		}
	}

	sortSignals(result)
	return result, nil
}

// GetByMinScore retrieves all signals with score >= minScore.
func (s *SignalStore) GetByMinScore(_ context.Context, minScore int) ([]*domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Signal
	for _, sig := range s.data {
		if sig.Score >= minScore {
			sigCopy := *sig
			result = append(result, &sigCopy)
		}
	}

	sortSignals(result)
	return result, nil
}

// GetAll retrieves all signals, ordered by signal_date ASC.
func (s *SignalStore) GetAll(_ context.Context) ([]*domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Signal, 0, len(s.data))
	for _, sig := range s.data {
		sigCopy := *sig
		result = append(result, &sigCopy)
	}

	sortSignals(result)
	return result, nil
}

func sortSignals(signals []*domain.Signal) {
	sort.Slice(signals, func(i, j int) bool {
		if !signals[i].SignalDate.Equal(signals[j].SignalDate) {
			return signals[i].SignalDate.Before(signals[j].SignalDate)
		}
		return signals[i].Ticker < signals[j].Ticker
	})
}

var _ storage.SignalStore = (*SignalStore)(nil)
