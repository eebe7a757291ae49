package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/storage"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSignalStore_InsertAndGet(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	sig := &domain.Signal{
		Ticker:     "AAPL",
		SignalDate: day("2023-03-10"),
		EntryDate:  day("2023-03-13"),
		EntryPrice: 150.25,
		Score:      7,
	}

	if err := store.Insert(ctx, sig); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByTicker(ctx, "AAPL")
	if err != nil {
		t.Fatalf("GetByTicker failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 signal, got %d", len(got))
	}
	if got[0].EntryPrice != 150.25 {
		t.Errorf("EntryPrice mismatch: got %f, want %f", got[0].EntryPrice, 150.25)
	}
}

func TestSignalStore_DuplicateKey(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	sig := &domain.Signal{Ticker: "AAPL", SignalDate: day("2023-03-10"), EntryPrice: 150, Score: 6}

	if err := store.Insert(ctx, sig); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, sig)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestSignalStore_InsertBulkIntraBatchDuplicate(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	signals := []*domain.Signal{
		{Ticker: "AAPL", SignalDate: day("2023-03-10"), EntryPrice: 150, Score: 6},
		{Ticker: "AAPL", SignalDate: day("2023-03-10"), EntryPrice: 151, Score: 7},
	}

	err := store.InsertBulk(ctx, signals)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Nothing should have been inserted
	all, _ := store.GetAll(ctx)
	if len(all) != 0 {
		t.Errorf("Expected empty store after failed bulk insert, got %d signals", len(all))
	}
}

func TestSignalStore_GetByDateRange(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	signals := []*domain.Signal{
		{Ticker: "AAPL", SignalDate: day("2023-01-06"), EntryPrice: 100, Score: 5},
		{Ticker: "MSFT", SignalDate: day("2023-02-10"), EntryPrice: 200, Score: 6},
		{Ticker: "NVDA", SignalDate: day("2023-03-17"), EntryPrice: 300, Score: 9},
	}
	if err := store.InsertBulk(ctx, signals); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByDateRange(ctx, day("2023-02-01"), day("2023-02-28"))
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}
	if len(got) != 1 || got[0].Ticker != "MSFT" {
		t.Errorf("Expected only MSFT in February, got %+v", got)
	}
}

func TestSignalStore_GetByMinScore(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	signals := []*domain.Signal{
		{Ticker: "AAPL", SignalDate: day("2023-01-06"), EntryPrice: 100, Score: 4},
		{Ticker: "MSFT", SignalDate: day("2023-01-06"), EntryPrice: 200, Score: 6},
		{Ticker: "NVDA", SignalDate: day("2023-01-06"), EntryPrice: 300, Score: 9},
	}
	if err := store.InsertBulk(ctx, signals); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByMinScore(ctx, 6)
	if err != nil {
		t.Fatalf("GetByMinScore failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 signals with score >= 6, got %d", len(got))
	}
}

func TestSignalStore_GetAllSorted(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	signals := []*domain.Signal{
		{Ticker: "NVDA", SignalDate: day("2023-03-17"), EntryPrice: 300, Score: 9},
		{Ticker: "AAPL", SignalDate: day("2023-01-06"), EntryPrice: 100, Score: 5},
		{Ticker: "MSFT", SignalDate: day("2023-02-10"), EntryPrice: 200, Score: 6},
	}
	if err := store.InsertBulk(ctx, signals); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, _ := store.GetAll(ctx)
	if len(got) != 3 {
		t.Fatalf("Expected 3 signals, got %d", len(got))
	}
	if got[0].Ticker != "AAPL" || got[2].Ticker != "NVDA" {
		t.Errorf("Signals not sorted by date: %s, %s, %s", got[0].Ticker, got[1].Ticker, got[2].Ticker)
	}
}

func TestSignalStore_CopyOnRead(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	sig := &domain.Signal{Ticker: "AAPL", SignalDate: day("2023-03-10"), EntryPrice: 150, Score: 6}
	if err := store.Insert(ctx, sig); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, _ := store.GetByTicker(ctx, "AAPL")
	got[0].Score = 99

	again, _ := store.GetByTicker(ctx, "AAPL")
	if again[0].Score != 6 {
		t.Errorf("Mutating returned signal leaked into store: score %d", again[0].Score)
	}
}
