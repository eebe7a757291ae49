package memory

import (
	"context"
	"errors"
	"testing"

	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/storage"
)

func TestRunStore_InsertAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	run := &domain.RunRecord{
		RunID:        "run1",
		StrategyName: "default",
		StartDate:    day("2023-01-01"),
		EndDate:      day("2024-01-01"),
		TotalReturn:  0.12,
		FinalValue:   112_000,
		TotalTrades:  30,
	}

	if err := store.Insert(ctx, run); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "run1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.TotalReturn != 0.12 {
		t.Errorf("TotalReturn mismatch: got %f, want %f", got.TotalReturn, 0.12)
	}
}

func TestRunStore_DuplicateKey(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	run := &domain.RunRecord{RunID: "run1", StrategyName: "default"}
	if err := store.Insert(ctx, run); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, run)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestRunStore_NotFound(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	_, err := store.GetByID(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRunStore_GetByStrategySorted(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	runs := []*domain.RunRecord{
		{RunID: "r2", StrategyName: "default", StartDate: day("2023-03-01")},
		{RunID: "r1", StrategyName: "default", StartDate: day("2023-01-01")},
		{RunID: "r3", StrategyName: "aggressive", StartDate: day("2023-02-01")},
	}
	for _, r := range runs {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert %s failed: %v", r.RunID, err)
		}
	}

	got, err := store.GetByStrategy(ctx, "default")
	if err != nil {
		t.Fatalf("GetByStrategy failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 runs for default, got %d", len(got))
	}
	if got[0].RunID != "r1" || got[1].RunID != "r2" {
		t.Errorf("Runs not ordered by start_date: %s, %s", got[0].RunID, got[1].RunID)
	}
}
