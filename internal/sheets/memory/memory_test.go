package memory

import (
	"context"
	"testing"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
)

func TestUpsertKeysOnID(t *testing.T) {
	s := New()
	ctx := context.Background()

	e := core.ExpenseEntry{ID: "e1", Date: "2024-03-05", Category: core.Toll, Amount: 300}
	ref1, err := s.Upsert(ctx, e)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// Re-upserting the same ID overwrites, never duplicates.
	e.Amount = 350
	ref2, err := s.Upsert(ctx, e)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if ref1 != ref2 {
		t.Errorf("row ref changed on re-upsert: %s != %s", ref1, ref2)
	}

	rows := s.Entries()
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].Amount != 350 {
		t.Errorf("Amount = %d, want 350", rows[0].Amount)
	}
}

func TestUpsertRejectsInvalidEntry(t *testing.T) {
	s := New()
	_, err := s.Upsert(context.Background(), core.ExpenseEntry{ID: "e1", Date: "bad", Category: core.Toll, Amount: 300})
	if err == nil {
		t.Error("expected validation error")
	}
}

func TestRemove(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Upsert(ctx, core.ExpenseEntry{ID: "e1", Date: "2024-03-05", Category: core.Parking, Amount: 100}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := s.Remove(ctx, "e1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.Remove(ctx, "e1"); err != nil {
		t.Errorf("Remove() of absent ID should be a no-op, got %v", err)
	}
	if len(s.Entries()) != 0 {
		t.Error("entries should be empty after removal")
	}
}
