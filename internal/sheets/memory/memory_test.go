package memory

import (
	"context"
	"testing"

	"ledger/internal/core"
)

func TestStore_UpsertAndRemove(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := core.Record{ID: "a", Amount: 12.5, Type: core.Expense, Date: core.NewDate(2024, 1, 5), Tags: []string{"x", "y"}}
	b := core.Record{ID: "b", Amount: 100, Type: core.Income, Date: core.NewDate(2024, 1, 6)}
	for _, r := range []core.Record{a, b} {
		if err := s.Upsert(ctx, r); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	a.Amount = 13
	if err := s.Upsert(ctx, a); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	rows := s.Rows()
	if len(rows) != 2 || rows[0][0] != "a" || rows[0][3] != "13.00" || rows[0][6] != "x; y" {
		t.Fatalf("unexpected rows %v", rows)
	}

	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove(ctx, "missing"); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}
	if _, ok := s.Row("a"); ok {
		t.Fatal("row a should be gone")
	}
	if rows := s.Rows(); len(rows) != 1 || rows[0][0] != "b" {
		t.Fatalf("unexpected rows %v", rows)
	}
}
