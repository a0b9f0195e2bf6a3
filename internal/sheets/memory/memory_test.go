package memory

import (
	"context"
	"errors"
	"testing"

	"ledgerbot/internal/core"
)

func TestMemoryStoreAppendAndRead(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := core.PricedRecord{Date: core.NewDate(2025, 1, 2), User: "alice", ActionName: "שתל", Quantity: 2, UnitPrice: 500, Total: 1000}
	if err := s.AppendRow(ctx, rec.Fields()); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendRow(ctx, []any{"too", "short"}); err == nil {
		t.Fatal("expected error for wrong field count")
	}

	rows, err := s.ReadAllRecords(ctx)
	if err != nil || len(rows) != 1 {
		t.Fatalf("unexpected read: rows=%v err=%v", rows, err)
	}
	got, err := core.CoerceRow(rows[0])
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if got != rec {
		t.Fatalf("round trip: got %+v want %+v", got, rec)
	}

	// Mutating a returned row must not leak into the store.
	rows[0][core.ColumnUser] = "mallory"
	again, _ := s.ReadAllRecords(ctx)
	if again[0][core.ColumnUser] != "alice" {
		t.Fatalf("store was mutated through returned row")
	}
}

func TestMemoryStoreFailures(t *testing.T) {
	s := New()
	s.FailAppend = ErrUnavailable
	s.FailRead = ErrUnavailable
	if err := s.AppendRow(context.Background(), make([]any, len(core.Headers))); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected append failure, got %v", err)
	}
	if _, err := s.ReadAllRecords(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected read failure, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("failed append should not store a row")
	}
}

func TestNewWithRowsKeepsOrder(t *testing.T) {
	s := NewWithRows(
		core.Row{core.ColumnDate: "2025-01-01", core.ColumnAction: "a"},
		core.Row{core.ColumnDate: "2025-01-02", core.ColumnAction: "b"},
	)
	rows, _ := s.ReadAllRecords(context.Background())
	if len(rows) != 2 || rows[0][core.ColumnAction] != "a" || rows[1][core.ColumnAction] != "b" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}
