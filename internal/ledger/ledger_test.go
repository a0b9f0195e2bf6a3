package ledger

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/sheets/memory"
)

// countingStore counts reads and can block until the context expires.
type countingStore struct {
	*memory.Store
	reads atomic.Int32
	block bool
}

func (s *countingStore) ReadAllRecords(ctx context.Context) ([]core.Row, error) {
	s.reads.Add(1)
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.Store.ReadAllRecords(ctx)
}

func (s *countingStore) AppendRow(ctx context.Context, fields []any) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.Store.AppendRow(ctx, fields)
}

var rec = core.PricedRecord{Date: core.NewDate(2025, 6, 15), User: "alice", ActionName: "שתל", Quantity: 2, UnitPrice: 500, Total: 1000}

func TestAppendAndReadAll(t *testing.T) {
	store := memory.New()
	l := New(store)
	ctx := context.Background()

	if err := l.Append(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	rows, err := l.ReadAll(ctx)
	if err != nil || len(rows) != 1 {
		t.Fatalf("rows = %v, err = %v", rows, err)
	}
	if rows[0][core.ColumnDate] != "2025-06-15" || rows[0][core.ColumnTotal] != int64(1000) {
		t.Fatalf("unexpected row: %v", rows[0])
	}
}

func TestAppendFailureWrapsCause(t *testing.T) {
	store := memory.New()
	store.FailAppend = memory.ErrUnavailable
	l := New(store)

	err := l.Append(context.Background(), rec)
	var af *core.AppendFailure
	if !errors.As(err, &af) {
		t.Fatalf("expected *core.AppendFailure, got %T %v", err, err)
	}
	if !errors.Is(err, memory.ErrUnavailable) {
		t.Fatalf("cause lost: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("failed append must not leave a row")
	}
}

func TestReadAllError(t *testing.T) {
	store := memory.New()
	store.FailRead = memory.ErrUnavailable
	if _, err := New(store).ReadAll(context.Background()); !errors.Is(err, memory.ErrUnavailable) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestTimeoutBoundsStoreCalls(t *testing.T) {
	store := &countingStore{Store: memory.New(), block: true}
	l := New(store, WithTimeout(20*time.Millisecond))

	if err := l.Append(context.Background(), rec); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline on append, got %v", err)
	}
	if _, err := l.ReadAll(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline on read, got %v", err)
	}
}

func TestReadCacheInvalidatedByAppend(t *testing.T) {
	store := &countingStore{Store: memory.New()}
	l := New(store, WithReadCache(time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := l.ReadAll(ctx); err != nil {
			t.Fatalf("read: %v", err)
		}
	}
	if got := store.reads.Load(); got != 1 {
		t.Fatalf("store read %d times, want 1", got)
	}

	if err := l.Append(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	rows, _ := l.ReadAll(ctx)
	if len(rows) != 1 || store.reads.Load() != 2 {
		t.Fatalf("append should invalidate the snapshot: rows=%d reads=%d", len(rows), store.reads.Load())
	}
}

func TestSummarize(t *testing.T) {
	store := memory.NewWithRows(
		core.Row{core.ColumnDate: "2025-06-15", core.ColumnUser: "alice", core.ColumnAction: "שתל", core.ColumnQuantity: 2, core.ColumnUnitPrice: 500, core.ColumnTotal: 1000},
		core.Row{core.ColumnDate: "garbage", core.ColumnUser: "alice", core.ColumnAction: "שתל", core.ColumnQuantity: 1, core.ColumnUnitPrice: 500, core.ColumnTotal: 500},
	)
	s, err := New(store).Summarize(context.Background(), core.SummaryQuery{User: "alice"})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.TotalAmount != 1000 || s.Skipped != 1 || s.Quantity("שתל") != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}
