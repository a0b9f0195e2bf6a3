package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"ledgerbot/internal/amqp"
	"ledgerbot/internal/core"
	"ledgerbot/internal/sheets/memory"
	"ledgerbot/internal/storage"

	"github.com/google/uuid"
)

type fakeSource struct {
	mu      sync.Mutex
	order   []uuid.UUID
	records map[uuid.UUID]*storage.StoredRecord
}

func newFakeSource(recs ...core.PricedRecord) *fakeSource {
	f := &fakeSource{records: make(map[uuid.UUID]*storage.StoredRecord)}
	for _, r := range recs {
		id := uuid.New()
		f.order = append(f.order, id)
		f.records[id] = &storage.StoredRecord{ID: id, Record: r, SyncStatus: storage.SyncPending}
	}
	return f
}

func (f *fakeSource) GetRecord(_ context.Context, id uuid.UUID) (*storage.StoredRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("get record %s: %w", id, storage.ErrRecordNotFound)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeSource) GetPendingSyncRecords(_ context.Context, limit int) ([]storage.PendingSyncRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.PendingSyncRecord
	for _, id := range f.order {
		if f.records[id].SyncStatus != storage.SyncSynced && len(out) < limit {
			out = append(out, storage.PendingSyncRecord{ID: id})
		}
	}
	return out, nil
}

func (f *fakeSource) MarkSynced(_ context.Context, id uuid.UUID) error {
	return f.set(id, storage.SyncSynced)
}

func (f *fakeSource) MarkSyncError(_ context.Context, id uuid.UUID) error {
	return f.set(id, storage.SyncError)
}

func (f *fakeSource) set(id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return storage.ErrRecordNotFound
	}
	r.SyncStatus = status
	return nil
}

func (f *fakeSource) status(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[id].SyncStatus
}

var (
	recA = core.PricedRecord{Date: core.NewDate(2025, 6, 14), User: "alice", ActionName: "שתל", Quantity: 2, UnitPrice: 500, Total: 1000}
	recB = core.PricedRecord{Date: core.NewDate(2025, 6, 15), User: "bob", ActionName: "כתר", Quantity: 1, UnitPrice: 300, Total: 300}
)

func TestHandleSyncMessage(t *testing.T) {
	src := newFakeSource(recA)
	sheet := memory.New()
	w := NewSyncWorker(src, sheet, 10)
	ctx := context.Background()
	id := src.order[0]

	if err := w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(id)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if sheet.Len() != 1 || src.status(id) != storage.SyncSynced {
		t.Fatalf("record not mirrored: len=%d status=%s", sheet.Len(), src.status(id))
	}

	// redelivery of an already synced record must not duplicate the row
	if err := w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(id)); err != nil {
		t.Fatalf("redeliver: %v", err)
	}
	if sheet.Len() != 1 {
		t.Fatalf("duplicate row after redelivery: %d", sheet.Len())
	}

	// unknown ids are dropped without error
	if err := w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(uuid.New())); err != nil {
		t.Fatalf("unknown record: %v", err)
	}
}

func TestHandleSyncMessageSheetFailure(t *testing.T) {
	src := newFakeSource(recA)
	sheet := memory.New()
	sheet.FailAppend = memory.ErrUnavailable
	w := NewSyncWorker(src, sheet, 10)
	id := src.order[0]

	err := w.HandleSyncMessage(context.Background(), amqp.NewRecordSyncMessage(id))
	if !errors.Is(err, memory.ErrUnavailable) {
		t.Fatalf("expected sheet failure, got %v", err)
	}
	if src.status(id) != storage.SyncError {
		t.Fatalf("status = %s, want %s", src.status(id), storage.SyncError)
	}
}

func TestProcessPendingRecords(t *testing.T) {
	src := newFakeSource(recA, recB, recA)
	sheet := memory.New()
	w := NewSyncWorker(src, sheet, 2)
	ctx := context.Background()

	n, err := w.ProcessPendingRecords(ctx)
	if err != nil || n != 2 {
		t.Fatalf("first batch: n=%d err=%v", n, err)
	}
	n, err = w.ProcessPendingRecords(ctx)
	if err != nil || n != 1 {
		t.Fatalf("second batch: n=%d err=%v", n, err)
	}

	rows, _ := sheet.ReadAllRecords(ctx)
	if len(rows) != 3 || rows[1][core.ColumnUser] != "bob" {
		t.Fatalf("rows out of order: %v", rows)
	}
	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	if sheet.Len() != 3 {
		t.Fatalf("nothing left to sync, got %d rows", sheet.Len())
	}
}
