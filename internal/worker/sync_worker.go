package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ledgerbot/internal/amqp"
	"ledgerbot/internal/sheets"
	"ledgerbot/internal/storage"

	"github.com/google/uuid"
)

// RecordSource is the local store the worker mirrors from.
type RecordSource interface {
	GetRecord(ctx context.Context, id uuid.UUID) (*storage.StoredRecord, error)
	GetPendingSyncRecords(ctx context.Context, limit int) ([]storage.PendingSyncRecord, error)
	MarkSynced(ctx context.Context, id uuid.UUID) error
	MarkSyncError(ctx context.Context, id uuid.UUID) error
}

// SyncWorker mirrors locally stored records into the spreadsheet.
type SyncWorker struct {
	storage   RecordSource
	sheets    sheets.RowWriter
	batchSize int

	// serializes appends so the sheet keeps local insertion order as far as possible
	mu sync.Mutex
}

func NewSyncWorker(storage RecordSource, sheets sheets.RowWriter, batchSize int) *SyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		sheets:    sheets,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single record sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)
	return w.syncRecord(ctx, msg.ID)
}

// ProcessPendingRecords mirrors up to one batch of unsynced records.
// Backup path for lost AMQP messages. Returns how many were mirrored.
func (w *SyncWorker) ProcessPendingRecords(ctx context.Context) (int, error) {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains a larger batch at worker startup to recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", synced)
	return nil
}

// Run sweeps pending records every interval until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessPendingRecords(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (int, error) {
	pending, err := w.storage.GetPendingSyncRecords(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending records", "count", len(pending))

	synced := 0
	for _, p := range pending {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		if err := w.syncRecord(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record", "id", p.ID, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

func (w *SyncWorker) syncRecord(ctx context.Context, id uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	stored, err := w.storage.GetRecord(ctx, id)
	if errors.Is(err, storage.ErrRecordNotFound) {
		// nothing to mirror, do not requeue
		slog.WarnContext(ctx, "Sync requested for unknown record", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}
	if stored.SyncStatus == storage.SyncSynced {
		slog.DebugContext(ctx, "Record already synced", "id", id)
		return nil
	}

	if err := w.sheets.AppendRow(ctx, stored.Record.Fields()); err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// the row is in the sheet; a later sweep would duplicate it
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced record",
		"id", id,
		"user", stored.Record.User,
		"action", stored.Record.ActionName,
		"total", stored.Record.Total)
	return nil
}
