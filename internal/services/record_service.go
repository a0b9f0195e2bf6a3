package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledgerbot/internal/core"

	"github.com/google/uuid"
)

// RecordRepository is the local persistence the service writes through.
type RecordRepository interface {
	CreateRecord(ctx context.Context, rec core.PricedRecord) (uuid.UUID, error)
	ReadAllRecords(ctx context.Context) ([]core.Row, error)
	Close() error
}

// SyncPublisher announces records that need mirroring to the spreadsheet.
type SyncPublisher interface {
	PublishRecordSync(ctx context.Context, id uuid.UUID) error
	Close() error
}

// RecordService orchestrates record writes across SQLite and AMQP.
type RecordService struct {
	storage   RecordRepository
	publisher SyncPublisher
}

func NewRecordService(storage RecordRepository, publisher SyncPublisher) *RecordService {
	return &RecordService{
		storage:   storage,
		publisher: publisher,
	}
}

// CreateRecord saves a record locally and publishes a sync message.
// A failed publish is logged only: the record stays pending and the worker's
// periodic sweep mirrors it later.
func (s *RecordService) CreateRecord(ctx context.Context, rec core.PricedRecord) (uuid.UUID, error) {
	if s.storage == nil {
		return uuid.Nil, errors.New("record storage not configured")
	}
	id, err := s.storage.CreateRecord(ctx, rec)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save record: %w", err)
	}

	if err := s.publishSyncMessage(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
	return id, nil
}

// ReadAllRecords reads from local storage; the spreadsheet is only a mirror.
func (s *RecordService) ReadAllRecords(ctx context.Context) ([]core.Row, error) {
	if s.storage == nil {
		return nil, errors.New("record storage not configured")
	}
	return s.storage.ReadAllRecords(ctx)
}

func (s *RecordService) publishSyncMessage(ctx context.Context, id uuid.UUID) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message", "id", id)
		return nil
	}
	return s.publisher.PublishRecordSync(ctx, id)
}

// Close closes both storage and AMQP connections
func (s *RecordService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %w", errors.Join(errs...))
	}
	return nil
}
