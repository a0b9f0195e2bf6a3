package adapters

import (
	"context"
	"fmt"

	"ledgerbot/internal/core"
	"ledgerbot/internal/services"
	"ledgerbot/internal/sheets"
)

var _ sheets.RowStore = (*SQLiteAdapter)(nil)

// SQLiteAdapter exposes RecordService as a row store so the ledger works
// unchanged on the SQLite + AMQP backend.
type SQLiteAdapter struct {
	service *services.RecordService
}

func NewSQLiteAdapter(service *services.RecordService) *SQLiteAdapter {
	return &SQLiteAdapter{service: service}
}

// AppendRow implements sheets.RowWriter
func (a *SQLiteAdapter) AppendRow(ctx context.Context, fields []any) error {
	if len(fields) != len(core.Headers) {
		return fmt.Errorf("expected %d fields, got %d", len(core.Headers), len(fields))
	}
	row := make(core.Row, len(fields))
	for i, h := range core.Headers {
		row[h] = fields[i]
	}
	rec, err := core.CoerceRow(row)
	if err != nil {
		return fmt.Errorf("decode row: %w", err)
	}
	if _, err := a.service.CreateRecord(ctx, rec); err != nil {
		return err
	}
	return nil
}

// ReadAllRecords implements sheets.RowReader
func (a *SQLiteAdapter) ReadAllRecords(ctx context.Context) ([]core.Row, error) {
	return a.service.ReadAllRecords(ctx)
}

func (a *SQLiteAdapter) Close() error {
	return a.service.Close()
}
