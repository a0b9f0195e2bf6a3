package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ledgerbot/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Sync states of a locally stored record.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

var ErrRecordNotFound = errors.New("record not found")

// StoredRecord is a ledger record as persisted locally.
type StoredRecord struct {
	ID         uuid.UUID
	Record     core.PricedRecord
	SyncStatus string
	CreatedAt  time.Time
}

// PendingSyncRecord is the minimal data needed to enqueue a record for mirroring.
type PendingSyncRecord struct {
	ID        uuid.UUID
	CreatedAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer keeps append order equal to insertion order
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database answers.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateRecord inserts rec as pending sync and returns its new ID.
func (r *SQLiteRepository) CreateRecord(ctx context.Context, rec core.PricedRecord) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO records (id, date, user_name, action, quantity, unit_price, total)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), rec.Date.String(), rec.User, rec.ActionName, rec.Quantity, rec.UnitPrice, rec.Total)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert record: %w", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", id,
		"user", rec.User,
		"action", rec.ActionName,
		"quantity", rec.Quantity,
		"total", rec.Total)
	return id, nil
}

// ReadAllRecords implements sheets.RowReader. Rows come back in insertion order,
// keyed like the spreadsheet header.
func (r *SQLiteRepository) ReadAllRecords(ctx context.Context) ([]core.Row, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, user_name, action, quantity, unit_price, total FROM records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []core.Row
	for rows.Next() {
		var (
			date, user, action     string
			quantity, price, total int64
		)
		if err := rows.Scan(&date, &user, &action, &quantity, &price, &total); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, core.Row{
			core.ColumnDate:      date,
			core.ColumnUser:      user,
			core.ColumnAction:    action,
			core.ColumnQuantity:  quantity,
			core.ColumnUnitPrice: price,
			core.ColumnTotal:     total,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// GetRecord retrieves a single record by ID.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id uuid.UUID) (*StoredRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT date, user_name, action, quantity, unit_price, total, sync_status,
		        CAST(strftime('%s', created_at) AS INTEGER)
		   FROM records WHERE id = ?`, id.String())

	var (
		date    string
		created int64
		rec     core.PricedRecord
		status  string
	)
	err := row.Scan(&date, &rec.User, &rec.ActionName, &rec.Quantity, &rec.UnitPrice, &rec.Total, &status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get record %s: %w", id, ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	rec.Date = d

	return &StoredRecord{
		ID:         id,
		Record:     rec,
		SyncStatus: status,
		CreatedAt:  time.Unix(created, 0).UTC(),
	}, nil
}

// GetPendingSyncRecords returns up to limit records not yet mirrored, oldest first.
// Records in error state are retried too.
func (r *SQLiteRepository) GetPendingSyncRecords(ctx context.Context, limit int) ([]PendingSyncRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, CAST(strftime('%s', created_at) AS INTEGER)
		   FROM records WHERE sync_status != ? ORDER BY seq LIMIT ?`, SyncSynced, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending records: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncRecord
	for rows.Next() {
		var (
			raw     string
			created int64
		)
		if err := rows.Scan(&raw, &created); err != nil {
			return nil, fmt.Errorf("scan pending record: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse record id %q: %w", raw, err)
		}
		out = append(out, PendingSyncRecord{ID: id, CreatedAt: time.Unix(created, 0).UTC()})
	}
	return out, rows.Err()
}

// MarkSynced marks a record as mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id uuid.UUID) error {
	if err := r.setSyncStatus(ctx, id, SyncSynced); err != nil {
		return fmt.Errorf("mark record synced: %w", err)
	}
	slog.InfoContext(ctx, "Record marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a record whose mirroring failed.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id uuid.UUID) error {
	if err := r.setSyncStatus(ctx, id, SyncError); err != nil {
		return fmt.Errorf("mark record sync error: %w", err)
	}
	slog.WarnContext(ctx, "Record marked with sync error", "id", id)
	return nil
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, id uuid.UUID, status string) error {
	q := `UPDATE records SET sync_status = ?, synced_at = NULL WHERE id = ?`
	if status == SyncSynced {
		q = `UPDATE records SET sync_status = ?, synced_at = CURRENT_TIMESTAMP WHERE id = ?`
	}
	res, err := r.db.ExecContext(ctx, q, status, id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRecordNotFound
	}
	return nil
}
