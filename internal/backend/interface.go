package backend

import (
	"context"

	"ledgerbot/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// ReadyFunc reports whether the backend can currently serve requests.
type ReadyFunc func(ctx context.Context) error

// Result contains the row store and its lifecycle hooks. Cleanup and Ready may be nil.
type Result struct {
	Store   sheets.RowStore
	Cleanup CleanupFunc
	Ready   ReadyFunc
}

// Factory creates row stores based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets specific
	GoogleSpreadsheetID     string
	GoogleSheetName         string
	GoogleSheetID           int64
	GoogleCredentialsJSON   string
	GoogleCredentialsBase64 string
	GoogleCredentialsFile   string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
