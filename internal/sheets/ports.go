package sheets

import (
	"context"

	"ledgerbot/internal/core"
)

// Ports for outbound adapters.
type (
	// RowWriter appends one row. Fields arrive in core.Headers order.
	RowWriter interface {
		AppendRow(ctx context.Context, fields []any) error
	}

	// RowReader returns every stored row keyed by column header, in storage order.
	// Values are not guaranteed to be typed.
	RowReader interface {
		ReadAllRecords(ctx context.Context) ([]core.Row, error)
	}

	// RowStore is the tabular persistence collaborator behind the ledger.
	RowStore interface {
		RowWriter
		RowReader
	}
)
