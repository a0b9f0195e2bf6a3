// Package ledger is the append-only record log behind the bot. It turns priced
// records into row store rows and reads them back for aggregation.
package ledger

import (
	"context"
	"fmt"
	"time"

	"ledgerbot/internal/cache"
	"ledgerbot/internal/core"
	"ledgerbot/internal/log"
	"ledgerbot/internal/sheets"
)

const snapshotKey = "rows"

type Ledger struct {
	store   sheets.RowStore
	timeout time.Duration
	cache   cache.Cache[[]core.Row]
	logger  *log.Logger
}

type Option func(*Ledger)

// WithTimeout bounds every row store call.
func WithTimeout(d time.Duration) Option {
	return func(l *Ledger) { l.timeout = d }
}

// WithReadCache keeps the last ReadAll result for ttl. A successful Append
// drops it. Zero disables caching.
func WithReadCache(ttl time.Duration) Option {
	return func(l *Ledger) {
		if ttl > 0 {
			l.cache = cache.NewLRUCache[[]core.Row](1, ttl)
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

func New(store sheets.RowStore, opts ...Option) *Ledger {
	l := &Ledger{store: store}
	for _, o := range opts {
		o(l)
	}
	if l.logger == nil {
		l.logger = log.Default().WithComponent(log.ComponentLedger)
	}
	return l
}

// Append writes rec as one row. Store errors come back as *core.AppendFailure.
// There is no retry: a failed append is simply not recorded.
func (l *Ledger) Append(ctx context.Context, rec core.PricedRecord) error {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	if err := l.store.AppendRow(ctx, rec.Fields()); err != nil {
		l.logger.ErrorContext(ctx, "Append failed",
			log.FieldOperation, log.OpAppend,
			log.FieldUser, rec.User,
			log.FieldAction, rec.ActionName,
			log.FieldError, err)
		return &core.AppendFailure{Cause: err}
	}
	if l.cache != nil {
		l.cache.Delete(snapshotKey)
	}

	l.logger.InfoContext(ctx, "Record appended",
		log.FieldOperation, log.OpAppend,
		log.FieldUser, rec.User,
		log.FieldAction, rec.ActionName,
		log.FieldQuantity, rec.Quantity,
		log.FieldTotal, rec.Total)
	return nil
}

// ReadAll returns every stored row in storage order.
func (l *Ledger) ReadAll(ctx context.Context) ([]core.Row, error) {
	if l.cache != nil {
		if rows, ok := l.cache.Get(snapshotKey); ok {
			return rows, nil
		}
	}

	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	rows, err := l.store.ReadAllRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if l.cache != nil {
		l.cache.Set(snapshotKey, rows)
	}
	l.logger.DebugContext(ctx, "Ledger read", log.FieldOperation, log.OpRead, log.FieldRows, len(rows))
	return rows, nil
}

// Summarize reads the ledger and aggregates rows matching q.
func (l *Ledger) Summarize(ctx context.Context, q core.SummaryQuery) (core.Summary, error) {
	rows, err := l.ReadAll(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	s := core.Summarize(rows, q)
	if s.Skipped > 0 {
		l.logger.WarnContext(ctx, "Skipped malformed rows", log.FieldOperation, log.OpSummarize, log.FieldSkipped, s.Skipped)
	}
	return s, nil
}

func (l *Ledger) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, l.timeout)
}
