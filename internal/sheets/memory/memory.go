package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ledgerbot/internal/core"
	"ledgerbot/internal/sheets"
)

var _ sheets.RowStore = (*Store)(nil)

// Store keeps rows in process memory. Used as the default backend and as the
// row store fake in tests.
type Store struct {
	mu      sync.Mutex
	headers []string
	rows    [][]any

	// FailAppend, when set, is returned by AppendRow instead of storing the row.
	FailAppend error
	// FailRead, when set, is returned by ReadAllRecords.
	FailRead error
}

func New() *Store {
	return &Store{headers: append([]string(nil), core.Headers...)}
}

// NewWithRows seeds the store with already keyed rows, e.g. hand-edited sheet content.
func NewWithRows(rows ...core.Row) *Store {
	s := New()
	for _, r := range rows {
		fields := make([]any, len(s.headers))
		for i, h := range s.headers {
			fields[i] = r[h]
		}
		s.rows = append(s.rows, fields)
	}
	return s
}

// AppendRow stores a copy of fields.
func (s *Store) AppendRow(_ context.Context, fields []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAppend != nil {
		return s.FailAppend
	}
	if len(fields) != len(s.headers) {
		return fmt.Errorf("expected %d fields, got %d", len(s.headers), len(fields))
	}
	s.rows = append(s.rows, append([]any(nil), fields...))
	return nil
}

// ReadAllRecords returns rows in insertion order.
func (s *Store) ReadAllRecords(_ context.Context) ([]core.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRead != nil {
		return nil, s.FailRead
	}
	out := make([]core.Row, 0, len(s.rows))
	for _, fields := range s.rows {
		r := make(core.Row, len(s.headers))
		for i, h := range s.headers {
			r[h] = fields[i]
		}
		out = append(out, r)
	}
	return out, nil
}

// Len returns the number of stored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// ErrUnavailable is a convenience failure for tests simulating an offline store.
var ErrUnavailable = errors.New("row store unavailable")
