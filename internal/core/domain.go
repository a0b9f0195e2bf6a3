package core

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Column headers of the ledger sheet, in append order.
const (
	ColumnDate      = "Date"
	ColumnUser      = "User"
	ColumnAction    = "Action"
	ColumnQuantity  = "Quantity"
	ColumnUnitPrice = "Unit Price"
	ColumnTotal     = "Total"
)

// Headers lists the ledger columns in the order AppendRow receives them.
var Headers = []string{ColumnDate, ColumnUser, ColumnAction, ColumnQuantity, ColumnUnitPrice, ColumnTotal}

type (
	// Date is a calendar date stored at UTC midnight.
	Date struct {
		time.Time
	}

	// Row is a loosely typed record as returned by a row store, keyed by header.
	Row map[string]any

	ParsedAction struct {
		Quantity   int64
		ActionName string
	}

	PricedLine struct {
		UnitPrice int64
		Total     int64
	}

	// PricedRecord is the unit appended to the ledger. Never mutated after creation.
	PricedRecord struct {
		Date       Date
		User       string
		ActionName string
		Quantity   int64
		UnitPrice  int64
		Total      int64
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 timestamps.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// IsEmpty returns true if the date is zero (unset optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// String renders the ISO-8601 calendar date written to the row store.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// Fields returns the record in row-store column order.
func (r PricedRecord) Fields() []any {
	return []any{r.Date.String(), r.User, r.ActionName, r.Quantity, r.UnitPrice, r.Total}
}

