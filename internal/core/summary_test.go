package core

import (
	"errors"
	"reflect"
	"testing"
)

func row(date, user, action string, qty, unit, total any) Row {
	return Row{
		ColumnDate:      date,
		ColumnUser:      user,
		ColumnAction:    action,
		ColumnQuantity:  qty,
		ColumnUnitPrice: unit,
		ColumnTotal:     total,
	}
}

func TestCoerceRow(t *testing.T) {
	rec, err := CoerceRow(Row{
		"date":       "2025-06-01",
		" user ":     "alice",
		"ACTION":     " שתל ",
		"Quantity":   "3",
		"unit price": 500.0,
		ColumnTotal:  "1,500",
	})
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	want := PricedRecord{NewDate(2025, 6, 1), "alice", "שתל", 3, 500, 1500}
	if rec != want {
		t.Fatalf("got %+v want %+v", rec, want)
	}

	bad := []struct {
		row    Row
		column string
	}{
		{row("yesterday", "a", "x", 1, 1, 1), ColumnDate},
		{row("2025-06-01", "a", "", 1, 1, 1), ColumnAction},
		{row("2025-06-01", "a", "x", "three", 1, 1), ColumnQuantity},
		{row("2025-06-01", "a", "x", 1.5, 1, 1), ColumnQuantity},
		{row("2025-06-01", "a", "x", 1, nil, 1), ColumnUnitPrice},
		{row("2025-06-01", "a", "x", 1, 1, ""), ColumnTotal},
		{row("2025-06-01", "a", "x", 1, 1, true), ColumnTotal},
	}
	for i, tc := range bad {
		_, err := CoerceRow(tc.row)
		var rf *RowCoercionFailure
		if !errors.As(err, &rf) {
			t.Fatalf("case %d: expected *RowCoercionFailure, got %v", i, err)
		}
		if rf.Column != tc.column {
			t.Fatalf("case %d: column %q want %q", i, rf.Column, tc.column)
		}
	}
}

func tenRecordStore() []Row {
	return []Row{
		row("2025-06-10", "alice", "שתל", "1", "500", "500"),   // match
		row("2025-06-01", "alice", "שתל", "2", "500", "1000"),  // too old
		row("2025-06-12", "bob", "כתר", "1", "300", "300"),     // other user
		row("2025-06-13", "alice", "כתר", "2", "300", "600"),   // match
		row("2025-05-20", "alice", "עקירה", "1", "150", "150"), // too old
		row("2025-06-14", "bob", "שתל", "4", "500", "2000"),    // other user
		row("2025-06-15", "alice", "שתל", "3", "500", "1500"),  // match
		row("2025-06-15", "carol", "שתל", "1", "500", "500"),   // other user
		row("2025-06-07", "alice", "כתר", "1", "300", "300"),   // one day before window
		row("2025-06-16", "Alice", "כתר", "1", "300", "300"),   // different user (exact match)
	}
}

func TestSummarizeUserAndWindow(t *testing.T) {
	today := NewDate(2025, 6, 15)
	q := SummaryQuery{User: "alice", WindowStart: Weekly.WindowStart(today)}
	s := Summarize(tenRecordStore(), q)

	if s.TotalAmount != 500+600+1500 {
		t.Fatalf("total: got %d", s.TotalAmount)
	}
	want := []ActionQuantity{{"שתל", 4}, {"כתר", 2}}
	if !reflect.DeepEqual(s.PerAction, want) {
		t.Fatalf("per action: got %+v want %+v", s.PerAction, want)
	}
	if s.Quantity("שתל") != 4 || s.Quantity("missing") != 0 {
		t.Fatalf("unexpected quantities: %+v", s.PerAction)
	}
}

func TestSummarizeWindowIsInclusive(t *testing.T) {
	rows := []Row{row("2025-06-08", "a", "x", 1, 10, 10), row("2025-06-07", "a", "x", 1, 10, 10)}
	s := Summarize(rows, SummaryQuery{WindowStart: NewDate(2025, 6, 8)})
	if s.TotalAmount != 10 {
		t.Fatalf("expected only the boundary day, got %d", s.TotalAmount)
	}
}

func TestSummarizeNoFilters(t *testing.T) {
	s := Summarize(tenRecordStore(), SummaryQuery{})
	if s.TotalAmount != 7150 {
		t.Fatalf("total: got %d", s.TotalAmount)
	}
	want := []ActionQuantity{{"שתל", 11}, {"כתר", 5}, {"עקירה", 1}}
	if !reflect.DeepEqual(s.PerAction, want) {
		t.Fatalf("per action: got %+v", s.PerAction)
	}
}

func TestSummarizeFutureWindowIsEmpty(t *testing.T) {
	s := Summarize(tenRecordStore(), SummaryQuery{WindowStart: NewDate(2999, 1, 1)})
	if s.TotalAmount != 0 || len(s.PerAction) != 0 || s.PerAction == nil {
		t.Fatalf("expected empty summary, got %+v", s)
	}
}

func TestSummarizeSkipsMalformedRows(t *testing.T) {
	rows := []Row{
		row("2025-06-10", "alice", "שתל", "1", "500", "500"),
		row("2025-06-10", "alice", "שתל", "lots", "500", "500"),
		row("not a date", "alice", "כתר", "1", "300", "300"),
		row("2025-06-11", "alice", "כתר", 2.0, 300.0, 600.0),
	}
	s := Summarize(rows, SummaryQuery{})
	if s.TotalAmount != 1100 || s.Skipped != 2 {
		t.Fatalf("got total=%d skipped=%d", s.TotalAmount, s.Skipped)
	}
	want := []ActionQuantity{{"שתל", 1}, {"כתר", 2}}
	if !reflect.DeepEqual(s.PerAction, want) {
		t.Fatalf("per action: got %+v", s.PerAction)
	}
}

func TestSummarizeIsIdempotent(t *testing.T) {
	rows := tenRecordStore()
	q := SummaryQuery{User: "alice"}
	first := Summarize(rows, q)
	second := Summarize(rows, q)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("summaries differ: %+v vs %+v", first, second)
	}
}

func TestPeriods(t *testing.T) {
	today := NewDate(2025, 6, 15)
	cases := []struct {
		arg  string
		want string
	}{
		{"daily", "2025-06-15"},
		{" Weekly ", "2025-06-08"},
		{"MONTHLY", "2025-05-16"},
	}
	for _, tc := range cases {
		p, err := ParsePeriod(tc.arg)
		if err != nil {
			t.Fatalf("%q: %v", tc.arg, err)
		}
		if got := p.WindowStart(today).String(); got != tc.want {
			t.Fatalf("%q: got %s want %s", tc.arg, got, tc.want)
		}
	}

	p, err := ParsePeriod("")
	if err != nil || !p.WindowStart(today).IsEmpty() {
		t.Fatalf("empty period should mean all time, got %q %v", p, err)
	}
	if _, err := ParsePeriod("yearly"); !errors.Is(err, ErrUnknownPeriod) {
		t.Fatalf("expected ErrUnknownPeriod, got %v", err)
	}
}
