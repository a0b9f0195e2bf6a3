package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	errMissing    = errors.New("missing value")
	errNotInteger = errors.New("not an integer")
)

// Get returns the value stored under header, matching header names
// case-insensitively and ignoring surrounding spaces.
func (r Row) Get(header string) (any, bool) {
	if v, ok := r[header]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(strings.TrimSpace(k), header) {
			return v, true
		}
	}
	return nil, false
}

// CoerceRow reads a loosely typed stored row back as a PricedRecord.
// Failures are returned as *RowCoercionFailure values.
func CoerceRow(r Row) (PricedRecord, error) {
	var rec PricedRecord

	raw, _ := r.Get(ColumnDate)
	date, err := ParseDate(toString(raw))
	if err != nil {
		return PricedRecord{}, &RowCoercionFailure{Column: ColumnDate, Value: raw, Err: err}
	}
	rec.Date = date

	raw, _ = r.Get(ColumnUser)
	rec.User = strings.TrimSpace(toString(raw))

	raw, _ = r.Get(ColumnAction)
	rec.ActionName = TrimText(toString(raw))
	if rec.ActionName == "" {
		return PricedRecord{}, &RowCoercionFailure{Column: ColumnAction, Value: raw, Err: errMissing}
	}

	for _, f := range []struct {
		column string
		dst    *int64
	}{
		{ColumnQuantity, &rec.Quantity},
		{ColumnUnitPrice, &rec.UnitPrice},
		{ColumnTotal, &rec.Total},
	} {
		raw, _ := r.Get(f.column)
		n, err := toInt64(raw)
		if err != nil {
			return PricedRecord{}, &RowCoercionFailure{Column: f.column, Value: raw, Err: err}
		}
		*f.dst = n
	}

	return rec, nil
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// toInt64 accepts integers, integral floats and numeric strings. Sheets hands
// numbers back as formatted strings, so thousands separators are dropped.
func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, errMissing
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		return floatToInt64(t)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		if s == "" {
			return 0, errMissing
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errNotInteger
		}
		return floatToInt64(f)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, errNotInteger
	}
	return int64(f), nil
}
