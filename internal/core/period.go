package core

import (
	"errors"
	"strings"
)

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// Period is the optional argument of a summary request.
type Period string

var ErrUnknownPeriod = errors.New("unknown period")

// Periods lists the accepted keywords in display order.
var Periods = []Period{Daily, Weekly, Monthly}

// ParsePeriod normalizes a keyword. An empty argument yields the empty Period (all time).
func ParsePeriod(arg string) (Period, error) {
	p := Period(strings.ToLower(TrimText(arg)))
	switch p {
	case "", Daily, Weekly, Monthly:
		return p, nil
	default:
		return "", ErrUnknownPeriod
	}
}

// WindowStart returns the first date included by the period, relative to today.
// The empty Period returns a zero Date, meaning no lower bound.
func (p Period) WindowStart(today Date) Date {
	switch p {
	case Daily:
		return today
	case Weekly:
		return today.AddDays(-7)
	case Monthly:
		return today.AddDays(-30)
	default:
		return Date{}
	}
}
