package core

import "fmt"

type ParseFailureReason string

const (
	NotTwoTokens       ParseFailureReason = "not_two_tokens"
	QuantityNotInteger ParseFailureReason = "quantity_not_integer"
	EmptyActionName    ParseFailureReason = "empty_action_name"
)

type PriceFailureReason string

const (
	UnknownAction PriceFailureReason = "unknown_action"
	TotalOverflow PriceFailureReason = "total_overflow"
)

// ParseFailure reports a message that does not have the "<quantity> <action>" shape.
type ParseFailure struct {
	Reason ParseFailureReason
	Text   string
}

func (f *ParseFailure) Error() string {
	return fmt.Sprintf("parse %q: %s", f.Text, f.Reason)
}

// PriceFailure reports an action that cannot be priced from the catalog.
type PriceFailure struct {
	Reason     PriceFailureReason
	ActionName string
}

func (f *PriceFailure) Error() string {
	return fmt.Sprintf("price %q: %s", f.ActionName, f.Reason)
}

// AppendFailure wraps a row store error. The record it carried is lost.
type AppendFailure struct {
	Cause error
}

func (f *AppendFailure) Error() string {
	return fmt.Sprintf("append record: %v", f.Cause)
}

func (f *AppendFailure) Unwrap() error { return f.Cause }

// RowCoercionFailure describes a stored row that could not be read back as a record.
type RowCoercionFailure struct {
	Column string
	Value  any
	Err    error
}

func (f *RowCoercionFailure) Error() string {
	return fmt.Sprintf("coerce column %q (value %v): %v", f.Column, f.Value, f.Err)
}

func (f *RowCoercionFailure) Unwrap() error { return f.Err }
