package models

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable covers network failures, non-2xx answers, empty
	// result sets and malformed payloads from the upstream API.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInsufficientData means a statistic lacks the periods or peers it needs.
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidQuery     = errors.New("invalid query")
)

// QueryError pins an invalid query to the offending field.
type QueryError struct {
	Field  string
	Reason string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query: %s: %s", e.Field, e.Reason)
}

func (e *QueryError) Unwrap() error { return ErrInvalidQuery }

func invalid(field, format string, args ...interface{}) error {
	return &QueryError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
