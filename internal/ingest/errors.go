package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a tabular source lacks a required column.
	ErrMissingColumn = errors.New("required column missing")

	// ErrUnknownValue is returned when a cell holds a value no enum accepts.
	ErrUnknownValue = errors.New("unrecognized value")

	// ErrUnsupportedSource is returned for file extensions no reader handles.
	ErrUnsupportedSource = errors.New("unsupported invoice source")
)

// RowError describes why one input row was skipped.
type RowError struct {
	Row    int // 1-based, header included
	Column string
	Value  string
	Err    error
}

// Error implements the error interface.
func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column %q (value %q): %v", e.Row, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Unwrap returns the underlying error.
func (e *RowError) Unwrap() error {
	return e.Err
}
