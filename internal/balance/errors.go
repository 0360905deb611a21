package balance

import (
	"errors"
	"fmt"
)

// AggregationError wraps failures of a balance run with the operation name.
type AggregationError struct {
	// Op is the operation that failed (e.g., "Aggregate").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *AggregationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("balance: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("balance: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AggregationError) Unwrap() error {
	return e.Err
}

// WrapAggregationError wraps err unless it is nil or already wrapped.
func WrapAggregationError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var aggErr *AggregationError
	if errors.As(err, &aggErr) {
		return err
	}
	return &AggregationError{Op: op, Err: err, Details: details}
}
