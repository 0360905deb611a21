package period

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidRange is returned when an explicit range has start after end.
	ErrInvalidRange = errors.New("invalid period range")

	// ErrInvalidFiscalStart is returned when the configured fiscal-year start
	// is not a day that exists in every year.
	ErrInvalidFiscalStart = errors.New("invalid fiscal year start")

	// ErrEmptySelector is returned when a selector names neither a fiscal
	// year nor a range.
	ErrEmptySelector = errors.New("empty period selector")
)

// RangeError carries the offending bounds of an explicit range.
type RangeError struct {
	Start time.Time
	End   time.Time
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("period: start %s is after end %s", e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

// Unwrap returns ErrInvalidRange.
func (e *RangeError) Unwrap() error {
	return ErrInvalidRange
}
