package partner

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrConservation is returned when the partner shares do not add up to
	// the balances they were apportioned from.
	ErrConservation = errors.New("partner shares do not sum to the report balance")

	// ErrNoResult is returned when Apportion is called without a balance result.
	ErrNoResult = errors.New("no balance result to apportion")
)

// ConservationError reports which balance failed the cross-check.
type ConservationError struct {
	Balance  string
	Expected decimal.Decimal
	Sum      decimal.Decimal
}

// Error implements the error interface.
func (e *ConservationError) Error() string {
	return fmt.Sprintf("%s: partner sum %s, report balance %s (difference %s)",
		e.Balance, e.Sum.StringFixed(2), e.Expected.StringFixed(2), e.Sum.Sub(e.Expected).Abs().StringFixed(2))
}

// Unwrap returns ErrConservation.
func (e *ConservationError) Unwrap() error {
	return ErrConservation
}
