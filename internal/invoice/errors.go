package invoice

import (
	"errors"
	"fmt"
)

// Common invoice validation errors
var (
	// ErrPreconditionViolation is returned when an invoice carries a value the
	// classification rules cannot interpret (unknown enum, missing id or date).
	// Such invoices are never coerced; the caller must fix them first.
	ErrPreconditionViolation = errors.New("invoice precondition violated")

	// ErrInvalidCUIT is returned by ValidateCUIT for malformed tax ids.
	ErrInvalidCUIT = errors.New("invalid CUIT")
)

// ValidationError represents a precondition failure on one invoice field.
type ValidationError struct {
	InvoiceID string
	Field     string
	Value     interface{}
	Message   string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.InvoiceID != "" {
		return fmt.Sprintf("invoice %s: validation error for field '%s': %s (value: %v)", e.InvoiceID, e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Is makes every ValidationError match ErrPreconditionViolation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrPreconditionViolation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(invoiceID, field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		InvoiceID: invoiceID,
		Field:     field,
		Value:     value,
		Message:   message,
	}
}

// CUITError explains why a tax id was rejected.
type CUITError struct {
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *CUITError) Error() string {
	return fmt.Sprintf("invalid CUIT %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidCUIT.
func (e *CUITError) Unwrap() error {
	return ErrInvalidCUIT
}
