package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether the firm emitted the invoice or received it.
type Direction string

const (
	DirectionIssued   Direction = "ISSUED"   // emitida, income-facing
	DirectionReceived Direction = "RECEIVED" // recibida, expense-facing
)

// FiscalType is the AFIP invoice letter.
type FiscalType string

const (
	FiscalTypeA FiscalType = "A"
	FiscalTypeB FiscalType = "B"
	FiscalTypeC FiscalType = "C"
	FiscalTypeE FiscalType = "E"
)

// PaymentMethod is how the invoice was (or will be) settled.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentTransfer   PaymentMethod = "TRANSFER"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentCheck      PaymentMethod = "CHECK"
)

// Status is the approval lifecycle state. Transitions are owned by the
// approval workflow, not by this module.
type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusPaid            Status = "PAID"
	StatusRejected        Status = "REJECTED"
	StatusDeleted         Status = "DELETED"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionIssued || d == DirectionReceived
}

// Valid reports whether t is a known fiscal type.
func (t FiscalType) Valid() bool {
	switch t {
	case FiscalTypeA, FiscalTypeB, FiscalTypeC, FiscalTypeE:
		return true
	}
	return false
}

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentTransfer, PaymentCreditCard, PaymentDebitCard, PaymentCheck:
		return true
	}
	return false
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusApproved, StatusPaid, StatusRejected, StatusDeleted:
		return true
	}
	return false
}

type Invoice struct {
	// Core identifiers
	ID            string     `json:"id"`
	InvoiceNumber string     `json:"invoice_number,omitempty"` // punto de venta + número, informational
	Direction     Direction  `json:"direction"`
	FiscalType    FiscalType `json:"fiscal_type"`

	// Business axes
	AccountMovement       bool          `json:"account_movement"`         // movimiento de cuenta: touched the bank/cash
	IsTaxCompensationOnly bool          `json:"is_tax_compensation_only"` // compensación IVA: never a cash movement
	PaymentMethod         PaymentMethod `json:"payment_method"`

	// Amounts
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"` // IVA
	OtherTaxes decimal.Decimal `json:"other_taxes"`
	Total      decimal.Decimal `json:"total"`

	// Dates
	IssueDate time.Time  `json:"issue_date"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	// Parties
	CounterpartyName  string `json:"counterparty_name"`
	CounterpartyTaxID string `json:"counterparty_tax_id,omitempty"` // CUIT
	Owner             string `json:"owner,omitempty"`               // socio responsable

	Status Status `json:"status"`
}

// ClassificationTag is derived from an Invoice on every read and never stored.
type ClassificationTag struct {
	CountsForTaxLedger     bool
	CountsForCashBalance   bool
	CountsForFiscalBalance bool
	SignedAmount           decimal.Decimal // +total for ISSUED, -total for RECEIVED
}

// CalendarDate truncates t to its UTC calendar date. Period bounds and
// invoice dates are always compared through it.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
