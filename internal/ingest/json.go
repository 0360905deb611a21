package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"opendoors/internal/invoice"
	"opendoors/pkg/models"
)

// invoiceJSON is the wire form of an invoice. Enum values accept both the
// canonical spelling and the Spanish one; dates accept "2006-01-02",
// "02/01/2006" and RFC 3339.
type invoiceJSON struct {
	ID                    string           `json:"id"`
	InvoiceNumber         string           `json:"invoice_number"`
	Direction             string           `json:"direction"`
	FiscalType            string           `json:"fiscal_type"`
	AccountMovement       *bool            `json:"account_movement"`
	IsTaxCompensationOnly bool             `json:"is_tax_compensation_only"`
	PaymentMethod         string           `json:"payment_method"`
	Subtotal              *decimal.Decimal `json:"subtotal"`
	TaxAmount             decimal.Decimal  `json:"tax_amount"`
	OtherTaxes            decimal.Decimal  `json:"other_taxes"`
	Total                 decimal.Decimal  `json:"total"`
	IssueDate             string           `json:"issue_date"`
	DueDate               string           `json:"due_date"`
	CounterpartyName      string           `json:"counterparty_name"`
	CounterpartyTaxID     string           `json:"counterparty_tax_id"`
	Owner                 string           `json:"owner"`
	Status                string           `json:"status"`
}

// DecodeJSON reads either a JSON array of invoices or an object with an
// "invoices" array. Entries that fail to convert are skipped and reported
// in the batch; malformed JSON fails the whole read.
func DecodeJSON(r io.Reader) (*Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read invoices: %w", err)
	}

	var items []invoiceJSON
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Invoices []invoiceJSON `json:"invoices"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode invoices: %w", err)
		}
		items = envelope.Invoices
	} else if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode invoices: %w", err)
	}

	batch := &Batch{Invoices: make([]models.Invoice, 0, len(items))}
	for i, item := range items {
		inv, rowErr := item.toInvoice(i + 1)
		if rowErr != nil {
			batch.Skipped = append(batch.Skipped, rowErr)
			continue
		}
		batch.Invoices = append(batch.Invoices, inv)
	}
	return batch, nil
}

func (j invoiceJSON) toInvoice(pos int) (models.Invoice, *RowError) {
	fail := func(field, value string, err error) (models.Invoice, *RowError) {
		return models.Invoice{}, &RowError{Row: pos, Column: field, Value: value, Err: err}
	}

	inv := models.Invoice{
		ID:                    j.ID,
		InvoiceNumber:         j.InvoiceNumber,
		IsTaxCompensationOnly: j.IsTaxCompensationOnly,
		TaxAmount:             j.TaxAmount,
		OtherTaxes:            j.OtherTaxes,
		Total:                 j.Total,
		CounterpartyName:      j.CounterpartyName,
		CounterpartyTaxID:     j.CounterpartyTaxID,
		Owner:                 j.Owner,
		AccountMovement:       true,
	}
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if j.AccountMovement != nil {
		inv.AccountMovement = *j.AccountMovement
	}
	if j.Subtotal != nil {
		inv.Subtotal = *j.Subtotal
	} else {
		inv.Subtotal = j.Total.Sub(j.TaxAmount).Sub(j.OtherTaxes)
	}

	var err error
	if inv.Direction, err = parseDirection(j.Direction); err != nil {
		return fail("direction", j.Direction, err)
	}
	if inv.FiscalType, err = parseFiscalType(j.FiscalType); err != nil {
		return fail("fiscal_type", j.FiscalType, err)
	}
	if inv.PaymentMethod, err = parsePaymentMethod(j.PaymentMethod); err != nil {
		return fail("payment_method", j.PaymentMethod, err)
	}
	if inv.Status, err = parseStatus(j.Status); err != nil {
		return fail("status", j.Status, err)
	}
	if inv.IssueDate, err = parseDate(j.IssueDate); err != nil {
		return fail("issue_date", j.IssueDate, err)
	}
	if j.DueDate != "" {
		due, err := parseDate(j.DueDate)
		if err != nil {
			return fail("due_date", j.DueDate, err)
		}
		inv.DueDate = &due
	}

	if err := invoice.Validate(inv); err != nil {
		return models.Invoice{}, &RowError{Row: pos, Err: err}
	}
	return inv, nil
}
