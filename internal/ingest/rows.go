package ingest

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"opendoors/internal/currency"
	"opendoors/internal/invoice"
	"opendoors/pkg/models"
)

// Column identifies one invoice field in a tabular source.
type Column int

const (
	ColID Column = iota
	ColNumber
	ColFiscalType
	ColIssueDate
	ColDueDate
	ColCounterparty
	ColTaxID
	ColSubtotal
	ColTax
	ColOtherTaxes
	ColTotal
	ColMovement
	ColCompensation
	ColPaymentMethod
	ColDirection
	ColStatus
	ColOwner
	numColumns
)

// headerAliases maps folded header text to columns. The Spanish names are
// those of the invoice export ("Mov. Cta.", "Compensación IVA", ...).
var headerAliases = map[string]Column{
	"id":                       ColID,
	"numero":                   ColNumber,
	"numero factura":           ColNumber,
	"nro":                      ColNumber,
	"nro factura":              ColNumber,
	"invoice_number":           ColNumber,
	"tipo":                     ColFiscalType,
	"tipo factura":             ColFiscalType,
	"fiscal_type":              ColFiscalType,
	"fecha":                    ColIssueDate,
	"fecha emision":            ColIssueDate,
	"issue_date":               ColIssueDate,
	"vencimiento":              ColDueDate,
	"fecha vencimiento":        ColDueDate,
	"due_date":                 ColDueDate,
	"cliente/proveedor":        ColCounterparty,
	"razon social":             ColCounterparty,
	"counterparty_name":        ColCounterparty,
	"cuit":                     ColTaxID,
	"counterparty_tax_id":      ColTaxID,
	"subtotal":                 ColSubtotal,
	"neto":                     ColSubtotal,
	"importe neto":             ColSubtotal,
	"iva":                      ColTax,
	"tax_amount":               ColTax,
	"otros impuestos":          ColOtherTaxes,
	"other_taxes":              ColOtherTaxes,
	"total":                    ColTotal,
	"mov. cta.":                ColMovement,
	"mov cta":                  ColMovement,
	"movimiento cuenta":        ColMovement,
	"account_movement":         ColMovement,
	"compensacion iva":         ColCompensation,
	"is_tax_compensation_only": ColCompensation,
	"metodo pago":              ColPaymentMethod,
	"metodo de pago":           ColPaymentMethod,
	"payment_method":           ColPaymentMethod,
	"direccion":                ColDirection,
	"direction":                ColDirection,
	"estado pago":              ColStatus,
	"estado":                   ColStatus,
	"status":                   ColStatus,
	"cargado por":              ColOwner,
	"socio":                    ColOwner,
	"owner":                    ColOwner,
}

var requiredColumns = []struct {
	col  Column
	name string
}{
	{ColFiscalType, "Tipo"},
	{ColIssueDate, "Fecha Emisión"},
	{ColTotal, "Total"},
}

// Layout records the position of each known column in a header row.
type Layout struct {
	index [numColumns]int
}

// NewLayout maps a header row. Unknown headers are ignored; a missing
// required column fails with ErrMissingColumn.
func NewLayout(header []string) (*Layout, error) {
	l := &Layout{}
	for i := range l.index {
		l.index[i] = -1
	}
	for i, h := range header {
		if col, ok := headerAliases[fold(h)]; ok && l.index[col] < 0 {
			l.index[col] = i
		}
	}
	for _, req := range requiredColumns {
		if l.index[req.col] < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, req.name)
		}
	}
	return l, nil
}

// Has reports whether the header carried col.
func (l *Layout) Has(col Column) bool {
	return l.index[col] >= 0
}

// Index returns the 0-based position of col in the header, or -1.
func (l *Layout) Index(col Column) int {
	return l.index[col]
}

func (l *Layout) get(row []string, col Column) string {
	i := l.index[col]
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// Batch is the outcome of reading a tabular source: the invoices that
// parsed, and the rows that were skipped with the reason.
type Batch struct {
	Invoices []models.Invoice
	Skipped  []*RowError
}

// ParseRows converts data rows under header into invoices. Rows that fail
// to parse are skipped and reported; they are never coerced. Entirely empty
// rows are ignored. firstRow is the 1-based row number of rows[0].
//
// Defaults follow the invoice export: a missing direction is RECEIVED, a
// missing "Mov. Cta." is SI, a missing status is PENDING_APPROVAL and a
// missing subtotal is total - IVA - otros impuestos. Rows without an id get
// a random UUID.
func ParseRows(header []string, rows [][]string, firstRow int) (*Batch, error) {
	layout, err := NewLayout(header)
	if err != nil {
		return nil, err
	}
	batch := &Batch{Invoices: make([]models.Invoice, 0, len(rows))}
	for i, row := range rows {
		if blank(row) {
			continue
		}
		inv, rowErr := layout.parseRow(row, firstRow+i)
		if rowErr != nil {
			batch.Skipped = append(batch.Skipped, rowErr)
			continue
		}
		batch.Invoices = append(batch.Invoices, inv)
	}
	return batch, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

func (l *Layout) parseRow(row []string, rowNum int) (models.Invoice, *RowError) {
	fail := func(col string, value string, err error) (models.Invoice, *RowError) {
		return models.Invoice{}, &RowError{Row: rowNum, Column: col, Value: value, Err: err}
	}

	inv := models.Invoice{
		ID:                l.get(row, ColID),
		InvoiceNumber:     l.get(row, ColNumber),
		CounterpartyName:  l.get(row, ColCounterparty),
		CounterpartyTaxID: l.get(row, ColTaxID),
		Owner:             l.get(row, ColOwner),
	}
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}

	var err error
	inv.Direction = models.DirectionReceived
	if raw := l.get(row, ColDirection); raw != "" {
		if inv.Direction, err = parseDirection(raw); err != nil {
			return fail("Dirección", raw, err)
		}
	}
	raw := l.get(row, ColFiscalType)
	if inv.FiscalType, err = parseFiscalType(raw); err != nil {
		return fail("Tipo", raw, err)
	}
	raw = l.get(row, ColIssueDate)
	if inv.IssueDate, err = parseDate(raw); err != nil {
		return fail("Fecha Emisión", raw, err)
	}
	if raw = l.get(row, ColDueDate); raw != "" {
		due, err := parseDate(raw)
		if err != nil {
			return fail("Vencimiento", raw, err)
		}
		inv.DueDate = &due
	}
	raw = l.get(row, ColStatus)
	if inv.Status, err = parseStatus(raw); err != nil {
		return fail("Estado Pago", raw, err)
	}
	raw = l.get(row, ColPaymentMethod)
	if inv.PaymentMethod, err = parsePaymentMethod(raw); err != nil {
		return fail("Método Pago", raw, err)
	}
	raw = l.get(row, ColMovement)
	if inv.AccountMovement, err = parseFlag(raw, true); err != nil {
		return fail("Mov. Cta.", raw, err)
	}
	raw = l.get(row, ColCompensation)
	if inv.IsTaxCompensationOnly, err = parseFlag(raw, false); err != nil {
		return fail("Compensación IVA", raw, err)
	}

	amounts := []struct {
		col  Column
		name string
		dst  *decimal.Decimal
	}{
		{ColTotal, "Total", &inv.Total},
		{ColTax, "IVA", &inv.TaxAmount},
		{ColOtherTaxes, "Otros Impuestos", &inv.OtherTaxes},
		{ColSubtotal, "Subtotal", &inv.Subtotal},
	}
	for _, a := range amounts {
		raw := l.get(row, a.col)
		if *a.dst, err = currency.Parse(raw); err != nil {
			return fail(a.name, raw, err)
		}
	}
	if l.get(row, ColTotal) == "" {
		return fail("Total", "", fmt.Errorf("%w: empty total", ErrUnknownValue))
	}
	if l.get(row, ColSubtotal) == "" {
		inv.Subtotal = inv.Total.Sub(inv.TaxAmount).Sub(inv.OtherTaxes)
	}

	if err := invoice.Validate(inv); err != nil {
		return models.Invoice{}, &RowError{Row: rowNum, Err: err}
	}
	return inv, nil
}
