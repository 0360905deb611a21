package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"opendoors/pkg/models"
)

var exportHeader = []string{
	"ID", "Tipo", "Fecha Emisión", "Cliente/Proveedor", "CUIT", "Total", "IVA",
	"Mov. Cta.", "Otros Impuestos", "Método Pago", "Compensación IVA",
	"Dirección", "Estado Pago", "Cargado Por",
}

func TestParseRowsExportLayout(t *testing.T) {
	rows := [][]string{
		{"17", "Factura A", "15/01/2024", "ACME S.A.", "30-71234567-1", "$1.210,00", "210,00",
			"SI", "0", "Transferencia", "NO", "emitida", "approved", "Joni"},
		{"18", "B", "2024-02-01", "Kiosco", "", "500", "", "NO", "", "", "", "recibida", "", ""},
	}

	batch, err := ParseRows(exportHeader, rows, 2)
	require.NoError(t, err)
	require.Empty(t, batch.Skipped)
	require.Len(t, batch.Invoices, 2)

	a := batch.Invoices[0]
	assert.Equal(t, "17", a.ID)
	assert.Equal(t, models.FiscalTypeA, a.FiscalType)
	assert.Equal(t, models.DirectionIssued, a.Direction)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), a.IssueDate)
	assert.Equal(t, "1210", a.Total.String())
	assert.Equal(t, "210", a.TaxAmount.String())
	assert.Equal(t, "1000", a.Subtotal.String(), "subtotal derived from total - IVA - otros")
	assert.True(t, a.AccountMovement)
	assert.False(t, a.IsTaxCompensationOnly)
	assert.Equal(t, models.PaymentTransfer, a.PaymentMethod)
	assert.Equal(t, models.StatusApproved, a.Status)
	assert.Equal(t, "Joni", a.Owner)

	b := batch.Invoices[1]
	assert.False(t, b.AccountMovement)
	assert.Equal(t, models.DirectionReceived, b.Direction)
	assert.Equal(t, models.StatusPendingApproval, b.Status, "empty status is a fresh draft")
}

func TestParseRowsReadsCommaAsDecimal(t *testing.T) {
	header := []string{"Tipo", "Fecha", "Total", "IVA", "Dirección"}
	rows := [][]string{
		{"C", "15/01/2024", "0,500", "", "recibida"},
		{"C", "15/01/2024", "1,500", "", "recibida"},
		{"C", "15/01/2024", "0.125", "", "recibida"},
		{"C", "15/01/2024", "2.500", "", "recibida"},
	}

	batch, err := ParseRows(header, rows, 2)
	require.NoError(t, err)
	require.Empty(t, batch.Skipped)
	require.Len(t, batch.Invoices, 4)

	assert.Equal(t, "0.5", batch.Invoices[0].Total.String())
	assert.Equal(t, "1.5", batch.Invoices[1].Total.String())
	assert.Equal(t, "0.125", batch.Invoices[2].Total.String())
	assert.Equal(t, "2500", batch.Invoices[3].Total.String())
}

func TestParseRowsSkipsBadRows(t *testing.T) {
	header := []string{"Tipo", "Fecha", "Total", "Dirección", "Estado"}
	rows := [][]string{
		{"A", "15/01/2024", "100", "emitida", ""},
		{"Z", "15/01/2024", "100", "emitida", ""},
		{},
		{"A", "no es fecha", "100", "emitida", ""},
		{"A", "15/01/2024", "cien", "emitida", ""},
		{"A", "15/01/2024", "100", "de costado", ""},
		{"A", "15/01/2024", "100", "emitida", "archivada"},
		{"A", "15/01/2024", "", "emitida", ""},
	}

	batch, err := ParseRows(header, rows, 2)
	require.NoError(t, err)
	assert.Len(t, batch.Invoices, 1)
	require.Len(t, batch.Skipped, 6)

	assert.Equal(t, 3, batch.Skipped[0].Row)
	assert.Equal(t, "Tipo", batch.Skipped[0].Column)
	assert.ErrorIs(t, batch.Skipped[0], ErrUnknownValue)
	assert.Equal(t, 5, batch.Skipped[1].Row, "blank rows keep their number")
	assert.Equal(t, "Estado Pago", batch.Skipped[4].Column)
	assert.Equal(t, "Total", batch.Skipped[5].Column)
}

func TestParseRowsGeneratesIDs(t *testing.T) {
	header := []string{"Tipo", "Fecha", "Total"}
	batch, err := ParseRows(header, [][]string{{"C", "01/03/2024", "50"}, {"C", "01/03/2024", "50"}}, 2)
	require.NoError(t, err)
	require.Len(t, batch.Invoices, 2)
	assert.NotEmpty(t, batch.Invoices[0].ID)
	assert.NotEqual(t, batch.Invoices[0].ID, batch.Invoices[1].ID)
}

func TestNewLayoutMissingColumn(t *testing.T) {
	_, err := NewLayout([]string{"Tipo", "Fecha"})
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "Total")
}

func TestFieldParsers(t *testing.T) {
	ft, err := parseFiscalType(" fc  e ")
	require.NoError(t, err)
	assert.Equal(t, models.FiscalTypeE, ft)

	pm, err := parsePaymentMethod("Tarjeta de Crédito")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCreditCard, pm)

	flag, err := parseFlag("Sí", false)
	require.NoError(t, err)
	assert.True(t, flag)

	_, err = parseFlag("quizás", false)
	assert.ErrorIs(t, err, ErrUnknownValue)

	d, err := parseDate("2024-01-15T23:30:00-03:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), d)
}
