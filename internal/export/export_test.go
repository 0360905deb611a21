package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"opendoors/pkg/models"
)

func sampleSummary() models.Summary {
	d := decimal.RequireFromString
	return models.Summary{
		Title:       "Balance ejercicio 2024",
		PeriodStart: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Reports: []models.BalanceReport{
			{Label: "Balance IVA", TotalIn: d("210"), TotalOut: d("105"), Net: d("105"), State: models.StatePayable, InvoicesIn: 1, InvoicesOut: 1},
			{Label: "Balance Real", TotalIn: d("1210"), TotalOut: d("605"), Net: d("605"), State: models.StatePositive, InvoicesIn: 1, InvoicesOut: 1},
		},
		Indicators: models.Indicators{CashMarginPct: d("50"), IncomeExpenseRatio: d("2"), CashProfit: d("605"), FiscalProfit: d("605")},
		Partners: []models.PartnerShare{
			{PartnerName: "Joni", CashBalance: d("605"), TaxLedgerBalance: d("105"), FiscalBalance: d("605"), TotalIncome: d("1210"), TotalExpense: d("605"), InvoiceCount: 2},
		},
		Warnings: []models.DataQualityWarning{
			{InvoiceID: "F-1", Code: models.WarningTotalMismatch, Message: "total no coincide"},
		},
		GeneratedAt: time.Date(2025, 7, 2, 9, 30, 0, 0, time.UTC),
	}
}

func TestReportRowsFormatting(t *testing.T) {
	rows := ReportRows(sampleSummary())
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Balance IVA", "$210,00", "$105,00", "$105,00", "A_PAGAR", "1", "1"}, rows[0])
}

func TestHeading(t *testing.T) {
	s := sampleSummary()
	s.Owner = "Joni"
	assert.Equal(t, []string{
		"Balance ejercicio 2024",
		"Período: 01/07/2024 al 30/06/2025",
		"Socio: Joni",
		"Generado: 02/07/2025 09:30",
	}, Heading(s))
}

func TestRowsLayout(t *testing.T) {
	rows := Rows(sampleSummary())
	assert.Equal(t, "Balance ejercicio 2024", rows[0][0])

	var sawPartners, sawWarnings bool
	for _, r := range rows {
		if len(r) > 0 && r[0] == "Socio" {
			sawPartners = true
		}
		if len(r) > 0 && r[0] == "Factura" {
			sawWarnings = true
		}
	}
	assert.True(t, sawPartners)
	assert.True(t, sawWarnings)

	empty := sampleSummary()
	empty.Partners, empty.Warnings = nil, nil
	for _, r := range Rows(empty) {
		if len(r) > 0 {
			assert.NotEqual(t, "Socio", r[0])
		}
	}
}

func TestBuildXLSX(t *testing.T) {
	data, err := BuildXLSX(sampleSummary())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{balanceSheet, partnerSheet, warningSheet}, f.GetSheetList())

	title, err := f.GetCellValue(balanceSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Balance ejercicio 2024", title)

	partner, err := f.GetCellValue(partnerSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Joni", partner)

	code, err := f.GetCellValue(warningSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, models.WarningTotalMismatch, code)
}

func TestBuildPDF(t *testing.T) {
	data, err := BuildPDF(sampleSummary())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestFileExporter(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"balance.xlsx", "balance.pdf"} {
		exp, err := NewFileExporter(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, exp.Export(context.Background(), sampleSummary()))

		info, err := os.Stat(exp.Path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	_, err := NewFileExporter(filepath.Join(dir, "balance.docx"))
	assert.Error(t, err)
}

type fakeWriter struct {
	sheet string
	rows  [][]interface{}
}

func (w *fakeWriter) WriteTable(_ context.Context, sheetName string, rows [][]interface{}) error {
	w.sheet, w.rows = sheetName, rows
	return nil
}

func TestSheetExporter(t *testing.T) {
	w := &fakeWriter{}
	exp := &SheetExporter{Writer: w, SheetName: "Balance 2024"}
	require.NoError(t, exp.Export(context.Background(), sampleSummary()))
	assert.Equal(t, "Balance 2024", w.sheet)
	assert.Equal(t, Rows(sampleSummary()), w.rows)
}
