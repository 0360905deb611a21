// Package export renders balance summaries as spreadsheets, PDF documents
// and Google Sheets tabs. All renderers share the row layout in this file.
package export

import (
	"fmt"

	"opendoors/internal/currency"
	"opendoors/pkg/models"
)

// ReportHeader is the header of the balance table.
var ReportHeader = []string{"Balance", "Ingresos", "Egresos", "Neto", "Estado", "Facturas ingreso", "Facturas egreso"}

// PartnerHeader is the header of the partner table.
var PartnerHeader = []string{"Socio", "Balance real", "Balance IVA", "Balance fiscal", "Ingresos", "Egresos", "Facturas"}

// WarningHeader is the header of the warning table.
var WarningHeader = []string{"Factura", "Código", "Detalle"}

// ReportRows returns one row per balance report, amounts formatted as pesos.
func ReportRows(s models.Summary) [][]string {
	rows := make([][]string, 0, len(s.Reports))
	for _, r := range s.Reports {
		rows = append(rows, []string{
			r.Label,
			currency.Format(r.TotalIn),
			currency.Format(r.TotalOut),
			currency.Format(r.Net),
			r.State,
			fmt.Sprint(r.InvoicesIn),
			fmt.Sprint(r.InvoicesOut),
		})
	}
	return rows
}

// PartnerRows returns one row per partner share.
func PartnerRows(s models.Summary) [][]string {
	rows := make([][]string, 0, len(s.Partners))
	for _, p := range s.Partners {
		rows = append(rows, []string{
			p.PartnerName,
			currency.Format(p.CashBalance),
			currency.Format(p.TaxLedgerBalance),
			currency.Format(p.FiscalBalance),
			currency.Format(p.TotalIncome),
			currency.Format(p.TotalExpense),
			fmt.Sprint(p.InvoiceCount),
		})
	}
	return rows
}

// IndicatorRows returns label/value pairs for the indicators.
func IndicatorRows(s models.Summary) [][]string {
	ind := s.Indicators
	return [][]string{
		{"Margen real", ind.CashMarginPct.StringFixed(2) + "%"},
		{"Ratio ingresos/egresos", ind.IncomeExpenseRatio.StringFixed(2)},
		{"Ganancia real", currency.Format(ind.CashProfit)},
		{"Ganancia fiscal", currency.Format(ind.FiscalProfit)},
		{"Diferencia fiscal - real", currency.Format(ind.RealFiscalGap)},
	}
}

// WarningRows returns one row per data-quality warning.
func WarningRows(s models.Summary) [][]string {
	rows := make([][]string, 0, len(s.Warnings))
	for _, w := range s.Warnings {
		rows = append(rows, []string{w.InvoiceID, w.Code, w.Message})
	}
	return rows
}

// Heading returns the title lines shared by every renderer.
func Heading(s models.Summary) []string {
	lines := []string{
		s.Title,
		fmt.Sprintf("Período: %s al %s", s.PeriodStart.Format("02/01/2006"), s.PeriodEnd.Format("02/01/2006")),
	}
	if s.Owner != "" {
		lines = append(lines, "Socio: "+s.Owner)
	}
	if !s.GeneratedAt.IsZero() {
		lines = append(lines, "Generado: "+s.GeneratedAt.Format("02/01/2006 15:04"))
	}
	return lines
}

// Rows lays the whole summary out as a single table for Google Sheets: the
// heading, the balance table, the indicators, the partners and the warnings,
// separated by blank rows.
func Rows(s models.Summary) [][]interface{} {
	var out [][]interface{}
	add := func(cells ...string) {
		row := make([]interface{}, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		out = append(out, row)
	}

	for _, line := range Heading(s) {
		add(line)
	}
	add()
	add(ReportHeader...)
	for _, r := range ReportRows(s) {
		add(r...)
	}
	add()
	for _, r := range IndicatorRows(s) {
		add(r...)
	}
	if len(s.Partners) > 0 {
		add()
		add(PartnerHeader...)
		for _, r := range PartnerRows(s) {
			add(r...)
		}
	}
	if len(s.Warnings) > 0 {
		add()
		add(WarningHeader...)
		for _, r := range WarningRows(s) {
			add(r...)
		}
	}
	return out
}
