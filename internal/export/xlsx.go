package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"opendoors/pkg/models"
)

const (
	balanceSheet = "Balances"
	partnerSheet = "Socios"
	warningSheet = "Advertencias"
)

// BuildXLSX renders the summary as a workbook with one sheet for the
// balances and indicators, one for the partners and one for the warnings.
// Amounts are written as numbers so the workbook stays computable.
func BuildXLSX(s models.Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", balanceSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(partnerSheet); err != nil {
		return nil, fmt.Errorf("create sheet %s: %w", partnerSheet, err)
	}
	if _, err := f.NewSheet(warningSheet); err != nil {
		return nil, fmt.Errorf("create sheet %s: %w", warningSheet, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	row := 1
	for _, line := range Heading(s) {
		_ = f.SetCellValue(balanceSheet, cell(1, row), line)
		row++
	}
	_ = f.SetCellStyle(balanceSheet, "A1", "A1", bold)
	row++

	writeHeader(f, balanceSheet, row, ReportHeader, bold)
	row++
	for _, r := range s.Reports {
		values := []interface{}{
			r.Label,
			r.TotalIn.InexactFloat64(),
			r.TotalOut.InexactFloat64(),
			r.Net.InexactFloat64(),
			r.State,
			r.InvoicesIn,
			r.InvoicesOut,
		}
		if err := f.SetSheetRow(balanceSheet, cell(1, row), &values); err != nil {
			return nil, fmt.Errorf("write report row: %w", err)
		}
		row++
	}
	row++
	for _, r := range IndicatorRows(s) {
		_ = f.SetCellValue(balanceSheet, cell(1, row), r[0])
		_ = f.SetCellValue(balanceSheet, cell(2, row), r[1])
		row++
	}

	writeHeader(f, partnerSheet, 1, PartnerHeader, bold)
	for i, p := range s.Partners {
		values := []interface{}{
			p.PartnerName,
			p.CashBalance.InexactFloat64(),
			p.TaxLedgerBalance.InexactFloat64(),
			p.FiscalBalance.InexactFloat64(),
			p.TotalIncome.InexactFloat64(),
			p.TotalExpense.InexactFloat64(),
			p.InvoiceCount,
		}
		if err := f.SetSheetRow(partnerSheet, cell(1, i+2), &values); err != nil {
			return nil, fmt.Errorf("write partner row: %w", err)
		}
	}

	writeHeader(f, warningSheet, 1, WarningHeader, bold)
	for i, w := range WarningRows(s) {
		if err := f.SetSheetRow(warningSheet, cell(1, i+2), &w); err != nil {
			return nil, fmt.Errorf("write warning row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, row int, header []string, style int) {
	_ = f.SetSheetRow(sheet, cell(1, row), &header)
	_ = f.SetCellStyle(sheet, cell(1, row), cell(len(header), row), style)
}

func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Sprintf("A%d", row)
	}
	return name
}
