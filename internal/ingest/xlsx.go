package ingest

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"opendoors/internal/currency"
)

var (
	amountColumns = []Column{ColSubtotal, ColTax, ColOtherTaxes, ColTotal}
	dateColumns   = []Column{ColIssueDate, ColDueDate}
)

// ReadXLSX parses the invoice table of a workbook. sheet may be empty to use
// the first sheet. The header is the first non-empty row. Numeric amount and
// date cells are read from their stored value, so the workbook's display
// format never changes the figures.
func ReadXLSX(r io.Reader, sheet string) (*Batch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	headerAt := -1
	for i, row := range rows {
		if !blank(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return &Batch{}, nil
	}
	header := rows[headerAt]
	layout, err := NewLayout(header)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	data := rows[headerAt+1:]
	for i, row := range data {
		rowNum := headerAt + 2 + i
		for _, col := range amountColumns {
			normalizeCell(f, sheet, row, layout.Index(col), rowNum, formatAmount)
		}
		for _, col := range dateColumns {
			normalizeCell(f, sheet, row, layout.Index(col), rowNum, formatSerialDate)
		}
	}
	return ParseRows(header, data, headerAt+2)
}

// normalizeCell rewrites row[idx] with convert when the cell holds a number.
// Text cells are left for the regular parsers.
func normalizeCell(f *excelize.File, sheet string, row []string, idx, rowNum int, convert func(string) (string, bool)) {
	if idx < 0 || idx >= len(row) || row[idx] == "" {
		return
	}
	name, err := excelize.CoordinatesToCellName(idx+1, rowNum)
	if err != nil {
		return
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil || (typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber && typ != excelize.CellTypeDate) {
		return
	}
	if v, ok := convert(row[idx]); ok {
		row[idx] = v
	}
}

func formatAmount(raw string) (string, bool) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return "", false
	}
	return currency.Format(d), true
}

func formatSerialDate(raw string) (string, bool) {
	serial, err := decimal.NewFromString(raw)
	if err != nil {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial.InexactFloat64(), false)
	if err != nil {
		return "", false
	}
	return t.Format(time.DateOnly), true
}
