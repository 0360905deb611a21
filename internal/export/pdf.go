package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"opendoors/pkg/models"
)

// BuildPDF renders the summary as an A4 report.
func BuildPDF(s models.Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	heading := Heading(s)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(heading[0]))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	for _, line := range heading[1:] {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	table(pdf, tr, []float64{42, 28, 28, 28, 22, 21, 21}, ReportHeader, ReportRows(s))
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, tr("Indicadores"))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	for _, r := range IndicatorRows(s) {
		pdf.CellFormat(60, 6, tr(r[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, tr(r[1]), "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(s.Partners) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 6, tr("Socios"))
		pdf.Ln(7)
		table(pdf, tr, []float64{34, 27, 27, 27, 27, 27, 21}, PartnerHeader, PartnerRows(s))
	}

	if len(s.Warnings) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 6, tr(fmt.Sprintf("Advertencias (%d)", len(s.Warnings))))
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 8)
		for _, w := range WarningRows(s) {
			pdf.MultiCell(0, 4, tr(fmt.Sprintf("%s [%s] %s", w[0], w[1], w[2])), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func table(pdf *gofpdf.Fpdf, tr func(string) string, widths []float64, header []string, rows [][]string) {
	pdf.SetFont("Arial", "B", 9)
	for i, h := range header {
		pdf.CellFormat(widths[i], 6, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		for i, v := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, tr(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}
