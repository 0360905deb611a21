package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"opendoors/internal/logger"
)

// RangeReader reads cell values from a spreadsheet range; *sheets.Service
// implements it.
type RangeReader interface {
	ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error)
}

// SheetReader reads the invoice table from a Google Sheets worksheet
type SheetReader struct {
	reader    RangeReader
	worksheet string
	log       zerolog.Logger
}

// NewSheetReader creates a reader for one worksheet
func NewSheetReader(reader RangeReader, worksheet string) *SheetReader {
	return &SheetReader{
		reader:    reader,
		worksheet: worksheet,
		log:       logger.WithComponent("sheet-reader"),
	}
}

// ReadBatch reads the worksheet. The first row is the header; columns are
// matched by name, so their order in the sheet does not matter.
func (sr *SheetReader) ReadBatch(ctx context.Context) (*Batch, error) {
	const op = "ReadBatch"

	sr.log.Info().Str("sheet", sr.worksheet).Msg("Reading invoices")

	values, err := sr.reader.ReadRange(ctx, sr.worksheet+"!A:Z")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s sheet: %w", op, sr.worksheet, err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%s: %s sheet is empty", op, sr.worksheet)
	}

	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = make([]string, len(row))
		for j := range row {
			rows[i][j] = getString(row, j)
		}
	}

	batch, err := ParseRows(rows[0], rows[1:], 2)
	if err != nil {
		return nil, fmt.Errorf("%s: %s sheet: %w", op, sr.worksheet, err)
	}

	for _, skipped := range batch.Skipped {
		sr.log.Warn().
			Err(skipped.Err).
			Int("row", skipped.Row).
			Str("column", skipped.Column).
			Str("sheet", sr.worksheet).
			Msg("Failed to parse invoice, skipping")
	}

	sr.log.Info().
		Int("total_rows", len(values)-1).
		Int("parsed_invoices", len(batch.Invoices)).
		Str("sheet", sr.worksheet).
		Msg("Invoices read successfully")

	return batch, nil
}

// getString safely extracts a string value from a row slice
func getString(row []interface{}, index int) string {
	if index >= len(row) || row[index] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[index]))
}
