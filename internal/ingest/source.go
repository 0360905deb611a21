// Package ingest reads invoice snapshots from JSON files, XLSX workbooks
// and Google Sheets worksheets.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"opendoors/internal/logger"
	"opendoors/pkg/models"
	"opendoors/pkg/services"
)

// BatchReader produces a batch of invoices together with the skipped rows.
type BatchReader interface {
	ReadBatch(ctx context.Context) (*Batch, error)
}

// FileReader reads a .json or .xlsx file.
type FileReader struct {
	Path  string
	Sheet string // XLSX only; empty means the first sheet
}

// NewFileReader checks the extension of path.
func NewFileReader(path, sheet string) (*FileReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".xlsx":
		return &FileReader{Path: path, Sheet: sheet}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
	}
}

// ReadBatch opens and parses the file.
func (fr *FileReader) ReadBatch(ctx context.Context) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(fr.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fr.Path, err)
	}
	defer file.Close()

	var batch *Batch
	if strings.EqualFold(filepath.Ext(fr.Path), ".xlsx") {
		batch, err = ReadXLSX(file, fr.Sheet)
	} else {
		batch, err = DecodeJSON(file)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fr.Path, err)
	}
	return batch, nil
}

// Source adapts a BatchReader to services.InvoiceSource, logging every
// skipped row.
type Source struct {
	reader BatchReader
	log    zerolog.Logger
}

// NewSource wraps reader.
func NewSource(reader BatchReader) *Source {
	return &Source{reader: reader, log: logger.WithComponent("ingest")}
}

// Invoices returns the invoices that parsed.
func (s *Source) Invoices(ctx context.Context) ([]models.Invoice, error) {
	batch, err := s.reader.ReadBatch(ctx)
	if err != nil {
		return nil, err
	}
	for _, skipped := range batch.Skipped {
		s.log.Warn().Err(skipped).Msg("Skipping invoice row")
	}
	s.log.Debug().
		Int("invoices", len(batch.Invoices)).
		Int("skipped", len(batch.Skipped)).
		Msg("Invoice snapshot loaded")
	return batch.Invoices, nil
}

var _ services.InvoiceSource = (*Source)(nil)
