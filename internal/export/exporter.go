package export

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

// TableWriter replaces the content of a worksheet; *sheets.Service
// implements it.
type TableWriter interface {
	WriteTable(ctx context.Context, sheetName string, rows [][]interface{}) error
}

// FileExporter writes a summary to Path as XLSX or PDF.
type FileExporter struct {
	Path   string
	render func(models.Summary) ([]byte, error)
	log    zerolog.Logger
}

// NewFileExporter picks the renderer from the file extension (.xlsx or .pdf).
func NewFileExporter(path string) (*FileExporter, error) {
	var render func(models.Summary) ([]byte, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		render = BuildXLSX
	case ".pdf":
		render = BuildPDF
	default:
		return nil, fmt.Errorf("unsupported export format %q (use .xlsx or .pdf)", filepath.Ext(path))
	}
	return &FileExporter{Path: path, render: render, log: logger.WithComponent("export")}, nil
}

// Export renders the summary and writes it to Path.
func (e *FileExporter) Export(ctx context.Context, summary models.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := e.render(summary)
	if err != nil {
		return fmt.Errorf("export %s: %w", e.Path, err)
	}
	if err := os.WriteFile(e.Path, data, 0o644); err != nil {
		return fmt.Errorf("export %s: %w", e.Path, err)
	}
	e.log.Info().
		Str("path", e.Path).
		Int("bytes", len(data)).
		Msg("Summary exported")
	return nil
}

// SheetExporter writes a summary to one worksheet.
type SheetExporter struct {
	Writer    TableWriter
	SheetName string
}

// Export writes the summary rows to the worksheet.
func (e *SheetExporter) Export(ctx context.Context, summary models.Summary) error {
	if err := e.Writer.WriteTable(ctx, e.SheetName, Rows(summary)); err != nil {
		return fmt.Errorf("export to sheet %s: %w", e.SheetName, err)
	}
	return nil
}

var (
	_ services.ReportExporter = (*FileExporter)(nil)
	_ services.ReportExporter = (*SheetExporter)(nil)
)
