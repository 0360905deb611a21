package services

import (
	"context"

	"opendoors/pkg/models"
)

// InvoiceSource supplies a read-only snapshot of the invoice collection
type InvoiceSource interface {
	// Invoices returns every invoice known to the source
	Invoices(ctx context.Context) ([]models.Invoice, error)
}

// ReportExporter renders a balance summary to some destination
type ReportExporter interface {
	Export(ctx context.Context, summary models.Summary) error
}
