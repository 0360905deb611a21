package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"opendoors/internal/ingest"
	"opendoors/internal/invoice"
	"opendoors/internal/logger"
	"opendoors/pkg/models"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check an invoice snapshot before computing balances",
	Long: `Read an invoice snapshot and report:

  - rows that could not be parsed (unknown values, bad dates or amounts)
  - invoices the classifier would reject (missing id, unknown enum values)
  - data-quality warnings: total != subtotal + IVA + otros, due date before
    issue date, IVA not matching a known alícuota, invalid CUIT

Warnings never block a balance run. With --strict they make the command
exit non-zero.

Environment variables:
  AMOUNT_TOLERANCE  - Accepted gap in total = subtotal + IVA + otros (default: 0.01)`,
	Example: `  opendoors validate -i facturas.xlsx
  opendoors validate -i facturas.json --strict`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Fail on data-quality warnings too")
}

// validationReport is the JSON form of a validate run.
type validationReport struct {
	Invoices      int                         `json:"invoices"`
	SkippedRows   []string                    `json:"skipped_rows"`
	Preconditions []string                    `json:"preconditions"`
	Warnings      []models.DataQualityWarning `json:"warnings"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("validate-cmd")

	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	strict, _ := cmd.Flags().GetBool("strict")

	batch, err := loadBatch(cmd.Context(), cmd, cfg)
	if err != nil {
		return err
	}

	report := buildValidationReport(batch, invoice.NewAmountValidation(cfg.AmountTolerance))

	log.Info().
		Int("invoices", report.Invoices).
		Int("skipped", len(report.SkippedRows)).
		Int("preconditions", len(report.Preconditions)).
		Int("warnings", len(report.Warnings)).
		Msg("Validation finished")

	out := cmd.OutOrStdout()
	if format == "json" {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		printValidationReport(out, report)
	}

	switch {
	case len(report.SkippedRows) > 0 || len(report.Preconditions) > 0:
		return fmt.Errorf("%d rows skipped, %d invoices rejected", len(report.SkippedRows), len(report.Preconditions))
	case strict && len(report.Warnings) > 0:
		return fmt.Errorf("%d data-quality warnings", len(report.Warnings))
	}
	return nil
}

func buildValidationReport(batch *ingest.Batch, checker *invoice.AmountValidation) validationReport {
	report := validationReport{
		Invoices:      len(batch.Invoices),
		SkippedRows:   []string{},
		Preconditions: []string{},
		Warnings:      []models.DataQualityWarning{},
	}
	for _, skipped := range batch.Skipped {
		report.SkippedRows = append(report.SkippedRows, skipped.Error())
	}
	for _, inv := range batch.Invoices {
		if err := invoice.Validate(inv); err != nil {
			report.Preconditions = append(report.Preconditions, err.Error())
			continue
		}
		report.Warnings = append(report.Warnings, checker.Check(inv)...)
	}
	return report
}

func printValidationReport(out io.Writer, r validationReport) {
	fmt.Fprintf(out, "Facturas leídas: %d\n", r.Invoices)
	if len(r.SkippedRows) == 0 && len(r.Preconditions) == 0 && len(r.Warnings) == 0 {
		fmt.Fprintln(out, "Sin errores ni advertencias.")
		return
	}
	if len(r.SkippedRows) > 0 {
		fmt.Fprintf(out, "\nFilas descartadas (%d):\n", len(r.SkippedRows))
		for _, row := range r.SkippedRows {
			fmt.Fprintf(out, "  %s\n", row)
		}
	}
	if len(r.Preconditions) > 0 {
		fmt.Fprintf(out, "\nFacturas rechazadas (%d):\n", len(r.Preconditions))
		for _, msg := range r.Preconditions {
			fmt.Fprintf(out, "  %s\n", msg)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(out, "\nAdvertencias (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Fprintf(out, "  [%s] %s: %s\n", w.Code, w.InvoiceID, w.Message)
		}
	}
}
