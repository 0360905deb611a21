package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"opendoors/internal/duplicate"
	"opendoors/internal/ingest"
	"opendoors/internal/logger"
	"opendoors/pkg/models"
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Flag invoices that look like duplicates",
	Long: `Score every invoice of the input against a history snapshot and against
the earlier rows of the input itself. Amount, date and counterparty name
are weighted into a confidence between 0 and 1; rows above the threshold
are reported as possible duplicates.

The check is advisory: it never changes an invoice and the command exits
zero even when duplicates are found.

Environment variables:
  DUPLICATE_THRESHOLD         - Confidence above which a row is flagged (default: 0.8)
  DUPLICATE_DATE_WINDOW_DAYS  - Days over which the date score decays (default: 7)`,
	Example: `  # Check a new import against the current snapshot
  opendoors duplicates -i nuevas.xlsx --history facturas.json

  # Show every scored row with a lower threshold
  opendoors duplicates -i nuevas.xlsx --threshold 0.6 --all`,
	RunE: runDuplicates,
}

func init() {
	rootCmd.AddCommand(duplicatesCmd)

	duplicatesCmd.Flags().String("history", "", "Snapshot of existing invoices (.json or .xlsx)")
	duplicatesCmd.Flags().Float64("threshold", 0, "Override DUPLICATE_THRESHOLD")
	duplicatesCmd.Flags().Bool("all", false, "List every row, not only the flagged ones")
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("duplicates-cmd")
	ctx := cmd.Context()

	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	historyPath, _ := cmd.Flags().GetString("history")
	showAll, _ := cmd.Flags().GetBool("all")

	matcherCfg := cfg.GetDuplicateConfig()
	if cmd.Flags().Changed("threshold") {
		matcherCfg.Threshold, _ = cmd.Flags().GetFloat64("threshold")
	}
	matcher, err := duplicate.NewMatcher(matcherCfg)
	if err != nil {
		return fmt.Errorf("invalid duplicate matcher configuration: %w", err)
	}

	batch, err := loadBatch(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	var history []models.Invoice
	if historyPath != "" {
		reader, err := ingest.NewFileReader(historyPath, "")
		if err != nil {
			return err
		}
		history, err = ingest.NewSource(reader).Invoices(ctx)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
	}

	results := matcher.Scan(batch.Invoices, history)

	flagged := make([]models.DuplicateCandidate, 0, len(results))
	for _, r := range results {
		if r.IsDuplicate || showAll {
			flagged = append(flagged, r)
		}
	}

	log.Info().
		Int("rows", len(batch.Invoices)).
		Int("history", len(history)).
		Int("reported", len(flagged)).
		Float64("threshold", matcherCfg.Threshold).
		Msg("Duplicate scan finished")

	out := cmd.OutOrStdout()
	if format == "json" {
		return writeJSON(out, flagged)
	}
	if len(flagged) == 0 {
		fmt.Fprintln(out, "No se encontraron posibles duplicados.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Factura\tDuplicado\tConfianza\tCoincide con\tMotivos\t")
	for _, r := range flagged {
		mark := "NO"
		if r.IsDuplicate {
			mark = "SI"
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\t\n", r.InvoiceID, mark, r.Confidence,
			strings.Join(r.MatchedInvoiceIDs, ", "), strings.Join(r.Reasons, "; "))
	}
	return w.Flush()
}
