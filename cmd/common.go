package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"opendoors/internal/config"
	"opendoors/internal/ingest"
	"opendoors/internal/logger"
	"opendoors/internal/period"
	"opendoors/internal/sheets"
)

// loadBatch reads the invoice snapshot selected by the persistent flags.
func loadBatch(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*ingest.Batch, error) {
	log := logger.WithComponent("input")

	input, _ := cmd.Flags().GetString("input")
	worksheet, _ := cmd.Flags().GetString("worksheet")
	useSheet, _ := cmd.Flags().GetBool("google-sheet")

	reader, err := batchReader(ctx, cfg, input, worksheet, useSheet)
	if err != nil {
		return nil, err
	}

	batch, err := reader.ReadBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoices: %w", err)
	}
	for _, skipped := range batch.Skipped {
		log.Warn().Err(skipped).Msg("Skipping invoice row")
	}

	log.Info().
		Int("invoices", len(batch.Invoices)).
		Int("skipped", len(batch.Skipped)).
		Msg("Invoices loaded")
	return batch, nil
}

func batchReader(ctx context.Context, cfg *config.Config, input, worksheet string, useSheet bool) (ingest.BatchReader, error) {
	switch {
	case input != "" && useSheet:
		return nil, fmt.Errorf("use either --input or --google-sheet, not both")
	case input != "":
		reader, err := ingest.NewFileReader(input, worksheet)
		if err != nil {
			return nil, err
		}
		return reader, nil
	case useSheet:
		if cfg.GoogleSheetURL == "" {
			return nil, fmt.Errorf("GOOGLE_SHEET_URL environment variable is required for --google-sheet")
		}
		svc, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL, cfg.GoogleServiceAccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets service: %w", err)
		}
		if worksheet == "" {
			worksheet = cfg.GoogleSheetWorksheet
		}
		return ingest.NewSheetReader(svc, worksheet), nil
	default:
		return nil, fmt.Errorf("no invoice source: pass --input <file> or --google-sheet")
	}
}

// addPeriodFlags registers --year, --from and --to on cmd.
func addPeriodFlags(cmd *cobra.Command) {
	cmd.Flags().Int("year", 0, "Fiscal year (default: the current one)")
	cmd.Flags().String("from", "", "Start of an explicit range (YYYY-MM-DD or DD/MM/YYYY)")
	cmd.Flags().String("to", "", "End of an explicit range (YYYY-MM-DD or DD/MM/YYYY)")
}

// resolvePeriod turns the period flags into an inclusive interval. Without
// flags, the fiscal year containing now is used.
func resolvePeriod(cmd *cobra.Command, resolver *period.Resolver, now time.Time) (period.Period, error) {
	year, _ := cmd.Flags().GetInt("year")
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")

	switch {
	case fromStr != "" || toStr != "":
		if fromStr == "" || toStr == "" {
			return period.Period{}, fmt.Errorf("--from and --to must be given together")
		}
		if year != 0 {
			return period.Period{}, fmt.Errorf("use either --year or --from/--to")
		}
		from, err := parseDateFlag(fromStr)
		if err != nil {
			return period.Period{}, fmt.Errorf("invalid --from: %w", err)
		}
		to, err := parseDateFlag(toStr)
		if err != nil {
			return period.Period{}, fmt.Errorf("invalid --to: %w", err)
		}
		return resolver.Resolve(period.Range(from, to))
	case year != 0:
		return resolver.Resolve(period.FiscalYear(year))
	default:
		return resolver.Current(now).Period, nil
	}
}

func parseDateFlag(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "02/01/2006", "2/1/2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date %q (use YYYY-MM-DD or DD/MM/YYYY)", value)
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	switch format {
	case "text", "json":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use text or json)", format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
