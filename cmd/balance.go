package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"opendoors/internal/balance"
	"opendoors/internal/currency"
	"opendoors/internal/export"
	"opendoors/internal/logger"
	"opendoors/internal/partner"
	"opendoors/internal/period"
	"opendoors/internal/sheets"
	"opendoors/pkg/models"
	"opendoors/pkg/services"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Compute the IVA, real and fiscal balances for a period",
	Long: `Compute the four balance reports of a period:

  Balance IVA               débito fiscal - crédito fiscal of type-A invoices
  Balance Real              invoices with Mov. Cta. SI, excluding IVA compensations
  Balance Fiscal            every invoice not deleted or rejected
  Impuesto a las Ganancias  INCOME_TAX_RATE applied to a positive fiscal balance

Invoices in PENDING_APPROVAL, APPROVED or PAID count; DELETED and REJECTED
never do. The period defaults to the current fiscal year.

Environment variables:
  FISCAL_YEAR_START_MONTH   - First month of the fiscal year (default: 1)
  FISCAL_YEAR_START_DAY     - First day of the fiscal year (default: 1)
  INCOME_TAX_RATE           - Income-tax rate on the fiscal profit (default: 0.35)
  TAX_CREDIT_WHEN           - Sign of the IVA balance labelled A_FAVOR (negative, positive)
  AMOUNT_TOLERANCE          - Accepted gap in total = subtotal + IVA + otros (default: 0.01)
  AGGREGATE_WORKERS         - Goroutines used to fold large snapshots (default: 1)
  FISCAL_SETTINGS_FILE      - Optional YAML file overriding the fiscal settings
  GOOGLE_SHEET_URL          - Spreadsheet for --google-sheet and --export-sheet`,
	Example: `  # Current fiscal year from an XLSX export
  opendoors balance -i facturas.xlsx

  # Fiscal year 2024 with the partner split, exported to PDF
  opendoors balance -i facturas.json --year 2024 --partners --export balance-2024.pdf

  # Explicit range for one partner
  opendoors balance -i facturas.xlsx --from 01/07/2024 --to 31/12/2024 --owner "Juan Pérez"

  # Read from Google Sheets and write the summary to a "Balance" tab
  opendoors balance --google-sheet --export-sheet Balance`,
	RunE: runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)

	addPeriodFlags(balanceCmd)
	balanceCmd.Flags().String("owner", "", "Restrict the reports to one partner")
	balanceCmd.Flags().Bool("partners", false, "Include the per-partner split")
	balanceCmd.Flags().String("export", "", "Write the summary to a file (.xlsx or .pdf)")
	balanceCmd.Flags().String("export-sheet", "", "Write the summary to this Google Sheets tab")
}

func runBalance(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("balance-cmd")
	ctx := cmd.Context()

	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	owner, _ := cmd.Flags().GetString("owner")
	withPartners, _ := cmd.Flags().GetBool("partners")
	exportPath, _ := cmd.Flags().GetString("export")
	exportSheet, _ := cmd.Flags().GetString("export-sheet")

	resolver, err := period.NewResolver(cfg.GetPeriodConfig())
	if err != nil {
		return fmt.Errorf("invalid fiscal calendar: %w", err)
	}
	now := time.Now()
	p, err := resolvePeriod(cmd, resolver, now)
	if err != nil {
		return err
	}

	log.Info().
		Str("period", p.String()).
		Str("owner", owner).
		Bool("partners", withPartners).
		Msg("Starting balance computation")

	batch, err := loadBatch(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	aggregator := balance.NewAggregator(cfg.GetBalanceConfig())
	var result *balance.Result
	if owner != "" {
		result, err = aggregator.AggregateOwner(batch.Invoices, p, owner)
	} else {
		result, err = aggregator.Aggregate(batch.Invoices, p)
	}
	if err != nil {
		return fmt.Errorf("failed to compute balances: %w", err)
	}

	var shares []models.PartnerShare
	if withPartners {
		shares, err = partner.NewApportioner(cfg.GetPartnerConfig()).Apportion(result, batch.Invoices)
		if err != nil {
			return fmt.Errorf("failed to split balances by partner: %w", err)
		}
	}

	summary := result.Summary(summaryTitle(resolver, p, owner), shares, now)

	exporters, err := summaryExporters(cmd, exportPath, exportSheet)
	if err != nil {
		return err
	}
	for _, exp := range exporters {
		if err := exp.Export(ctx, summary); err != nil {
			return err
		}
	}

	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), summary)
	}
	printSummary(cmd.OutOrStdout(), summary)
	return nil
}

func summaryTitle(resolver *period.Resolver, p period.Period, owner string) string {
	title := "Balance " + p.String()
	year := resolver.YearOf(p.Start)
	if fy, err := resolver.Resolve(period.FiscalYear(year)); err == nil && fy.Start.Equal(p.Start) && fy.End.Equal(p.End) {
		title = "Balance " + period.Label(year, p)
	}
	if owner != "" {
		title += " - " + owner
	}
	return title
}

func summaryExporters(cmd *cobra.Command, exportPath, exportSheet string) ([]services.ReportExporter, error) {
	var exporters []services.ReportExporter
	if exportPath != "" {
		fe, err := export.NewFileExporter(exportPath)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, fe)
	}
	if exportSheet != "" {
		cfg, err := currentConfig()
		if err != nil {
			return nil, err
		}
		if cfg.GoogleSheetURL == "" {
			return nil, fmt.Errorf("GOOGLE_SHEET_URL environment variable is required for --export-sheet")
		}
		svc, err := sheets.NewSheetsService(cmd.Context(), cfg.GoogleSheetURL, cfg.GoogleServiceAccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets service: %w", err)
		}
		exporters = append(exporters, &export.SheetExporter{Writer: svc, SheetName: exportSheet})
	}
	return exporters, nil
}

func printSummary(out io.Writer, s models.Summary) {
	fmt.Fprintf(out, "%s\n\n", s.Title)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Balance\tIngresos\tEgresos\tNeto\tEstado\t")
	for _, r := range s.Reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", r.Label,
			currency.Format(r.TotalIn), currency.Format(r.TotalOut), currency.Format(r.Net), r.State)
	}
	w.Flush()

	ind := s.Indicators
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Margen real:        %s%%\n", ind.CashMarginPct.StringFixed(2))
	fmt.Fprintf(out, "Ingresos/Egresos:   %s\n", ind.IncomeExpenseRatio.StringFixed(2))
	fmt.Fprintf(out, "Diferencia fiscal:  %s\n", currency.Format(ind.RealFiscalGap))

	if len(s.Partners) > 0 {
		fmt.Fprintln(out)
		printShares(out, s.Partners)
	}
	if len(s.Warnings) > 0 {
		fmt.Fprintf(out, "\nAdvertencias (%d):\n", len(s.Warnings))
		for _, warning := range s.Warnings {
			fmt.Fprintf(out, "  [%s] %s: %s\n", warning.Code, warning.InvoiceID, warning.Message)
		}
	}
}

func printShares(out io.Writer, shares []models.PartnerShare) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Socio\tIngresos\tEgresos\tBalance Real\tBalance IVA\tBalance Fiscal\tFacturas\t")
	for _, sh := range shares {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t\n", sh.PartnerName,
			currency.Format(sh.TotalIncome), currency.Format(sh.TotalExpense), currency.Format(sh.CashBalance),
			currency.Format(sh.TaxLedgerBalance), currency.Format(sh.FiscalBalance), sh.InvoiceCount)
	}
	w.Flush()
}
