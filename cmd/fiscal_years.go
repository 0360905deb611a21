package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"opendoors/internal/period"
)

var fiscalYearsCmd = &cobra.Command{
	Use:   "fiscal-years",
	Short: "List the current and previous fiscal years",
	Long: `List the current fiscal year followed by the previous ones, with their
date ranges. The calendar follows FISCAL_YEAR_START_MONTH and
FISCAL_YEAR_START_DAY (default: January 1st).`,
	Example: `  opendoors fiscal-years
  FISCAL_YEAR_START_MONTH=7 opendoors fiscal-years --count 3`,
	RunE: runFiscalYears,
}

func init() {
	rootCmd.AddCommand(fiscalYearsCmd)
	fiscalYearsCmd.Flags().Int("count", 5, "Number of fiscal years to list")
}

func runFiscalYears(cmd *cobra.Command, args []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	count, _ := cmd.Flags().GetInt("count")
	if count < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	resolver, err := period.NewResolver(cfg.GetPeriodConfig())
	if err != nil {
		return fmt.Errorf("invalid fiscal calendar: %w", err)
	}
	years := resolver.List(time.Now(), count)

	out := cmd.OutOrStdout()
	if format == "json" {
		return writeJSON(out, years)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Año\tDesde\tHasta\tEjercicio\t")
	for _, fy := range years {
		label := fy.Label
		if fy.Current {
			label += " *"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n", fy.Year,
			fy.Period.Start.Format("02/01/2006"), fy.Period.End.Format("02/01/2006"), label)
	}
	return w.Flush()
}
