package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"opendoors/internal/balance"
	"opendoors/internal/logger"
	"opendoors/internal/partner"
	"opendoors/internal/period"
)

var partnersCmd = &cobra.Command{
	Use:   "partners",
	Short: "Split the balances of a period among the partners",
	Long: `Group the invoices of a period by owner (socio responsable) and compute
each partner's real, IVA and fiscal balance. Invoices without an owner are
reported under "Sin asignar".

The shares are cross-checked against the firm totals: the per-partner
balances must add up to the firm balances within AMOUNT_TOLERANCE. A
conservation failure is printed and makes the command exit non-zero.

Environment variables:
  FISCAL_YEAR_START_MONTH   - First month of the fiscal year (default: 1)
  FISCAL_YEAR_START_DAY     - First day of the fiscal year (default: 1)
  AMOUNT_TOLERANCE          - Tolerance of the conservation check (default: 0.01)
  AGGREGATE_WORKERS         - Goroutines used to fold the owner groups (default: 1)`,
	Example: `  # Partner split of the current fiscal year
  opendoors partners -i facturas.xlsx

  # Fiscal year 2023 as JSON
  opendoors partners -i facturas.json --year 2023 -o json`,
	RunE: runPartners,
}

func init() {
	rootCmd.AddCommand(partnersCmd)
	addPeriodFlags(partnersCmd)
}

func runPartners(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("partners-cmd")

	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	resolver, err := period.NewResolver(cfg.GetPeriodConfig())
	if err != nil {
		return fmt.Errorf("invalid fiscal calendar: %w", err)
	}
	p, err := resolvePeriod(cmd, resolver, time.Now())
	if err != nil {
		return err
	}

	batch, err := loadBatch(cmd.Context(), cmd, cfg)
	if err != nil {
		return err
	}

	result, err := balance.NewAggregator(cfg.GetBalanceConfig()).Aggregate(batch.Invoices, p)
	if err != nil {
		return fmt.Errorf("failed to compute balances: %w", err)
	}

	shares, err := partner.NewApportioner(cfg.GetPartnerConfig()).Apportion(result, batch.Invoices)
	if err != nil && !errors.Is(err, partner.ErrConservation) {
		return fmt.Errorf("failed to split balances by partner: %w", err)
	}

	log.Info().
		Str("period", p.String()).
		Int("partners", len(shares)).
		Bool("conserved", err == nil).
		Msg("Partner split computed")

	out := cmd.OutOrStdout()
	if format == "json" {
		if jerr := writeJSON(out, shares); jerr != nil {
			return jerr
		}
	} else {
		fmt.Fprintf(out, "Socios %s\n\n", p.String())
		printShares(out, shares)
		if err == nil {
			fmt.Fprintln(out, "\nConservación: OK")
		}
	}
	if err != nil {
		return fmt.Errorf("partner shares do not add up to the firm totals: %w", err)
	}
	return nil
}
