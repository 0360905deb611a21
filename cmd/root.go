package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"opendoors/internal/config"
	"opendoors/internal/logger"
)

var version = "1.0.0"

var (
	appConfig    *config.Config
	appConfigErr error
)

var rootCmd = &cobra.Command{
	Use:   "opendoors",
	Short: "Open Doors - invoice balances for the firm and its partners",
	Long: `Open Doors computes the balances of the firm from its invoice snapshot.

Every invoice is classified once and counted in up to three ledgers:
  Balance IVA     - IVA of type-A invoices (débito - crédito fiscal)
  Balance real    - invoices that moved the bank account, excluding IVA compensations
  Balance fiscal  - every invoice that is not deleted or rejected (accrual view)

The income-tax estimate is derived from the fiscal balance. Balances can be
split among partners and exported to XLSX, PDF or a Google Sheets tab.

Invoices are read from a .json or .xlsx file (--input) or from the Google
Sheet configured in GOOGLE_SHEET_URL (--google-sheet).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Open Doors CLI executed")

		fmt.Fprintln(cmd.OutOrStdout(), "Open Doors - balances de facturación")
		fmt.Fprintln(cmd.OutOrStdout(), "Use --help to see available commands and options.")
	},
}

// SetConfig hands the configuration loaded by main to the commands. A load
// error is reported by the first command that needs the configuration.
func SetConfig(cfg *config.Config, err error) {
	appConfig, appConfigErr = cfg, err
}

func currentConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	if appConfigErr != nil {
		return nil, fmt.Errorf("configuration not loaded: %w", appConfigErr)
	}
	return nil, fmt.Errorf("configuration not loaded")
}

func Execute() {
	log := logger.WithComponent("cmd")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("input", "i", "", "Invoice snapshot file (.json or .xlsx)")
	rootCmd.PersistentFlags().String("worksheet", "", "Worksheet to read (XLSX sheet or Google Sheets tab)")
	rootCmd.PersistentFlags().Bool("google-sheet", false, "Read invoices from GOOGLE_SHEET_URL instead of a file")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format (text, json)")
}
