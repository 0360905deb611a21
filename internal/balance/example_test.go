package balance_test

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"opendoors/internal/balance"
	"opendoors/internal/period"
	"opendoors/pkg/models"
)

// Example aggregates one issued and one received type-A invoice over a
// fiscal year starting in July.
func Example() {
	resolver, err := period.NewResolver(period.Config{StartMonth: time.July, StartDay: 1})
	if err != nil {
		log.Fatal(err)
	}
	fy, err := resolver.Resolve(period.FiscalYear(2024))
	if err != nil {
		log.Fatal(err)
	}

	invoices := []models.Invoice{
		{
			ID: "F-0001", Direction: models.DirectionIssued, FiscalType: models.FiscalTypeA,
			AccountMovement: true, Status: models.StatusApproved,
			Subtotal: decimal.NewFromInt(1000), TaxAmount: decimal.NewFromInt(210), Total: decimal.NewFromInt(1210),
			IssueDate: time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "P-0001", Direction: models.DirectionReceived, FiscalType: models.FiscalTypeA,
			AccountMovement: true, Status: models.StatusPaid,
			Subtotal: decimal.NewFromInt(500), TaxAmount: decimal.NewFromInt(105), Total: decimal.NewFromInt(605),
			IssueDate: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		},
	}

	agg := balance.NewAggregator(balance.Config{IncomeTaxRate: decimal.RequireFromString("0.35")})
	result, err := agg.Aggregate(invoices, fy)
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range result.Reports() {
		fmt.Printf("%s: %s (%s)\n", r.Label, r.Net.StringFixed(2), r.State)
	}
	// Output:
	// Balance IVA: 105.00 (A_PAGAR)
	// Balance Real: 605.00 (POSITIVO)
	// Balance Fiscal: 605.00 (POSITIVO)
	// Impuesto a las Ganancias: 211.75 (A_PAGAR)
}
