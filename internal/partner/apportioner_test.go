package partner

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"opendoors/internal/balance"
	"opendoors/internal/invoice"
	"opendoors/internal/period"
	"opendoors/pkg/models"
)

var year2024 = period.Period{
	Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
}

func mk(id, owner string, dir models.Direction, ft models.FiscalType, total, tax int64, movement bool) models.Invoice {
	return models.Invoice{
		ID:              id,
		Direction:       dir,
		FiscalType:      ft,
		AccountMovement: movement,
		Subtotal:        decimal.NewFromInt(total - tax),
		TaxAmount:       decimal.NewFromInt(tax),
		Total:           decimal.NewFromInt(total),
		IssueDate:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Owner:           owner,
		Status:          models.StatusApproved,
	}
}

func aggregate(t *testing.T, invoices []models.Invoice, workers int) *balance.Result {
	t.Helper()
	agg := balance.NewAggregator(balance.Config{IncomeTaxRate: decimal.RequireFromString("0.35"), Workers: workers})
	result, err := agg.Aggregate(invoices, year2024)
	require.NoError(t, err)
	return result
}

func TestApportionGroupsByOwner(t *testing.T) {
	invoices := []models.Invoice{
		mk("1", "Joni", models.DirectionIssued, models.FiscalTypeA, 1210, 210, true),
		mk("2", "Hernán", models.DirectionIssued, models.FiscalTypeB, 500, 0, true),
		mk("3", "Joni", models.DirectionReceived, models.FiscalTypeA, 605, 105, true),
		mk("4", "", models.DirectionReceived, models.FiscalTypeC, 100, 0, false),
	}
	result := aggregate(t, invoices, 1)

	shares, err := NewApportioner(Config{}).Apportion(result, invoices)
	require.NoError(t, err)
	require.Len(t, shares, 3)

	assert.Equal(t, "Hernán", shares[0].PartnerName)
	assert.Equal(t, "Joni", shares[1].PartnerName)
	assert.Equal(t, Unassigned, shares[2].PartnerName)

	joni := shares[1]
	assert.Equal(t, "605", joni.CashBalance.String())
	assert.Equal(t, "105", joni.TaxLedgerBalance.String())
	assert.Equal(t, "1210", joni.TotalIncome.String())
	assert.Equal(t, "605", joni.TotalExpense.String())
	assert.Equal(t, 2, joni.InvoiceCount)

	unassigned := shares[2]
	assert.True(t, unassigned.CashBalance.IsZero(), "no account movement")
	assert.Equal(t, "-100", unassigned.FiscalBalance.String())
}

func TestApportionRespectsReportFilter(t *testing.T) {
	deleted := mk("d", "Joni", models.DirectionIssued, models.FiscalTypeA, 1210, 210, true)
	deleted.Status = models.StatusDeleted
	outside := mk("o", "Franco", models.DirectionIssued, models.FiscalTypeA, 1210, 210, true)
	outside.IssueDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	kept := mk("k", "Joni", models.DirectionIssued, models.FiscalTypeB, 300, 0, true)

	invoices := []models.Invoice{deleted, outside, kept}
	shares, err := NewApportioner(Config{}).Apportion(aggregate(t, invoices, 1), invoices)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "Joni", shares[0].PartnerName)
	assert.Equal(t, "300", shares[0].CashBalance.String())
}

func TestApportionOwnerRestrictedResult(t *testing.T) {
	invoices := []models.Invoice{
		mk("1", "Joni", models.DirectionIssued, models.FiscalTypeA, 1210, 210, true),
		mk("2", "Hernán", models.DirectionIssued, models.FiscalTypeA, 605, 105, true),
	}
	agg := balance.NewAggregator(balance.Config{IncomeTaxRate: decimal.RequireFromString("0.35")})
	result, err := agg.AggregateOwner(invoices, year2024, "Hernán")
	require.NoError(t, err)

	shares, err := NewApportioner(Config{}).Apportion(result, invoices)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "Hernán", shares[0].PartnerName)
}

func TestApportionEmptyAndNil(t *testing.T) {
	shares, err := NewApportioner(Config{}).Apportion(aggregate(t, nil, 1), nil)
	require.NoError(t, err)
	assert.Empty(t, shares)

	_, err = NewApportioner(Config{}).Apportion(nil, nil)
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestApportionRejectsMalformedInvoice(t *testing.T) {
	bad := mk("x", "Joni", "SOLD", models.FiscalTypeA, 1210, 210, true)
	_, err := NewApportioner(Config{}).Apportion(aggregate(t, nil, 1), []models.Invoice{bad})
	assert.ErrorIs(t, err, invoice.ErrPreconditionViolation)
}

func TestApportionIgnoresMalformedRecordsOutsidePeriod(t *testing.T) {
	good := mk("1", "Joni", models.DirectionIssued, models.FiscalTypeA, 1210, 210, true)
	stale := mk("old", "Hernán", models.DirectionReceived, models.FiscalTypeA, 500, 0, true)
	stale.Status = models.StatusDeleted
	stale.PaymentMethod = "BITCOIN"
	stale.IssueDate = time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)

	invoices := []models.Invoice{good, stale}
	shares, err := NewApportioner(Config{}).Apportion(aggregate(t, invoices, 1), invoices)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "Joni", shares[0].PartnerName)
}

func TestVerifyConservationDetectsDrift(t *testing.T) {
	invoices := []models.Invoice{
		mk("1", "Joni", models.DirectionIssued, models.FiscalTypeA, 1210, 210, true),
	}
	result := aggregate(t, invoices, 1)
	shares, err := NewApportioner(Config{}).Apportion(result, invoices)
	require.NoError(t, err)

	shares[0].CashBalance = shares[0].CashBalance.Add(decimal.NewFromInt(1))
	err = VerifyConservation(shares, result, invoice.DefaultTolerance)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConservation)

	var ce *ConservationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "cash balance", ce.Balance)
}

func randomInvoices(r *rand.Rand, n int) []models.Invoice {
	owners := []string{"Hernán", "Joni", "Franco", ""}
	dirs := []models.Direction{models.DirectionIssued, models.DirectionReceived}
	types := []models.FiscalType{models.FiscalTypeA, models.FiscalTypeB, models.FiscalTypeC, models.FiscalTypeE}
	statuses := []models.Status{models.StatusApproved, models.StatusPaid, models.StatusPendingApproval, models.StatusRejected, models.StatusDeleted}

	out := make([]models.Invoice, n)
	for i := range out {
		subtotal := decimal.New(r.Int63n(5_000_000), -2)
		tax := subtotal.Mul(decimal.RequireFromString("0.105")).Round(2)
		out[i] = models.Invoice{
			ID:                    fmt.Sprintf("R-%d", i),
			Direction:             dirs[r.Intn(len(dirs))],
			FiscalType:            types[r.Intn(len(types))],
			AccountMovement:       r.Intn(2) == 0,
			IsTaxCompensationOnly: r.Intn(4) == 0,
			Subtotal:              subtotal,
			TaxAmount:             tax,
			Total:                 subtotal.Add(tax),
			IssueDate:             year2024.Start.AddDate(0, 0, r.Intn(420)-30),
			Owner:                 owners[r.Intn(len(owners))],
			Status:                statuses[r.Intn(len(statuses))],
		}
	}
	return out
}

// Σ shares equals the report balances for every generated invoice set.
func TestConservationProperty(t *testing.T) {
	r := rand.New(rand.NewSource(20240701))
	for round := 0; round < 50; round++ {
		invoices := randomInvoices(r, r.Intn(300))
		workers := 1 + round%3
		result := aggregate(t, invoices, workers)

		shares, err := NewApportioner(Config{Workers: workers}).Apportion(result, invoices)
		require.NoError(t, err, "round %d", round)

		var cash, tax, fiscal decimal.Decimal
		for _, s := range shares {
			cash = cash.Add(s.CashBalance)
			tax = tax.Add(s.TaxLedgerBalance)
			fiscal = fiscal.Add(s.FiscalBalance)
		}
		assert.True(t, cash.Equal(result.Cash.Net), "round %d cash", round)
		assert.True(t, tax.Equal(result.TaxLedger.Net), "round %d tax", round)
		assert.True(t, fiscal.Equal(result.Fiscal.Net), "round %d fiscal", round)
	}
}
