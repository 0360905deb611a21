package classify

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"opendoors/pkg/models"
)

func invoiceFixture() models.Invoice {
	return models.Invoice{
		ID:              "F-1",
		Direction:       models.DirectionIssued,
		FiscalType:      models.FiscalTypeA,
		AccountMovement: true,
		Subtotal:        decimal.NewFromInt(1000),
		TaxAmount:       decimal.NewFromInt(210),
		Total:           decimal.NewFromInt(1210),
		IssueDate:       time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:          models.StatusApproved,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Invoice)
		want   models.ClassificationTag
	}{
		{
			name:   "issued type A with movement",
			mutate: func(*models.Invoice) {},
			want: models.ClassificationTag{
				CountsForTaxLedger:     true,
				CountsForCashBalance:   true,
				CountsForFiscalBalance: true,
				SignedAmount:           decimal.NewFromInt(1210),
			},
		},
		{
			name: "received flips the sign",
			mutate: func(inv *models.Invoice) {
				inv.Direction = models.DirectionReceived
			},
			want: models.ClassificationTag{
				CountsForTaxLedger:     true,
				CountsForCashBalance:   true,
				CountsForFiscalBalance: true,
				SignedAmount:           decimal.NewFromInt(-1210),
			},
		},
		{
			name: "no account movement stays out of cash",
			mutate: func(inv *models.Invoice) {
				inv.AccountMovement = false
			},
			want: models.ClassificationTag{
				CountsForTaxLedger:     true,
				CountsForCashBalance:   false,
				CountsForFiscalBalance: true,
				SignedAmount:           decimal.NewFromInt(1210),
			},
		},
		{
			name: "tax compensation is never cash even with movement",
			mutate: func(inv *models.Invoice) {
				inv.IsTaxCompensationOnly = true
			},
			want: models.ClassificationTag{
				CountsForTaxLedger:     true,
				CountsForCashBalance:   false,
				CountsForFiscalBalance: true,
				SignedAmount:           decimal.NewFromInt(1210),
			},
		},
		{
			name: "type B is tax neutral",
			mutate: func(inv *models.Invoice) {
				inv.FiscalType = models.FiscalTypeB
			},
			want: models.ClassificationTag{
				CountsForTaxLedger:     false,
				CountsForCashBalance:   true,
				CountsForFiscalBalance: true,
				SignedAmount:           decimal.NewFromInt(1210),
			},
		},
		{
			name: "deleted leaves the fiscal view",
			mutate: func(inv *models.Invoice) {
				inv.Status = models.StatusDeleted
			},
			want: models.ClassificationTag{
				CountsForTaxLedger:     true,
				CountsForCashBalance:   true,
				CountsForFiscalBalance: false,
				SignedAmount:           decimal.NewFromInt(1210),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := invoiceFixture()
			tt.mutate(&inv)
			got := Classify(inv)
			assert.Equal(t, tt.want.CountsForTaxLedger, got.CountsForTaxLedger)
			assert.Equal(t, tt.want.CountsForCashBalance, got.CountsForCashBalance)
			assert.Equal(t, tt.want.CountsForFiscalBalance, got.CountsForFiscalBalance)
			assert.True(t, tt.want.SignedAmount.Equal(got.SignedAmount), "signed amount %s, want %s", got.SignedAmount, tt.want.SignedAmount)
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	for _, ft := range []models.FiscalType{models.FiscalTypeA, models.FiscalTypeB, models.FiscalTypeC, models.FiscalTypeE} {
		for _, dir := range []models.Direction{models.DirectionIssued, models.DirectionReceived} {
			for _, mov := range []bool{true, false} {
				for _, comp := range []bool{true, false} {
					inv := invoiceFixture()
					inv.FiscalType, inv.Direction = ft, dir
					inv.AccountMovement, inv.IsTaxCompensationOnly = mov, comp

					first := Classify(inv)
					second := Classify(inv)
					assert.Equal(t, first, second)
				}
			}
		}
	}
}

func TestCountsInReports(t *testing.T) {
	inv := invoiceFixture()
	for status, want := range map[models.Status]bool{
		models.StatusPendingApproval: true,
		models.StatusApproved:        true,
		models.StatusPaid:            true,
		models.StatusRejected:        false,
		models.StatusDeleted:         false,
	} {
		inv.Status = status
		assert.Equal(t, want, CountsInReports(inv), string(status))
	}
}
