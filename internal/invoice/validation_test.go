package invoice

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"opendoors/pkg/models"
)

func validInvoice() models.Invoice {
	return models.Invoice{
		ID:                "F-0001",
		Direction:         models.DirectionIssued,
		FiscalType:        models.FiscalTypeA,
		AccountMovement:   true,
		PaymentMethod:     models.PaymentTransfer,
		Subtotal:          decimal.RequireFromString("1000"),
		TaxAmount:         decimal.RequireFromString("210"),
		OtherTaxes:        decimal.Zero,
		Total:             decimal.RequireFromString("1210"),
		IssueDate:         time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC),
		CounterpartyName:  "ACME S.A.",
		CounterpartyTaxID: "30-71234567-1",
		Status:            models.StatusApproved,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Invoice)
		field  string
	}{
		{name: "valid", mutate: func(*models.Invoice) {}},
		{name: "missing id", mutate: func(inv *models.Invoice) { inv.ID = "" }, field: "id"},
		{name: "unknown direction", mutate: func(inv *models.Invoice) { inv.Direction = "SIDEWAYS" }, field: "direction"},
		{name: "unknown fiscal type", mutate: func(inv *models.Invoice) { inv.FiscalType = "M" }, field: "fiscal_type"},
		{name: "unknown status", mutate: func(inv *models.Invoice) { inv.Status = "ARCHIVED" }, field: "status"},
		{name: "unknown payment method", mutate: func(inv *models.Invoice) { inv.PaymentMethod = "BARTER" }, field: "payment_method"},
		{name: "empty payment method is allowed", mutate: func(inv *models.Invoice) { inv.PaymentMethod = "" }},
		{name: "missing issue date", mutate: func(inv *models.Invoice) { inv.IssueDate = time.Time{} }, field: "issue_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			tt.mutate(&inv)

			err := Validate(inv)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPreconditionViolation))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidateAllJoinsFailures(t *testing.T) {
	good := validInvoice()
	noID := validInvoice()
	noID.ID = ""
	badType := validInvoice()
	badType.ID = "F-0003"
	badType.FiscalType = "X"

	assert.NoError(t, ValidateAll([]models.Invoice{good}))
	assert.NoError(t, ValidateAll(nil))

	err := ValidateAll([]models.Invoice{good, noID, badType})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPreconditionViolation)
	assert.Contains(t, err.Error(), "F-0003")
	assert.Contains(t, err.Error(), "'id'")
}

func TestValidateCUIT(t *testing.T) {
	tests := []struct {
		raw    string
		valid  bool
		reason string
	}{
		{raw: "20-12345678-6", valid: true},
		{raw: "20123456786", valid: true},
		{raw: "30 71234567 1", valid: true},
		{raw: "20-12345678-5", reason: "check digit mismatch"},
		{raw: "99-12345678-6", reason: "unknown prefix 99"},
		{raw: "20-1234567-6", reason: "must have 11 digits"},
		{raw: "", reason: "must have 11 digits"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			err := ValidateCUIT(tt.raw)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCUIT)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestNormalizeCUIT(t *testing.T) {
	assert.Equal(t, "20123456786", NormalizeCUIT("20-12345678-6"))
	assert.Equal(t, "20123456786", NormalizeCUIT(" 20.12345678/6 "))
	assert.Equal(t, "", NormalizeCUIT("n/a"))
}

func TestAmountValidationCheck(t *testing.T) {
	av := NewAmountValidation(decimal.Zero)
	assert.True(t, av.Tolerance().Equal(DefaultTolerance))

	t.Run("clean invoice", func(t *testing.T) {
		assert.Empty(t, av.Check(validInvoice()))
	})

	t.Run("total within tolerance", func(t *testing.T) {
		inv := validInvoice()
		inv.Total = decimal.RequireFromString("1210.01")
		assert.Empty(t, av.Check(inv))
	})

	t.Run("total mismatch", func(t *testing.T) {
		inv := validInvoice()
		inv.Total = decimal.RequireFromString("1250")
		warnings := av.Check(inv)
		require.Len(t, warnings, 1)
		assert.Equal(t, models.WarningTotalMismatch, warnings[0].Code)
		assert.Equal(t, "F-0001", warnings[0].InvoiceID)
		assert.Contains(t, warnings[0].Message, "difference: 40.00")
	})

	t.Run("due before issue", func(t *testing.T) {
		inv := validInvoice()
		due := inv.IssueDate.AddDate(0, 0, -1)
		inv.DueDate = &due
		warnings := av.Check(inv)
		require.Len(t, warnings, 1)
		assert.Equal(t, models.WarningDueBeforeIssue, warnings[0].Code)
	})

	t.Run("due on issue date is fine", func(t *testing.T) {
		inv := validInvoice()
		due := inv.IssueDate.Add(3 * time.Hour)
		inv.DueDate = &due
		assert.Empty(t, av.Check(inv))
	})

	t.Run("unusual IVA rate on type A", func(t *testing.T) {
		inv := validInvoice()
		inv.TaxAmount = decimal.RequireFromString("150")
		inv.Total = decimal.RequireFromString("1150")
		warnings := av.Check(inv)
		require.Len(t, warnings, 1)
		assert.Equal(t, models.WarningUnusualTaxRate, warnings[0].Code)
		assert.Contains(t, warnings[0].Message, "15.00%")
	})

	t.Run("reduced rate is known", func(t *testing.T) {
		inv := validInvoice()
		inv.TaxAmount = decimal.RequireFromString("105")
		inv.Total = decimal.RequireFromString("1105")
		assert.Empty(t, av.Check(inv))
	})

	t.Run("rate is not checked for type B", func(t *testing.T) {
		inv := validInvoice()
		inv.FiscalType = models.FiscalTypeB
		inv.TaxAmount = decimal.RequireFromString("150")
		inv.Total = decimal.RequireFromString("1150")
		assert.Empty(t, av.Check(inv))
	})

	t.Run("invalid CUIT", func(t *testing.T) {
		inv := validInvoice()
		inv.CounterpartyTaxID = "30-71234567-2"
		warnings := av.Check(inv)
		require.Len(t, warnings, 1)
		assert.Equal(t, models.WarningInvalidTaxID, warnings[0].Code)
	})

	t.Run("multiple warnings keep order", func(t *testing.T) {
		inv := validInvoice()
		inv.Total = decimal.RequireFromString("9999")
		inv.CounterpartyTaxID = "123"
		warnings := av.Check(inv)
		require.Len(t, warnings, 2)
		assert.Equal(t, models.WarningTotalMismatch, warnings[0].Code)
		assert.Equal(t, models.WarningInvalidTaxID, warnings[1].Code)
	})
}
