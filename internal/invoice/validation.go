package invoice

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"opendoors/internal/logger"
	"opendoors/pkg/models"
)

// DefaultTolerance is the accepted gap between total and
// subtotal + taxAmount + otherTaxes, in currency units.
var DefaultTolerance = decimal.NewFromFloat(0.01)

// ivaRates are the Argentine IVA alícuotas, as fractions of the subtotal.
var ivaRates = []decimal.Decimal{
	decimal.RequireFromString("0.27"),
	decimal.RequireFromString("0.21"),
	decimal.RequireFromString("0.105"),
	decimal.RequireFromString("0.05"),
	decimal.RequireFromString("0.025"),
	decimal.Zero,
}

// rateTolerance is the relative slack allowed when matching an IVA rate.
var rateTolerance = decimal.RequireFromString("0.01")

// Validate checks the preconditions the classifier relies on. It never
// rewrites the invoice.
func Validate(inv models.Invoice) error {
	if inv.ID == "" {
		return NewValidationError(inv.ID, "id", inv.ID, "must not be empty")
	}
	if !inv.Direction.Valid() {
		return NewValidationError(inv.ID, "direction", inv.Direction, "must be ISSUED or RECEIVED")
	}
	if !inv.FiscalType.Valid() {
		return NewValidationError(inv.ID, "fiscal_type", inv.FiscalType, "must be one of A, B, C, E")
	}
	if !inv.Status.Valid() {
		return NewValidationError(inv.ID, "status", inv.Status, "unknown lifecycle status")
	}
	if inv.PaymentMethod != "" && !inv.PaymentMethod.Valid() {
		return NewValidationError(inv.ID, "payment_method", inv.PaymentMethod, "unknown payment method")
	}
	if inv.IssueDate.IsZero() {
		return NewValidationError(inv.ID, "issue_date", inv.IssueDate, "must be set")
	}
	return nil
}

// ValidateAll validates every invoice and joins the failures.
func ValidateAll(invoices []models.Invoice) error {
	var errs []error
	for _, inv := range invoices {
		if err := Validate(inv); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AmountValidation runs the data-quality checks whose failures are reported
// as warnings instead of errors.
type AmountValidation struct {
	tolerance decimal.Decimal
	log       zerolog.Logger
}

// NewAmountValidation creates a checker with the given amount tolerance.
// A non-positive tolerance falls back to DefaultTolerance.
func NewAmountValidation(tolerance decimal.Decimal) *AmountValidation {
	if !tolerance.IsPositive() {
		tolerance = DefaultTolerance
	}
	return &AmountValidation{
		tolerance: tolerance,
		log:       logger.WithComponent("amount-validation"),
	}
}

// Tolerance returns the configured amount tolerance.
func (av *AmountValidation) Tolerance() decimal.Decimal {
	return av.tolerance
}

// Check returns every data-quality warning for the invoice, or nil.
func (av *AmountValidation) Check(inv models.Invoice) []models.DataQualityWarning {
	var warnings []models.DataQualityWarning

	if w, ok := av.checkTotal(inv); ok {
		warnings = append(warnings, w)
	}
	if inv.DueDate != nil && !inv.DueDate.IsZero() && models.CalendarDate(*inv.DueDate).Before(models.CalendarDate(inv.IssueDate)) {
		warnings = append(warnings, models.DataQualityWarning{
			InvoiceID: inv.ID,
			Code:      models.WarningDueBeforeIssue,
			Message: fmt.Sprintf("due date %s is before issue date %s",
				inv.DueDate.Format("2006-01-02"), inv.IssueDate.Format("2006-01-02")),
		})
	}
	if w, ok := checkTaxRate(inv); ok {
		warnings = append(warnings, w)
	}
	if inv.CounterpartyTaxID != "" {
		if err := ValidateCUIT(inv.CounterpartyTaxID); err != nil {
			warnings = append(warnings, models.DataQualityWarning{
				InvoiceID: inv.ID,
				Code:      models.WarningInvalidTaxID,
				Message:   err.Error(),
			})
		}
	}

	if len(warnings) > 0 {
		av.log.Warn().
			Str("invoice_id", inv.ID).
			Int("warnings", len(warnings)).
			Str("first_code", warnings[0].Code).
			Msg("Invoice has data-quality warnings")
	}
	return warnings
}

// checkTotal verifies total == subtotal + taxAmount + otherTaxes within tolerance.
func (av *AmountValidation) checkTotal(inv models.Invoice) (models.DataQualityWarning, bool) {
	calculated := inv.Subtotal.Add(inv.TaxAmount).Add(inv.OtherTaxes)
	difference := inv.Total.Sub(calculated).Abs()
	if difference.LessThanOrEqual(av.tolerance) {
		return models.DataQualityWarning{}, false
	}
	return models.DataQualityWarning{
		InvoiceID: inv.ID,
		Code:      models.WarningTotalMismatch,
		Message: fmt.Sprintf("subtotal(%s) + tax(%s) + other(%s) = %s, but total=%s (difference: %s)",
			inv.Subtotal.StringFixed(2), inv.TaxAmount.StringFixed(2), inv.OtherTaxes.StringFixed(2),
			calculated.StringFixed(2), inv.Total.StringFixed(2), difference.StringFixed(2)),
	}, true
}

// checkTaxRate flags type-A invoices whose IVA matches no known alícuota.
func checkTaxRate(inv models.Invoice) (models.DataQualityWarning, bool) {
	if inv.FiscalType != models.FiscalTypeA || !inv.Subtotal.IsPositive() {
		return models.DataQualityWarning{}, false
	}
	for _, rate := range ivaRates {
		expected := inv.Subtotal.Mul(rate)
		slack := inv.Subtotal.Mul(rateTolerance)
		if inv.TaxAmount.Sub(expected).Abs().LessThanOrEqual(slack) {
			return models.DataQualityWarning{}, false
		}
	}
	effective := inv.TaxAmount.Div(inv.Subtotal).Mul(decimal.NewFromInt(100))
	return models.DataQualityWarning{
		InvoiceID: inv.ID,
		Code:      models.WarningUnusualTaxRate,
		Message:   fmt.Sprintf("IVA %s is %s%% of subtotal %s, not a known rate", inv.TaxAmount.StringFixed(2), effective.StringFixed(2), inv.Subtotal.StringFixed(2)),
	}, true
}
