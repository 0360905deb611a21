// Package classify derives the ledger membership of an invoice.
//
// Every balance, partner share and export in this module decides whether
// an invoice counts by calling Classify; none of them re-encode the rules.
package classify

import (
	"opendoors/pkg/models"
)

// Classify returns the classification tag of inv. It is total and pure; the
// caller validates enum fields beforehand (see invoice.Validate).
//
//   - tax ledger: only type-A invoices carry recoverable/payable IVA.
//   - cash balance: a real account movement that is not a tax compensation.
//   - fiscal balance: every invoice that is not DELETED.
//   - signed amount: +total when issued, -total when received.
func Classify(inv models.Invoice) models.ClassificationTag {
	signed := inv.Total
	if inv.Direction != models.DirectionIssued {
		signed = inv.Total.Neg()
	}
	return models.ClassificationTag{
		CountsForTaxLedger:     inv.FiscalType == models.FiscalTypeA,
		CountsForCashBalance:   inv.AccountMovement && !inv.IsTaxCompensationOnly,
		CountsForFiscalBalance: inv.Status != models.StatusDeleted,
		SignedAmount:           signed,
	}
}

// CountsInReports reports whether inv survives the aggregation filter:
// neither DELETED nor REJECTED.
func CountsInReports(inv models.Invoice) bool {
	return inv.Status != models.StatusDeleted && inv.Status != models.StatusRejected
}
