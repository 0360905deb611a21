package balance

import (
	"github.com/shopspring/decimal"
	"opendoors/pkg/models"
)

// Side is a running sum with the number of invoices that fed it.
type Side struct {
	Amount decimal.Decimal
	Count  int
}

func (s *Side) add(amount decimal.Decimal) {
	s.Amount = s.Amount.Add(amount)
	s.Count++
}

func (s *Side) merge(o Side) {
	s.Amount = s.Amount.Add(o.Amount)
	s.Count += o.Count
}

// Totals folds classified invoices into the three ledgers. Addition is
// associative and commutative, so partial Totals built over any partition
// of the input merge into the same result.
type Totals struct {
	TaxIssued   Side // IVA débito fiscal
	TaxReceived Side // IVA crédito fiscal
	CashIn      Side
	CashOut     Side
	FiscalIn    Side
	FiscalOut   Side
}

// Add accumulates one invoice according to its tag.
func (t *Totals) Add(inv models.Invoice, tag models.ClassificationTag) {
	issued := inv.Direction == models.DirectionIssued

	if tag.CountsForTaxLedger {
		if issued {
			t.TaxIssued.add(inv.TaxAmount)
		} else {
			t.TaxReceived.add(inv.TaxAmount)
		}
	}
	if tag.CountsForCashBalance {
		if issued {
			t.CashIn.add(inv.Total)
		} else {
			t.CashOut.add(inv.Total)
		}
	}
	if tag.CountsForFiscalBalance {
		if issued {
			t.FiscalIn.add(inv.Total)
		} else {
			t.FiscalOut.add(inv.Total)
		}
	}
}

// Merge adds o into t.
func (t *Totals) Merge(o Totals) {
	t.TaxIssued.merge(o.TaxIssued)
	t.TaxReceived.merge(o.TaxReceived)
	t.CashIn.merge(o.CashIn)
	t.CashOut.merge(o.CashOut)
	t.FiscalIn.merge(o.FiscalIn)
	t.FiscalOut.merge(o.FiscalOut)
}

// TaxLedgerBalance is IVA issued minus IVA received.
func (t Totals) TaxLedgerBalance() decimal.Decimal {
	return t.TaxIssued.Amount.Sub(t.TaxReceived.Amount)
}

// CashBalance is real income minus real expense.
func (t Totals) CashBalance() decimal.Decimal {
	return t.CashIn.Amount.Sub(t.CashOut.Amount)
}

// FiscalBalance is accrual income minus accrual expense.
func (t Totals) FiscalBalance() decimal.Decimal {
	return t.FiscalIn.Amount.Sub(t.FiscalOut.Amount)
}

// InvoiceCount is the number of invoices in the fiscal view, which is every
// invoice that survived the report filter.
func (t Totals) InvoiceCount() int {
	return t.FiscalIn.Count + t.FiscalOut.Count
}
