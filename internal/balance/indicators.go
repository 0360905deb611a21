package balance

import (
	"github.com/shopspring/decimal"
	"opendoors/pkg/models"
)

var hundred = decimal.NewFromInt(100)

// ComputeIndicators derives the management indicators of a result.
func ComputeIndicators(r *Result) models.Indicators {
	ind := models.Indicators{
		CashMarginPct:      decimal.Zero,
		IncomeExpenseRatio: decimal.Zero,
		CashProfit:         r.Cash.Net,
		FiscalProfit:       r.Fiscal.Net,
		RealFiscalGap:      r.Fiscal.Net.Sub(r.Cash.Net),
	}
	if !r.Cash.TotalIn.IsZero() {
		ind.CashMarginPct = r.Cash.Net.Div(r.Cash.TotalIn).Mul(hundred).Round(2)
	}
	if !r.Cash.TotalOut.IsZero() {
		ind.IncomeExpenseRatio = r.Cash.TotalIn.Div(r.Cash.TotalOut).Round(4)
	}
	return ind
}
