package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportKind identifies one of the four balance views.
type ReportKind string

const (
	ReportTaxLedger ReportKind = "TAX_LEDGER" // Balance IVA
	ReportCash      ReportKind = "CASH"       // Balance real
	ReportFiscal    ReportKind = "FISCAL"     // Balance fiscal (AFIP)
	ReportIncomeTax ReportKind = "INCOME_TAX" // Impuesto a las ganancias
)

// Tax ledger and balance states.
const (
	StatePayable  = "A_PAGAR"
	StateCredit   = "A_FAVOR"
	StateNeutral  = "NEUTRO"
	StatePositive = "POSITIVO"
	StateNegative = "NEGATIVO"
	StateNoProfit = "SIN_GANANCIAS"
)

// Warning codes for DataQualityWarning.
const (
	WarningTotalMismatch  = "TOTAL_MISMATCH"
	WarningDueBeforeIssue = "DUE_BEFORE_ISSUE"
	WarningUnusualTaxRate = "UNUSUAL_TAX_RATE"
	WarningInvalidTaxID   = "INVALID_TAX_ID"
)

// DataQualityWarning flags a record that was still aggregated but whose
// figures should be reviewed.
type DataQualityWarning struct {
	InvoiceID string `json:"invoice_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// BalanceReport is one balance view over a resolved period.
//
// For the income-tax estimate TotalIn is the taxable base, TotalOut is zero
// and Net is the estimated tax.
type BalanceReport struct {
	Kind        ReportKind           `json:"kind"`
	Label       string               `json:"label"`
	PeriodStart time.Time            `json:"period_start"`
	PeriodEnd   time.Time            `json:"period_end"`
	TotalIn     decimal.Decimal      `json:"total_in"`
	TotalOut    decimal.Decimal      `json:"total_out"`
	Net         decimal.Decimal      `json:"net"`
	State       string               `json:"state"`
	InvoicesIn  int                  `json:"invoices_in"`
	InvoicesOut int                  `json:"invoices_out"`
	Metadata    map[string]string    `json:"metadata"`
	Warnings    []DataQualityWarning `json:"warnings"`
}

// PartnerShare is the slice of the balances attributed to one owner.
// It is recomputed on every aggregation run.
type PartnerShare struct {
	PartnerName      string          `json:"partner_name"`
	CashBalance      decimal.Decimal `json:"cash_balance"`
	TaxLedgerBalance decimal.Decimal `json:"tax_ledger_balance"`
	FiscalBalance    decimal.Decimal `json:"fiscal_balance"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	InvoiceCount     int             `json:"invoice_count"`
}

// DuplicateMatch is one historical invoice scored against a candidate.
type DuplicateMatch struct {
	InvoiceID  string   `json:"invoice_id"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// DuplicateCandidate is the advisory outcome of a duplicate check.
type DuplicateCandidate struct {
	InvoiceID         string           `json:"invoice_id"`
	Confidence        float64          `json:"confidence"`
	IsDuplicate       bool             `json:"is_duplicate"`
	MatchedInvoiceIDs []string         `json:"matched_invoice_ids"`
	Reasons           []string         `json:"reasons"`
	Matches           []DuplicateMatch `json:"matches"`
}

// Indicators are management ratios derived from the cash and fiscal views.
type Indicators struct {
	// CashMarginPct is cash net over cash income, in percent; zero without income.
	CashMarginPct decimal.Decimal `json:"cash_margin_pct"`

	// IncomeExpenseRatio is cash income over cash expense; zero without expense.
	IncomeExpenseRatio decimal.Decimal `json:"income_expense_ratio"`

	CashProfit   decimal.Decimal `json:"cash_profit"`
	FiscalProfit decimal.Decimal `json:"fiscal_profit"`

	// RealFiscalGap is fiscal net minus cash net: the part of the accrual
	// result that never moved money.
	RealFiscalGap decimal.Decimal `json:"real_fiscal_gap"`
}

// Summary bundles everything a balance run produces for rendering.
type Summary struct {
	Title       string               `json:"title"`
	PeriodStart time.Time            `json:"period_start"`
	PeriodEnd   time.Time            `json:"period_end"`
	Owner       string               `json:"owner,omitempty"`
	Reports     []BalanceReport      `json:"reports"`
	Indicators  Indicators           `json:"indicators"`
	Partners    []PartnerShare       `json:"partners"`
	Warnings    []DataQualityWarning `json:"warnings"`
	GeneratedAt time.Time            `json:"generated_at"`
}
