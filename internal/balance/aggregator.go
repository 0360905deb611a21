// Package balance folds classified invoices into the four balance reports:
// tax ledger (Balance IVA), cash (Balance real), fiscal (Balance fiscal) and
// the income-tax estimate.
//
// Tax ledger sign convention: Net = IVA issued - IVA received. A positive
// Net means more IVA was collected from customers than paid to suppliers,
// so the firm owes the difference ("a pagar"). A negative Net is a credit in
// the firm's favour ("a favor"). CreditWhenPositive inverts only the state
// label, never the arithmetic.
package balance

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"opendoors/internal/classify"
	"opendoors/internal/invoice"
	"opendoors/internal/logger"
	"opendoors/internal/period"
	"opendoors/pkg/models"
)

// TaxCreditWhen selects which sign of the tax-ledger balance is labelled a credit.
type TaxCreditWhen int

const (
	// CreditWhenNegative labels Net < 0 as A_FAVOR. This is the default.
	CreditWhenNegative TaxCreditWhen = iota
	// CreditWhenPositive labels Net > 0 as A_FAVOR.
	CreditWhenPositive
)

// String returns the configuration spelling of the convention.
func (c TaxCreditWhen) String() string {
	if c == CreditWhenPositive {
		return "positive"
	}
	return "negative"
}

// minParallelChunk keeps small inputs on a single goroutine.
const minParallelChunk = 512

// Config holds the inputs of a balance run that come from configuration.
type Config struct {
	// IncomeTaxRate is the fraction applied to the fiscal profit, e.g. 0.35.
	IncomeTaxRate decimal.Decimal

	// Tolerance is the accepted gap in the total == parts invariant.
	Tolerance decimal.Decimal

	// CreditWhen is the tax-ledger state convention.
	CreditWhen TaxCreditWhen

	// Workers > 1 partitions the input and folds the parts concurrently.
	Workers int
}

// Result holds the four reports of one run.
type Result struct {
	Period    period.Period
	Owner     string
	Totals    Totals
	TaxLedger models.BalanceReport
	Cash      models.BalanceReport
	Fiscal    models.BalanceReport
	IncomeTax models.BalanceReport

	// Warnings lists every data-quality warning once, in input order.
	Warnings []models.DataQualityWarning
}

// Reports returns the four reports in display order.
func (r *Result) Reports() []models.BalanceReport {
	return []models.BalanceReport{r.TaxLedger, r.Cash, r.Fiscal, r.IncomeTax}
}

// Aggregator computes balance reports. It holds no state between calls and
// is safe for concurrent use.
type Aggregator struct {
	cfg        Config
	validation *invoice.AmountValidation
	log        zerolog.Logger
}

// NewAggregator creates an aggregator for cfg.
func NewAggregator(cfg Config) *Aggregator {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Aggregator{
		cfg:        cfg,
		validation: invoice.NewAmountValidation(cfg.Tolerance),
		log:        logger.WithComponent("balance"),
	}
}

// Config returns the effective configuration.
func (a *Aggregator) Config() Config {
	return a.cfg
}

// Tolerance returns the amount tolerance used for warnings and cross-checks.
func (a *Aggregator) Tolerance() decimal.Decimal {
	return a.validation.Tolerance()
}

// Select applies the report filter: not DELETED, not REJECTED, issue date
// within p (inclusive). The input slice is not modified.
func Select(invoices []models.Invoice, p period.Period) []models.Invoice {
	out := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if classify.CountsInReports(inv) && p.Contains(inv.IssueDate) {
			out = append(out, inv)
		}
	}
	return out
}

// SelectOwner narrows a selection to one owner. An empty owner keeps everything.
func SelectOwner(invoices []models.Invoice, owner string) []models.Invoice {
	if owner == "" {
		return invoices
	}
	out := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.Owner == owner {
			out = append(out, inv)
		}
	}
	return out
}

// Aggregate builds the four reports for every invoice in period p.
//
// It fails only when a selected invoice breaks a precondition (see
// invoice.Validate); records outside the filter are never inspected.
// Amount inconsistencies become warnings on the affected reports.
func (a *Aggregator) Aggregate(invoices []models.Invoice, p period.Period) (*Result, error) {
	return a.AggregateOwner(invoices, p, "")
}

// AggregateOwner is Aggregate restricted to the invoices of one owner.
func (a *Aggregator) AggregateOwner(invoices []models.Invoice, p period.Period, owner string) (*Result, error) {
	const op = "Aggregate"

	selected := SelectOwner(Select(invoices, p), owner)
	if err := invoice.ValidateAll(selected); err != nil {
		return nil, WrapAggregationError(op, err, "invoices must be validated before aggregation")
	}

	log := logger.WithPeriod("balance", p.Start, p.End)
	log.Debug().
		Int("input", len(invoices)).
		Int("selected", len(selected)).
		Str("owner", owner).
		Int("workers", a.cfg.Workers).
		Msg("Starting balance aggregation")

	var (
		totals Totals
		notes  []note
		err    error
	)
	if a.cfg.Workers > 1 && len(selected) >= 2*minParallelChunk {
		totals, notes, err = a.foldParallel(selected)
		if err != nil {
			return nil, WrapAggregationError(op, err, "parallel fold")
		}
	} else {
		totals, notes = a.fold(selected)
	}

	result := a.buildResult(totals, notes, p, owner)

	log.Debug().
		Str("tax_ledger", result.TaxLedger.Net.StringFixed(2)).
		Str("cash", result.Cash.Net.StringFixed(2)).
		Str("fiscal", result.Fiscal.Net.StringFixed(2)).
		Int("warnings", len(result.Warnings)).
		Msg("Balance aggregation completed")

	return result, nil
}

// note is a warning together with the tag of the invoice that raised it,
// so it can be attached to the reports the invoice contributed to.
type note struct {
	warning models.DataQualityWarning
	tag     models.ClassificationTag
}

func (a *Aggregator) fold(invoices []models.Invoice) (Totals, []note) {
	var (
		totals Totals
		notes  []note
	)
	for _, inv := range invoices {
		tag := classify.Classify(inv)
		totals.Add(inv, tag)
		for _, w := range a.validation.Check(inv) {
			notes = append(notes, note{warning: w, tag: tag})
		}
	}
	return totals, notes
}

// foldParallel splits the input into contiguous chunks, folds them
// concurrently and merges the partial results in chunk order, so the output
// is identical to fold.
func (a *Aggregator) foldParallel(invoices []models.Invoice) (Totals, []note, error) {
	workers := a.cfg.Workers
	size := (len(invoices) + workers - 1) / workers
	if size < minParallelChunk {
		size = minParallelChunk
	}

	var chunks [][]models.Invoice
	for start := 0; start < len(invoices); start += size {
		end := start + size
		if end > len(invoices) {
			end = len(invoices)
		}
		chunks = append(chunks, invoices[start:end])
	}

	partials := make([]Totals, len(chunks))
	partialNotes := make([][]note, len(chunks))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			partials[i], partialNotes[i] = a.fold(chunk)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Totals{}, nil, err
	}

	var (
		totals Totals
		notes  []note
	)
	for i := range partials {
		totals.Merge(partials[i])
		notes = append(notes, partialNotes[i]...)
	}
	return totals, notes, nil
}

func (a *Aggregator) buildResult(t Totals, notes []note, p period.Period, owner string) *Result {
	result := &Result{
		Period:    p,
		Owner:     owner,
		Totals:    t,
		TaxLedger: a.taxLedgerReport(t, p, owner),
		Cash:      cashReport(t, p, owner),
		Fiscal:    fiscalReport(t, p, owner),
	}
	result.IncomeTax = a.incomeTaxReport(result.Fiscal, p, owner)

	result.Warnings = make([]models.DataQualityWarning, 0, len(notes))
	for _, n := range notes {
		result.Warnings = append(result.Warnings, n.warning)
		if n.tag.CountsForTaxLedger {
			result.TaxLedger.Warnings = append(result.TaxLedger.Warnings, n.warning)
		}
		if n.tag.CountsForCashBalance {
			result.Cash.Warnings = append(result.Cash.Warnings, n.warning)
		}
		if n.tag.CountsForFiscalBalance {
			result.Fiscal.Warnings = append(result.Fiscal.Warnings, n.warning)
			result.IncomeTax.Warnings = append(result.IncomeTax.Warnings, n.warning)
		}
	}
	return result
}

func newReport(kind models.ReportKind, label string, p period.Period, owner string) models.BalanceReport {
	meta := map[string]string{
		"period_start": p.Start.Format("2006-01-02"),
		"period_end":   p.End.Format("2006-01-02"),
	}
	if owner != "" {
		meta["owner"] = owner
	}
	return models.BalanceReport{
		Kind:        kind,
		Label:       label,
		PeriodStart: p.Start,
		PeriodEnd:   p.End,
		Metadata:    meta,
		Warnings:    []models.DataQualityWarning{},
	}
}

// TaxLedgerState labels a tax-ledger balance under the given convention.
func TaxLedgerState(net decimal.Decimal, credit TaxCreditWhen) string {
	switch {
	case net.IsZero():
		return models.StateNeutral
	case net.IsNegative() == (credit == CreditWhenNegative):
		return models.StateCredit
	default:
		return models.StatePayable
	}
}

func (a *Aggregator) taxLedgerReport(t Totals, p period.Period, owner string) models.BalanceReport {
	r := newReport(models.ReportTaxLedger, "Balance IVA", p, owner)
	r.TotalIn = t.TaxIssued.Amount
	r.TotalOut = t.TaxReceived.Amount
	r.Net = t.TaxLedgerBalance()
	r.InvoicesIn = t.TaxIssued.Count
	r.InvoicesOut = t.TaxReceived.Count
	r.State = TaxLedgerState(r.Net, a.cfg.CreditWhen)

	credit, payable := decimal.Zero, decimal.Zero
	switch r.State {
	case models.StateCredit:
		credit = r.Net.Abs()
	case models.StatePayable:
		payable = r.Net.Abs()
	}
	r.Metadata["iva_a_favor"] = credit.StringFixed(2)
	r.Metadata["iva_a_pagar"] = payable.StringFixed(2)
	r.Metadata["credit_when"] = a.cfg.CreditWhen.String()
	r.Metadata["filter"] = "Solo facturas tipo A"
	return r
}

func signState(net decimal.Decimal) string {
	switch net.Sign() {
	case 1:
		return models.StatePositive
	case -1:
		return models.StateNegative
	default:
		return models.StateNeutral
	}
}

func cashReport(t Totals, p period.Period, owner string) models.BalanceReport {
	r := newReport(models.ReportCash, "Balance Real", p, owner)
	r.TotalIn = t.CashIn.Amount
	r.TotalOut = t.CashOut.Amount
	r.Net = t.CashBalance()
	r.InvoicesIn = t.CashIn.Count
	r.InvoicesOut = t.CashOut.Count
	r.State = signState(r.Net)
	r.Metadata["filter"] = "Solo facturas con Mov. Cta. = SI"
	return r
}

func fiscalReport(t Totals, p period.Period, owner string) models.BalanceReport {
	r := newReport(models.ReportFiscal, "Balance Fiscal", p, owner)
	r.TotalIn = t.FiscalIn.Amount
	r.TotalOut = t.FiscalOut.Amount
	r.Net = t.FiscalBalance()
	r.InvoicesIn = t.FiscalIn.Count
	r.InvoicesOut = t.FiscalOut.Count
	r.State = signState(r.Net)
	r.Metadata["filter"] = "Todas las facturas (incluye compensación IVA)"
	return r
}

func (a *Aggregator) incomeTaxReport(fiscal models.BalanceReport, p period.Period, owner string) models.BalanceReport {
	r := newReport(models.ReportIncomeTax, "Impuesto a las Ganancias", p, owner)
	base := fiscal.Net
	if base.IsNegative() {
		base = decimal.Zero
	}
	r.TotalIn = base
	r.TotalOut = decimal.Zero
	r.Net = base.Mul(a.cfg.IncomeTaxRate).Round(2)
	r.InvoicesIn = fiscal.InvoicesIn
	r.InvoicesOut = fiscal.InvoicesOut
	if r.Net.IsPositive() {
		r.State = models.StatePayable
	} else {
		r.State = models.StateNoProfit
	}
	r.Metadata["rate"] = a.cfg.IncomeTaxRate.String()
	r.Metadata["fiscal_net"] = fiscal.Net.StringFixed(2)
	r.Metadata["taxable_base"] = base.StringFixed(2)
	return r
}

// String is a one-line summary used in logs and console output.
func (r *Result) String() string {
	return fmt.Sprintf("%s iva=%s real=%s fiscal=%s ganancias=%s",
		r.Period, r.TaxLedger.Net.StringFixed(2), r.Cash.Net.StringFixed(2),
		r.Fiscal.Net.StringFixed(2), r.IncomeTax.Net.StringFixed(2))
}
