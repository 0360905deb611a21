// Package partner splits the balances of a run among the firm's partners.
package partner

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"opendoors/internal/balance"
	"opendoors/internal/classify"
	"opendoors/internal/invoice"
	"opendoors/internal/logger"
	"opendoors/pkg/models"
)

// Unassigned is the partner name used for invoices without an owner.
const Unassigned = "Sin asignar"

// Config controls an Apportioner.
type Config struct {
	// Tolerance is the ε of the conservation cross-check.
	Tolerance decimal.Decimal

	// Workers > 1 folds the owner groups concurrently.
	Workers int
}

// Apportioner groups invoices by owner using the same accumulator as the
// balance aggregator.
type Apportioner struct {
	cfg Config
	log zerolog.Logger
}

// NewApportioner creates an apportioner. A non-positive tolerance falls back
// to invoice.DefaultTolerance.
func NewApportioner(cfg Config) *Apportioner {
	if !cfg.Tolerance.IsPositive() {
		cfg.Tolerance = invoice.DefaultTolerance
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Apportioner{cfg: cfg, log: logger.WithComponent("partner")}
}

type group struct {
	name     string
	invoices []models.Invoice
	totals   balance.Totals
}

// Apportion returns one share per owner found among the invoices that
// result was computed from. Shares are ordered by partner name with
// Unassigned last. The sum of the shares is cross-checked against result
// and a *ConservationError is returned if it does not hold.
func (a *Apportioner) Apportion(result *balance.Result, invoices []models.Invoice) ([]models.PartnerShare, error) {
	if result == nil {
		return nil, ErrNoResult
	}
	selected := balance.SelectOwner(balance.Select(invoices, result.Period), result.Owner)
	if err := invoice.ValidateAll(selected); err != nil {
		return nil, fmt.Errorf("apportion: %w", err)
	}
	groups := groupByOwner(selected)

	if a.cfg.Workers > 1 && len(groups) > 1 {
		var g errgroup.Group
		g.SetLimit(a.cfg.Workers)
		for _, grp := range groups {
			g.Go(func() error {
				grp.totals = fold(grp.invoices)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("apportion: %w", err)
		}
	} else {
		for _, grp := range groups {
			grp.totals = fold(grp.invoices)
		}
	}

	shares := make([]models.PartnerShare, 0, len(groups))
	for _, grp := range groups {
		shares = append(shares, share(grp.name, grp.totals))
	}

	a.log.Debug().
		Str("period", result.Period.String()).
		Int("invoices", len(selected)).
		Int("partners", len(shares)).
		Msg("Apportioned balances")

	if err := VerifyConservation(shares, result, a.cfg.Tolerance); err != nil {
		a.log.Warn().Err(err).Msg("Partner shares failed the conservation check")
		return shares, err
	}
	return shares, nil
}

func groupByOwner(invoices []models.Invoice) []*group {
	byName := make(map[string]*group)
	for _, inv := range invoices {
		name := inv.Owner
		if name == "" {
			name = Unassigned
		}
		grp, ok := byName[name]
		if !ok {
			grp = &group{name: name}
			byName[name] = grp
		}
		grp.invoices = append(grp.invoices, inv)
	}

	groups := make([]*group, 0, len(byName))
	for _, grp := range byName {
		groups = append(groups, grp)
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i].name, groups[j].name
		if (a == Unassigned) != (b == Unassigned) {
			return b == Unassigned
		}
		return a < b
	})
	return groups
}

func fold(invoices []models.Invoice) balance.Totals {
	var t balance.Totals
	for _, inv := range invoices {
		t.Add(inv, classify.Classify(inv))
	}
	return t
}

func share(name string, t balance.Totals) models.PartnerShare {
	return models.PartnerShare{
		PartnerName:      name,
		CashBalance:      t.CashBalance(),
		TaxLedgerBalance: t.TaxLedgerBalance(),
		FiscalBalance:    t.FiscalBalance(),
		TotalIncome:      t.CashIn.Amount,
		TotalExpense:     t.CashOut.Amount,
		InvoiceCount:     t.InvoiceCount(),
	}
}

// VerifyConservation checks that the cash, tax-ledger and fiscal balances of
// the shares add up to those of result within tol.
func VerifyConservation(shares []models.PartnerShare, result *balance.Result, tol decimal.Decimal) error {
	if result == nil {
		return ErrNoResult
	}
	var cash, tax, fiscal decimal.Decimal
	for _, s := range shares {
		cash = cash.Add(s.CashBalance)
		tax = tax.Add(s.TaxLedgerBalance)
		fiscal = fiscal.Add(s.FiscalBalance)
	}

	var errs []error
	check := func(name string, sum, expected decimal.Decimal) {
		if sum.Sub(expected).Abs().GreaterThan(tol) {
			errs = append(errs, &ConservationError{Balance: name, Expected: expected, Sum: sum})
		}
	}
	check("cash balance", cash, result.Cash.Net)
	check("tax ledger balance", tax, result.TaxLedger.Net)
	check("fiscal balance", fiscal, result.Fiscal.Net)
	return errors.Join(errs...)
}
