// Package duplicate scores incoming invoices against history to flag likely
// duplicates. Results are advisory; nothing here blocks ingestion.
package duplicate

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"opendoors/internal/invoice"
	"opendoors/internal/logger"
	"opendoors/pkg/models"
)

// Config holds the matcher weights and limits.
type Config struct {
	// Threshold is the confidence above which a candidate is flagged.
	Threshold float64

	// DateWindowDays is the distance at which the date score reaches zero.
	DateWindowDays int

	// MaxMatches caps the number of matches returned.
	MaxMatches int

	AmountWeight float64
	DateWeight   float64
	NameWeight   float64

	// AmountRatio is the relative difference under which totals match.
	AmountRatio decimal.Decimal
}

// DefaultConfig returns the matcher settings used by the upload screen.
func DefaultConfig() Config {
	return Config{
		Threshold:      0.8,
		DateWindowDays: 7,
		MaxMatches:     5,
		AmountWeight:   0.4,
		DateWeight:     0.3,
		NameWeight:     0.3,
		AmountRatio:    decimal.RequireFromString("0.01"),
	}
}

// Validate checks that the configuration can produce confidences in [0, 1].
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("duplicate threshold must be within [0, 1], got %v", c.Threshold)
	}
	if c.DateWindowDays < 0 {
		return fmt.Errorf("duplicate date window must not be negative, got %d", c.DateWindowDays)
	}
	if c.MaxMatches < 1 {
		return fmt.Errorf("duplicate max matches must be at least 1, got %d", c.MaxMatches)
	}
	sum := c.AmountWeight + c.DateWeight + c.NameWeight
	if c.AmountWeight < 0 || c.DateWeight < 0 || c.NameWeight < 0 || math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("duplicate weights must be non-negative and sum to 1, got %v", sum)
	}
	return nil
}

// Matcher scores candidates against historical invoices.
type Matcher struct {
	cfg Config
	log zerolog.Logger
}

// NewMatcher validates cfg and creates a matcher.
func NewMatcher(cfg Config) (*Matcher, error) {
	if cfg.AmountRatio.IsZero() {
		cfg.AmountRatio = DefaultConfig().AmountRatio
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{cfg: cfg, log: logger.WithComponent("duplicate")}, nil
}

// Config returns the effective configuration.
func (m *Matcher) Config() Config {
	return m.cfg
}

// FindDuplicates scores candidate against history with the configured
// threshold.
func (m *Matcher) FindDuplicates(candidate models.Invoice, history []models.Invoice) models.DuplicateCandidate {
	return m.FindDuplicatesThreshold(candidate, history, m.cfg.Threshold)
}

// FindDuplicatesThreshold scores candidate against every comparable history
// entry: same direction, not DELETED, not the candidate itself. An issued
// and a received invoice with the same party are two sides of a trade,
// never a double load, so opposite directions are not scored. The best
// MaxMatches entries are returned by descending confidence, ties by id.
// The candidate is flagged when the best confidence is above threshold.
func (m *Matcher) FindDuplicatesThreshold(candidate models.Invoice, history []models.Invoice, threshold float64) models.DuplicateCandidate {
	var matches []models.DuplicateMatch
	for _, h := range history {
		if h.Status == models.StatusDeleted || h.Direction != candidate.Direction {
			continue
		}
		if h.ID != "" && h.ID == candidate.ID {
			continue
		}
		match := m.Score(candidate, h)
		if match.Confidence > 0 {
			matches = append(matches, match)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].InvoiceID < matches[j].InvoiceID
	})
	if len(matches) > m.cfg.MaxMatches {
		matches = matches[:m.cfg.MaxMatches]
	}

	result := models.DuplicateCandidate{
		InvoiceID:         candidate.ID,
		MatchedInvoiceIDs: []string{},
		Reasons:           []string{},
		Matches:           []models.DuplicateMatch{},
	}
	if len(matches) == 0 {
		return result
	}

	result.Confidence = matches[0].Confidence
	result.IsDuplicate = result.Confidence > threshold
	result.Reasons = matches[0].Reasons
	result.Matches = matches
	for _, match := range matches {
		result.MatchedInvoiceIDs = append(result.MatchedInvoiceIDs, match.InvoiceID)
	}

	if result.IsDuplicate {
		m.log.Info().
			Str("invoice_id", candidate.ID).
			Str("matched", matches[0].InvoiceID).
			Float64("confidence", result.Confidence).
			Msg("Possible duplicate invoice")
	}
	return result
}

// Score compares two invoices. Confidence is the weighted sum of the
// amount, date and counterparty scores, rounded to four decimals.
func (m *Matcher) Score(candidate, other models.Invoice) models.DuplicateMatch {
	var reasons []string

	amount := m.amountScore(candidate.Total, other.Total)
	if amount > 0 {
		reasons = append(reasons, fmt.Sprintf("mismo monto (%s vs %s)", candidate.Total.StringFixed(2), other.Total.StringFixed(2)))
	}

	days := daysApart(candidate, other)
	date := m.dateScore(days)
	if date > 0 {
		reasons = append(reasons, fmt.Sprintf("fechas a %d días", days))
	}

	name := NameSimilarity(candidate.CounterpartyName, other.CounterpartyName)
	if sameTaxID(candidate, other) {
		name = 1
		reasons = append(reasons, "mismo CUIT "+invoice.NormalizeCUIT(candidate.CounterpartyTaxID))
	} else if name > 0 {
		reasons = append(reasons, fmt.Sprintf("razón social similar (%.0f%%)", name*100))
	}

	if candidate.InvoiceNumber != "" && candidate.InvoiceNumber == other.InvoiceNumber {
		reasons = append(reasons, "mismo número de factura "+candidate.InvoiceNumber)
	}

	confidence := m.cfg.AmountWeight*amount + m.cfg.DateWeight*date + m.cfg.NameWeight*name
	confidence = math.Round(confidence*10000) / 10000
	if reasons == nil {
		reasons = []string{}
	}
	return models.DuplicateMatch{
		InvoiceID:  other.ID,
		Confidence: confidence,
		Reasons:    reasons,
	}
}

// amountScore is 1 when the totals differ by less than AmountRatio of the
// larger one, else 0. Two zero totals match.
func (m *Matcher) amountScore(a, b decimal.Decimal) float64 {
	diff := a.Sub(b).Abs()
	base := decimal.Max(a.Abs(), b.Abs())
	if base.IsZero() {
		return 1
	}
	if diff.LessThan(base.Mul(m.cfg.AmountRatio)) {
		return 1
	}
	return 0
}

// dateScore decays linearly from 1 at zero days to 0 at the window.
func (m *Matcher) dateScore(days int) float64 {
	if m.cfg.DateWindowDays == 0 {
		if days == 0 {
			return 1
		}
		return 0
	}
	score := 1 - float64(days)/float64(m.cfg.DateWindowDays)
	if score < 0 {
		return 0
	}
	return score
}

func daysApart(a, b models.Invoice) int {
	d := models.CalendarDate(a.IssueDate).Sub(models.CalendarDate(b.IssueDate))
	days := int(math.Round(d.Hours() / 24))
	if days < 0 {
		days = -days
	}
	return days
}

func sameTaxID(a, b models.Invoice) bool {
	x, y := invoice.NormalizeCUIT(a.CounterpartyTaxID), invoice.NormalizeCUIT(b.CounterpartyTaxID)
	return x != "" && x == y
}

// Scan checks every row of an import batch. Row i is compared against
// history and against rows 0..i-1 of the batch, so a file that repeats an
// invoice is flagged even when history is empty.
func (m *Matcher) Scan(batch, history []models.Invoice) []models.DuplicateCandidate {
	out := make([]models.DuplicateCandidate, 0, len(batch))
	seen := make([]models.Invoice, 0, len(history)+len(batch))
	seen = append(seen, history...)
	flagged := 0
	for _, row := range batch {
		c := m.FindDuplicates(row, seen)
		if c.IsDuplicate {
			flagged++
		}
		out = append(out, c)
		seen = append(seen, row)
	}
	m.log.Debug().
		Int("rows", len(batch)).
		Int("history", len(history)).
		Int("flagged", flagged).
		Msg("Scanned import batch for duplicates")
	return out
}
