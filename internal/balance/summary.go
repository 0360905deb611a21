package balance

import (
	"time"

	"opendoors/pkg/models"
)

// Summary bundles the result with its indicators and partner shares for
// rendering. shares may be nil.
func (r *Result) Summary(title string, shares []models.PartnerShare, generatedAt time.Time) models.Summary {
	if shares == nil {
		shares = []models.PartnerShare{}
	}
	return models.Summary{
		Title:       title,
		PeriodStart: r.Period.Start,
		PeriodEnd:   r.Period.End,
		Owner:       r.Owner,
		Reports:     r.Reports(),
		Indicators:  ComputeIndicators(r),
		Partners:    shares,
		Warnings:    r.Warnings,
		GeneratedAt: generatedAt,
	}
}
