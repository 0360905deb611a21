// Package period turns a fiscal-year number or an explicit date range into
// the inclusive interval every report is computed over.
package period

import (
	"fmt"
	"time"

	"opendoors/pkg/models"
)

// Config locates the first day of a fiscal year. The zero value is not
// valid; use DefaultConfig for the calendar year.
type Config struct {
	StartMonth time.Month
	StartDay   int
}

// DefaultConfig is the calendar year, January 1st.
func DefaultConfig() Config {
	return Config{StartMonth: time.January, StartDay: 1}
}

// Validate rejects start days that do not exist in every year (Feb 29 included).
func (c Config) Validate() error {
	if c.StartMonth < time.January || c.StartMonth > time.December {
		return fmt.Errorf("%w: month %d", ErrInvalidFiscalStart, c.StartMonth)
	}
	// 2001 is not a leap year, so February caps at 28.
	last := time.Date(2001, c.StartMonth+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if c.StartDay < 1 || c.StartDay > last {
		return fmt.Errorf("%w: day %d of %s", ErrInvalidFiscalStart, c.StartDay, c.StartMonth)
	}
	return nil
}

// Period is an inclusive interval of calendar dates.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the calendar date of t lies within p, bounds included.
func (p Period) Contains(t time.Time) bool {
	d := models.CalendarDate(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// String renders the period as "2024-07-01..2025-06-30".
func (p Period) String() string {
	return p.Start.Format("2006-01-02") + ".." + p.End.Format("2006-01-02")
}

// Selector picks a period either by fiscal year or by explicit bounds.
// Build one with FiscalYear or Range.
type Selector struct {
	year     int
	start    time.Time
	end      time.Time
	hasRange bool
}

// FiscalYear selects the fiscal year that starts in the given calendar year.
func FiscalYear(year int) Selector {
	return Selector{year: year}
}

// Range selects the explicit inclusive interval [start, end].
func Range(start, end time.Time) Selector {
	return Selector{start: start, end: end, hasRange: true}
}

// IsRange reports whether the selector carries explicit bounds.
func (s Selector) IsRange() bool { return s.hasRange }

// Year returns the fiscal year of a year selector, or 0.
func (s Selector) Year() int { return s.year }

// FiscalYearInfo describes one fiscal year for selectors and listings.
type FiscalYearInfo struct {
	Year    int    `json:"year"`
	Period  Period `json:"period"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

// Resolver maps selectors to periods under a fiscal calendar.
type Resolver struct {
	cfg Config
}

// NewResolver validates cfg and returns a resolver for it.
func NewResolver(cfg Config) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Resolver{cfg: cfg}, nil
}

// Config returns the fiscal calendar in use.
func (r *Resolver) Config() Config {
	return r.cfg
}

// Resolve returns the inclusive period named by sel. Explicit ranges are used
// verbatim (truncated to calendar dates) and fail with ErrInvalidRange when
// start is after end.
func (r *Resolver) Resolve(sel Selector) (Period, error) {
	if sel.hasRange {
		start, end := models.CalendarDate(sel.start), models.CalendarDate(sel.end)
		if start.After(end) {
			return Period{}, &RangeError{Start: start, End: end}
		}
		return Period{Start: start, End: end}, nil
	}
	if sel.year == 0 {
		return Period{}, ErrEmptySelector
	}
	return r.fiscalYear(sel.year), nil
}

func (r *Resolver) fiscalYear(year int) Period {
	start := time.Date(year, r.cfg.StartMonth, r.cfg.StartDay, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(1, 0, -1)}
}

// YearOf returns the fiscal year whose period contains t.
func (r *Resolver) YearOf(t time.Time) int {
	d := models.CalendarDate(t)
	year := d.Year()
	if d.Before(r.fiscalYear(year).Start) {
		year--
	}
	return year
}

// Info describes a fiscal year relative to now.
func (r *Resolver) Info(year int, now time.Time) FiscalYearInfo {
	p := r.fiscalYear(year)
	return FiscalYearInfo{
		Year:    year,
		Period:  p,
		Label:   Label(year, p),
		Current: r.YearOf(now) == year,
	}
}

// Current returns the fiscal year containing now.
func (r *Resolver) Current(now time.Time) FiscalYearInfo {
	return r.Info(r.YearOf(now), now)
}

// List returns the current fiscal year followed by the limit-1 previous ones.
func (r *Resolver) List(now time.Time, limit int) []FiscalYearInfo {
	if limit <= 0 {
		return nil
	}
	current := r.YearOf(now)
	years := make([]FiscalYearInfo, 0, limit)
	for i := 0; i < limit; i++ {
		years = append(years, r.Info(current-i, now))
	}
	return years
}

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Label renders a fiscal year as "2024 (Julio 2024 - Junio 2025)".
func Label(year int, p Period) string {
	return fmt.Sprintf("%d (%s %d - %s %d)", year,
		monthNames[p.Start.Month()-1], p.Start.Year(),
		monthNames[p.End.Month()-1], p.End.Year())
}
