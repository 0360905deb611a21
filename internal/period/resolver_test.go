package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveFiscalYear(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		year      int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"calendar year", DefaultConfig(), 2024, date(2024, 1, 1), date(2024, 12, 31)},
		{"july start", Config{StartMonth: time.July, StartDay: 1}, 2024, date(2024, 7, 1), date(2025, 6, 30)},
		{"may start like the AFIP settings", Config{StartMonth: time.May, StartDay: 1}, 2024, date(2024, 5, 1), date(2025, 4, 30)},
		{"mid month start", Config{StartMonth: time.March, StartDay: 15}, 2023, date(2023, 3, 15), date(2024, 3, 14)},
		{"march start across leap day", Config{StartMonth: time.March, StartDay: 1}, 2023, date(2023, 3, 1), date(2024, 2, 29)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResolver(tt.cfg)
			require.NoError(t, err)
			p, err := r.Resolve(FiscalYear(tt.year))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, p.Start)
			assert.Equal(t, tt.wantEnd, p.End)
		})
	}
}

func TestResolveRange(t *testing.T) {
	r, err := NewResolver(DefaultConfig())
	require.NoError(t, err)

	start := time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)
	end := time.Date(2024, 2, 20, 8, 0, 0, 0, time.UTC)
	p, err := r.Resolve(Range(start, end))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 10), p.Start)
	assert.Equal(t, date(2024, 2, 20), p.End)

	single, err := r.Resolve(Range(start, start))
	require.NoError(t, err)
	assert.True(t, single.Contains(start))
}

func TestResolveRangeRejectsInvertedBounds(t *testing.T) {
	r, err := NewResolver(DefaultConfig())
	require.NoError(t, err)

	_, err = r.Resolve(Range(date(2024, 3, 1), date(2024, 2, 1)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRange)

	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, date(2024, 3, 1), rangeErr.Start)
}

func TestResolveEmptySelector(t *testing.T) {
	r, err := NewResolver(DefaultConfig())
	require.NoError(t, err)
	_, err = r.Resolve(Selector{})
	assert.ErrorIs(t, err, ErrEmptySelector)
}

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, Config{}.Validate(), ErrInvalidFiscalStart)
	assert.ErrorIs(t, Config{StartMonth: time.February, StartDay: 29}.Validate(), ErrInvalidFiscalStart)
	assert.ErrorIs(t, Config{StartMonth: time.April, StartDay: 31}.Validate(), ErrInvalidFiscalStart)
	assert.ErrorIs(t, Config{StartMonth: 13, StartDay: 1}.Validate(), ErrInvalidFiscalStart)
	assert.NoError(t, Config{StartMonth: time.February, StartDay: 28}.Validate())
	assert.NoError(t, Config{StartMonth: time.December, StartDay: 31}.Validate())
}

func TestContainsIsInclusive(t *testing.T) {
	p := Period{Start: date(2024, 7, 1), End: date(2025, 6, 30)}
	assert.True(t, p.Contains(date(2024, 7, 1)))
	assert.True(t, p.Contains(time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)))
	assert.False(t, p.Contains(date(2024, 6, 30)))
	assert.False(t, p.Contains(date(2025, 7, 1)))
}

func TestCurrentAndList(t *testing.T) {
	r, err := NewResolver(Config{StartMonth: time.May, StartDay: 1})
	require.NoError(t, err)

	march := date(2025, 3, 10)
	assert.Equal(t, 2024, r.Current(march).Year)
	assert.Equal(t, 2025, r.Current(date(2025, 5, 1)).Year)

	list := r.List(march, 3)
	require.Len(t, list, 3)
	assert.Equal(t, []int{2024, 2023, 2022}, []int{list[0].Year, list[1].Year, list[2].Year})
	assert.True(t, list[0].Current)
	assert.False(t, list[1].Current)
	assert.Equal(t, "2024 (Mayo 2024 - Abril 2025)", list[0].Label)

	assert.Empty(t, r.List(march, 0))
}
