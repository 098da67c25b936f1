package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2024, 1, 29}, // leap February
		{2023, 1, 28}, // non-leap February
		{2100, 1, 28}, // century non-leap
		{2000, 1, 29}, // 400-year leap
		{2024, 0, 31},
		{2024, 3, 30},
		{2024, 11, 31},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DaysInMonth(tc.year, tc.month), "year %d month %d", tc.year, tc.month)
	}
}

func TestISODateEnumeratesMonthDensely(t *testing.T) {
	for _, tc := range []struct{ year, month int }{{2024, 1}, {2023, 1}, {2024, 11}, {2025, 0}} {
		days := DaysInMonth(tc.year, tc.month)
		seen := make(map[string]struct{}, days)
		prev := ""
		for day := 1; day <= days; day++ {
			iso := ISODate(tc.year, tc.month, day)
			parsed, err := time.Parse("2006-01-02", iso)
			require.NoError(t, err)
			assert.Equal(t, day, parsed.Day())
			// strictly increasing, no gaps
			if prev != "" {
				assert.Greater(t, iso, prev)
			}
			prev = iso
			seen[iso] = struct{}{}
		}
		assert.Len(t, seen, days)
	}
}

func TestISODateZeroPadding(t *testing.T) {
	assert.Equal(t, "2024-02-01", ISODate(2024, 1, 1))
	assert.Equal(t, "2024-12-09", ISODate(2024, 11, 9))
	assert.Equal(t, "2024-02-29", ISODate(2024, 1, 29))
}

func TestIsWeekend(t *testing.T) {
	// 2024-02-03 is a Saturday, 2024-02-04 a Sunday, 2024-02-05 a Monday.
	assert.True(t, IsWeekend(2024, 1, 3))
	assert.True(t, IsWeekend(2024, 1, 4))
	assert.False(t, IsWeekend(2024, 1, 5))
}

func TestNormalize(t *testing.T) {
	year, month := Normalize(2024, 12)
	assert.Equal(t, 2025, year)
	assert.Equal(t, 0, month)

	year, month = Normalize(2024, -1)
	assert.Equal(t, 2023, year)
	assert.Equal(t, 11, month)

	year, month = Normalize(2024, 5)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 5, month)
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "January", MonthName(0))
	assert.Equal(t, "December", MonthName(11))
	assert.Equal(t, "", MonthName(12))
	assert.Equal(t, "", MonthName(-1))
	assert.Len(t, MonthNames(), 12)
}

func TestYearOptions(t *testing.T) {
	assert.Equal(t, []int{2022, 2023, 2024, 2025, 2026}, YearOptions(2024))
}
