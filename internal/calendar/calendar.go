// Package calendar provides the pure date arithmetic behind the attendance
// grid. Months are 0-indexed (January = 0) to match the dashboard's month
// selector; all functions are deterministic and side-effect free.
package calendar

import (
	"fmt"
	"time"
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// DaysInMonth returns the last valid day number of the given month. Day zero
// of the following month is the last day of this one, which handles variable
// month lengths and Gregorian leap years.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// ISODate renders a canonical YYYY-MM-DD string with zero-padded month and
// day. This exact string is the join key against stored attendance dates;
// any formatting drift makes lookups silently miss.
func ISODate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month+1, day)
}

// IsWeekend reports whether the given day falls on Saturday or Sunday.
func IsWeekend(year, month, day int) bool {
	wd := time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.UTC).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// MonthName returns the English name for a 0-indexed month, empty when out
// of range.
func MonthName(month int) string {
	if month < 0 || month > 11 {
		return ""
	}
	return monthNames[month]
}

// MonthNames returns the fixed ordered list of the twelve month names.
func MonthNames() []string {
	names := make([]string, len(monthNames))
	copy(names, monthNames[:])
	return names
}

// Normalize folds month overflow and underflow into the year so navigation
// arithmetic stays trivial: (y, 12) becomes (y+1, 0) and (y, -1) becomes
// (y-1, 11).
func Normalize(year, month int) (int, int) {
	for month > 11 {
		month -= 12
		year++
	}
	for month < 0 {
		month += 12
		year--
	}
	return year, month
}

// YearOptions lists the selectable years around the current one, ascending,
// from currentYear-2 through currentYear+2 inclusive.
func YearOptions(currentYear int) []int {
	years := make([]int, 0, 5)
	for y := currentYear - 2; y <= currentYear+2; y++ {
		years = append(years, y)
	}
	return years
}
