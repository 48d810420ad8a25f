// Package datemath provides UK calendar date parsing, formatting and
// month arithmetic for statutory deadline calculations.
package datemath

import (
	"regexp"
	"strings"
	"time"
)

// DisplayLayout is the canonical display format for dates ("2 January 2006").
const DisplayLayout = "2 January 2006"

// ukDateLayouts are the accepted input formats, tried in order.
var ukDateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2006-01-02",
	"02/01/06",
	"January 2006",
	"Jan 2006",
	"01/2006",
}

// ordinalSuffix matches the st/nd/rd/th suffix on a day number ("1st March 2025").
var ordinalSuffix = regexp.MustCompile(`(\d+)(st|nd|rd|th)\b`)

// ParseUKDate leniently parses a UK-formatted date string. It returns
// false rather than an error on malformed input, so rule predicates can
// report "cannot calculate" issues instead of failing.
func ParseUKDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, ",", ", ")
	s = strings.Join(strings.Fields(s), " ")

	for _, layout := range ukDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// MustParse parses a date known to be valid. It panics on malformed
// input and is intended for tests and static rule data only.
func MustParse(s string) time.Time {
	t, ok := ParseUKDate(s)
	if !ok {
		panic("datemath: invalid date " + s)
	}
	return t
}

// FormatUKDate renders a date in the canonical display format.
func FormatUKDate(t time.Time) string {
	return t.Format(DisplayLayout)
}

// AddCalendarMonths adds n calendar months with end-of-month clamping:
// 31 January + 1 month is 28 (or 29) February, never 2/3 March. n may be
// negative. A 12-month addition returns to the same calendar day except
// where clamped by a shorter month.
func AddCalendarMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()

	// Normalize target year/month without letting the day overflow.
	m := int(month) - 1 + n
	year += m / 12
	m = m % 12
	if m < 0 {
		m += 12
		year--
	}
	targetMonth := time.Month(m + 1)

	if last := daysIn(year, targetMonth); day > last {
		day = last
	}
	return time.Date(year, targetMonth, day, 0, 0, 0, 0, t.Location())
}

// AddDays adds n days. Thin wrapper kept for symmetry with
// AddCalendarMonths at rule call sites.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
