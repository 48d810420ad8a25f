package datemath

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseUKDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"01/03/2025", date(2025, time.March, 1), true},
		{"1/3/2025", date(2025, time.March, 1), true},
		{"01-03-2025", date(2025, time.March, 1), true},
		{"01.03.2025", date(2025, time.March, 1), true},
		{"1 March 2025", date(2025, time.March, 1), true},
		{"1st March 2025", date(2025, time.March, 1), true},
		{"22nd December 2025", date(2025, time.December, 22), true},
		{"3 Jan 2026", date(2026, time.January, 3), true},
		{"2025-03-01", date(2025, time.March, 1), true},
		{"  14 July 2026  ", date(2026, time.July, 14), true},
		{"", time.Time{}, false},
		{"not a date", time.Time{}, false},
		{"32/01/2025", time.Time{}, false},
		{"31/02/2025", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseUKDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseUKDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseUKDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAddCalendarMonthsClamping(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{"31 Jan plus one clamps to 28 Feb", date(2025, time.January, 31), 1, date(2025, time.February, 28)},
		{"30 Jan plus one clamps to leap day", date(2024, time.January, 30), 1, date(2024, time.February, 29)},
		{"31 Mar plus one clamps to 30 Apr", date(2025, time.March, 31), 1, date(2025, time.April, 30)},
		{"mid-month unaffected", date(2025, time.March, 15), 2, date(2025, time.May, 15)},
		{"across year end", date(2025, time.November, 30), 3, date(2026, time.February, 28)},
		{"negative months", date(2025, time.March, 31), -1, date(2025, time.February, 28)},
		{"negative across year start", date(2025, time.January, 15), -2, date(2024, time.November, 15)},
		{"zero is identity", date(2025, time.June, 10), 0, date(2025, time.June, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddCalendarMonths(tt.in, tt.n)
			if !got.Equal(tt.want) {
				t.Errorf("AddCalendarMonths(%v, %d) = %v, want %v", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestAddTwelveMonthsRoundTrip(t *testing.T) {
	// A 12-month addition lands on the same calendar day, including
	// across a leap year, except where clamped by a shorter February.
	start := date(2025, time.March, 1)
	if got := AddCalendarMonths(start, 12); !got.Equal(date(2026, time.March, 1)) {
		t.Errorf("12 months from 1 Mar 2025 = %v, want 1 Mar 2026", got)
	}

	leap := date(2024, time.February, 29)
	if got := AddCalendarMonths(leap, 12); !got.Equal(date(2025, time.February, 28)) {
		t.Errorf("12 months from 29 Feb 2024 = %v, want 28 Feb 2025", got)
	}

	for day := 1; day <= 28; day++ {
		start := date(2024, time.February, day)
		got := AddCalendarMonths(start, 12)
		if got.Day() != day || got.Year() != 2025 || got.Month() != time.February {
			t.Errorf("12 months from %v = %v, want same day in Feb 2025", start, got)
		}
	}
}

func TestFormatUKDate(t *testing.T) {
	if got := FormatUKDate(date(2026, time.March, 1)); got != "1 March 2026" {
		t.Errorf("FormatUKDate = %q, want %q", got, "1 March 2026")
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	orig := date(2025, time.December, 22)
	parsed, ok := ParseUKDate(FormatUKDate(orig))
	if !ok || !parsed.Equal(orig) {
		t.Errorf("round trip of %v gave %v (ok=%v)", orig, parsed, ok)
	}
}

func TestAddDays(t *testing.T) {
	if got := AddDays(date(2025, time.February, 27), 2); !got.Equal(date(2025, time.March, 1)) {
		t.Errorf("AddDays = %v, want 1 Mar 2025", got)
	}
}
