package rules

import (
	"regexp"
	"strconv"
	"time"

	"github.com/woodhall335/noticecheck/internal/datemath"
	"github.com/woodhall335/noticecheck/internal/facts"
)

var groundNumber = regexp.MustCompile(`\d+`)

// ParseGrounds extracts Schedule 2 ground numbers from free text such
// as "Grounds 8, 10 and 11". Duplicates are dropped; order follows the
// text.
func ParseGrounds(s string) []int {
	var out []int
	seen := make(map[int]bool)
	for _, m := range groundNumber.FindAllString(s, -1) {
		n, err := strconv.Atoi(m)
		if err != nil || n < 1 || n > 17 {
			continue
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// twoMonthGrounds are the grounds requiring two months' notice under
// section 8(4B) of the Housing Act 1988.
var twoMonthGrounds = map[int]bool{
	1: true, 2: true, 5: true, 6: true, 7: true, 9: true, 16: true,
}

// NoticePeriod is a statutory minimum notice expressed in months and
// days; either part may be zero.
type NoticePeriod struct {
	Months int
	Days   int
}

// After returns the earliest date the period allows, counted from a
// service date.
func (p NoticePeriod) After(service time.Time) time.Time {
	t := datemath.AddCalendarMonths(service, p.Months)
	return datemath.AddDays(t, p.Days)
}

// MinimumSection8Notice returns the minimum notice for a Section 8
// notice relying on the given grounds. Ground 14 alone allows
// proceedings as soon as the notice is served; the rent grounds (8, 10,
// 11) and most others need two weeks; grounds such as 1 and 6 need two
// months. Where grounds mix, the longest period governs.
func MinimumSection8Notice(grounds []int) NoticePeriod {
	if len(grounds) == 1 && grounds[0] == 14 {
		return NoticePeriod{}
	}
	period := NoticePeriod{Days: 14}
	for _, g := range grounds {
		if twoMonthGrounds[g] {
			period = NoticePeriod{Months: 2}
		}
	}
	return period
}

// LatestSection8Proceedings is the last day court proceedings may begin
// on a Section 8 notice: twelve months from service.
func LatestSection8Proceedings(service time.Time) time.Time {
	return datemath.AddCalendarMonths(service, 12)
}

// Section 21 periods.
const (
	// section21NoticeMonths is the minimum notice under s.21(1).
	section21NoticeMonths = 2
	// section21UseItOrLoseItMonths bounds how long after service a
	// possession claim may rely on the notice.
	section21UseItOrLoseItMonths = 6
	// section21EarlyServiceBarMonths bars service within the first four
	// months of the tenancy.
	section21EarlyServiceBarMonths = 4
	// walesNoFaultNoticeMonths is the Renting Homes (Wales) s.173
	// minimum.
	walesNoFaultNoticeMonths = 6
	// depositProtectionDays is the window to protect a deposit.
	depositProtectionDays = 30
	// limitationMonths is the Limitation Act window for rent arrears.
	limitationMonths = 72
)

// LimitationDate returns the limitation cut-off for a claim item first
// due on the given date.
func LimitationDate(due time.Time) time.Time {
	return datemath.AddCalendarMonths(due, limitationMonths)
}

// OldestItemDate returns the earliest parseable period date among line
// items, false when none parse.
func OldestItemDate(items []facts.ClaimLineItem) (time.Time, bool) {
	var oldest time.Time
	found := false
	for _, li := range items {
		t, ok := datemath.ParseUKDate(li.Period)
		if !ok {
			continue
		}
		if !found || t.Before(oldest) {
			oldest = t
			found = true
		}
	}
	return oldest, found
}
