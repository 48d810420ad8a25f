package rules

import (
	"testing"
	"time"

	"github.com/woodhall335/noticecheck/internal/facts"
)

func findIssue(issues []Issue, code string) *Issue {
	for i := range issues {
		if issues[i].Code == code {
			return &issues[i]
		}
	}
	return nil
}

func arrearsItem(period string, due, paid facts.Pence) facts.ClaimLineItem {
	return facts.ClaimLineItem{Category: facts.CategoryArrears, Period: period, AmountDue: due, AmountPaid: paid}
}

func TestParseGrounds(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"Grounds 8, 10 and 11", []int{8, 10, 11}},
		{"ground 14", []int{14}},
		{"8", []int{8}},
		{"8 and 8 again", []int{8}},
		{"ground 99", nil},
		{"", nil},
		{"no grounds here", nil},
	}
	for _, tt := range tests {
		got := ParseGrounds(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("ParseGrounds(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseGrounds(%q) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}

func TestMinimumSection8Notice(t *testing.T) {
	service := day(2025, time.March, 1)
	tests := []struct {
		name    string
		grounds []int
		want    time.Time
	}{
		{"rent grounds need two weeks", []int{8, 10, 11}, day(2025, time.March, 15)},
		{"ground 1 needs two months", []int{1}, day(2025, time.May, 1)},
		{"mixed grounds take the longer period", []int{8, 1}, day(2025, time.May, 1)},
		{"ground 14 alone allows immediate proceedings", []int{14}, service},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinimumSection8Notice(tt.grounds).After(service)
			if !got.Equal(tt.want) {
				t.Errorf("minimum = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGround8Threshold(t *testing.T) {
	tests := []struct {
		freq string
		rent facts.Pence
		want facts.Pence
	}{
		{facts.FrequencyMonthly, 150000, 300000},
		{facts.FrequencyWeekly, 20000, 160000},
		{facts.FrequencyFortnightly, 40000, 160000},
	}
	for _, tt := range tests {
		got, ok := ground8Threshold(tt.rent, tt.freq)
		if !ok || got != tt.want {
			t.Errorf("ground8Threshold(%d, %s) = %d, want %d", tt.rent, tt.freq, got, tt.want)
		}
	}
	if _, ok := ground8Threshold(150000, "hourly"); ok {
		t.Error("unrecognized frequency should not produce a threshold")
	}
}

func TestSection8Ground8ThresholdRule(t *testing.T) {
	eng := NewEngine(Default())

	base := func(arrears []facts.ClaimLineItem, grounds string) facts.Snapshot {
		s := facts.NewStore()
		s.Set(facts.KeyGrounds, facts.Text(grounds), facts.ProvenanceUserConfirmed)
		s.Set(facts.KeyRentAmount, facts.Currency(150000), facts.ProvenanceUserConfirmed)
		s.Set(facts.KeyRentFrequency, facts.Option(facts.FrequencyMonthly), facts.ProvenanceUserConfirmed)
		s.Set(facts.KeyArrearsItems, facts.LineItems(arrears), facts.ProvenanceUserConfirmed)
		return s.Snapshot()
	}

	// Two months' rent unpaid: threshold met, no issue.
	met := base([]facts.ClaimLineItem{
		arrearsItem("Jan 2025", 150000, 0),
		arrearsItem("Feb 2025", 150000, 0),
	}, "Ground 8")
	if issue := findIssue(eng.Evaluate(met, ValidatorSection8, JurisdictionEngland), CodeS8Ground8BelowThresh); issue != nil {
		t.Errorf("threshold met but issue raised: %+v", issue)
	}

	// One month unpaid on Ground 8 alone: blocker.
	short := base([]facts.ClaimLineItem{arrearsItem("Jan 2025", 150000, 0)}, "Ground 8")
	issue := findIssue(eng.Evaluate(short, ValidatorSection8, JurisdictionEngland), CodeS8Ground8BelowThresh)
	if issue == nil {
		t.Fatal("threshold unmet but no issue raised")
	}
	if issue.Severity != SeverityBlocker {
		t.Errorf("severity = %q, want blocker when Ground 8 is the only ground", issue.Severity)
	}

	// Same arrears but discretionary grounds also pleaded: warning only.
	mixed := base([]facts.ClaimLineItem{arrearsItem("Jan 2025", 150000, 0)}, "Grounds 8, 10 and 11")
	issue = findIssue(eng.Evaluate(mixed, ValidatorSection8, JurisdictionEngland), CodeS8Ground8BelowThresh)
	if issue == nil {
		t.Fatal("threshold unmet but no issue raised for mixed grounds")
	}
	if issue.Severity != SeverityWarning {
		t.Errorf("severity = %q, want warning when other grounds remain", issue.Severity)
	}

	// Partial payments count: due 1500, paid 750 per month over two months
	// leaves one month's worth, below the threshold.
	partial := base([]facts.ClaimLineItem{
		arrearsItem("Jan 2025", 150000, 75000),
		arrearsItem("Feb 2025", 150000, 75000),
	}, "Ground 8")
	if findIssue(eng.Evaluate(partial, ValidatorSection8, JurisdictionEngland), CodeS8Ground8BelowThresh) == nil {
		t.Error("partial payments should leave the threshold unmet")
	}
}

func TestSection8NoticePeriodRule(t *testing.T) {
	eng := NewEngine(Default())

	snap := func(earliest time.Time, grounds string) facts.Snapshot {
		s := facts.NewStore()
		s.Set(facts.KeyServiceDate, facts.Date(day(2026, time.January, 1)), facts.ProvenanceUserConfirmed)
		s.Set(facts.KeyEarliestProceedings, facts.Date(earliest), facts.ProvenanceUserConfirmed)
		s.Set(facts.KeyGrounds, facts.Text(grounds), facts.ProvenanceUserConfirmed)
		return s.Snapshot()
	}

	// 1 Jan + 14 days = 15 Jan, matching the completed Form 3 fixture.
	valid := snap(day(2026, time.January, 15), "Grounds 8, 10 and 11")
	if issue := findIssue(eng.Evaluate(valid, ValidatorSection8, JurisdictionEngland), CodeS8NoticePeriodShort); issue != nil {
		t.Errorf("fourteen days' notice flagged short: %+v", issue)
	}

	tooShort := snap(day(2026, time.January, 10), "Grounds 8, 10 and 11")
	if findIssue(eng.Evaluate(tooShort, ValidatorSection8, JurisdictionEngland), CodeS8NoticePeriodShort) == nil {
		t.Error("nine days' notice not flagged")
	}

	beforeService := snap(day(2025, time.December, 20), "Ground 8")
	if findIssue(eng.Evaluate(beforeService, ValidatorSection8, JurisdictionEngland), CodeS8ProceedingsBeforeSvc) == nil {
		t.Error("proceedings date before service not flagged")
	}

	groundOne := snap(day(2026, time.January, 15), "Ground 1")
	if findIssue(eng.Evaluate(groundOne, ValidatorSection8, JurisdictionEngland), CodeS8NoticePeriodShort) == nil {
		t.Error("two weeks' notice should be short for Ground 1")
	}
}

func TestSection21NoticePeriodRule(t *testing.T) {
	eng := NewEngine(Default())

	snap := func(service, expiry time.Time) facts.Snapshot {
		s := facts.NewStore()
		s.Set(facts.KeyServiceDate, facts.Date(service), facts.ProvenanceUserConfirmed)
		s.Set(facts.KeyExpiryDate, facts.Date(expiry), facts.ProvenanceUserConfirmed)
		return s.Snapshot()
	}

	// Served 22 Dec 2025, expiring 14 Jul 2026: well over two months.
	valid := snap(day(2025, time.December, 22), day(2026, time.July, 14))
	issues := eng.Evaluate(valid, ValidatorSection21, JurisdictionEngland)
	if findIssue(issues, CodeS21NoticeTooShort) != nil || findIssue(issues, CodeS21ExpiryBeforeService) != nil {
		t.Errorf("valid notice period flagged: %v", issues)
	}

	short := snap(day(2025, time.December, 22), day(2026, time.January, 31))
	if findIssue(eng.Evaluate(short, ValidatorSection21, JurisdictionEngland), CodeS21NoticeTooShort) == nil {
		t.Error("six weeks' notice not flagged")
	}

	inverted := snap(day(2025, time.December, 22), day(2025, time.December, 1))
	if findIssue(eng.Evaluate(inverted, ValidatorSection21, JurisdictionEngland), CodeS21ExpiryBeforeService) == nil {
		t.Error("expiry before service not flagged")
	}
}

func TestSection21DepositRules(t *testing.T) {
	eng := NewEngine(Default())

	snap := func(set func(s *facts.Store)) facts.Snapshot {
		s := facts.NewStore()
		set(s)
		return s.Snapshot()
	}

	unprotected := snap(func(s *facts.Store) {
		s.Set(facts.KeyDepositTaken, facts.Bool(true), facts.ProvenanceUserConfirmed)
		s.Set(facts.KeyDepositProtected, facts.Bool(false), facts.ProvenanceUserConfirmed)
	})
	if findIssue(eng.Evaluate(unprotected, ValidatorSection21, JurisdictionEngland), CodeS21DepositUnprotected) == nil {
		t.Error("unprotected deposit not flagged")
	}

	noDeposit := snap(func(s *facts.Store) {
		s.Set(facts.KeyDepositTaken, facts.Bool(false), facts.ProvenanceUserConfirmed)
		s.Set(facts.KeyDepositProtected, facts.Bool(false), facts.ProvenanceUserConfirmed)
	})
	if findIssue(eng.Evaluate(noDeposit, ValidatorSection21, JurisdictionEngland), CodeS21DepositUnprotected) != nil {
		t.Error("no deposit taken but protection flagged")
	}

	late := snap(func(s *facts.Store) {
		s.Set(facts.KeyDepositTaken, facts.Bool(true), facts.ProvenanceUserConfirmed)
		s.Set(facts.KeyTenancyStartDate, facts.Date(day(2025, time.January, 1)), facts.ProvenanceUserConfirmed)
		s.Set(facts.KeyDepositProtectionDate, facts.Date(day(2025, time.March, 1)), facts.ProvenanceUserConfirmed)
	})
	if findIssue(eng.Evaluate(late, ValidatorSection21, JurisdictionEngland), CodeS21DepositProtectedLate) == nil {
		t.Error("deposit protected after 30 days not flagged")
	}

	inTime := snap(func(s *facts.Store) {
		s.Set(facts.KeyDepositTaken, facts.Bool(true), facts.ProvenanceUserConfirmed)
		s.Set(facts.KeyTenancyStartDate, facts.Date(day(2025, time.January, 1)), facts.ProvenanceUserConfirmed)
		s.Set(facts.KeyDepositProtectionDate, facts.Date(day(2025, time.January, 20)), facts.ProvenanceUserConfirmed)
	})
	if findIssue(eng.Evaluate(inTime, ValidatorSection21, JurisdictionEngland), CodeS21DepositProtectedLate) != nil {
		t.Error("timely protection flagged as late")
	}
}

func TestSection21FourMonthBar(t *testing.T) {
	eng := NewEngine(Default())

	s := facts.NewStore()
	s.Set(facts.KeyServiceDate, facts.Date(day(2025, time.March, 1)), facts.ProvenanceUserConfirmed)
	s.Set(facts.KeyTenancyStartDate, facts.Date(day(2025, time.January, 1)), facts.ProvenanceUserConfirmed)

	if findIssue(eng.Evaluate(s.Snapshot(), ValidatorSection21, JurisdictionEngland), CodeS21ServedTooEarly) == nil {
		t.Error("service two months into the tenancy not flagged")
	}

	s.Set(facts.KeyServiceDate, facts.Date(day(2025, time.June, 1)), facts.ProvenanceUserConfirmed)
	if findIssue(eng.Evaluate(s.Snapshot(), ValidatorSection21, JurisdictionEngland), CodeS21ServedTooEarly) != nil {
		t.Error("service five months in flagged as too early")
	}
}

func TestWalesRules(t *testing.T) {
	eng := NewEngine(Default())

	s := facts.NewStore()
	s.Set(facts.KeyLandlordRegistered, facts.Bool(false), facts.ProvenanceUserConfirmed)
	s.Set(facts.KeyServiceDate, facts.Date(day(2025, time.March, 1)), facts.ProvenanceUserConfirmed)
	s.Set(facts.KeyExpiryDate, facts.Date(day(2025, time.June, 1)), facts.ProvenanceUserConfirmed)
	snap := s.Snapshot()

	issues := eng.Evaluate(snap, ValidatorSection21, JurisdictionWales)
	if findIssue(issues, CodeWalesNotRegistered) == nil {
		t.Error("unregistered landlord not flagged in Wales")
	}
	if findIssue(issues, CodeWalesNoticeTooShort) == nil {
		t.Error("three months' notice not flagged against the six-month Welsh minimum")
	}

	// The English two-month rule must not fire under the Welsh regime.
	if findIssue(issues, CodeS21NoticeTooShort) != nil {
		t.Error("English section 21 rule selected for Wales")
	}
}

func TestMoneyClaimRules(t *testing.T) {
	eng := NewEngine(Default())

	paidUp := facts.NewStore()
	paidUp.Set(facts.KeyArrearsItems, facts.LineItems([]facts.ClaimLineItem{
		arrearsItem("Jan 2025", 100000, 100000),
	}), facts.ProvenanceUserConfirmed)
	if findIssue(eng.Evaluate(paidUp.Snapshot(), ValidatorMoneyClaim, JurisdictionEngland), CodeClaimTotalNotPositive) == nil {
		t.Error("zero-balance claim not flagged")
	}

	stale := facts.NewStore()
	stale.Set(facts.KeyArrearsItems, facts.LineItems([]facts.ClaimLineItem{
		arrearsItem("Jan 2017", 100000, 0),
		arrearsItem("Feb 2025", 100000, 0),
	}), facts.ProvenanceUserConfirmed)
	if findIssue(eng.Evaluate(stale.Snapshot(), ValidatorMoneyClaim, JurisdictionEngland), CodeClaimPartlyTimeBarred) == nil {
		t.Error("eight-year-old arrears not flagged against limitation")
	}

	interest := facts.NewStore()
	interest.Set(facts.KeyArrearsItems, facts.LineItems([]facts.ClaimLineItem{
		arrearsItem("Feb 2025", 100000, 0),
	}), facts.ProvenanceUserConfirmed)
	interest.Set(facts.KeyInterestClaimed, facts.Bool(true), facts.ProvenanceUserConfirmed)
	issues := eng.Evaluate(interest.Snapshot(), ValidatorMoneyClaim, JurisdictionEngland)
	issue := findIssue(issues, CodeInterestBasisMissing)
	if issue == nil {
		t.Fatal("interest claimed without a basis not flagged")
	}
	if issue.Severity != SeveritySuggestion {
		t.Errorf("severity = %q, want suggestion", issue.Severity)
	}
}
