package rules

import (
	"fmt"

	"github.com/woodhall335/noticecheck/internal/datemath"
	"github.com/woodhall335/noticecheck/internal/facts"
)

// Section 8 issue codes.
const (
	CodeS8NoValidGrounds       = "s8_no_valid_grounds"
	CodeS8WrongForm            = "s8_wrong_form"
	CodeS8Ground8BelowThresh   = "s8_ground8_threshold_not_met"
	CodeS8NoticePeriodShort    = "s8_notice_period_short"
	CodeS8ProceedingsBeforeSvc = "s8_proceedings_before_service"
	CodeArrearsTotalMismatch   = "arrears_total_mismatch"
)

const sectionNoticeS8 = "section_8_notice"

func section8Rules() []Rule {
	england := []Jurisdiction{JurisdictionEngland}
	s8 := []ValidatorKey{ValidatorSection8}

	return []Rule{
		{
			ID:            "s8_grounds_stated",
			Jurisdictions: england,
			ValidatorKeys: s8,
			Requires:      []facts.FactKey{facts.KeyGrounds},
			Severity:      SeverityBlocker,
			Section:       sectionNoticeS8,
			Evaluate: func(snap facts.Snapshot) *Issue {
				text, _ := snap.Text(facts.KeyGrounds)
				if len(ParseGrounds(text)) == 0 {
					return &Issue{
						Code:           CodeS8NoValidGrounds,
						Message:        "The notice does not state any recognisable Schedule 2 ground for possession.",
						Severity:       SeverityBlocker,
						Section:        sectionNoticeS8,
						RelatedFactKey: facts.KeyGrounds,
						EvidenceHint:   "Section 3 of Form 3 must list the grounds relied on.",
					}
				}
				return nil
			},
		},
		{
			ID:            "s8_form_3_used",
			Jurisdictions: england,
			ValidatorKeys: s8,
			Requires:      []facts.FactKey{facts.KeyNoticeForm},
			Severity:      SeverityWarning,
			Section:       sectionNoticeS8,
			Evaluate: func(snap facts.Snapshot) *Issue {
				form, _ := snap.Option(facts.KeyNoticeForm)
				if form != "form_3" {
					return &Issue{
						Code:           CodeS8WrongForm,
						Message:        "A Section 8 notice in England should be served on Form 3; a different form risks the notice being held invalid.",
						Severity:       SeverityWarning,
						Section:        sectionNoticeS8,
						RelatedFactKey: facts.KeyNoticeForm,
					}
				}
				return nil
			},
		},
		{
			ID:            "s8_ground8_arrears_threshold",
			Jurisdictions: england,
			ValidatorKeys: s8,
			Requires: []facts.FactKey{
				facts.KeyGrounds, facts.KeyRentAmount, facts.KeyRentFrequency, facts.KeyArrearsItems,
			},
			Severity: SeverityBlocker,
			Section:  "rent_arrears",
			Evaluate: func(snap facts.Snapshot) *Issue {
				text, _ := snap.Text(facts.KeyGrounds)
				grounds := ParseGrounds(text)
				if !containsGround(grounds, 8) {
					return nil
				}

				rent, _ := snap.Currency(facts.KeyRentAmount)
				freq, _ := snap.Option(facts.KeyRentFrequency)
				items, _ := snap.LineItems(facts.KeyArrearsItems)

				var arrears facts.Pence
				for _, li := range items {
					arrears += li.Balance()
				}

				threshold, ok := ground8Threshold(rent, freq)
				if !ok {
					return &Issue{
						Code:           CodeS8Ground8BelowThresh,
						Message:        fmt.Sprintf("Cannot assess the Ground 8 arrears threshold for rent payable %s.", freq),
						Severity:       SeverityWarning,
						Section:        "rent_arrears",
						RelatedFactKey: facts.KeyRentFrequency,
					}
				}
				if arrears >= threshold {
					return nil
				}

				severity := SeverityBlocker
				msg := fmt.Sprintf("Ground 8 requires arrears of at least %s; the schedule shows %s.", threshold, arrears)
				if len(grounds) > 1 {
					// Discretionary grounds remain available, so the
					// notice is not doomed, only weakened.
					severity = SeverityWarning
					msg += " The notice can still proceed on the other grounds stated."
				}
				return &Issue{
					Code:           CodeS8Ground8BelowThresh,
					Message:        msg,
					Severity:       severity,
					Section:        "rent_arrears",
					RelatedFactKey: facts.KeyArrearsItems,
					EvidenceHint:   "An up-to-date rent schedule showing amounts due and paid per period.",
				}
			},
		},
		{
			ID:            "s8_notice_period",
			Jurisdictions: england,
			ValidatorKeys: s8,
			Requires: []facts.FactKey{
				facts.KeyServiceDate, facts.KeyEarliestProceedings, facts.KeyGrounds,
			},
			Severity: SeverityBlocker,
			Section:  sectionNoticeS8,
			Evaluate: func(snap facts.Snapshot) *Issue {
				service, _ := snap.Date(facts.KeyServiceDate)
				earliest, _ := snap.Date(facts.KeyEarliestProceedings)
				text, _ := snap.Text(facts.KeyGrounds)

				if earliest.Before(service) {
					return &Issue{
						Code:           CodeS8ProceedingsBeforeSvc,
						Message:        "The stated earliest proceedings date is before the notice was served.",
						Severity:       SeverityBlocker,
						Section:        sectionNoticeS8,
						RelatedFactKey: facts.KeyEarliestProceedings,
					}
				}

				minimum := MinimumSection8Notice(ParseGrounds(text)).After(service)
				if earliest.Before(minimum) {
					return &Issue{
						Code:           CodeS8NoticePeriodShort,
						Message:        fmt.Sprintf("For the grounds stated, proceedings cannot begin before %s; the notice states %s.", datemath.FormatUKDate(minimum), datemath.FormatUKDate(earliest)),
						Severity:       SeverityBlocker,
						Section:        sectionNoticeS8,
						RelatedFactKey: facts.KeyEarliestProceedings,
						EvidenceHint:   "Section 5 of Form 3 (earliest date proceedings will begin).",
					}
				}
				return nil
			},
		},
		{
			ID:            "s8_arrears_schedule_consistent",
			Jurisdictions: []Jurisdiction{JurisdictionEngland, JurisdictionWales},
			ValidatorKeys: []ValidatorKey{ValidatorSection8, ValidatorMoneyClaim},
			Requires:      []facts.FactKey{facts.KeyArrearsItems, facts.KeyArrearsTotal},
			Severity:      SeverityWarning,
			Section:       "rent_arrears",
			Evaluate: func(snap facts.Snapshot) *Issue {
				items, _ := snap.LineItems(facts.KeyArrearsItems)
				stated, _ := snap.Currency(facts.KeyArrearsTotal)

				var sum facts.Pence
				for _, li := range items {
					sum += li.Balance()
				}
				if sum == stated {
					return nil
				}
				return &Issue{
					Code:           CodeArrearsTotalMismatch,
					Message:        fmt.Sprintf("The arrears schedule sums to %s but the stated total is %s.", sum, stated),
					Severity:       SeverityWarning,
					Section:        "rent_arrears",
					RelatedFactKey: facts.KeyArrearsTotal,
					EvidenceHint:   "Reconcile the rent schedule against the figure quoted in the notice.",
				}
			},
		},
	}
}

func containsGround(grounds []int, g int) bool {
	for _, x := range grounds {
		if x == g {
			return true
		}
	}
	return false
}

// ground8Threshold returns the arrears level at which Ground 8 is made
// out for the given rent and payment frequency: two months' rent when
// payable monthly (or longer periods, pro-rated), eight weeks' rent
// when payable weekly or fortnightly.
func ground8Threshold(rent facts.Pence, frequency string) (facts.Pence, bool) {
	switch frequency {
	case facts.FrequencyWeekly:
		return rent * 8, true
	case facts.FrequencyFortnightly:
		return rent * 4, true
	case facts.FrequencyMonthly:
		return rent * 2, true
	case facts.FrequencyQuarterly:
		// Two months of a quarterly rent.
		return rent * 2 / 3, true
	case facts.FrequencyYearly:
		return rent / 6, true
	default:
		return 0, false
	}
}
