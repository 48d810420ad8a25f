package rules

import (
	"fmt"

	"github.com/woodhall335/noticecheck/internal/datemath"
	"github.com/woodhall335/noticecheck/internal/facts"
)

// Wales issue codes.
const (
	CodeWalesNotRegistered    = "wales_landlord_not_registered"
	CodeWalesNoticeTooShort   = "wales_notice_too_short"
	CodeWalesWrongForm        = "wales_wrong_form"
	CodeWalesArrearsTooShort  = "wales_arrears_notice_too_short"
)

const sectionWales = "renting_homes_wales"

// walesRules carries the Renting Homes (Wales) Act checks. The same
// validator keys are reused: jurisdiction routing selects these rules
// instead of the Housing Act ones.
func walesRules() []Rule {
	wales := []Jurisdiction{JurisdictionWales}

	return []Rule{
		{
			ID:            "wal_landlord_registered",
			Jurisdictions: wales,
			ValidatorKeys: []ValidatorKey{ValidatorSection8, ValidatorSection21},
			Requires:      []facts.FactKey{facts.KeyLandlordRegistered},
			Severity:      SeverityBlocker,
			Section:       sectionWales,
			Evaluate: func(snap facts.Snapshot) *Issue {
				registered, _ := snap.Bool(facts.KeyLandlordRegistered)
				if !registered {
					return &Issue{
						Code:           CodeWalesNotRegistered,
						Message:        "The landlord is not registered with Rent Smart Wales; a possession notice cannot validly be served.",
						Severity:       SeverityBlocker,
						Section:        sectionWales,
						RelatedFactKey: facts.KeyLandlordRegistered,
						EvidenceHint:   "Rent Smart Wales registration or licence number.",
					}
				}
				return nil
			},
		},
		{
			ID:            "wal_no_fault_notice_period",
			Jurisdictions: wales,
			ValidatorKeys: []ValidatorKey{ValidatorSection21},
			Requires:      []facts.FactKey{facts.KeyServiceDate, facts.KeyExpiryDate},
			Severity:      SeverityBlocker,
			Section:       sectionWales,
			Evaluate: func(snap facts.Snapshot) *Issue {
				service, _ := snap.Date(facts.KeyServiceDate)
				expiry, _ := snap.Date(facts.KeyExpiryDate)

				minimum := datemath.AddCalendarMonths(service, walesNoFaultNoticeMonths)
				if expiry.Before(minimum) {
					return &Issue{
						Code:           CodeWalesNoticeTooShort,
						Message:        fmt.Sprintf("A no-fault notice in Wales requires six months' notice: served %s, so the earliest valid end date is %s.", datemath.FormatUKDate(service), datemath.FormatUKDate(minimum)),
						Severity:       SeverityBlocker,
						Section:        sectionWales,
						RelatedFactKey: facts.KeyExpiryDate,
					}
				}
				return nil
			},
		},
		{
			ID:            "wal_notice_form",
			Jurisdictions: wales,
			ValidatorKeys: []ValidatorKey{ValidatorSection8, ValidatorSection21},
			Requires:      []facts.FactKey{facts.KeyNoticeForm},
			Severity:      SeverityWarning,
			Section:       sectionWales,
			Evaluate: func(snap facts.Snapshot) *Issue {
				form, _ := snap.Option(facts.KeyNoticeForm)
				if form == "rhw16" || form == "rhw17" {
					return nil
				}
				return &Issue{
					Code:           CodeWalesWrongForm,
					Message:        "Notices under the Renting Homes (Wales) Act should use the prescribed RHW forms.",
					Severity:       SeverityWarning,
					Section:        sectionWales,
					RelatedFactKey: facts.KeyNoticeForm,
				}
			},
		},
		{
			ID:            "wal_arrears_notice_period",
			Jurisdictions: wales,
			ValidatorKeys: []ValidatorKey{ValidatorSection8},
			Requires:      []facts.FactKey{facts.KeyServiceDate, facts.KeyEarliestProceedings},
			Severity:      SeverityBlocker,
			Section:       sectionWales,
			Evaluate: func(snap facts.Snapshot) *Issue {
				service, _ := snap.Date(facts.KeyServiceDate)
				earliest, _ := snap.Date(facts.KeyEarliestProceedings)

				minimum := datemath.AddDays(service, 14)
				if earliest.Before(minimum) {
					return &Issue{
						Code:           CodeWalesArrearsTooShort,
						Message:        fmt.Sprintf("A serious rent arrears notice in Wales requires fourteen days' notice; the earliest valid proceedings date is %s.", datemath.FormatUKDate(minimum)),
						Severity:       SeverityBlocker,
						Section:        sectionWales,
						RelatedFactKey: facts.KeyEarliestProceedings,
					}
				}
				return nil
			},
		},
	}
}
