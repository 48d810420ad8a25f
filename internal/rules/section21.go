package rules

import (
	"fmt"

	"github.com/woodhall335/noticecheck/internal/datemath"
	"github.com/woodhall335/noticecheck/internal/facts"
)

// Section 21 issue codes.
const (
	CodeS21WrongForm            = "s21_wrong_form"
	CodeS21NoticeTooShort       = "s21_notice_too_short"
	CodeS21ExpiryBeforeService  = "s21_expiry_before_service"
	CodeS21ServedTooEarly       = "s21_served_too_early"
	CodeS21ExpiresBeforeTermEnd = "s21_expires_before_term_end"
	CodeS21DepositUnprotected   = "s21_deposit_unprotected"
	CodeS21DepositProtectedLate = "s21_deposit_protected_late"
	CodeS21PrescribedInfo       = "s21_prescribed_info_not_given"
	CodeS21EPCNotProvided       = "s21_epc_not_provided"
	CodeS21GasSafetyNotProvided = "s21_gas_safety_not_provided"
	CodeS21HowToRentNotProvided = "s21_how_to_rent_not_provided"
	CodeS21PropertyUnlicensed   = "s21_property_unlicensed"
)

const sectionNoticeS21 = "section_21_notice"
const sectionCompliance = "landlord_compliance"
const sectionDeposit = "deposit_protection"

func section21Rules() []Rule {
	england := []Jurisdiction{JurisdictionEngland}
	s21 := []ValidatorKey{ValidatorSection21}

	return []Rule{
		{
			ID:            "s21_form_6a_used",
			Jurisdictions: england,
			ValidatorKeys: s21,
			Requires:      []facts.FactKey{facts.KeyNoticeForm},
			Severity:      SeverityWarning,
			Section:       sectionNoticeS21,
			Evaluate: func(snap facts.Snapshot) *Issue {
				form, _ := snap.Option(facts.KeyNoticeForm)
				if form != "form_6a" {
					return &Issue{
						Code:           CodeS21WrongForm,
						Message:        "A Section 21 notice in England must be given on Form 6A.",
						Severity:       SeverityWarning,
						Section:        sectionNoticeS21,
						RelatedFactKey: facts.KeyNoticeForm,
					}
				}
				return nil
			},
		},
		{
			ID:            "s21_two_months_notice",
			Jurisdictions: england,
			ValidatorKeys: s21,
			Requires:      []facts.FactKey{facts.KeyServiceDate, facts.KeyExpiryDate},
			Severity:      SeverityBlocker,
			Section:       sectionNoticeS21,
			Evaluate: func(snap facts.Snapshot) *Issue {
				service, _ := snap.Date(facts.KeyServiceDate)
				expiry, _ := snap.Date(facts.KeyExpiryDate)

				if expiry.Before(service) {
					return &Issue{
						Code:           CodeS21ExpiryBeforeService,
						Message:        "The notice expiry date is before the date it was served.",
						Severity:       SeverityBlocker,
						Section:        sectionNoticeS21,
						RelatedFactKey: facts.KeyExpiryDate,
					}
				}

				minimum := datemath.AddCalendarMonths(service, section21NoticeMonths)
				if expiry.Before(minimum) {
					return &Issue{
						Code:           CodeS21NoticeTooShort,
						Message:        fmt.Sprintf("Section 21 requires at least two months' notice: served %s, so the earliest valid expiry is %s.", datemath.FormatUKDate(service), datemath.FormatUKDate(minimum)),
						Severity:       SeverityBlocker,
						Section:        sectionNoticeS21,
						RelatedFactKey: facts.KeyExpiryDate,
						EvidenceHint:   "The expiry date stated on Form 6A.",
					}
				}
				return nil
			},
		},
		{
			ID:            "s21_not_in_first_four_months",
			Jurisdictions: england,
			ValidatorKeys: s21,
			Requires:      []facts.FactKey{facts.KeyServiceDate, facts.KeyTenancyStartDate},
			Severity:      SeverityBlocker,
			Section:       sectionNoticeS21,
			Evaluate: func(snap facts.Snapshot) *Issue {
				service, _ := snap.Date(facts.KeyServiceDate)
				start, _ := snap.Date(facts.KeyTenancyStartDate)

				bar := datemath.AddCalendarMonths(start, section21EarlyServiceBarMonths)
				if service.Before(bar) {
					return &Issue{
						Code:           CodeS21ServedTooEarly,
						Message:        fmt.Sprintf("A Section 21 notice cannot be served in the first four months of the tenancy; the earliest valid service date is %s.", datemath.FormatUKDate(bar)),
						Severity:       SeverityBlocker,
						Section:        sectionNoticeS21,
						RelatedFactKey: facts.KeyServiceDate,
					}
				}
				return nil
			},
		},
		{
			ID:            "s21_fixed_term_respected",
			Jurisdictions: england,
			ValidatorKeys: s21,
			Requires:      []facts.FactKey{facts.KeyExpiryDate, facts.KeyFixedTermEndDate},
			Severity:      SeverityWarning,
			Section:       sectionNoticeS21,
			Evaluate: func(snap facts.Snapshot) *Issue {
				expiry, _ := snap.Date(facts.KeyExpiryDate)
				termEnd, _ := snap.Date(facts.KeyFixedTermEndDate)

				if expiry.Before(termEnd) {
					return &Issue{
						Code:           CodeS21ExpiresBeforeTermEnd,
						Message:        fmt.Sprintf("The notice expires %s, before the fixed term ends on %s; possession cannot be ordered before the term end.", datemath.FormatUKDate(expiry), datemath.FormatUKDate(termEnd)),
						Severity:       SeverityWarning,
						Section:        sectionNoticeS21,
						RelatedFactKey: facts.KeyExpiryDate,
					}
				}
				return nil
			},
		},
		{
			ID:            "s21_deposit_protected",
			Jurisdictions: england,
			ValidatorKeys: s21,
			Requires:      []facts.FactKey{facts.KeyDepositTaken, facts.KeyDepositProtected},
			Severity:      SeverityBlocker,
			Section:       sectionDeposit,
			Evaluate: func(snap facts.Snapshot) *Issue {
				taken, _ := snap.Bool(facts.KeyDepositTaken)
				protected, _ := snap.Bool(facts.KeyDepositProtected)
				if taken && !protected {
					return &Issue{
						Code:           CodeS21DepositUnprotected,
						Message:        "A deposit was taken but is not held in a government-approved protection scheme; a Section 21 notice cannot be validly served until it is protected or returned.",
						Severity:       SeverityBlocker,
						Section:        sectionDeposit,
						RelatedFactKey: facts.KeyDepositProtected,
						EvidenceHint:   "A deposit protection certificate from TDS, DPS or mydeposits.",
					}
				}
				return nil
			},
		},
		{
			ID:            "s21_deposit_protected_in_time",
			Jurisdictions: england,
			ValidatorKeys: s21,
			Requires: []facts.FactKey{
				facts.KeyDepositTaken, facts.KeyTenancyStartDate, facts.KeyDepositProtectionDate,
			},
			Severity: SeverityBlocker,
			Section:  sectionDeposit,
			Evaluate: func(snap facts.Snapshot) *Issue {
				taken, _ := snap.Bool(facts.KeyDepositTaken)
				if !taken {
					return nil
				}
				start, _ := snap.Date(facts.KeyTenancyStartDate)
				protected, _ := snap.Date(facts.KeyDepositProtectionDate)

				deadline := datemath.AddDays(start, depositProtectionDays)
				if protected.After(deadline) {
					return &Issue{
						Code:           CodeS21DepositProtectedLate,
						Message:        fmt.Sprintf("The deposit was protected on %s, after the 30-day deadline of %s; the deposit must be returned before a Section 21 notice can be served.", datemath.FormatUKDate(protected), datemath.FormatUKDate(deadline)),
						Severity:       SeverityBlocker,
						Section:        sectionDeposit,
						RelatedFactKey: facts.KeyDepositProtectionDate,
					}
				}
				return nil
			},
		},
		{
			ID:            "s21_prescribed_information",
			Jurisdictions: england,
			ValidatorKeys: s21,
			Requires:      []facts.FactKey{facts.KeyDepositTaken, facts.KeyPrescribedInfoGiven},
			Severity:      SeverityBlocker,
			Section:       sectionDeposit,
			Evaluate: func(snap facts.Snapshot) *Issue {
				taken, _ := snap.Bool(facts.KeyDepositTaken)
				given, _ := snap.Bool(facts.KeyPrescribedInfoGiven)
				if taken && !given {
					return &Issue{
						Code:           CodeS21PrescribedInfo,
						Message:        "The prescribed deposit information has not been given to the tenant.",
						Severity:       SeverityBlocker,
						Section:        sectionDeposit,
						RelatedFactKey: facts.KeyPrescribedInfoGiven,
						EvidenceHint:   "Proof of service of the prescribed information within 30 days of receiving the deposit.",
					}
				}
				return nil
			},
		},
		{
			ID:            "s21_epc_given",
			Jurisdictions: england,
			ValidatorKeys: s21,
			Requires:      []facts.FactKey{facts.KeyEPCProvided},
			Severity:      SeverityBlocker,
			Section:       sectionCompliance,
			Evaluate:      requireBool(facts.KeyEPCProvided, CodeS21EPCNotProvided, "An Energy Performance Certificate has not been given to the tenant.", "A copy of the EPC and proof it was provided."),
		},
		{
			ID:            "s21_gas_safety_given",
			Jurisdictions: england,
			ValidatorKeys: s21,
			Requires:      []facts.FactKey{facts.KeyGasSafetyProvided},
			Severity:      SeverityBlocker,
			Section:       sectionCompliance,
			Evaluate:      requireBool(facts.KeyGasSafetyProvided, CodeS21GasSafetyNotProvided, "The current gas safety certificate has not been given to the tenant.", "The CP12 gas safety record and proof of service."),
		},
		{
			ID:            "s21_how_to_rent_given",
			Jurisdictions: england,
			ValidatorKeys: s21,
			Requires:      []facts.FactKey{facts.KeyHowToRentProvided},
			Severity:      SeverityBlocker,
			Section:       sectionCompliance,
			Evaluate:      requireBool(facts.KeyHowToRentProvided, CodeS21HowToRentNotProvided, "The 'How to Rent' guide has not been given to the tenant.", "Proof the current version of the guide was provided at the start of the tenancy."),
		},
		{
			ID:            "s21_property_licensed",
			Jurisdictions: england,
			ValidatorKeys: s21,
			Requires:      []facts.FactKey{facts.KeyLicenceRequired, facts.KeyLicenceHeld},
			Severity:      SeverityBlocker,
			Section:       sectionCompliance,
			Evaluate: func(snap facts.Snapshot) *Issue {
				required, _ := snap.Bool(facts.KeyLicenceRequired)
				held, _ := snap.Bool(facts.KeyLicenceHeld)
				if required && !held {
					return &Issue{
						Code:           CodeS21PropertyUnlicensed,
						Message:        "The property requires a licence that is not held; a Section 21 notice is invalid while the property is unlicensed.",
						Severity:       SeverityBlocker,
						Section:        sectionCompliance,
						RelatedFactKey: facts.KeyLicenceHeld,
					}
				}
				return nil
			},
		},
	}
}

// requireBool builds a predicate that blocks when the fact is false.
func requireBool(key facts.FactKey, code, message, hint string) func(facts.Snapshot) *Issue {
	return func(snap facts.Snapshot) *Issue {
		ok, _ := snap.Bool(key)
		if ok {
			return nil
		}
		return &Issue{
			Code:           code,
			Message:        message,
			Severity:       SeverityBlocker,
			Section:        sectionCompliance,
			RelatedFactKey: key,
			EvidenceHint:   hint,
		}
	}
}
