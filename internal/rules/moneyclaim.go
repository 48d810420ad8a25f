package rules

import (
	"fmt"

	"github.com/woodhall335/noticecheck/internal/datemath"
	"github.com/woodhall335/noticecheck/internal/facts"
)

// Money claim issue codes.
const (
	CodeClaimTotalNotPositive = "claim_total_not_positive"
	CodeClaimPartlyTimeBarred = "claim_partly_time_barred"
	CodeInterestBasisMissing  = "interest_basis_missing"
)

const sectionClaim = "money_claim"

func moneyClaimRules() []Rule {
	both := []Jurisdiction{JurisdictionEngland, JurisdictionWales}
	mc := []ValidatorKey{ValidatorMoneyClaim}

	return []Rule{
		{
			ID:            "mc_positive_total",
			Jurisdictions: both,
			ValidatorKeys: mc,
			Requires:      []facts.FactKey{facts.KeyArrearsItems},
			Severity:      SeverityBlocker,
			Section:       sectionClaim,
			Evaluate: func(snap facts.Snapshot) *Issue {
				var total facts.Pence
				items, _ := snap.LineItems(facts.KeyArrearsItems)
				for _, li := range items {
					total += li.Balance()
				}
				if extra, ok := snap.LineItems(facts.KeyClaimItems); ok {
					for _, li := range extra {
						total += li.Balance()
					}
				}
				if total > 0 {
					return nil
				}
				return &Issue{
					Code:           CodeClaimTotalNotPositive,
					Message:        fmt.Sprintf("The claim schedules sum to %s; a money claim needs a positive amount outstanding.", total),
					Severity:       SeverityBlocker,
					Section:        sectionClaim,
					RelatedFactKey: facts.KeyArrearsItems,
				}
			},
		},
		{
			ID:            "mc_limitation_window",
			Jurisdictions: both,
			ValidatorKeys: mc,
			Requires:      []facts.FactKey{facts.KeyArrearsItems},
			Severity:      SeverityWarning,
			Section:       sectionClaim,
			Evaluate: func(snap facts.Snapshot) *Issue {
				items, _ := snap.LineItems(facts.KeyArrearsItems)
				oldest, ok := OldestItemDate(items)
				if !ok {
					return nil
				}

				// Compare the oldest period against the newest one on
				// the schedule; a spread beyond the limitation window
				// means the early periods are at risk whenever the
				// claim is issued.
				var newest = oldest
				for _, li := range items {
					if t, ok := datemath.ParseUKDate(li.Period); ok && t.After(newest) {
						newest = t
					}
				}
				if !LimitationDate(oldest).After(newest) {
					return &Issue{
						Code:           CodeClaimPartlyTimeBarred,
						Message:        fmt.Sprintf("The oldest arrears period (%s) falls outside the six-year limitation window measured from the most recent period; those sums may be irrecoverable.", datemath.FormatUKDate(oldest)),
						Severity:       SeverityWarning,
						Section:        sectionClaim,
						RelatedFactKey: facts.KeyArrearsItems,
						EvidenceHint:   "Check when each period of arrears fell due against the issue date of the claim.",
					}
				}
				return nil
			},
		},
		{
			ID:            "mc_interest_basis",
			Jurisdictions: both,
			ValidatorKeys: mc,
			Requires:      []facts.FactKey{facts.KeyInterestClaimed},
			Severity:      SeveritySuggestion,
			Section:       sectionClaim,
			Evaluate: func(snap facts.Snapshot) *Issue {
				claimed, _ := snap.Bool(facts.KeyInterestClaimed)
				if !claimed {
					return nil
				}
				if rate, ok := snap.Text(facts.KeyInterestRate); ok && rate != "" {
					return nil
				}
				return &Issue{
					Code:           CodeInterestBasisMissing,
					Message:        "Interest is claimed but no rate or statutory basis is stated; claims usually cite section 69 of the County Courts Act 1984 at 8%.",
					Severity:       SeveritySuggestion,
					Section:        sectionClaim,
					RelatedFactKey: facts.KeyInterestRate,
				}
			},
		},
	}
}
