package report

import (
	"github.com/woodhall335/noticecheck/internal/datemath"
	"github.com/woodhall335/noticecheck/internal/facts"
	"github.com/woodhall335/noticecheck/internal/rules"
)

// Deadline codes.
const (
	DeadlineEarliestProceedings = "earliest_proceedings"
	DeadlineLatestProceedings   = "latest_proceedings"
	DeadlineNoticeExpiry        = "notice_expiry"
	DeadlineClaimBy             = "claim_by"
	DeadlineDepositProtection   = "deposit_protection"
	DeadlineLimitation          = "limitation"
)

// deadlines derives the statutory calendar from whichever facts are
// present. Derivation is best-effort: an absent input simply omits the
// deadline, it never errors.
func deadlines(snap facts.Snapshot, vk rules.ValidatorKey, j rules.Jurisdiction) []Deadline {
	var out []Deadline

	switch vk {
	case rules.ValidatorSection8:
		service, ok := snap.Date(facts.KeyServiceDate)
		if !ok {
			break
		}
		if text, ok := snap.Text(facts.KeyGrounds); ok {
			earliest := rules.MinimumSection8Notice(rules.ParseGrounds(text)).After(service)
			out = append(out, Deadline{
				Code:  DeadlineEarliestProceedings,
				Label: "Earliest date court proceedings may begin",
				Date:  earliest,
			})
		}
		out = append(out, Deadline{
			Code:  DeadlineLatestProceedings,
			Label: "Latest date court proceedings may begin",
			Date:  rules.LatestSection8Proceedings(service),
		})

	case rules.ValidatorSection21:
		if service, ok := snap.Date(facts.KeyServiceDate); ok {
			months := 2
			if j == rules.JurisdictionWales {
				months = 6
			}
			out = append(out, Deadline{
				Code:  DeadlineNoticeExpiry,
				Label: "Earliest date the notice may expire",
				Date:  datemath.AddCalendarMonths(service, months),
			})
			out = append(out, Deadline{
				Code:  DeadlineClaimBy,
				Label: "Possession claim must be issued by",
				Date:  datemath.AddCalendarMonths(service, 6),
			})
		}
		if start, ok := snap.Date(facts.KeyTenancyStartDate); ok {
			out = append(out, Deadline{
				Code:  DeadlineDepositProtection,
				Label: "Deposit protection deadline",
				Date:  datemath.AddDays(start, 30),
			})
		}

	case rules.ValidatorMoneyClaim:
		if items, ok := snap.LineItems(facts.KeyArrearsItems); ok {
			if oldest, found := rules.OldestItemDate(items); found {
				out = append(out, Deadline{
					Code:  DeadlineLimitation,
					Label: "Limitation expires for the oldest arrears period",
					Date:  rules.LimitationDate(oldest),
				})
			}
		}
	}

	return out
}
