// Package claims aggregates claim line items into category totals. The
// aggregator only reads snapshots; it never mutates a line item.
package claims

import "github.com/woodhall335/noticecheck/internal/facts"

// NegativePolicy decides how a negative per-item balance (a tenant
// overpayment) affects totals. The statutes are silent on this, so it
// is an explicit configuration choice rather than an assumption.
type NegativePolicy string

const (
	// PolicyOffset lets an overpaid period reduce the category total.
	PolicyOffset NegativePolicy = "offset"
	// PolicyFloor counts each item at no less than zero.
	PolicyFloor NegativePolicy = "floor"
)

// Valid reports whether p is a recognized policy.
func (p NegativePolicy) Valid() bool {
	return p == PolicyOffset || p == PolicyFloor
}

// Totals is the aggregated claim breakdown.
type Totals struct {
	Arrears      facts.Pence `json:"arrears"`
	Damages      facts.Pence `json:"damages"`
	OtherCharges facts.Pence `json:"other_charges"`
	Grand        facts.Pence `json:"grand"`
}

// Aggregator computes claim totals under a fixed negative-balance
// policy. Zero value aggregates with PolicyOffset.
type Aggregator struct {
	policy NegativePolicy
}

// New creates an aggregator. An unrecognized policy falls back to
// PolicyOffset.
func New(policy NegativePolicy) *Aggregator {
	if !policy.Valid() {
		policy = PolicyOffset
	}
	return &Aggregator{policy: policy}
}

// Policy returns the configured negative-balance policy.
func (a *Aggregator) Policy() NegativePolicy {
	if a.policy == "" {
		return PolicyOffset
	}
	return a.policy
}

// Aggregate sums the claim schedules in the snapshot. Arrears come from
// the structured ledger when present, falling back to the pre-computed
// arrears_total fact; damages and other charges come from the claim
// items schedule.
func (a *Aggregator) Aggregate(snap facts.Snapshot) Totals {
	var t Totals

	if items, ok := snap.LineItems(facts.KeyArrearsItems); ok {
		for _, li := range items {
			if li.Category != facts.CategoryArrears {
				continue
			}
			t.Arrears += a.itemBalance(li)
		}
	} else if total, ok := snap.Currency(facts.KeyArrearsTotal); ok {
		t.Arrears = total
	}

	if items, ok := snap.LineItems(facts.KeyClaimItems); ok {
		for _, li := range items {
			switch li.Category {
			case facts.CategoryDamage:
				t.Damages += a.itemBalance(li)
			case facts.CategoryOtherCharge:
				t.OtherCharges += a.itemBalance(li)
			case facts.CategoryArrears:
				// Arrears rows belong on the arrears ledger; tolerate
				// them here rather than dropping money.
				t.Arrears += a.itemBalance(li)
			}
		}
	}

	t.Grand = t.Arrears + t.Damages + t.OtherCharges
	return t
}

func (a *Aggregator) itemBalance(li facts.ClaimLineItem) facts.Pence {
	b := li.Balance()
	if a.Policy() == PolicyFloor && b < 0 {
		return 0
	}
	return b
}
