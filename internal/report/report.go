// Package report turns rule engine output and claim totals into a
// status-classified validation result.
package report

import (
	"time"

	"github.com/woodhall335/noticecheck/internal/claims"
	"github.com/woodhall335/noticecheck/internal/facts"
	"github.com/woodhall335/noticecheck/internal/rules"
)

// Status classifies a validation result.
type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusNeedsInfo Status = "needs_info"
	StatusInvalid   Status = "invalid"
	StatusWarning   Status = "warning"
	StatusPass      Status = "pass"
)

// Deadline is a date derived from the facts, such as the last day to
// begin proceedings.
type Deadline struct {
	Code  string    `json:"code"`
	Label string    `json:"label"`
	Date  time.Time `json:"date"`
}

// Result is the full outcome of one validation pass. It is a plain
// in-process value; the hosting layer serializes it to JSON at API
// boundaries.
type Result struct {
	ValidatorKey     rules.ValidatorKey `json:"validator_key"`
	Jurisdiction     rules.Jurisdiction `json:"jurisdiction"`
	Status           Status             `json:"status"`
	Blockers         []rules.Issue      `json:"blockers"`
	Warnings         []rules.Issue      `json:"warnings"`
	Suggestions      []rules.Issue      `json:"suggestions"`
	MissingFacts     []facts.FactKey    `json:"missing_facts"`
	ClaimBreakdown   *claims.Totals     `json:"claim_breakdown,omitempty"`
	TotalClaimAmount facts.Pence        `json:"total_claim_amount"`
	Deadlines        []Deadline         `json:"deadlines,omitempty"`
	ProvenanceTrail  []facts.TrailEntry `json:"provenance_trail"`
}

// Builder assembles results from engine output and claim totals. It is
// stateless apart from the immutable registry and policy, so one
// builder serves every session.
type Builder struct {
	reg *rules.Registry
	eng *rules.Engine
	agg *claims.Aggregator
}

// NewBuilder creates a builder over the registry with the given
// aggregation policy.
func NewBuilder(reg *rules.Registry, policy claims.NegativePolicy) *Builder {
	return &Builder{
		reg: reg,
		eng: rules.NewEngine(reg),
		agg: claims.New(policy),
	}
}

// Build validates the snapshot and classifies the outcome. Unrecognized
// validator keys or jurisdictions yield StatusUnknown with a diagnostic
// issue rather than an error, so a caller can never be aborted by bad
// routing input.
func (b *Builder) Build(snap facts.Snapshot, vk rules.ValidatorKey, j rules.Jurisdiction) Result {
	result := Result{
		ValidatorKey:    vk,
		Jurisdiction:    j,
		MissingFacts:    []facts.FactKey{},
		ProvenanceTrail: snap.Trail(),
	}

	if !b.reg.KnownValidator(vk) {
		result.Status = StatusUnknown
		result.Warnings = append(result.Warnings, rules.Issue{
			Code:     rules.CodeUnknownValidator,
			Message:  "No rules are registered for validator key " + string(vk) + ".",
			Severity: rules.SeverityWarning,
		})
		return result
	}
	if !b.reg.KnownJurisdiction(j) {
		result.Status = StatusUnknown
		result.Warnings = append(result.Warnings, rules.Issue{
			Code:     rules.CodeUnknownRegime,
			Message:  "No rules are registered for jurisdiction " + string(j) + ".",
			Severity: rules.SeverityWarning,
		})
		return result
	}

	issues := b.eng.Evaluate(snap, vk, j)

	blockerGated := false
	for _, issue := range issues {
		if key, ok := rules.MissingKey(issue.Code); ok {
			result.MissingFacts = append(result.MissingFacts, key)
			// A missing fact only holds the result at needs_info when a
			// blocker-severity rule cannot run without it; that way the
			// user is asked before being told the document is invalid.
			if sev, found := b.reg.MaxSeverityRequiring(vk, j, key); found && sev == rules.SeverityBlocker {
				blockerGated = true
			}
			continue
		}
		switch issue.Severity {
		case rules.SeverityBlocker:
			result.Blockers = append(result.Blockers, issue)
		case rules.SeverityWarning:
			result.Warnings = append(result.Warnings, issue)
		case rules.SeveritySuggestion:
			result.Suggestions = append(result.Suggestions, issue)
		}
	}

	totals := b.agg.Aggregate(snap)
	if totals != (claims.Totals{}) {
		t := totals
		result.ClaimBreakdown = &t
		result.TotalClaimAmount = t.Grand
	}

	result.Deadlines = deadlines(snap, vk, j)

	switch {
	case blockerGated:
		result.Status = StatusNeedsInfo
	case len(result.Blockers) > 0:
		result.Status = StatusInvalid
	case len(result.Warnings) > 0:
		result.Status = StatusWarning
	default:
		result.Status = StatusPass
	}
	return result
}
