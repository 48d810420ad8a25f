// Package rules holds the statutory rule registry and the engine that
// evaluates a fact snapshot against it. The registry is assembled once
// at process start and never mutated afterwards; evaluation is a pure
// function of the snapshot.
package rules

import (
	"github.com/woodhall335/noticecheck/internal/facts"
)

// Jurisdiction selects which statutory regime applies.
type Jurisdiction string

const (
	JurisdictionEngland Jurisdiction = "england"
	JurisdictionWales   Jurisdiction = "wales"
)

// ValidatorKey identifies the document or process a fact set is checked
// against.
type ValidatorKey string

const (
	ValidatorSection8   ValidatorKey = "section_8"
	ValidatorSection21  ValidatorKey = "section_21"
	ValidatorMoneyClaim ValidatorKey = "money_claim"
)

// Severity classifies an issue.
type Severity string

const (
	SeverityBlocker    Severity = "blocker"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
	SeverityInfo       Severity = "info"
)

var severityRank = map[Severity]int{
	SeverityInfo:       0,
	SeveritySuggestion: 1,
	SeverityWarning:    2,
	SeverityBlocker:    3,
}

// Rank returns the numeric ordering of the severity, higher is worse.
func (s Severity) Rank() int {
	return severityRank[s]
}

// Issue is one finding from rule evaluation. Codes are stable and
// machine-readable; messages may be reworded without breaking consumers
// keyed on codes.
type Issue struct {
	Code           string        `json:"code"`
	Message        string        `json:"message"`
	Severity       Severity      `json:"severity"`
	Section        string        `json:"section,omitempty"`
	RelatedFactKey facts.FactKey `json:"related_fact_key,omitempty"`
	EvidenceHint   string        `json:"evidence_hint,omitempty"`
}

// Shared issue codes. Rule-specific codes live beside their rules.
const (
	CodeInternalRuleError = "internal_rule_error"
	CodeUnknownValidator  = "unknown_validator"
	CodeUnknownRegime     = "unknown_jurisdiction"
)

// missingPrefix flags issues that stand in for an absent required fact.
const missingPrefix = "missing:"

// MissingCode returns the issue code for an absent required fact.
func MissingCode(k facts.FactKey) string {
	return missingPrefix + string(k)
}

// MissingKey extracts the fact key from a missing-flavoured issue code.
func MissingKey(code string) (facts.FactKey, bool) {
	if len(code) <= len(missingPrefix) || code[:len(missingPrefix)] != missingPrefix {
		return "", false
	}
	return facts.FactKey(code[len(missingPrefix):]), true
}

// Rule is one statutory check. Evaluate is a pure predicate over the
// snapshot: it returns nil when the check passes and never performs
// I/O. Severity declares the highest severity the predicate can emit,
// which the report builder uses to decide whether an unanswered
// required fact should hold the whole result at needs_info.
type Rule struct {
	ID            string
	Jurisdictions []Jurisdiction
	ValidatorKeys []ValidatorKey
	Requires      []facts.FactKey
	Severity      Severity
	Section       string
	Evaluate      func(facts.Snapshot) *Issue
}

func (r Rule) appliesTo(vk ValidatorKey, j Jurisdiction) bool {
	return containsValidator(r.ValidatorKeys, vk) && containsJurisdiction(r.Jurisdictions, j)
}

func containsValidator(keys []ValidatorKey, vk ValidatorKey) bool {
	for _, k := range keys {
		if k == vk {
			return true
		}
	}
	return false
}

func containsJurisdiction(js []Jurisdiction, j Jurisdiction) bool {
	for _, x := range js {
		if x == j {
			return true
		}
	}
	return false
}
