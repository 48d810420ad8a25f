package rules

import (
	"fmt"

	"github.com/woodhall335/noticecheck/internal/facts"
)

// Engine evaluates fact snapshots against a registry. It holds no
// mutable state, so one Engine serves every session in the process.
type Engine struct {
	reg *Registry
}

// NewEngine creates an engine over the given registry.
func NewEngine(reg *Registry) *Engine {
	return &Engine{reg: reg}
}

// Registry returns the engine's registry.
func (e *Engine) Registry() *Registry {
	return e.reg
}

// Evaluate runs every applicable rule against the snapshot and returns
// the issues in rule registration order. A rule whose required facts
// are absent contributes a missing:<key> info issue per absent key
// instead of running, so partial data never produces a false blocker.
// A predicate that panics is converted to an internal_rule_error
// warning; one failing rule never aborts the batch.
func (e *Engine) Evaluate(snap facts.Snapshot, vk ValidatorKey, j Jurisdiction) []Issue {
	var issues []Issue
	missingSeen := make(map[facts.FactKey]bool)

	for _, rule := range e.reg.Select(vk, j) {
		absent := absentKeys(snap, rule.Requires)
		if len(absent) > 0 {
			for _, k := range absent {
				if missingSeen[k] {
					continue
				}
				missingSeen[k] = true
				issues = append(issues, missingIssue(k, rule))
			}
			continue
		}

		if issue := runRule(rule, snap); issue != nil {
			issues = append(issues, *issue)
		}
	}
	return issues
}

func absentKeys(snap facts.Snapshot, required []facts.FactKey) []facts.FactKey {
	var absent []facts.FactKey
	for _, k := range required {
		if !snap.Has(k) {
			absent = append(absent, k)
		}
	}
	return absent
}

func missingIssue(k facts.FactKey, rule Rule) Issue {
	label := string(k)
	if info, ok := facts.Info(k); ok {
		label = info.Label
	}
	return Issue{
		Code:           MissingCode(k),
		Message:        fmt.Sprintf("Cannot complete this check yet: %s is not known.", label),
		Severity:       SeverityInfo,
		Section:        rule.Section,
		RelatedFactKey: k,
	}
}

// runRule invokes the predicate, converting a panic into a warning that
// cites the rule id.
func runRule(rule Rule, snap facts.Snapshot) (issue *Issue) {
	defer func() {
		if r := recover(); r != nil {
			issue = &Issue{
				Code:     CodeInternalRuleError,
				Message:  fmt.Sprintf("Rule %s could not be evaluated: %v.", rule.ID, r),
				Severity: SeverityWarning,
				Section:  rule.Section,
			}
		}
	}()
	return rule.Evaluate(snap)
}
