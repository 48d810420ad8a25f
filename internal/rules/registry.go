package rules

import (
	"fmt"
	"sync"

	"github.com/woodhall335/noticecheck/internal/facts"
)

// Registry is the immutable, ordered set of rules. Evaluation order is
// registration order, which keeps engine output deterministic.
type Registry struct {
	rules []Rule
}

// NewRegistry validates and assembles a registry from rules.
func NewRegistry(rules []Rule) (*Registry, error) {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule with empty id")
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true
		if r.Evaluate == nil {
			return nil, fmt.Errorf("rule %s has no predicate", r.ID)
		}
		if len(r.Jurisdictions) == 0 || len(r.ValidatorKeys) == 0 {
			return nil, fmt.Errorf("rule %s has no applicability", r.ID)
		}
		if r.Severity.Rank() == 0 && r.Severity != SeverityInfo {
			return nil, fmt.Errorf("rule %s has invalid severity %q", r.ID, r.Severity)
		}
		for _, k := range r.Requires {
			if !facts.Known(k) {
				return nil, fmt.Errorf("rule %s requires unregistered fact key %q", r.ID, k)
			}
		}
	}
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Registry{rules: cp}, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry holding every statutory
// rule set. It is built once and read-only thereafter; invalid static
// rule data is a programming error and panics at first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		var all []Rule
		all = append(all, section8Rules()...)
		all = append(all, section21Rules()...)
		all = append(all, walesRules()...)
		all = append(all, moneyClaimRules()...)

		reg, err := NewRegistry(all)
		if err != nil {
			panic(fmt.Sprintf("rules: building default registry: %v", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// Select returns, in registration order, the rules applicable to the
// given validator key and jurisdiction.
func (r *Registry) Select(vk ValidatorKey, j Jurisdiction) []Rule {
	var out []Rule
	for _, rule := range r.rules {
		if rule.appliesTo(vk, j) {
			out = append(out, rule)
		}
	}
	return out
}

// All returns every registered rule in registration order.
func (r *Registry) All() []Rule {
	cp := make([]Rule, len(r.rules))
	copy(cp, r.rules)
	return cp
}

// KnownValidator reports whether any rule is registered for the key.
func (r *Registry) KnownValidator(vk ValidatorKey) bool {
	for _, rule := range r.rules {
		if containsValidator(rule.ValidatorKeys, vk) {
			return true
		}
	}
	return false
}

// KnownJurisdiction reports whether any rule is registered for the
// jurisdiction.
func (r *Registry) KnownJurisdiction(j Jurisdiction) bool {
	for _, rule := range r.rules {
		if containsJurisdiction(rule.Jurisdictions, j) {
			return true
		}
	}
	return false
}

// MaxSeverityRequiring returns the highest severity among selected
// rules that list key as a required fact. The second return is false
// when no selected rule requires the key.
func (r *Registry) MaxSeverityRequiring(vk ValidatorKey, j Jurisdiction, key facts.FactKey) (Severity, bool) {
	max := SeverityInfo
	found := false
	for _, rule := range r.Select(vk, j) {
		for _, req := range rule.Requires {
			if req != key {
				continue
			}
			found = true
			if rule.Severity.Rank() > max.Rank() {
				max = rule.Severity
			}
		}
	}
	return max, found
}
