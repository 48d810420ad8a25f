// Package engine is the single entry point into validation: snapshot in,
// classified result out. The CLI, HTTP server and question flow all go
// through it rather than wiring registry, aggregator and builder
// themselves.
package engine

import (
	"github.com/woodhall335/noticecheck/internal/claims"
	"github.com/woodhall335/noticecheck/internal/facts"
	"github.com/woodhall335/noticecheck/internal/report"
	"github.com/woodhall335/noticecheck/internal/rules"
)

// Validator validates fact snapshots. It holds only immutable state and
// is safe for concurrent use across sessions.
type Validator struct {
	reg     *rules.Registry
	builder *report.Builder
}

// New creates a validator over the default statutory registry.
func New(policy claims.NegativePolicy) *Validator {
	return NewWithRegistry(rules.Default(), policy)
}

// NewWithRegistry creates a validator over a custom registry; tests use
// this to exercise synthetic rules.
func NewWithRegistry(reg *rules.Registry, policy claims.NegativePolicy) *Validator {
	return &Validator{
		reg:     reg,
		builder: report.NewBuilder(reg, policy),
	}
}

// Registry returns the immutable registry backing this validator.
func (v *Validator) Registry() *rules.Registry {
	return v.reg
}

// Validate evaluates the snapshot against the rules for the given
// validator key and jurisdiction. It is a pure function of its inputs:
// repeated calls with an identical snapshot return identical results,
// so retrying after a transient failure in a surrounding call is safe.
func (v *Validator) Validate(snap facts.Snapshot, vk rules.ValidatorKey, j rules.Jurisdiction) report.Result {
	return v.builder.Build(snap, vk, j)
}
