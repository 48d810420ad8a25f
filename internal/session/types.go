package session

import (
	"time"

	"github.com/woodhall335/noticecheck/internal/report"
	"github.com/woodhall335/noticecheck/internal/rules"
)

// Session is one validation case: a notice or claim being checked for a
// single validator and jurisdiction. Facts accumulate against the
// session until the result settles.
type Session struct {
	ID           string             `json:"id"`
	ValidatorKey rules.ValidatorKey `json:"validator_key"`
	Jurisdiction rules.Jurisdiction `json:"jurisdiction"`
	Status       report.Status      `json:"status"`
	Reference    string             `json:"reference,omitempty"` // caller's own case reference
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ListFilter controls which sessions List returns.
type ListFilter struct {
	Status report.Status
	Limit  int
	Offset int
}
