package audit

import "time"

// Entry is a single audit trail record. One entry is written for every
// accepted fact write, so a session's history can be replayed to show
// where each fact came from and what it replaced.
type Entry struct {
	ID            string
	SessionID     string
	Timestamp     time.Time
	FactKey       string
	Provenance    string
	PreviousValue string
	NewValue      string
	Forced        bool
}
