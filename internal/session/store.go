package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/woodhall335/noticecheck/internal/audit"
	"github.com/woodhall335/noticecheck/internal/db"
	"github.com/woodhall335/noticecheck/internal/engine"
	"github.com/woodhall335/noticecheck/internal/facts"
	"github.com/woodhall335/noticecheck/internal/questions"
	"github.com/woodhall335/noticecheck/internal/report"
	"github.com/woodhall335/noticecheck/internal/rules"
)

// Store manages persistence of validation sessions and their facts.
// Every accepted fact write is mirrored into the audit trail.
type Store struct {
	db        *db.DB
	audit     *audit.Store
	validator *engine.Validator
}

// NewStore creates a session store backed by the given database.
func NewStore(database *db.DB, auditStore *audit.Store, v *engine.Validator) *Store {
	return &Store{db: database, audit: auditStore, validator: v}
}

// Create starts a new session for one validator and jurisdiction.
func (s *Store) Create(ctx context.Context, vk rules.ValidatorKey, j rules.Jurisdiction, reference string) (*Session, error) {
	reg := s.validator.Registry()
	if !reg.KnownValidator(vk) {
		return nil, fmt.Errorf("unknown validator %q", vk)
	}
	if !reg.KnownJurisdiction(j) {
		return nil, fmt.Errorf("unknown jurisdiction %q", j)
	}

	now := time.Now().UTC()
	sess := Session{
		ID:           uuid.New().String(),
		ValidatorKey: vk,
		Jurisdiction: j,
		Status:       report.StatusUnknown,
		Reference:    reference,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, validator_key, jurisdiction, status, reference, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, string(sess.ValidatorKey), string(sess.Jurisdiction), string(sess.Status),
		sess.Reference, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	return &sess, nil
}

// GetByID retrieves a session. Returns nil without error when the
// session does not exist.
func (s *Store) GetByID(ctx context.Context, id string) (*Session, error) {
	var (
		sess    Session
		vk, j   string
		status  string
		created string
		updated string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, validator_key, jurisdiction, status, reference, created_at, updated_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &vk, &j, &status, &sess.Reference, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	sess.ValidatorKey = rules.ValidatorKey(vk)
	sess.Jurisdiction = rules.Jurisdiction(j)
	sess.Status = report.Status(status)
	sess.CreatedAt = parseStoredTime(created)
	sess.UpdatedAt = parseStoredTime(updated)
	return &sess, nil
}

// List returns sessions matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Session, error) {
	query := `SELECT id, validator_key, jurisdiction, status, reference, created_at, updated_at
		 FROM sessions WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess             Session
			vk, j, status    string
			created, updated string
		)
		if err := rows.Scan(&sess.ID, &vk, &j, &status, &sess.Reference, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sess.ValidatorKey = rules.ValidatorKey(vk)
		sess.Jurisdiction = rules.Jurisdiction(j)
		sess.Status = report.Status(status)
		sess.CreatedAt = parseStoredTime(created)
		sess.UpdatedAt = parseStoredTime(updated)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Delete removes a session and, via cascade, its facts and audit trail.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("session not found: %s", id)
	}
	return nil
}

// MergeFacts applies a batch of incoming facts to a session. Writes that
// would lower an existing fact's provenance are skipped rather than
// rejected, so a document re-extraction cannot clobber a user's answer.
// The session is re-evaluated after the batch and the refreshed result
// returned along with the number of facts actually applied.
func (s *Store) MergeFacts(ctx context.Context, id string, incoming []facts.Fact) (report.Result, int, error) {
	sess, fs, err := s.load(ctx, id)
	if err != nil {
		return report.Result{}, 0, err
	}

	var events []facts.WriteEvent
	previous := map[facts.FactKey]facts.Value{}
	fs.SetRecorder(func(e facts.WriteEvent) { events = append(events, e) })

	applied := 0
	for _, f := range incoming {
		if v, _, ok := fs.Get(f.Key); ok {
			if _, seen := previous[f.Key]; !seen {
				previous[f.Key] = v
			}
		}
		err := fs.Set(f.Key, f.Value, f.Provenance)
		var downgrade *facts.DowngradeError
		if errors.As(err, &downgrade) {
			continue
		}
		if err != nil {
			return report.Result{}, 0, err
		}
		applied++
	}

	result, err := s.settle(ctx, sess, fs, events, previous)
	if err != nil {
		return report.Result{}, 0, err
	}
	return result, applied, nil
}

// SubmitAnswer records a user's answer to one outstanding question and
// re-evaluates the session.
func (s *Store) SubmitAnswer(ctx context.Context, id string, key facts.FactKey, raw string) (report.Result, error) {
	value, err := questions.ParseAnswer(key, raw)
	if err != nil {
		return report.Result{}, err
	}

	sess, fs, err := s.load(ctx, id)
	if err != nil {
		return report.Result{}, err
	}

	var events []facts.WriteEvent
	previous := map[facts.FactKey]facts.Value{}
	fs.SetRecorder(func(e facts.WriteEvent) { events = append(events, e) })

	if v, _, ok := fs.Get(key); ok {
		previous[key] = v
	}

	// User answers always win, including over earlier confirmed answers.
	if err := fs.ForceSet(key, value, facts.ProvenanceUserConfirmed); err != nil {
		return report.Result{}, err
	}

	return s.settle(ctx, sess, fs, events, previous)
}

// Result re-evaluates a session from its stored facts.
func (s *Store) Result(ctx context.Context, id string) (report.Result, error) {
	sess, fs, err := s.load(ctx, id)
	if err != nil {
		return report.Result{}, err
	}
	return s.settle(ctx, sess, fs, nil, nil)
}

// Questions returns the outstanding questions for a session, derived
// from the facts the current evaluation reports as missing.
func (s *Store) Questions(ctx context.Context, id string) ([]questions.Question, error) {
	result, err := s.Result(ctx, id)
	if err != nil {
		return nil, err
	}

	var out []questions.Question
	for _, key := range questions.MissingFactKeys(result) {
		if q, ok := questions.For(key); ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// load fetches a session and rebuilds its fact store from storage.
func (s *Store) load(ctx context.Context, id string) (*Session, *facts.Store, error) {
	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		return nil, nil, fmt.Errorf("session not found: %s", id)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, provenance FROM session_facts WHERE session_id = ?`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("loading session facts: %w", err)
	}
	defer rows.Close()

	fs := facts.NewStore()
	for rows.Next() {
		var key, raw, provenance string
		if err := rows.Scan(&key, &raw, &provenance); err != nil {
			return nil, nil, fmt.Errorf("scanning session fact: %w", err)
		}
		var value facts.Value
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, nil, fmt.Errorf("decoding stored fact %s: %w", key, err)
		}
		if err := fs.Set(facts.FactKey(key), value, facts.Provenance(provenance)); err != nil {
			return nil, nil, fmt.Errorf("restoring fact %s: %w", key, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return sess, fs, nil
}

// settle persists the accepted writes, re-evaluates the session and
// stores the resulting status.
func (s *Store) settle(ctx context.Context, sess *Session, fs *facts.Store, events []facts.WriteEvent, previous map[facts.FactKey]facts.Value) (report.Result, error) {
	for _, e := range events {
		raw, err := json.Marshal(e.Value)
		if err != nil {
			return report.Result{}, fmt.Errorf("encoding fact %s: %w", e.Key, err)
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO session_facts (session_id, key, value, provenance, updated_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(session_id, key) DO UPDATE SET
			   value = excluded.value,
			   provenance = excluded.provenance,
			   updated_at = excluded.updated_at`,
			sess.ID, string(e.Key), string(raw), string(e.Incoming), time.Now().UTC(),
		); err != nil {
			return report.Result{}, fmt.Errorf("persisting fact %s: %w", e.Key, err)
		}

		entry := audit.Entry{
			SessionID:  sess.ID,
			FactKey:    string(e.Key),
			Provenance: string(e.Incoming),
			NewValue:   string(raw),
			Forced:     e.Forced,
		}
		if prev, ok := previous[e.Key]; ok {
			prevRaw, err := json.Marshal(prev)
			if err != nil {
				return report.Result{}, fmt.Errorf("encoding previous fact %s: %w", e.Key, err)
			}
			entry.PreviousValue = string(prevRaw)
		}
		if err := s.audit.Log(ctx, entry); err != nil {
			return report.Result{}, err
		}
	}

	result := s.validator.Validate(fs.Snapshot(), sess.ValidatorKey, sess.Jurisdiction)

	if _, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`,
		string(result.Status), time.Now().UTC(), sess.ID,
	); err != nil {
		return report.Result{}, fmt.Errorf("updating session status: %w", err)
	}
	sess.Status = result.Status

	return result, nil
}

func parseStoredTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateTime, "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
