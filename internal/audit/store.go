package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/woodhall335/noticecheck/internal/db"
)

// Store provides CRUD operations for audit entries.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts a new audit entry. If entry.ID is empty a UUID is generated.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	var previous sql.NullString
	if entry.PreviousValue != "" {
		previous = sql.NullString{String: entry.PreviousValue, Valid: true}
	}

	forced := 0
	if entry.Forced {
		forced = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (
			id, session_id, fact_key, provenance,
			previous_value, new_value, forced
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.SessionID,
		entry.FactKey,
		entry.Provenance,
		previous,
		entry.NewValue,
		forced,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// GetByID retrieves a single audit entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, timestamp, fact_key, provenance,
			   previous_value, new_value, forced
		FROM audit_entries WHERE id = ?`, id)

	return scanEntry(row)
}

// ListBySession returns every audit entry for one session, oldest first,
// so the trail reads as the order facts were recorded.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]Entry, error) {
	return s.Query(ctx, QueryFilter{SessionID: sessionID, Ascending: true})
}

// QueryFilter controls which audit entries are returned by Query.
type QueryFilter struct {
	SessionID string
	FactKey   string
	Since     *time.Time
	Until     *time.Time
	Ascending bool
	Limit     int
	Offset    int
}

// Query returns audit entries matching the filter.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.FactKey != "" {
		clauses = append(clauses, "fact_key = ?")
		args = append(args, filter.FactKey)
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format(time.DateTime))
	}

	query := "SELECT id, session_id, timestamp, fact_key, provenance, previous_value, new_value, forced FROM audit_entries"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	if filter.Ascending {
		query += " ORDER BY timestamp ASC, id ASC"
	} else {
		query += " ORDER BY timestamp DESC, id DESC"
	}

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanRows(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes all audit entries older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM audit_entries WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old audit entries: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e        Entry
		ts       string
		previous sql.NullString
		forced   int
	)

	err := sc.Scan(
		&e.ID, &e.SessionID, &ts, &e.FactKey, &e.Provenance,
		&previous, &e.NewValue, &forced,
	)
	if err != nil {
		return nil, err
	}

	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		e.Timestamp = t
	} else if t, parseErr := time.Parse("2006-01-02T15:04:05Z", ts); parseErr == nil {
		e.Timestamp = t
	}

	if previous.Valid {
		e.PreviousValue = previous.String
	}
	e.Forced = forced != 0

	return &e, nil
}

func scanEntry(row *sql.Row) (*Entry, error) {
	return scanInto(row)
}

func scanRows(rows *sql.Rows) (*Entry, error) {
	return scanInto(rows)
}
