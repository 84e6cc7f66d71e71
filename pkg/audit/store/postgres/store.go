package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	audit "veil/pkg/audit"
)

// Store persists audit events in PostgreSQL. This store is pure I/O; event
// categorization belongs to the audit package.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts a single audit event row. Details are stored as JSONB.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	query := `
		INSERT INTO audit_events (id, category, occurred_at, subject_id, query_id, actor, action, decision, reason, request_id, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.New(),
		string(event.Category),
		event.Timestamp,
		event.SubjectID,
		event.QueryID,
		event.Actor,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
		details,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListBySubject(ctx context.Context, subjectID string) ([]audit.Event, error) {
	query := `
		SELECT category, occurred_at, subject_id, query_id, actor, action, decision, reason, request_id
		FROM audit_events
		WHERE subject_id = $1
		ORDER BY occurred_at
	`
	return s.list(ctx, query, subjectID)
}

func (s *Store) ListByQuery(ctx context.Context, queryID string) ([]audit.Event, error) {
	query := `
		SELECT category, occurred_at, subject_id, query_id, actor, action, decision, reason, request_id
		FROM audit_events
		WHERE query_id = $1
		ORDER BY occurred_at
	`
	return s.list(ctx, query, queryID)
}

func (s *Store) list(ctx context.Context, query string, arg any) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var category string
		if err := rows.Scan(&category, &e.Timestamp, &e.SubjectID, &e.QueryID, &e.Actor, &e.Action, &e.Decision, &e.Reason, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		events = append(events, e)
	}
	return events, rows.Err()
}
