package consent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "veil/pkg/domain"
	"veil/pkg/sentinel"
)

// PostgresStore persists consent records in PostgreSQL. This store is pure
// I/O; withdrawal and level rules belong to the service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, record *ConsentRecord) error {
	history, err := json.Marshal(record.History)
	if err != nil {
		return fmt.Errorf("marshal consent history: %w", err)
	}
	query := `
		INSERT INTO consent_records (subject_id, level, history, withdrawal_requested, withdrawal_requested_at, data_purge_scheduled, purge_scheduled_for, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		record.SubjectID,
		string(record.Level),
		history,
		record.WithdrawalRequested,
		record.WithdrawalRequestedAt,
		record.DataPurgeScheduled,
		record.PurgeScheduledFor,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create consent record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, subjectID string) (*ConsentRecord, error) {
	query := `
		SELECT subject_id, level, history, withdrawal_requested, withdrawal_requested_at, data_purge_scheduled, purge_scheduled_for, created_at, updated_at
		FROM consent_records
		WHERE subject_id = $1
	`
	record, err := scanConsentRecord(s.db.QueryRowContext(ctx, query, subjectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get consent record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) Save(ctx context.Context, record *ConsentRecord) error {
	history, err := json.Marshal(record.History)
	if err != nil {
		return fmt.Errorf("marshal consent history: %w", err)
	}
	query := `
		UPDATE consent_records
		SET level = $2, history = $3, withdrawal_requested = $4, withdrawal_requested_at = $5, data_purge_scheduled = $6, purge_scheduled_for = $7, updated_at = $8
		WHERE subject_id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		record.SubjectID,
		string(record.Level),
		history,
		record.WithdrawalRequested,
		record.WithdrawalRequestedAt,
		record.DataPurgeScheduled,
		record.PurgeScheduledFor,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save consent record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save consent record: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanConsentRecord(row *sql.Row) (*ConsentRecord, error) {
	var record ConsentRecord
	var level string
	var history []byte
	if err := row.Scan(
		&record.SubjectID,
		&level,
		&history,
		&record.WithdrawalRequested,
		&record.WithdrawalRequestedAt,
		&record.DataPurgeScheduled,
		&record.PurgeScheduledFor,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	record.Level = id.ConsentLevel(level)
	if err := json.Unmarshal(history, &record.History); err != nil {
		return nil, fmt.Errorf("unmarshal consent history: %w", err)
	}
	return &record, nil
}
