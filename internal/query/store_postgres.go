package query

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"veil/internal/domain"
	"veil/pkg/sentinel"
)

// PostgresRawStore runs generated research queries against the raw data
// warehouse over database/sql.
type PostgresRawStore struct {
	db *sql.DB
}

func NewPostgresRawStore(db *sql.DB) *PostgresRawStore {
	return &PostgresRawStore{db: db}
}

// positional placeholder order assigned by the query generator.
var parameterOrder = []string{"conditions", "data_scope"}

func (s *PostgresRawStore) RunQuery(ctx context.Context, query string, params map[string]any) ([]domain.Row, error) {
	args := make([]any, 0, len(params))
	for _, key := range parameterOrder {
		value, ok := params[key]
		if !ok {
			continue
		}
		if list, ok := value.([]string); ok {
			args = append(args, pq.Array(list))
			continue
		}
		args = append(args, value)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var out []domain.Row
	for rows.Next() {
		values := make([]any, len(columns))
		scan := make([]any, len(columns))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(domain.Row, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
				continue
			}
			row[column] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return out, nil
}
