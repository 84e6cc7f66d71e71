package main

import (
	"context"

	"veil/internal/domain"
)

// emptyRawStore stands in when no research data warehouse is configured.
// Queries execute against an empty data set, which keeps development
// environments usable without a postgres instance.
type emptyRawStore struct{}

func (emptyRawStore) RunQuery(_ context.Context, _ string, _ map[string]any) ([]domain.Row, error) {
	return nil, nil
}
