package consent

import (
	"context"
)

// Store persists consent records. Implementations return sentinel errors
// (pkg/sentinel) for factual states; the service translates them into domain
// errors.
type Store interface {
	// Create inserts a new record. Returns sentinel.ErrConflict when the
	// subject already has one.
	Create(ctx context.Context, record *ConsentRecord) error

	// Get returns the record for a subject, or sentinel.ErrNotFound.
	Get(ctx context.Context, subjectID string) (*ConsentRecord, error)

	// Save replaces an existing record. Returns sentinel.ErrNotFound when
	// the subject is unknown.
	Save(ctx context.Context, record *ConsentRecord) error
}
