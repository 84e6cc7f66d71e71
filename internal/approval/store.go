package approval

import (
	"context"

	"veil/internal/domain"
)

// Store persists descriptors, approval requests, and decisions.
// Implementations return sentinel errors for factual states; the service
// translates them into domain errors.
type Store interface {
	// SaveDescriptor inserts or replaces a descriptor.
	SaveDescriptor(ctx context.Context, descriptor *domain.ResearchQueryDescriptor) error

	// GetDescriptor returns sentinel.ErrNotFound for unknown query ids.
	GetDescriptor(ctx context.Context, queryID string) (*domain.ResearchQueryDescriptor, error)

	// UpsertRequest creates or updates the approval request for a query.
	UpsertRequest(ctx context.Context, request *Request) error

	// GetRequest returns sentinel.ErrNotFound when no request exists.
	GetRequest(ctx context.Context, queryID string) (*Request, error)

	// AppendDecision records a decision; the decision history is
	// append-only.
	AppendDecision(ctx context.Context, decision *Decision) error

	// ListDecisions returns the decision history for a query in order.
	ListDecisions(ctx context.Context, queryID string) ([]Decision, error)
}
