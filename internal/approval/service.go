// Package approval implements the query approval state machine:
// pending -> {approved, denied, requires_review}, requires_review ->
// {approved, denied}. Approved and denied are terminal. Restricted
// classifications always enter pending and are never approved without a
// recorded decision.
package approval

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"veil/internal/domain"
	"veil/pkg/audit"
	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
	"veil/pkg/sentinel"
)

// Notifier tells reviewers about a pending request. It is fire-and-forget:
// failures are logged and never block the governance path.
type Notifier interface {
	NotifyReviewers(ctx context.Context, request *Request) error
}

// AuditPublisher emits audit events for approval transitions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          Store
	notifier       Notifier
	logger         *slog.Logger
	auditPublisher AuditPublisher
	now            func() time.Time

	// locks serializes read-modify-write cycles per query id so two
	// concurrent decisions cannot both observe a non-terminal state.
	locks sync.Map
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("approval store is required")
	}
	svc := &Service{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) lock(queryID string) func() {
	mu, _ := s.locks.LoadOrStore(queryID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Register stores a freshly translated descriptor. It enforces the creation
// rule: a restricted descriptor must arrive pending.
func (s *Service) Register(ctx context.Context, descriptor *domain.ResearchQueryDescriptor) error {
	if descriptor == nil || descriptor.ID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "descriptor with id is required")
	}
	if descriptor.Classification == id.SensitivityRestricted && descriptor.ApprovalStatus != id.ApprovalPending {
		return dErrors.New(dErrors.CodeBadRequest, "restricted queries must enter the workflow pending")
	}
	unlock := s.lock(descriptor.ID)
	defer unlock()
	if err := s.store.SaveDescriptor(ctx, descriptor); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register descriptor")
	}
	return nil
}

// Get returns the descriptor for a query id.
func (s *Service) Get(ctx context.Context, queryID string) (*domain.ResearchQueryDescriptor, error) {
	descriptor, err := s.store.GetDescriptor(ctx, queryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "query not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load descriptor")
	}
	return descriptor, nil
}

// RequestApproval attaches reviewer metadata to a query awaiting review.
// Idempotent per query id: a second request updates the pending record
// instead of duplicating it. Reviewer notification is fire-and-forget.
func (s *Service) RequestApproval(ctx context.Context, queryID, requester string, justification Justification, urgency Urgency, reviewers []string) (*Request, error) {
	if !validUrgencies[urgency] {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unsupported urgency: %s", urgency)
	}

	unlock := s.lock(queryID)
	defer unlock()

	descriptor, err := s.store.GetDescriptor(ctx, queryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "query not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load descriptor")
	}
	if descriptor.ApprovalStatus.Terminal() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "query is already %s", descriptor.ApprovalStatus)
	}

	now := s.now()
	request := &Request{
		QueryID:       queryID,
		Requester:     requester,
		Justification: justification,
		Permissions:   descriptor.Permissions,
		Urgency:       urgency,
		Reviewers:     reviewers,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if existing, err := s.store.GetRequest(ctx, queryID); err == nil {
		request.CreatedAt = existing.CreatedAt
	}
	if err := s.store.UpsertRequest(ctx, request); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save approval request")
	}

	s.notify(ctx, request)
	s.emit(ctx, audit.EventApprovalRequested, queryID, requester, string(urgency), "")
	return request, nil
}

// Decide records a reviewer decision and applies the transition. Approved
// and denied are terminal; requires_review parks the query for a second
// look. Illegal transitions are rejected, which also guarantees a
// restricted query can never be approved without the decision recorded
// here.
func (s *Service) Decide(ctx context.Context, queryID string, status id.ApprovalStatus, reviewerID, notes string) (*domain.ResearchQueryDescriptor, error) {
	if status != id.ApprovalApproved && status != id.ApprovalDenied && status != id.ApprovalRequiresReview {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "decision must be approved, denied, or requires_review")
	}

	unlock := s.lock(queryID)
	defer unlock()

	descriptor, err := s.store.GetDescriptor(ctx, queryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "query not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load descriptor")
	}
	if !descriptor.ApprovalStatus.CanTransitionTo(status) {
		return nil, dErrors.Newf(dErrors.CodeBadRequest,
			"illegal transition from %s to %s", descriptor.ApprovalStatus, status)
	}

	decision := &Decision{
		QueryID:    queryID,
		Status:     status,
		ReviewerID: reviewerID,
		Notes:      notes,
		DecidedAt:  s.now(),
	}
	if err := s.store.AppendDecision(ctx, decision); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record decision")
	}

	descriptor.ApprovalStatus = status
	if err := s.store.SaveDescriptor(ctx, descriptor); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save descriptor")
	}

	s.emit(ctx, audit.EventApprovalDecided, queryID, reviewerID, string(status), notes)
	return descriptor, nil
}

// Decisions returns the append-only decision history for a query.
func (s *Service) Decisions(ctx context.Context, queryID string) ([]Decision, error) {
	decisions, err := s.store.ListDecisions(ctx, queryID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list decisions")
	}
	return decisions, nil
}

func (s *Service) notify(ctx context.Context, request *Request) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyReviewers(ctx, request); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "reviewer notification failed",
				"query_id", request.QueryID,
				"error", err,
			)
		}
		return
	}
	s.emit(ctx, audit.EventReviewersNotified, request.QueryID, request.Requester, "", "")
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, queryID, actor, decision, reason string) {
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		QueryID:  queryID,
		Actor:    actor,
		Action:   string(action),
		Decision: decision,
		Reason:   reason,
	})
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"query_id", queryID,
			"actor", actor,
			"decision", decision,
			"log_type", "audit",
		)
	}
}
