package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose. This
// enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention (e.g., 7 years).
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from governance logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// SubjectID identifies the data subject an event concerns, when any.
	SubjectID string
	// QueryID identifies the research query an event concerns, when any.
	QueryID string
	// Actor is the caller (researcher, reviewer, system) performing the action.
	Actor     string
	Action    string
	Decision  string
	Reason    string
	RequestID string
	Details   map[string]any
}

type AuditEvent string

const (
	// Consent events
	EventConsentInitialized AuditEvent = "consent_initialized"
	EventConsentUpdated     AuditEvent = "consent_updated"
	EventWithdrawalRequest  AuditEvent = "consent_withdrawal_requested"
	EventConsentChecked     AuditEvent = "consent_checked"

	// Query lifecycle events
	EventQueryTranslated AuditEvent = "query_translated"
	EventQueryExecuted   AuditEvent = "query_executed"
	EventQueryFailed     AuditEvent = "query_failed"

	// Approval events
	EventApprovalRequested AuditEvent = "approval_requested"
	EventApprovalDecided   AuditEvent = "approval_decided"
	EventReviewersNotified AuditEvent = "reviewers_notified"

	// Privacy events
	EventBudgetExhausted AuditEvent = "privacy_budget_exhausted"
	EventBudgetReset     AuditEvent = "privacy_budget_reset"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	// Compliance events - require tamper-proof storage
	EventConsentInitialized: CategoryCompliance,
	EventConsentUpdated:     CategoryCompliance,
	EventWithdrawalRequest:  CategoryCompliance,
	EventApprovalDecided:    CategoryCompliance,
	EventQueryExecuted:      CategoryCompliance,

	// Security events - feed into SIEM and alerting
	EventBudgetExhausted: CategorySecurity,
	EventQueryFailed:     CategorySecurity,

	// Operations events - routine activity, can be sampled
	EventConsentChecked:    CategoryOperations,
	EventQueryTranslated:   CategoryOperations,
	EventApprovalRequested: CategoryOperations,
	EventReviewersNotified: CategoryOperations,
	EventBudgetReset:       CategoryOperations,
}

// CategoryOf returns the category for an event name, defaulting to
// operations for unknown events.
func CategoryOf(event AuditEvent) EventCategory {
	if c, ok := eventCategories[event]; ok {
		return c
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subjectID string) ([]Event, error)
	ListByQuery(ctx context.Context, queryID string) ([]Event, error)
}
