package approval

import (
	"time"

	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
)

// Urgency signals how quickly reviewers should act on a request.
type Urgency string

const (
	UrgencyRoutine   Urgency = "routine"
	UrgencyExpedited Urgency = "expedited"
	UrgencyEmergency Urgency = "emergency"
)

var validUrgencies = map[Urgency]bool{
	UrgencyRoutine:   true,
	UrgencyExpedited: true,
	UrgencyEmergency: true,
}

func ParseUrgency(s string) (Urgency, error) {
	if s == "" {
		return UrgencyRoutine, nil
	}
	u := Urgency(s)
	if !validUrgencies[u] {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unsupported urgency: %s", s)
	}
	return u, nil
}

// Justification captures why a researcher needs the data. These fields are
// what reviewers see; keep them self-contained.
type Justification struct {
	Purpose        string `json:"purpose"`
	StudyID        string `json:"study_id,omitempty"`
	EthicsApproval string `json:"ethics_approval,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// Request is a pending approval request for one query. Requests are
// idempotent per query id: a second request updates the existing record.
type Request struct {
	QueryID       string        `json:"query_id"`
	Requester     string        `json:"requester"`
	Justification Justification `json:"justification"`
	Permissions   []string      `json:"permissions"`
	Urgency       Urgency       `json:"urgency"`
	Reviewers     []string      `json:"reviewers"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Decision is the terminal record for a reviewed query. It is appended to
// the query's decision history, never embedded destructively.
type Decision struct {
	QueryID    string            `json:"query_id"`
	Status     id.ApprovalStatus `json:"status"`
	ReviewerID string            `json:"reviewer_id"`
	Notes      string            `json:"notes,omitempty"`
	DecidedAt  time.Time         `json:"decided_at"`
}
