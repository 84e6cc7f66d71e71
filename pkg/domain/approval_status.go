package domain

import dErrors "veil/pkg/domain-errors"

// ApprovalStatus tracks where a research query sits in the approval state
// machine. Approved and denied are terminal.
type ApprovalStatus string

const (
	ApprovalPending        ApprovalStatus = "pending"
	ApprovalApproved       ApprovalStatus = "approved"
	ApprovalDenied         ApprovalStatus = "denied"
	ApprovalRequiresReview ApprovalStatus = "requires_review"
)

// approvalTransitions is the single source of truth for legal transitions.
var approvalTransitions = map[ApprovalStatus][]ApprovalStatus{
	ApprovalPending:        {ApprovalApproved, ApprovalDenied, ApprovalRequiresReview},
	ApprovalRequiresReview: {ApprovalApproved, ApprovalDenied},
	ApprovalApproved:       nil,
	ApprovalDenied:         nil,
}

func ParseApprovalStatus(s string) (ApprovalStatus, error) {
	v := ApprovalStatus(s)
	if _, ok := approvalTransitions[v]; !ok {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unsupported approval status: %s", s)
	}
	return v, nil
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s ApprovalStatus) CanTransitionTo(next ApprovalStatus) bool {
	for _, allowed := range approvalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status accepts no further transitions.
func (s ApprovalStatus) Terminal() bool {
	return s == ApprovalApproved || s == ApprovalDenied
}
