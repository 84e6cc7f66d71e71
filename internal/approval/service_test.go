package approval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veil/internal/domain"
	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
)

type recordingNotifier struct {
	calls []string
	err   error
}

func (n *recordingNotifier) NotifyReviewers(_ context.Context, request *Request) error {
	n.calls = append(n.calls, request.QueryID)
	return n.err
}

type ApprovalServiceSuite struct {
	suite.Suite
	ctx      context.Context
	service  *Service
	notifier *recordingNotifier
	clock    time.Time
}

func (s *ApprovalServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.notifier = &recordingNotifier{}
	s.clock = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	var err error
	s.service, err = New(NewInMemoryStore(),
		WithNotifier(s.notifier),
		WithClock(func() time.Time { return s.clock }),
	)
	s.Require().NoError(err)
}

func (s *ApprovalServiceSuite) register(queryID string, classification id.Sensitivity, status id.ApprovalStatus) *domain.ResearchQueryDescriptor {
	descriptor := &domain.ResearchQueryDescriptor{
		ID:             queryID,
		OriginalText:   "correlation between anxiety and technique_usage",
		Classification: classification,
		ApprovalStatus: status,
		Permissions:    []string{"read:technique_usage"},
		CallerID:       "researcher-1",
	}
	s.Require().NoError(s.service.Register(s.ctx, descriptor))
	return descriptor
}

func (s *ApprovalServiceSuite) TestRegisterRestrictedMustBePending() {
	descriptor := &domain.ResearchQueryDescriptor{
		ID:             "q-restricted",
		Classification: id.SensitivityRestricted,
		ApprovalStatus: id.ApprovalApproved,
	}
	err := s.service.Register(s.ctx, descriptor)
	s.Require().Error(err)
	s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func (s *ApprovalServiceSuite) TestRequestApprovalIsIdempotent() {
	s.register("q-1", id.SensitivityRestricted, id.ApprovalPending)

	first, err := s.service.RequestApproval(s.ctx, "q-1", "researcher-1",
		Justification{Purpose: "longitudinal anxiety study", StudyID: "ST-204"},
		UrgencyRoutine, []string{"ethics-board"})
	s.Require().NoError(err)

	s.clock = s.clock.Add(2 * time.Hour)
	second, err := s.service.RequestApproval(s.ctx, "q-1", "researcher-1",
		Justification{Purpose: "longitudinal anxiety study", StudyID: "ST-204"},
		UrgencyExpedited, []string{"ethics-board", "privacy-officer"})
	s.Require().NoError(err)

	s.Equal(first.CreatedAt, second.CreatedAt)
	s.True(second.UpdatedAt.After(first.CreatedAt))
	s.Equal(UrgencyExpedited, second.Urgency)
	s.Len(s.notifier.calls, 2)
}

func (s *ApprovalServiceSuite) TestRequestApprovalUnknownQuery() {
	_, err := s.service.RequestApproval(s.ctx, "missing", "researcher-1",
		Justification{}, UrgencyRoutine, nil)
	s.Require().Error(err)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func (s *ApprovalServiceSuite) TestNotifierFailureDoesNotBlockRequest() {
	s.register("q-2", id.SensitivityRestricted, id.ApprovalPending)
	s.notifier.err = errors.New("smtp unreachable")

	_, err := s.service.RequestApproval(s.ctx, "q-2", "researcher-1",
		Justification{Purpose: "cohort analysis"}, UrgencyRoutine, []string{"ethics-board"})
	s.Require().NoError(err)
}

func (s *ApprovalServiceSuite) TestDecideApprovesPendingQuery() {
	s.register("q-3", id.SensitivityRestricted, id.ApprovalPending)

	descriptor, err := s.service.Decide(s.ctx, "q-3", id.ApprovalApproved, "reviewer-7", "ethics cleared")
	s.Require().NoError(err)
	s.Equal(id.ApprovalApproved, descriptor.ApprovalStatus)

	decisions, err := s.service.Decisions(s.ctx, "q-3")
	s.Require().NoError(err)
	s.Require().Len(decisions, 1)
	s.Equal("reviewer-7", decisions[0].ReviewerID)
	s.Equal(s.clock, decisions[0].DecidedAt)
}

func (s *ApprovalServiceSuite) TestRequiresReviewThenDenied() {
	s.register("q-4", id.SensitivityRestricted, id.ApprovalPending)

	_, err := s.service.Decide(s.ctx, "q-4", id.ApprovalRequiresReview, "reviewer-7", "needs IRB paperwork")
	s.Require().NoError(err)

	descriptor, err := s.service.Decide(s.ctx, "q-4", id.ApprovalDenied, "reviewer-9", "no IRB approval")
	s.Require().NoError(err)
	s.Equal(id.ApprovalDenied, descriptor.ApprovalStatus)

	decisions, err := s.service.Decisions(s.ctx, "q-4")
	s.Require().NoError(err)
	s.Len(decisions, 2)
}

func (s *ApprovalServiceSuite) TestTerminalStatusIsImmutable() {
	s.register("q-5", id.SensitivityRestricted, id.ApprovalPending)

	_, err := s.service.Decide(s.ctx, "q-5", id.ApprovalDenied, "reviewer-7", "")
	s.Require().NoError(err)

	_, err = s.service.Decide(s.ctx, "q-5", id.ApprovalApproved, "reviewer-7", "changed my mind")
	s.Require().Error(err)
	s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))

	_, err = s.service.RequestApproval(s.ctx, "q-5", "researcher-1",
		Justification{}, UrgencyRoutine, nil)
	s.Require().Error(err)
	s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func (s *ApprovalServiceSuite) TestRestrictedNeverApprovedWithoutDecision() {
	s.register("q-6", id.SensitivityRestricted, id.ApprovalPending)

	descriptor, err := s.service.Get(s.ctx, "q-6")
	s.Require().NoError(err)
	s.Equal(id.ApprovalPending, descriptor.ApprovalStatus)

	decisions, err := s.service.Decisions(s.ctx, "q-6")
	s.Require().NoError(err)
	s.Empty(decisions)
}

func (s *ApprovalServiceSuite) TestDecideRejectsPendingAsDecision() {
	s.register("q-7", id.SensitivityRestricted, id.ApprovalPending)

	_, err := s.service.Decide(s.ctx, "q-7", id.ApprovalPending, "reviewer-7", "")
	s.Require().Error(err)
	s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func TestApprovalServiceSuite(t *testing.T) {
	suite.Run(t, new(ApprovalServiceSuite))
}
