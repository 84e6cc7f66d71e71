package query

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veil/internal/anonymize"
	"veil/internal/approval"
	"veil/internal/consent"
	consentsvc "veil/internal/consent/service"
	"veil/internal/domain"
	"veil/internal/platform/config"
	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
	"veil/pkg/sentinel"
)

type fakeRawStore struct {
	mu       sync.Mutex
	rows     []domain.Row
	failures int
	failWith error
	calls    int
}

func (f *fakeRawStore) RunQuery(_ context.Context, _ string, _ map[string]any) ([]domain.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, f.failWith
	}
	out := make([]domain.Row, len(f.rows))
	for i, row := range f.rows {
		clone := make(domain.Row, len(row))
		for k, v := range row {
			clone[k] = v
		}
		out[i] = clone
	}
	return out, nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	callers []string
}

func (f *fakeRecorder) RecordExecution(callerID string, _ []string, _ time.Duration, _ bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callers = append(f.callers, callerID)
}

type QueryServiceSuite struct {
	suite.Suite
	ctx       context.Context
	service   *Service
	approvals *approval.Service
	consents  *consentsvc.Service
	raw       *fakeRawStore
	recorder  *fakeRecorder
	privacy   config.Privacy
}

func (s *QueryServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.privacy = config.Privacy{
		SafeHarborK:     2,
		BasicEpsilon:    2.0,
		EnhancedEpsilon: 1.0,
		MaximumEpsilon:  0.5,
		Delta:           1e-5,
		Sensitivity:     1.0,
		JitterHours:     72,
		HashSalt:        "test-salt",
	}

	var err error
	s.approvals, err = approval.New(approval.NewInMemoryStore())
	s.Require().NoError(err)

	s.consents, err = consentsvc.New(consent.NewInMemoryStore())
	s.Require().NoError(err)

	s.raw = &fakeRawStore{rows: s.sessionRows()}

	engine, err := anonymize.New(anonymize.NewInMemoryBudgetStore(), s.privacy.HashSalt)
	s.Require().NoError(err)

	s.recorder = &fakeRecorder{}
	s.service, err = New(s.approvals, s.consents, s.raw, engine,
		NewInMemoryCache(time.Hour), s.privacy,
		config.Retry{MaxAttempts: 3, InitialBackoff: time.Millisecond, StorageTimeout: time.Second},
		WithRecorder(s.recorder),
	)
	s.Require().NoError(err)
}

func (s *QueryServiceSuite) sessionRows() []domain.Row {
	rows := make([]domain.Row, 0, 4)
	for i := 0; i < 4; i++ {
		rows = append(rows, domain.Row{
			"subject_id":   fmt.Sprintf("subject-%d", i%2),
			"age":          30,
			"gender":       "f",
			"region":       "west",
			"session_date": "2026-02-10",
			"duration":     45,
		})
	}
	return rows
}

func (s *QueryServiceSuite) grantConsent(subjectID string, level id.ConsentLevel) {
	_, err := s.consents.InitializeConsent(s.ctx, subjectID, level)
	s.Require().NoError(err)
}

func (s *QueryServiceSuite) registerApproved(queryID string) {
	descriptor := &domain.ResearchQueryDescriptor{
		ID:             queryID,
		GeneratedQuery: "SELECT duration FROM therapy_sessions LIMIT 1000",
		Parameters:     map[string]any{},
		Classification: id.SensitivityInternal,
		ApprovalStatus: id.ApprovalApproved,
		Permissions:    []string{"read:session_metadata"},
		CallerID:       "researcher-1",
	}
	s.Require().NoError(s.approvals.Register(s.ctx, descriptor))
}

func (s *QueryServiceSuite) TestUnknownQueryNotFound() {
	_, err := s.service.Execute(s.ctx, "missing", "researcher-1", id.AnonymizationBasic)
	s.Require().Error(err)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func (s *QueryServiceSuite) TestPendingQueryRequiresApproval() {
	descriptor := &domain.ResearchQueryDescriptor{
		ID:             "q-pending",
		Classification: id.SensitivityRestricted,
		ApprovalStatus: id.ApprovalPending,
	}
	s.Require().NoError(s.approvals.Register(s.ctx, descriptor))

	_, err := s.service.Execute(s.ctx, "q-pending", "researcher-1", id.AnonymizationBasic)
	s.Require().Error(err)
	s.Equal(dErrors.CodeApprovalRequired, dErrors.CodeOf(err))
}

func (s *QueryServiceSuite) TestDeniedQueryRejected() {
	descriptor := &domain.ResearchQueryDescriptor{
		ID:             "q-denied",
		Classification: id.SensitivityRestricted,
		ApprovalStatus: id.ApprovalPending,
	}
	s.Require().NoError(s.approvals.Register(s.ctx, descriptor))
	_, err := s.approvals.Decide(s.ctx, "q-denied", id.ApprovalDenied, "reviewer-1", "")
	s.Require().NoError(err)

	_, err = s.service.Execute(s.ctx, "q-denied", "researcher-1", id.AnonymizationBasic)
	s.Require().Error(err)
	s.Equal(dErrors.CodeApprovalDenied, dErrors.CodeOf(err))
}

func (s *QueryServiceSuite) TestExecuteAnonymizesAndCaches() {
	s.grantConsent("subject-0", id.ConsentLevelMinimal)
	s.grantConsent("subject-1", id.ConsentLevelMinimal)
	s.registerApproved("q-1")

	first, err := s.service.Execute(s.ctx, "q-1", "researcher-1", id.AnonymizationBasic)
	s.Require().NoError(err)
	s.False(first.Metadata.CacheHit)
	s.Equal(4, first.Metadata.RecordCount)
	s.Equal(id.AnonymizationBasic, first.Metadata.AnonymizationLevel)
	s.GreaterOrEqual(first.Metadata.PrivacyMetrics.KAnonymityLevel, float64(s.privacy.SafeHarborK))
	s.True(first.Metadata.Compliance.HIPAACompliant)
	s.True(first.Metadata.Compliance.GDPRCompliant)
	s.False(first.Metadata.Compliance.ApprovalRequired)
	for _, record := range first.Records {
		s.NotEqual("subject-0", record.Data["subject_id"])
		s.NotEqual("subject-1", record.Data["subject_id"])
	}

	second, err := s.service.Execute(s.ctx, "q-1", "researcher-1", id.AnonymizationBasic)
	s.Require().NoError(err)
	s.True(second.Metadata.CacheHit)
	s.Equal(1, s.raw.calls)
}

func (s *QueryServiceSuite) TestCacheIsScopedPerLevel() {
	s.grantConsent("subject-0", id.ConsentLevelMinimal)
	s.grantConsent("subject-1", id.ConsentLevelMinimal)
	s.registerApproved("q-2")

	_, err := s.service.Execute(s.ctx, "q-2", "researcher-1", id.AnonymizationBasic)
	s.Require().NoError(err)
	result, err := s.service.Execute(s.ctx, "q-2", "researcher-1", id.AnonymizationMaximum)
	s.Require().NoError(err)
	s.False(result.Metadata.CacheHit)
	s.Equal(2, s.raw.calls)
}

// TestExecutionAttributedToExecutingCaller: analytics follow whoever ran the
// query, not whoever translated and registered it.
func (s *QueryServiceSuite) TestExecutionAttributedToExecutingCaller() {
	s.grantConsent("subject-0", id.ConsentLevelMinimal)
	s.grantConsent("subject-1", id.ConsentLevelMinimal)
	s.registerApproved("q-shared") // registered by researcher-1

	_, err := s.service.Execute(s.ctx, "q-shared", "analyst-2", id.AnonymizationBasic)
	s.Require().NoError(err)

	// Cache hits are attributed to the hitting caller too.
	_, err = s.service.Execute(s.ctx, "q-shared", "analyst-3", id.AnonymizationBasic)
	s.Require().NoError(err)

	s.Equal([]string{"analyst-2", "analyst-3"}, s.recorder.callers)
}

func (s *QueryServiceSuite) TestUnconsentedSubjectsExcluded() {
	s.grantConsent("subject-0", id.ConsentLevelMinimal)
	// subject-1 never consented.
	s.registerApproved("q-3")

	result, err := s.service.Execute(s.ctx, "q-3", "researcher-1", id.AnonymizationBasic)
	s.Require().NoError(err)
	s.Equal(2, result.Metadata.RecordCount)
	s.Contains(result.Warnings, "2 records excluded by consent limitations")
}

func (s *QueryServiceSuite) TestNoConsentedSubjectsFails() {
	s.registerApproved("q-4")

	_, err := s.service.Execute(s.ctx, "q-4", "researcher-1", id.AnonymizationBasic)
	s.Require().Error(err)
	s.Equal(dErrors.CodeMissingConsent, dErrors.CodeOf(err))
}

func (s *QueryServiceSuite) TestWithdrawnSubjectExcluded() {
	s.grantConsent("subject-0", id.ConsentLevelMinimal)
	s.grantConsent("subject-1", id.ConsentLevelMinimal)
	_, err := s.consents.RequestWithdrawal(s.ctx, "subject-1", "no longer participating", true)
	s.Require().NoError(err)
	s.registerApproved("q-5")

	result, err := s.service.Execute(s.ctx, "q-5", "researcher-1", id.AnonymizationBasic)
	s.Require().NoError(err)
	s.Equal(2, result.Metadata.RecordCount)
}

func (s *QueryServiceSuite) TestRetriesTransientStorageFailures() {
	s.grantConsent("subject-0", id.ConsentLevelMinimal)
	s.grantConsent("subject-1", id.ConsentLevelMinimal)
	s.registerApproved("q-6")
	s.raw.failures = 2
	s.raw.failWith = sentinel.ErrUnavailable

	result, err := s.service.Execute(s.ctx, "q-6", "researcher-1", id.AnonymizationBasic)
	s.Require().NoError(err)
	s.Equal(4, result.Metadata.RecordCount)
	s.Equal(3, s.raw.calls)
}

func (s *QueryServiceSuite) TestStorageFailureExhaustsRetries() {
	s.registerApproved("q-7")
	s.raw.failures = 3
	s.raw.failWith = sentinel.ErrUnavailable

	_, err := s.service.Execute(s.ctx, "q-7", "researcher-1", id.AnonymizationBasic)
	s.Require().Error(err)
	s.Equal(dErrors.CodeStorage, dErrors.CodeOf(err))
	s.Equal(3, s.raw.calls)
}

func (s *QueryServiceSuite) TestBudgetExhaustionSurfaces() {
	s.grantConsent("subject-0", id.ConsentLevelMinimal)
	s.grantConsent("subject-1", id.ConsentLevelMinimal)

	// Each basic execution spends a quarter of the cap; the fifth distinct
	// query pushes the caller's session over it.
	for i := 0; i < 4; i++ {
		queryID := fmt.Sprintf("q-budget-%d", i)
		s.registerApproved(queryID)
		_, err := s.service.Execute(s.ctx, queryID, "researcher-1", id.AnonymizationBasic)
		s.Require().NoError(err)
	}

	s.registerApproved("q-budget-final")
	_, err := s.service.Execute(s.ctx, "q-budget-final", "researcher-1", id.AnonymizationBasic)
	s.Require().Error(err)
	s.Equal(dErrors.CodeBudgetExhausted, dErrors.CodeOf(err))

	// The maximum level spends against its own cap: exhausting the basic
	// scope never refuses the session's first maximum-level release.
	result, err := s.service.Execute(s.ctx, "q-budget-final", "researcher-1", id.AnonymizationMaximum)
	s.Require().NoError(err)
	s.Equal(4, result.Metadata.RecordCount)
}

func TestQueryServiceSuite(t *testing.T) {
	suite.Run(t, new(QueryServiceSuite))
}
