package translate

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"veil/internal/domain"
	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
)

type TranslatorSuite struct {
	suite.Suite
	service *Service
	ctx     context.Context
}

func TestTranslatorSuite(t *testing.T) {
	suite.Run(t, new(TranslatorSuite))
}

func (s *TranslatorSuite) SetupTest() {
	var err error
	s.service, err = New(NewKeywordClassifier())
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *TranslatorSuite) TestNew() {
	_, err := New(nil)
	s.Error(err)
}

// TestCorrelationScenario covers the canonical research question end to
// end: intent, classification, auto-approval, and the hard row limit.
func (s *TranslatorSuite) TestCorrelationScenario() {
	descriptor, err := s.service.Translate(s.ctx,
		"What's the correlation between therapeutic technique and emotional outcomes for anxiety patients?",
		domain.ResearchContext{DataScope: []string{"sessions"}},
		"researcher-1",
	)
	s.Require().NoError(err)

	s.Equal(domain.IntentCorrelation, descriptor.Intent)
	s.Equal(id.SensitivityConfidential, descriptor.Classification)
	s.Equal(id.ApprovalApproved, descriptor.ApprovalStatus)
	s.Contains(descriptor.GeneratedQuery, "LIMIT")
	s.Contains(descriptor.Entities, "anxiety")
	s.Contains(descriptor.Parameters, "conditions")
	s.Greater(descriptor.IntentScore, 0.0)
}

func (s *TranslatorSuite) TestIntentClassification() {
	cases := []struct {
		question string
		intent   domain.Intent
	}{
		{"How do emotional scores trend over time for depression patients?", domain.IntentTemporal},
		{"Compare engagement between CBT and mindfulness sessions", domain.IntentComparative},
		{"Predict the risk of crisis events from session engagement", domain.IntentPredictive},
		{"correlation between technique and outcome", domain.IntentCorrelation},
	}
	for _, tc := range cases {
		descriptor, err := s.service.Translate(s.ctx, tc.question, domain.ResearchContext{}, "researcher-1")
		s.Require().NoError(err)
		s.Equal(tc.intent, descriptor.Intent, tc.question)
	}
}

func (s *TranslatorSuite) TestUnknownIntentProducesConservativeQuery() {
	descriptor, err := s.service.Translate(s.ctx, "tell me something interesting", domain.ResearchContext{}, "researcher-1")
	s.Require().NoError(err)
	s.Equal(domain.IntentUnknown, descriptor.Intent)
	s.NotEmpty(descriptor.Warnings)
	s.Contains(descriptor.GeneratedQuery, "COUNT(*)")
	s.Contains(descriptor.GeneratedQuery, "LIMIT")
}

func (s *TranslatorSuite) TestEmptyQueryRejected() {
	_, err := s.service.Translate(s.ctx, "   ", domain.ResearchContext{}, "researcher-1")
	s.Error(err)
	s.True(dErrors.Is(err, dErrors.CodeTranslation))
}

func (s *TranslatorSuite) TestSensitivityClassification() {
	s.Run("subject identifiers force restricted and pending approval", func() {
		descriptor, err := s.service.Translate(s.ctx,
			"Predict crisis likelihood per patient from clinical notes",
			domain.ResearchContext{}, "researcher-1")
		s.Require().NoError(err)
		s.Equal(id.SensitivityRestricted, descriptor.Classification)
		s.Equal(id.ApprovalPending, descriptor.ApprovalStatus)
		s.Contains(descriptor.GeneratedQuery, "subject_id")
		s.Contains(descriptor.Permissions, "read:identifiers")
	})

	s.Run("session metadata only is internal", func() {
		descriptor, err := s.service.Translate(s.ctx,
			"How many sessions happen and how does usage change?",
			domain.ResearchContext{}, "researcher-1")
		s.Require().NoError(err)
		s.Equal(id.SensitivityInternal, descriptor.Classification)
		s.Equal(id.ApprovalApproved, descriptor.ApprovalStatus)
	})

	s.Run("no recognized fields is public", func() {
		descriptor, err := s.service.Translate(s.ctx,
			"what is the total count of records over time",
			domain.ResearchContext{}, "researcher-1")
		s.Require().NoError(err)
		s.Equal(id.SensitivityPublic, descriptor.Classification)
	})
}

// TestNoRawTextInIdentifiers guards the injection boundary: user text never
// appears in generated SQL outside of bound parameters.
func (s *TranslatorSuite) TestNoRawTextInIdentifiers() {
	malicious := "correlation between technique; DROP TABLE therapy_sessions; --"
	descriptor, err := s.service.Translate(s.ctx, malicious, domain.ResearchContext{}, "researcher-1")
	s.Require().NoError(err)
	s.NotContains(descriptor.GeneratedQuery, "DROP TABLE")
	s.NotContains(strings.ToLower(descriptor.GeneratedQuery), "--")
}

func (s *TranslatorSuite) TestRowLimitConfigurable() {
	svc, err := New(NewKeywordClassifier(), WithRowLimit(50))
	s.Require().NoError(err)
	descriptor, err := svc.Translate(s.ctx, "session counts", domain.ResearchContext{}, "researcher-1")
	s.Require().NoError(err)
	s.Contains(descriptor.GeneratedQuery, "LIMIT 50")
}
