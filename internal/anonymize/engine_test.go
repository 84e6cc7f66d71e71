package anonymize

import (
	"context"
	"math/rand"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/suite"

	"veil/internal/domain"
	dErrors "veil/pkg/domain-errors"
)

// =============================================================================
// Anonymization Engine Test Suite
// =============================================================================
// Justification for unit tests: the k-anonymity floor and budget accounting
// are hard privacy invariants; they must hold on every path including the
// merge/suppression fallback, which end-to-end tests cannot force reliably.

type EngineSuite struct {
	suite.Suite
	budget *InMemoryBudgetStore
	engine *Engine
	ctx    context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.budget = NewInMemoryBudgetStore()
	s.ctx = context.Background()

	var err error
	s.engine, err = New(s.budget, "test-salt", WithRandSource(rand.NewSource(42)))
	s.Require().NoError(err)
}

func (s *EngineSuite) policy() Policy {
	return Policy{
		K:                2,
		Epsilon:          0.25,
		EpsilonCap:       1.0,
		Sensitivity:      1.0,
		JitterHours:      72,
		DateGranularity:  GranularityWeek,
		SuppressFields:   []string{"name", "zip"},
		QuasiIdentifiers: []string{"age", "gender", "region"},
		NumericFields:    []string{"emotional_score"},
		TimestampFields:  []string{"session_date"},
		IdentifierFields: []string{"subject_id", "session_id"},
	}
}

func (s *EngineSuite) row(subject string, age int, gender, region string, score float64) domain.Row {
	return domain.Row{
		"subject_id":      subject,
		"session_id":      "sess-" + subject,
		"name":            "Real Name",
		"zip":             "90210",
		"age":             age,
		"gender":          gender,
		"region":          region,
		"emotional_score": score,
		"session_date":    time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
	}
}

func (s *EngineSuite) TestKAnonymityFloorHolds() {
	records := []domain.Row{
		s.row("a", 31, "f", "north", 0.7),
		s.row("b", 33, "f", "north", 0.6),
		s.row("c", 35, "f", "north", 0.5),
		s.row("d", 62, "m", "south", 0.4),
		s.row("e", 64, "m", "south", 0.3),
	}
	out, err := s.engine.Anonymize(s.ctx, "session-1", "export-1", records, s.policy())
	s.Require().NoError(err)
	s.NotEmpty(out)
	for _, rec := range out {
		s.GreaterOrEqual(rec.Metrics.KAnonymityLevel, 2)
	}
}

// TestUndersizedPartitionSuppressed: k=5 with only 3 records sharing one
// quasi-identifier tuple means no merge can reach 5; nothing may leave with
// a smaller equivalence class.
func (s *EngineSuite) TestUndersizedPartitionSuppressed() {
	policy := s.policy()
	policy.K = 5
	records := []domain.Row{
		s.row("a", 31, "f", "north", 0.7),
		s.row("b", 31, "f", "north", 0.6),
		s.row("c", 31, "f", "north", 0.5),
	}
	out, err := s.engine.Anonymize(s.ctx, "session-2", "export-1", records, policy)
	s.Require().NoError(err)
	for _, rec := range out {
		s.GreaterOrEqual(rec.Metrics.KAnonymityLevel, 5)
	}
	s.Empty(out)
}

func (s *EngineSuite) TestMergeByGeneralization() {
	// Two partitions of 1 and 3 under exact ages; a decade bucket merges
	// them into one class of 4.
	policy := s.policy()
	policy.K = 4
	policy.QuasiIdentifiers = []string{"age"}
	records := []domain.Row{
		s.row("a", 31, "f", "north", 0.7),
		s.row("b", 33, "f", "north", 0.6),
		s.row("c", 35, "f", "north", 0.5),
		s.row("d", 38, "f", "north", 0.4),
	}
	out, err := s.engine.Anonymize(s.ctx, "session-3", "export-1", records, policy)
	s.Require().NoError(err)
	s.Len(out, 4)
	for _, rec := range out {
		s.Equal(4, rec.Metrics.KAnonymityLevel)
		s.Equal("30-39", rec.Data["age"])
	}
}

func (s *EngineSuite) TestSuppressionFieldsNeverLeak() {
	records := []domain.Row{
		s.row("a", 31, "f", "north", 0.7),
		s.row("b", 31, "f", "north", 0.6),
	}
	out, err := s.engine.Anonymize(s.ctx, "session-4", "export-1", records, s.policy())
	s.Require().NoError(err)
	for _, rec := range out {
		s.NotContains(rec.Data, "name")
		s.NotContains(rec.Data, "zip")
	}
}

func (s *EngineSuite) TestIdentifiersPseudonymized() {
	records := []domain.Row{
		s.row("a", 31, "f", "north", 0.7),
		s.row("b", 31, "f", "north", 0.6),
	}
	out, err := s.engine.Anonymize(s.ctx, "session-5", "export-1", records, s.policy())
	s.Require().NoError(err)
	s.NotEqual("a", out[0].Data["subject_id"])

	// A second export derives a different key: the same entity cannot be
	// joined across exports.
	s.budget.Reset(s.ctx, "session-5")
	out2, err := s.engine.Anonymize(s.ctx, "session-5", "export-2", records, s.policy())
	s.Require().NoError(err)
	s.NotEqual(out[0].Data["subject_id"], out2[0].Data["subject_id"])
}

func (s *EngineSuite) TestBudgetAccounting() {
	records := []domain.Row{
		s.row("a", 31, "f", "north", 0.7),
		s.row("b", 31, "f", "north", 0.6),
	}
	policy := s.policy() // epsilon 0.25, cap 1.0

	s.Run("spend is monotonically non-decreasing", func() {
		var last float64
		for i := 0; i < 4; i++ {
			out, err := s.engine.Anonymize(s.ctx, "session-6", "export-1", records, policy)
			s.Require().NoError(err)
			s.GreaterOrEqual(out[0].Metrics.PrivacyBudgetUsed, last)
			last = out[0].Metrics.PrivacyBudgetUsed
		}
		s.InDelta(1.0, last, 1e-9)
	})

	s.Run("exhaustion is a typed refusal, not clipped output", func() {
		_, err := s.engine.Anonymize(s.ctx, "session-6", "export-1", records, policy)
		s.Error(err)
		s.True(dErrors.Is(err, dErrors.CodeBudgetExhausted))

		spent, err := s.engine.BudgetSpent(s.ctx, "session-6")
		s.NoError(err)
		s.InDelta(1.0, spent, 1e-9)
	})

	s.Run("reset opens a fresh budget window", func() {
		s.Require().NoError(s.engine.ResetBudget(s.ctx, "session-6"))
		_, err := s.engine.Anonymize(s.ctx, "session-6", "export-1", records, policy)
		s.NoError(err)
	})
}

// TestBudgetScopesAccountIndependently: each level carries its own cap, so
// exhausting one scope must not refuse a session's first release in another.
func (s *EngineSuite) TestBudgetScopesAccountIndependently() {
	records := []domain.Row{
		s.row("a", 31, "f", "north", 0.7),
		s.row("b", 31, "f", "north", 0.6),
	}
	loose := s.policy() // epsilon 0.25, cap 1.0
	loose.BudgetScope = "basic"

	strict := s.policy()
	strict.Epsilon = 0.125
	strict.EpsilonCap = 0.5
	strict.BudgetScope = "maximum"

	for i := 0; i < 4; i++ {
		_, err := s.engine.Anonymize(s.ctx, "session-10", "export-1", records, loose)
		s.Require().NoError(err)
	}
	_, err := s.engine.Anonymize(s.ctx, "session-10", "export-1", records, loose)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeBudgetExhausted))

	// The strict scope has seen no spend yet; its first release succeeds and
	// reports only its own scope's spend.
	out, err := s.engine.Anonymize(s.ctx, "session-10", "export-1", records, strict)
	s.Require().NoError(err)
	s.InDelta(0.125, out[0].Metrics.PrivacyBudgetUsed, 1e-9)

	// The session total sums across scopes.
	spent, err := s.engine.BudgetSpent(s.ctx, "session-10")
	s.NoError(err)
	s.InDelta(1.125, spent, 1e-9)

	// Reset clears every scope.
	s.Require().NoError(s.engine.ResetBudget(s.ctx, "session-10"))
	spent, err = s.engine.BudgetSpent(s.ctx, "session-10")
	s.NoError(err)
	s.Zero(spent)
}

func (s *EngineSuite) TestStringBucketsKeepFirstRune() {
	s.Equal("Ö*", generalize("östlich", 1))
	s.Equal("北*", generalize("北区", 1))
	s.True(utf8.ValidString(generalize("østjylland", 1)))
}

func (s *EngineSuite) TestInformationLossBounds() {
	records := []domain.Row{
		s.row("a", 31, "f", "north", 0.7),
		s.row("b", 55, "m", "south", 0.6),
		s.row("c", 42, "f", "east", 0.5),
		s.row("d", 67, "m", "west", 0.4),
	}
	out, err := s.engine.Anonymize(s.ctx, "session-7", "export-1", records, s.policy())
	s.Require().NoError(err)
	for _, rec := range out {
		s.GreaterOrEqual(rec.Metrics.InformationLoss, 0.0)
		s.LessOrEqual(rec.Metrics.InformationLoss, 1.0)
		// Distinct tuples forced heavy generalization; loss must register.
		s.Greater(rec.Metrics.InformationLoss, 0.0)
	}
}

func (s *EngineSuite) TestInputRecordsUntouched() {
	records := []domain.Row{
		s.row("a", 31, "f", "north", 0.7),
		s.row("b", 31, "f", "north", 0.6),
	}
	_, err := s.engine.Anonymize(s.ctx, "session-8", "export-1", records, s.policy())
	s.Require().NoError(err)
	s.Equal("Real Name", records[0]["name"])
	s.Equal(31, records[0]["age"])
}

func (s *EngineSuite) TestEmptyBatch() {
	out, err := s.engine.Anonymize(s.ctx, "session-9", "export-1", nil, s.policy())
	s.NoError(err)
	s.Nil(out)
}
