// Package anonymize transforms raw research rows into privacy-preserving
// records. The pipeline runs, in order: quasi-identifier suppression,
// k-anonymity grouping, differential-privacy noise injection, temporal
// obfuscation, and linkage prevention.
package anonymize

import (
	"veil/internal/platform/config"
	id "veil/pkg/domain"
)

// DateGranularity selects how timestamps are truncated after jitter.
type DateGranularity string

const (
	GranularityDay   DateGranularity = "day"
	GranularityWeek  DateGranularity = "week"
	GranularityMonth DateGranularity = "month"
)

// Policy specifies one anonymization run. All thresholds are policy inputs;
// nothing here is hard-coded business logic.
type Policy struct {
	// K is the k-anonymity target: every surviving record must belong to an
	// equivalence class of at least K records.
	K int

	// Differential privacy parameters. Epsilon is spent per release against
	// EpsilonCap within the session's BudgetScope; scopes with different
	// caps account independently.
	Epsilon     float64
	EpsilonCap  float64
	BudgetScope string
	Delta       float64
	Sensitivity float64

	// Temporal obfuscation.
	JitterHours     int
	DateGranularity DateGranularity
	SeasonalMasking bool

	// SuppressFields are dropped before any grouping (and re-stripped at the
	// end in case generalization resurfaced them).
	SuppressFields []string

	// QuasiIdentifiers are the attributes records are partitioned by, in
	// generalization order: when a partition is too small the next attribute
	// in this list is generalized one level further.
	QuasiIdentifiers []string

	// NumericFields receive Laplace noise. TimestampFields are jittered and
	// truncated. IdentifierFields are replaced with one-way pseudonyms.
	NumericFields    []string
	TimestampFields  []string
	IdentifierFields []string
}

// QualityMetrics travels with every anonymized record.
type QualityMetrics struct {
	// KAnonymityLevel is the size of the record's equivalence class; never
	// below the policy K for records that leave the engine.
	KAnonymityLevel int `json:"k_anonymity_level"`
	// InformationLoss is the fraction of original attribute entropy removed
	// by generalization and suppression, in [0,1].
	InformationLoss float64 `json:"information_loss"`
	// PrivacyBudgetUsed is the session's cumulative epsilon spend within the
	// release's budget scope after this release.
	PrivacyBudgetUsed float64 `json:"privacy_budget_used"`
}

// AnonymizedRecord is one output row with its attached quality metrics.
type AnonymizedRecord struct {
	Data    map[string]any `json:"data"`
	Metrics QualityMetrics `json:"metrics"`
}

// defaultFieldGroups cover the therapeutic data model; callers may override
// per policy.
var (
	defaultSuppress    = []string{"name", "email", "address", "phone", "zip"}
	defaultQuasi       = []string{"age", "gender", "region"}
	defaultNumeric     = []string{"emotional_score", "engagement_score", "outcome_score"}
	defaultTimestamps  = []string{"session_date", "recorded_at"}
	defaultIdentifiers = []string{"subject_id", "session_id", "record_id"}
)

// PolicyForLevel maps an anonymization level to a concrete policy using the
// configured privacy parameters. Stronger levels target larger equivalence
// classes and spend smaller epsilon per release against a tighter cap. Each
// level's cap is its own budget scope, so a session's spend at one level
// never counts against another level's cap.
func PolicyForLevel(cfg config.Privacy, level id.AnonymizationLevel) Policy {
	p := Policy{
		BudgetScope:      string(level),
		Delta:            cfg.Delta,
		Sensitivity:      cfg.Sensitivity,
		JitterHours:      cfg.JitterHours,
		SuppressFields:   defaultSuppress,
		QuasiIdentifiers: defaultQuasi,
		NumericFields:    defaultNumeric,
		TimestampFields:  defaultTimestamps,
		IdentifierFields: defaultIdentifiers,
	}
	switch level {
	case id.AnonymizationBasic:
		p.K = cfg.SafeHarborK
		p.Epsilon = cfg.BasicEpsilon / 4
		p.EpsilonCap = cfg.BasicEpsilon
		p.DateGranularity = GranularityDay
	case id.AnonymizationMaximum:
		p.K = cfg.SafeHarborK * 2
		p.Epsilon = cfg.MaximumEpsilon / 4
		p.EpsilonCap = cfg.MaximumEpsilon
		p.DateGranularity = GranularityMonth
		p.SeasonalMasking = true
	default: // enhanced
		p.K = cfg.SafeHarborK
		p.Epsilon = cfg.EnhancedEpsilon / 4
		p.EpsilonCap = cfg.EnhancedEpsilon
		p.DateGranularity = GranularityWeek
	}
	return p
}
