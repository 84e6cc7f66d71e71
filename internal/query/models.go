package query

import (
	"context"
	"time"

	"veil/internal/anonymize"
	"veil/internal/domain"
	id "veil/pkg/domain"
)

// RawDataStore runs generated SQL against the external research data store.
// Implementations must honor ctx deadlines.
type RawDataStore interface {
	RunQuery(ctx context.Context, sql string, params map[string]any) ([]domain.Row, error)
}

// PrivacyMetrics aggregates per-record quality metrics across a result set.
type PrivacyMetrics struct {
	KAnonymityLevel   float64 `json:"k_anonymity_level"`
	InformationLoss   float64 `json:"information_loss"`
	PrivacyBudgetUsed float64 `json:"privacy_budget_used"`
}

// Compliance summarizes the regulatory posture of a result set.
type Compliance struct {
	HIPAACompliant   bool `json:"hipaa_compliant"`
	GDPRCompliant    bool `json:"gdpr_compliant"`
	ApprovalRequired bool `json:"approval_required"`
}

// ResultMetadata describes how a result set was produced.
type ResultMetadata struct {
	RecordCount        int                   `json:"record_count"`
	AnonymizationLevel id.AnonymizationLevel `json:"anonymization_level"`
	PrivacyMetrics     PrivacyMetrics        `json:"privacy_metrics"`
	ExecutionTime      time.Duration         `json:"execution_time"`
	CacheHit           bool                  `json:"cache_hit"`
	Compliance         Compliance            `json:"compliance"`
}

// QueryResult is the anonymized, governance-checked answer to a research
// query.
type QueryResult struct {
	QueryID  string                       `json:"query_id"`
	Records  []anonymize.AnonymizedRecord `json:"records"`
	Metadata ResultMetadata               `json:"metadata"`
	Warnings []string                     `json:"warnings,omitempty"`
}
