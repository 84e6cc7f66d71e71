package domain

import (
	"time"

	id "veil/pkg/domain"
)

// ResearchContext describes the study a query belongs to. It scopes entity
// extraction and bounds what the generated query may touch.
type ResearchContext struct {
	StudyID     string   `json:"study_id,omitempty"`
	Purpose     string   `json:"purpose,omitempty"`
	DataScope   []string `json:"data_scope,omitempty"`
	Institution string   `json:"institution,omitempty"`
}

// ResearchQueryDescriptor is the bounded, classified form of a natural
// language research question. It is the unit the approval workflow and
// executor operate on.
//
// Invariant: a restricted classification starts pending and is never
// approved without a recorded ApprovalDecision.
type ResearchQueryDescriptor struct {
	ID             string            `json:"id"`
	OriginalText   string            `json:"original_text"`
	GeneratedQuery string            `json:"generated_query"`
	Parameters     map[string]any    `json:"parameters"`
	Intent         Intent            `json:"intent"`
	IntentScore    float64           `json:"intent_score"`
	Entities       []string          `json:"entities"`
	Permissions    []string          `json:"permissions"`
	EstimatedCost  float64           `json:"estimated_cost"`
	Classification id.Sensitivity    `json:"classification"`
	ApprovalStatus id.ApprovalStatus `json:"approval_status"`
	CallerID       string            `json:"caller_id"`
	Context        ResearchContext   `json:"context"`
	CreatedAt      time.Time         `json:"created_at"`
	Warnings       []string          `json:"warnings,omitempty"`
}

// Intent is the closed set of research question shapes the translator
// recognizes.
type Intent string

const (
	IntentCorrelation Intent = "correlation_analysis"
	IntentTemporal    Intent = "temporal_analysis"
	IntentComparative Intent = "comparative_analysis"
	IntentPredictive  Intent = "predictive_analysis"
	IntentUnknown     Intent = "unknown"
)

// Row is one raw record returned by the external data store before
// anonymization.
type Row map[string]any
