// Package translate turns a natural-language research question plus research
// context into a bounded, classified query descriptor. The generated query
// never interpolates raw user text as SQL identifiers; free text only ever
// becomes bound parameters.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"veil/internal/domain"
	"veil/pkg/audit"
	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
)

// defaultRowLimit is the hard safety limit appended to every generated
// query.
const defaultRowLimit = 1000

// AuditPublisher emits audit events for translated queries.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	classifier     IntentClassifier
	rowLimit       int
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithRowLimit(limit int) Option {
	return func(s *Service) {
		s.rowLimit = limit
	}
}

func New(classifier IntentClassifier, opts ...Option) (*Service, error) {
	if classifier == nil {
		return nil, errors.New("intent classifier is required")
	}
	svc := &Service{
		classifier: classifier,
		rowLimit:   defaultRowLimit,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// columnsByDataType maps field groups to the columns the generator may
// select. This allowlist is the injection guard: no other identifier can
// appear in generated SQL.
var columnsByDataType = map[string][]string{
	"session_metadata":  {"session_id", "session_date", "duration_minutes"},
	"technique_usage":   {"technique"},
	"usage_metrics":     {"engagement_score"},
	"emotional_metrics": {"emotional_score", "outcome_score"},
	"conditions":        {"condition"},
	"demographics":      {"age", "gender", "region"},
	"clinical_notes":    {"clinical_note"},
	"crisis_flags":      {"crisis_flag"},
}

// Translate builds a descriptor for a research question. Unknown intent
// still yields a conservative, narrowly scoped query with a warning rather
// than failing outright; only input that supports no query at all is
// rejected.
func (s *Service) Translate(ctx context.Context, nlQuery string, rc domain.ResearchContext, callerID string) (*domain.ResearchQueryDescriptor, error) {
	trimmed := strings.TrimSpace(nlQuery)
	if trimmed == "" {
		return nil, dErrors.New(dErrors.CodeTranslation, "query text is empty")
	}

	intent, confidence := s.classifier.Classify(ctx, trimmed)
	conditions, dataTypes := extractEntities(trimmed)

	var warnings []string
	if intent == domain.IntentUnknown {
		warnings = append(warnings, "intent could not be classified; generated a conservative session-count query")
	}

	query, params := s.generate(intent, conditions, dataTypes, rc)
	classification := classify(query, dataTypes)
	permissions := derivePermissions(dataTypes, classification)

	descriptor := &domain.ResearchQueryDescriptor{
		ID:             uuid.NewString(),
		OriginalText:   trimmed,
		GeneratedQuery: query,
		Parameters:     params,
		Intent:         intent,
		IntentScore:    confidence,
		Entities:       append(append([]string{}, conditions...), dataTypes...),
		Permissions:    permissions,
		EstimatedCost:  estimateCost(intent, dataTypes),
		Classification: classification,
		ApprovalStatus: initialStatus(classification),
		CallerID:       callerID,
		Context:        rc,
		CreatedAt:      time.Now(),
		Warnings:       warnings,
	}

	if s.auditPublisher != nil {
		_ = s.auditPublisher.Emit(ctx, audit.Event{
			QueryID:  descriptor.ID,
			Actor:    callerID,
			Action:   string(audit.EventQueryTranslated),
			Decision: string(classification),
		})
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "query translated",
			"query_id", descriptor.ID,
			"intent", intent,
			"classification", classification,
			"caller_id", callerID,
		)
	}
	return descriptor, nil
}

// initialStatus applies the creation rule of the approval state machine:
// restricted classifications always enter pending; everything else is
// auto-approved on creation.
func initialStatus(classification id.Sensitivity) id.ApprovalStatus {
	if classification == id.SensitivityRestricted {
		return id.ApprovalPending
	}
	return id.ApprovalApproved
}

func (s *Service) generate(intent domain.Intent, conditions, dataTypes []string, rc domain.ResearchContext) (string, map[string]any) {
	params := map[string]any{}

	selectSubject := intent == domain.IntentPredictive
	for _, dt := range dataTypes {
		if dt == "clinical_notes" || dt == "crisis_flags" {
			selectSubject = true
		}
	}

	// Correlation and comparison over techniques aggregate per technique
	// instead of returning raw rows.
	grouped := !selectSubject &&
		(intent == domain.IntentCorrelation || intent == domain.IntentComparative) &&
		containsAny(dataTypes, "technique_usage")

	var cols []string
	if selectSubject {
		cols = append(cols, "subject_id")
	}
	for _, dt := range dataTypes {
		if grouped && dt != "technique_usage" {
			for _, col := range columnsByDataType[dt] {
				if isNumericColumn(col) {
					cols = append(cols, fmt.Sprintf("AVG(%s) AS %s", col, col))
				}
			}
			continue
		}
		cols = append(cols, columnsByDataType[dt]...)
	}
	if len(cols) == 0 {
		// Conservative fallback: aggregate counts only.
		cols = []string{"COUNT(*) AS session_count"}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(" FROM therapy_sessions")

	where := []string{}
	arg := 1
	if len(conditions) > 0 {
		where = append(where, fmt.Sprintf("condition = ANY($%d)", arg))
		params["conditions"] = conditions
		arg++
	}
	if len(rc.DataScope) > 0 {
		where = append(where, fmt.Sprintf("data_scope = ANY($%d)", arg))
		params["data_scope"] = rc.DataScope
		arg++
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	if grouped {
		sb.WriteString(" GROUP BY technique")
	} else if intent == domain.IntentTemporal && len(dataTypes) > 0 {
		sb.WriteString(" ORDER BY session_date")
	}

	fmt.Fprintf(&sb, " LIMIT %d", s.rowLimit)
	return sb.String(), params
}

// classify derives sensitivity from what the generated query touches:
// unaliased subject identifiers are restricted, clinical/emotional fields
// confidential, session-only metadata internal, anything else public.
func classify(query string, dataTypes []string) id.Sensitivity {
	if strings.Contains(query, "subject_id") {
		return id.SensitivityRestricted
	}
	if containsAny(dataTypes, "emotional_metrics", "conditions", "demographics", "clinical_notes") {
		return id.SensitivityConfidential
	}
	if containsAny(dataTypes, "session_metadata", "usage_metrics", "technique_usage") {
		return id.SensitivityInternal
	}
	return id.SensitivityPublic
}

func derivePermissions(dataTypes []string, classification id.Sensitivity) []string {
	perms := make([]string, 0, len(dataTypes)+1)
	for _, dt := range dataTypes {
		perms = append(perms, "read:"+dt)
	}
	if classification == id.SensitivityRestricted {
		perms = append(perms, "read:identifiers")
	}
	if len(perms) == 0 {
		perms = append(perms, "read:aggregates")
	}
	return perms
}

// estimateCost is a coarse planning signal, not a promise: joins and
// subject-level scans dominate.
func estimateCost(intent domain.Intent, dataTypes []string) float64 {
	cost := 1.0
	switch intent {
	case domain.IntentPredictive:
		cost = 5.0
	case domain.IntentCorrelation, domain.IntentComparative:
		cost = 3.0
	case domain.IntentTemporal:
		cost = 2.0
	}
	return cost + float64(len(dataTypes))*0.5
}

// isNumericColumn reports whether a column can be aggregated with AVG.
func isNumericColumn(col string) bool {
	switch col {
	case "emotional_score", "outcome_score", "engagement_score", "duration_minutes", "age":
		return true
	}
	return false
}

func containsAny(haystack []string, needles ...string) bool {
	for _, h := range haystack {
		for _, n := range needles {
			if h == n {
				return true
			}
		}
	}
	return false
}
