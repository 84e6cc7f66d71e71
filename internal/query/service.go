// Package query executes approved research queries: it checks consent,
// fetches raw rows with bounded retries, anonymizes them, derives a
// compliance summary, and caches the result per (query, level).
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"veil/internal/anonymize"
	"veil/internal/consent"
	"veil/internal/domain"
	"veil/internal/platform/config"
	"veil/pkg/audit"
	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
	"veil/pkg/sentinel"
)

const consentCheckConcurrency = 8

// DescriptorSource resolves query ids to registered descriptors.
type DescriptorSource interface {
	Get(ctx context.Context, queryID string) (*domain.ResearchQueryDescriptor, error)
}

// ConsentValidator answers whether a subject's consent covers an activity.
type ConsentValidator interface {
	ValidateConsent(ctx context.Context, subjectID string, req consent.ValidationRequest) (*consent.ValidationResult, error)
}

// Anonymizer runs the anonymization pipeline over raw rows.
type Anonymizer interface {
	Anonymize(ctx context.Context, sessionID, exportID string, records []domain.Row, policy anonymize.Policy) ([]anonymize.AnonymizedRecord, error)
}

// Recorder receives execution outcomes for performance analytics.
type Recorder interface {
	RecordExecution(callerID string, dataTypes []string, duration time.Duration, cacheHit bool)
}

// AuditPublisher emits audit events for executions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	descriptors    DescriptorSource
	consents       ConsentValidator
	raw            RawDataStore
	engine         Anonymizer
	cache          Cache
	privacy        config.Privacy
	retry          config.Retry
	perf           Recorder
	logger         *slog.Logger
	auditPublisher AuditPublisher
	tracer         trace.Tracer
	group          singleflight.Group
	now            func() time.Time
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

func WithRecorder(recorder Recorder) Option {
	return func(s *Service) {
		s.perf = recorder
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(descriptors DescriptorSource, consents ConsentValidator, raw RawDataStore, engine Anonymizer, cache Cache, privacy config.Privacy, retry config.Retry, opts ...Option) (*Service, error) {
	if descriptors == nil || consents == nil || raw == nil || engine == nil || cache == nil {
		return nil, errors.New("descriptors, consents, raw store, engine, and cache are required")
	}
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	svc := &Service{
		descriptors: descriptors,
		consents:    consents,
		raw:         raw,
		engine:      engine,
		cache:       cache,
		privacy:     privacy,
		retry:       retry,
		tracer:      otel.Tracer("veil/query"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Execute runs an approved query at the requested anonymization level.
//
// A cache hit returns the stored result directly, skipping consent
// validation and anonymization. Concurrent identical misses are collapsed
// into one computation, and the computation runs on a detached context so
// an abandoned caller still leaves a warm cache behind.
func (s *Service) Execute(ctx context.Context, queryID, callerID string, level id.AnonymizationLevel) (*QueryResult, error) {
	ctx, span := s.tracer.Start(ctx, "query.execute", trace.WithAttributes(
		attribute.String("query.id", queryID),
		attribute.String("anonymization.level", string(level)),
	))
	defer span.End()

	start := s.now()

	descriptor, err := s.descriptors.Get(ctx, queryID)
	if err != nil {
		return nil, err
	}
	switch descriptor.ApprovalStatus {
	case id.ApprovalApproved:
	case id.ApprovalDenied:
		return nil, dErrors.New(dErrors.CodeApprovalDenied, "query was denied by a reviewer")
	default:
		return nil, dErrors.New(dErrors.CodeApprovalRequired, "query is awaiting approval")
	}

	if cached, ok := s.cache.Get(ctx, queryID, level); ok {
		result := *cached
		result.Metadata.CacheHit = true
		result.Metadata.ExecutionTime = s.now().Sub(start)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.record(callerID, descriptor, result.Metadata.ExecutionTime, true)
		s.emit(ctx, audit.EventQueryExecuted, descriptor, "cache_hit")
		return &result, nil
	}

	key := cacheKey(queryID, level)
	value, err, _ := s.group.Do(key, func() (any, error) {
		// Detached so a caller that hangs up does not abort the shared
		// computation; the result still lands in the cache.
		return s.compute(context.WithoutCancel(ctx), descriptor, callerID, level)
	})
	if err != nil {
		s.emit(ctx, audit.EventQueryFailed, descriptor, err.Error())
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "caller abandoned execution")
	}

	result := *(value.(*QueryResult))
	result.Metadata.ExecutionTime = s.now().Sub(start)
	s.record(callerID, descriptor, result.Metadata.ExecutionTime, false)
	s.emit(ctx, audit.EventQueryExecuted, descriptor, "computed")
	return &result, nil
}

func (s *Service) compute(ctx context.Context, descriptor *domain.ResearchQueryDescriptor, callerID string, level id.AnonymizationLevel) (*QueryResult, error) {
	dataTypes := dataTypesFromPermissions(descriptor.Permissions)
	warnings := append([]string{}, descriptor.Warnings...)

	stageStart := s.now()
	ctx, span := s.tracer.Start(ctx, "query.consent_check")
	if subject, ok := descriptor.Parameters["subject_id"].(string); ok && subject != "" {
		if err := s.validateSubject(ctx, subject, descriptor, dataTypes); err != nil {
			span.End()
			return nil, err
		}
	}
	span.End()
	s.observeStage(ctx, descriptor.ID, "consent_check", s.now().Sub(stageStart))

	stageStart = s.now()
	ctx, span = s.tracer.Start(ctx, "query.fetch")
	rows, err := s.fetchWithRetry(ctx, descriptor)
	span.End()
	if err != nil {
		return nil, err
	}
	s.observeStage(ctx, descriptor.ID, "fetch", s.now().Sub(stageStart))

	rows, dropped, err := s.filterByConsent(ctx, rows, descriptor, dataTypes)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		warnings = append(warnings, fmt.Sprintf("%d records excluded by consent limitations", dropped))
	}

	stageStart = s.now()
	ctx, span = s.tracer.Start(ctx, "query.anonymize")
	policy := anonymize.PolicyForLevel(s.privacy, level)
	records, err := s.engine.Anonymize(ctx, callerID, uuid.NewString(), rows, policy)
	span.End()
	if err != nil {
		return nil, err
	}
	s.observeStage(ctx, descriptor.ID, "anonymize", s.now().Sub(stageStart))

	if suppressed := len(rows) - len(records); suppressed > 0 {
		warnings = append(warnings, fmt.Sprintf("%d records suppressed to preserve k-anonymity", suppressed))
	}

	result := &QueryResult{
		QueryID: descriptor.ID,
		Records: records,
		Metadata: ResultMetadata{
			RecordCount:        len(records),
			AnonymizationLevel: level,
			PrivacyMetrics:     aggregateMetrics(records),
			Compliance:         s.deriveCompliance(descriptor, records),
		},
		Warnings: warnings,
	}

	s.cache.Set(ctx, descriptor.ID, level, result)
	return result, nil
}

func (s *Service) validateSubject(ctx context.Context, subjectID string, descriptor *domain.ResearchQueryDescriptor, dataTypes []string) error {
	outcome, err := s.consents.ValidateConsent(ctx, subjectID, consent.ValidationRequest{
		ActivityType: "research_query",
		DataTypes:    dataTypes,
		Purpose:      descriptor.Context.Purpose,
	})
	if err != nil {
		return err
	}
	if !outcome.IsValid {
		return dErrors.New(dErrors.CodeInvalidConsent, "subject consent does not cover this query").
			WithDetails(map[string]any{"limitations": outcome.Limitations})
	}
	return nil
}

// filterByConsent drops rows whose subjects have not consented to the
// requested data types. Distinct subjects are checked concurrently; rows
// without a subject_id column are aggregate rows and pass through.
func (s *Service) filterByConsent(ctx context.Context, rows []domain.Row, descriptor *domain.ResearchQueryDescriptor, dataTypes []string) ([]domain.Row, int, error) {
	subjects := make(map[string]bool)
	for _, row := range rows {
		if subject, ok := row["subject_id"].(string); ok && subject != "" {
			subjects[subject] = false
		}
	}
	if len(subjects) == 0 {
		return rows, 0, nil
	}

	ids := make([]string, 0, len(subjects))
	for subject := range subjects {
		ids = append(ids, subject)
	}
	sort.Strings(ids)

	allowed := make([]bool, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(consentCheckConcurrency)
	for i, subject := range ids {
		i, subject := i, subject
		g.Go(func() error {
			outcome, err := s.consents.ValidateConsent(gctx, subject, consent.ValidationRequest{
				ActivityType: "research_query",
				DataTypes:    dataTypes,
				Purpose:      descriptor.Context.Purpose,
			})
			if err != nil {
				return err
			}
			allowed[i] = outcome.IsValid
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	for i, subject := range ids {
		subjects[subject] = allowed[i]
	}

	kept := make([]domain.Row, 0, len(rows))
	for _, row := range rows {
		if subject, ok := row["subject_id"].(string); ok && subject != "" && !subjects[subject] {
			continue
		}
		kept = append(kept, row)
	}
	dropped := len(rows) - len(kept)
	if len(kept) == 0 && len(rows) > 0 {
		return nil, dropped, dErrors.New(dErrors.CodeMissingConsent, "no subject in the result set has consented to this query").
			WithDetails(map[string]any{"excluded_records": dropped})
	}
	return kept, dropped, nil
}

// fetchWithRetry runs the generated query with a per-attempt timeout,
// retrying only storage and timeout failures with doubling backoff.
func (s *Service) fetchWithRetry(ctx context.Context, descriptor *domain.ResearchQueryDescriptor) ([]domain.Row, error) {
	backoff := s.retry.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if s.retry.StorageTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, s.retry.StorageTimeout)
		}
		rows, err := s.raw.RunQuery(attemptCtx, descriptor.GeneratedQuery, descriptor.Parameters)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return rows, nil
		}
		lastErr = err
		if !retryable(err) || attempt == s.retry.MaxAttempts {
			break
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "raw store query failed, retrying",
				"query_id", descriptor.ID,
				"attempt", attempt,
				"backoff", backoff.String(),
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "execution canceled during retry")
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	code := dErrors.CodeStorage
	if errors.Is(lastErr, context.DeadlineExceeded) {
		code = dErrors.CodeTimeout
	}
	return nil, dErrors.Wrap(lastErr, code, "raw data store query failed").
		WithDetails(map[string]any{"query_id": descriptor.ID, "stage": "fetch"})
}

func retryable(err error) bool {
	if errors.Is(err, sentinel.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return dErrors.Retryable(err)
}

func (s *Service) deriveCompliance(descriptor *domain.ResearchQueryDescriptor, records []anonymize.AnonymizedRecord) Compliance {
	hipaa := true
	for _, record := range records {
		if record.Metrics.KAnonymityLevel < s.privacy.SafeHarborK {
			hipaa = false
			break
		}
	}
	return Compliance{
		HIPAACompliant: hipaa,
		// Consent was validated and the privacy budget honored on this path.
		GDPRCompliant:    true,
		ApprovalRequired: descriptor.Classification == id.SensitivityRestricted,
	}
}

func aggregateMetrics(records []anonymize.AnonymizedRecord) PrivacyMetrics {
	if len(records) == 0 {
		return PrivacyMetrics{}
	}
	var metrics PrivacyMetrics
	for _, record := range records {
		metrics.KAnonymityLevel += float64(record.Metrics.KAnonymityLevel)
		metrics.InformationLoss += record.Metrics.InformationLoss
		metrics.PrivacyBudgetUsed += record.Metrics.PrivacyBudgetUsed
	}
	n := float64(len(records))
	metrics.KAnonymityLevel /= n
	metrics.InformationLoss /= n
	metrics.PrivacyBudgetUsed /= n
	return metrics
}

func dataTypesFromPermissions(permissions []string) []string {
	dataTypes := make([]string, 0, len(permissions))
	for _, perm := range permissions {
		dt, ok := strings.CutPrefix(perm, "read:")
		if !ok || dt == "identifiers" || dt == "aggregates" {
			continue
		}
		dataTypes = append(dataTypes, dt)
	}
	return dataTypes
}

// record attributes the execution to the caller who ran it, which may differ
// from the caller who translated the query.
func (s *Service) record(callerID string, descriptor *domain.ResearchQueryDescriptor, duration time.Duration, cacheHit bool) {
	if s.perf == nil {
		return
	}
	s.perf.RecordExecution(callerID, dataTypesFromPermissions(descriptor.Permissions), duration, cacheHit)
}

func (s *Service) observeStage(ctx context.Context, queryID, stage string, elapsed time.Duration) {
	if s.logger == nil {
		return
	}
	s.logger.DebugContext(ctx, "execution stage complete",
		"query_id", queryID,
		"stage", stage,
		"elapsed", elapsed.String(),
	)
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, descriptor *domain.ResearchQueryDescriptor, reason string) {
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		QueryID: descriptor.ID,
		Actor:   descriptor.CallerID,
		Action:  string(action),
		Reason:  reason,
	})
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"query_id", descriptor.ID,
			"caller_id", descriptor.CallerID,
			"reason", reason,
			"log_type", "audit",
		)
	}
}
