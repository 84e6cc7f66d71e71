package anonymize

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"veil/internal/domain"
	"veil/pkg/audit"
	dErrors "veil/pkg/domain-errors"
	"veil/pkg/sentinel"
)

// AuditPublisher emits audit events for privacy-relevant outcomes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Engine runs the anonymization pipeline. It is safe for concurrent use;
// per-session budget accounting lives in the injected BudgetStore.
type Engine struct {
	budget         BudgetStore
	hashSalt       string
	logger         *slog.Logger
	auditPublisher AuditPublisher

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(e *Engine) {
		e.auditPublisher = publisher
	}
}

// WithRandSource injects a deterministic noise source for tests.
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) {
		e.rng = rand.New(src)
	}
}

func New(budget BudgetStore, hashSalt string, opts ...Option) (*Engine, error) {
	if budget == nil {
		return nil, errors.New("budget store is required")
	}
	e := &Engine{
		budget:   budget,
		hashSalt: hashSalt,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Anonymize runs the five pipeline stages over a batch and returns records
// that each belong to an equivalence class of at least policy.K. The
// sessionID keys the differential-privacy budget, accounted per policy
// budget scope; the exportID keys linkage prevention so two exports cannot
// be joined.
//
// Errors: CodeBudgetExhausted when the scope's epsilon cap would be
// exceeded; the release is refused whole, never clipped.
func (e *Engine) Anonymize(ctx context.Context, sessionID, exportID string, records []domain.Row, policy Policy) ([]AnonymizedRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}
	if policy.K < 1 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "policy k must be at least 1")
	}

	// Budget is charged before release. Refusal must precede any noise
	// injection so a denied release reveals nothing.
	spent, err := e.budget.Spend(ctx, sessionID, policy.BudgetScope, policy.Epsilon, policy.EpsilonCap)
	if err != nil {
		if errors.Is(err, sentinel.ErrBudgetExhausted) {
			e.emitBudgetExhausted(ctx, sessionID, spent, policy.EpsilonCap)
			return nil, dErrors.Newf(dErrors.CodeBudgetExhausted,
				"session %s has exhausted its privacy budget (%.3f of %.3f)", sessionID, spent, policy.EpsilonCap)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to account privacy budget")
	}

	// Work on copies; the engine is a pure transformation of its input.
	original := records
	rows := make([]map[string]any, len(records))
	for i, r := range records {
		row := make(map[string]any, len(r))
		for k, v := range r {
			row[k] = v
		}
		rows[i] = row
	}

	// Stage 1: quasi-identifier suppression before any grouping.
	for _, row := range rows {
		for _, field := range policy.SuppressFields {
			delete(row, field)
		}
	}

	// Stage 2: k-anonymity grouping with merge-by-generalization fallback.
	classSize, levels := enforceKAnonymity(rows, policy.QuasiIdentifiers, policy.K)
	applyGeneralization(rows, policy.QuasiIdentifiers, levels)

	// Information loss is measured against the original batch, including the
	// entropy destroyed by suppression.
	loss := informationLossOriginal(original, policy, levels)

	e.mu.Lock()
	// Stage 3: differential-privacy noise on numeric aggregates.
	injectNoise(e.rng, rows, policy.NumericFields, policy.Sensitivity, policy.Epsilon)

	// Stage 4: temporal obfuscation.
	obfuscateTimestamps(e.rng, rows, policy)
	e.mu.Unlock()

	// Stage 5: linkage prevention.
	key, err := exportKey(e.hashSalt, exportID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to derive export key")
	}
	pseudonymize(rows, policy, key)

	out := make([]AnonymizedRecord, 0, len(rows))
	for i, row := range rows {
		size, survived := classSize[i]
		if !survived {
			// Partition smaller than k with no merge possible: suppressed.
			continue
		}
		out = append(out, AnonymizedRecord{
			Data: row,
			Metrics: QualityMetrics{
				KAnonymityLevel:   size,
				InformationLoss:   loss,
				PrivacyBudgetUsed: spent,
			},
		})
	}

	if e.logger != nil {
		e.logger.DebugContext(ctx, "anonymization complete",
			"session_id", sessionID,
			"input_records", len(records),
			"output_records", len(out),
			"suppressed", len(records)-len(out),
			"information_loss", loss,
			"budget_spent", spent,
		)
	}
	return out, nil
}

// ResetBudget starts a fresh differential-privacy window for a session.
func (e *Engine) ResetBudget(ctx context.Context, sessionID string) error {
	if err := e.budget.Reset(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset privacy budget")
	}
	if e.auditPublisher != nil {
		_ = e.auditPublisher.Emit(ctx, audit.Event{
			SubjectID: sessionID,
			Action:    string(audit.EventBudgetReset),
		})
	}
	return nil
}

// BudgetSpent reports the session's cumulative epsilon spend.
func (e *Engine) BudgetSpent(ctx context.Context, sessionID string) (float64, error) {
	return e.budget.Spent(ctx, sessionID)
}

func (e *Engine) emitBudgetExhausted(ctx context.Context, sessionID string, spent, cap float64) {
	if e.auditPublisher != nil {
		_ = e.auditPublisher.Emit(ctx, audit.Event{
			SubjectID: sessionID,
			Action:    string(audit.EventBudgetExhausted),
			Details: map[string]any{
				"spent": spent,
				"cap":   cap,
			},
		})
	}
	if e.logger != nil {
		e.logger.WarnContext(ctx, "privacy budget exhausted",
			"session_id", sessionID,
			"spent", spent,
			"cap", cap,
			"log_type", "audit",
		)
	}
}

// informationLossOriginal measures entropy removed relative to the original
// rows, counting suppressed fields at full weight.
func informationLossOriginal(records []domain.Row, policy Policy, levels []int) float64 {
	rows := make([]map[string]any, len(records))
	for i, r := range records {
		rows[i] = r
	}
	return informationLoss(rows, policy.QuasiIdentifiers, levels, policy.SuppressFields)
}
