// Package service implements the consent ledger: per-subject consent level,
// append-only history, and withdrawal with a configurable grace period. It
// keeps orchestration out of handlers and domain logic thin.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"veil/internal/consent"
	"veil/pkg/audit"
	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
	"veil/pkg/sentinel"
)

// AuditPublisher emits audit events for consent transitions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          consent.Store
	tx             Tx
	gracePeriod    time.Duration
	logger         *slog.Logger
	auditPublisher AuditPublisher
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

// WithGracePeriod overrides the withdrawal grace period. It is a policy
// input, not business logic; default is 24h.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Service) {
		s.gracePeriod = d
	}
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store consent.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("consent store is required")
	}
	svc := &Service{
		store:       store,
		tx:          newShardedTx(defaultTxTimeout),
		gracePeriod: 24 * time.Hour,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// InitializeConsent creates a consent record for a subject.
//
// Errors: CodeAlreadyExists when the subject already has a record; an
// explicit reset path is required to start over.
func (s *Service) InitializeConsent(ctx context.Context, subjectID string, level id.ConsentLevel) (*consent.ConsentRecord, error) {
	if subjectID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject_id is required")
	}
	if !level.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unsupported consent level: %s", level)
	}

	now := s.now()
	record := &consent.ConsentRecord{
		SubjectID: subjectID,
		Level:     level,
		History: []consent.HistoryEntry{{
			Level:     level,
			Reason:    "initial consent",
			Actor:     subjectID,
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.tx.RunInTx(ctx, subjectID, func() error {
		return s.store.Create(ctx, record)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeAlreadyExists, "consent already initialized for subject")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to initialize consent")
	}

	s.emit(ctx, audit.EventConsentInitialized, subjectID, string(level), "")
	return record, nil
}

// UpdateConsent appends a history entry and moves the subject to newLevel.
//
// Errors: CodeNotFound when the subject is unknown.
func (s *Service) UpdateConsent(ctx context.Context, subjectID string, newLevel id.ConsentLevel, reason, actor string) (*consent.ConsentRecord, error) {
	if !newLevel.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unsupported consent level: %s", newLevel)
	}

	var updated *consent.ConsentRecord
	err := s.tx.RunInTx(ctx, subjectID, func() error {
		record, err := s.store.Get(ctx, subjectID)
		if err != nil {
			return err
		}
		now := s.now()
		record.History = append(record.History, consent.HistoryEntry{
			Level:     newLevel,
			Reason:    reason,
			Actor:     actor,
			Timestamp: now,
		})
		record.Level = newLevel
		record.UpdatedAt = now
		if err := s.store.Save(ctx, record); err != nil {
			return err
		}
		updated = record
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "consent record not found for subject")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update consent")
	}

	s.emit(ctx, audit.EventConsentUpdated, subjectID, string(newLevel), reason)
	return updated, nil
}

// RequestWithdrawal marks a subject's consent as withdrawn. Immediate
// withdrawals schedule the data purge synchronously; otherwise the purge is
// scheduled after the configured grace period. The record survives; actual
// erasure is delegated externally.
func (s *Service) RequestWithdrawal(ctx context.Context, subjectID, reason string, immediate bool) (*consent.ConsentRecord, error) {
	var updated *consent.ConsentRecord
	err := s.tx.RunInTx(ctx, subjectID, func() error {
		record, err := s.store.Get(ctx, subjectID)
		if err != nil {
			return err
		}
		now := s.now()
		record.WithdrawalRequested = true
		record.WithdrawalRequestedAt = &now
		if immediate {
			record.DataPurgeScheduled = true
			record.PurgeScheduledFor = &now
		} else {
			purgeAt := now.Add(s.gracePeriod)
			record.PurgeScheduledFor = &purgeAt
		}
		record.History = append(record.History, consent.HistoryEntry{
			Level:     id.ConsentLevelNone,
			Reason:    reason,
			Actor:     subjectID,
			Timestamp: now,
		})
		record.Level = id.ConsentLevelNone
		record.UpdatedAt = now
		if err := s.store.Save(ctx, record); err != nil {
			return err
		}
		updated = record
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "consent record not found for subject")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to request withdrawal")
	}

	s.emit(ctx, audit.EventWithdrawalRequest, subjectID, "", reason)
	return updated, nil
}

// ValidateConsent is a pure read: it reports whether the requested access is
// permissible and, when not, which limitations apply. It never mutates
// state.
func (s *Service) ValidateConsent(ctx context.Context, subjectID string, req consent.ValidationRequest) (*consent.ValidationResult, error) {
	record, err := s.store.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return &consent.ValidationResult{
				IsValid:     false,
				Limitations: []string{"no consent record exists for subject"},
			}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consent record")
	}

	result := s.evaluate(record, req)

	s.emit(ctx, audit.EventConsentChecked, subjectID, boolDecision(result.IsValid), req.Purpose)
	return result, nil
}

func (s *Service) evaluate(record *consent.ConsentRecord, req consent.ValidationRequest) *consent.ValidationResult {
	now := s.now()
	var limitations []string

	if record.WithdrawalEffective(now) {
		limitations = append(limitations, "consent withdrawn; identifiable access is blocked")
		return &consent.ValidationResult{IsValid: false, Limitations: limitations}
	}
	if record.WithdrawalRequested {
		limitations = append(limitations, "withdrawal pending; access ends when the grace period lapses")
	}

	if record.Level == id.ConsentLevelNone {
		limitations = append(limitations, "consent level is none")
		return &consent.ValidationResult{IsValid: false, Limitations: limitations}
	}

	valid := true
	for _, dataType := range req.DataTypes {
		required := consent.RequiredLevel(dataType)
		if !record.Level.AtLeast(required) {
			valid = false
			limitations = append(limitations, "data type "+dataType+" requires "+string(required)+" consent")
		}
	}

	return &consent.ValidationResult{IsValid: valid, Limitations: limitations}
}

// GetConsent returns the current record, including its full history.
func (s *Service) GetConsent(ctx context.Context, subjectID string) (*consent.ConsentRecord, error) {
	record, err := s.store.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "consent record not found for subject")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consent record")
	}
	return record, nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, subjectID, decision, reason string) {
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		SubjectID: subjectID,
		Actor:     subjectID,
		Action:    string(action),
		Decision:  decision,
		Reason:    reason,
	})
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"subject_id", subjectID,
			"decision", decision,
			"log_type", "audit",
		)
	}
}

func boolDecision(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}
