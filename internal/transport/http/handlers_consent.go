package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veil/internal/consent"
	"veil/internal/platform/middleware"
	"veil/internal/transport/http/shared"
	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
)

//go:generate mockgen -source=handlers_consent.go -destination=mocks/consent-mocks.go -package=mocks ConsentService

// ConsentService defines the consent ledger operations the transport needs.
type ConsentService interface {
	InitializeConsent(ctx context.Context, subjectID string, level id.ConsentLevel) (*consent.ConsentRecord, error)
	UpdateConsent(ctx context.Context, subjectID string, level id.ConsentLevel, reason, actor string) (*consent.ConsentRecord, error)
	RequestWithdrawal(ctx context.Context, subjectID, reason string, immediate bool) (*consent.ConsentRecord, error)
	ValidateConsent(ctx context.Context, subjectID string, req consent.ValidationRequest) (*consent.ValidationResult, error)
	GetConsent(ctx context.Context, subjectID string) (*consent.ConsentRecord, error)
}

type consentHandler struct {
	service ConsentService
	logger  *slog.Logger
}

func newConsentHandler(service ConsentService, logger *slog.Logger) *consentHandler {
	return &consentHandler{service: service, logger: logger}
}

func (h *consentHandler) register(r chi.Router) {
	r.Route("/consent/{subjectID}", func(r chi.Router) {
		r.Post("/", h.handleInitialize)
		r.Put("/", h.handleUpdate)
		r.Get("/", h.handleGet)
		r.Post("/withdraw", h.handleWithdraw)
		r.Post("/validate", h.handleValidate)
	})
}

type initializeConsentRequest struct {
	Level string `json:"level"`
}

func (h *consentHandler) handleInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := chi.URLParam(r, "subjectID")

	var req initializeConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	level, err := id.ParseConsentLevel(req.Level)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid consent level"))
		return
	}

	record, err := h.service.InitializeConsent(ctx, subjectID, level)
	if err != nil {
		h.logError(ctx, "initialize consent failed", subjectID, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, record)
}

type updateConsentRequest struct {
	Level  string `json:"level"`
	Reason string `json:"reason"`
}

func (h *consentHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := chi.URLParam(r, "subjectID")

	var req updateConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	level, err := id.ParseConsentLevel(req.Level)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid consent level"))
		return
	}

	record, err := h.service.UpdateConsent(ctx, subjectID, level, req.Reason, middleware.GetCallerID(ctx))
	if err != nil {
		h.logError(ctx, "update consent failed", subjectID, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, record)
}

type withdrawConsentRequest struct {
	Reason    string `json:"reason"`
	Immediate bool   `json:"immediate"`
}

func (h *consentHandler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := chi.URLParam(r, "subjectID")

	var req withdrawConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	record, err := h.service.RequestWithdrawal(ctx, subjectID, req.Reason, req.Immediate)
	if err != nil {
		h.logError(ctx, "withdrawal request failed", subjectID, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, record)
}

func (h *consentHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := chi.URLParam(r, "subjectID")

	var req consent.ValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.service.ValidateConsent(ctx, subjectID, req)
	if err != nil {
		h.logError(ctx, "consent validation failed", subjectID, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *consentHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := chi.URLParam(r, "subjectID")

	record, err := h.service.GetConsent(ctx, subjectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, record)
}

func (h *consentHandler) logError(ctx context.Context, msg, subjectID string, err error) {
	if h.logger == nil {
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"subject_id", subjectID,
		"error", err.Error(),
	)
}
