package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veil/internal/domain"
	"veil/internal/perf"
	"veil/internal/platform/middleware"
	"veil/internal/query"
	"veil/internal/transport/http/shared"
	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
)

//go:generate mockgen -source=handlers_query.go -destination=mocks/query-mocks.go -package=mocks

// TranslatorService turns natural language questions into descriptors.
type TranslatorService interface {
	Translate(ctx context.Context, question string, rc domain.ResearchContext, callerID string) (*domain.ResearchQueryDescriptor, error)
}

// ExecutorService runs approved queries.
type ExecutorService interface {
	Execute(ctx context.Context, queryID, callerID string, level id.AnonymizationLevel) (*query.QueryResult, error)
}

// DescriptorRegistrar admits translated descriptors into the approval
// workflow.
type DescriptorRegistrar interface {
	Register(ctx context.Context, descriptor *domain.ResearchQueryDescriptor) error
}

// BudgetService exposes privacy budget inspection and reset.
type BudgetService interface {
	BudgetSpent(ctx context.Context, sessionID string) (float64, error)
	ResetBudget(ctx context.Context, sessionID string) error
}

// AnalyticsService reports per-caller usage analytics.
type AnalyticsService interface {
	Analytics(callerID string) perf.Analytics
}

type queryHandler struct {
	translator TranslatorService
	registrar  DescriptorRegistrar
	executor   ExecutorService
	budget     BudgetService
	analytics  AnalyticsService
	logger     *slog.Logger
}

func newQueryHandler(translator TranslatorService, registrar DescriptorRegistrar, executor ExecutorService, budget BudgetService, analytics AnalyticsService, logger *slog.Logger) *queryHandler {
	return &queryHandler{
		translator: translator,
		registrar:  registrar,
		executor:   executor,
		budget:     budget,
		analytics:  analytics,
		logger:     logger,
	}
}

func (h *queryHandler) register(r chi.Router) {
	r.Post("/queries/translate", h.handleTranslate)
	r.Post("/queries/{queryID}/execute", h.handleExecute)
	r.Get("/analytics", h.handleAnalytics)
	r.Get("/budget", h.handleBudget)
	r.Post("/budget/reset", h.handleBudgetReset)
}

type translateRequest struct {
	Question string                 `json:"question"`
	Context  domain.ResearchContext `json:"context"`
}

func (h *queryHandler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	descriptor, err := h.translator.Translate(ctx, req.Question, req.Context, middleware.GetCallerID(ctx))
	if err != nil {
		if h.logger != nil {
			h.logger.WarnContext(ctx, "translation failed",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}
	if err := h.registrar.Register(ctx, descriptor); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, descriptor)
}

type executeRequest struct {
	AnonymizationLevel string `json:"anonymization_level"`
}

func (h *queryHandler) handleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	queryID := chi.URLParam(r, "queryID")

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	level, err := id.ParseAnonymizationLevel(req.AnonymizationLevel)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid anonymization level"))
		return
	}

	result, err := h.executor.Execute(ctx, queryID, middleware.GetCallerID(ctx), level)
	if err != nil {
		if h.logger != nil {
			h.logger.WarnContext(ctx, "query execution failed",
				"request_id", middleware.GetRequestID(ctx),
				"query_id", queryID,
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *queryHandler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetCallerID(r.Context())
	shared.WriteJSON(w, http.StatusOK, h.analytics.Analytics(callerID))
}

func (h *queryHandler) handleBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := middleware.GetCallerID(ctx)

	spent, err := h.budget.BudgetSpent(ctx, callerID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"session_id": callerID,
		"spent":      spent,
	})
}

func (h *queryHandler) handleBudgetReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := middleware.GetCallerID(ctx)

	if err := h.budget.ResetBudget(ctx, callerID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
