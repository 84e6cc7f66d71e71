package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veil/internal/approval"
	"veil/internal/domain"
	"veil/internal/platform/middleware"
	"veil/internal/transport/http/shared"
	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
)

//go:generate mockgen -source=handlers_approval.go -destination=mocks/approval-mocks.go -package=mocks ApprovalService

// ApprovalService defines the approval workflow operations the transport
// needs.
type ApprovalService interface {
	Register(ctx context.Context, descriptor *domain.ResearchQueryDescriptor) error
	Get(ctx context.Context, queryID string) (*domain.ResearchQueryDescriptor, error)
	RequestApproval(ctx context.Context, queryID, requester string, justification approval.Justification, urgency approval.Urgency, reviewers []string) (*approval.Request, error)
	Decide(ctx context.Context, queryID string, status id.ApprovalStatus, reviewerID, notes string) (*domain.ResearchQueryDescriptor, error)
	Decisions(ctx context.Context, queryID string) ([]approval.Decision, error)
}

type approvalHandler struct {
	service ApprovalService
	logger  *slog.Logger
}

func newApprovalHandler(service ApprovalService, logger *slog.Logger) *approvalHandler {
	return &approvalHandler{service: service, logger: logger}
}

func (h *approvalHandler) register(r chi.Router) {
	r.Get("/queries/{queryID}", h.handleGet)
	r.Post("/queries/{queryID}/approval", h.handleRequestApproval)
	r.Post("/queries/{queryID}/decision", h.handleDecide)
	r.Get("/queries/{queryID}/decisions", h.handleDecisions)
}

func (h *approvalHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	descriptor, err := h.service.Get(r.Context(), chi.URLParam(r, "queryID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, descriptor)
}

type approvalRequestBody struct {
	Justification approval.Justification `json:"justification"`
	Urgency       string                 `json:"urgency"`
	Reviewers     []string               `json:"reviewers"`
}

func (h *approvalHandler) handleRequestApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	queryID := chi.URLParam(r, "queryID")

	var body approvalRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	urgency, err := approval.ParseUrgency(body.Urgency)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid urgency"))
		return
	}

	request, err := h.service.RequestApproval(ctx, queryID, middleware.GetCallerID(ctx), body.Justification, urgency, body.Reviewers)
	if err != nil {
		h.logError(ctx, "approval request failed", queryID, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusAccepted, request)
}

type decisionBody struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (h *approvalHandler) handleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	queryID := chi.URLParam(r, "queryID")

	var body decisionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	status, err := id.ParseApprovalStatus(body.Status)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid approval status"))
		return
	}

	descriptor, err := h.service.Decide(ctx, queryID, status, middleware.GetCallerID(ctx), body.Notes)
	if err != nil {
		h.logError(ctx, "decision failed", queryID, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, descriptor)
}

func (h *approvalHandler) handleDecisions(w http.ResponseWriter, r *http.Request) {
	decisions, err := h.service.Decisions(r.Context(), chi.URLParam(r, "queryID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, decisions)
}

func (h *approvalHandler) logError(ctx context.Context, msg, queryID string, err error) {
	if h.logger == nil {
		return
	}
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"query_id", queryID,
		"error", err.Error(),
	)
}
