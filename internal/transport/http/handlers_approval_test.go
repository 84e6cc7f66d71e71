package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"veil/internal/approval"
	"veil/internal/domain"
	"veil/internal/platform/middleware"
	"veil/internal/transport/http/mocks"
	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
)

type ApprovalHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockApprovalService
	router  chi.Router
}

func (s *ApprovalHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockApprovalService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	newApprovalHandler(s.service, logger).register(s.router)
}

func (s *ApprovalHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ApprovalHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyCallerID, "reviewer-7"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ApprovalHandlerSuite) TestGetDescriptor() {
	s.service.EXPECT().
		Get(gomock.Any(), "q-1").
		Return(&domain.ResearchQueryDescriptor{ID: "q-1", ApprovalStatus: id.ApprovalPending}, nil)

	rec := s.do(http.MethodGet, "/queries/q-1", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ApprovalHandlerSuite) TestRequestApproval() {
	s.service.EXPECT().
		RequestApproval(gomock.Any(), "q-1", "reviewer-7",
			approval.Justification{Purpose: "outcome study", StudyID: "ST-204"},
			approval.UrgencyExpedited, []string{"ethics-board"}).
		Return(&approval.Request{QueryID: "q-1", Urgency: approval.UrgencyExpedited}, nil)

	rec := s.do(http.MethodPost, "/queries/q-1/approval", map[string]any{
		"justification": map[string]string{"purpose": "outcome study", "study_id": "ST-204"},
		"urgency":       "expedited",
		"reviewers":     []string{"ethics-board"},
	})
	s.Equal(http.StatusAccepted, rec.Code)
}

func (s *ApprovalHandlerSuite) TestRequestApprovalBadUrgency() {
	rec := s.do(http.MethodPost, "/queries/q-1/approval", map[string]any{"urgency": "yesterday"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ApprovalHandlerSuite) TestDecide() {
	s.service.EXPECT().
		Decide(gomock.Any(), "q-1", id.ApprovalApproved, "reviewer-7", "ethics cleared").
		Return(&domain.ResearchQueryDescriptor{ID: "q-1", ApprovalStatus: id.ApprovalApproved}, nil)

	rec := s.do(http.MethodPost, "/queries/q-1/decision", map[string]string{
		"status": "approved",
		"notes":  "ethics cleared",
	})
	s.Equal(http.StatusOK, rec.Code)

	var descriptor domain.ResearchQueryDescriptor
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &descriptor))
	s.Equal(id.ApprovalApproved, descriptor.ApprovalStatus)
}

func (s *ApprovalHandlerSuite) TestDecideIllegalTransition() {
	s.service.EXPECT().
		Decide(gomock.Any(), "q-1", id.ApprovalApproved, "reviewer-7", "").
		Return(nil, dErrors.New(dErrors.CodeBadRequest, "illegal transition from denied to approved"))

	rec := s.do(http.MethodPost, "/queries/q-1/decision", map[string]string{"status": "approved"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ApprovalHandlerSuite) TestDecisions() {
	s.service.EXPECT().
		Decisions(gomock.Any(), "q-1").
		Return([]approval.Decision{{QueryID: "q-1", Status: id.ApprovalApproved, ReviewerID: "reviewer-7"}}, nil)

	rec := s.do(http.MethodGet, "/queries/q-1/decisions", nil)
	s.Equal(http.StatusOK, rec.Code)

	var decisions []approval.Decision
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &decisions))
	s.Len(decisions, 1)
}

func TestApprovalHandlerSuite(t *testing.T) {
	suite.Run(t, new(ApprovalHandlerSuite))
}
