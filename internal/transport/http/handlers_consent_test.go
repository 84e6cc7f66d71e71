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

	"veil/internal/consent"
	"veil/internal/platform/middleware"
	"veil/internal/transport/http/mocks"
	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
)

type ConsentHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockConsentService
	router  chi.Router
}

func (s *ConsentHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockConsentService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	newConsentHandler(s.service, logger).register(s.router)
}

func (s *ConsentHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ConsentHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyCallerID, "admin-1"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ConsentHandlerSuite) TestInitializeConsent() {
	s.service.EXPECT().
		InitializeConsent(gomock.Any(), "subject-1", id.ConsentLevelFull).
		Return(&consent.ConsentRecord{SubjectID: "subject-1", Level: id.ConsentLevelFull}, nil)

	rec := s.do(http.MethodPost, "/consent/subject-1", map[string]string{"level": "full"})
	s.Equal(http.StatusCreated, rec.Code)

	var record consent.ConsentRecord
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &record))
	s.Equal(id.ConsentLevelFull, record.Level)
}

func (s *ConsentHandlerSuite) TestInitializeConsentConflict() {
	s.service.EXPECT().
		InitializeConsent(gomock.Any(), "subject-1", id.ConsentLevelFull).
		Return(nil, dErrors.New(dErrors.CodeAlreadyExists, "consent already initialized"))

	rec := s.do(http.MethodPost, "/consent/subject-1", map[string]string{"level": "full"})
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *ConsentHandlerSuite) TestInitializeConsentBadLevel() {
	rec := s.do(http.MethodPost, "/consent/subject-1", map[string]string{"level": "sometimes"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ConsentHandlerSuite) TestUpdateConsentUsesCallerAsActor() {
	s.service.EXPECT().
		UpdateConsent(gomock.Any(), "subject-1", id.ConsentLevelMinimal, "scaling back", "admin-1").
		Return(&consent.ConsentRecord{SubjectID: "subject-1", Level: id.ConsentLevelMinimal}, nil)

	rec := s.do(http.MethodPut, "/consent/subject-1", map[string]string{
		"level":  "minimal",
		"reason": "scaling back",
	})
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ConsentHandlerSuite) TestWithdrawal() {
	s.service.EXPECT().
		RequestWithdrawal(gomock.Any(), "subject-1", "leaving study", true).
		Return(&consent.ConsentRecord{SubjectID: "subject-1"}, nil)

	rec := s.do(http.MethodPost, "/consent/subject-1/withdraw", map[string]any{
		"reason":    "leaving study",
		"immediate": true,
	})
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ConsentHandlerSuite) TestValidate() {
	s.service.EXPECT().
		ValidateConsent(gomock.Any(), "subject-1", consent.ValidationRequest{
			ActivityType: "research_query",
			DataTypes:    []string{"emotional_metrics"},
		}).
		Return(&consent.ValidationResult{IsValid: false, Limitations: []string{"requires full consent"}}, nil)

	rec := s.do(http.MethodPost, "/consent/subject-1/validate", map[string]any{
		"activity_type": "research_query",
		"data_types":    []string{"emotional_metrics"},
	})
	s.Equal(http.StatusOK, rec.Code)

	var result consent.ValidationResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	s.False(result.IsValid)
}

func (s *ConsentHandlerSuite) TestGetNotFound() {
	s.service.EXPECT().
		GetConsent(gomock.Any(), "subject-9").
		Return(nil, dErrors.New(dErrors.CodeNotFound, "no consent record"))

	rec := s.do(http.MethodGet, "/consent/subject-9", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func TestConsentHandlerSuite(t *testing.T) {
	suite.Run(t, new(ConsentHandlerSuite))
}
