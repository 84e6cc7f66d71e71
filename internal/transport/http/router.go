// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns remain
// isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veil/internal/platform/middleware"
	"veil/internal/transport/http/shared"
)

const requestTimeout = 30 * time.Second

// Deps carries everything the router needs to wire the public surface.
type Deps struct {
	Logger       *slog.Logger
	JWTValidator middleware.JWTValidator
	Consent      ConsentService
	Translator   TranslatorService
	Approvals    ApprovalService
	Executor     ExecutorService
	Budget       BudgetService
	Analytics    AnalyticsService
	Health       func() error
}

// NewRouter wires all public endpoints behind the standard middleware chain.
// /healthz and /metrics stay outside authentication.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))

	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(deps.JWTValidator, deps.Logger))

		newConsentHandler(deps.Consent, deps.Logger).register(r)
		newQueryHandler(deps.Translator, deps.Approvals, deps.Executor, deps.Budget, deps.Analytics, deps.Logger).register(r)
		newApprovalHandler(deps.Approvals, deps.Logger).register(r)
	})

	return r
}

func handleHealth(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
