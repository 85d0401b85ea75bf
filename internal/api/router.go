package api

import (
	"net/http"

	"github.com/ayo6706/mass-payout/internal/api/handler"
	"github.com/ayo6706/mass-payout/internal/api/middleware"
	"github.com/ayo6706/mass-payout/internal/api/spec"
	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/ayo6706/mass-payout/internal/service"
	"github.com/ayo6706/mass-payout/internal/session"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// Options carries the process-level settings the handlers need.
type Options struct {
	FallbackCredentials domain.Credentials
	DefaultEmail        string
	DefaultCurrency     string
}

type Router struct {
	logger    *zap.Logger
	sessions  session.Store
	manager   *session.Manager
	payoutSvc *service.PayoutService
	opts      Options
}

func NewRouter(logger *zap.Logger, sessions session.Store, manager *session.Manager, payoutSvc *service.PayoutService, opts Options) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		logger:    logger,
		sessions:  sessions,
		manager:   manager,
		payoutSvc: payoutSvc,
		opts:      opts,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)

	// Handlers
	healthHandler := handler.NewHealthHandler(api.sessions)
	sessionHandler := handler.NewSessionHandler(api.sessions, api.opts.DefaultEmail, api.opts.DefaultCurrency, api.logger)
	payoutHandler := handler.NewPayoutHandler(api.payoutSvc, api.sessions, api.opts.FallbackCredentials, api.logger)

	// Operational Routes
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	// Session Routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(api.manager, api.logger))

		r.Get("/v1/session", sessionHandler.Get)
		r.Put("/v1/session/credentials", sessionHandler.PutCredentials)
		r.Delete("/v1/session/credentials", sessionHandler.DeleteCredentials)

		// Payouts
		r.Post("/v1/payouts", payoutHandler.CreatePayout)
		r.Get("/v1/payouts/{batch_id}", payoutHandler.GetPayout)
	})

	return r
}
