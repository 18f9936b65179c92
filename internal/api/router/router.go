package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pratik-mahalle/tasknest/internal/api/handlers"
	"github.com/pratik-mahalle/tasknest/internal/api/middleware"
	"github.com/pratik-mahalle/tasknest/internal/config"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
	"github.com/pratik-mahalle/tasknest/internal/pkg/metrics"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/pratik-mahalle/tasknest/docs"
)

type Handlers struct {
	Health  *handlers.HealthHandler
	Account *handlers.AccountHandler
	Quota   *handlers.QuotaHandler
	Billing *handlers.BillingHandler
	AI      *handlers.AIHandler
}

// New builds the HTTP API. quota gates the AI routes and limiter throttles
// every API route per account or client IP.
func New(
	cfg *config.Config,
	log *logger.Logger,
	h *Handlers,
	quota middleware.QuotaChecker,
	limiter *middleware.RateLimiter,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(metrics.Middleware)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	r.Use(middleware.FrontendCORS(cfg.Server.FrontendURL))

	// Operational endpoints
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(limiter))

			r.Post("/accounts", h.Account.Create)
			r.Post("/auth/refresh", h.Account.Refresh)

			// Signature verified by the billing service
			r.Post("/billing/webhook", h.Billing.Webhook)
		})

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Auth.JWTSecret))
			r.Use(middleware.RateLimit(limiter))

			r.Get("/accounts/me", h.Account.Me)
			r.Get("/quota", h.Quota.Get)
			r.Get("/subscription", h.Quota.Status)

			r.Get("/billing/plans", h.Billing.ListPlans)
			r.Post("/billing/checkout", h.Billing.Checkout)

			r.Route("/ai", func(r chi.Router) {
				r.Use(middleware.FeatureGate(quota, log))
				r.Post("/categorize", h.AI.Categorize)
				r.Post("/suggest", h.AI.Suggest)
			})
		})
	})

	return r
}
