// Package app assembles the HTTP surface from already constructed components.
package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tax/internal/common"
	"github.com/noah-isme/backend-tax/internal/health"
	"github.com/noah-isme/backend-tax/internal/obs"
	"github.com/noah-isme/backend-tax/internal/ratelimit"
	"github.com/noah-isme/backend-tax/internal/security"
	"github.com/noah-isme/backend-tax/internal/tax"
	"github.com/noah-isme/backend-tax/internal/taxonomy"
)

// Dependencies enumerates what the router needs. Nil optional members disable
// the corresponding middleware.
type Dependencies struct {
	Logger         zerolog.Logger
	Taxonomy       *taxonomy.Handler
	Tax            *tax.Handler
	Health         health.Handler
	HTTPMetrics    *obs.HTTPMetrics
	MetricsHandler http.Handler
	Tracing        bool
	AllowedOrigins []string
	BodyLimitBytes int64
	ComputeLimit   ratelimit.Handler
	RequestTimeout time.Duration
}

// NewRouter builds the chi router serving the tax API.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if deps.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if deps.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: deps.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: deps.Logger}.Middleware)
	r.Use(security.Headers{Enable: true}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(deps.AllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		common.JSONError(w, http.StatusMethodNotAllowed, common.CodeBadRequest, "method not allowed", nil)
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	r.Get("/health/live", deps.Health.Live)
	r.Get("/health/ready", deps.Health.Ready)

	r.Route("/api", func(api chi.Router) {
		if deps.RequestTimeout > 0 {
			api.Use(middleware.Timeout(deps.RequestTimeout))
		}
		if deps.Taxonomy != nil {
			deps.Taxonomy.Routes(api)
		}
		if deps.Tax != nil {
			api.With(
				security.BodyLimit{Max: deps.BodyLimitBytes}.Middleware,
				deps.ComputeLimit.Middleware,
			).Post("/calculate-tax", deps.Tax.Calculate)
		}
	})
	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
