package matchhttp

import (
	"log/slog"
	"net/http"

	"tenant_match/internal/lib/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// NewRouter собирает HTTP API матчинга.
func NewRouter(log *slog.Logger, svc MatchService, matchMetrics *metrics.MatchMetrics, allowedOrigins []string) http.Handler {
	h := NewHandler(log, svc, matchMetrics)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewRequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}).Handler)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", matchMetrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tenants/{tenantID}/matches", h.TenantMatches)
		r.Get("/properties/{propertyID}/matches", h.PropertyMatches)
		r.Get("/matches/score", h.ScorePair)
		r.Get("/matches/statistics", h.Statistics)
		r.Get("/matches/metrics", h.Metrics)
	})

	return r
}
