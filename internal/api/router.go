package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Investment-Risk-Analyzer/internal/api/middleware"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/config"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	riskService *service.RiskService,
	logger zerolog.Logger,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.Metrics)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
			r.Get("/cache", systemHandler.CacheStats)
			r.With(custommiddleware.ValidateTickerMiddleware).Delete("/cache/{symbol}", systemHandler.InvalidateCache)
		})

		r.Route("/risk", func(r chi.Router) {
			riskHandler := handlers.NewRiskHandler(riskService)
			r.With(custommiddleware.ValidateTickerMiddleware).Get("/ticker/{symbol}", riskHandler.TickerRisk)
			r.Post("/portfolio", riskHandler.PortfolioRisk)
			r.Get("/profile", riskHandler.Profile)
		})
	})

	return r
}
