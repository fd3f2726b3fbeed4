package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ndewijer/Currency-Rate-Loader/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Currency-Rate-Loader/internal/api/middleware"
	"github.com/ndewijer/Currency-Rate-Loader/internal/config"
	"github.com/ndewijer/Currency-Rate-Loader/internal/service"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	System   *service.SystemService
	RateType *service.RateTypeService
	Loader   *service.RateLoaderService
}

// NewRouter creates and configures the HTTP router.
// Writes and manual runs require the internal API key.
func NewRouter(cfg *config.Config, logger logrus.FieldLogger, gatherer prometheus.Gatherer, svc Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	requireKey := custommiddleware.NewAPIKeyMiddleware(cfg.Auth.InternalAPIKey)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
		})

		rateTypeHandler := handlers.NewRateTypeHandler(svc.RateType, svc.Loader)

		r.Get("/method", rateTypeHandler.Methods)

		r.Route("/rate-type", func(r chi.Router) {
			r.Get("/", rateTypeHandler.RateTypes)
			r.With(requireKey).Post("/", rateTypeHandler.CreateRateType)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", rateTypeHandler.GetRateType)
				r.Get("/rate", rateTypeHandler.Rates)

				r.Group(func(r chi.Router) {
					r.Use(requireKey)
					r.Put("/", rateTypeHandler.UpdateRateType)
					r.Delete("/", rateTypeHandler.DeleteRateType)
					r.Post("/run", rateTypeHandler.RunRateType)
				})
			})
		})
	})

	return r
}
