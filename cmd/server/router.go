package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Script-GH/Ai-tutor/internal/api"
	apiMiddleware "github.com/Script-GH/Ai-tutor/internal/api/middleware"
	"github.com/Script-GH/Ai-tutor/internal/api/shared"
	"github.com/Script-GH/Ai-tutor/internal/platform/ratelimit"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.Metrics)
	r.Use(middleware.Recoverer)

	r.NotFound(shared.NotFound)
	r.MethodNotAllowed(shared.MethodNotAllowed)

	authHandler := api.NewAuthHandler(app.credentials, app.jwtService)
	syllabusHandler := api.NewSyllabusHandler(app.syllabusStore, app.blobStore, app.config.Server.MaxUploadBytes)
	jobHandler := api.NewJobHandler(app.jobs)
	analyticsHandler := api.NewAnalyticsHandler(app.analyticsStore)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public, tighter limit)
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(app.authLimiter, "auth"))
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(rateLimit(app.defaultLimiter, "api"))

			r.Get("/health", api.Health)

			r.With(authMiddleware.AuthenticateWebSocket).Get("/ws", app.hub.ServeWS)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)

				r.Post("/upload/syllabus", syllabusHandler.Upload)
				r.Get("/upload/syllabus/{id}", syllabusHandler.Download)
				r.Get("/search", syllabusHandler.Search)

				r.Post("/generate/test", jobHandler.GenerateTest)
				r.Get("/jobs/{id}", jobHandler.GetJob)

				r.Get("/analytics/usage", analyticsHandler.Usage)
			})
		})
	})

	return r
}

// rateLimit returns the limiter middleware, or a pass-through when limiting
// is disabled.
func rateLimit(limiter ratelimit.Limiter, bucket string) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return apiMiddleware.RateLimit(limiter, bucket)
}
