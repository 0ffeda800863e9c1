package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/crewdesk/crewdesk-api/internal/api"
	apimw "github.com/crewdesk/crewdesk-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: app.config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{apimw.TraceHeader},
	}).Handler)
	r.Use(apimw.Trace(app.logger))
	r.Use(apimw.Metrics(app.metrics))

	limitAuth := func(next http.Handler) http.Handler { return next }
	if app.authLimiter != nil && app.authLimiter.Enabled() {
		limitAuth = app.authLimiter.Limit
	}

	r.Route("/api", api.Routes(app.handlers, app.authMiddleware.Authenticate, limitAuth))

	r.Get("/health", api.Health)
	r.Handle("/metrics", app.metrics.Handler())

	return r
}
