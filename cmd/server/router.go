package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/diary-api/internal/api"
	apiMiddleware "github.com/phrazzld/diary-api/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if app.deps.Metrics != nil {
		r.Use(app.deps.Metrics.Middleware)
	}
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         300,
	}))

	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	diaryHandler := api.NewDiaryHandler(app.deps.Diary, app.logger)
	providerHandler := api.NewProviderHandler(app.deps.Registry, app.deps.Prompts, app.version)

	if app.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", app.deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", providerHandler.Health)
		r.Get("/providers", providerHandler.ListProviders)
		r.Get("/styles", providerHandler.ListStyles)

		r.Group(func(r chi.Router) {
			if app.deps.JWTService != nil {
				r.Use(apiMiddleware.NewAuthMiddleware(app.deps.JWTService).Authenticate)
			}
			r.Post("/generate-diary", diaryHandler.GenerateDiary)
			r.Post("/regenerate-diary", diaryHandler.RegenerateDiary)
		})
	})

	return r
}
