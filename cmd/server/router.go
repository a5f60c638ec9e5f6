package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/flashgen/internal/api"
	apiMiddleware "github.com/phrazzld/flashgen/internal/api/middleware"
	"github.com/phrazzld/flashgen/internal/web"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.LoggerMiddleware(app.logger))
	r.Use(apiMiddleware.TraceMiddleware)

	sessions := apiMiddleware.NewSessionMiddleware(
		apiMiddleware.NewCookieStore(app.config.Session, app.sessionKey),
		app.config.Session.CookieName,
	)

	studyHandler := api.NewStudyHandler(app.registry, app.emitter, app.logger)
	pageHandler, err := web.NewHandler(app.registry, app.logger)
	if err != nil {
		// ALLOW-PANIC: the page template is embedded, so parsing only fails on a build defect
		panic(err)
	}

	r.Group(func(r chi.Router) {
		r.Use(sessions.Handle)
		pageHandler.RegisterRoutes(r)
		r.Route("/api", studyHandler.RegisterRoutes)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
