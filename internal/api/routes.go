package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", h.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", h.HandleCreateSession)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Put("/", h.HandleReplaceSession)
			r.Delete("/", h.HandleDeleteSession)
			r.Get("/options", h.HandleOptions)
			r.Get("/metrics", h.HandleMetrics)
			r.Get("/daily", h.HandleDaily)
			r.Get("/export/summary", h.HandleExportSummary)
			r.Get("/export/daily", h.HandleExportDaily)
		})
	})

	return r
}
