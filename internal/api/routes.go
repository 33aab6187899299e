// Package api wires the HTTP handlers onto a chi router.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/adolfohrq/prdgen/internal/api/handlers"
	apmiddleware "github.com/adolfohrq/prdgen/internal/api/middleware"
)

// Deps are the services behind the routes. Every field is required.
type Deps struct {
	Tokens     apmiddleware.TokenParser
	Providers  handlers.ProviderLister
	Generator  handlers.Generator
	Settings   handlers.SettingsService
	Classifier handlers.IntentClassifier
	Chat       handlers.ChatService
	Audit      handlers.AuditReader
	Logger     *slog.Logger
}

// NewRouter creates the chi router: public health routes plus JWT-protected /api/v1 routes.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apmiddleware.AccessLog(d.Logger))
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES =====

	health := handlers.NewHealthHandler(d.Providers)
	r.Get("/health", health.Health)
	r.Get("/health/providers", health.Providers)

	// ===== PROTECTED ROUTES =====

	generate := handlers.NewGenerateHandler(d.Generator)
	settings := handlers.NewSettingsHandler(d.Settings)
	classify := handlers.NewClassifyHandler(d.Classifier)
	chat := handlers.NewChatHandler(d.Chat)
	generations := handlers.NewGenerationsHandler(d.Audit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware(d.Tokens))

		r.Get("/settings", settings.Get)
		r.Put("/settings", settings.Update)

		r.Route("/generate", func(r chi.Router) {
			r.Post("/suggestion", generate.Suggestion)
			r.Post("/section", generate.Section)
			r.Post("/sections", generate.Sections)
			r.Post("/competitors", generate.Competitors)
			r.Post("/ui-plan", generate.UIPlan)
			r.Post("/db-schema", generate.DBSchema)
			r.Post("/tech-export", generate.TechExport)
			r.Post("/logo", generate.Logo)
			r.Post("/idea-analysis", generate.IdeaAnalysis)
			r.Post("/image-analysis", generate.ImageAnalysis)
		})

		r.Post("/classify", classify.Classify)

		r.Route("/chat", func(r chi.Router) {
			r.Get("/personas", chat.Personas)
			r.Post("/conversations", chat.Start)
			r.Get("/conversations/{id}", chat.Get)
			r.Delete("/conversations/{id}", chat.Delete)
			r.Post("/conversations/{id}/messages", chat.Send)
			r.Post("/conversations/{id}/refine", chat.Refine)
		})

		r.Get("/generations", generations.List)
		r.Get("/generations/stats", generations.Stats)
	})

	return r
}
