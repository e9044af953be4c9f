package api

import (
	"net/http"

	"github.com/bcnelson/addrscope/internal/api/handler"
	"github.com/bcnelson/addrscope/internal/api/middleware"
	"github.com/bcnelson/addrscope/internal/service"
	"github.com/bcnelson/addrscope/internal/storage"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new HTTP router with all routes configured. verifier
// may be nil to accept API keys only.
func NewRouter(
	store storage.Storage,
	svc *service.InspectorService,
	bootstrapKey string,
	verifier middleware.TokenVerifier,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)

	// Health check (no auth required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes (auth required, JSON Content-Type)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentType)
		r.Use(middleware.Auth(store, bootstrapKey, verifier))

		// API Keys
		keyHandler := handler.NewAPIKeyHandler(store)
		r.Post("/keys", keyHandler.Create)
		r.Get("/keys", keyHandler.List)
		r.Delete("/keys/{id}", keyHandler.Delete)

		// Pipeline
		inspectHandler := handler.NewInspectHandler(svc)
		r.Post("/split", inspectHandler.Split)
		r.Post("/classify", inspectHandler.Classify)
		r.Get("/compatibility", inspectHandler.Compatibility)
		r.Post("/compare", inspectHandler.Compare)
		r.Post("/inspect", inspectHandler.Inspect)
		r.Post("/analyze", inspectHandler.Analyze)
		r.Post("/filter", inspectHandler.Filter)
		r.Post("/summary", inspectHandler.Summary)
		r.Post("/export", inspectHandler.Export)

		// Reports
		reportHandler := handler.NewReportHandler(svc)
		r.Post("/reports", reportHandler.Create)
		r.Get("/reports", reportHandler.List)
		r.Get("/reports/{id}", reportHandler.Get)
		r.Put("/reports/{id}", reportHandler.Update)
		r.Delete("/reports/{id}", reportHandler.Delete)
		r.Get("/reports/{id}/export", reportHandler.Export)
	})

	return r
}
