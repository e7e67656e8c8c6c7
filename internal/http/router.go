// Package http wires the API handlers into a chi router.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"secbrief/internal/handlers"
	"secbrief/internal/rag"
	"secbrief/internal/storage"
	"secbrief/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine      rag.Engine
	DocRepo     storage.DocumentStore
	Indexer     handlers.IndexTrigger
	VectorStore vectorstore.VectorStore
	Collection  string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	askHandler := handlers.NewAskHandler(deps.Engine)
	searchHandler := handlers.NewSearchHandler(deps.Engine)
	documentsHandler := handlers.NewDocumentsHandler(deps.DocRepo)
	indexHandler := handlers.NewIndexHandler(deps.Indexer)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodPost, "/search", searchHandler)
		r.Method(http.MethodGet, "/documents", documentsHandler)
		r.Method(http.MethodPost, "/index", indexHandler)
	})

	// Service status at root
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"service": "secbrief",
			"status":  "running",
		})
	})

	return r
}
