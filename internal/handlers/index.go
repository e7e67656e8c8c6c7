package handlers

import (
	"context"
	"net/http"

	"secbrief/internal/contextutil"
	"secbrief/internal/pipeline"
)

// IndexTrigger runs a full indexing pass over the document store.
type IndexTrigger interface {
	IndexAll(ctx context.Context, force bool) (*pipeline.IndexStats, error)
}

// IndexHandler triggers a background indexing run.
type IndexHandler struct {
	indexer IndexTrigger
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(indexer IndexTrigger) *IndexHandler {
	return &IndexHandler{indexer: indexer}
}

// IndexResponse acknowledges an accepted indexing run.
type IndexResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ServeHTTP handles POST /api/index. Indexing runs in the background; the
// handler returns immediately with 202 Accepted.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	force := r.URL.Query().Get("force") == "true"

	logger.InfoContext(ctx, "indexing triggered", "force", force)

	// Use a background context so indexing continues after the HTTP
	// request completes.
	go func() {
		bgCtx := contextutil.WithLogger(context.Background(), logger)
		stats, err := h.indexer.IndexAll(bgCtx, force)
		if err != nil {
			logger.Error("background indexing failed", "error", err)
			return
		}
		logger.Info("background indexing completed",
			"documents", stats.Documents,
			"skipped", stats.Skipped,
			"chunks", stats.Chunks,
			"errors", stats.Errors)
	}()

	writeJSON(w, http.StatusAccepted, IndexResponse{
		Status:  "accepted",
		Message: "Indexing started in background",
	})
}
