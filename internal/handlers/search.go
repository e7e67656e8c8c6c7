package handlers

import (
	"encoding/json"
	"net/http"

	"secbrief/internal/contextutil"
	"secbrief/internal/rag"
)

// SearchHandler returns raw scored chunks for a query, without the
// answer-generation step.
type SearchHandler struct {
	engine rag.Engine
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(engine rag.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// ServeHTTP handles POST /api/search.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req rag.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Query == "" {
		logger.WarnContext(ctx, "empty query in request")
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}
	if req.K < 0 {
		req.K = 0
	}

	resp, err := h.engine.Search(ctx, req)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to search")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
