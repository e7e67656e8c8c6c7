package handlers

import (
	"encoding/json"
	"net/http"

	"secbrief/internal/contextutil"
	"secbrief/internal/rag"
)

// AskHandler answers retrieval-augmented questions.
type AskHandler struct {
	engine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// ServeHTTP handles POST /api/ask. The body mirrors rag.AskRequest and
// the response mirrors rag.AskResponse.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req rag.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Question == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}
	if req.K < 0 {
		req.K = 0
	}

	resp, err := h.engine.Ask(ctx, req)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to answer question")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
