package handlers

import (
	"net/http"
	"time"

	"secbrief/internal/contextutil"
	"secbrief/internal/storage"
)

// DocumentsHandler lists the tracked documents.
type DocumentsHandler struct {
	docRepo storage.DocumentStore
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(docRepo storage.DocumentStore) *DocumentsHandler {
	return &DocumentsHandler{docRepo: docRepo}
}

// DocumentSummary is one tracked document in the listing response.
type DocumentSummary struct {
	ID            string `json:"id"`
	Company       string `json:"company"`
	Title         string `json:"title"`
	SourceURL     string `json:"source_url"`
	PublishedAt   string `json:"published_at,omitempty"`
	LastIndexedAt string `json:"last_indexed_at,omitempty"`
}

// DocumentsResponse is the document listing response.
type DocumentsResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Count     int               `json:"count"`
}

// ServeHTTP handles GET /api/documents.
func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	docs, err := h.docRepo.ListAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	summaries := make([]DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, DocumentSummary{
			ID:            doc.ID,
			Company:       doc.Company,
			Title:         doc.Title,
			SourceURL:     doc.SourceURL,
			PublishedAt:   formatTime(doc.PublishedAt),
			LastIndexedAt: formatTime(doc.LastIndexedAt),
		})
	}

	writeJSON(w, http.StatusOK, DocumentsResponse{
		Documents: summaries,
		Count:     len(summaries),
	})
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
