package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"secbrief/internal/storage"
)

// IngestStats summarizes one ingest run.
type IngestStats struct {
	Articles int
	Skipped  int
	Errors   int
}

// IndexStats summarizes one index run.
type IndexStats struct {
	Documents int
	Skipped   int
	Chunks    int
	Tokens    int
	Images    int
	Errors    int
}

// previewLen bounds the text_preview column of the summary CSV.
const previewLen = 200

// WriteSummaryCSV exports one row per stored chunk: id, sequence, source
// document title and company, token count, image flag, and a short text
// preview.
func WriteSummaryCSV(ctx context.Context, w io.Writer, docRepo storage.DocumentStore, chunkRepo storage.ChunkStore) error {
	docs, err := docRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	writer := csv.NewWriter(w)
	header := []string{"chunk_id", "seq", "title", "company", "token_count", "has_images", "text_preview"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, doc := range docs {
		chunks, err := chunkRepo.ListByDocument(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("failed to list chunks for %s: %w", doc.ID, err)
		}
		for _, ch := range chunks {
			row := []string{
				ch.ID,
				strconv.Itoa(ch.Seq),
				doc.Title,
				doc.Company,
				strconv.Itoa(ch.TokenCount),
				strconv.FormatBool(ch.HasImages),
				preview(ch.EnrichedText),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen]) + "..."
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
