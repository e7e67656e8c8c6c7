package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"secbrief/internal/chunk"
	"secbrief/internal/content"
	"secbrief/internal/contextutil"
	"secbrief/internal/llm"
	"secbrief/internal/notion"
	"secbrief/internal/storage"
	"secbrief/internal/vectorstore"
)

// BlockEnricher substitutes image descriptions into content blocks.
type BlockEnricher interface {
	EnrichBlocks(ctx context.Context, blocks []content.Block) []content.Block
}

// Indexer turns document store pages into embedded chunks in the vector
// index, tracking per-document edit times to skip unchanged pages.
type Indexer struct {
	reader     notion.Reader
	docRepo    storage.DocumentStore
	chunkRepo  storage.ChunkStore
	enricher   BlockEnricher
	assembler  *chunk.Assembler
	embedder   llm.Embedder
	store      vectorstore.VectorStore
	collection string
	maxPages   int
}

// NewIndexer creates an Indexer. maxPages caps how many pages one run
// processes.
func NewIndexer(
	reader notion.Reader,
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
	enricher BlockEnricher,
	assembler *chunk.Assembler,
	embedder llm.Embedder,
	store vectorstore.VectorStore,
	collection string,
	maxPages int,
) *Indexer {
	return &Indexer{
		reader:     reader,
		docRepo:    docRepo,
		chunkRepo:  chunkRepo,
		enricher:   enricher,
		assembler:  assembler,
		embedder:   embedder,
		store:      store,
		collection: collection,
		maxPages:   maxPages,
	}
}

// IndexAll processes every stored page, skipping pages whose last edit
// time matches the previous index pass unless force is set. Failures are
// isolated per page.
func (ix *Indexer) IndexAll(ctx context.Context, force bool) (*IndexStats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	pages, err := ix.reader.QueryPages(ctx, ix.maxPages)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}

	logger.InfoContext(ctx, "starting index run", "pages", len(pages), "force", force)

	stats := &IndexStats{}
	for _, page := range pages {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		skipped, err := ix.indexPage(ctx, page, force, stats)
		if err != nil {
			stats.Errors++
			logger.ErrorContext(ctx, "failed to index page", "page_id", page.ID, "title", page.Title, "error", err)
			continue
		}
		if skipped {
			stats.Skipped++
			continue
		}
		stats.Documents++
	}

	logger.InfoContext(ctx, "index run completed",
		"documents", stats.Documents, "skipped", stats.Skipped,
		"chunks", stats.Chunks, "tokens", stats.Tokens,
		"images", stats.Images, "errors", stats.Errors)

	if stats.Errors > 0 {
		return stats, fmt.Errorf("indexing completed with %d errors", stats.Errors)
	}
	return stats, nil
}

// indexPage chunks, embeds, and stores one page. It reports skipped=true
// when the page is unchanged since the last pass.
func (ix *Indexer) indexPage(ctx context.Context, page notion.Page, force bool, stats *IndexStats) (skipped bool, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	doc, err := ix.docRepo.GetByPageID(ctx, page.ID)
	switch {
	case err == nil:
		if !force && !doc.LastEditedAt.IsZero() && doc.LastEditedAt.Equal(page.LastEditedAt) {
			logger.DebugContext(ctx, "page unchanged, skipping", "page_id", page.ID, "title", page.Title)
			return true, nil
		}
	case errors.Is(err, storage.ErrNotFound):
		// Page created outside ingest (or before its tracking); adopt it.
		doc = &storage.DocumentRecord{
			ID:           uuid.NewString(),
			Company:      page.Company,
			Title:        page.Title,
			SourceURL:    page.SourceURL,
			NotionPageID: page.ID,
			PublishedAt:  page.PublishedAt,
		}
		if err := ix.docRepo.Upsert(ctx, doc); err != nil {
			return false, fmt.Errorf("failed to adopt page: %w", err)
		}
		// Upsert keeps the original id when the source URL already exists.
		if existing, err := ix.docRepo.GetByPageID(ctx, page.ID); err == nil {
			doc = existing
		}
	default:
		return false, fmt.Errorf("failed to look up document: %w", err)
	}

	blocks, err := ix.reader.PageBlocks(ctx, page.ID)
	if err != nil {
		return false, fmt.Errorf("failed to read page blocks: %w", err)
	}

	enriched := ix.enricher.EnrichBlocks(ctx, blocks)

	chunks, err := ix.assembler.Assemble(doc.ID, enriched)
	if err != nil {
		return false, fmt.Errorf("failed to assemble chunks: %w", err)
	}

	// Remove stale vectors and rows before writing the new set.
	stalePoints, err := ix.chunkRepo.ListPointIDsByDocument(ctx, doc.ID)
	if err != nil {
		return false, fmt.Errorf("failed to list stale points: %w", err)
	}
	if len(stalePoints) > 0 {
		if err := ix.store.Delete(ctx, ix.collection, stalePoints); err != nil {
			return false, fmt.Errorf("failed to delete stale points: %w", err)
		}
	}
	if err := ix.chunkRepo.DeleteByDocument(ctx, doc.ID); err != nil {
		return false, fmt.Errorf("failed to delete stale chunks: %w", err)
	}

	if len(chunks) == 0 {
		logger.WarnContext(ctx, "page produced no chunks", "page_id", page.ID, "title", page.Title)
		if err := ix.docRepo.MarkIndexed(ctx, doc.ID, page.LastEditedAt); err != nil {
			return false, fmt.Errorf("failed to mark document indexed: %w", err)
		}
		return false, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.EnrichedText
	}
	vectors, err := ix.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return false, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return false, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(chunks))
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, ch := range chunks {
		points[i] = vectorstore.Point{
			ID:  PointID(ch.ID),
			Vec: vectors[i],
			Meta: map[string]any{
				"chunk_id":      ch.ID,
				"document_id":   doc.ID,
				"company":       doc.Company,
				"title":         doc.Title,
				"url":           doc.SourceURL,
				"published_at":  formatDate(doc.PublishedAt),
				"text":          ch.Text,
				"has_images":    ch.HasImages,
				"content_kinds": joinKinds(ch.ContentKinds),
			},
		}
	}
	if err := ix.store.Upsert(ctx, ix.collection, points); err != nil {
		return false, fmt.Errorf("failed to upsert points: %w", err)
	}

	for i, ch := range chunks {
		record := &storage.ChunkRecord{
			ID:           ch.ID,
			DocumentID:   doc.ID,
			Seq:          i + 1,
			Text:         ch.Text,
			EnrichedText: ch.EnrichedText,
			TokenCount:   ch.TokenCount,
			HasImages:    ch.HasImages,
			ContentKinds: joinKinds(ch.ContentKinds),
			PointID:      points[i].ID,
		}
		if err := ix.chunkRepo.Insert(ctx, record); err != nil {
			return false, fmt.Errorf("failed to insert chunk %s: %w", ch.ID, err)
		}

		stats.Chunks++
		stats.Tokens += ch.TokenCount
		if ch.HasImages {
			stats.Images++
		}
	}

	if err := ix.docRepo.MarkIndexed(ctx, doc.ID, page.LastEditedAt); err != nil {
		return false, fmt.Errorf("failed to mark document indexed: %w", err)
	}

	logger.InfoContext(ctx, "indexed page", "page_id", page.ID, "title", page.Title, "chunks", len(chunks))
	return false, nil
}

// PointID derives the deterministic vector point id for a chunk, so a
// re-index overwrites rather than duplicates.
func PointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}

func joinKinds(kinds []content.BlockKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}
