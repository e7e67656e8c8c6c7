// Package enrich replaces image blocks' plain markers with extracted
// image descriptions ahead of chunking and embedding.
package enrich

import (
	"context"
	"errors"

	"secbrief/internal/content"
	"secbrief/internal/contextutil"
	"secbrief/internal/llm"
	"secbrief/internal/storage"
)

// Enricher captions image blocks, caching descriptions per image URL so
// re-indexing never re-captions an unchanged image.
type Enricher struct {
	captioner llm.Captioner
	cache     storage.CaptionStore
	model     string
}

// NewEnricher creates an Enricher. model is recorded on cache entries for
// traceability.
func NewEnricher(captioner llm.Captioner, cache storage.CaptionStore, model string) *Enricher {
	return &Enricher{
		captioner: captioner,
		cache:     cache,
		model:     model,
	}
}

// EnrichBlocks returns a copy of blocks where each image block's
// EnrichedText carries its extracted description. A failed caption falls
// back to the plain marker; one bad image never fails the document.
func (e *Enricher) EnrichBlocks(ctx context.Context, blocks []content.Block) []content.Block {
	logger := contextutil.LoggerFromContext(ctx)

	enriched := make([]content.Block, len(blocks))
	copy(enriched, blocks)

	for i := range enriched {
		block := &enriched[i]
		if block.Kind != content.KindImage || block.ImageURL == "" {
			continue
		}

		caption, err := e.caption(ctx, block.ImageURL, block.AltText)
		if err != nil {
			logger.WarnContext(ctx, "failed to caption image, keeping plain marker",
				"image_url", block.ImageURL, "error", err)
			block.EnrichedText = content.PlainImageMarker(block.AltText)
			continue
		}

		block.EnrichedText = content.EnrichedImageMarker(block.AltText, caption)
	}

	return enriched
}

// caption returns the cached description for an image URL, calling the
// captioner on a cache miss.
func (e *Enricher) caption(ctx context.Context, imageURL, altText string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	cached, err := e.cache.Get(ctx, imageURL)
	if err == nil {
		logger.DebugContext(ctx, "caption cache hit", "image_url", imageURL)
		return cached.Caption, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		logger.WarnContext(ctx, "caption cache read failed", "image_url", imageURL, "error", err)
	}

	caption, err := e.captioner.Describe(ctx, imageURL, altText)
	if err != nil {
		return "", err
	}

	if err := e.cache.Put(ctx, &storage.CaptionRecord{
		ImageURL: imageURL,
		AltText:  altText,
		Caption:  caption,
		Model:    e.model,
	}); err != nil {
		// A failed cache write costs a re-caption next run, nothing more.
		logger.WarnContext(ctx, "caption cache write failed", "image_url", imageURL, "error", err)
	}

	return caption, nil
}
