// Package pipeline wires the ingest and index runs: pulling vendor
// articles into the document store, and turning stored documents into
// embedded, searchable chunks.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"secbrief/internal/content"
	"secbrief/internal/contextutil"
	"secbrief/internal/extract"
	"secbrief/internal/notion"
	"secbrief/internal/source"
	"secbrief/internal/storage"
)

// ArticleLister lists recent article URLs for a vendor profile.
type ArticleLister interface {
	List(ctx context.Context, profile source.Profile, limit int) ([]string, error)
}

// Ingestor pulls vendor articles, converts them to blocks, and writes
// them to the document store.
type Ingestor struct {
	lister      ArticleLister
	fetcher     source.PageFetcher
	blocks      *extract.BlockBuilder
	writer      notion.Writer
	docRepo     storage.DocumentStore
	limits      notion.Limits
	delay       time.Duration
	concurrency int
}

// IngestorConfig bundles the Ingestor's tunables.
type IngestorConfig struct {
	Limits      notion.Limits
	Delay       time.Duration
	Concurrency int
}

// NewIngestor creates an Ingestor.
func NewIngestor(
	lister ArticleLister,
	fetcher source.PageFetcher,
	writer notion.Writer,
	docRepo storage.DocumentStore,
	cfg IngestorConfig,
) *Ingestor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Ingestor{
		lister:      lister,
		fetcher:     fetcher,
		blocks:      extract.NewBlockBuilder(),
		writer:      writer,
		docRepo:     docRepo,
		limits:      cfg.Limits,
		delay:       cfg.Delay,
		concurrency: cfg.Concurrency,
	}
}

// IngestAll pulls up to limit recent articles from each profile. Sources
// run in parallel, bounded by the configured concurrency; failures are
// isolated per article.
func (ig *Ingestor) IngestAll(ctx context.Context, profiles []source.Profile, limit int) (*IngestStats, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "starting ingest", "sources", len(profiles), "limit", limit)

	var stats ingestCounters

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ig.concurrency)
	for _, profile := range profiles {
		g.Go(func() error {
			ig.ingestSource(gctx, profile, limit, &stats)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats.snapshot(), err
	}

	result := stats.snapshot()
	logger.InfoContext(ctx, "ingest completed",
		"articles", result.Articles, "skipped", result.Skipped, "errors", result.Errors)

	if result.Errors > 0 {
		return result, fmt.Errorf("ingest completed with %d errors", result.Errors)
	}
	return result, nil
}

// ingestSource lists and ingests one vendor's articles. Errors are
// counted, never propagated: one bad article or source must not stop the
// run.
func (ig *Ingestor) ingestSource(ctx context.Context, profile source.Profile, limit int, stats *ingestCounters) {
	logger := contextutil.LoggerFromContext(ctx)

	urls, err := ig.lister.List(ctx, profile, limit)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list articles", "source", profile.Name, "error", err)
		stats.errors.Add(1)
		return
	}

	for i, url := range urls {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Politeness delay between article fetches from the same host.
		if i > 0 && ig.delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(ig.delay):
			}
		}

		skipped, err := ig.ingestArticle(ctx, profile, url)
		if err != nil {
			logger.ErrorContext(ctx, "failed to ingest article", "source", profile.Name, "url", url, "error", err)
			stats.errors.Add(1)
			continue
		}
		if skipped {
			stats.skipped.Add(1)
			continue
		}
		stats.articles.Add(1)
	}
}

// ingestArticle pulls one article and writes it to the document store,
// returning skipped=true when the URL is already recorded.
func (ig *Ingestor) ingestArticle(ctx context.Context, profile source.Profile, url string) (skipped bool, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	if _, err := ig.docRepo.GetBySourceURL(ctx, url); err == nil {
		logger.DebugContext(ctx, "article already ingested", "url", url)
		return true, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("failed to check existing document: %w", err)
	}

	// The store is authoritative: a fresh local database must not recreate
	// pages that already exist remotely.
	if page, err := ig.writer.FindPageByURL(ctx, url); err == nil {
		logger.InfoContext(ctx, "article already in document store, adopting", "url", url, "page_id", page.ID)
		doc := &storage.DocumentRecord{
			ID:           uuid.NewString(),
			Company:      profile.Company,
			Title:        page.Title,
			SourceURL:    url,
			NotionPageID: page.ID,
			PublishedAt:  page.PublishedAt,
			PulledAt:     time.Now().UTC(),
		}
		if err := ig.docRepo.Upsert(ctx, doc); err != nil {
			return false, fmt.Errorf("failed to record existing page: %w", err)
		}
		return true, nil
	} else if !errors.Is(err, notion.ErrNotFound) {
		return false, fmt.Errorf("failed to check document store: %w", err)
	}

	html, err := ig.fetcher.Fetch(ctx, url)
	if err != nil {
		return false, err
	}

	article, err := extract.ExtractArticle(html, url)
	if err != nil {
		return false, err
	}

	markdown, err := extract.ToMarkdown(article.ContentHTML)
	if err != nil {
		return false, err
	}

	blocks, err := ig.blocks.BlocksFromMarkdown(markdown)
	if err != nil {
		return false, err
	}
	if len(blocks) == 0 {
		return false, fmt.Errorf("no content blocks extracted from %s", url)
	}

	storeBlocks := notion.Convert(itemsFromBlocks(blocks), ig.limits)

	title := article.Title
	if title == "" {
		title = url
	}

	pageID, err := ig.writer.CreatePage(ctx, notion.PageProperties{
		Title:         title,
		Company:       profile.Company,
		SourceURL:     url,
		PublishedAt:   article.PublishedAt,
		PulledAt:      time.Now().UTC(),
		ImageURLs:     article.Images,
		OutboundLinks: article.Links,
	}, storeBlocks)
	if err != nil {
		return false, fmt.Errorf("failed to create page: %w", err)
	}

	hash := sha256.Sum256([]byte(markdown))
	doc := &storage.DocumentRecord{
		ID:           uuid.NewString(),
		Company:      profile.Company,
		Title:        title,
		SourceURL:    url,
		NotionPageID: pageID,
		ContentHash:  hex.EncodeToString(hash[:]),
		PublishedAt:  article.PublishedAt,
		PulledAt:     time.Now().UTC(),
	}
	if err := ig.docRepo.Upsert(ctx, doc); err != nil {
		return false, fmt.Errorf("failed to record document: %w", err)
	}

	logger.InfoContext(ctx, "ingested article",
		"source", profile.Name, "url", url, "blocks", len(blocks), "page_id", pageID)
	return false, nil
}

// itemsFromBlocks renders content blocks back into the per-block markdown
// units the store converter scans.
func itemsFromBlocks(blocks []content.Block) []string {
	items := make([]string, 0, len(blocks))
	for _, block := range blocks {
		switch block.Kind {
		case content.KindHeading:
			level := block.Level
			if level < 1 {
				level = 1
			}
			if level > 6 {
				level = 6
			}
			items = append(items, strings.Repeat("#", level)+" "+block.RawText)
		case content.KindImage:
			items = append(items, fmt.Sprintf("![%s](%s)", block.AltText, block.ImageURL))
		default:
			items = append(items, block.EnrichedText)
		}
	}
	return items
}

// ingestCounters accumulates run totals across source goroutines.
type ingestCounters struct {
	articles atomic.Int64
	skipped  atomic.Int64
	errors   atomic.Int64
}

func (c *ingestCounters) snapshot() *IngestStats {
	return &IngestStats{
		Articles: int(c.articles.Load()),
		Skipped:  int(c.skipped.Load()),
		Errors:   int(c.errors.Load()),
	}
}
