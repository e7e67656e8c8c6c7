package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"secbrief/internal/notion"
	"secbrief/internal/pipeline"
	"secbrief/internal/source"
	"secbrief/internal/storage"
)

var (
	flagIngestSources []string
	flagIngestLimit   int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Pull vendor research articles into the document store",
	Long: `Ingest lists recent articles from the configured vendor blogs, extracts
their content, and writes each new article as a page in the document
store. Articles already tracked by source URL are skipped.

Examples:
  secbrief ingest
  secbrief ingest --source okta --source crowdstrike --limit 10`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringSliceVar(&flagIngestSources, "source", nil, "Vendor source name (repeatable; default: all sources)")
	ingestCmd.Flags().IntVar(&flagIngestLimit, "limit", 0, "Maximum articles per source (default: SCRAPE_MAX_ARTICLES)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	profiles, err := resolveProfiles(flagIngestSources)
	if err != nil {
		return err
	}

	limit := flagIngestLimit
	if limit <= 0 {
		limit = cfg.ScrapeMaxArticles
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	writer, err := newNotionClient(ctx, cfg)
	if err != nil {
		return err
	}

	fetcher := newFetcher(cfg)
	ingestor := pipeline.NewIngestor(
		source.NewLister(fetcher),
		fetcher,
		writer,
		storage.NewDocumentRepo(db),
		pipeline.IngestorConfig{
			Limits: notion.Limits{
				RunLimit:     cfg.NotionRunLimit,
				BlockCeiling: cfg.NotionBlockLimit,
			},
			Delay:       time.Duration(cfg.ScrapeDelayMs) * time.Millisecond,
			Concurrency: cfg.IngestConcurrency,
		},
	)

	stats, err := ingestor.IngestAll(ctx, profiles, limit)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d articles (%d skipped, %d errors)\n", stats.Articles, stats.Skipped, stats.Errors)
	return nil
}

func resolveProfiles(names []string) ([]source.Profile, error) {
	if len(names) == 0 {
		return source.All(), nil
	}
	profiles := make([]source.Profile, 0, len(names))
	for _, name := range names {
		profile, err := source.ByName(name)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}
