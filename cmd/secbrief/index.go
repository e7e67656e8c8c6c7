package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"secbrief/internal/pipeline"
	"secbrief/internal/storage"
)

var (
	flagIndexForce bool
	flagIndexCSV   string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Chunk, embed and index document store pages",
	Long: `Index reads pages from the document store, enriches image blocks with
cached captions, assembles token-bounded chunks, embeds them and upserts
the vectors. Pages unchanged since the last run are skipped unless
--force is given.

Examples:
  secbrief index
  secbrief index --force --csv chunks_summary.csv`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().BoolVar(&flagIndexForce, "force", false, "Reindex pages even when unchanged")
	indexCmd.Flags().StringVar(&flagIndexCSV, "csv", "", "Write a chunk summary CSV to this path after indexing")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	indexer, _, err := newIndexer(ctx, cfg, db)
	if err != nil {
		return err
	}

	stats, err := indexer.IndexAll(ctx, flagIndexForce)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d documents (%d skipped): %d chunks, %d tokens, %d images, %d errors\n",
		stats.Documents, stats.Skipped, stats.Chunks, stats.Tokens, stats.Images, stats.Errors)

	if flagIndexCSV != "" {
		f, err := os.Create(flagIndexCSV)
		if err != nil {
			return fmt.Errorf("failed to create csv file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		if err := pipeline.WriteSummaryCSV(ctx, f, storage.NewDocumentRepo(db), storage.NewChunkRepo(db)); err != nil {
			return fmt.Errorf("failed to write csv summary: %w", err)
		}
		fmt.Printf("Wrote chunk summary to %s\n", flagIndexCSV)
	}
	return nil
}
