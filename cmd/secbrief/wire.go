package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"time"

	"secbrief/internal/chunk"
	"secbrief/internal/config"
	"secbrief/internal/enrich"
	"secbrief/internal/fetch"
	"secbrief/internal/llm"
	"secbrief/internal/notion"
	"secbrief/internal/pipeline"
	"secbrief/internal/storage"
	"secbrief/internal/token"
	"secbrief/internal/vectorstore"
)

// openDatabase opens the sqlite database and applies migrations.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("database initialized", "path", cfg.DBPath)
	return db, nil
}

// newVectorStore connects to Qdrant and ensures the collection exists.
func newVectorStore(ctx context.Context, cfg *config.Config) (*vectorstore.QdrantStore, error) {
	store, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store client: %w", err)
	}
	if err := store.EnsureCollection(ctx, cfg.QdrantCollection, cfg.EmbeddingVectorSize); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}
	slog.Info("vector collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.EmbeddingVectorSize)
	return store, nil
}

// newNotionClient builds the document store client, resolving the database
// id from the parent page when it is not configured directly.
func newNotionClient(ctx context.Context, cfg *config.Config) (*notion.Client, error) {
	if err := cfg.RequireNotion(); err != nil {
		return nil, err
	}
	client := notion.NewClient(cfg.NotionAPIKey, cfg.NotionDatabaseID)
	if client.DatabaseID == "" {
		dbID, err := client.EnsureDatabase(ctx, cfg.NotionParentPageID, cfg.NotionDatabaseName)
		if err != nil {
			return nil, fmt.Errorf("failed to ensure database: %w", err)
		}
		client.DatabaseID = dbID
		slog.Info("document database resolved", "database_id", dbID)
	}
	return client, nil
}

func newEmbedder(cfg *config.Config) *llm.EmbeddingsClient {
	return llm.NewEmbeddingsClient(cfg.AzureEndpoint, cfg.AzureAPIKey, cfg.AzureAPIVersion, cfg.EmbeddingDeployment, cfg.EmbeddingVectorSize)
}

func newChatClient(cfg *config.Config) *llm.Client {
	return llm.NewClient(cfg.AzureEndpoint, cfg.AzureAPIKey, cfg.AzureAPIVersion, cfg.ChatDeployment)
}

func newCaptioner(cfg *config.Config) *llm.VisionClient {
	return llm.NewVisionClient(cfg.AzureEndpoint, cfg.AzureAPIKey, cfg.AzureAPIVersion, cfg.VisionDeployment)
}

func newAssembler(cfg *config.Config) (*chunk.Assembler, error) {
	tk, err := token.NewTiktoken(cfg.TokenizerEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}
	return chunk.NewAssembler(tk, cfg.MaxTokensPerChunk, cfg.OverlapTokens), nil
}

func newFetcher(cfg *config.Config) *fetch.Fetcher {
	return fetch.New(fetch.WithClient(&nethttp.Client{
		Timeout: time.Duration(cfg.HTTPTimeoutSecs) * time.Second,
	}))
}

// newIndexer wires the full indexing pipeline: document store reader,
// caption enrichment, chunk assembly, embeddings and the vector store.
func newIndexer(ctx context.Context, cfg *config.Config, db *sql.DB) (*pipeline.Indexer, *vectorstore.QdrantStore, error) {
	if err := cfg.RequireAzure(); err != nil {
		return nil, nil, err
	}

	reader, err := newNotionClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := newVectorStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	assembler, err := newAssembler(cfg)
	if err != nil {
		return nil, nil, err
	}

	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)
	captionRepo := storage.NewCaptionRepo(db)

	enricher := enrich.NewEnricher(newCaptioner(cfg), captionRepo, cfg.VisionDeployment)

	indexer := pipeline.NewIndexer(
		reader,
		docRepo,
		chunkRepo,
		enricher,
		assembler,
		newEmbedder(cfg),
		store,
		cfg.QdrantCollection,
		cfg.MaxPagesPerRun,
	)
	return indexer, store, nil
}
