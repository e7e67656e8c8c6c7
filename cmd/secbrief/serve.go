package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"secbrief/internal/http"
	"secbrief/internal/rag"
	"secbrief/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the retrieval API server",
	Long: `Serve starts the HTTP API. Endpoints:

  GET  /api/health     dependency health
  POST /api/ask        retrieval-augmented question answering
  POST /api/search     raw scored chunk search
  GET  /api/documents  tracked document listing
  POST /api/index      trigger a background index run`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.RequireAzure(); err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	indexer, store, err := newIndexer(ctx, cfg, db)
	if err != nil {
		return err
	}

	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	engine := rag.NewEngine(
		newEmbedder(cfg),
		newChatClient(cfg),
		store,
		cfg.QdrantCollection,
		chunkRepo,
	)
	slog.Info("retrieval engine initialized")

	router := http.NewRouter(&http.Deps{
		Engine:      engine,
		DocRepo:     docRepo,
		Indexer:     indexer,
		VectorStore: store,
		Collection:  cfg.QdrantCollection,
	})

	server := &nethttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting API server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
