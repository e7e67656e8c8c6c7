package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"secbrief/internal/config"
)

var (
	flagEnvFile string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "secbrief",
	Short: "secbrief - security research ingestion and retrieval",
	Long: `secbrief pulls research articles published by security vendors into a
document store, indexes them into a vector collection, and answers
questions over the indexed corpus with cited sources.

Usage:
  secbrief ingest [--source NAME]... [--limit N]
  secbrief index [--force] [--csv PATH]
  secbrief serve
  secbrief ask "question" [--company NAME]...`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagEnvFile != "" {
			if err := godotenv.Load(flagEnvFile); err != nil {
				return fmt.Errorf("failed to load env file %s: %w", flagEnvFile, err)
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		configureLogging(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "Path to a .env file to load before reading configuration")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func configureLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)
}
