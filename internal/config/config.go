package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Document store (Notion).
	NotionAPIKey       string
	NotionDatabaseID   string
	NotionParentPageID string
	NotionDatabaseName string
	NotionRunLimit     int
	NotionBlockLimit   int

	// Azure OpenAI.
	AzureEndpoint        string
	AzureAPIKey          string
	AzureAPIVersion      string
	EmbeddingDeployment  string
	ChatDeployment       string
	VisionDeployment     string
	EmbeddingVectorSize  int

	// Local storage and vector index.
	DBPath           string
	QdrantURL        string
	QdrantCollection string

	// Chunking.
	MaxTokensPerChunk int
	OverlapTokens     int
	TokenizerEncoding string

	// Ingestion.
	MaxPagesPerRun    int
	ScrapeMaxArticles int
	ScrapeDelayMs     int
	IngestConcurrency int
	HTTPTimeoutSecs   int

	// Server and logging.
	Port      string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config.
// It applies defaults for optional fields; required fields are validated
// separately per command via RequireNotion / RequireAzure so that the pure
// engine paths never demand external secrets.
// If a .env file exists in the current directory or project root, it is
// loaded automatically; environment variables already set take precedence.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		NotionAPIKey:       os.Getenv("NOTION_API_KEY"),
		NotionDatabaseID:   os.Getenv("NOTION_DATABASE_ID"),
		NotionParentPageID: os.Getenv("NOTION_PARENT_PAGE_ID"),
		NotionDatabaseName: getEnv("NOTION_DATABASE_NAME", "Security Research"),

		AzureEndpoint:       os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureAPIKey:         os.Getenv("AZURE_OPENAI_API_KEY"),
		AzureAPIVersion:     getEnv("AZURE_OPENAI_API_VERSION", "2024-02-01"),
		EmbeddingDeployment: getEnv("AZURE_EMBEDDING_DEPLOYMENT", "text-embedding-3-small"),
		ChatDeployment:      getEnv("AZURE_CHAT_DEPLOYMENT", "gpt-4o"),
		VisionDeployment:    os.Getenv("AZURE_VISION_DEPLOYMENT"),

		DBPath:           getEnv("DB_PATH", "./data/secbrief.db"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "research_chunks"),

		TokenizerEncoding: getEnv("TOKENIZER_ENCODING", "cl100k_base"),

		Port:      getEnv("PORT", "8080"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	// The vision deployment defaults to the chat deployment; both resolve to
	// a multimodal model in the reference setup.
	if cfg.VisionDeployment == "" {
		cfg.VisionDeployment = cfg.ChatDeployment
	}

	var err error
	if cfg.EmbeddingVectorSize, err = getEnvInt("EMBEDDING_VECTOR_SIZE", 1536); err != nil {
		return nil, err
	}
	if cfg.MaxTokensPerChunk, err = getEnvInt("MAX_TOKENS_PER_CHUNK", 380); err != nil {
		return nil, err
	}
	if cfg.OverlapTokens, err = getEnvInt("OVERLAP_TOKENS", 40); err != nil {
		return nil, err
	}
	if cfg.NotionRunLimit, err = getEnvInt("NOTION_RICH_TEXT_LIMIT", 1900); err != nil {
		return nil, err
	}
	if cfg.NotionBlockLimit, err = getEnvInt("NOTION_BLOCK_LIMIT", 2000); err != nil {
		return nil, err
	}
	if cfg.MaxPagesPerRun, err = getEnvInt("MAX_PAGES_PER_RUN", 100); err != nil {
		return nil, err
	}
	if cfg.ScrapeMaxArticles, err = getEnvInt("SCRAPE_MAX_ARTICLES", 25); err != nil {
		return nil, err
	}
	if cfg.ScrapeDelayMs, err = getEnvInt("SCRAPE_DELAY_MS", 1500); err != nil {
		return nil, err
	}
	if cfg.IngestConcurrency, err = getEnvInt("INGEST_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeoutSecs, err = getEnvInt("HTTP_TIMEOUT_SECONDS", 30); err != nil {
		return nil, err
	}

	if cfg.MaxTokensPerChunk <= 0 {
		return nil, fmt.Errorf("MAX_TOKENS_PER_CHUNK must be greater than 0")
	}
	if cfg.OverlapTokens < 0 {
		return nil, fmt.Errorf("OVERLAP_TOKENS must not be negative")
	}
	if cfg.EmbeddingVectorSize <= 0 {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be greater than 0")
	}

	cfg.LogLevel = parseLogLevel(getEnv("LOG_LEVEL", "info"))

	// Create the data directory if it doesn't exist (for the DB file).
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// RequireNotion validates the fields the document store client needs.
func (c *Config) RequireNotion() error {
	if c.NotionAPIKey == "" {
		return fmt.Errorf("NOTION_API_KEY is required")
	}
	if c.NotionDatabaseID == "" && c.NotionParentPageID == "" {
		return fmt.Errorf("NOTION_DATABASE_ID or NOTION_PARENT_PAGE_ID is required")
	}
	return nil
}

// RequireAzure validates the fields the Azure OpenAI clients need.
func (c *Config) RequireAzure() error {
	if c.AzureEndpoint == "" {
		return fmt.Errorf("AZURE_OPENAI_ENDPOINT is required")
	}
	if c.AzureAPIKey == "" {
		return fmt.Errorf("AZURE_OPENAI_API_KEY is required")
	}
	return nil
}

// loadDotEnv tries the current directory first, then walks up a few levels
// so commands run from subdirectories still pick up the project .env.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
