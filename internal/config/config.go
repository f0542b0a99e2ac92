// Package config loads application configuration from environment
// variables with sensible defaults.
package config

import (
	"os"
	"strconv"
)

// Config holds every tunable for the web server and the ingestion CLI.
type Config struct {
	// Server
	Port       string
	AdminToken string

	// Leads
	LeadsCSVPath string

	// Blob storage
	BlobEndpoint   string
	BlobToken      string
	BlobPublicBase string

	// Chat
	ChatModel string

	// Embedding providers
	EmbeddingProvider string
	EmbeddingModel    string
	OpenAIKey         string
	JinaKey           string

	// Ingestion
	SourceDir       string
	IndexPath       string
	CachePath       string
	ChunkSize       int
	ChunkOverlap    int
	EmbedBatchSize  int
	EmbedMaxRetries int
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Port:       envOrDefault("PORT", "8080"),
		AdminToken: os.Getenv("ADMIN_TOKEN"),

		LeadsCSVPath: envOrDefault("LEADS_CSV_PATH", "data/leads.csv"),

		BlobEndpoint:   os.Getenv("BLOB_ENDPOINT"),
		BlobToken:      os.Getenv("BLOB_TOKEN"),
		BlobPublicBase: os.Getenv("BLOB_PUBLIC_BASE"),

		ChatModel: envOrDefault("CHAT_MODEL", "gpt-4o-mini"),

		EmbeddingProvider: os.Getenv("EMBEDDING_PROVIDER"),
		EmbeddingModel:    os.Getenv("EMBEDDING_MODEL"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		JinaKey:           os.Getenv("JINA_API_KEY"),

		SourceDir:       envOrDefault("SOURCE_DIR", "data/knowledge"),
		IndexPath:       envOrDefault("INDEX_PATH", "data/kb-index.json"),
		CachePath:       envOrDefault("CACHE_PATH", "data/kb-cache.json"),
		ChunkSize:       envOrDefaultInt("CHUNK_SIZE", 1200),
		ChunkOverlap:    envOrDefaultInt("CHUNK_OVERLAP", 200),
		EmbedBatchSize:  envOrDefaultInt("EMBED_BATCH_SIZE", 16),
		EmbedMaxRetries: envOrDefaultInt("EMBED_MAX_RETRIES", 6),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
