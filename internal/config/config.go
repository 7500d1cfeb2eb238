// Package config provides configuration management for the assistant core.
package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

const (
	// DefaultWorkerPort is the default HTTP port for the ingest worker.
	DefaultWorkerPort = 38100

	// DefaultEmbeddingProvider selects the embedding backend. The provider
	// is fixed per deployment; switching it requires re-embedding every chunk.
	DefaultEmbeddingProvider = "openai"

	// DefaultEmbeddingDimensions must match the vector column dimension.
	DefaultEmbeddingDimensions = 1536
)

// Config holds the application configuration.
type Config struct {
	// Database settings
	DatabaseDSN string `json:"database_dsn"`
	MaxConns    int    `json:"max_conns"`

	// Embedding settings
	EmbeddingProvider   string `json:"embedding_provider"`
	EmbeddingAPIKey     string `json:"-"`
	EmbeddingBaseURL    string `json:"embedding_base_url"`
	EmbeddingModel      string `json:"embedding_model"`
	EmbeddingDimensions int    `json:"embedding_dimensions"`

	// Worker settings
	WorkerPort int `json:"worker_port"`
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		MaxConns:            10,
		EmbeddingProvider:   DefaultEmbeddingProvider,
		EmbeddingDimensions: DefaultEmbeddingDimensions,
		WorkerPort:          DefaultWorkerPort,
	}
}

// Load builds configuration from environment variables merged over defaults.
func Load() (*Config, error) {
	cfg := Default()

	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("DATABASE_MAX_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConns = n
		}
	}
	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		cfg.EmbeddingProvider = v
	}
	cfg.EmbeddingAPIKey = os.Getenv("EMBEDDING_API_KEY")
	cfg.EmbeddingBaseURL = os.Getenv("EMBEDDING_BASE_URL")
	cfg.EmbeddingModel = os.Getenv("EMBEDDING_MODEL")
	if v := os.Getenv("EMBEDDING_DIMENSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid EMBEDDING_DIMENSIONS %q", v)
		}
		cfg.EmbeddingDimensions = n
	}
	if v := os.Getenv("WORKER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WorkerPort = n
		}
	}

	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN is required")
	}

	return cfg, nil
}

// Get returns the global configuration, loading it if necessary.
// It falls back to defaults when loading fails.
func Get() *Config {
	configOnce.Do(func() {
		var err error
		globalConfig, err = Load()
		if err != nil {
			globalConfig = Default()
		}
	})
	return globalConfig
}

// GetEmbeddingProvider returns the configured embedding provider name.
func GetEmbeddingProvider() string {
	return Get().EmbeddingProvider
}

// GetEmbeddingDimensions returns the configured embedding dimension.
func GetEmbeddingDimensions() int {
	return Get().EmbeddingDimensions
}
