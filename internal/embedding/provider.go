// Package embedding provides text embedding generation with swappable providers.
package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/cohabitat/assistant-core/internal/config"
)

// Provider represents a text embedding backend. All chunks and queries for a
// deployment must come from the same provider: similarity is meaningless
// across embedding spaces.
type Provider interface {
	// Name returns the provider identifier used in configuration.
	Name() string

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// EmbedBatch generates embeddings for multiple texts in one upstream
	// call. Result order matches input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Close releases provider resources.
	Close() error
}

// ProviderError wraps an upstream embedding failure so callers can
// distinguish it from store errors. Never retried by this package.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ProviderMetadata describes a provider for configuration surfaces.
type ProviderMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProviderFactory builds a provider from configuration.
type ProviderFactory func(cfg *config.Config) (Provider, error)

// ProviderRegistry provides provider lookup by name.
type ProviderRegistry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
	metadata  map[string]ProviderMetadata
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		factories: make(map[string]ProviderFactory),
		metadata:  make(map[string]ProviderMetadata),
	}
}

// Register adds a provider factory to the registry.
func (r *ProviderRegistry) Register(meta ProviderMetadata, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[meta.Name] = factory
	r.metadata[meta.Name] = meta
}

// Get builds a provider instance by name.
func (r *ProviderRegistry) Get(name string, cfg *config.Config) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown embedding provider: %s", name)
	}
	return factory(cfg)
}

// List returns metadata for all registered providers.
func (r *ProviderRegistry) List() []ProviderMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]ProviderMetadata, 0, len(r.metadata))
	for _, meta := range r.metadata {
		result = append(result, meta)
	}
	return result
}

// DefaultRegistry is the global provider registry.
var DefaultRegistry = NewProviderRegistry()

// RegisterProvider adds a provider to the default registry.
func RegisterProvider(meta ProviderMetadata, factory ProviderFactory) {
	DefaultRegistry.Register(meta, factory)
}
