package embedding

import (
	"context"
	"fmt"

	"github.com/cohabitat/assistant-core/internal/config"
)

// MaxBatchSize caps texts per upstream call. Batching is purely a throughput
// optimization; each text's embedding is independent of its batch.
const MaxBatchSize = 96

// Service provides thread-safe text embedding with a provider fixed at
// construction time. Business logic never selects a provider ad hoc.
type Service struct {
	provider Provider
}

// NewService creates an embedding service using the configured provider.
func NewService(cfg *config.Config) (*Service, error) {
	name := cfg.EmbeddingProvider
	if name == "" {
		name = config.DefaultEmbeddingProvider
	}

	provider, err := DefaultRegistry.Get(name, cfg)
	if err != nil {
		return nil, fmt.Errorf("get provider %s: %w", name, err)
	}

	return &Service{provider: provider}, nil
}

// NewServiceWithProvider creates a service around an existing provider.
// Used by tests to inject fakes.
func NewServiceWithProvider(provider Provider) *Service {
	return &Service{provider: provider}
}

// Name returns the provider identifier.
func (s *Service) Name() string { return s.provider.Name() }

// Dimensions returns the embedding vector size.
func (s *Service) Dimensions() int { return s.provider.Dimensions() }

// EmbedQuery generates an embedding for a single query text.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	results, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// EmbedBatch generates embeddings for multiple texts, splitting the input
// into provider-sized groups. A failed upstream call fails the whole batch;
// no partial or degraded embedding is ever returned.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(texts))

		group, err := s.provider.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(group) != end-start {
			return nil, &ProviderError{
				Provider: s.provider.Name(),
				Err:      fmt.Errorf("provider returned %d embeddings for %d inputs", len(group), end-start),
			}
		}

		for i, vec := range group {
			if len(vec) != s.provider.Dimensions() {
				return nil, &ProviderError{
					Provider: s.provider.Name(),
					Err: fmt.Errorf("embedding %d has dimension %d, want %d",
						start+i, len(vec), s.provider.Dimensions()),
				}
			}
		}
		results = append(results, group...)
	}

	return results, nil
}

// Close releases provider resources.
func (s *Service) Close() error {
	return s.provider.Close()
}
