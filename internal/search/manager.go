// Package search provides the scoped semantic retrieval engine.
package search

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/cohabitat/assistant-core/internal/db"
	"github.com/cohabitat/assistant-core/internal/embedding"
	"github.com/cohabitat/assistant-core/pkg/models"
)

const (
	// DefaultLimit is the result cap used by the searchDocuments tool.
	DefaultLimit = 5

	// MaxLimit bounds any caller-supplied limit.
	MaxLimit = 50

	slowSearchThreshold = 500 * time.Millisecond
)

// Metrics tracks retrieval statistics.
type Metrics struct {
	TotalSearches  int64
	EmbedFailures  int64
	SearchFailures int64
	TotalLatencyNs int64
}

// Stats returns a snapshot of the current search statistics.
func (m *Metrics) Stats() map[string]any {
	total := atomic.LoadInt64(&m.TotalSearches)
	latency := atomic.LoadInt64(&m.TotalLatencyNs)

	avgLatencyMs := float64(0)
	if total > 0 {
		avgLatencyMs = float64(latency) / float64(total) / 1e6
	}

	return map[string]any{
		"total_searches":  total,
		"embed_failures":  atomic.LoadInt64(&m.EmbedFailures),
		"search_failures": atomic.LoadInt64(&m.SearchFailures),
		"avg_latency_ms":  avgLatencyMs,
	}
}

// Manager ranks document chunks by vector similarity within a party scope.
// Every call recomputes; results are never cached, so a search always
// reflects the current chunk set.
type Manager struct {
	embedder *embedding.Service
	searcher db.ChunkSearcher
	group    singleflight.Group
	metrics  Metrics
}

// NewManager creates a retrieval manager.
func NewManager(embedder *embedding.Service, searcher db.ChunkSearcher) *Manager {
	return &Manager{embedder: embedder, searcher: searcher}
}

// Search ranks chunks for a pre-computed query embedding. The party scope
// and readiness filter are applied by the store before ranking. Fewer than
// limit eligible chunks is not an error; neither is an empty scope.
func (m *Manager) Search(ctx context.Context, partyID uuid.UUID, queryEmbedding []float32, limit int) ([]models.RankedChunk, error) {
	if len(queryEmbedding) != m.embedder.Dimensions() {
		return nil, fmt.Errorf("query embedding has dimension %d, want %d",
			len(queryEmbedding), m.embedder.Dimensions())
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	start := time.Now()
	atomic.AddInt64(&m.metrics.TotalSearches, 1)

	results, err := m.searcher.SearchChunks(ctx, partyID, queryEmbedding, limit)
	if err != nil {
		atomic.AddInt64(&m.metrics.SearchFailures, 1)
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	elapsed := time.Since(start)
	atomic.AddInt64(&m.metrics.TotalLatencyNs, elapsed.Nanoseconds())
	if elapsed > slowSearchThreshold {
		log.Warn().
			Str("party_id", partyID.String()).
			Dur("elapsed", elapsed).
			Int("results", len(results)).
			Msg("Slow vector search")
	}

	return results, nil
}

// SearchText embeds a query and ranks chunks for it. Identical concurrent
// queries within a party are coalesced into a single embed+search.
func (m *Manager) SearchText(ctx context.Context, partyID uuid.UUID, query string, limit int) ([]models.RankedChunk, error) {
	key := fmt.Sprintf("%s|%d|%s", partyID, limit, query)

	v, err, _ := m.group.Do(key, func() (any, error) {
		queryEmbedding, err := m.embedder.EmbedQuery(ctx, query)
		if err != nil {
			atomic.AddInt64(&m.metrics.EmbedFailures, 1)
			return nil, fmt.Errorf("embed query: %w", err)
		}
		return m.Search(ctx, partyID, queryEmbedding, limit)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.RankedChunk), nil
}

// Stats returns the manager's retrieval statistics.
func (m *Manager) Stats() map[string]any {
	return m.metrics.Stats()
}
