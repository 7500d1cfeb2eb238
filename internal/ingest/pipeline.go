// Package ingest embeds pending document chunks and flips documents ready.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tiktoken-go/tokenizer"

	"github.com/cohabitat/assistant-core/internal/db"
	"github.com/cohabitat/assistant-core/internal/embedding"
	"github.com/cohabitat/assistant-core/pkg/models"
)

const (
	// DefaultPollInterval is how often the pipeline looks for pending documents.
	DefaultPollInterval = 5 * time.Second

	// pendingBatchSize caps documents picked up per poll.
	pendingBatchSize = 10
)

// Pipeline embeds the chunks of pending documents. Chunk boundaries are
// pre-computed at upload; this pipeline only attaches embeddings and token
// counts, then transitions the document to ready or failed.
type Pipeline struct {
	docs     db.DocumentStore
	embedder *embedding.Service
	codec    tokenizer.Codec
	interval time.Duration
}

// NewPipeline creates an ingest pipeline.
func NewPipeline(docs db.DocumentStore, embedder *embedding.Service) (*Pipeline, error) {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	return &Pipeline{
		docs:     docs,
		embedder: embedder,
		codec:    codec,
		interval: DefaultPollInterval,
	}, nil
}

// Run polls for pending documents until the context is canceled.
func (p *Pipeline) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.processPending(ctx); err != nil {
				log.Error().Err(err).Msg("Ingest poll failed")
			}
		}
	}
}

// processPending embeds every document currently pending.
func (p *Pipeline) processPending(ctx context.Context) error {
	docs, err := p.docs.ListPendingDocuments(ctx, pendingBatchSize)
	if err != nil {
		return fmt.Errorf("list pending documents: %w", err)
	}

	for _, doc := range docs {
		if err := p.ProcessDocument(ctx, doc.ID); err != nil {
			log.Error().
				Err(err).
				Str("document_id", doc.ID.String()).
				Str("party_id", doc.PartyID.String()).
				Msg("Document ingest failed")
		}
	}
	return nil
}

// ProcessDocument embeds one document's chunks and marks it ready. Any
// failure marks the document failed; a partially embedded document must
// never read as ready.
func (p *Pipeline) ProcessDocument(ctx context.Context, documentID uuid.UUID) error {
	chunks, err := p.docs.GetChunks(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get chunks: %w", err)
	}

	if err := p.embedChunks(ctx, chunks); err != nil {
		if statusErr := p.docs.SetDocumentStatus(ctx, documentID, models.DocumentFailed); statusErr != nil {
			log.Error().Err(statusErr).
				Str("document_id", documentID.String()).
				Msg("Failed to mark document failed")
		}
		return err
	}

	if err := p.docs.SetDocumentStatus(ctx, documentID, models.DocumentReady); err != nil {
		return fmt.Errorf("mark document ready: %w", err)
	}

	log.Info().
		Str("document_id", documentID.String()).
		Int("chunks", len(chunks)).
		Msg("Document embedded")
	return nil
}

func (p *Pipeline) embedChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	// The service splits into provider-sized groups; a provider failure
	// fails the whole document rather than leaving it half embedded.
	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	for i, chunk := range chunks {
		ids, _, err := p.codec.Encode(chunk.Content)
		count := len(ids)
		if err != nil {
			count = 0
		}
		if err := p.docs.SetChunkEmbedding(ctx, chunk.ID, embeddings[i], count); err != nil {
			return fmt.Errorf("store embedding for chunk %d: %w", chunk.ChunkIndex, err)
		}
	}
	return nil
}
