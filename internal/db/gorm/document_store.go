package gorm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgvec "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/cohabitat/assistant-core/internal/db"
	"github.com/cohabitat/assistant-core/pkg/models"
)

// DocumentStore provides document and chunk persistence plus the scoped
// vector search the retrieval engine runs on.
type DocumentStore struct {
	db    *gorm.DB
	rawDB *sql.DB
	store *Store
}

// NewDocumentStore creates a new document store.
func NewDocumentStore(store *Store) *DocumentStore {
	return &DocumentStore{
		db:    store.DB,
		rawDB: store.GetRawDB(),
		store: store,
	}
}

// CreateDocument inserts a document and its pre-computed chunks in one
// transaction. The document starts pending; the ingest pipeline embeds it.
func (s *DocumentStore) CreateDocument(ctx context.Context, doc *models.Document, chunks []models.DocumentChunk) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	record := Document{
		ID:       doc.ID,
		PartyID:  doc.PartyID,
		Title:    doc.Title,
		Category: string(doc.Category),
		Status:   string(models.DocumentPending),
	}

	err := s.store.TransactionWithTimeout(ctx, SlowQueryTimeout, func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		for i := range chunks {
			chunkRec := DocumentChunk{
				ID:         uuid.New(),
				DocumentID: record.ID,
				ChunkIndex: chunks[i].ChunkIndex,
				Content:    chunks[i].Content,
				TokenCount: chunks[i].TokenCount,
			}
			if err := tx.Create(&chunkRec).Error; err != nil {
				return fmt.Errorf("insert chunk %d: %w", chunks[i].ChunkIndex, err)
			}
			chunks[i].ID = chunkRec.ID
			chunks[i].DocumentID = record.ID
		}
		return nil
	})
	if err != nil {
		return err
	}

	doc.Status = models.DocumentPending
	return nil
}

// GetDocument returns a document scoped to the given party. A document from
// another party reads as not found.
func (s *DocumentStore) GetDocument(ctx context.Context, partyID, documentID uuid.UUID) (*models.Document, error) {
	var record Document
	err := s.db.WithContext(ctx).
		Where("id = ? AND party_id = ?", documentID, partyID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	doc := toDocumentModel(record)
	return &doc, nil
}

// ListPendingDocuments returns documents awaiting embedding, oldest first.
func (s *DocumentStore) ListPendingDocuments(ctx context.Context, limit int) ([]models.Document, error) {
	var records []Document
	err := s.db.WithContext(ctx).
		Where("status = ?", string(models.DocumentPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list pending documents: %w", err)
	}

	docs := make([]models.Document, len(records))
	for i, r := range records {
		docs[i] = toDocumentModel(r)
	}
	return docs, nil
}

// GetChunks returns a document's chunks in ordinal order.
func (s *DocumentStore) GetChunks(ctx context.Context, documentID uuid.UUID) ([]models.DocumentChunk, error) {
	var records []DocumentChunk
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("chunk_index ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}

	chunks := make([]models.DocumentChunk, len(records))
	for i, r := range records {
		chunks[i] = models.DocumentChunk{
			ID:         r.ID,
			DocumentID: r.DocumentID,
			ChunkIndex: r.ChunkIndex,
			Content:    r.Content,
			TokenCount: r.TokenCount,
			CreatedAt:  r.CreatedAt,
		}
	}
	return chunks, nil
}

// SetChunkEmbedding writes a chunk's embedding and token count. The vector
// column lives outside the GORM model, so this goes through raw SQL.
func (s *DocumentStore) SetChunkEmbedding(ctx context.Context, chunkID uuid.UUID, embedding []float32, tokenCount int) error {
	timeoutCtx, cancel := s.store.WithTimeout(ctx, DefaultQueryTimeout, "set_chunk_embedding")
	defer cancel()

	res, err := s.rawDB.ExecContext(timeoutCtx,
		`UPDATE document_chunks SET embedding = $1, token_count = $2 WHERE id = $3`,
		pgvec.NewVector(embedding), tokenCount, chunkID)
	if err != nil {
		return fmt.Errorf("set chunk embedding: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return db.ErrNotFound
	}
	return nil
}

// SetDocumentStatus transitions a document's ingestion state.
func (s *DocumentStore) SetDocumentStatus(ctx context.Context, documentID uuid.UUID, status models.DocumentStatus) error {
	res := s.db.WithContext(ctx).
		Model(&Document{}).
		Where("id = ?", documentID).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("set document status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}

// SearchChunks performs the scoped cosine-distance search. The party and
// readiness filters run before ranking: a foreign or non-ready chunk must
// never surface, however near its vector is. Ties on distance are broken by
// chunk index then document id so repeated searches are deterministic.
func (s *DocumentStore) SearchChunks(ctx context.Context, partyID uuid.UUID, embedding []float32, limit int) ([]models.RankedChunk, error) {
	if limit <= 0 {
		return nil, nil
	}

	timeoutCtx, cancel := s.store.WithTimeout(ctx, SlowQueryTimeout, "search_chunks")
	defer cancel()

	query := `
		SELECT c.id, c.document_id, d.title, d.category, c.chunk_index, c.content,
		       c.embedding <=> $1 AS distance
		FROM document_chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.party_id = $2
		  AND d.status = 'ready'
		  AND c.embedding IS NOT NULL
		ORDER BY distance, c.chunk_index, c.document_id
		LIMIT $3
	`

	rows, err := s.rawDB.QueryContext(timeoutCtx, query, pgvec.NewVector(embedding), partyID, limit)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	results := make([]models.RankedChunk, 0, limit)
	for rows.Next() {
		var rc models.RankedChunk
		var category string
		if err := rows.Scan(&rc.ChunkID, &rc.DocumentID, &rc.DocumentTitle, &category,
			&rc.ChunkIndex, &rc.Content, &rc.Distance); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		rc.Category = models.DocumentCategory(category)
		results = append(results, rc)
	}
	return results, rows.Err()
}

func toDocumentModel(r Document) models.Document {
	return models.Document{
		ID:        r.ID,
		PartyID:   r.PartyID,
		Title:     r.Title,
		Category:  models.DocumentCategory(r.Category),
		Status:    models.DocumentStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Compile-time check: DocumentStore must satisfy db.DocumentStore.
var _ db.DocumentStore = (*DocumentStore)(nil)
