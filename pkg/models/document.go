// Package models contains domain models for the assistant core.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus tracks a document's ingestion state.
type DocumentStatus string

const (
	// DocumentPending means the document's chunks are stored but not yet embedded.
	DocumentPending DocumentStatus = "pending"
	// DocumentReady means every chunk has an embedding and the document is searchable.
	DocumentReady DocumentStatus = "ready"
	// DocumentFailed means embedding the document failed; it is excluded from search.
	DocumentFailed DocumentStatus = "failed"
)

// DocumentCategory classifies an uploaded household document.
type DocumentCategory string

const (
	CategoryDeed      DocumentCategory = "deed"
	CategoryMortgage  DocumentCategory = "mortgage"
	CategoryInsurance DocumentCategory = "insurance"
	CategoryAgreement DocumentCategory = "agreement"
	CategoryInvoice   DocumentCategory = "invoice"
	CategoryOther     DocumentCategory = "other"
)

// Document is an uploaded household document owned by a party.
// Status transitions happen only through the ingest pipeline; a ready
// document is never mutated (re-uploads create a new document).
type Document struct {
	ID        uuid.UUID        `json:"id"`
	PartyID   uuid.UUID        `json:"party_id"`
	Title     string           `json:"title"`
	Category  DocumentCategory `json:"category"`
	Status    DocumentStatus   `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// DocumentChunk is a pre-computed slice of a document's text.
// Chunks are immutable once written and live only as long as their document.
type DocumentChunk struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	TokenCount int       `json:"token_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// RankedChunk is a search hit: chunk content plus parent document
// provenance so the agent can cite what it found.
type RankedChunk struct {
	ChunkID       uuid.UUID        `json:"chunk_id"`
	DocumentID    uuid.UUID        `json:"document_id"`
	DocumentTitle string           `json:"document_title"`
	Category      DocumentCategory `json:"category"`
	ChunkIndex    int              `json:"chunk_index"`
	Content       string           `json:"content"`
	Distance      float64          `json:"distance"`
}
