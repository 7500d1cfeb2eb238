// Package db defines database interfaces for the assistant-core stores.
package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cohabitat/assistant-core/pkg/models"
)

// ErrNotFound is returned when an entity does not exist or belongs to a
// different party. Callers must not be able to tell those cases apart.
var ErrNotFound = errors.New("not found")

// ChunkSearcher defines the scoped vector search over document chunks.
type ChunkSearcher interface {
	// SearchChunks returns up to limit chunks belonging to ready documents
	// of the given party, ordered by ascending cosine distance to the query
	// embedding with ties broken by chunk index then document id.
	SearchChunks(ctx context.Context, partyID uuid.UUID, embedding []float32, limit int) ([]models.RankedChunk, error)
}

// DocumentReader defines read operations for documents and chunks.
type DocumentReader interface {
	GetDocument(ctx context.Context, partyID, documentID uuid.UUID) (*models.Document, error)
	ListPendingDocuments(ctx context.Context, limit int) ([]models.Document, error)
	GetChunks(ctx context.Context, documentID uuid.UUID) ([]models.DocumentChunk, error)
}

// DocumentWriter defines write operations used by ingestion.
type DocumentWriter interface {
	CreateDocument(ctx context.Context, doc *models.Document, chunks []models.DocumentChunk) error
	SetChunkEmbedding(ctx context.Context, chunkID uuid.UUID, embedding []float32, tokenCount int) error
	SetDocumentStatus(ctx context.Context, documentID uuid.UUID, status models.DocumentStatus) error
}

// DocumentStore combines document persistence and search.
type DocumentStore interface {
	DocumentReader
	DocumentWriter
	ChunkSearcher
}

// TaskStore defines the dispatcher-facing task operations. Every mutation
// performs its party-ownership check and its write in a single transaction.
type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, partyID, taskID uuid.UUID) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, partyID, taskID uuid.UUID, status models.TaskStatus, actorID uuid.UUID) (*models.Task, error)
	ListTasks(ctx context.Context, partyID uuid.UUID, filter models.TaskFilter) ([]models.TaskSummary, error)
	AddComment(ctx context.Context, partyID, taskID, authorID uuid.UUID, content string) (*models.TaskComment, error)
}

// MemberReader resolves party membership. Read-only.
type MemberReader interface {
	// FindCoOwner returns the first accepted member of the party other than
	// selfID, ordered by join time. Returns (nil, nil) when none exists.
	FindCoOwner(ctx context.Context, partyID, selfID uuid.UUID) (*uuid.UUID, error)
}

// OutboxReader defines read operations for pending events.
type OutboxReader interface {
	DueEvents(ctx context.Context, now time.Time, limit int) ([]models.OutboxEvent, error)
}

// OutboxWriter defines delivery bookkeeping for events.
type OutboxWriter interface {
	Enqueue(ctx context.Context, event *models.OutboxEvent) error
	MarkDelivered(ctx context.Context, eventID uuid.UUID, at time.Time) error
	Reschedule(ctx context.Context, eventID uuid.UUID, attempts int, nextAttemptAt time.Time) error
}

// OutboxStore combines read and write operations for outbox events.
type OutboxStore interface {
	OutboxReader
	OutboxWriter
}
