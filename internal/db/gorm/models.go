// Package gorm provides GORM-based database operations for the assistant core.
package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORM models. Enum columns carry CHECK constraints so malformed writes fail
// at the store even if a caller bypasses validation.

// Document is an uploaded household document owned by a party.
type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PartyID   uuid.UUID `gorm:"type:uuid;not null;index:idx_documents_party;index:idx_documents_party_status,priority:1"`
	Title     string    `gorm:"type:text;not null"`
	Category  string    `gorm:"type:text;not null;default:'other'"`
	Status    string    `gorm:"type:text;check:status IN ('pending', 'ready', 'failed');default:'pending';index:idx_documents_party_status,priority:2"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Document) TableName() string { return "documents" }

// BeforeCreate hook to ensure an ID is set.
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DocumentChunk is an immutable slice of a document's text. The embedding
// column is created by migrations with the configured vector dimension and
// stays NULL until the ingest pipeline fills it; reads and writes of it go
// through raw SQL, never this model.
type DocumentChunk struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chunks_document_ordinal,priority:1"`
	ChunkIndex int       `gorm:"not null;uniqueIndex:idx_chunks_document_ordinal,priority:2"`
	Content    string    `gorm:"type:text;not null"`
	TokenCount int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (DocumentChunk) TableName() string { return "document_chunks" }

// BeforeCreate hook to ensure an ID is set.
func (c *DocumentChunk) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// PartyMember links a user to a co-ownership party. Read-only here.
type PartyMember struct {
	PartyID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	InviteStatus string    `gorm:"type:text;check:invite_status IN ('accepted', 'pending', 'declined');default:'pending';index"`
	JoinedAt     time.Time `gorm:"not null"`
}

func (PartyMember) TableName() string { return "party_members" }

// Task is a household to-do owned by a party.
type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	PartyID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_tasks_party;index:idx_tasks_party_status,priority:1"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null"`
	AssignedTo  *uuid.UUID `gorm:"type:uuid;index"`
	Title       string     `gorm:"type:text;not null"`
	Description string     `gorm:"type:text"`
	Status      string     `gorm:"type:text;check:status IN ('todo', 'in_progress', 'done');default:'todo';index:idx_tasks_party_status,priority:2"`
	Priority    string     `gorm:"type:text;check:priority IN ('low', 'medium', 'high');default:'medium'"`
	DueDate     *time.Time
	CompletedAt *time.Time
	CompletedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

func (Task) TableName() string { return "tasks" }

// BeforeCreate hook to ensure an ID and defaults are set.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = "todo"
	}
	if t.Priority == "" {
		t.Priority = "medium"
	}
	return nil
}

// TaskComment is an append-only note on a task.
type TaskComment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;index:idx_comments_task"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (TaskComment) TableName() string { return "task_comments" }

// BeforeCreate hook to ensure an ID is set.
func (c *TaskComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// OutboxEvent is a pending outbound notification written in the same
// transaction as the mutation that produced it.
type OutboxEvent struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Kind          string     `gorm:"type:text;not null"`
	PartyID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Payload       []byte     `gorm:"type:jsonb;not null;default:'{}'"`
	Attempts      int        `gorm:"not null;default:0"`
	NextAttemptAt time.Time  `gorm:"not null;index:idx_outbox_due"`
	DeliveredAt   *time.Time `gorm:"index:idx_outbox_delivered"`
	CreatedAt     time.Time  `gorm:"not null"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }

// BeforeCreate hook to ensure an ID and first attempt time are set.
func (e *OutboxEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.NextAttemptAt.IsZero() {
		e.NextAttemptAt = time.Now().UTC()
	}
	return nil
}
