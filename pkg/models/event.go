package models

import (
	"time"

	"github.com/google/uuid"
)

// EventKind names an outbound side effect produced by a tool call.
type EventKind string

const (
	// EventTaskCreated is emitted when createTask inserts a task.
	EventTaskCreated EventKind = "task.created"
	// EventTaskCompleted is emitted when updateTaskStatus moves a task to done.
	EventTaskCompleted EventKind = "task.completed"
)

// OutboxEvent is a pending outbound notification. Events are written in the
// same transaction as the mutation that caused them and delivered by the
// events worker with retry, so a failed delivery is observable rather than
// silently dropped.
type OutboxEvent struct {
	ID            uuid.UUID  `json:"id"`
	Kind          EventKind  `json:"kind"`
	PartyID       uuid.UUID  `json:"party_id"`
	Payload       []byte     `json:"payload"`
	Attempts      int        `json:"attempts"`
	NextAttemptAt time.Time  `json:"next_attempt_at"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
