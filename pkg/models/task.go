package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a household task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// TaskPriority is the urgency of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// AssigneeRole is a symbolic assignee reference supplied by the model.
// It is resolved to a concrete user id before any row is written.
type AssigneeRole string

const (
	// RoleSelf resolves to the user the dispatcher was built for.
	RoleSelf AssigneeRole = "self"
	// RoleCoOwner resolves to the first accepted co-owner in the party.
	RoleCoOwner AssigneeRole = "coowner"
)

// Task is a household to-do owned by a party. Mutations go through the
// dispatcher's tool paths only.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	PartyID     uuid.UUID    `json:"party_id"`
	CreatedBy   uuid.UUID    `json:"created_by"`
	AssignedTo  *uuid.UUID   `json:"assigned_to,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CompletedBy *uuid.UUID   `json:"completed_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TaskSummary is the trimmed task view returned by listTasks. It omits
// description and comments to keep tool payloads small for the model.
type TaskSummary struct {
	ID         uuid.UUID    `json:"id"`
	Title      string       `json:"title"`
	Status     TaskStatus   `json:"status"`
	Priority   TaskPriority `json:"priority"`
	AssignedTo *uuid.UUID   `json:"assigned_to,omitempty"`
	DueDate    *time.Time   `json:"due_date,omitempty"`
}

// TaskFilter narrows a task listing. An empty Status excludes done tasks
// (the listTasks default); "all" returns everything.
type TaskFilter struct {
	Status     string
	AssignedTo *uuid.UUID
}

// TaskComment is an append-only note on a task.
type TaskComment struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
