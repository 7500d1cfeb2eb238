package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cohabitat/assistant-core/internal/db"
	"github.com/cohabitat/assistant-core/pkg/models"
)

// TaskStore provides task persistence for the dispatcher's mutation paths.
// Every mutation runs its party-ownership check and its write inside one
// transaction, closing the check-then-write gap.
type TaskStore struct {
	db    *gorm.DB
	store *Store
}

// NewTaskStore creates a new task store.
func NewTaskStore(store *Store) *TaskStore {
	return &TaskStore{db: store.DB, store: store}
}

// CreateTask inserts a task and enqueues its task.created event atomically.
func (s *TaskStore) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.TaskTodo
	}

	record := Task{
		ID:          task.ID,
		PartyID:     task.PartyID,
		CreatedBy:   task.CreatedBy,
		AssignedTo:  task.AssignedTo,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
	}

	err := s.store.TransactionWithTimeout(ctx, DefaultQueryTimeout, func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		return enqueueTaskEvent(tx, models.EventTaskCreated, &record)
	})
	if err != nil {
		return err
	}

	task.CreatedAt = record.CreatedAt
	task.UpdatedAt = record.UpdatedAt
	return nil
}

// GetTask loads a task scoped to the given party. A task from another party
// reads as not found; existence of foreign tasks must not leak.
func (s *TaskStore) GetTask(ctx context.Context, partyID, taskID uuid.UUID) (*models.Task, error) {
	var record Task
	err := s.db.WithContext(ctx).
		Where("id = ? AND party_id = ?", taskID, partyID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	task := toTaskModel(record)
	return &task, nil
}

// UpdateTaskStatus transitions a task's lifecycle state. Moving to done
// stamps completed_at/completed_by with the current time and actor; repeating
// done re-stamps. Leaving done keeps the stamps as an audit trail.
func (s *TaskStore) UpdateTaskStatus(ctx context.Context, partyID, taskID uuid.UUID, status models.TaskStatus, actorID uuid.UUID) (*models.Task, error) {
	var record Task

	err := s.store.TransactionWithTimeout(ctx, DefaultQueryTimeout, func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND party_id = ?", taskID, partyID).
			First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return db.ErrNotFound
			}
			return fmt.Errorf("load task: %w", err)
		}

		updates := map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}
		if status == models.TaskDone {
			now := time.Now().UTC()
			updates["completed_at"] = now
			updates["completed_by"] = actorID
			record.CompletedAt = &now
			record.CompletedBy = &actorID
		}
		record.Status = string(status)

		if err := tx.Model(&Task{}).Where("id = ?", record.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update task status: %w", err)
		}

		if status == models.TaskDone {
			return enqueueTaskEvent(tx, models.EventTaskCompleted, &record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	task := toTaskModel(record)
	return &task, nil
}

// ListTasks returns trimmed task summaries for a party. An empty Status
// filter excludes done tasks so "what's on my plate" skips stale items;
// "all" lifts the exclusion.
func (s *TaskStore) ListTasks(ctx context.Context, partyID uuid.UUID, filter models.TaskFilter) ([]models.TaskSummary, error) {
	query := s.db.WithContext(ctx).Model(&Task{}).Where("party_id = ?", partyID)

	switch filter.Status {
	case "", "open":
		query = query.Where("status IN ?", []string{string(models.TaskTodo), string(models.TaskInProgress)})
	case "all":
		// no status filter
	default:
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}

	var records []Task
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	summaries := make([]models.TaskSummary, len(records))
	for i, r := range records {
		summaries[i] = models.TaskSummary{
			ID:         r.ID,
			Title:      r.Title,
			Status:     models.TaskStatus(r.Status),
			Priority:   models.TaskPriority(r.Priority),
			AssignedTo: r.AssignedTo,
			DueDate:    r.DueDate,
		}
	}
	return summaries, nil
}

// AddComment appends a comment to a party-owned task. The ownership check
// and the insert share one transaction; the task itself is never edited.
func (s *TaskStore) AddComment(ctx context.Context, partyID, taskID, authorID uuid.UUID, content string) (*models.TaskComment, error) {
	record := TaskComment{
		ID:       uuid.New(),
		TaskID:   taskID,
		AuthorID: authorID,
		Content:  content,
	}

	err := s.store.TransactionWithTimeout(ctx, DefaultQueryTimeout, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Task{}).
			Where("id = ? AND party_id = ?", taskID, partyID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check task ownership: %w", err)
		}
		if count == 0 {
			return db.ErrNotFound
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.TaskComment{
		ID:        record.ID,
		TaskID:    record.TaskID,
		AuthorID:  record.AuthorID,
		Content:   record.Content,
		CreatedAt: record.CreatedAt,
	}, nil
}

// enqueueTaskEvent writes an outbox event inside the caller's transaction.
func enqueueTaskEvent(tx *gorm.DB, kind models.EventKind, task *Task) error {
	payload, err := json.Marshal(map[string]any{
		"task_id":     task.ID,
		"title":       task.Title,
		"status":      task.Status,
		"assigned_to": task.AssignedTo,
	})
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	event := OutboxEvent{
		ID:      uuid.New(),
		Kind:    string(kind),
		PartyID: task.PartyID,
		Payload: payload,
	}
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("enqueue %s event: %w", kind, err)
	}
	return nil
}

func toTaskModel(r Task) models.Task {
	return models.Task{
		ID:          r.ID,
		PartyID:     r.PartyID,
		CreatedBy:   r.CreatedBy,
		AssignedTo:  r.AssignedTo,
		Title:       r.Title,
		Description: r.Description,
		Status:      models.TaskStatus(r.Status),
		Priority:    models.TaskPriority(r.Priority),
		DueDate:     r.DueDate,
		CompletedAt: r.CompletedAt,
		CompletedBy: r.CompletedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Compile-time check: TaskStore must satisfy db.TaskStore.
var _ db.TaskStore = (*TaskStore)(nil)
