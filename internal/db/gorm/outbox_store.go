package gorm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cohabitat/assistant-core/internal/db"
	"github.com/cohabitat/assistant-core/pkg/models"
)

// OutboxStoreImpl provides delivery bookkeeping for outbox events.
type OutboxStoreImpl struct {
	db    *gorm.DB
	store *Store
}

// NewOutboxStore creates a new outbox store.
func NewOutboxStore(store *Store) *OutboxStoreImpl {
	return &OutboxStoreImpl{db: store.DB, store: store}
}

// Enqueue inserts an event outside of a mutation transaction. Tool mutations
// enqueue through their own transactions; this path exists for backfills.
func (s *OutboxStoreImpl) Enqueue(ctx context.Context, event *models.OutboxEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	record := OutboxEvent{
		ID:            event.ID,
		Kind:          string(event.Kind),
		PartyID:       event.PartyID,
		Payload:       event.Payload,
		Attempts:      event.Attempts,
		NextAttemptAt: event.NextAttemptAt,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("enqueue event: %w", err)
	}
	event.CreatedAt = record.CreatedAt
	return nil
}

// DueEvents returns undelivered events whose next attempt is due, oldest first.
func (s *OutboxStoreImpl) DueEvents(ctx context.Context, now time.Time, limit int) ([]models.OutboxEvent, error) {
	var records []OutboxEvent
	err := s.db.WithContext(ctx).
		Where("delivered_at IS NULL AND next_attempt_at <= ?", now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list due events: %w", err)
	}

	events := make([]models.OutboxEvent, len(records))
	for i, r := range records {
		events[i] = models.OutboxEvent{
			ID:            r.ID,
			Kind:          models.EventKind(r.Kind),
			PartyID:       r.PartyID,
			Payload:       r.Payload,
			Attempts:      r.Attempts,
			NextAttemptAt: r.NextAttemptAt,
			DeliveredAt:   r.DeliveredAt,
			CreatedAt:     r.CreatedAt,
		}
	}
	return events, nil
}

// MarkDelivered records a successful delivery.
func (s *OutboxStoreImpl) MarkDelivered(ctx context.Context, eventID uuid.UUID, at time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id = ?", eventID).
		Update("delivered_at", at)
	if res.Error != nil {
		return fmt.Errorf("mark delivered: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}

// Reschedule records a failed attempt and pushes the next attempt out.
func (s *OutboxStoreImpl) Reschedule(ctx context.Context, eventID uuid.UUID, attempts int, nextAttemptAt time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id = ?", eventID).
		Updates(map[string]any{"attempts": attempts, "next_attempt_at": nextAttemptAt})
	if res.Error != nil {
		return fmt.Errorf("reschedule event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}

// Compile-time check: OutboxStoreImpl must satisfy db.OutboxStore.
var _ db.OutboxStore = (*OutboxStoreImpl)(nil)
