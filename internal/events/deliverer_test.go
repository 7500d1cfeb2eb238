package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohabitat/assistant-core/pkg/models"
)

// fakeOutbox is an in-memory outbox.
type fakeOutbox struct {
	due         []models.OutboxEvent
	delivered   []uuid.UUID
	rescheduled map[uuid.UUID]int
	nextAttempt map[uuid.UUID]time.Time
}

func newFakeOutbox(events ...models.OutboxEvent) *fakeOutbox {
	return &fakeOutbox{
		due:         events,
		rescheduled: map[uuid.UUID]int{},
		nextAttempt: map[uuid.UUID]time.Time{},
	}
}

func (f *fakeOutbox) DueEvents(_ context.Context, _ time.Time, _ int) ([]models.OutboxEvent, error) {
	return f.due, nil
}

func (f *fakeOutbox) Enqueue(_ context.Context, _ *models.OutboxEvent) error {
	return errors.New("not used")
}

func (f *fakeOutbox) MarkDelivered(_ context.Context, eventID uuid.UUID, _ time.Time) error {
	f.delivered = append(f.delivered, eventID)
	return nil
}

func (f *fakeOutbox) Reschedule(_ context.Context, eventID uuid.UUID, attempts int, nextAttemptAt time.Time) error {
	f.rescheduled[eventID] = attempts
	f.nextAttempt[eventID] = nextAttemptAt
	return nil
}

func testEvent(kind models.EventKind) models.OutboxEvent {
	return models.OutboxEvent{
		ID:      uuid.New(),
		Kind:    kind,
		PartyID: uuid.New(),
		Payload: []byte(`{"task_id": "x"}`),
	}
}

// TestDeliverDue_Success verifies delivered events are marked as such.
func TestDeliverDue_Success(t *testing.T) {
	event := testEvent(models.EventTaskCreated)
	outbox := newFakeOutbox(event)

	var seen []uuid.UUID
	d := NewDeliverer(outbox, SinkFunc(func(_ context.Context, e *models.OutboxEvent) error {
		seen = append(seen, e.ID)
		return nil
	}))

	require.NoError(t, d.DeliverDue(context.Background()))
	assert.Equal(t, []uuid.UUID{event.ID}, seen)
	assert.Equal(t, []uuid.UUID{event.ID}, outbox.delivered)
	assert.Equal(t, int64(1), d.Stats()["delivered"])
}

// TestDeliverDue_FailureReschedules verifies a failed delivery bumps the
// attempt count and pushes the next attempt into the future.
func TestDeliverDue_FailureReschedules(t *testing.T) {
	event := testEvent(models.EventTaskCompleted)
	event.Attempts = 2
	outbox := newFakeOutbox(event)

	d := NewDeliverer(outbox, SinkFunc(func(_ context.Context, _ *models.OutboxEvent) error {
		return errors.New("webhook 503")
	}))

	require.NoError(t, d.DeliverDue(context.Background()))
	assert.Empty(t, outbox.delivered)
	assert.Equal(t, 3, outbox.rescheduled[event.ID])
	assert.True(t, outbox.nextAttempt[event.ID].After(time.Now()))
	assert.Equal(t, int64(1), d.Stats()["failed"])
}

// TestDeliverDue_FailureDoesNotStopBatch verifies one bad event does not
// block the rest of the batch.
func TestDeliverDue_FailureDoesNotStopBatch(t *testing.T) {
	bad := testEvent(models.EventTaskCreated)
	good := testEvent(models.EventTaskCreated)
	outbox := newFakeOutbox(bad, good)

	d := NewDeliverer(outbox, SinkFunc(func(_ context.Context, e *models.OutboxEvent) error {
		if e.ID == bad.ID {
			return errors.New("boom")
		}
		return nil
	}))

	require.NoError(t, d.DeliverDue(context.Background()))
	assert.Equal(t, []uuid.UUID{good.ID}, outbox.delivered)
	assert.Equal(t, 1, outbox.rescheduled[bad.ID])
}

// TestBackoff_DoublesAndCaps verifies the retry schedule.
func TestBackoff_DoublesAndCaps(t *testing.T) {
	assert.Equal(t, baseBackoff, backoff(1))
	assert.Equal(t, 2*baseBackoff, backoff(2))
	assert.Equal(t, 4*baseBackoff, backoff(3))
	assert.Equal(t, maxBackoff, backoff(20))
}

// TestLogSink delivers without error.
func TestLogSink(t *testing.T) {
	event := testEvent(models.EventTaskCreated)
	assert.NoError(t, LogSink{}.Deliver(context.Background(), &event))
}
