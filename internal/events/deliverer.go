// Package events delivers outbox events to a sink with retry backoff.
package events

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cohabitat/assistant-core/internal/db"
	"github.com/cohabitat/assistant-core/pkg/models"
)

const (
	// DefaultPollInterval is how often the deliverer checks for due events.
	DefaultPollInterval = 2 * time.Second

	// deliveryBatchSize caps events picked up per poll.
	deliveryBatchSize = 50

	// baseBackoff is the retry delay after the first failed attempt.
	baseBackoff = 10 * time.Second

	// maxBackoff caps the retry delay regardless of attempt count.
	maxBackoff = 15 * time.Minute
)

// Sink receives events. Delivery must be treated as at-least-once; sinks
// are expected to deduplicate on event ID.
type Sink interface {
	Deliver(ctx context.Context, event *models.OutboxEvent) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, event *models.OutboxEvent) error

func (f SinkFunc) Deliver(ctx context.Context, event *models.OutboxEvent) error {
	return f(ctx, event)
}

// Metrics tracks delivery counters.
type Metrics struct {
	Delivered atomic.Int64
	Failed    atomic.Int64
}

// Stats returns a snapshot of the delivery counters.
func (m *Metrics) Stats() map[string]int64 {
	return map[string]int64{
		"delivered": m.Delivered.Load(),
		"failed":    m.Failed.Load(),
	}
}

// Deliverer drains the outbox. Events survive process crashes because the
// enqueue happens in the same transaction as the task write; this loop only
// has to move them out.
type Deliverer struct {
	outbox   db.OutboxStore
	sink     Sink
	interval time.Duration
	metrics  Metrics
}

// NewDeliverer creates an outbox deliverer.
func NewDeliverer(outbox db.OutboxStore, sink Sink) *Deliverer {
	return &Deliverer{
		outbox:   outbox,
		sink:     sink,
		interval: DefaultPollInterval,
	}
}

// Run polls for due events until the context is canceled.
func (d *Deliverer) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.DeliverDue(ctx); err != nil {
				log.Error().Err(err).Msg("Outbox poll failed")
			}
		}
	}
}

// DeliverDue processes every event whose next attempt is due.
func (d *Deliverer) DeliverDue(ctx context.Context) error {
	events, err := d.outbox.DueEvents(ctx, time.Now(), deliveryBatchSize)
	if err != nil {
		return err
	}

	for i := range events {
		d.deliverOne(ctx, &events[i])
	}
	return nil
}

func (d *Deliverer) deliverOne(ctx context.Context, event *models.OutboxEvent) {
	if err := d.sink.Deliver(ctx, event); err != nil {
		d.metrics.Failed.Add(1)
		attempts := event.Attempts + 1
		next := time.Now().Add(backoff(attempts))

		log.Warn().
			Err(err).
			Str("event_id", event.ID.String()).
			Str("kind", string(event.Kind)).
			Int("attempts", attempts).
			Time("next_attempt_at", next).
			Msg("Event delivery failed")

		if err := d.outbox.Reschedule(ctx, event.ID, attempts, next); err != nil {
			log.Error().Err(err).Str("event_id", event.ID.String()).Msg("Failed to reschedule event")
		}
		return
	}

	d.metrics.Delivered.Add(1)
	if err := d.outbox.MarkDelivered(ctx, event.ID, time.Now()); err != nil {
		// The sink already saw the event; the next poll retries and the
		// sink's dedupe absorbs the duplicate.
		log.Error().Err(err).Str("event_id", event.ID.String()).Msg("Failed to mark event delivered")
	}
}

// Stats returns delivery counters.
func (d *Deliverer) Stats() map[string]int64 {
	return d.metrics.Stats()
}

// backoff doubles per attempt from baseBackoff, capped at maxBackoff.
func backoff(attempts int) time.Duration {
	delay := baseBackoff
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// LogSink logs events instead of delivering them externally. Used when no
// notification backend is configured.
type LogSink struct{}

func (LogSink) Deliver(_ context.Context, event *models.OutboxEvent) error {
	log.Info().
		Str("event_id", event.ID.String()).
		Str("kind", string(event.Kind)).
		Str("party_id", event.PartyID.String()).
		RawJSON("payload", event.Payload).
		Msg("Event delivered")
	return nil
}
