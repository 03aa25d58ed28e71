// Package outbox centralizes event publication via the transactional outbox
// pattern: an event row is appended in the same database transaction as the
// aggregate mutation it describes, and a background relayer forwards it to
// the broker afterwards.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"collector-service/constant"
	"collector-service/entities"
	"collector-service/repository"

	"github.com/rs/zerolog"
)

type Publisher struct {
	repo repository.CollectorRepository
}

func NewPublisher(repo repository.CollectorRepository) *Publisher {
	return &Publisher{repo: repo}
}

// PublishEvent serializes the aggregate snapshot and appends an unprocessed
// outbox row. It must be called with a context produced by
// repository.Transaction so the row commits atomically with the caller's
// aggregate write. A serialization or insert failure aborts that transaction.
func (p *Publisher) PublishEvent(ctx context.Context, aggregate any, aggregateID string, aggregateType constant.AggregateType, eventType constant.EventType) error {
	payload, err := json.Marshal(aggregate)
	if err != nil {
		return fmt.Errorf("outbox event serialization failed: type=%s, id=%s, event=%s: %w",
			aggregateType, aggregateID, eventType, err)
	}

	event := &entities.OutboxEvent{
		AggregateType: aggregateType.String(),
		AggregateID:   aggregateID,
		EventType:     eventType.String(),
		Payload:       string(payload),
		CreatedAt:     time.Now(),
		Processed:     false,
	}

	if err := p.repo.SaveOutboxEvent(ctx, event); err != nil {
		return fmt.Errorf("outbox event insert failed: type=%s, id=%s, event=%s: %w",
			aggregateType, aggregateID, eventType, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("aggregate_type", aggregateType.String()).
		Str("aggregate_id", aggregateID).
		Str("event_type", eventType.String()).
		Msg("outbox event published")

	return nil
}

// PublishRaw appends an outbox row with an already-serialized payload.
func (p *Publisher) PublishRaw(ctx context.Context, payload []byte, aggregateID string, aggregateType constant.AggregateType, eventType constant.EventType) error {
	event := &entities.OutboxEvent{
		AggregateType: aggregateType.String(),
		AggregateID:   aggregateID,
		EventType:     eventType.String(),
		Payload:       string(payload),
		CreatedAt:     time.Now(),
		Processed:     false,
	}
	return p.repo.SaveOutboxEvent(ctx, event)
}

func (p *Publisher) PublishCreated(ctx context.Context, aggregate any, aggregateID string, aggregateType constant.AggregateType) error {
	return p.PublishEvent(ctx, aggregate, aggregateID, aggregateType, constant.EventTypeCreated)
}

func (p *Publisher) PublishUpdated(ctx context.Context, aggregate any, aggregateID string, aggregateType constant.AggregateType) error {
	return p.PublishEvent(ctx, aggregate, aggregateID, aggregateType, constant.EventTypeUpdated)
}

func (p *Publisher) PublishStarted(ctx context.Context, aggregate any, aggregateID string, aggregateType constant.AggregateType) error {
	return p.PublishEvent(ctx, aggregate, aggregateID, aggregateType, constant.EventTypeStarted)
}

func (p *Publisher) PublishEnded(ctx context.Context, aggregate any, aggregateID string, aggregateType constant.AggregateType) error {
	return p.PublishEvent(ctx, aggregate, aggregateID, aggregateType, constant.EventTypeEnded)
}
