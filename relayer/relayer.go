// Package relayer moves committed outbox rows to the message broker. It is
// the only component that talks to the broker; delivery is at-least-once, so
// downstream consumers must deduplicate.
package relayer

import (
	"context"
	"fmt"
	"time"

	"collector-service/constant"
	"collector-service/entities"
	"collector-service/repository"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// BrokerPublisher is the broker-facing surface the relayer needs: a
// synchronous publish with a success/failure return.
type BrokerPublisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}

const (
	defaultBatchSize      = 100
	defaultInterval       = 10 * time.Second
	defaultPublishTimeout = 15 * time.Second
	publishMaxTries       = 3
)

type Relayer struct {
	repo           repository.CollectorRepository
	broker         BrokerPublisher
	interval       time.Duration
	batchSize      int
	publishTimeout time.Duration
}

func NewRelayer(repo repository.CollectorRepository, broker BrokerPublisher, interval time.Duration, batchSize int) *Relayer {
	if interval <= 0 {
		interval = defaultInterval
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Relayer{
		repo:           repo,
		broker:         broker,
		interval:       interval,
		batchSize:      batchSize,
		publishTimeout: defaultPublishTimeout,
	}
}

// Run ticks until ctx is cancelled. Ticks run on this single goroutine, so
// they never overlap; a failed batch just waits for the next tick.
func (r *Relayer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zerolog.Ctx(ctx).Info().Msg("outbox relayer stopped")
			return
		case <-ticker.C:
			if err := r.RelayEvents(ctx); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("outbox relay batch failed")
			}
		}
	}
}

// RelayEvents fetches one batch of unprocessed events in insertion order and
// publishes them. An event is marked processed if and only if its publish
// returned success. The first failure halts the batch: earlier events stay
// processed, the failing one and everything after it remain unprocessed and
// are retried on the next tick.
func (r *Relayer) RelayEvents(ctx context.Context) error {
	events, err := r.repo.FindUnprocessedEvents(ctx, r.batchSize)
	if err != nil {
		return fmt.Errorf("fetch unprocessed events: %w", err)
	}

	for _, event := range events {
		topic := topicForAggregateType(ctx, event.AggregateType)

		if err := r.publishWithRetry(ctx, topic, event); err != nil {
			return fmt.Errorf("publish event id=%d topic=%s: %w", event.ID, topic, err)
		}

		if err := r.repo.MarkEventProcessed(ctx, event.ID); err != nil {
			// Publish succeeded but the flag write did not; the event will be
			// delivered again on the next tick.
			return fmt.Errorf("mark event processed id=%d: %w", event.ID, err)
		}

		zerolog.Ctx(ctx).Debug().
			Int64("event_id", event.ID).
			Str("aggregate_type", event.AggregateType).
			Str("topic", topic).
			Msg("event relayed")
	}

	return nil
}

// publishWithRetry bounds each publish with a deadline and a few
// exponential-backoff attempts so one slow broker call cannot stall the loop
// forever.
func (r *Relayer) publishWithRetry(ctx context.Context, topic string, event *entities.OutboxEvent) error {
	publishCtx, cancel := context.WithTimeout(ctx, r.publishTimeout)
	defer cancel()

	operation := func() (struct{}, error) {
		return struct{}{}, r.broker.Publish(publishCtx, topic, event.AggregateID, []byte(event.Payload))
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 5 * time.Second
	_, err := backoff.Retry(publishCtx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(publishMaxTries))
	return err
}

func topicForAggregateType(ctx context.Context, aggregateType string) string {
	switch constant.AggregateType(aggregateType) {
	case constant.AggregateTypeAudioMessage:
		return constant.TopicRawAudio
	case constant.AggregateTypeMeeting:
		return constant.TopicMeeting
	case constant.AggregateTypeVoiceSession:
		return constant.TopicVoiceSession
	case constant.AggregateTypeMessage:
		return constant.TopicTextMessage
	case constant.AggregateTypeMeetingMedia:
		return constant.TopicMediaUploaded
	default:
		zerolog.Ctx(ctx).Warn().Str("aggregate_type", aggregateType).Msg("unknown aggregate type, using default topic")
		return constant.TopicRawAudio
	}
}
