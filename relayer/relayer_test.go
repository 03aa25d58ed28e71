package relayer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"collector-service/constant"
	"collector-service/entities"
	"collector-service/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type publishedMessage struct {
	Topic   string
	Key     string
	Payload string
}

type fakeBroker struct {
	published []publishedMessage
	failOnKey string
}

func (b *fakeBroker) Publish(_ context.Context, topic string, key string, payload []byte) error {
	if b.failOnKey != "" && key == b.failOnKey {
		return errors.New("broker unavailable")
	}
	b.published = append(b.published, publishedMessage{Topic: topic, Key: key, Payload: string(payload)})
	return nil
}

func setupRelayer(t *testing.T, broker BrokerPublisher) (*Relayer, repository.CollectorRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := repository.NewRepoWithGorm(db)
	require.NoError(t, repo.Migrate())
	return NewRelayer(repo, broker, time.Second, 100), repo
}

func seedEvents(t *testing.T, repo repository.CollectorRepository, n int) []*entities.OutboxEvent {
	t.Helper()

	events := make([]*entities.OutboxEvent, 0, n)
	for i := 0; i < n; i++ {
		event := &entities.OutboxEvent{
			AggregateType: "Message",
			AggregateID:   fmt.Sprintf("msg-%d", i),
			EventType:     "Created",
			Payload:       fmt.Sprintf(`{"seq":%d}`, i),
			CreatedAt:     time.Now(),
		}
		require.NoError(t, repo.SaveOutboxEvent(context.Background(), event))
		events = append(events, event)
	}
	return events
}

func TestRelayEventsMarksAllProcessedInOrder(t *testing.T) {
	broker := &fakeBroker{}
	relayer, repo := setupRelayer(t, broker)
	ctx := context.Background()

	seedEvents(t, repo, 5)

	require.NoError(t, relayer.RelayEvents(ctx))

	remaining, err := repo.FindUnprocessedEvents(ctx, 100)
	require.NoError(t, err)
	require.Empty(t, remaining)

	require.Len(t, broker.published, 5)
	for i, msg := range broker.published {
		require.Equal(t, fmt.Sprintf("msg-%d", i), msg.Key)
		require.Equal(t, constant.TopicTextMessage, msg.Topic)
	}
}

func TestRelayEventsHaltsBatchOnPublishFailure(t *testing.T) {
	broker := &fakeBroker{failOnKey: "msg-2"}
	relayer, repo := setupRelayer(t, broker)
	ctx := context.Background()

	seedEvents(t, repo, 5)

	err := relayer.RelayEvents(ctx)
	require.Error(t, err)

	// Events before the failure stay marked, the failing one and everything
	// after it remain unprocessed for the next tick.
	remaining, err := repo.FindUnprocessedEvents(ctx, 100)
	require.NoError(t, err)
	require.Len(t, remaining, 3)
	require.Equal(t, "msg-2", remaining[0].AggregateID)

	require.Len(t, broker.published, 2)

	// Broker recovers; the next tick drains the rest without re-delivering
	// the already-processed events.
	broker.failOnKey = ""
	require.NoError(t, relayer.RelayEvents(ctx))

	remaining, err = repo.FindUnprocessedEvents(ctx, 100)
	require.NoError(t, err)
	require.Empty(t, remaining)
	require.Len(t, broker.published, 5)
	require.Equal(t, "msg-2", broker.published[2].Key)
}

func TestRelayEventsRespectsBatchSize(t *testing.T) {
	broker := &fakeBroker{}
	relayer, repo := setupRelayer(t, broker)
	relayer.batchSize = 3
	ctx := context.Background()

	seedEvents(t, repo, 5)

	require.NoError(t, relayer.RelayEvents(ctx))
	require.Len(t, broker.published, 3)

	remaining, err := repo.FindUnprocessedEvents(ctx, 100)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
}

func TestTopicForAggregateType(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		aggregateType string
		topic         string
	}{
		{"AudioMessage", constant.TopicRawAudio},
		{"Meeting", constant.TopicMeeting},
		{"VoiceSession", constant.TopicVoiceSession},
		{"Message", constant.TopicTextMessage},
		{"MeetingMedia", constant.TopicMediaUploaded},
		{"Unknown", constant.TopicRawAudio},
		{"", constant.TopicRawAudio},
	}

	for _, tt := range tests {
		require.Equal(t, tt.topic, topicForAggregateType(ctx, tt.aggregateType), tt.aggregateType)
	}
}
