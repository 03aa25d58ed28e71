package outbox

import (
	"context"
	"testing"
	"time"

	"collector-service/constant"
	"collector-service/entities"
	"collector-service/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupPublisher(t *testing.T) (*Publisher, repository.CollectorRepository) {
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
	return NewPublisher(repo), repo
}

func TestPublishCreatedWritesUnprocessedRow(t *testing.T) {
	publisher, repo := setupPublisher(t)
	ctx := context.Background()

	session := &entities.VoiceSession{
		ID:               uuid.New(),
		Platform:         "DISCORD",
		ChannelID:        "chan-1",
		ChannelName:      "standup",
		StartTime:        time.Now(),
		ParticipantCount: 1,
	}

	require.NoError(t, publisher.PublishCreated(ctx, session, session.ID.String(), constant.AggregateTypeVoiceSession))

	events, err := repo.FindUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	require.Equal(t, "VoiceSession", event.AggregateType)
	require.Equal(t, session.ID.String(), event.AggregateID)
	require.Equal(t, "Created", event.EventType)
	require.False(t, event.Processed)
	require.Contains(t, event.Payload, `"channel_id":"chan-1"`)
	require.Contains(t, event.Payload, `"channel_name":"standup"`)
}

func TestPublishEventVariantsFixEventType(t *testing.T) {
	publisher, repo := setupPublisher(t)
	ctx := context.Background()

	meeting := &entities.Meeting{ID: uuid.New(), Platform: "ZOOM"}
	id := meeting.ID.String()

	require.NoError(t, publisher.PublishStarted(ctx, meeting, id, constant.AggregateTypeMeeting))
	require.NoError(t, publisher.PublishEnded(ctx, meeting, id, constant.AggregateTypeMeeting))
	require.NoError(t, publisher.PublishUpdated(ctx, meeting, id, constant.AggregateTypeMeeting))

	events, err := repo.FindUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, "Started", events[0].EventType)
	require.Equal(t, "Ended", events[1].EventType)
	require.Equal(t, "Updated", events[2].EventType)
}

func TestPublishEventSerializationFailureAbortsTransaction(t *testing.T) {
	publisher, repo := setupPublisher(t)
	ctx := context.Background()

	unserializable := struct {
		Ch chan int `json:"ch"`
	}{Ch: make(chan int)}

	err := repo.Transaction(ctx, func(ctx context.Context) error {
		msg := &entities.Message{ID: uuid.New(), Platform: "DISCORD", Content: "doomed"}
		if err := repo.CreateMessage(ctx, msg); err != nil {
			return err
		}
		return publisher.PublishEvent(ctx, unserializable, msg.ID.String(), constant.AggregateTypeMessage, constant.EventTypeCreated)
	})
	require.Error(t, err)

	var messageCount, eventCount int64
	require.NoError(t, repo.GetDB().Model(&entities.Message{}).Count(&messageCount).Error)
	require.NoError(t, repo.GetDB().Model(&entities.OutboxEvent{}).Count(&eventCount).Error)
	require.Zero(t, messageCount)
	require.Zero(t, eventCount)
}
