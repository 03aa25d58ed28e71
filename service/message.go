package service

import (
	"context"

	"collector-service/constant"
	"collector-service/entities"
	"collector-service/outbox"
	"collector-service/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type MessageService interface {
	SaveMessage(ctx context.Context, message *entities.Message) error
}

type messageService struct {
	repo      repository.CollectorRepository
	publisher *outbox.Publisher
}

func NewMessageService(repo repository.CollectorRepository, publisher *outbox.Publisher) MessageService {
	return &messageService{repo: repo, publisher: publisher}
}

// SaveMessage persists a captured text message and its Created outbox event
// atomically.
func (s *messageService) SaveMessage(ctx context.Context, message *entities.Message) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}

	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateMessage(ctx, message); err != nil {
			return err
		}
		return s.publisher.PublishCreated(ctx, message, message.ID.String(), constant.AggregateTypeMessage)
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("message_id", message.ID.String()).
		Str("author", message.Author).
		Str("platform", message.Platform).
		Msg("message saved")
	return nil
}
