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

type AudioMessageService interface {
	SaveAudioMessage(ctx context.Context, audio *entities.AudioMessage) error
	UpdateAudioMessage(ctx context.Context, audio *entities.AudioMessage) error
}

type audioMessageService struct {
	repo      repository.CollectorRepository
	publisher *outbox.Publisher
}

func NewAudioMessageService(repo repository.CollectorRepository, publisher *outbox.Publisher) AudioMessageService {
	return &audioMessageService{repo: repo, publisher: publisher}
}

func (s *audioMessageService) SaveAudioMessage(ctx context.Context, audio *entities.AudioMessage) error {
	if audio.ID == uuid.Nil {
		audio.ID = uuid.New()
	}

	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateAudioMessage(ctx, audio); err != nil {
			return err
		}
		return s.publisher.PublishCreated(ctx, audio, audio.ID.String(), constant.AggregateTypeAudioMessage)
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().Str("audio_message_id", audio.ID.String()).Str("author", audio.Author).Msg("audio message saved")
	return nil
}

// UpdateAudioMessage stores a transcription and audio url produced by the
// downstream pipeline and emits an Updated event.
func (s *audioMessageService) UpdateAudioMessage(ctx context.Context, audio *entities.AudioMessage) error {
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindAudioMessageByID(ctx, audio.ID)
		if err != nil {
			return err
		}

		existing.Transcription = audio.Transcription
		existing.AudioURL = audio.AudioURL
		if err := s.repo.SaveAudioMessage(ctx, existing); err != nil {
			return err
		}
		return s.publisher.PublishUpdated(ctx, existing, existing.ID.String(), constant.AggregateTypeAudioMessage)
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().Str("audio_message_id", audio.ID.String()).Msg("audio message updated")
	return nil
}
