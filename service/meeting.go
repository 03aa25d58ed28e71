package service

import (
	"context"
	"time"

	"collector-service/constant"
	"collector-service/entities"
	"collector-service/outbox"
	"collector-service/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type MeetingService interface {
	StartMeeting(ctx context.Context, meeting *entities.Meeting) error
	EndMeeting(ctx context.Context, meetingID uuid.UUID) error
}

type meetingService struct {
	repo      repository.CollectorRepository
	publisher *outbox.Publisher
}

func NewMeetingService(repo repository.CollectorRepository, publisher *outbox.Publisher) MeetingService {
	return &meetingService{repo: repo, publisher: publisher}
}

// StartMeeting stamps the start time and commits the meeting row together
// with its Started outbox event.
func (s *meetingService) StartMeeting(ctx context.Context, meeting *entities.Meeting) error {
	if meeting.ID == uuid.Nil {
		meeting.ID = uuid.New()
	}
	now := time.Now()
	meeting.StartTime = &now

	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateMeeting(ctx, meeting); err != nil {
			return err
		}
		return s.publisher.PublishStarted(ctx, meeting, meeting.ID.String(), constant.AggregateTypeMeeting)
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("meeting_id", meeting.ID.String()).Str("platform", meeting.Platform).Msg("meeting started")
	return nil
}

func (s *meetingService) EndMeeting(ctx context.Context, meetingID uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		meeting, err := s.repo.FindMeetingByID(ctx, meetingID)
		if err != nil {
			return err
		}

		now := time.Now()
		meeting.EndTime = &now
		if err := s.repo.SaveMeeting(ctx, meeting); err != nil {
			return err
		}
		return s.publisher.PublishEnded(ctx, meeting, meeting.ID.String(), constant.AggregateTypeMeeting)
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("meeting_id", meetingID.String()).Msg("meeting ended")
	return nil
}
