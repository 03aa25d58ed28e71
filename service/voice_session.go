package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"collector-service/constant"
	"collector-service/entities"
	"collector-service/outbox"
	"collector-service/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// VoiceSessionService tracks voice-channel sessions per (platform, channelId)
// key: NO_SESSION -> ACTIVE(n) -> ENDED. The first join starts a session and
// emits Started; the last leave ends it and emits Ended.
type VoiceSessionService interface {
	HandleUserJoined(ctx context.Context, platform, channelID, channelName, userName string) error
	HandleUserLeft(ctx context.Context, platform, channelID string) error
}

type voiceSessionService struct {
	repo      repository.CollectorRepository
	publisher *outbox.Publisher
	index     *ActiveSessionIndex
}

func NewVoiceSessionService(repo repository.CollectorRepository, publisher *outbox.Publisher, index *ActiveSessionIndex) VoiceSessionService {
	return &voiceSessionService{
		repo:      repo,
		publisher: publisher,
		index:     index,
	}
}

func (s *voiceSessionService) HandleUserJoined(ctx context.Context, platform, channelID, channelName, userName string) error {
	key := SessionKey(platform, channelID)
	unlock := s.index.LockKey(key)
	defer unlock()

	sessionID, active := s.index.Get(key)
	if !active {
		if err := s.startNewSession(ctx, platform, channelID, channelName, key); err != nil {
			return err
		}
		zerolog.Ctx(ctx).Info().
			Str("platform", platform).Str("channel", channelName).Str("user", userName).
			Msg("voice session started")
		return nil
	}

	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		session, err := s.repo.FindVoiceSessionByID(ctx, sessionID)
		if err != nil {
			return err
		}
		session.ParticipantCount++
		return s.repo.SaveVoiceSession(ctx, session)
	})
	if errors.Is(err, repository.ErrNotFound) {
		// Stale index entry, the row is gone. Evict so the next join starts
		// a fresh session.
		s.index.Remove(key)
		return fmt.Errorf("voice session %s: %w", sessionID, err)
	}
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().Str("channel", channelName).Str("user", userName).Msg("user joined voice session")
	return nil
}

// HandleUserLeft is a no-op when no session is tracked for the key, so
// redundant leave calls are harmless.
func (s *voiceSessionService) HandleUserLeft(ctx context.Context, platform, channelID string) error {
	key := SessionKey(platform, channelID)
	unlock := s.index.LockKey(key)
	defer unlock()

	sessionID, active := s.index.Get(key)
	if !active {
		return nil
	}

	var ended bool
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		session, err := s.repo.FindVoiceSessionByID(ctx, sessionID)
		if err != nil {
			return err
		}

		newCount := session.ParticipantCount - 1
		if newCount <= 0 {
			session.ParticipantCount = 0
			now := time.Now()
			session.EndTime = &now
			if err := s.repo.SaveVoiceSession(ctx, session); err != nil {
				return err
			}
			ended = true
			return s.publisher.PublishEnded(ctx, session, session.ID.String(), constant.AggregateTypeVoiceSession)
		}

		session.ParticipantCount = newCount
		return s.repo.SaveVoiceSession(ctx, session)
	})
	if errors.Is(err, repository.ErrNotFound) {
		s.index.Remove(key)
		return fmt.Errorf("voice session %s: %w", sessionID, err)
	}
	if err != nil {
		return err
	}

	if ended {
		s.index.Remove(key)
		zerolog.Ctx(ctx).Info().Str("platform", platform).Str("channel_id", channelID).Msg("voice session ended")
	}
	return nil
}

func (s *voiceSessionService) startNewSession(ctx context.Context, platform, channelID, channelName, key string) error {
	session := &entities.VoiceSession{
		ID:               uuid.New(),
		Platform:         platform,
		ChannelID:        channelID,
		ChannelName:      channelName,
		StartTime:        time.Now(),
		ParticipantCount: 1,
	}

	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateVoiceSession(ctx, session); err != nil {
			return err
		}
		return s.publisher.PublishStarted(ctx, session, session.ID.String(), constant.AggregateTypeVoiceSession)
	})
	if err != nil {
		return err
	}

	// Only index the key once the session row is committed.
	s.index.Put(key, session.ID)
	return nil
}
