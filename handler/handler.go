package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"collector-service/constant"
	"collector-service/dto"
	"collector-service/entities"
	"collector-service/service"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type ServiceDependencies struct {
	IngestService       service.MediaIngestService
	VoiceSessionService service.VoiceSessionService
	MessageService      service.MessageService
	AudioMessageService service.AudioMessageService
}

// MediaStatusHandler consumes progress reports from the downstream
// processing pipeline and applies them to the media asset.
func MediaStatusHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var update dto.MediaStatusUpdate
	if err := json.Unmarshal(msg.Body, &update); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal media status message")
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("file_key", update.FileKey).
		Str("status", update.Status).
		Msg("received media status update")

	status := constant.MediaStatus(strings.ToUpper(update.Status))
	return deps.IngestService.UpdateStatus(ctx, update.FileKey, status)
}

// PlatformEventHandler consumes the facts the platform gateways capture and
// routes them to the owning service.
func PlatformEventHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var event dto.PlatformEventMessage
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal platform event")
		return err
	}

	switch event.EventType {
	case dto.PlatformEventTypeVoiceJoined:
		return deps.VoiceSessionService.HandleUserJoined(ctx, event.Platform, event.ChannelID, event.ChannelName, event.UserName)
	case dto.PlatformEventTypeVoiceLeft:
		return deps.VoiceSessionService.HandleUserLeft(ctx, event.Platform, event.ChannelID)
	case dto.PlatformEventTypeMessage:
		return deps.MessageService.SaveMessage(ctx, &entities.Message{
			Platform:    event.Platform,
			Author:      event.UserName,
			Content:     event.Content,
			Timestamp:   event.Timestamp,
			MeetingID:   event.MeetingID,
			ChannelID:   event.ChannelID,
			ChannelName: event.ChannelName,
		})
	case dto.PlatformEventTypeAudioMessage:
		return deps.AudioMessageService.SaveAudioMessage(ctx, &entities.AudioMessage{
			Platform:  event.Platform,
			ChannelID: event.ChannelID,
			Author:    event.UserName,
			AudioURL:  event.AudioURL,
			Timestamp: event.Timestamp,
			MeetingID: event.MeetingID,
		})
	default:
		return fmt.Errorf("unknown platform event type: %s", event.EventType)
	}
}
