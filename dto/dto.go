package dto

import (
	"time"

	"github.com/google/uuid"
)

// MediaUploadRequest is the metadata that travels alongside the uploaded
// bytes.
type MediaUploadRequest struct {
	MeetingID        string     `json:"meetingId" form:"meetingId" binding:"required"`
	Platform         string     `json:"platform" form:"platform" binding:"required"`
	MeetingTitle     string     `json:"meetingTitle" form:"meetingTitle"`
	HostName         string     `json:"hostName" form:"hostName"`
	MeetingStartTime *time.Time `json:"meetingStartTime" form:"meetingStartTime"`
	MeetingEndTime   *time.Time `json:"meetingEndTime" form:"meetingEndTime"`
	ParticipantCount int        `json:"participantCount" form:"participantCount"`
	UploadedBy       string     `json:"uploadedBy" form:"uploadedBy"`
}

type MediaUploadResponse struct {
	MediaStatusID uuid.UUID `json:"mediaStatusId"`
	FileKey       string    `json:"fileKey"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	Duplicate     bool      `json:"duplicate"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// MediaStatusUpdate is how the downstream processing pipeline reports
// progress back, over HTTP or the media-status queue.
type MediaStatusUpdate struct {
	FileKey string `json:"fileKey" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// PlatformEventMessage is what the platform gateways publish for captured
// facts: voice-channel joins/leaves, text messages and audio chunks.
type PlatformEventMessage struct {
	EventType   string    `json:"eventType"`
	Platform    string    `json:"platform"`
	ChannelID   string    `json:"channelId"`
	ChannelName string    `json:"channelName"`
	UserName    string    `json:"userName"`
	MeetingID   string    `json:"meetingId"`
	Content     string    `json:"content"`
	AudioURL    string    `json:"audioUrl"`
	Timestamp   time.Time `json:"timestamp"`
}

const (
	PlatformEventTypeVoiceJoined  = "VOICE_JOINED"
	PlatformEventTypeVoiceLeft    = "VOICE_LEFT"
	PlatformEventTypeMessage      = "MESSAGE"
	PlatformEventTypeAudioMessage = "AUDIO_MESSAGE"
)

// MediaUploadedPayload is the flattened outbox payload for MEDIA_UPLOADED
// events consumed by the transcription pipeline.
type MediaUploadedPayload struct {
	EventID          string     `json:"eventId"`
	EventType        string     `json:"eventType"`
	Platform         string     `json:"platform"`
	MeetingID        string     `json:"meetingId"`
	FileKey          string     `json:"fileKey"`
	StoragePath      string     `json:"storagePath"`
	MimeType         string     `json:"mimeType"`
	FileSize         int64      `json:"fileSize"`
	Checksum         string     `json:"checksum"`
	OriginalFileName string     `json:"originalFileName"`
	MeetingTitle     string     `json:"meetingTitle"`
	HostName         string     `json:"hostName"`
	MeetingStartTime *time.Time `json:"meetingStartTime"`
	MeetingEndTime   *time.Time `json:"meetingEndTime"`
	ParticipantCount int        `json:"participantCount"`
	UploadedBy       string     `json:"uploadedBy"`
	Timestamp        int64      `json:"timestamp"`
}
