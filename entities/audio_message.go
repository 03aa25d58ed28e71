package entities

import (
	"time"

	"github.com/google/uuid"
)

type AudioMessage struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Platform       string    `json:"platform" gorm:"type:varchar(20);not null"`
	ChannelID      string    `json:"channel_id" gorm:"type:varchar(128)"`
	Author         string    `json:"author" gorm:"type:varchar(100)"`
	AudioURL       string    `json:"audio_url" gorm:"type:varchar(500)"`
	Transcription  string    `json:"transcription" gorm:"type:text"`
	Timestamp      time.Time `json:"timestamp"`
	VoiceSessionID string    `json:"voice_session_id" gorm:"type:varchar(128)"`
	MeetingID      string    `json:"meeting_id" gorm:"type:varchar(128)"`
}

func (AudioMessage) TableName() string {
	return "audio_messages"
}
