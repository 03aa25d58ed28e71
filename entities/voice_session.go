package entities

import (
	"time"

	"github.com/google/uuid"
)

// VoiceSession is active while EndTime is nil. ParticipantCount never goes
// below zero.
type VoiceSession struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	Platform         string     `json:"platform" gorm:"type:varchar(20);not null"`
	ChannelID        string     `json:"channel_id" gorm:"type:varchar(128);not null;index:idx_voice_sessions_channel"`
	ChannelName      string     `json:"channel_name" gorm:"type:varchar(255)"`
	StartTime        time.Time  `json:"start_time" gorm:"not null"`
	EndTime          *time.Time `json:"end_time"`
	ParticipantCount int        `json:"participant_count" gorm:"not null"`
}

func (VoiceSession) TableName() string {
	return "voice_sessions"
}
