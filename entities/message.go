package entities

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Platform    string    `json:"platform" gorm:"type:varchar(20);not null"`
	Author      string    `json:"author" gorm:"type:varchar(100)"`
	Content     string    `json:"content" gorm:"type:text"`
	Timestamp   time.Time `json:"timestamp"`
	MeetingID   string    `json:"meeting_id" gorm:"type:varchar(128)"`
	ChannelID   string    `json:"channel_id" gorm:"type:varchar(128)"`
	ChannelName string    `json:"channel_name" gorm:"type:varchar(255)"`
}

func (Message) TableName() string {
	return "messages"
}
