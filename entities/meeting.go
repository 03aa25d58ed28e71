package entities

import (
	"time"

	"github.com/google/uuid"
)

type Meeting struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	Platform     string     `json:"platform" gorm:"type:varchar(20);not null"`
	MeetingID    string     `json:"meeting_id" gorm:"type:varchar(128);index:idx_meetings_meeting_id"`
	Title        string     `json:"title" gorm:"type:varchar(255)"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Participants int        `json:"participants"`
}

func (Meeting) TableName() string {
	return "meetings"
}
