package entities

import (
	"time"

	"github.com/google/uuid"
)

// MeetingMedia links one upload call to a MediaAsset. Every upload creates a
// row, even when the underlying asset is reused for duplicate content, so the
// per-meeting metadata of each call is preserved.
type MeetingMedia struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	MeetingID        string     `json:"meeting_id" gorm:"type:varchar(128);not null;index:idx_meeting_media_meeting_id"`
	Platform         string     `json:"platform" gorm:"type:varchar(20);not null"`
	MediaAssetID     uuid.UUID  `json:"media_asset_id" gorm:"type:uuid;not null;index:idx_meeting_media_asset_id"`
	MediaAsset       MediaAsset `json:"media_asset" gorm:"foreignKey:MediaAssetID"`
	MeetingTitle     string     `json:"meeting_title" gorm:"type:varchar(255)"`
	HostName         string     `json:"host_name" gorm:"type:varchar(100)"`
	MeetingStartTime *time.Time `json:"meeting_start_time"`
	MeetingEndTime   *time.Time `json:"meeting_end_time"`
	ParticipantCount int        `json:"participant_count"`
	UploadedAt       time.Time  `json:"uploaded_at" gorm:"not null"`
	UploadedBy       string     `json:"uploaded_by" gorm:"type:varchar(100)"`
}

func (MeetingMedia) TableName() string {
	return "meeting_media"
}
