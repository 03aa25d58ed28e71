package entities

import (
	"time"

	"collector-service/constant"

	"github.com/google/uuid"
)

// MediaAsset is one row per distinct content checksum, no matter how many
// times the same bytes are uploaded.
type MediaAsset struct {
	ID               uuid.UUID            `json:"id" gorm:"type:uuid;primary_key"`
	FileKey          string               `json:"file_key" gorm:"type:varchar(128);not null;uniqueIndex:idx_media_assets_file_key"`
	Checksum         string               `json:"checksum" gorm:"type:varchar(64);not null;uniqueIndex:idx_media_assets_checksum"`
	MimeType         string               `json:"mime_type" gorm:"type:varchar(100)"`
	OriginalFileName string               `json:"original_file_name" gorm:"type:varchar(255)"`
	FileSize         int64                `json:"file_size" gorm:"type:bigint"`
	Duration         *int64               `json:"duration" gorm:"type:bigint"`
	StoragePath      string               `json:"storage_path" gorm:"type:varchar(500)"`
	Status           constant.MediaStatus `json:"status" gorm:"type:varchar(20);not null"`
	CreatedAt        time.Time            `json:"created_at" gorm:"not null"`
	ProcessedAt      *time.Time           `json:"processed_at"`
}

func (MediaAsset) TableName() string {
	return "media_assets"
}
