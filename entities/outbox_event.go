package entities

import (
	"time"
)

// OutboxEvent is an append-only event record written in the same transaction
// as the aggregate mutation it describes. Payload never changes after insert;
// Processed only ever goes false -> true. Rows are kept after relaying.
type OutboxEvent struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	AggregateType string    `json:"aggregate_type" gorm:"type:varchar(64);not null"`
	AggregateID   string    `json:"aggregate_id" gorm:"type:varchar(128);not null"`
	EventType     string    `json:"event_type" gorm:"type:varchar(64);not null"`
	Payload       string    `json:"payload" gorm:"type:text;not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null"`
	Processed     bool      `json:"processed" gorm:"not null;default:false;index:idx_outbox_events_processed"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}
