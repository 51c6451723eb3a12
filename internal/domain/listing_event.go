package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Listing audit event types.
const (
	EventCreated       = "CREATED"
	EventUpdated       = "UPDATED"
	EventStatusChanged = "STATUS_CHANGED"
	EventDeleted       = "DELETED"
)

// ListingEvent is one entry of a listing's audit trail. Events outlive the
// listing they describe.
type ListingEvent struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ListingID uuid.UUID      `gorm:"column:listing_id;type:uuid;not null;index" json:"listingId"`
	EventType string         `gorm:"column:event_type;type:varchar(30);not null" json:"eventType"`
	ActorID   *uuid.UUID     `gorm:"column:actor_id;type:uuid" json:"actorId"`
	EventData datatypes.JSON `gorm:"column:event_data;type:json" json:"eventData"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"createdAt"`
}

func (ListingEvent) TableName() string {
	return "listing_events"
}

func (e *ListingEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
