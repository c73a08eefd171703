package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	OutboxStatusPending    = "pending"
	OutboxStatusDispatched = "dispatched"
	OutboxStatusFailed     = "failed"
)

// Outbox event kinds understood by the dispatcher.
const (
	EventCreated     = "created"
	EventUpdated     = "updated"
	EventCancelled   = "cancelled"
	EventCheckIn     = "checked-in"
	EventCheckOut    = "checked-out"
	EventMaintenance = "maintenance"
)

// OutboxEvent records an intended side effect (broadcast, notification)
// in the same transaction as the state change that requires it. A
// background dispatcher delivers pending rows with retry, so a crash
// between commit and delivery loses nothing.
type OutboxEvent struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Resource  string         `gorm:"size:64;not null;index" json:"resource"`
	EventKind string         `gorm:"size:64;not null" json:"eventKind"`
	Payload   datatypes.JSON `json:"payload"`

	Status    string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	Attempts  int        `gorm:"not null;default:0" json:"attempts"`
	LastError string     `gorm:"type:text" json:"lastError,omitempty"`
	LockedAt  *time.Time `json:"lockedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
