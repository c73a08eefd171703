package models

import (
	"time"
)

// Branch is an independently operated hotel location. Every branch-scoped
// entity (rooms, reservations, branch-local room types) hangs off one of
// these. Deleting a branch is two-phase: the first delete only flips
// IsActive off, a second delete on an inactive branch removes the row.
type Branch struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Address  string `gorm:"type:text" json:"address,omitempty"`
	Phone    string `gorm:"size:20" json:"phone,omitempty"`
	IsActive *bool  `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
