package models

import (
	"time"
)

// Guest is deduplicated by phone number: PhoneKey holds the digits-only
// form of Phone and carries a unique index, so at most one active guest
// record exists per number. Guests are referenced by reservations, never
// owned, and are only ever deactivated, not hard-deleted.
type Guest struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	FullName string `gorm:"size:150;not null" json:"fullName"`
	Phone    string `gorm:"size:32;not null" json:"phone"`
	PhoneKey string `gorm:"size:32;not null;uniqueIndex" json:"-"`
	Email    string `gorm:"size:150" json:"email,omitempty"`

	Nationality string `gorm:"size:100" json:"nationality,omitempty"`

	// Branch the guest was first seen at. Lookup and search stay global.
	BranchID *uint `gorm:"index" json:"branchId,omitempty"`

	// Denormalized counter, incremented in the same transaction as each
	// reservation that references this guest.
	ReservationCount int   `gorm:"not null;default:0" json:"reservationCount"`
	IsActive         *bool `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
