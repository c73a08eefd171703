package models

import (
	"time"

	"gorm.io/datatypes"
)

// Reservation lifecycle: pending -> confirmed -> checked-in -> checked-out,
// with cancelled and no-show reachable from any non-terminal state.
const (
	ReservationStatusPending    = "pending"
	ReservationStatusConfirmed  = "confirmed"
	ReservationStatusCheckedIn  = "checked-in"
	ReservationStatusCheckedOut = "checked-out"
	ReservationStatusCancelled  = "cancelled"
	ReservationStatusNoShow     = "no-show"
)

func IsValidReservationStatus(s string) bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed,
		ReservationStatusCheckedIn, ReservationStatusCheckedOut,
		ReservationStatusCancelled, ReservationStatusNoShow:
		return true
	}
	return false
}

// IsTerminalReservationStatus reports whether the reservation may no
// longer be edited.
func IsTerminalReservationStatus(s string) bool {
	return s == ReservationStatusCheckedOut || s == ReservationStatusCancelled
}

// Reservation is keyed by its human-facing confirmation number
// (RES + 8 digits) rather than a sequential id.
type Reservation struct {
	ID       string `gorm:"primaryKey;size:32" json:"id"`
	BranchID uint   `gorm:"index;not null" json:"branchId"`
	GuestID  uint   `gorm:"index;not null" json:"guestId"`
	Status   string `gorm:"size:32;not null;default:confirmed" json:"status"`

	TotalAmount Money `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	TaxAmount   Money `gorm:"type:decimal(10,2);not null" json:"taxAmount"`

	// Breakdown of the taxes applied at creation time.
	AppliedTaxes datatypes.JSON `gorm:"column:applied_taxes" json:"appliedTaxes,omitempty"`

	Notes       string `gorm:"type:text" json:"notes,omitempty"`
	CreatedByID uint   `gorm:"index" json:"createdById"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Guest  *Guest            `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
	Branch *Branch           `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Rooms  []ReservationRoom `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE" json:"rooms"`
}
