package models

import (
	"time"
)

// Room operational states. Any state may be set directly through the
// admin edit path; the reservation orchestrator only drives the
// available/reserved/occupied subset.
const (
	RoomStatusAvailable    = "available"
	RoomStatusReserved     = "reserved"
	RoomStatusOccupied     = "occupied"
	RoomStatusMaintenance  = "maintenance"
	RoomStatusHousekeeping = "housekeeping"
	RoomStatusOutOfOrder   = "out-of-order"
)

func IsValidRoomStatus(s string) bool {
	switch s {
	case RoomStatusAvailable, RoomStatusReserved, RoomStatusOccupied,
		RoomStatusMaintenance, RoomStatusHousekeeping, RoomStatusOutOfOrder:
		return true
	}
	return false
}

type Room struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	// branch + number unique together, two branches may both have a "101"
	BranchID     uint   `gorm:"not null;uniqueIndex:idx_rooms_branch_number" json:"branchId"`
	RoomTypeID   uint   `gorm:"index;not null" json:"roomTypeId"`
	Number       string `gorm:"size:50;not null;uniqueIndex:idx_rooms_branch_number" json:"number"`
	Floor        string `gorm:"size:10" json:"floor,omitempty"`
	Status       string `gorm:"size:32;not null;default:available" json:"status"`
	RatePerNight Money  `gorm:"type:decimal(10,2);default:0" json:"ratePerNight"`
	IsActive     *bool  `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Branch   *Branch   `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	RoomType *RoomType `gorm:"foreignKey:RoomTypeID" json:"roomType,omitempty"`
}
