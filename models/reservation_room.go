package models

import (
	"time"
)

// ReservationRoom is the junction row between a reservation and one of
// its rooms. CheckOutDate >= CheckInDate always; a same-day stay is
// billed as one night.
type ReservationRoom struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ReservationID string `gorm:"size:32;index;not null" json:"reservationId"`
	RoomID        uint   `gorm:"index;not null" json:"roomId"`

	CheckInDate  time.Time `gorm:"not null" json:"checkInDate"`
	CheckOutDate time.Time `gorm:"not null" json:"checkOutDate"`

	Adults   int `gorm:"not null;default:1" json:"adults"`
	Children int `gorm:"not null;default:0" json:"children"`

	RatePerNight Money `gorm:"type:decimal(10,2);not null" json:"ratePerNight"`
	TotalAmount  Money `gorm:"type:decimal(10,2);not null" json:"totalAmount"`

	SpecialRequests string `gorm:"type:text" json:"specialRequests,omitempty"`

	ActualCheckIn  *time.Time `json:"actualCheckIn,omitempty"`
	ActualCheckOut *time.Time `json:"actualCheckOut,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Room *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}
