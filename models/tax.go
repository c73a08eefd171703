package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TaxApplicationReservation = "reservation"
	TaxApplicationOrder       = "order"
)

func IsValidTaxApplication(s string) bool {
	return s == TaxApplicationReservation || s == TaxApplicationOrder
}

// Tax is a percentage applied to a subtotal. Active taxes are snapshotted
// into the reservation at creation time; later rate edits never touch
// existing reservations.
type Tax struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	TaxName         string          `gorm:"size:100;not null" json:"taxName"`
	Rate            decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"rate"`
	ApplicationType string          `gorm:"size:32;not null;index" json:"applicationType"`
	IsActive        *bool           `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
