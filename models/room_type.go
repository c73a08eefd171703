package models

import (
	"time"
)

// RoomType is static reference data. BranchID == nil means the type is
// global and visible to every branch.
type RoomType struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Description  string `gorm:"type:text" json:"description,omitempty"`
	BranchID     *uint  `gorm:"index" json:"branchId,omitempty"`
	MaxOccupancy int    `gorm:"default:2" json:"maxOccupancy"`
	IsActive     *bool  `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Branch *Branch `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}
