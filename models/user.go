package models

import (
	"time"
)

// User is a staff account. Role is one of the permissions.Role values;
// BranchID is nil only for the unrestricted superadmin tier.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	FullName     string `gorm:"size:150;not null" json:"fullName"`
	Email        string `gorm:"size:150;not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
	Role         string `gorm:"size:32;not null" json:"role"`
	BranchID     *uint  `gorm:"index" json:"branchId,omitempty"`
	IsActive     *bool  `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
