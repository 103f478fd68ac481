package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an operator or partner account used to guard the API. Partner
// accounts carry the partner they belong to; admin accounts don't.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	Role         string         `gorm:"size:20;not null" json:"role"` // ADMIN, PARTNER
	PartnerID    *uint          `gorm:"index" json:"partner_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Partner *Partner `gorm:"foreignKey:PartnerID" json:"-"`
}

func (User) TableName() string { return "users" }
