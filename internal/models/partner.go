package models

import (
	"time"

	"gorm.io/gorm"
)

// Partner is a selling operator (e.g. a bus company) whose revenue and
// service fees are tracked by one ledger record.
type Partner struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:120;not null" json:"name"`
	Email     string         `gorm:"size:255;uniqueIndex" json:"email"`
	Phone     string         `gorm:"size:20" json:"phone"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Partner) TableName() string { return "partners" }
