package models

import (
	"time"
)

// FeeRateChange is one append-only entry in the service-fee rate history.
// Sorted by AppliedAt the entries form a step function; the rate in effect
// at time T is the NewPercent of the latest entry with AppliedAt <= T.
// Entries are never updated or deleted.
type FeeRateChange struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OldPercent float64   `gorm:"type:decimal(5,2);not null" json:"old_percent"`
	NewPercent float64   `gorm:"type:decimal(5,2);not null" json:"new_percent"`
	AppliedAt  time.Time `gorm:"not null;index" json:"applied_at"`
	UpdatedBy  string    `gorm:"size:255" json:"updated_by"`
	CreatedAt  time.Time `json:"created_at"`
}

func (FeeRateChange) TableName() string { return "fee_rate_changes" }
