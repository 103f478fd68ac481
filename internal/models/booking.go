package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking is a finalized trip sale produced by the booking workflow. The
// ledger only reads it and stamps Counted once its revenue has been folded
// into partner totals. FeePercent is captured when the booking is created
// and never re-resolved, so later rate changes don't touch old bookings.
type Booking struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	PartnerID     uint           `gorm:"not null;index" json:"partner_id"`
	Reference     string         `gorm:"size:64;uniqueIndex" json:"reference"`
	AmountCents   int64          `gorm:"not null" json:"amount_cents"`
	DiscountCents int64          `gorm:"not null;default:0" json:"discount_cents"`
	FeePercent    float64        `gorm:"type:decimal(5,2);not null" json:"fee_percent"`
	Status        string         `gorm:"size:20;not null;index" json:"status"` // PENDING, PAID, COMPLETED, CANCELLED
	Counted       bool           `gorm:"not null;default:false;index" json:"counted"`
	CountedAt     *time.Time     `json:"counted_at"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Partner Partner `gorm:"foreignKey:PartnerID" json:"-"`
}

func (Booking) TableName() string { return "bookings" }

// NetCents is the revenue base the service fee is computed on.
func (b *Booking) NetCents() int64 {
	return b.AmountCents - b.DiscountCents
}
