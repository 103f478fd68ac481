package models

import (
	"time"

	"gorm.io/gorm"
)

// Withdrawal is a request to take money out of one ledger bucket: FEE is the
// platform collecting its commission, RECEIVABLE is a partner payout. Only an
// APPROVED withdrawal ever produces a ledger debit; Applied marks that the
// debit has been folded in (at most once).
type Withdrawal struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PartnerID   uint           `gorm:"not null;index" json:"partner_id"`
	OrderID     string         `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"`
	Bucket      string         `gorm:"size:20;not null" json:"bucket"`       // FEE, RECEIVABLE
	Status      string         `gorm:"size:20;not null;index" json:"status"` // PENDING, APPROVED, REJECTED
	Applied     bool           `gorm:"not null;default:false;index" json:"applied"`
	AppliedAt   *time.Time     `json:"applied_at"`
	DecidedBy   string         `gorm:"size:255" json:"decided_by"`
	DecidedAt   *time.Time     `json:"decided_at"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Partner Partner `gorm:"foreignKey:PartnerID" json:"-"`
}

func (Withdrawal) TableName() string { return "withdrawals" }
