package models

import (
	"time"
)

// PartnerLedger is the per-partner balance record. Balances are always
// derivable from the lifetime counters:
//
//	ServiceFeeCents = TotalServiceFeeCents - WithdrawnFeeCents
//	ReceivableCents = TotalRevenueCents - TotalDiscountCents - TotalServiceFeeCents - WithdrawnReceivableCents
//
// Both must stay >= 0. Version is the optimistic lock: every mutation is a
// compare-and-swap on it, so two updates for the same partner never interleave.
type PartnerLedger struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	PartnerID uint `gorm:"uniqueIndex;not null" json:"partner_id"`

	ServiceFeeCents int64 `gorm:"not null;default:0" json:"service_fee_cents"`
	ReceivableCents int64 `gorm:"not null;default:0" json:"receivable_cents"`

	TotalRevenueCents        int64 `gorm:"not null;default:0" json:"total_revenue_cents"`
	TotalServiceFeeCents     int64 `gorm:"not null;default:0" json:"total_service_fee_cents"`
	TotalDiscountCents       int64 `gorm:"not null;default:0" json:"total_discount_cents"`
	WithdrawnFeeCents        int64 `gorm:"not null;default:0" json:"withdrawn_fee_cents"`
	WithdrawnReceivableCents int64 `gorm:"not null;default:0" json:"withdrawn_receivable_cents"`

	LastBookingID    *uint      `json:"last_booking_id"`
	LastBookingAt    *time.Time `json:"last_booking_at"`
	LastWithdrawalID *uint      `json:"last_withdrawal_id"`
	LastWithdrawalAt *time.Time `json:"last_withdrawal_at"`

	Version   uint      `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Partner Partner `gorm:"foreignKey:PartnerID" json:"-"`
}

func (PartnerLedger) TableName() string { return "partner_ledgers" }

// Recompute derives both balances from the lifetime counters.
func (l *PartnerLedger) Recompute() {
	l.ServiceFeeCents = l.TotalServiceFeeCents - l.WithdrawnFeeCents
	l.ReceivableCents = l.TotalRevenueCents - l.TotalDiscountCents - l.TotalServiceFeeCents - l.WithdrawnReceivableCents
}

// Zero resets all counters and balances, preserving partner identity.
func (l *PartnerLedger) Zero() {
	l.ServiceFeeCents = 0
	l.ReceivableCents = 0
	l.TotalRevenueCents = 0
	l.TotalServiceFeeCents = 0
	l.TotalDiscountCents = 0
	l.WithdrawnFeeCents = 0
	l.WithdrawnReceivableCents = 0
	l.LastBookingID = nil
	l.LastBookingAt = nil
	l.LastWithdrawalID = nil
	l.LastWithdrawalAt = nil
}

// LedgerEntry records one applied event for the partner activity feed.
// Deltas are signed: a booking credits, a withdrawal debits.
type LedgerEntry struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	PartnerID            uint      `gorm:"not null;index" json:"partner_id"`
	Kind                 string    `gorm:"size:20;not null;index" json:"kind"` // BOOKING, WITHDRAWAL, ADJUSTMENT, RESET, REBUILD
	FeeDeltaCents        int64     `gorm:"not null;default:0" json:"fee_delta_cents"`
	ReceivableDeltaCents int64     `gorm:"not null;default:0" json:"receivable_delta_cents"`
	Reference            string    `gorm:"size:128;index" json:"reference"` // e.g. booking id, withdrawal order id
	Note                 string    `gorm:"size:255" json:"note"`
	CreatedAt            time.Time `json:"created_at"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }
