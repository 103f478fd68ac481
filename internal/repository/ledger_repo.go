package repository

import (
	"errors"

	"tiketi/internal/models"

	"gorm.io/gorm"
)

// ErrVersionConflict means a concurrent mutation won the compare-and-swap on
// the same partner ledger. Callers retry; it never reaches the API boundary.
var ErrVersionConflict = errors.New("ledger version conflict")

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) GetByPartnerID(partnerID uint) (*models.PartnerLedger, error) {
	var l models.PartnerLedger
	if err := r.db.Where("partner_id = ?", partnerID).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// GetOrCreate lazily initializes the ledger on a partner's first event.
// Runs on tx so creation participates in the caller's atomic unit.
func (r *LedgerRepository) GetOrCreate(tx *gorm.DB, partnerID uint) (*models.PartnerLedger, error) {
	var l models.PartnerLedger
	err := tx.Where("partner_id = ?", partnerID).First(&l).Error
	if err == nil {
		return &l, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	l = models.PartnerLedger{PartnerID: partnerID}
	if err := tx.Create(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LedgerRepository) List() ([]models.PartnerLedger, error) {
	var list []models.PartnerLedger
	err := r.db.Order("partner_id ASC").Find(&list).Error
	return list, err
}

// SaveCAS writes the full ledger state guarded by the version column.
// Zero rows affected means another writer got there first.
func (r *LedgerRepository) SaveCAS(tx *gorm.DB, l *models.PartnerLedger) error {
	res := tx.Model(&models.PartnerLedger{}).
		Where("id = ? AND version = ?", l.ID, l.Version).
		Updates(map[string]interface{}{
			"service_fee_cents":          l.ServiceFeeCents,
			"receivable_cents":           l.ReceivableCents,
			"total_revenue_cents":        l.TotalRevenueCents,
			"total_service_fee_cents":    l.TotalServiceFeeCents,
			"total_discount_cents":       l.TotalDiscountCents,
			"withdrawn_fee_cents":        l.WithdrawnFeeCents,
			"withdrawn_receivable_cents": l.WithdrawnReceivableCents,
			"last_booking_id":            l.LastBookingID,
			"last_booking_at":            l.LastBookingAt,
			"last_withdrawal_id":         l.LastWithdrawalID,
			"last_withdrawal_at":         l.LastWithdrawalAt,
			"version":                    l.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	l.Version++
	return nil
}

func (r *LedgerRepository) AddEntry(tx *gorm.DB, e *models.LedgerEntry) error {
	return tx.Create(e).Error
}

// Entries returns the most recent activity rows for a partner, newest first.
func (r *LedgerRepository) Entries(partnerID uint, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []models.LedgerEntry
	err := r.db.Where("partner_id = ?", partnerID).
		Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}
