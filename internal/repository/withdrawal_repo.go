package repository

import (
	"errors"
	"time"

	"tiketi/internal/domain"
	"tiketi/internal/models"

	"gorm.io/gorm"
)

var ErrAlreadyApplied = errors.New("withdrawal already applied")

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(w *models.Withdrawal) error {
	return r.db.Create(w).Error
}

func (r *WithdrawalRepository) GetByID(id uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.db.First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) GetByIDTx(tx *gorm.DB, id uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := tx.First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) GetByOrderID(orderID string) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.db.Where("order_id = ?", orderID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// Decide transitions a pending withdrawal to APPROVED or REJECTED. The WHERE
// on status keeps a double decision from slipping through.
func (r *WithdrawalRepository) Decide(w *models.Withdrawal, status, decidedBy string) error {
	now := time.Now()
	res := r.db.Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", w.ID, domain.WithdrawalStatusPending).
		Updates(map[string]interface{}{"status": status, "decided_by": decidedBy, "decided_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	w.Status = status
	w.DecidedBy = decidedBy
	w.DecidedAt = &now
	return nil
}

// Revert moves an approved-but-unapplied withdrawal back out of APPROVED,
// used when the ledger debit was refused after approval.
func (r *WithdrawalRepository) Revert(w *models.Withdrawal, status, decidedBy string) error {
	now := time.Now()
	res := r.db.Model(&models.Withdrawal{}).
		Where("id = ? AND status = ? AND applied = ?", w.ID, domain.WithdrawalStatusApproved, false).
		Updates(map[string]interface{}{"status": status, "decided_by": decidedBy, "decided_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	w.Status = status
	w.DecidedBy = decidedBy
	w.DecidedAt = &now
	return nil
}

// MarkApplied stamps the idempotency flag, atomically with the ledger debit.
func (r *WithdrawalRepository) MarkApplied(tx *gorm.DB, w *models.Withdrawal) error {
	now := time.Now()
	res := tx.Model(&models.Withdrawal{}).
		Where("id = ? AND applied = ?", w.ID, false).
		Updates(map[string]interface{}{"applied": true, "applied_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyApplied
	}
	w.Applied = true
	w.AppliedAt = &now
	return nil
}

// AppliedByPartner returns applied withdrawals in creation-time order for replay.
func (r *WithdrawalRepository) AppliedByPartner(tx *gorm.DB, partnerID uint) ([]models.Withdrawal, error) {
	var list []models.Withdrawal
	err := tx.Where("partner_id = ? AND applied = ?", partnerID, true).
		Order("created_at ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *WithdrawalRepository) ListByPartner(partnerID uint, limit int) ([]models.Withdrawal, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []models.Withdrawal
	err := r.db.Where("partner_id = ?", partnerID).
		Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}
