package repository

import (
	"time"

	"tiketi/internal/models"

	"gorm.io/gorm"
)

// FeeRateRepository owns the append-only rate-change history. No Update, no
// Delete; corrections are new entries.
type FeeRateRepository struct {
	db *gorm.DB
}

func NewFeeRateRepository(db *gorm.DB) *FeeRateRepository {
	return &FeeRateRepository{db: db}
}

func (r *FeeRateRepository) Append(fc *models.FeeRateChange) error {
	return r.db.Create(fc).Error
}

// LatestAt returns the newest entry effective at asOf. AppliedAt is
// operator-supplied and not unique, so ties resolve by insertion order
// (higher id wins).
func (r *FeeRateRepository) LatestAt(asOf time.Time) (*models.FeeRateChange, error) {
	var fc models.FeeRateChange
	err := r.db.Where("applied_at <= ?", asOf).
		Order("applied_at DESC, id DESC").First(&fc).Error
	if err != nil {
		return nil, err
	}
	return &fc, nil
}

func (r *FeeRateRepository) History() ([]models.FeeRateChange, error) {
	var list []models.FeeRateChange
	err := r.db.Order("applied_at ASC, id ASC").Find(&list).Error
	return list, err
}
