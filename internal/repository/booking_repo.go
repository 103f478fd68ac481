package repository

import (
	"errors"
	"time"

	"tiketi/internal/models"

	"gorm.io/gorm"
)

var ErrAlreadyCounted = errors.New("booking already counted")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(b *models.Booking) error {
	return r.db.Create(b).Error
}

func (r *BookingRepository) GetByID(id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) GetByIDTx(tx *gorm.DB, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := tx.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateStatus transitions the booking workflow status. The counted flag is
// owned by the ledger and not touched here.
func (r *BookingRepository) UpdateStatus(b *models.Booking, status string) error {
	if err := r.db.Model(b).Update("status", status).Error; err != nil {
		return err
	}
	b.Status = status
	return nil
}

// MarkCounted stamps the idempotency flag. The WHERE on counted makes the
// check-and-set atomic: a second applier sees zero rows and backs off.
func (r *BookingRepository) MarkCounted(tx *gorm.DB, b *models.Booking) error {
	now := time.Now()
	res := tx.Model(&models.Booking{}).
		Where("id = ? AND counted = ?", b.ID, false).
		Updates(map[string]interface{}{"counted": true, "counted_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyCounted
	}
	b.Counted = true
	b.CountedAt = &now
	return nil
}

// CountedByPartner returns counted bookings in creation-time order, ties
// broken by id, which is the replay order the rebuild relies on. Runs on tx
// so the replay reads the same snapshot it resets.
func (r *BookingRepository) CountedByPartner(tx *gorm.DB, partnerID uint) ([]models.Booking, error) {
	var list []models.Booking
	err := tx.Where("partner_id = ? AND counted = ?", partnerID, true).
		Order("created_at ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *BookingRepository) ListByPartner(partnerID uint, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []models.Booking
	err := r.db.Where("partner_id = ?", partnerID).
		Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}
