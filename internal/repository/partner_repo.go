package repository

import (
	"tiketi/internal/models"

	"gorm.io/gorm"
)

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(p *models.Partner) error {
	return r.db.Create(p).Error
}

func (r *PartnerRepository) GetByID(id uint) (*models.Partner, error) {
	var p models.Partner
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PartnerRepository) List() ([]models.Partner, error) {
	var list []models.Partner
	err := r.db.Order("id ASC").Find(&list).Error
	return list, err
}

// ListIDs returns all partner ids; the all-partner rebuild iterates these so
// each partner is an independent unit of work.
func (r *PartnerRepository) ListIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Partner{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}
