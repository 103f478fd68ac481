package service

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"tiketi/internal/domain"
	"tiketi/internal/models"
	"tiketi/internal/repository"
	"tiketi/pkg/money"

	"gorm.io/gorm"
)

var ErrInvalidRate = errors.New("fee percent must be between 0 and 100")

// FeeService resolves which service-fee percentage applies at a point in
// time and records rate changes. The history is an append-only step function:
// the rate at T is the NewPercent of the latest entry with AppliedAt <= T,
// falling back to the configured system default.
type FeeService struct {
	feeRepo     *repository.FeeRateRepository
	settingRepo *repository.SettingRepository
	auditRepo   *repository.AuditLogRepository
}

func NewFeeService(
	feeRepo *repository.FeeRateRepository,
	settingRepo *repository.SettingRepository,
	auditRepo *repository.AuditLogRepository,
) *FeeService {
	return &FeeService{feeRepo: feeRepo, settingRepo: settingRepo, auditRepo: auditRepo}
}

// ResolveRate returns the percent in effect at asOf. Pure read.
func (s *FeeService) ResolveRate(asOf time.Time) (float64, error) {
	fc, err := s.feeRepo.LatestAt(asOf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.DefaultPercent(), nil
		}
		return 0, err
	}
	return fc.NewPercent, nil
}

// CurrentRate is the rate new bookings capture right now.
func (s *FeeService) CurrentRate() (float64, error) {
	return s.ResolveRate(time.Now())
}

// DefaultPercent is the system default used when the history is empty.
func (s *FeeService) DefaultPercent() float64 {
	val, err := s.settingRepo.Get(domain.SettingDefaultFeePercent)
	if err != nil || val == "" {
		return 0
	}
	p, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return p
}

// RecordRateChange validates and appends a rate transition. OldPercent is
// captured as the rate resolved for "now", not for appliedAt, so the entry
// documents what the operator actually saw when making the change.
func (s *FeeService) RecordRateChange(newPercent float64, appliedAt time.Time, changedBy string) (*models.FeeRateChange, error) {
	if !money.ValidPercent(newPercent) {
		return nil, ErrInvalidRate
	}
	if appliedAt.IsZero() {
		appliedAt = time.Now()
	}
	oldPercent, err := s.CurrentRate()
	if err != nil {
		return nil, err
	}
	fc := &models.FeeRateChange{
		OldPercent: oldPercent,
		NewPercent: newPercent,
		AppliedAt:  appliedAt,
		UpdatedBy:  changedBy,
	}
	if err := s.feeRepo.Append(fc); err != nil {
		return nil, err
	}
	meta, _ := json.Marshal(map[string]interface{}{
		"old_percent": oldPercent,
		"new_percent": newPercent,
		"applied_at":  appliedAt,
	})
	_ = s.auditRepo.Create(&models.AuditLog{
		Actor:      changedBy,
		Action:     "fee.rate_change",
		Resource:   "fee_rate",
		ResourceID: strconv.FormatUint(uint64(fc.ID), 10),
		Metadata:   string(meta),
	})
	return fc, nil
}

func (s *FeeService) History() ([]models.FeeRateChange, error) {
	return s.feeRepo.History()
}
