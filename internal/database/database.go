package database

import (
	"log"
	"strconv"

	"tiketi/config"
	"tiketi/internal/domain"
	"tiketi/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Partner{},
		&models.PartnerLedger{},
		&models.LedgerEntry{},
		&models.FeeRateChange{},
		&models.Booking{},
		&models.Withdrawal{},
		&models.AuditLog{},
		&models.SystemSetting{},
	)
}

// SeedAdmin creates the initial operator account if no admin exists yet.
func SeedAdmin(db *gorm.DB, cfg *config.AdminConfig) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[seed] admin password hash: %v", err)
		return
	}
	u := &models.User{Email: cfg.Email, PasswordHash: string(hash), Role: domain.RoleAdmin}
	if err := db.Create(u).Error; err != nil {
		log.Printf("[seed] admin user: %v", err)
		return
	}
	log.Printf("[seed] created admin %s", cfg.Email)
}

// SeedSettings inserts the default fee percent setting if missing, so the
// fee resolver has a system default before any rate change is recorded.
func SeedSettings(db *gorm.DB, defaultFeePercent float64) {
	var count int64
	db.Model(&models.SystemSetting{}).Where("`key` = ?", domain.SettingDefaultFeePercent).Count(&count)
	if count > 0 {
		return
	}
	s := &models.SystemSetting{
		Key:   domain.SettingDefaultFeePercent,
		Value: strconv.FormatFloat(defaultFeePercent, 'f', -1, 64),
	}
	if err := db.Create(s).Error; err != nil {
		log.Printf("[seed] default fee percent: %v", err)
	}
}
