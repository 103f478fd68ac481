package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tiketi/internal/database"
	"tiketi/internal/domain"
	"tiketi/internal/models"
	"tiketi/internal/repository"
	"tiketi/internal/service"
)

type fixture struct {
	db             *gorm.DB
	partnerRepo    *repository.PartnerRepository
	ledgerRepo     *repository.LedgerRepository
	bookingRepo    *repository.BookingRepository
	withdrawalRepo *repository.WithdrawalRepository
	feeRepo        *repository.FeeRateRepository
	settingRepo    *repository.SettingRepository
	auditRepo      *repository.AuditLogRepository

	feeSvc     *service.FeeService
	ledgerSvc  *service.LedgerService
	rebuildSvc *service.RebuildService
	reportSvc  *service.ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	f := &fixture{
		db:             db,
		partnerRepo:    repository.NewPartnerRepository(db),
		ledgerRepo:     repository.NewLedgerRepository(db),
		bookingRepo:    repository.NewBookingRepository(db),
		withdrawalRepo: repository.NewWithdrawalRepository(db),
		feeRepo:        repository.NewFeeRateRepository(db),
		settingRepo:    repository.NewSettingRepository(db),
		auditRepo:      repository.NewAuditLogRepository(db),
	}
	f.feeSvc = service.NewFeeService(f.feeRepo, f.settingRepo, f.auditRepo)
	f.ledgerSvc = service.NewLedgerService(db, f.ledgerRepo, f.bookingRepo, f.withdrawalRepo, f.partnerRepo, f.auditRepo, nil)
	f.rebuildSvc = service.NewRebuildService(db, f.ledgerRepo, f.bookingRepo, f.withdrawalRepo, f.partnerRepo, f.auditRepo, nil)
	f.reportSvc = service.NewReportService(f.ledgerRepo, f.partnerRepo)
	return f
}

func (f *fixture) createPartner(t *testing.T, name string) *models.Partner {
	t.Helper()
	p := &models.Partner{Name: name, Email: name + "@example.com", IsActive: true}
	require.NoError(t, f.partnerRepo.Create(p))
	return p
}

// createBooking inserts a finalized booking the way the booking workflow
// would: fee percent already captured, status in the counted set.
func (f *fixture) createBooking(t *testing.T, partnerID uint, amount, discount int64, percent float64, createdAt time.Time) *models.Booking {
	t.Helper()
	b := &models.Booking{
		PartnerID:     partnerID,
		Reference:     fmt.Sprintf("bk-%s-%d", t.Name(), time.Now().UnixNano()),
		AmountCents:   amount,
		DiscountCents: discount,
		FeePercent:    percent,
		Status:        domain.BookingStatusPaid,
	}
	require.NoError(t, f.bookingRepo.Create(b))
	if !createdAt.IsZero() {
		require.NoError(t, f.db.Model(b).Update("created_at", createdAt).Error)
		b.CreatedAt = createdAt
	}
	return b
}

// sameLedgerState compares the numeric state two snapshots, ignoring row
// bookkeeping like version and timestamps.
func sameLedgerState(t *testing.T, want, got *models.PartnerLedger) {
	t.Helper()
	require.Equal(t, want.ServiceFeeCents, got.ServiceFeeCents, "service fee balance")
	require.Equal(t, want.ReceivableCents, got.ReceivableCents, "receivable balance")
	require.Equal(t, want.TotalRevenueCents, got.TotalRevenueCents, "total revenue")
	require.Equal(t, want.TotalServiceFeeCents, got.TotalServiceFeeCents, "total service fee")
	require.Equal(t, want.TotalDiscountCents, got.TotalDiscountCents, "total discounts")
	require.Equal(t, want.WithdrawnFeeCents, got.WithdrawnFeeCents, "withdrawn fee")
	require.Equal(t, want.WithdrawnReceivableCents, got.WithdrawnReceivableCents, "withdrawn receivable")
}
