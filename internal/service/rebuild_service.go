package service

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"tiketi/internal/domain"
	"tiketi/internal/models"
	"tiketi/internal/repository"

	"gorm.io/gorm"
)

// Discrepancy is a replayed withdrawal that no longer passes the sufficiency
// check, usually because replay order differs from the original real-time
// order. It's reported for audit, never silently clamped.
type Discrepancy struct {
	PartnerID      uint   `json:"partner_id"`
	WithdrawalID   uint   `json:"withdrawal_id"`
	OrderID        string `json:"order_id"`
	Bucket         string `json:"bucket"`
	AmountCents    int64  `json:"amount_cents"`
	ShortfallCents int64  `json:"shortfall_cents"`
}

type RebuildResult struct {
	PartnerID     uint                  `json:"partner_id"`
	Bookings      int                   `json:"bookings_replayed"`
	Withdrawals   int                   `json:"withdrawals_replayed"`
	Discrepancies []Discrepancy         `json:"discrepancies,omitempty"`
	Ledger        *models.PartnerLedger `json:"ledger,omitempty"`
	Error         string                `json:"error,omitempty"`
}

// RebuildService recomputes ledger state purely from source history: reset to
// zero, replay counted bookings with the fee percent stored on each booking,
// then replay applied withdrawals, all in creation-time order. The result is
// the authoritative snapshot; drifted counters are simply overwritten.
type RebuildService struct {
	db             *gorm.DB
	ledgerRepo     *repository.LedgerRepository
	bookingRepo    *repository.BookingRepository
	withdrawalRepo *repository.WithdrawalRepository
	partnerRepo    *repository.PartnerRepository
	auditRepo      *repository.AuditLogRepository
	events         *EventPublisher
}

func NewRebuildService(
	db *gorm.DB,
	ledgerRepo *repository.LedgerRepository,
	bookingRepo *repository.BookingRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	partnerRepo *repository.PartnerRepository,
	auditRepo *repository.AuditLogRepository,
	events *EventPublisher,
) *RebuildService {
	return &RebuildService{
		db:             db,
		ledgerRepo:     ledgerRepo,
		bookingRepo:    bookingRepo,
		withdrawalRepo: withdrawalRepo,
		partnerRepo:    partnerRepo,
		auditRepo:      auditRepo,
		events:         events,
	}
}

// Rebuild reconciles one partner. Safe to re-run at any time: it always
// resets before replaying.
func (s *RebuildService) Rebuild(partnerID uint, actor string) (*RebuildResult, error) {
	if _, err := s.partnerRepo.GetByID(partnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	var result *RebuildResult
	err := retryCAS(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			led, err := s.ledgerRepo.GetOrCreate(tx, partnerID)
			if err != nil {
				return err
			}
			led.Zero()

			bookings, err := s.bookingRepo.CountedByPartner(tx, partnerID)
			if err != nil {
				return err
			}
			for i := range bookings {
				applyBookingTo(led, &bookings[i])
			}

			withdrawals, err := s.withdrawalRepo.AppliedByPartner(tx, partnerID)
			if err != nil {
				return err
			}
			var discrepancies []Discrepancy
			for i := range withdrawals {
				w := &withdrawals[i]
				if short := forceDebitBucket(led, w.AmountCents, w.Bucket); short > 0 {
					discrepancies = append(discrepancies, Discrepancy{
						PartnerID:      partnerID,
						WithdrawalID:   w.ID,
						OrderID:        w.OrderID,
						Bucket:         w.Bucket,
						AmountCents:    w.AmountCents,
						ShortfallCents: short,
					})
				}
				recordWithdrawal(led, w)
			}

			if err := s.ledgerRepo.SaveCAS(tx, led); err != nil {
				return err
			}
			entry := &models.LedgerEntry{
				PartnerID: partnerID,
				Kind:      domain.EntryKindRebuild,
				Note:      "rebuilt from source history",
			}
			if err := s.ledgerRepo.AddEntry(tx, entry); err != nil {
				return err
			}
			result = &RebuildResult{
				PartnerID:     partnerID,
				Bookings:      len(bookings),
				Withdrawals:   len(withdrawals),
				Discrepancies: discrepancies,
				Ledger:        led,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	meta, _ := json.Marshal(map[string]interface{}{
		"bookings":      result.Bookings,
		"withdrawals":   result.Withdrawals,
		"discrepancies": len(result.Discrepancies),
	})
	_ = s.auditRepo.Create(&models.AuditLog{
		Actor:      actor,
		Action:     "ledger.rebuild",
		Resource:   "partner_ledger",
		ResourceID: strconv.FormatUint(uint64(partnerID), 10),
		Metadata:   string(meta),
	})
	s.events.Publish(SubjectLedgerRebuilt, map[string]interface{}{
		"partner_id":    partnerID,
		"discrepancies": len(result.Discrepancies),
	})
	return result, nil
}

// RebuildAll reconciles every partner as an independent unit: one partner's
// failure is recorded in its result row and the sweep moves on, so a partial
// run repairs everything it reached and is safely re-runnable.
func (s *RebuildService) RebuildAll(actor string) ([]RebuildResult, error) {
	ids, err := s.partnerRepo.ListIDs()
	if err != nil {
		return nil, err
	}
	results := make([]RebuildResult, 0, len(ids))
	for _, id := range ids {
		res, err := s.Rebuild(id, actor)
		if err != nil {
			log.Printf("[rebuild] partner %d: %v", id, err)
			results = append(results, RebuildResult{PartnerID: id, Error: err.Error()})
			continue
		}
		results = append(results, *res)
	}
	return results, nil
}

// StartSweep runs the all-partner rebuild on a fixed interval. Returns a stop
// function. Interval <= 0 means the sweep is disabled and stop is a no-op.
func (s *RebuildService) StartSweep(interval time.Duration) func() {
	if interval <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				if _, err := s.RebuildAll("reconciliation-sweep"); err != nil {
					log.Printf("[rebuild] sweep: %v", err)
				}
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
