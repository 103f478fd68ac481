package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"tiketi/internal/domain"
	"tiketi/internal/models"
	"tiketi/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance for withdrawal")
	ErrInvalidAdjustment     = errors.New("adjustment would drive balance negative")
	ErrInvalidBucket         = errors.New("unknown balance bucket")
	ErrPartnerNotFound       = errors.New("partner not found")
	ErrWithdrawalNotApproved = errors.New("withdrawal is not approved")
	ErrInvalidAmount         = errors.New("amount must be positive")
)

// casRetries bounds the internal retry loop on version conflicts. Contention
// is per-partner and short-lived, so a handful of attempts is plenty; the
// caller never sees the conflict.
const casRetries = 5

// LedgerService applies booking and withdrawal events to partner ledgers.
// Every mutation is a read-modify-write inside one transaction, guarded by
// the ledger's version column, with the source record's idempotency flag
// stamped in the same transaction: either everything lands or nothing does.
type LedgerService struct {
	db             *gorm.DB
	ledgerRepo     *repository.LedgerRepository
	bookingRepo    *repository.BookingRepository
	withdrawalRepo *repository.WithdrawalRepository
	partnerRepo    *repository.PartnerRepository
	auditRepo      *repository.AuditLogRepository
	events         *EventPublisher
}

func NewLedgerService(
	db *gorm.DB,
	ledgerRepo *repository.LedgerRepository,
	bookingRepo *repository.BookingRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	partnerRepo *repository.PartnerRepository,
	auditRepo *repository.AuditLogRepository,
	events *EventPublisher,
) *LedgerService {
	return &LedgerService{
		db:             db,
		ledgerRepo:     ledgerRepo,
		bookingRepo:    bookingRepo,
		withdrawalRepo: withdrawalRepo,
		partnerRepo:    partnerRepo,
		auditRepo:      auditRepo,
		events:         events,
	}
}

// Snapshot returns the current ledger for a partner. Reads never create
// state: an unknown partner is ErrPartnerNotFound, not a lazy zero row.
func (s *LedgerService) Snapshot(partnerID uint) (*models.PartnerLedger, error) {
	l, err := s.ledgerRepo.GetByPartnerID(partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *LedgerService) List() ([]models.PartnerLedger, error) {
	return s.ledgerRepo.List()
}

// Activity returns the recent applied events for audit display.
func (s *LedgerService) Activity(partnerID uint, limit int) ([]models.LedgerEntry, error) {
	if _, err := s.Snapshot(partnerID); err != nil {
		return nil, err
	}
	return s.ledgerRepo.Entries(partnerID, limit)
}

// ApplyBooking folds one finalized booking into its partner's ledger.
// Applying the same booking twice is a no-op returning the current snapshot,
// as is a booking whose status isn't in the counted set.
func (s *LedgerService) ApplyBooking(bookingID uint) (*models.PartnerLedger, error) {
	var out *models.PartnerLedger
	var b *models.Booking
	var applied bool
	err := retryCAS(func() error {
		applied = false
		return s.db.Transaction(func(tx *gorm.DB) error {
			var err error
			b, err = s.bookingRepo.GetByIDTx(tx, bookingID)
			if err != nil {
				return err
			}
			led, err := s.ledgerRepo.GetOrCreate(tx, b.PartnerID)
			if err != nil {
				return err
			}
			if b.Counted || !domain.IsCountedStatus(b.Status) {
				out = led
				return nil
			}
			fee := applyBookingTo(led, b)
			if err := s.ledgerRepo.SaveCAS(tx, led); err != nil {
				return err
			}
			if err := s.bookingRepo.MarkCounted(tx, b); err != nil {
				return err
			}
			entry := &models.LedgerEntry{
				PartnerID:            b.PartnerID,
				Kind:                 domain.EntryKindBooking,
				FeeDeltaCents:        fee,
				ReceivableDeltaCents: b.NetCents() - fee,
				Reference:            fmt.Sprintf("booking:%d", b.ID),
			}
			if err := s.ledgerRepo.AddEntry(tx, entry); err != nil {
				return err
			}
			out = led
			applied = true
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if applied {
		s.events.Publish(SubjectBookingApplied, map[string]interface{}{
			"partner_id":     b.PartnerID,
			"booking_id":     b.ID,
			"amount_cents":   b.AmountCents,
			"discount_cents": b.DiscountCents,
			"fee_percent":    b.FeePercent,
		})
	}
	return out, nil
}

// ApplyWithdrawal debits the ledger for an approved withdrawal record. The
// sufficiency check and the decrement happen inside the same guarded
// transaction, so concurrent withdrawals on one partner can't both pass on
// the same balance. Re-applying an already-applied withdrawal is a no-op.
func (s *LedgerService) ApplyWithdrawal(withdrawalID uint) (*models.PartnerLedger, error) {
	var out *models.PartnerLedger
	var w *models.Withdrawal
	var applied bool
	err := retryCAS(func() error {
		applied = false
		return s.db.Transaction(func(tx *gorm.DB) error {
			var err error
			w, err = s.withdrawalRepo.GetByIDTx(tx, withdrawalID)
			if err != nil {
				return err
			}
			if w.Status != domain.WithdrawalStatusApproved {
				return ErrWithdrawalNotApproved
			}
			led, err := s.ledgerRepo.GetOrCreate(tx, w.PartnerID)
			if err != nil {
				return err
			}
			if w.Applied {
				out = led
				return nil
			}
			if err := debitBucket(led, w.AmountCents, w.Bucket); err != nil {
				return err
			}
			recordWithdrawal(led, w)
			if err := s.ledgerRepo.SaveCAS(tx, led); err != nil {
				return err
			}
			if err := s.withdrawalRepo.MarkApplied(tx, w); err != nil {
				return err
			}
			entry := &models.LedgerEntry{
				PartnerID: w.PartnerID,
				Kind:      domain.EntryKindWithdrawal,
				Reference: w.OrderID,
			}
			if w.Bucket == domain.BucketFee {
				entry.FeeDeltaCents = -w.AmountCents
			} else {
				entry.ReceivableDeltaCents = -w.AmountCents
			}
			if err := s.ledgerRepo.AddEntry(tx, entry); err != nil {
				return err
			}
			out = led
			applied = true
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if applied {
		s.events.Publish(SubjectWithdrawalApplied, withdrawalEvent(w))
	}
	return out, nil
}

// Withdraw creates an approved withdrawal inline and applies it in one step.
// This is the direct form of the applier for callers that don't go through
// the pending/approve workflow. A refused debit rejects the record, so a
// failed withdrawal can never be applied later by id.
func (s *LedgerService) Withdraw(partnerID uint, amountCents int64, bucket, actor string) (*models.PartnerLedger, *models.Withdrawal, error) {
	if amountCents <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	if bucket != domain.BucketFee && bucket != domain.BucketReceivable {
		return nil, nil, ErrInvalidBucket
	}
	if _, err := s.partnerRepo.GetByID(partnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPartnerNotFound
		}
		return nil, nil, err
	}
	now := time.Now()
	w := &models.Withdrawal{
		PartnerID:   partnerID,
		OrderID:     fmt.Sprintf("wd-%s", uuid.New().String()),
		AmountCents: amountCents,
		Bucket:      bucket,
		Status:      domain.WithdrawalStatusApproved,
		DecidedBy:   actor,
		DecidedAt:   &now,
	}
	if err := s.withdrawalRepo.Create(w); err != nil {
		return nil, nil, err
	}
	led, err := s.ApplyWithdrawal(w.ID)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			_ = s.withdrawalRepo.Revert(w, domain.WithdrawalStatusRejected, actor)
		}
		return nil, w, err
	}
	return led, w, nil
}

// Adjust applies an operator correction directly to one balance and its
// paired lifetime counter, bypassing booking/withdrawal derivation. Positive
// deltas raise the paired total counter; negative deltas raise the paired
// withdrawn counter, so counters stay monotonic and the balance equations
// keep holding. A rebuild later recomputes purely from source events and
// discards adjustments, which is exactly what an authoritative repair wants.
func (s *LedgerService) Adjust(partnerID uint, bucket string, deltaCents int64, reason, actor string, allowNegative bool) (*models.PartnerLedger, error) {
	if bucket != domain.BucketFee && bucket != domain.BucketReceivable {
		return nil, ErrInvalidBucket
	}
	if _, err := s.partnerRepo.GetByID(partnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	var out *models.PartnerLedger
	err := retryCAS(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			led, err := s.ledgerRepo.GetOrCreate(tx, partnerID)
			if err != nil {
				return err
			}
			feeBefore, recvBefore := led.ServiceFeeCents, led.ReceivableCents
			switch bucket {
			case domain.BucketFee:
				if deltaCents >= 0 {
					led.TotalServiceFeeCents += deltaCents
				} else {
					led.WithdrawnFeeCents += -deltaCents
				}
			case domain.BucketReceivable:
				if deltaCents >= 0 {
					led.TotalRevenueCents += deltaCents
				} else {
					led.WithdrawnReceivableCents += -deltaCents
				}
			}
			led.Recompute()
			if (led.ServiceFeeCents < 0 || led.ReceivableCents < 0) && !allowNegative {
				return ErrInvalidAdjustment
			}
			if err := s.ledgerRepo.SaveCAS(tx, led); err != nil {
				return err
			}
			entry := &models.LedgerEntry{
				PartnerID:            partnerID,
				Kind:                 domain.EntryKindAdjustment,
				FeeDeltaCents:        led.ServiceFeeCents - feeBefore,
				ReceivableDeltaCents: led.ReceivableCents - recvBefore,
				Reference:            fmt.Sprintf("adj-%s", uuid.New().String()[:8]),
				Note:                 reason,
			}
			if err := s.ledgerRepo.AddEntry(tx, entry); err != nil {
				return err
			}
			out = led
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	meta, _ := json.Marshal(map[string]interface{}{
		"bucket":         bucket,
		"delta_cents":    deltaCents,
		"reason":         reason,
		"allow_negative": allowNegative,
	})
	_ = s.auditRepo.Create(&models.AuditLog{
		Actor:      actor,
		Action:     "ledger.adjust",
		Resource:   "partner_ledger",
		ResourceID: strconv.FormatUint(uint64(partnerID), 10),
		Metadata:   string(meta),
	})
	s.events.Publish(SubjectAdjustmentApplied, map[string]interface{}{
		"partner_id":  partnerID,
		"bucket":      bucket,
		"delta_cents": deltaCents,
	})
	return out, nil
}

// Reset zeros all counters and balances, preserving the partner identity.
// Counted flags on source records are untouched; a rebuild re-counts them.
func (s *LedgerService) Reset(partnerID uint, actor string) (*models.PartnerLedger, error) {
	var out *models.PartnerLedger
	err := retryCAS(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			var led models.PartnerLedger
			if err := tx.Where("partner_id = ?", partnerID).First(&led).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrPartnerNotFound
				}
				return err
			}
			led.Zero()
			if err := s.ledgerRepo.SaveCAS(tx, &led); err != nil {
				return err
			}
			entry := &models.LedgerEntry{
				PartnerID: partnerID,
				Kind:      domain.EntryKindReset,
				Note:      "ledger reset by " + actor,
			}
			if err := s.ledgerRepo.AddEntry(tx, entry); err != nil {
				return err
			}
			out = &led
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	_ = s.auditRepo.Create(&models.AuditLog{
		Actor:      actor,
		Action:     "ledger.reset",
		Resource:   "partner_ledger",
		ResourceID: strconv.FormatUint(uint64(partnerID), 10),
	})
	s.events.Publish(SubjectLedgerReset, map[string]interface{}{"partner_id": partnerID})
	return out, nil
}

// retryCAS runs fn until it succeeds or exhausts the bounded retry budget.
// Only same-partner races are retryable; real errors surface immediately.
func retryCAS(fn func() error) error {
	var err error
	for i := 0; i < casRetries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
	}
	return err
}

func retryable(err error) bool {
	return errors.Is(err, repository.ErrVersionConflict) ||
		errors.Is(err, repository.ErrAlreadyCounted) ||
		errors.Is(err, repository.ErrAlreadyApplied)
}

func withdrawalEvent(w *models.Withdrawal) map[string]interface{} {
	return map[string]interface{}{
		"partner_id":   w.PartnerID,
		"order_id":     w.OrderID,
		"amount_cents": w.AmountCents,
		"bucket":       w.Bucket,
	}
}
