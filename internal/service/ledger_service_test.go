package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiketi/internal/domain"
	"tiketi/internal/models"
	"tiketi/internal/service"
)

// The worked settlement scenario: 5% rate, rate change to 10%, two bookings,
// one successful and one rejected fee withdrawal, then a rebuild that must
// reproduce the exact same balances.
func TestSettlementScenario(t *testing.T) {
	f := newFixture(t)
	p := f.createPartner(t, "mashujaa-bus")

	a := f.createBooking(t, p.ID, 1_000_000, 0, 5, time.Time{})
	led, err := f.ledgerSvc.ApplyBooking(a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), led.TotalRevenueCents)
	assert.Equal(t, int64(50_000), led.TotalServiceFeeCents)
	assert.Equal(t, int64(50_000), led.ServiceFeeCents)
	assert.Equal(t, int64(950_000), led.ReceivableCents)

	// Admin moves the rate to 10%; booking B captures it at creation.
	_, err = f.feeSvc.RecordRateChange(10, time.Now(), "admin@tiketi.local")
	require.NoError(t, err)

	b := f.createBooking(t, p.ID, 2_000_000, 200_000, 10, time.Time{})
	led, err = f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(230_000), led.TotalServiceFeeCents)
	assert.Equal(t, int64(230_000), led.ServiceFeeCents)
	assert.Equal(t, int64(2_570_000), led.ReceivableCents)

	led, _, err = f.ledgerSvc.Withdraw(p.ID, 50_000, domain.BucketFee, "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(180_000), led.ServiceFeeCents)
	assert.Equal(t, int64(50_000), led.WithdrawnFeeCents)

	_, _, err = f.ledgerSvc.Withdraw(p.ID, 200_000, domain.BucketFee, "admin")
	require.ErrorIs(t, err, service.ErrInsufficientBalance)

	// Balance untouched by the rejected withdrawal.
	led, err = f.ledgerSvc.Snapshot(p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(180_000), led.ServiceFeeCents)
	assert.Equal(t, int64(2_570_000), led.ReceivableCents)

	res, err := f.rebuildSvc.Rebuild(p.ID, "admin")
	require.NoError(t, err)
	assert.Empty(t, res.Discrepancies)
	assert.Equal(t, int64(180_000), res.Ledger.ServiceFeeCents)
	assert.Equal(t, int64(2_570_000), res.Ledger.ReceivableCents)
	sameLedgerState(t, led, res.Ledger)
}

func TestApplyBookingIdempotent(t *testing.T) {
	f := newFixture(t)
	p := f.createPartner(t, "pwani-shuttles")
	b := f.createBooking(t, p.ID, 500_000, 0, 5, time.Time{})

	first, err := f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)
	second, err := f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)
	sameLedgerState(t, first, second)
	assert.Equal(t, int64(500_000), second.TotalRevenueCents)
}

func TestApplyBookingNonCountedStatus(t *testing.T) {
	f := newFixture(t)
	p := f.createPartner(t, "night-rider")
	b := &models.Booking{
		PartnerID:   p.ID,
		Reference:   "bk-pending",
		AmountCents: 100_000,
		FeePercent:  5,
		Status:      domain.BookingStatusPending,
	}
	require.NoError(t, f.bookingRepo.Create(b))

	led, err := f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)
	assert.Zero(t, led.TotalRevenueCents)

	got, err := f.bookingRepo.GetByID(b.ID)
	require.NoError(t, err)
	assert.False(t, got.Counted)
}

func TestApplyBookingLazyLedgerInit(t *testing.T) {
	f := newFixture(t)
	p := f.createPartner(t, "lazy-init")

	// No ledger row yet: reads refuse to create one.
	_, err := f.ledgerSvc.Snapshot(p.ID)
	require.ErrorIs(t, err, service.ErrPartnerNotFound)

	b := f.createBooking(t, p.ID, 10_000, 0, 10, time.Time{})
	led, err := f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, led.PartnerID)
	assert.Equal(t, int64(1_000), led.ServiceFeeCents)
}

func TestConservation(t *testing.T) {
	f := newFixture(t)
	p := f.createPartner(t, "conservation")
	for _, bk := range []struct {
		amount, discount int64
		percent          float64
	}{
		{1_000_000, 0, 5},
		{2_000_000, 200_000, 10},
		{333_333, 33_333, 7.5},
	} {
		b := f.createBooking(t, p.ID, bk.amount, bk.discount, bk.percent, time.Time{})
		_, err := f.ledgerSvc.ApplyBooking(b.ID)
		require.NoError(t, err)
	}
	led, err := f.ledgerSvc.Snapshot(p.ID)
	require.NoError(t, err)
	// Before any withdrawals: revenue - discounts = fee + receivable.
	assert.Equal(t,
		led.TotalRevenueCents-led.TotalDiscountCents,
		led.TotalServiceFeeCents+led.ReceivableCents,
	)
	assert.GreaterOrEqual(t, led.ServiceFeeCents, int64(0))
	assert.GreaterOrEqual(t, led.ReceivableCents, int64(0))
}

func TestWithdrawReceivableInsufficient(t *testing.T) {
	f := newFixture(t)
	p := f.createPartner(t, "short-balance")
	b := f.createBooking(t, p.ID, 100_000, 0, 10, time.Time{})
	_, err := f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)

	// 90_000 receivable available.
	_, _, err = f.ledgerSvc.Withdraw(p.ID, 90_001, domain.BucketReceivable, "admin")
	require.ErrorIs(t, err, service.ErrInsufficientBalance)

	led, err := f.ledgerSvc.Snapshot(p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(90_000), led.ReceivableCents)
	assert.Zero(t, led.WithdrawnReceivableCents)

	led, _, err = f.ledgerSvc.Withdraw(p.ID, 90_000, domain.BucketReceivable, "admin")
	require.NoError(t, err)
	assert.Zero(t, led.ReceivableCents)
	assert.Equal(t, int64(90_000), led.WithdrawnReceivableCents)
}

// A refused inline withdrawal must not linger as an approved record that a
// later ApplyWithdrawal could debit once the balance has grown.
func TestWithdrawRefusedRejectsRecord(t *testing.T) {
	f := newFixture(t)
	p := f.createPartner(t, "refused-withdrawal")
	b := f.createBooking(t, p.ID, 100_000, 0, 10, time.Time{})
	_, err := f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)

	// 10_000 fee available.
	_, w, err := f.ledgerSvc.Withdraw(p.ID, 50_000, domain.BucketFee, "admin")
	require.ErrorIs(t, err, service.ErrInsufficientBalance)
	require.NotNil(t, w)

	got, err := f.withdrawalRepo.GetByID(w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusRejected, got.Status)
	assert.False(t, got.Applied)

	// Grow the balance past the refused amount; the record stays dead.
	b = f.createBooking(t, p.ID, 1_000_000, 0, 10, time.Time{})
	_, err = f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)
	_, err = f.ledgerSvc.ApplyWithdrawal(w.ID)
	require.ErrorIs(t, err, service.ErrWithdrawalNotApproved)

	led, err := f.ledgerSvc.Snapshot(p.ID)
	require.NoError(t, err)
	assert.Zero(t, led.WithdrawnFeeCents)
	assert.Equal(t, int64(110_000), led.ServiceFeeCents)
}

func TestApplyWithdrawalIdempotent(t *testing.T) {
	f := newFixture(t)
	p := f.createPartner(t, "repeat-withdrawal")
	b := f.createBooking(t, p.ID, 200_000, 0, 10, time.Time{})
	_, err := f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)

	_, w, err := f.ledgerSvc.Withdraw(p.ID, 5_000, domain.BucketFee, "admin")
	require.NoError(t, err)

	// Re-applying the same withdrawal id must not double-debit.
	led, err := f.ledgerSvc.ApplyWithdrawal(w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15_000), led.ServiceFeeCents)
	assert.Equal(t, int64(5_000), led.WithdrawnFeeCents)
}

func TestApplyWithdrawalRequiresApproval(t *testing.T) {
	f := newFixture(t)
	p := f.createPartner(t, "pending-withdrawal")
	w := &models.Withdrawal{
		PartnerID:   p.ID,
		OrderID:     "wd-pending",
		AmountCents: 1_000,
		Bucket:      domain.BucketFee,
		Status:      domain.WithdrawalStatusPending,
	}
	require.NoError(t, f.withdrawalRepo.Create(w))
	_, err := f.ledgerSvc.ApplyWithdrawal(w.ID)
	require.ErrorIs(t, err, service.ErrWithdrawalNotApproved)
}

func TestAdjust(t *testing.T) {
	f := newFixture(t)
	p := f.createPartner(t, "adjustments")
	b := f.createBooking(t, p.ID, 100_000, 0, 10, time.Time{})
	_, err := f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)

	// Fee undercounted by 1_000: raising it comes out of receivable.
	led, err := f.ledgerSvc.Adjust(p.ID, domain.BucketFee, 1_000, "fee undercount on manual import", "admin", false)
	require.NoError(t, err)
	assert.Equal(t, int64(11_000), led.ServiceFeeCents)
	assert.Equal(t, int64(89_000), led.ReceivableCents)

	// Negative correction flows through the withdrawn counter.
	led, err = f.ledgerSvc.Adjust(p.ID, domain.BucketFee, -4_000, "fee waiver", "admin", false)
	require.NoError(t, err)
	assert.Equal(t, int64(7_000), led.ServiceFeeCents)
	assert.Equal(t, int64(4_000), led.WithdrawnFeeCents)

	// Would go negative: rejected without the override...
	_, err = f.ledgerSvc.Adjust(p.ID, domain.BucketFee, -8_000, "too far", "admin", false)
	require.ErrorIs(t, err, service.ErrInvalidAdjustment)

	// ...but allowed with it.
	led, err = f.ledgerSvc.Adjust(p.ID, domain.BucketFee, -8_000, "known prior error", "admin", true)
	require.NoError(t, err)
	assert.Equal(t, int64(-1_000), led.ServiceFeeCents)

	// The audit trail records actor and reason.
	logs, err := f.auditRepo.ListRecent(10)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, "ledger.adjust", logs[0].Action)
	assert.Equal(t, "admin", logs[0].Actor)
	assert.Contains(t, logs[0].Metadata, "known prior error")
}

func TestAdjustUnknownPartner(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledgerSvc.Adjust(9999, domain.BucketFee, 100, "nope", "admin", false)
	require.ErrorIs(t, err, service.ErrPartnerNotFound)
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	p := f.createPartner(t, "reset-me")
	b := f.createBooking(t, p.ID, 50_000, 0, 10, time.Time{})
	_, err := f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)

	led, err := f.ledgerSvc.Reset(p.ID, "admin")
	require.NoError(t, err)
	assert.Zero(t, led.TotalRevenueCents)
	assert.Zero(t, led.ServiceFeeCents)
	assert.Zero(t, led.ReceivableCents)
	assert.Nil(t, led.LastBookingID)

	_, err = f.ledgerSvc.Reset(9999, "admin")
	require.ErrorIs(t, err, service.ErrPartnerNotFound)
}

func TestRateImmutabilityForHistory(t *testing.T) {
	f := newFixture(t)
	p := f.createPartner(t, "immutable-history")
	b := f.createBooking(t, p.ID, 1_000_000, 0, 5, time.Time{})
	_, err := f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)

	before, err := f.ledgerSvc.Snapshot(p.ID)
	require.NoError(t, err)

	_, err = f.feeSvc.RecordRateChange(50, time.Now().Add(-time.Hour), "admin")
	require.NoError(t, err)

	// A rebuild replays the stored 5%, not the current 50%.
	res, err := f.rebuildSvc.Rebuild(p.ID, "admin")
	require.NoError(t, err)
	sameLedgerState(t, before, res.Ledger)
	assert.Equal(t, int64(50_000), res.Ledger.TotalServiceFeeCents)
}

func TestActivityFeed(t *testing.T) {
	f := newFixture(t)
	p := f.createPartner(t, "activity")
	b := f.createBooking(t, p.ID, 100_000, 0, 10, time.Time{})
	_, err := f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)
	_, _, err = f.ledgerSvc.Withdraw(p.ID, 2_000, domain.BucketFee, "admin")
	require.NoError(t, err)

	entries, err := f.ledgerSvc.Activity(p.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, domain.EntryKindWithdrawal, entries[0].Kind)
	assert.Equal(t, int64(-2_000), entries[0].FeeDeltaCents)
	assert.Equal(t, domain.EntryKindBooking, entries[1].Kind)
	assert.Equal(t, int64(10_000), entries[1].FeeDeltaCents)
	assert.Equal(t, int64(90_000), entries[1].ReceivableDeltaCents)

	_, err = f.ledgerSvc.Activity(9999, 10)
	require.ErrorIs(t, err, service.ErrPartnerNotFound)
}
