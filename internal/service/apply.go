package service

import (
	"tiketi/internal/domain"
	"tiketi/internal/models"
	"tiketi/pkg/money"
)

// The functions here are the single place booking and withdrawal deltas are
// computed. Both the live appliers and the rebuild replay go through them,
// which is what makes a rebuilt ledger bit-for-bit equal to one accumulated
// incrementally.

// applyBookingTo folds one counted booking into the ledger and returns the
// fee charged. The fee always comes from the percent stored on the booking,
// never from the current rate history.
func applyBookingTo(l *models.PartnerLedger, b *models.Booking) int64 {
	fee := money.Fee(b.NetCents(), b.FeePercent)
	l.TotalRevenueCents += b.AmountCents
	l.TotalDiscountCents += b.DiscountCents
	l.TotalServiceFeeCents += fee
	l.Recompute()
	id := b.ID
	at := b.CreatedAt
	l.LastBookingID = &id
	l.LastBookingAt = &at
	return fee
}

// debitBucket checks sufficiency and applies a withdrawal debit. The balance
// is recomputed from the lifetime counters, so the invariant equations hold
// after every debit.
func debitBucket(l *models.PartnerLedger, amountCents int64, bucket string) error {
	switch bucket {
	case domain.BucketFee:
		if amountCents > l.ServiceFeeCents {
			return ErrInsufficientBalance
		}
		l.WithdrawnFeeCents += amountCents
	case domain.BucketReceivable:
		if amountCents > l.ReceivableCents {
			return ErrInsufficientBalance
		}
		l.WithdrawnReceivableCents += amountCents
	default:
		return ErrInvalidBucket
	}
	l.Recompute()
	return nil
}

// forceDebitBucket applies the debit without the sufficiency check and
// returns the shortfall (how far past the available balance it went), zero if
// it was covered. Rebuild uses this: a replayed withdrawal that no longer
// passes sufficiency is a discrepancy to report, not a reason to abort, and
// the debit must still land so totals match the lifetime counters.
func forceDebitBucket(l *models.PartnerLedger, amountCents int64, bucket string) int64 {
	var short int64
	switch bucket {
	case domain.BucketFee:
		if amountCents > l.ServiceFeeCents {
			short = amountCents - l.ServiceFeeCents
		}
		l.WithdrawnFeeCents += amountCents
	case domain.BucketReceivable:
		if amountCents > l.ReceivableCents {
			short = amountCents - l.ReceivableCents
		}
		l.WithdrawnReceivableCents += amountCents
	}
	l.Recompute()
	return short
}

func recordWithdrawal(l *models.PartnerLedger, w *models.Withdrawal) {
	id := w.ID
	at := w.CreatedAt
	l.LastWithdrawalID = &id
	l.LastWithdrawalAt = &at
}
