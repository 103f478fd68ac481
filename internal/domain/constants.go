package domain

const (
	RoleAdmin   = "ADMIN"
	RolePartner = "PARTNER"
)

// Withdrawal buckets. FEE is the platform collecting its commission;
// RECEIVABLE is a payout of partner earnings.
const (
	BucketFee        = "FEE"
	BucketReceivable = "RECEIVABLE"
)

const (
	BookingStatusPending   = "PENDING"
	BookingStatusPaid      = "PAID"
	BookingStatusCompleted = "COMPLETED"
	BookingStatusCancelled = "CANCELLED"
)

const (
	WithdrawalStatusPending  = "PENDING"
	WithdrawalStatusApproved = "APPROVED"
	WithdrawalStatusRejected = "REJECTED"
)

// Ledger activity entry kinds.
const (
	EntryKindBooking    = "BOOKING"
	EntryKindWithdrawal = "WITHDRAWAL"
	EntryKindAdjustment = "ADJUSTMENT"
	EntryKindReset      = "RESET"
	EntryKindRebuild    = "REBUILD"
)

const (
	FeeStatusSettled = "settled"
	FeeStatusDue     = "due"
)

const (
	SettingDefaultFeePercent = "default_fee_percent"
)

// CountedBookingStatuses are the terminal statuses folded into ledger totals.
var CountedBookingStatuses = []string{BookingStatusPaid, BookingStatusCompleted}

// IsCountedStatus reports whether a booking in this status is counted by the ledger.
func IsCountedStatus(status string) bool {
	for _, s := range CountedBookingStatuses {
		if s == status {
			return true
		}
	}
	return false
}
