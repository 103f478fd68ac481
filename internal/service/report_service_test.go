package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiketi/internal/domain"
)

func TestDebtReportEmpty(t *testing.T) {
	f := newFixture(t)
	report, err := f.reportSvc.GenerateDebtReport()
	require.NoError(t, err)
	assert.Empty(t, report.Partners)
	assert.Zero(t, report.TotalOutstandingCents)
	assert.Zero(t, report.TotalPaidCents)
	assert.Zero(t, report.DueCount)
	assert.Zero(t, report.SettledCount)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestDebtReportMixedStatuses(t *testing.T) {
	f := newFixture(t)

	// Partner with an outstanding fee.
	due := f.createPartner(t, "due-partner")
	b := f.createBooking(t, due.ID, 1_000_000, 0, 5, time.Time{})
	_, err := f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)

	// Partner that has settled in full.
	settled := f.createPartner(t, "settled-partner")
	b = f.createBooking(t, settled.ID, 200_000, 0, 10, time.Time{})
	_, err = f.ledgerSvc.ApplyBooking(b.ID)
	require.NoError(t, err)
	_, _, err = f.ledgerSvc.Withdraw(settled.ID, 20_000, domain.BucketFee, "admin")
	require.NoError(t, err)

	report, err := f.reportSvc.GenerateDebtReport()
	require.NoError(t, err)
	require.Len(t, report.Partners, 2)
	assert.Equal(t, 1, report.DueCount)
	assert.Equal(t, 1, report.SettledCount)
	assert.Equal(t, int64(50_000), report.TotalOutstandingCents)
	assert.Equal(t, int64(20_000), report.TotalPaidCents)

	byID := map[uint]int{}
	for i, row := range report.Partners {
		byID[row.PartnerID] = i
	}
	dueRow := report.Partners[byID[due.ID]]
	assert.Equal(t, "due-partner", dueRow.PartnerName)
	assert.Equal(t, domain.FeeStatusDue, dueRow.FeeStatus)
	assert.Equal(t, int64(50_000), dueRow.FeeOutstandingCents)

	settledRow := report.Partners[byID[settled.ID]]
	assert.Equal(t, domain.FeeStatusSettled, settledRow.FeeStatus)
	assert.Zero(t, settledRow.FeeOutstandingCents)
	assert.Equal(t, int64(20_000), settledRow.FeePaidCents)
}
