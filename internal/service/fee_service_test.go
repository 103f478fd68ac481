package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiketi/internal/domain"
	"tiketi/internal/service"
)

func TestResolveRateDefaultFallback(t *testing.T) {
	f := newFixture(t)

	// Empty history, no setting: zero.
	rate, err := f.feeSvc.ResolveRate(time.Now())
	require.NoError(t, err)
	assert.Zero(t, rate)

	require.NoError(t, f.settingRepo.Set(domain.SettingDefaultFeePercent, "7.5"))
	rate, err = f.feeSvc.ResolveRate(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 7.5, rate)
}

func TestResolveRateStepFunction(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.settingRepo.Set(domain.SettingDefaultFeePercent, "5"))

	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := f.feeSvc.RecordRateChange(8, jan, "admin")
	require.NoError(t, err)
	_, err = f.feeSvc.RecordRateChange(12, mar, "admin")
	require.NoError(t, err)

	for _, tc := range []struct {
		asOf time.Time
		want float64
	}{
		{jan.Add(-time.Second), 5},  // before first change: default
		{jan, 8},                    // boundary is inclusive
		{jan.AddDate(0, 1, 0), 8},   // between changes
		{mar, 12},                   // second boundary
		{mar.AddDate(1, 0, 0), 12},  // far future
	} {
		rate, err := f.feeSvc.ResolveRate(tc.asOf)
		require.NoError(t, err)
		assert.Equal(t, tc.want, rate, "as of %s", tc.asOf)
	}
}

// Two changes effective at the same instant: the one recorded later wins.
func TestResolveRateSameInstantTieBreak(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := f.feeSvc.RecordRateChange(8, at, "admin")
	require.NoError(t, err)
	_, err = f.feeSvc.RecordRateChange(9, at, "admin")
	require.NoError(t, err)

	rate, err := f.feeSvc.ResolveRate(at)
	require.NoError(t, err)
	assert.Equal(t, 9.0, rate)
}

func TestRecordRateChangeValidation(t *testing.T) {
	f := newFixture(t)
	for _, bad := range []float64{-0.1, 100.1, 250} {
		_, err := f.feeSvc.RecordRateChange(bad, time.Now(), "admin")
		require.ErrorIs(t, err, service.ErrInvalidRate, "percent %v", bad)
	}
	// Bounds themselves are legal.
	_, err := f.feeSvc.RecordRateChange(0, time.Now(), "admin")
	require.NoError(t, err)
	_, err = f.feeSvc.RecordRateChange(100, time.Now(), "admin")
	require.NoError(t, err)
}

func TestRecordRateChangeCapturesOldPercent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.settingRepo.Set(domain.SettingDefaultFeePercent, "5"))

	fc, err := f.feeSvc.RecordRateChange(10, time.Now(), "admin")
	require.NoError(t, err)
	assert.Equal(t, 5.0, fc.OldPercent)
	assert.Equal(t, 10.0, fc.NewPercent)
	assert.Equal(t, "admin", fc.UpdatedBy)

	fc, err = f.feeSvc.RecordRateChange(15, time.Now(), "admin")
	require.NoError(t, err)
	assert.Equal(t, 10.0, fc.OldPercent)

	history, err := f.feeSvc.History()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 10.0, history[0].NewPercent)
	assert.Equal(t, 15.0, history[1].NewPercent)
}
