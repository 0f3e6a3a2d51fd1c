package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cncsignals/internal/domain"
	"cncsignals/internal/repository"
)

type usageFixture struct {
	*sessionFixture
	guests domain.GuestRepository
	usage  *UsageService
}

func newUsageFixture(t *testing.T) *usageFixture {
	t.Helper()

	base := newSessionFixture(t)
	f := &usageFixture{
		sessionFixture: base,
		guests:         repository.NewGuestRepository(base.store),
	}
	f.usage = NewUsageService(base.svc, f.guests, DefaultDailyLimit, base.clock.Now)
	return f
}

func (f *usageFixture) record(t *testing.T, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		require.NoError(t, f.usage.RecordUsage())
	}
}

func TestUsageService_GuestQuota(t *testing.T) {
	f := newUsageFixture(t)

	n, err := f.usage.CurrentUsage()
	require.NoError(t, err)
	assert.Zero(t, n)

	f.record(t, 3)

	n, err = f.usage.CurrentUsage()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	exhausted, err := f.usage.IsExhausted()
	require.NoError(t, err)
	assert.True(t, exhausted)
}

func TestUsageService_Authorize(t *testing.T) {
	f := newUsageFixture(t)

	require.NoError(t, f.usage.Authorize())
	f.record(t, 3)
	require.ErrorIs(t, f.usage.Authorize(), domain.ErrQuotaExceeded)

	f.clock.Advance(24 * time.Hour)
	require.NoError(t, f.usage.Authorize())
}

func TestUsageService_GuestCounterResetsNextDay(t *testing.T) {
	f := newUsageFixture(t)
	f.record(t, 3)

	f.clock.Advance(24 * time.Hour)

	n, err := f.usage.CurrentUsage()
	require.NoError(t, err)
	assert.Zero(t, n)

	exhausted, err := f.usage.IsExhausted()
	require.NoError(t, err)
	assert.False(t, exhausted)

	// The stale counter is rewritten in place, not just masked.
	counter, found, err := f.guests.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "2025-06-02", counter.Date)
	assert.Zero(t, counter.Count)
}

func TestUsageService_RegisteredQuota(t *testing.T) {
	f := newUsageFixture(t)
	f.register(t, "alice@example.com")

	f.record(t, 2)

	n, err := f.usage.CurrentUsage()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	exhausted, err := f.usage.IsExhausted()
	require.NoError(t, err)
	assert.False(t, exhausted)

	f.record(t, 1)
	exhausted, err = f.usage.IsExhausted()
	require.NoError(t, err)
	assert.True(t, exhausted)
}

func TestUsageService_GuestAndRegisteredCountersAreIsolated(t *testing.T) {
	f := newUsageFixture(t)

	// Burn the guest quota anonymously.
	f.record(t, 3)

	// Logging in does not inherit the guest counter.
	f.register(t, "alice@example.com")
	n, err := f.usage.CurrentUsage()
	require.NoError(t, err)
	assert.Zero(t, n)

	f.record(t, 1)
	require.NoError(t, f.svc.Logout())

	// Logging out does not leak the registered counter back.
	n, err = f.usage.CurrentUsage()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Logging back in finds the registered counter where it was left.
	_, err = f.svc.Login("alice@example.com", "secret123")
	require.NoError(t, err)
	n, err = f.usage.CurrentUsage()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUsageService_VipIsNeverExhausted(t *testing.T) {
	f := newUsageFixture(t)
	f.register(t, "alice@example.com")
	_, err := f.svc.UpgradeToVip()
	require.NoError(t, err)

	f.record(t, 10)

	n, err := f.usage.CurrentUsage()
	require.NoError(t, err)
	assert.Zero(t, n, "VIP usage is not charged")

	exhausted, err := f.usage.IsExhausted()
	require.NoError(t, err)
	assert.False(t, exhausted)
}

func TestUsageService_RegisteredCounterResetsLazily(t *testing.T) {
	f := newUsageFixture(t)
	f.register(t, "alice@example.com")
	f.record(t, 3)

	exhausted, err := f.usage.IsExhausted()
	require.NoError(t, err)
	require.True(t, exhausted)

	f.clock.Advance(24 * time.Hour)

	// The first read after midnight performs the reset.
	exhausted, err = f.usage.IsExhausted()
	require.NoError(t, err)
	assert.False(t, exhausted)

	row, _, err := f.users.GetByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Zero(t, row.FreeCreditsUsed)
	assert.Equal(t, "2025-06-02", row.LastResetDate)
}

func TestUsageService_CountersSurviveRestart(t *testing.T) {
	f := newUsageFixture(t)
	f.record(t, 2)

	// A fresh set of services over the same store sees the same counter.
	svc := f.restart()
	require.NoError(t, svc.Restore())
	usage := NewUsageService(svc, f.guests, DefaultDailyLimit, f.clock.Now)

	n, err := usage.CurrentUsage()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUsageService_LimitFallback(t *testing.T) {
	f := newSessionFixture(t)
	usage := NewUsageService(f.svc, repository.NewGuestRepository(f.store), 0, f.clock.Now)
	assert.Equal(t, DefaultDailyLimit, usage.limit)
}
