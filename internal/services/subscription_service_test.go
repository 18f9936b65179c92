package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/errors"
	"github.com/pratik-mahalle/tasknest/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionService_Upgrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.freeAccount("acc-1")

	_, err := f.quota.RecordUsage(ctx, "acc-1")
	require.NoError(t, err)
	require.True(t, f.scheduler.IsArmed("acc-1"))

	f.clock.Advance(time.Hour)
	a, err := f.subs.Upgrade(ctx, "acc-1", account.TierBasic, "pay_1")
	require.NoError(t, err)

	now := f.clock.Now()
	assert.Equal(t, account.TierBasic, a.Tier)
	assert.Equal(t, account.SubscriptionActive, a.SubscriptionStatus)
	assert.Equal(t, "pay_1", a.PaymentReference)
	assert.True(t, a.SubscriptionStartDate.Equal(now))
	assert.True(t, a.SubscriptionEndDate.Equal(now.Add(30*24*time.Hour)))
	assert.Equal(t, 0, a.DailyUsageCount)
	assert.Equal(t, 0, a.MonthlyUsageCount)
	assert.True(t, a.DailyUsageResetAt.Equal(now))
	assert.False(t, f.scheduler.IsArmed("acc-1"), "upgrade cancels the free reset timer")
}

func TestSubscriptionService_UpgradeRejectsFree(t *testing.T) {
	f := newFixture(t)
	f.freeAccount("acc-1")

	_, err := f.subs.Upgrade(context.Background(), "acc-1", account.TierFree, "pay_1")

	assert.ErrorIs(t, err, account.ErrNotPaidTier)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Equal(t, 0, f.repo.CallCount("Update"))
}

func TestSubscriptionService_UpgradeUnknownAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.subs.Upgrade(context.Background(), "missing", account.TierPro, "pay_1")
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestSubscriptionService_CheckAndExpire(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.paidAccount("acc-1", account.TierPro, testutil.Epoch.Add(-24*time.Hour))
	f.modify("acc-1", func(a *account.Account) {
		a.DailyUsageCount = 12
		a.DailyUsageResetAt = testutil.Epoch.Add(-time.Hour)
		a.MonthlyUsageCount = 30
		a.MonthlyUsageResetAt = testutil.TimePtr(account.StartOfMonth(testutil.Epoch))
	})

	expired, err := f.subs.CheckAndExpire(ctx, "acc-1", testutil.Epoch)
	require.NoError(t, err)
	assert.True(t, expired)

	a := f.repo.Snapshot("acc-1")
	assert.Equal(t, account.TierFree, a.Tier)
	assert.Equal(t, account.SubscriptionNone, a.SubscriptionStatus)
	assert.Nil(t, a.SubscriptionEndDate)
	assert.Empty(t, a.PaymentReference)
	assert.Equal(t, 70, a.FrozenCredits)
	assert.Equal(t, 3, a.DailyUsageCount)
	assert.True(t, f.scheduler.IsArmed("acc-1"))

	t.Run("second call is a no-op", func(t *testing.T) {
		expired, err := f.subs.CheckAndExpire(ctx, "acc-1", testutil.Epoch.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, expired)
		assert.Equal(t, 70, f.repo.Snapshot("acc-1").FrozenCredits)
		assert.Equal(t, 1, f.repo.CallCount("Update"))
	})
}

func TestSubscriptionService_CheckAndExpireActive(t *testing.T) {
	f := newFixture(t)
	f.paidAccount("acc-1", account.TierBasic, testutil.Epoch.Add(time.Second))

	expired, err := f.subs.CheckAndExpire(context.Background(), "acc-1", testutil.Epoch)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, account.TierBasic, f.repo.Snapshot("acc-1").Tier)

	expired, err = f.subs.CheckAndExpire(context.Background(), "acc-1", testutil.Epoch.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, expired, "subscription ends at its end date")
}

func TestSubscriptionService_BasicExpiryFreezesNothing(t *testing.T) {
	f := newFixture(t)
	f.paidAccount("acc-1", account.TierBasic, testutil.Epoch.Add(-time.Minute))

	_, err := f.subs.CheckAndExpire(context.Background(), "acc-1", testutil.Epoch)
	require.NoError(t, err)

	a := f.repo.Snapshot("acc-1")
	assert.Equal(t, account.TierFree, a.Tier)
	assert.Equal(t, 0, a.FrozenCredits)
	assert.False(t, f.scheduler.IsArmed("acc-1"), "no usage, no timer")
}

func TestSubscriptionService_ProRoundTripRestoresFrozenCredits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.freeAccount("acc-1")

	_, err := f.subs.Upgrade(ctx, "acc-1", account.TierPro, "pay_1")
	require.NoError(t, err)
	for i := 0; i < 30; i++ {
		_, err := f.quota.RecordUsage(ctx, "acc-1")
		require.NoError(t, err)
	}

	down, err := f.subs.Downgrade(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, account.TierFree, down.Tier)
	assert.Equal(t, 70, down.FrozenCredits)

	up, err := f.subs.Upgrade(ctx, "acc-1", account.TierPro, "pay_2")
	require.NoError(t, err)
	assert.Equal(t, 70, up.RestoredCredits)
	assert.Equal(t, 0, up.FrozenCredits)

	status, err := f.subs.GetStatus(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 170, status.MonthlyLimit)
	assert.Equal(t, account.Unlimited, status.DailyLimit)
}

func TestSubscriptionService_RepeatedProCyclesKeepFreezeWithinPool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.freeAccount("acc-1")

	for i, ref := range []string{"pay_1", "pay_2", "pay_3"} {
		up, err := f.subs.Upgrade(ctx, "acc-1", account.TierPro, ref)
		require.NoError(t, err)
		assert.Equal(t, 0, up.FrozenCredits, "cycle %d", i+1)

		down, err := f.subs.Downgrade(ctx, "acc-1")
		require.NoError(t, err)
		assert.Equal(t, 100, down.FrozenCredits, "cycle %d", i+1)
		assert.Equal(t, 0, down.RestoredCredits, "cycle %d", i+1)
	}
}

func TestSubscriptionService_BasicUpgradeClearsFrozenCredits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.freeAccount("acc-1")
	f.modify("acc-1", func(a *account.Account) { a.FrozenCredits = 40 })

	a, err := f.subs.Upgrade(ctx, "acc-1", account.TierBasic, "pay_1")
	require.NoError(t, err)
	assert.Equal(t, account.TierBasic, a.Tier)
	assert.Equal(t, 0, a.FrozenCredits)
	assert.Equal(t, 0, a.RestoredCredits)

	f.clock.Advance(31 * 24 * time.Hour)
	_, err = f.subs.GetEffectiveAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 0, f.repo.Snapshot("acc-1").FrozenCredits)
}

func TestSubscriptionService_DowngradeFreeIsNoop(t *testing.T) {
	f := newFixture(t)
	f.freeAccount("acc-1")

	a, err := f.subs.Downgrade(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, account.TierFree, a.Tier)
	assert.Equal(t, 0, f.repo.CallCount("Update"))
}

func TestSubscriptionService_GetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("active basic", func(t *testing.T) {
		f.paidAccount("basic", account.TierBasic, testutil.Epoch.Add(36*time.Hour))

		s, err := f.subs.GetStatus(ctx, "basic")
		require.NoError(t, err)
		assert.Equal(t, account.TierBasic, s.Tier)
		assert.True(t, s.IsActive)
		assert.Equal(t, 2, s.DaysRemaining)
		assert.Equal(t, 3, s.DailyLimit)
		assert.Equal(t, 100, s.MonthlyLimit)
	})

	t.Run("pro expired yesterday", func(t *testing.T) {
		f.paidAccount("pro", account.TierPro, testutil.Epoch.Add(-24*time.Hour))

		s, err := f.subs.GetStatus(ctx, "pro")
		require.NoError(t, err)
		assert.Equal(t, account.TierFree, s.Tier)
		assert.Equal(t, account.TierFree, s.StoredTier)
		assert.False(t, s.IsActive)
		assert.Equal(t, 0, s.DaysRemaining)
		assert.Equal(t, 3, s.DailyLimit)
	})
}

func TestSubscriptionService_SweepExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.paidAccount("expired-basic", account.TierBasic, testutil.Epoch.Add(-time.Hour))
	f.paidAccount("expired-pro", account.TierPro, testutil.Epoch)
	f.paidAccount("active", account.TierPro, testutil.Epoch.Add(time.Hour))
	f.freeAccount("free")

	n, err := f.subs.SweepExpired(ctx, testutil.Epoch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, account.TierFree, f.repo.Snapshot("expired-basic").Tier)
	assert.Equal(t, account.TierFree, f.repo.Snapshot("expired-pro").Tier)
	assert.Equal(t, account.TierPro, f.repo.Snapshot("active").Tier)

	n, err = f.subs.SweepExpired(ctx, testutil.Epoch)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSubscriptionService_ConcurrentExpiryDowngradesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.paidAccount("acc-1", account.TierPro, testutil.Epoch.Add(-time.Hour))
	f.modify("acc-1", func(a *account.Account) {
		a.MonthlyUsageCount = 10
		a.MonthlyUsageResetAt = testutil.TimePtr(account.StartOfMonth(testutil.Epoch))
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := f.subs.GetEffectiveAccount(ctx, "acc-1")
			if assert.NoError(t, err) {
				assert.Equal(t, account.TierFree, a.EffectiveTier(testutil.Epoch))
			}
		}()
	}
	wg.Wait()

	a := f.repo.Snapshot("acc-1")
	assert.Equal(t, account.TierFree, a.Tier)
	assert.Equal(t, 90, a.FrozenCredits)
}
