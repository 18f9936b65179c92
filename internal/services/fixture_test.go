package services

import (
	"context"
	"testing"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
	"github.com/pratik-mahalle/tasknest/internal/testutil"
)

type fixture struct {
	repo      *testutil.MockAccountRepository
	clock     *testutil.Clock
	timers    *testutil.ManualTimers
	scheduler *ResetScheduler
	subs      *SubscriptionService
	quota     *QuotaService
	log       *logger.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := testutil.NewClock(testutil.Epoch)
	repo := testutil.NewMockAccountRepository()
	repo.Now = clock.Now
	timers := testutil.NewManualTimers()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	limits := account.DefaultLimits()

	scheduler := NewResetScheduler(repo, limits, log,
		WithTimerFunc(func(d time.Duration, fn func()) Timer { return timers.AfterFunc(d, fn) }),
		WithSchedulerClock(clock.Now),
	)
	scheduler.Start(context.Background())
	t.Cleanup(scheduler.Stop)

	subs := NewSubscriptionService(repo, scheduler, limits, log)
	subs.now = clock.Now

	quota := NewQuotaService(repo, subs, scheduler, limits, log)
	quota.now = clock.Now

	return &fixture{
		repo:      repo,
		clock:     clock,
		timers:    timers,
		scheduler: scheduler,
		subs:      subs,
		quota:     quota,
		log:       log,
	}
}

// freeAccount stores a free account whose daily window started at the epoch
func (f *fixture) freeAccount(id string) *account.Account {
	a := account.New(id, testutil.Epoch)
	f.repo.Put(a)
	return a
}

// paidAccount stores an active subscription ending at end
func (f *fixture) paidAccount(id string, tier account.Tier, end time.Time) *account.Account {
	a := account.New(id, testutil.Epoch.Add(-time.Hour))
	a.Tier = tier
	a.SubscriptionStatus = account.SubscriptionActive
	a.SubscriptionStartDate = testutil.TimePtr(end.Add(-30 * 24 * time.Hour))
	a.SubscriptionEndDate = testutil.TimePtr(end)
	a.PaymentReference = "pay_" + id
	f.repo.Put(a)
	return a
}

func (f *fixture) modify(id string, fn func(a *account.Account)) {
	a := f.repo.Snapshot(id)
	fn(a)
	f.repo.Put(a)
}
