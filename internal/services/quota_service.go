package services

import (
	"context"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
	"github.com/pratik-mahalle/tasknest/internal/pkg/metrics"
)

// QuotaService implements account.QuotaService
type QuotaService struct {
	repo          account.Repository
	subscriptions account.SubscriptionService
	scheduler     account.ResetScheduler
	policy        account.Policy
	logger        *logger.Logger
	now           func() time.Time
}

// NewQuotaService creates a new quota service
func NewQuotaService(
	repo account.Repository,
	subscriptions account.SubscriptionService,
	scheduler account.ResetScheduler,
	limits account.Limits,
	log *logger.Logger,
) *QuotaService {
	return &QuotaService{
		repo:          repo,
		subscriptions: subscriptions,
		scheduler:     scheduler,
		policy:        account.NewPolicy(limits),
		logger:        log,
		now:           time.Now,
	}
}

// current loads the effective account and applies an overdue daily reset
func (s *QuotaService) current(ctx context.Context, id string, now time.Time) (*account.Account, error) {
	a, err := s.subscriptions.GetEffectiveAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	interval := s.policy.Limits.DailyResetInterval
	if !a.DailyResetDue(now, interval) {
		return a, nil
	}

	reset, err := s.repo.ResetDailyIfDue(ctx, id, now, now.Add(-interval))
	if err != nil {
		return nil, err
	}
	if reset {
		metrics.RecordDailyReset("lazy")
		a.DailyUsageCount = 0
		a.DailyUsageResetAt = now
		return a, nil
	}

	// another request reset it first
	return s.subscriptions.GetEffectiveAccount(ctx, id)
}

// CheckQuota evaluates whether one more AI operation is allowed
func (s *QuotaService) CheckQuota(ctx context.Context, id string) (account.Decision, error) {
	now := s.now()

	a, err := s.current(ctx, id, now)
	if err != nil {
		return account.Decision{}, err
	}

	d := s.policy.Evaluate(a, now)
	metrics.RecordQuotaCheck(string(d.Tier), d.Allowed)

	return d, nil
}

// RecordUsage charges one AI operation to the account and returns the
// decision for the next one. The first daily use of a free account arms
// its reset timer.
func (s *QuotaService) RecordUsage(ctx context.Context, id string) (account.Decision, error) {
	now := s.now()

	a, err := s.current(ctx, id, now)
	if err != nil {
		return account.Decision{}, err
	}

	tier := a.EffectiveTier(now)
	if tier.IsPaid() && (a.MonthlyUsageResetAt == nil || !account.SameMonth(*a.MonthlyUsageResetAt, now)) {
		rolled, err := s.repo.ResetMonthly(ctx, id, now)
		if err != nil {
			return account.Decision{}, err
		}
		if rolled {
			a.MonthlyUsageCount = 0
			a.MonthlyUsageResetAt = &now
		}
	}

	pool := s.policy.ChargePool(a, now)
	switch pool {
	case account.UsageMonthly:
		n, err := s.repo.Increment(ctx, id, account.UsageMonthly)
		if err != nil {
			return account.Decision{}, err
		}
		a.MonthlyUsageCount = n
	default:
		n, err := s.repo.Increment(ctx, id, account.UsageDaily)
		if err != nil {
			return account.Decision{}, err
		}
		a.DailyUsageCount = n

		if tier == account.TierPro {
			// pro usage is unlimited, the monthly counter only feeds reporting
			m, err := s.repo.Increment(ctx, id, account.UsageMonthly)
			if err != nil {
				return account.Decision{}, err
			}
			a.MonthlyUsageCount = m
		}

		if tier == account.TierFree && n == 1 {
			s.scheduler.Arm(id)
		}
	}

	if a.MonthlyUsageResetAt == nil && a.MonthlyUsageCount > 0 {
		a.MonthlyUsageResetAt = &now
	}

	metrics.RecordUsage(string(tier), string(pool))
	s.logger.WithFields(map[string]interface{}{
		"account_id": id,
		"tier":       tier,
		"pool":       pool,
		"daily":      a.DailyUsageCount,
		"monthly":    a.MonthlyUsageCount,
	}).Debug("AI usage recorded")

	return s.policy.Evaluate(a, now), nil
}

// Consume checks the quota, runs fn and records usage only if fn succeeded
func (s *QuotaService) Consume(ctx context.Context, id string, fn func(ctx context.Context) error) (account.Decision, error) {
	d, err := s.CheckQuota(ctx, id)
	if err != nil {
		return d, err
	}
	if !d.Allowed {
		return d, account.NewQuotaExceeded(d)
	}

	if err := fn(ctx); err != nil {
		return d, err
	}

	return s.RecordUsage(ctx, id)
}

var _ account.QuotaService = (*QuotaService)(nil)
