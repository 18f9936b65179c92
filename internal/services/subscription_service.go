package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/errors"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
	"github.com/pratik-mahalle/tasknest/internal/pkg/metrics"
)

// SubscriptionService implements account.SubscriptionService
type SubscriptionService struct {
	repo      account.Repository
	scheduler account.ResetScheduler
	policy    account.Policy
	logger    *logger.Logger
	now       func() time.Time
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repo account.Repository, scheduler account.ResetScheduler, limits account.Limits, log *logger.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:      repo,
		scheduler: scheduler,
		policy:    account.NewPolicy(limits),
		logger:    log,
		now:       time.Now,
	}
}

// Upgrade activates target for one subscription period and grants a clean
// quota. A pro upgrade restores frozen credits into the monthly pool; a basic
// upgrade forfeits them.
func (s *SubscriptionService) Upgrade(ctx context.Context, id string, target account.Tier, paymentRef string) (*account.Account, error) {
	if !target.IsPaid() {
		return nil, errors.Wrap(
			fmt.Errorf("%w: %q", account.ErrNotPaidTier, target),
			errors.ErrCodeBadRequest,
			"Upgrade target must be a paid plan",
			http.StatusBadRequest,
		)
	}

	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	end := now.Add(s.policy.Limits.SubscriptionPeriod)
	active := account.SubscriptionActive
	zero := 0

	patch := account.Patch{
		Tier:                  &target,
		SubscriptionStatus:    &active,
		SubscriptionStartDate: &now,
		SubscriptionEndDate:   &end,
		PaymentReference:      &paymentRef,
		DailyUsageCount:       &zero,
		DailyUsageResetAt:     &now,
		MonthlyUsageCount:     &zero,
		MonthlyUsageResetAt:   &now,
	}
	if target == account.TierPro {
		patch.RestoreFrozen = true
	} else {
		patch.FrozenCredits = &zero
		patch.RestoredCredits = &zero
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.logger.With("account_id", id).ErrorWithErr(err, "Failed to upgrade account")
		return nil, err
	}

	s.scheduler.Cancel(id)

	from := before.EffectiveTier(now)
	metrics.RecordSubscriptionTransition(string(from), string(target))
	s.logger.WithFields(map[string]interface{}{
		"account_id":       id,
		"from":             from,
		"to":               target,
		"payment_ref":      paymentRef,
		"restored_credits": updated.RestoredCredits,
		"ends_at":          end,
	}).Info("Subscription upgraded")

	return updated, nil
}

// CheckAndExpire downgrades the account when its subscription has ended
func (s *SubscriptionService) CheckAndExpire(ctx context.Context, id string, now time.Time) (bool, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	_, expired, err := s.expire(ctx, a, now)
	return expired, err
}

// expire downgrades a when its subscription has ended at now. A concurrent
// transition that already changed the stored tier makes it a no-op.
func (s *SubscriptionService) expire(ctx context.Context, a *account.Account, now time.Time) (*account.Account, bool, error) {
	if !a.IsExpired(now) {
		return a, false, nil
	}

	updated, err := s.downgrade(ctx, a, now)
	if stderrors.Is(err, account.ErrStateChanged) {
		current, err := s.repo.Get(ctx, a.ID)
		return current, false, err
	}
	if err != nil {
		return nil, false, err
	}

	return updated, true, nil
}

// Downgrade moves the account to the free tier. Free accounts are returned unchanged.
func (s *SubscriptionService) Downgrade(ctx context.Context, id string) (*account.Account, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Tier == account.TierFree {
		return a, nil
	}

	updated, err := s.downgrade(ctx, a, s.now().UTC())
	if stderrors.Is(err, account.ErrStateChanged) {
		return s.repo.Get(ctx, id)
	}
	return updated, err
}

func (s *SubscriptionService) downgrade(ctx context.Context, a *account.Account, now time.Time) (*account.Account, error) {
	from := a.Tier
	free := account.TierFree
	capDaily := s.policy.Limits.FreeDaily
	zero := 0

	patch := account.Patch{
		Tier:              &free,
		ClearSubscription: true,
		CapDailyUsage:     &capDaily,
		RestoredCredits:   &zero,
		RequireTier:       &from,
	}
	if from == account.TierPro {
		patch.FreezeUnused = &account.FreezeSpec{
			Pool:       s.policy.Limits.MonthlyPool,
			MonthStart: account.StartOfMonth(now),
		}
	}

	updated, err := s.repo.Update(ctx, a.ID, patch)
	if err != nil {
		if !stderrors.Is(err, account.ErrStateChanged) {
			s.logger.With("account_id", a.ID).ErrorWithErr(err, "Failed to downgrade account")
		}
		return nil, err
	}

	if updated.DailyUsageCount > 0 {
		s.scheduler.Arm(a.ID)
	}

	metrics.RecordSubscriptionTransition(string(from), string(account.TierFree))
	if from == account.TierPro {
		metrics.RecordFrozenCredits(updated.FrozenCredits)
	}
	s.logger.WithFields(map[string]interface{}{
		"account_id":     a.ID,
		"from":           from,
		"frozen_credits": updated.FrozenCredits,
		"daily_usage":    updated.DailyUsageCount,
	}).Info("Subscription downgraded")

	return updated, nil
}

// SweepExpired expires every account whose subscription ended at or before
// now and returns how many were downgraded. Failures for single accounts are
// logged and skipped.
func (s *SubscriptionService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	start := time.Now()

	expired, err := s.repo.ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, a := range expired {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		_, ok, err := s.expire(ctx, a, now)
		if err != nil {
			s.logger.With("account_id", a.ID).WarnWithErr(err, "Failed to expire subscription")
			continue
		}
		if ok {
			n++
		}
	}

	metrics.RecordSweep("expiry", n, time.Since(start))
	if n > 0 {
		s.logger.With("expired", n).Info("Expired subscriptions downgraded")
	}

	return n, nil
}

// GetEffectiveAccount returns the account after lazy expiry
func (s *SubscriptionService) GetEffectiveAccount(ctx context.Context, id string) (*account.Account, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a, _, err = s.expire(ctx, a, s.now())
	return a, err
}

// GetStatus returns the UI view of the account
func (s *SubscriptionService) GetStatus(ctx context.Context, id string) (*account.Status, error) {
	a, err := s.GetEffectiveAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	status := s.policy.Status(a, s.now())
	return &status, nil
}

var _ account.SubscriptionService = (*SubscriptionService)(nil)
