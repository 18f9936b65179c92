package account

import "time"

// Decision is the outcome of a quota evaluation
type Decision struct {
	Allowed   bool       `json:"allowed"`
	Used      int        `json:"used"`
	Limit     int        `json:"limit"`
	Remaining int        `json:"remaining"`
	ResetAt   *time.Time `json:"reset_at,omitempty"`
	Tier      Tier       `json:"tier"`
	Pool      Pool       `json:"pool"`
}

// Policy maps account state to quota decisions. It never mutates the account.
type Policy struct {
	Limits Limits
}

// NewPolicy creates a policy with the given limits
func NewPolicy(limits Limits) Policy {
	return Policy{Limits: limits}
}

// Evaluate applies the default limits
func Evaluate(a *Account, now time.Time) Decision {
	return NewPolicy(DefaultLimits()).Evaluate(a, now)
}

// Evaluate computes whether one more AI operation is allowed at now.
// Basic and pro accounts whose subscription is not active fall back to the
// free rule on the same counters.
func (p Policy) Evaluate(a *Account, now time.Time) Decision {
	switch a.EffectiveTier(now) {
	case TierPro:
		return Decision{
			Allowed:   true,
			Used:      a.DailyUsageCount,
			Limit:     Unlimited,
			Remaining: Unlimited,
			Tier:      TierPro,
			Pool:      PoolUnlimited,
		}
	case TierBasic:
		if a.DailyUsageCount < p.Limits.FreeDaily {
			d := p.daily(a, TierBasic)
			d.Allowed = true
			return d
		}
		used := a.MonthlyUsed(now)
		resetAt := StartOfNextMonth(now)
		return Decision{
			Allowed:   used < p.Limits.MonthlyPool,
			Used:      used,
			Limit:     p.Limits.MonthlyPool,
			Remaining: nonNegative(p.Limits.MonthlyPool - used),
			ResetAt:   &resetAt,
			Tier:      TierBasic,
			Pool:      PoolMonthly,
		}
	default:
		d := p.daily(a, TierFree)
		d.Allowed = a.DailyUsageCount < p.Limits.FreeDaily
		return d
	}
}

func (p Policy) daily(a *Account, tier Tier) Decision {
	resetAt := a.DailyUsageResetAt.Add(p.Limits.DailyResetInterval)
	return Decision{
		Used:      a.DailyUsageCount,
		Limit:     p.Limits.FreeDaily,
		Remaining: nonNegative(p.Limits.FreeDaily - a.DailyUsageCount),
		ResetAt:   &resetAt,
		Tier:      tier,
		Pool:      PoolDaily,
	}
}

// ChargePool returns the counter one more operation is charged to.
// Basic users draw from the daily pool first, then the monthly pool.
func (p Policy) ChargePool(a *Account, now time.Time) UsageKind {
	if a.EffectiveTier(now) == TierBasic && a.DailyUsageCount >= p.Limits.FreeDaily {
		return UsageMonthly
	}
	return UsageDaily
}

// MonthlyAllowance is the monthly pool size including restored credits
func (p Policy) MonthlyAllowance(a *Account) int {
	return p.Limits.MonthlyPool + a.RestoredCredits
}

// Status builds the UI view of an account at now
func (p Policy) Status(a *Account, now time.Time) Status {
	tier := a.EffectiveTier(now)
	s := Status{
		AccountID:       a.ID,
		Tier:            tier,
		StoredTier:      a.Tier,
		IsActive:        a.HasActiveSubscription(now),
		DaysRemaining:   a.DaysRemaining(now),
		DailyUsage:      a.DailyUsageCount,
		DailyLimit:      p.Limits.FreeDaily,
		MonthlyUsage:    a.MonthlyUsed(now),
		FrozenCredits:   a.FrozenCredits,
		RestoredCredits: a.RestoredCredits,
		DailyResetAt:    a.DailyUsageResetAt.Add(p.Limits.DailyResetInterval),
	}
	if s.IsActive {
		s.SubscriptionEndDate = a.SubscriptionEndDate
	}
	switch tier {
	case TierPro:
		s.DailyLimit = Unlimited
		s.MonthlyLimit = p.MonthlyAllowance(a)
	case TierBasic:
		s.MonthlyLimit = p.Limits.MonthlyPool
	}
	return s
}

// RequiredTier returns the cheapest tier that would have allowed a rejected
// operation. It returns the decision's own tier when the operation was allowed.
func RequiredTier(d Decision) Tier {
	if d.Allowed {
		return d.Tier
	}
	switch d.Tier {
	case TierFree:
		return TierBasic
	default:
		return TierPro
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
