package account

import (
	"fmt"
	"strings"
	"time"
)

// Account is the per-user record that drives AI quota and subscription state
type Account struct {
	ID                    string             `json:"id"`
	Tier                  Tier               `json:"tier"`
	SubscriptionStatus    SubscriptionStatus `json:"subscription_status,omitempty"`
	SubscriptionStartDate *time.Time         `json:"subscription_start_date,omitempty"`
	SubscriptionEndDate   *time.Time         `json:"subscription_end_date,omitempty"`
	PaymentReference      string             `json:"payment_reference,omitempty"`
	DailyUsageCount       int                `json:"daily_usage_count"`
	DailyUsageResetAt     time.Time          `json:"daily_usage_reset_at"`
	MonthlyUsageCount     int                `json:"monthly_usage_count"`
	MonthlyUsageResetAt   *time.Time         `json:"monthly_usage_reset_at,omitempty"`
	FrozenCredits         int                `json:"frozen_credits"`
	RestoredCredits       int                `json:"restored_credits"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// Tier is a subscription level
type Tier string

const (
	TierFree  Tier = "free"
	TierBasic Tier = "basic"
	TierPro   Tier = "pro"
)

// IsValid reports whether t is a known tier
func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierBasic, TierPro:
		return true
	}
	return false
}

// IsPaid reports whether t requires a subscription
func (t Tier) IsPaid() bool {
	return t == TierBasic || t == TierPro
}

// ParseTier converts user input into a Tier
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, s)
	}
	return t, nil
}

// SubscriptionStatus reports whether a paid plan is running
type SubscriptionStatus string

const (
	SubscriptionActive SubscriptionStatus = "active"
	SubscriptionNone   SubscriptionStatus = "none"
)

// UsageKind selects a usage counter
type UsageKind string

const (
	UsageDaily   UsageKind = "daily"
	UsageMonthly UsageKind = "monthly"
)

// Pool names the allowance a decision was computed against
type Pool string

const (
	PoolDaily     Pool = "daily"
	PoolMonthly   Pool = "monthly"
	PoolUnlimited Pool = "unlimited"
)

// Unlimited is the limit/remaining sentinel for tiers without a cap
const Unlimited = -1

// Limits holds the numeric quota rules
type Limits struct {
	FreeDaily          int
	MonthlyPool        int
	DailyResetInterval time.Duration
	SubscriptionPeriod time.Duration
}

// DefaultLimits returns the stock quota rules
func DefaultLimits() Limits {
	return Limits{
		FreeDaily:          3,
		MonthlyPool:        100,
		DailyResetInterval: 24 * time.Hour,
		SubscriptionPeriod: 30 * 24 * time.Hour,
	}
}

// New returns a fresh free-tier account
func New(id string, now time.Time) *Account {
	return &Account{
		ID:                 id,
		Tier:               TierFree,
		SubscriptionStatus: SubscriptionNone,
		DailyUsageResetAt:  now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// HasActiveSubscription reports whether a paid tier is still within its window
func (a *Account) HasActiveSubscription(now time.Time) bool {
	if !a.Tier.IsPaid() || a.SubscriptionStatus != SubscriptionActive {
		return false
	}
	return a.SubscriptionEndDate != nil && now.Before(*a.SubscriptionEndDate)
}

// EffectiveTier is the tier that governs quota at now
func (a *Account) EffectiveTier(now time.Time) Tier {
	if a.HasActiveSubscription(now) {
		return a.Tier
	}
	return TierFree
}

// IsExpired reports whether the stored paid tier must be downgraded
func (a *Account) IsExpired(now time.Time) bool {
	if a.Tier == TierFree || a.SubscriptionEndDate == nil {
		return false
	}
	return !now.Before(*a.SubscriptionEndDate)
}

// DaysRemaining returns whole days left in the subscription, rounded up
func (a *Account) DaysRemaining(now time.Time) int {
	if !a.HasActiveSubscription(now) {
		return 0
	}
	left := a.SubscriptionEndDate.Sub(now)
	days := int(left / (24 * time.Hour))
	if left%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// MonthlyUsed returns the monthly counter as seen at now. A counter last
// reset in an earlier calendar month counts as zero.
func (a *Account) MonthlyUsed(now time.Time) int {
	if a.MonthlyUsageResetAt == nil || !SameMonth(*a.MonthlyUsageResetAt, now) {
		return 0
	}
	return a.MonthlyUsageCount
}

// DailyResetDue reports whether the daily window has elapsed
func (a *Account) DailyResetDue(now time.Time, interval time.Duration) bool {
	return now.Sub(a.DailyUsageResetAt) >= interval
}

// Clone returns a deep copy
func (a *Account) Clone() *Account {
	c := *a
	c.SubscriptionStartDate = cloneTime(a.SubscriptionStartDate)
	c.SubscriptionEndDate = cloneTime(a.SubscriptionEndDate)
	c.MonthlyUsageResetAt = cloneTime(a.MonthlyUsageResetAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// SameMonth compares calendar (year, month) in UTC
func SameMonth(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// StartOfMonth returns the first instant of t's calendar month in UTC
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// StartOfNextMonth returns the first instant of the month after t in UTC
func StartOfNextMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0)
}

// Patch carries optional field updates applied atomically by the repository.
// Nil fields are left untouched.
type Patch struct {
	Tier                  *Tier
	SubscriptionStatus    *SubscriptionStatus
	SubscriptionStartDate *time.Time
	SubscriptionEndDate   *time.Time
	PaymentReference      *string
	// ClearSubscription nulls the subscription window and payment reference
	// and sets the status to none. It wins over the fields above.
	ClearSubscription   bool
	DailyUsageCount     *int
	DailyUsageResetAt   *time.Time
	MonthlyUsageCount   *int
	MonthlyUsageResetAt *time.Time
	FrozenCredits       *int
	RestoredCredits     *int
	// CapDailyUsage lowers the daily counter to at most this value. It is
	// ignored when DailyUsageCount is set.
	CapDailyUsage *int
	// FreezeUnused sets FrozenCredits from the monthly counter stored at
	// update time. It wins over FrozenCredits.
	FreezeUnused *FreezeSpec
	// RestoreFrozen moves FrozenCredits into RestoredCredits and zeroes
	// FrozenCredits. It wins over FrozenCredits and RestoredCredits.
	RestoreFrozen bool
	// RequireTier makes the update conditional on the stored tier. A mismatch
	// yields ErrStateChanged.
	RequireTier *Tier
}

// FreezeSpec describes how unused monthly credits are frozen:
// max(0, Pool - used), where used is the monthly counter when it was last
// reset at or after MonthStart and zero otherwise. The result never exceeds
// Pool, so restored credits are not carried into the next freeze.
type FreezeSpec struct {
	Pool       int
	MonthStart time.Time
}

// UnusedMonthly computes the FreezeSpec formula against an in-memory account
func (f FreezeSpec) UnusedMonthly(a *Account) int {
	used := 0
	if a.MonthlyUsageResetAt != nil && !a.MonthlyUsageResetAt.Before(f.MonthStart) {
		used = a.MonthlyUsageCount
	}
	if n := f.Pool - used; n > 0 {
		return n
	}
	return 0
}

// Status is the read-only view shown by the UI
type Status struct {
	AccountID           string     `json:"account_id"`
	Tier                Tier       `json:"tier"`
	StoredTier          Tier       `json:"stored_tier"`
	IsActive            bool       `json:"is_active"`
	DaysRemaining       int        `json:"days_remaining"`
	DailyUsage          int        `json:"daily_usage"`
	DailyLimit          int        `json:"daily_limit"`
	MonthlyUsage        int        `json:"monthly_usage"`
	MonthlyLimit        int        `json:"monthly_limit"`
	FrozenCredits       int        `json:"frozen_credits"`
	RestoredCredits     int        `json:"restored_credits"`
	SubscriptionEndDate *time.Time `json:"subscription_end_date,omitempty"`
	DailyResetAt        time.Time  `json:"daily_reset_at"`
}

// PaymentConfirmation is a confirmed external payment for a plan
type PaymentConfirmation struct {
	AccountID        string `json:"account_id"`
	PlanType         Tier   `json:"plan_type"`
	PaymentReference string `json:"payment_reference"`
}
