package account

import (
	"context"
	"time"
)

// Service defines account management operations
type Service interface {
	// Create creates a new free-tier account with a generated ID
	Create(ctx context.Context) (*Account, error)

	// Get retrieves an account as stored, without expiry handling
	Get(ctx context.Context, id string) (*Account, error)
}

// QuotaService gates AI-consuming operations
type QuotaService interface {
	// CheckQuota evaluates whether one more AI operation is allowed
	CheckQuota(ctx context.Context, id string) (Decision, error)

	// RecordUsage charges one AI operation to the account
	RecordUsage(ctx context.Context, id string) (Decision, error)

	// Consume checks the quota, runs fn and records usage only if fn succeeded.
	// A rejected check returns a *QuotaExceededError without calling fn.
	Consume(ctx context.Context, id string, fn func(ctx context.Context) error) (Decision, error)
}

// SubscriptionService drives plan transitions
type SubscriptionService interface {
	// Upgrade activates a paid tier for a confirmed payment
	Upgrade(ctx context.Context, id string, target Tier, paymentRef string) (*Account, error)

	// CheckAndExpire downgrades the account when its subscription has ended.
	// It reports whether a downgrade happened.
	CheckAndExpire(ctx context.Context, id string, now time.Time) (bool, error)

	// Downgrade moves the account to the free tier
	Downgrade(ctx context.Context, id string) (*Account, error)

	// SweepExpired expires every account whose subscription has ended
	SweepExpired(ctx context.Context, now time.Time) (int, error)

	// GetEffectiveAccount returns the account after lazy expiry
	GetEffectiveAccount(ctx context.Context, id string) (*Account, error)

	// GetStatus returns the UI view of the account
	GetStatus(ctx context.Context, id string) (*Status, error)
}

// ResetScheduler arms per-user daily reset timers
type ResetScheduler interface {
	// Arm schedules a reset one interval from now, replacing any pending one
	Arm(id string)

	// Cancel clears a pending reset without touching counters
	Cancel(id string)
}
