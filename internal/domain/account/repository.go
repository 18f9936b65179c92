package account

import (
	"context"
	"time"
)

// Repository defines the interface for account data access.
// Every mutating method is atomic for a single account.
type Repository interface {
	// Create inserts a new account
	Create(ctx context.Context, a *Account) error

	// Get retrieves an account by ID, returning ErrNotFound when absent
	Get(ctx context.Context, id string) (*Account, error)

	// Increment adds one to the selected counter and returns the new value
	Increment(ctx context.Context, id string, kind UsageKind) (int, error)

	// ResetDaily zeroes the daily counter and stamps the reset time
	ResetDaily(ctx context.Context, id string, at time.Time) error

	// ResetDailyIfDue resets the daily counter only when the last reset
	// happened at or before cutoff. It reports whether a reset happened.
	ResetDailyIfDue(ctx context.Context, id string, at, cutoff time.Time) (bool, error)

	// ResetMonthly zeroes the monthly counter when the last reset lies in an
	// earlier calendar month than at. It reports whether a reset happened.
	ResetMonthly(ctx context.Context, id string, at time.Time) (bool, error)

	// Update applies a patch and returns the stored result
	Update(ctx context.Context, id string, patch Patch) (*Account, error)

	// List retrieves accounts with pagination
	List(ctx context.Context, limit, offset int) ([]*Account, int64, error)

	// ListFreeWithUsage returns free-tier accounts with a non-zero daily counter
	ListFreeWithUsage(ctx context.Context) ([]*Account, error)

	// ListExpired returns paid-tier accounts whose subscription ended at or before now
	ListExpired(ctx context.Context, now time.Time) ([]*Account, error)
}
