package account

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no account record exists for an id
	ErrNotFound = errors.New("account not found")

	// ErrStateChanged is returned when a conditional update lost a race
	ErrStateChanged = errors.New("account state changed concurrently")

	// ErrInvalidTier is returned for unknown tier names
	ErrInvalidTier = errors.New("invalid tier")

	// ErrNotPaidTier is returned when a paid plan is required
	ErrNotPaidTier = errors.New("tier is not a paid plan")
)

// QuotaExceededError reports a rejected AI operation together with the usage
// the user sees and the plan that would lift the limit.
type QuotaExceededError struct {
	Decision     Decision
	RequiredTier Tier
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %d/%d %s uses on %s tier, upgrade to %s",
		e.Decision.Used, e.Decision.Limit, e.Decision.Pool, e.Decision.Tier, e.RequiredTier)
}

// NewQuotaExceeded builds a QuotaExceededError from a rejected decision
func NewQuotaExceeded(d Decision) *QuotaExceededError {
	return &QuotaExceededError{Decision: d, RequiredTier: RequiredTier(d)}
}
