package dto

import (
	"time"

	"github.com/pratik-mahalle/tasknest/internal/domain/account"
)

// QuotaDTO represents a quota decision
type QuotaDTO struct {
	Allowed   bool       `json:"allowed"`
	Used      int        `json:"used"`
	Limit     int        `json:"limit"`
	Remaining int        `json:"remaining"`
	ResetAt   *time.Time `json:"resetAt,omitempty"`
	Tier      string     `json:"tier"`
	Pool      string     `json:"pool"`
}

// QuotaExceededDetails is attached to QUOTA_EXCEEDED errors
type QuotaExceededDetails struct {
	Limit        int        `json:"limit"`
	Used         int        `json:"used"`
	Remaining    int        `json:"remaining"`
	ResetAt      *time.Time `json:"resetAt,omitempty"`
	Tier         string     `json:"tier"`
	Pool         string     `json:"pool"`
	RequiredTier string     `json:"requiredTier"`
}

// ToQuotaDTO converts a domain decision
func ToQuotaDTO(d account.Decision) QuotaDTO {
	return QuotaDTO{
		Allowed:   d.Allowed,
		Used:      d.Used,
		Limit:     d.Limit,
		Remaining: d.Remaining,
		ResetAt:   d.ResetAt,
		Tier:      string(d.Tier),
		Pool:      string(d.Pool),
	}
}

// ToQuotaExceededDetails converts a rejection
func ToQuotaExceededDetails(e *account.QuotaExceededError) QuotaExceededDetails {
	return QuotaExceededDetails{
		Limit:        e.Decision.Limit,
		Used:         e.Decision.Used,
		Remaining:    e.Decision.Remaining,
		ResetAt:      e.Decision.ResetAt,
		Tier:         string(e.Decision.Tier),
		Pool:         string(e.Decision.Pool),
		RequiredTier: string(e.RequiredTier),
	}
}
