package dto

import "github.com/pratik-mahalle/tasknest/internal/billing"

// PlanDTO represents a subscription plan
type PlanDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DailyLimit   int    `json:"dailyLimit"`
	MonthlyLimit int    `json:"monthlyLimit"`
	PeriodDays   int    `json:"periodDays"`
	Available    bool   `json:"available"`
	IsCurrent    bool   `json:"isCurrent"`
}

// ToPlanDTO converts a billing plan
func ToPlanDTO(p billing.Plan, currentTier string) PlanDTO {
	return PlanDTO{
		ID:           string(p.Tier),
		Name:         p.Name,
		DailyLimit:   p.DailyLimit,
		MonthlyLimit: p.MonthlyLimit,
		PeriodDays:   p.PeriodDays,
		Available:    p.Available,
		IsCurrent:    string(p.Tier) == currentTier,
	}
}

// CheckoutRequest represents a request to buy a plan
type CheckoutRequest struct {
	Plan string `json:"plan" validate:"required,paid_tier"`
}

// CheckoutResponse carries the hosted payment page
type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// WebhookResponse acknowledges a gateway webhook
type WebhookResponse struct {
	Outcome string `json:"outcome"`
}
