package dto

import (
	"time"

	"github.com/pratik-mahalle/tasknest/internal/domain/account"
)

// AccountDTO represents an account as stored
type AccountDTO struct {
	ID                    string     `json:"id"`
	Tier                  string     `json:"tier"`
	SubscriptionStatus    string     `json:"subscriptionStatus"`
	SubscriptionStartDate *time.Time `json:"subscriptionStartDate,omitempty"`
	SubscriptionEndDate   *time.Time `json:"subscriptionEndDate,omitempty"`
	DailyUsageCount       int        `json:"dailyUsageCount"`
	DailyUsageResetAt     time.Time  `json:"dailyUsageResetAt"`
	MonthlyUsageCount     int        `json:"monthlyUsageCount"`
	FrozenCredits         int        `json:"frozenCredits"`
	RestoredCredits       int        `json:"restoredCredits"`
	CreatedAt             time.Time  `json:"createdAt"`
}

// AccountCreatedResponse is returned by account signup
type AccountCreatedResponse struct {
	Account AccountDTO    `json:"account"`
	Tokens  TokenResponse `json:"tokens"`
}

// ToAccountDTO converts a domain account
func ToAccountDTO(a *account.Account) AccountDTO {
	return AccountDTO{
		ID:                    a.ID,
		Tier:                  string(a.Tier),
		SubscriptionStatus:    string(a.SubscriptionStatus),
		SubscriptionStartDate: a.SubscriptionStartDate,
		SubscriptionEndDate:   a.SubscriptionEndDate,
		DailyUsageCount:       a.DailyUsageCount,
		DailyUsageResetAt:     a.DailyUsageResetAt,
		MonthlyUsageCount:     a.MonthlyUsageCount,
		FrozenCredits:         a.FrozenCredits,
		RestoredCredits:       a.RestoredCredits,
		CreatedAt:             a.CreatedAt,
	}
}

// SubscriptionStatusDTO is the usage summary shown by the UI
type SubscriptionStatusDTO struct {
	Tier                string     `json:"tier"`
	StoredTier          string     `json:"storedTier"`
	IsActive            bool       `json:"isActive"`
	DaysRemaining       int        `json:"daysRemaining"`
	DailyUsage          int        `json:"dailyUsage"`
	DailyLimit          int        `json:"dailyLimit"`
	MonthlyUsage        int        `json:"monthlyUsage"`
	MonthlyLimit        int        `json:"monthlyLimit"`
	FrozenCredits       int        `json:"frozenCredits"`
	RestoredCredits     int        `json:"restoredCredits"`
	SubscriptionEndDate *time.Time `json:"subscriptionEndDate,omitempty"`
	DailyResetAt        time.Time  `json:"dailyResetAt"`
}

// ToSubscriptionStatusDTO converts a domain status
func ToSubscriptionStatusDTO(s *account.Status) SubscriptionStatusDTO {
	return SubscriptionStatusDTO{
		Tier:                string(s.Tier),
		StoredTier:          string(s.StoredTier),
		IsActive:            s.IsActive,
		DaysRemaining:       s.DaysRemaining,
		DailyUsage:          s.DailyUsage,
		DailyLimit:          s.DailyLimit,
		MonthlyUsage:        s.MonthlyUsage,
		MonthlyLimit:        s.MonthlyLimit,
		FrozenCredits:       s.FrozenCredits,
		RestoredCredits:     s.RestoredCredits,
		SubscriptionEndDate: s.SubscriptionEndDate,
		DailyResetAt:        s.DailyResetAt,
	}
}
