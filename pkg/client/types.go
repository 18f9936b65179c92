package client

import "time"

// Account is an account as stored
type Account struct {
	ID                    string     `json:"id" yaml:"id"`
	Tier                  string     `json:"tier" yaml:"tier"`
	SubscriptionStatus    string     `json:"subscriptionStatus" yaml:"subscription_status"`
	SubscriptionStartDate *time.Time `json:"subscriptionStartDate,omitempty" yaml:"subscription_start_date,omitempty"`
	SubscriptionEndDate   *time.Time `json:"subscriptionEndDate,omitempty" yaml:"subscription_end_date,omitempty"`
	DailyUsageCount       int        `json:"dailyUsageCount" yaml:"daily_usage_count"`
	DailyUsageResetAt     time.Time  `json:"dailyUsageResetAt" yaml:"daily_usage_reset_at"`
	MonthlyUsageCount     int        `json:"monthlyUsageCount" yaml:"monthly_usage_count"`
	FrozenCredits         int        `json:"frozenCredits" yaml:"frozen_credits"`
	RestoredCredits       int        `json:"restoredCredits" yaml:"restored_credits"`
	CreatedAt             time.Time  `json:"createdAt" yaml:"created_at"`
}

// Tokens is an access and refresh token pair
type Tokens struct {
	AccessToken  string `json:"accessToken" yaml:"access_token"`
	RefreshToken string `json:"refreshToken" yaml:"refresh_token"`
	ExpiresIn    int64  `json:"expiresIn" yaml:"expires_in"`
}

// CreatedAccount is returned by account signup
type CreatedAccount struct {
	Account Account `json:"account" yaml:"account"`
	Tokens  Tokens  `json:"tokens" yaml:"tokens"`
}

// Quota is a quota decision
type Quota struct {
	Allowed   bool       `json:"allowed" yaml:"allowed"`
	Used      int        `json:"used" yaml:"used"`
	Limit     int        `json:"limit" yaml:"limit"`
	Remaining int        `json:"remaining" yaml:"remaining"`
	ResetAt   *time.Time `json:"resetAt,omitempty" yaml:"reset_at,omitempty"`
	Tier      string     `json:"tier" yaml:"tier"`
	Pool      string     `json:"pool" yaml:"pool"`
}

// Unlimited reports whether the quota has no cap
func (q Quota) Unlimited() bool {
	return q.Limit < 0
}

// SubscriptionStatus is the usage summary of an account
type SubscriptionStatus struct {
	Tier                string     `json:"tier" yaml:"tier"`
	StoredTier          string     `json:"storedTier" yaml:"stored_tier"`
	IsActive            bool       `json:"isActive" yaml:"is_active"`
	DaysRemaining       int        `json:"daysRemaining" yaml:"days_remaining"`
	DailyUsage          int        `json:"dailyUsage" yaml:"daily_usage"`
	DailyLimit          int        `json:"dailyLimit" yaml:"daily_limit"`
	MonthlyUsage        int        `json:"monthlyUsage" yaml:"monthly_usage"`
	MonthlyLimit        int        `json:"monthlyLimit" yaml:"monthly_limit"`
	FrozenCredits       int        `json:"frozenCredits" yaml:"frozen_credits"`
	RestoredCredits     int        `json:"restoredCredits" yaml:"restored_credits"`
	SubscriptionEndDate *time.Time `json:"subscriptionEndDate,omitempty" yaml:"subscription_end_date,omitempty"`
	DailyResetAt        time.Time  `json:"dailyResetAt" yaml:"daily_reset_at"`
}

// Plan is a purchasable subscription plan
type Plan struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	DailyLimit   int    `json:"dailyLimit" yaml:"daily_limit"`
	MonthlyLimit int    `json:"monthlyLimit" yaml:"monthly_limit"`
	PeriodDays   int    `json:"periodDays" yaml:"period_days"`
	Available    bool   `json:"available" yaml:"available"`
	IsCurrent    bool   `json:"isCurrent" yaml:"is_current"`
}

// CheckoutSession is a hosted payment page
type CheckoutSession struct {
	SessionID string `json:"sessionId" yaml:"session_id"`
	URL       string `json:"url" yaml:"url"`
}

// Categorization is the result of task categorization
type Categorization struct {
	Category string `json:"category" yaml:"category"`
	Quota    Quota  `json:"quota" yaml:"quota"`
}

// Suggestions is the result of task suggestions
type Suggestions struct {
	Suggestions []string `json:"suggestions" yaml:"suggestions"`
	Quota       Quota    `json:"quota" yaml:"quota"`
}

// HealthResponse is the liveness/readiness payload
type HealthResponse map[string]string
