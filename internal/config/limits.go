package config

import "github.com/pratik-mahalle/tasknest/internal/domain/account"

// Limits converts the quota section into domain limits
func (q QuotaConfig) Limits() account.Limits {
	return account.Limits{
		FreeDaily:          q.FreeDailyLimit,
		MonthlyPool:        q.MonthlyLimit,
		DailyResetInterval: q.DailyResetInterval,
		SubscriptionPeriod: q.SubscriptionPeriod,
	}
}
