package account

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func paid(tier Tier, now time.Time, daily, monthly int) *Account {
	a := New("acc-1", now.Add(-time.Hour))
	a.Tier = tier
	a.SubscriptionStatus = SubscriptionActive
	a.SubscriptionStartDate = ptr(now.Add(-24 * time.Hour))
	a.SubscriptionEndDate = ptr(now.Add(29 * 24 * time.Hour))
	a.DailyUsageCount = daily
	a.MonthlyUsageCount = monthly
	a.MonthlyUsageResetAt = ptr(StartOfMonth(now))
	return a
}

func TestPolicy_Evaluate(t *testing.T) {
	p := NewPolicy(DefaultLimits())

	free := func(daily int) *Account {
		a := New("acc-1", testNow.Add(-time.Hour))
		a.DailyUsageCount = daily
		return a
	}
	expiredPro := paid(TierPro, testNow, 3, 10)
	expiredPro.SubscriptionEndDate = ptr(testNow.Add(-time.Minute))

	inactiveBasic := paid(TierBasic, testNow, 1, 0)
	inactiveBasic.SubscriptionStatus = SubscriptionNone

	tests := []struct {
		name          string
		account       *Account
		wantAllowed   bool
		wantUsed      int
		wantLimit     int
		wantRemaining int
		wantTier      Tier
		wantPool      Pool
		wantResetAt   *time.Time
	}{
		{
			name:          "fresh free account",
			account:       free(0),
			wantAllowed:   true,
			wantLimit:     3,
			wantRemaining: 3,
			wantTier:      TierFree,
			wantPool:      PoolDaily,
			wantResetAt:   ptr(testNow.Add(23 * time.Hour)),
		},
		{
			name:          "free account with one use left",
			account:       free(2),
			wantAllowed:   true,
			wantUsed:      2,
			wantLimit:     3,
			wantRemaining: 1,
			wantTier:      TierFree,
			wantPool:      PoolDaily,
			wantResetAt:   ptr(testNow.Add(23 * time.Hour)),
		},
		{
			name:          "free account exhausted",
			account:       free(3),
			wantAllowed:   false,
			wantUsed:      3,
			wantLimit:     3,
			wantRemaining: 0,
			wantTier:      TierFree,
			wantPool:      PoolDaily,
			wantResetAt:   ptr(testNow.Add(23 * time.Hour)),
		},
		{
			name:          "basic with daily credit left and monthly pool spent",
			account:       paid(TierBasic, testNow, 2, 100),
			wantAllowed:   true,
			wantUsed:      2,
			wantLimit:     3,
			wantRemaining: 1,
			wantTier:      TierBasic,
			wantPool:      PoolDaily,
			wantResetAt:   ptr(testNow.Add(23 * time.Hour)),
		},
		{
			name:          "basic with both pools spent",
			account:       paid(TierBasic, testNow, 3, 100),
			wantAllowed:   false,
			wantUsed:      100,
			wantLimit:     100,
			wantRemaining: 0,
			wantTier:      TierBasic,
			wantPool:      PoolMonthly,
			wantResetAt:   ptr(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:          "basic drawing from monthly pool",
			account:       paid(TierBasic, testNow, 3, 40),
			wantAllowed:   true,
			wantUsed:      40,
			wantLimit:     100,
			wantRemaining: 60,
			wantTier:      TierBasic,
			wantPool:      PoolMonthly,
			wantResetAt:   ptr(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:          "pro is unlimited",
			account:       paid(TierPro, testNow, 500, 900),
			wantAllowed:   true,
			wantUsed:      500,
			wantLimit:     Unlimited,
			wantRemaining: Unlimited,
			wantTier:      TierPro,
			wantPool:      PoolUnlimited,
		},
		{
			name:          "expired pro falls back to free rule",
			account:       expiredPro,
			wantAllowed:   false,
			wantUsed:      3,
			wantLimit:     3,
			wantRemaining: 0,
			wantTier:      TierFree,
			wantPool:      PoolDaily,
			wantResetAt:   ptr(testNow.Add(23 * time.Hour)),
		},
		{
			name:          "basic without active status falls back to free rule",
			account:       inactiveBasic,
			wantAllowed:   true,
			wantUsed:      1,
			wantLimit:     3,
			wantRemaining: 2,
			wantTier:      TierFree,
			wantPool:      PoolDaily,
			wantResetAt:   ptr(testNow.Add(23 * time.Hour)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := *tt.account
			d := p.Evaluate(tt.account, testNow)

			if d.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", d.Allowed, tt.wantAllowed)
			}
			if d.Used != tt.wantUsed {
				t.Errorf("Used = %d, want %d", d.Used, tt.wantUsed)
			}
			if d.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", d.Limit, tt.wantLimit)
			}
			if d.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", d.Remaining, tt.wantRemaining)
			}
			if d.Tier != tt.wantTier {
				t.Errorf("Tier = %s, want %s", d.Tier, tt.wantTier)
			}
			if d.Pool != tt.wantPool {
				t.Errorf("Pool = %s, want %s", d.Pool, tt.wantPool)
			}
			switch {
			case tt.wantResetAt == nil && d.ResetAt != nil:
				t.Errorf("ResetAt = %v, want nil", d.ResetAt)
			case tt.wantResetAt != nil && (d.ResetAt == nil || !d.ResetAt.Equal(*tt.wantResetAt)):
				t.Errorf("ResetAt = %v, want %v", d.ResetAt, *tt.wantResetAt)
			}
			if tt.account.DailyUsageCount != before.DailyUsageCount || tt.account.MonthlyUsageCount != before.MonthlyUsageCount {
				t.Error("Evaluate mutated the account")
			}
		})
	}
}

func TestPolicy_Evaluate_MonthlyCounterFromPreviousMonth(t *testing.T) {
	a := paid(TierBasic, testNow, 3, 100)
	a.MonthlyUsageResetAt = ptr(time.Date(2026, time.February, 27, 12, 0, 0, 0, time.UTC))

	d := Evaluate(a, testNow)

	if !d.Allowed {
		t.Fatal("expected a counter from February to count as zero in March")
	}
	if d.Used != 0 || d.Remaining != 100 {
		t.Errorf("got used=%d remaining=%d, want 0 and 100", d.Used, d.Remaining)
	}
}

func TestPolicy_ChargePool(t *testing.T) {
	p := NewPolicy(DefaultLimits())

	tests := []struct {
		name    string
		account *Account
		want    UsageKind
	}{
		{"free", New("acc-1", testNow), UsageDaily},
		{"basic under daily limit", paid(TierBasic, testNow, 2, 0), UsageDaily},
		{"basic at daily limit", paid(TierBasic, testNow, 3, 0), UsageMonthly},
		{"pro", paid(TierPro, testNow, 10, 10), UsageDaily},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ChargePool(tt.account, testNow); got != tt.want {
				t.Errorf("ChargePool() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPolicy_Status(t *testing.T) {
	p := NewPolicy(DefaultLimits())

	t.Run("pro includes restored credits", func(t *testing.T) {
		a := paid(TierPro, testNow, 4, 12)
		a.RestoredCredits = 30

		s := p.Status(a, testNow)

		if s.Tier != TierPro || !s.IsActive {
			t.Fatalf("got tier=%s active=%v", s.Tier, s.IsActive)
		}
		if s.DailyLimit != Unlimited {
			t.Errorf("DailyLimit = %d, want unlimited", s.DailyLimit)
		}
		if s.MonthlyLimit != 130 {
			t.Errorf("MonthlyLimit = %d, want 130", s.MonthlyLimit)
		}
		if s.DaysRemaining != 29 {
			t.Errorf("DaysRemaining = %d, want 29", s.DaysRemaining)
		}
		if s.SubscriptionEndDate == nil {
			t.Error("expected subscription end date")
		}
	})

	t.Run("expired subscription reports free", func(t *testing.T) {
		a := paid(TierBasic, testNow, 1, 5)
		a.SubscriptionEndDate = ptr(testNow.Add(-time.Second))

		s := p.Status(a, testNow)

		if s.Tier != TierFree || s.StoredTier != TierBasic {
			t.Errorf("got tier=%s stored=%s", s.Tier, s.StoredTier)
		}
		if s.IsActive || s.DaysRemaining != 0 || s.SubscriptionEndDate != nil {
			t.Errorf("expected inactive status, got %+v", s)
		}
		if s.DailyLimit != 3 || s.MonthlyLimit != 0 {
			t.Errorf("got limits %d/%d, want 3/0", s.DailyLimit, s.MonthlyLimit)
		}
	})
}

func TestRequiredTier(t *testing.T) {
	tests := []struct {
		name string
		d    Decision
		want Tier
	}{
		{"exhausted free", Decision{Tier: TierFree}, TierBasic},
		{"exhausted basic", Decision{Tier: TierBasic}, TierPro},
		{"allowed", Decision{Allowed: true, Tier: TierBasic}, TierBasic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequiredTier(tt.d); got != tt.want {
				t.Errorf("RequiredTier() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestQuotaExceededError(t *testing.T) {
	d := NewPolicy(DefaultLimits()).Evaluate(paid(TierBasic, testNow, 3, 100), testNow)
	err := NewQuotaExceeded(d)

	if err.RequiredTier != TierPro {
		t.Errorf("RequiredTier = %s, want pro", err.RequiredTier)
	}
	want := "quota exceeded: 100/100 monthly uses on basic tier, upgrade to pro"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
