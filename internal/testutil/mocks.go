package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/domain/account"
)

// MockAccountRepository is an in-memory implementation of account.Repository.
// Each method holds the lock for its whole read-modify-write, mirroring the
// single-statement updates of the SQL repository.
type MockAccountRepository struct {
	mu       sync.Mutex
	Accounts map[string]*account.Account
	Now      func() time.Time

	CreateError    error
	GetError       error
	IncrementError error
	ResetError     error
	UpdateError    error
	ListError      error

	Calls map[string]int
}

// NewMockAccountRepository creates an empty repository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[string]*account.Account),
		Now:      time.Now,
		Calls:    make(map[string]int),
	}
}

// CallCount returns how often a method was invoked
func (m *MockAccountRepository) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[method]
}

// Put stores a copy of a without touching timestamps
func (m *MockAccountRepository) Put(a *account.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Accounts[a.ID] = a.Clone()
}

// Snapshot returns a copy of the stored account or nil
func (m *MockAccountRepository) Snapshot(id string) *account.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.Accounts[id]; ok {
		return a.Clone()
	}
	return nil
}

func (m *MockAccountRepository) Create(ctx context.Context, a *account.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["Create"]++
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, exists := m.Accounts[a.ID]; exists {
		return account.ErrStateChanged
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = m.Now()
	}
	a.UpdatedAt = a.CreatedAt
	if a.DailyUsageResetAt.IsZero() {
		a.DailyUsageResetAt = a.CreatedAt
	}
	if a.SubscriptionStatus == "" {
		a.SubscriptionStatus = account.SubscriptionNone
	}
	m.Accounts[a.ID] = a.Clone()
	return nil
}

func (m *MockAccountRepository) Get(ctx context.Context, id string) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["Get"]++
	if m.GetError != nil {
		return nil, m.GetError
	}
	a, ok := m.Accounts[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	return a.Clone(), nil
}

func (m *MockAccountRepository) Increment(ctx context.Context, id string, kind account.UsageKind) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["Increment"]++
	if m.IncrementError != nil {
		return 0, m.IncrementError
	}
	a, ok := m.Accounts[id]
	if !ok {
		return 0, account.ErrNotFound
	}
	now := m.Now()
	a.UpdatedAt = now
	if kind == account.UsageMonthly {
		a.MonthlyUsageCount++
		if a.MonthlyUsageResetAt == nil {
			a.MonthlyUsageResetAt = &now
		}
		return a.MonthlyUsageCount, nil
	}
	a.DailyUsageCount++
	return a.DailyUsageCount, nil
}

func (m *MockAccountRepository) ResetDaily(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["ResetDaily"]++
	if m.ResetError != nil {
		return m.ResetError
	}
	a, ok := m.Accounts[id]
	if !ok {
		return account.ErrNotFound
	}
	a.DailyUsageCount = 0
	a.DailyUsageResetAt = at
	a.UpdatedAt = m.Now()
	return nil
}

func (m *MockAccountRepository) ResetDailyIfDue(ctx context.Context, id string, at, cutoff time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["ResetDailyIfDue"]++
	if m.ResetError != nil {
		return false, m.ResetError
	}
	a, ok := m.Accounts[id]
	if !ok {
		return false, account.ErrNotFound
	}
	if a.DailyUsageResetAt.After(cutoff) {
		return false, nil
	}
	a.DailyUsageCount = 0
	a.DailyUsageResetAt = at
	a.UpdatedAt = m.Now()
	return true, nil
}

func (m *MockAccountRepository) ResetMonthly(ctx context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["ResetMonthly"]++
	if m.ResetError != nil {
		return false, m.ResetError
	}
	a, ok := m.Accounts[id]
	if !ok {
		return false, account.ErrNotFound
	}
	if a.MonthlyUsageResetAt != nil && !a.MonthlyUsageResetAt.Before(account.StartOfMonth(at)) {
		return false, nil
	}
	a.MonthlyUsageCount = 0
	a.MonthlyUsageResetAt = &at
	a.UpdatedAt = m.Now()
	return true, nil
}

func (m *MockAccountRepository) Update(ctx context.Context, id string, p account.Patch) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["Update"]++
	if m.UpdateError != nil {
		return nil, m.UpdateError
	}
	stored, ok := m.Accounts[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	if p.RequireTier != nil && stored.Tier != *p.RequireTier {
		return nil, account.ErrStateChanged
	}

	// derived values read the row as it was before the patch
	before := stored.Clone()
	a := stored

	if p.Tier != nil {
		a.Tier = *p.Tier
	}
	if p.ClearSubscription {
		a.SubscriptionStatus = account.SubscriptionNone
		a.SubscriptionStartDate = nil
		a.SubscriptionEndDate = nil
		a.PaymentReference = ""
	} else {
		if p.SubscriptionStatus != nil {
			a.SubscriptionStatus = *p.SubscriptionStatus
		}
		if p.SubscriptionStartDate != nil {
			a.SubscriptionStartDate = TimePtr(*p.SubscriptionStartDate)
		}
		if p.SubscriptionEndDate != nil {
			a.SubscriptionEndDate = TimePtr(*p.SubscriptionEndDate)
		}
		if p.PaymentReference != nil {
			a.PaymentReference = *p.PaymentReference
		}
	}

	switch {
	case p.DailyUsageCount != nil:
		a.DailyUsageCount = *p.DailyUsageCount
	case p.CapDailyUsage != nil:
		if before.DailyUsageCount > *p.CapDailyUsage {
			a.DailyUsageCount = *p.CapDailyUsage
		}
	}
	if p.DailyUsageResetAt != nil {
		a.DailyUsageResetAt = *p.DailyUsageResetAt
	}
	if p.MonthlyUsageCount != nil {
		a.MonthlyUsageCount = *p.MonthlyUsageCount
	}
	if p.MonthlyUsageResetAt != nil {
		a.MonthlyUsageResetAt = TimePtr(*p.MonthlyUsageResetAt)
	}

	switch {
	case p.RestoreFrozen:
		a.RestoredCredits = before.FrozenCredits
		a.FrozenCredits = 0
	default:
		switch {
		case p.FreezeUnused != nil:
			a.FrozenCredits = p.FreezeUnused.UnusedMonthly(before)
		case p.FrozenCredits != nil:
			a.FrozenCredits = *p.FrozenCredits
		}
		if p.RestoredCredits != nil {
			a.RestoredCredits = *p.RestoredCredits
		}
	}

	a.UpdatedAt = m.Now()
	return a.Clone(), nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*account.Account, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["List"]++
	if m.ListError != nil {
		return nil, 0, m.ListError
	}
	all := m.sorted(func(*account.Account) bool { return true })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *MockAccountRepository) ListFreeWithUsage(ctx context.Context) ([]*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["ListFreeWithUsage"]++
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.sorted(func(a *account.Account) bool {
		return a.Tier == account.TierFree && a.DailyUsageCount > 0
	}), nil
}

func (m *MockAccountRepository) ListExpired(ctx context.Context, now time.Time) ([]*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["ListExpired"]++
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.sorted(func(a *account.Account) bool { return a.IsExpired(now) }), nil
}

func (m *MockAccountRepository) sorted(keep func(*account.Account) bool) []*account.Account {
	var out []*account.Account
	for _, a := range m.Accounts {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MockPaymentStore records processed payment references in memory
type MockPaymentStore struct {
	mu        sync.Mutex
	Processed map[string]account.PaymentConfirmation
	MarkError error
}

// NewMockPaymentStore creates an empty store
func NewMockPaymentStore() *MockPaymentStore {
	return &MockPaymentStore{Processed: make(map[string]account.PaymentConfirmation)}
}

func (m *MockPaymentStore) MarkProcessed(ctx context.Context, evt account.PaymentConfirmation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkError != nil {
		return false, m.MarkError
	}
	if _, seen := m.Processed[evt.PaymentReference]; seen {
		return false, nil
	}
	m.Processed[evt.PaymentReference] = evt
	return true, nil
}

func (m *MockPaymentStore) Release(ctx context.Context, paymentRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Processed, paymentRef)
	return nil
}

// MockAssistant returns canned AI answers
type MockAssistant struct {
	mu          sync.Mutex
	Category    string
	Suggestions []string
	Err         error
	Calls       int
}

func (m *MockAssistant) Categorize(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	return m.Category, nil
}

func (m *MockAssistant) Suggest(ctx context.Context, text string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Suggestions, nil
}

func (m *MockAssistant) Name() string {
	return "mock"
}
