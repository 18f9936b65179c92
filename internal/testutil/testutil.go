package testutil

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/repository/postgres"
	"github.com/pratik-mahalle/tasknest/migrations"
	_ "modernc.org/sqlite"
)

// NewTestDB creates an in-memory SQLite database with the full schema applied
func NewTestDB(t *testing.T) *postgres.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// every connection to :memory: gets its own database
	sqlDB.SetMaxOpenConns(1)

	db := postgres.Wrap(sqlDB, postgres.DialectSQLite)
	if err := postgres.RunMigrations(db, migrations.Files); err != nil {
		sqlDB.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { CleanupDB(db) })
	return db
}

// CleanupDB closes the test database
func CleanupDB(db *postgres.DB) {
	if db != nil {
		db.Close()
	}
}

// Epoch is a fixed whole-second instant used by tests
var Epoch = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

// Clock is a settable time source
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock stopped at now
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fake time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// ManualTimer is a timer that only fires when told to
type ManualTimer struct {
	Delay   time.Duration
	fn      func()
	owner   *ManualTimers
	stopped bool
	fired   bool
}

// Stop prevents the timer from firing. It reports whether the timer was pending.
func (t *ManualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Pending reports whether the timer can still fire
func (t *ManualTimer) Pending() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	return !t.stopped && !t.fired
}

// Fire runs the callback synchronously if the timer is still pending
func (t *ManualTimer) Fire() bool {
	t.owner.mu.Lock()
	if t.stopped || t.fired {
		t.owner.mu.Unlock()
		return false
	}
	t.fired = true
	fn := t.fn
	t.owner.mu.Unlock()

	fn()
	return true
}

// ManualTimers records every timer created through AfterFunc
type ManualTimers struct {
	mu     sync.Mutex
	timers []*ManualTimer
}

// NewManualTimers creates an empty timer factory
func NewManualTimers() *ManualTimers {
	return &ManualTimers{}
}

// AfterFunc creates a pending timer
func (m *ManualTimers) AfterFunc(d time.Duration, fn func()) *ManualTimer {
	t := &ManualTimer{Delay: d, fn: fn, owner: m}
	m.mu.Lock()
	m.timers = append(m.timers, t)
	m.mu.Unlock()
	return t
}

// Created returns the number of timers created so far
func (m *ManualTimers) Created() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Last returns the most recently created timer, or nil
func (m *ManualTimers) Last() *ManualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.timers) == 0 {
		return nil
	}
	return m.timers[len(m.timers)-1]
}

// Pending returns all timers that can still fire
func (m *ManualTimers) Pending() []*ManualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ManualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// FirePending fires every pending timer once and returns how many fired
func (m *ManualTimers) FirePending() int {
	n := 0
	for _, t := range m.Pending() {
		if t.Fire() {
			n++
		}
	}
	return n
}

// SeedAccount stores a copy of a in repo, failing the test on error
func SeedAccount(t *testing.T, repo account.Repository, a *account.Account) *account.Account {
	t.Helper()
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("Failed to seed account %s: %v", a.ID, err)
	}
	return a
}

// TimePtr returns a pointer to t
func TimePtr(t time.Time) *time.Time {
	return &t
}
