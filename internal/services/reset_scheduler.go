package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
	"github.com/pratik-mahalle/tasknest/internal/pkg/metrics"
)

// Timer is a cancellable one-shot callback
type Timer interface {
	Stop() bool
}

// TimerFunc schedules fn to run once after d
type TimerFunc func(d time.Duration, fn func()) Timer

// AfterFunc is the TimerFunc backed by time.AfterFunc
func AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

type pendingReset struct {
	timer Timer
	gen   uint64
}

// ResetScheduler keeps one daily reset timer per free-tier account.
// Timers re-arm themselves after every successful reset until the account
// is no longer on the free tier when the timer fires.
type ResetScheduler struct {
	repo      account.Repository
	interval  time.Duration
	afterFunc TimerFunc
	now       func() time.Time
	logger    *logger.Logger

	mu      sync.Mutex
	ctx     context.Context
	running bool
	gen     uint64
	pending map[string]pendingReset
}

// SchedulerOption customises a ResetScheduler
type SchedulerOption func(*ResetScheduler)

// WithTimerFunc replaces time.AfterFunc
func WithTimerFunc(fn TimerFunc) SchedulerOption {
	return func(s *ResetScheduler) { s.afterFunc = fn }
}

// WithSchedulerClock replaces time.Now
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *ResetScheduler) { s.now = now }
}

// NewResetScheduler creates a stopped scheduler
func NewResetScheduler(repo account.Repository, limits account.Limits, log *logger.Logger, opts ...SchedulerOption) *ResetScheduler {
	s := &ResetScheduler{
		repo:      repo,
		interval:  limits.DailyResetInterval,
		afterFunc: AfterFunc,
		now:       time.Now,
		logger:    log,
		ctx:       context.Background(),
		pending:   make(map[string]pendingReset),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start enables arming. ctx is used by timer callbacks until Stop.
func (s *ResetScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
	s.running = true
	s.logger.Info("Reset scheduler started")
}

// Stop cancels every pending timer. Arm is a no-op until the next Start.
func (s *ResetScheduler) Stop() {
	s.mu.Lock()
	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	metrics.SetArmedTimers(0)
	if wasRunning {
		s.logger.Info("Reset scheduler stopped")
	}
}

// Arm schedules a reset one interval from now, replacing any pending one
func (s *ResetScheduler) Arm(id string) {
	s.ArmAfter(id, s.interval)
}

// ArmAfter schedules a reset after d, replacing any pending one
func (s *ResetScheduler) ArmAfter(id string, d time.Duration) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.pending[id] = pendingReset{
		timer: s.afterFunc(d, func() { s.fire(id, gen) }),
		gen:   gen,
	}
	armed := len(s.pending)
	s.mu.Unlock()

	metrics.SetArmedTimers(armed)
}

// Cancel clears a pending reset without touching counters
func (s *ResetScheduler) Cancel(id string) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if ok {
		p.timer.Stop()
		delete(s.pending, id)
	}
	armed := len(s.pending)
	s.mu.Unlock()

	if ok {
		metrics.SetArmedTimers(armed)
	}
}

// IsArmed reports whether a reset is pending for id
func (s *ResetScheduler) IsArmed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	return ok
}

// Pending returns the sorted ids with an armed timer
func (s *ResetScheduler) Pending() []string {
	s.mu.Lock()
	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	sort.Strings(ids)
	return ids
}

func (s *ResetScheduler) fire(id string, gen uint64) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if !ok || p.gen != gen || !s.running {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	ctx := s.ctx
	armed := len(s.pending)
	s.mu.Unlock()

	metrics.SetArmedTimers(armed)

	log := s.logger.With("account_id", id)

	a, err := s.repo.Get(ctx, id)
	if err != nil {
		metrics.RecordResetFailure()
		log.WarnWithErr(err, "Daily reset skipped, failed to load account")
		return
	}

	now := s.now()
	if a.EffectiveTier(now) != account.TierFree {
		log.Debug("Account left the free tier, reset timer cleared")
		return
	}

	if err := s.repo.ResetDaily(ctx, id, now); err != nil {
		metrics.RecordResetFailure()
		log.WarnWithErr(err, "Daily reset failed, timer dropped")
		return
	}
	metrics.RecordDailyReset("timer")
	log.Debug("Daily usage reset")

	s.Arm(id)
}

// RecoverOnStartup re-arms timers for free-tier accounts with daily usage.
// Accounts whose reset is overdue are reset immediately and armed for a full
// interval. It returns the number of armed accounts.
func (s *ResetScheduler) RecoverOnStartup(ctx context.Context) (int, error) {
	accounts, err := s.repo.ListFreeWithUsage(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	armed, reset := 0, 0
	for _, a := range accounts {
		remaining := a.DailyUsageResetAt.Add(s.interval).Sub(now)
		if remaining > 0 {
			s.ArmAfter(a.ID, remaining)
			armed++
			continue
		}

		if err := s.repo.ResetDaily(ctx, a.ID, now); err != nil {
			metrics.RecordResetFailure()
			s.logger.With("account_id", a.ID).WarnWithErr(err, "Overdue daily reset failed during recovery")
			continue
		}
		metrics.RecordDailyReset("recovery")
		reset++
		s.Arm(a.ID)
		armed++
	}

	s.logger.WithFields(map[string]interface{}{
		"accounts": len(accounts),
		"armed":    armed,
		"reset":    reset,
	}).Info("Reset timers recovered")

	return armed, nil
}

// ResetDue resets every free-tier account whose daily window has elapsed
// and re-arms its timer. It covers timers lost to failures.
func (s *ResetScheduler) ResetDue(ctx context.Context) (int, error) {
	start := time.Now()

	accounts, err := s.repo.ListFreeWithUsage(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	cutoff := now.Add(-s.interval)
	n := 0
	for _, a := range accounts {
		if !a.DailyResetDue(now, s.interval) {
			if !s.IsArmed(a.ID) {
				s.ArmAfter(a.ID, a.DailyUsageResetAt.Add(s.interval).Sub(now))
			}
			continue
		}

		ok, err := s.repo.ResetDailyIfDue(ctx, a.ID, now, cutoff)
		if err != nil {
			metrics.RecordResetFailure()
			s.logger.With("account_id", a.ID).WarnWithErr(err, "Daily reset sweep failed for account")
			continue
		}
		if ok {
			metrics.RecordDailyReset("sweep")
			n++
		}
		s.Arm(a.ID)
	}

	metrics.RecordSweep("daily_reset", n, time.Since(start))
	return n, nil
}

var _ account.ResetScheduler = (*ResetScheduler)(nil)
