package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ExpirySweeper downgrades accounts whose subscription has ended
type ExpirySweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// DueResetter resets daily counters whose window has elapsed
type DueResetter interface {
	ResetDue(ctx context.Context) (int, error)
}

// Maintenance runs the periodic account sweeps on cron schedules
type Maintenance struct {
	expiry         ExpirySweeper
	resets         DueResetter
	expirySchedule string
	resetSchedule  string
	now            func() time.Time
	logger         *logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	ctx     context.Context
	running bool
}

// NewMaintenance creates a new maintenance worker
func NewMaintenance(
	expiry ExpirySweeper,
	resets DueResetter,
	expirySchedule, resetSchedule string,
	log *logger.Logger,
) *Maintenance {
	return &Maintenance{
		expiry:         expiry,
		resets:         resets,
		expirySchedule: expirySchedule,
		resetSchedule:  resetSchedule,
		now:            time.Now,
		logger:         log,
	}
}

// Start registers both sweeps and starts the cron scheduler
func (m *Maintenance) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("maintenance worker is already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(m.expirySchedule, func() { m.RunExpirySweep(m.context()) }); err != nil {
		return fmt.Errorf("invalid expiry sweep schedule %q: %w", m.expirySchedule, err)
	}
	if _, err := c.AddFunc(m.resetSchedule, func() { m.RunResetSweep(m.context()) }); err != nil {
		return fmt.Errorf("invalid reset sweep schedule %q: %w", m.resetSchedule, err)
	}

	m.cron = c
	m.ctx = ctx
	m.running = true
	c.Start()

	m.logger.WithFields(map[string]interface{}{
		"expiry_schedule": m.expirySchedule,
		"reset_schedule":  m.resetSchedule,
	}).Info("Maintenance worker started")

	return nil
}

func (m *Maintenance) context() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

// Stop stops scheduling and waits for running sweeps to finish
func (m *Maintenance) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	c := m.cron
	m.running = false
	m.mu.Unlock()

	<-c.Stop().Done()
	m.logger.Info("Maintenance worker stopped")
}

// IsRunning returns whether the worker is running
func (m *Maintenance) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// RunExpirySweep downgrades expired subscriptions once
func (m *Maintenance) RunExpirySweep(ctx context.Context) int {
	n, err := m.expiry.SweepExpired(ctx, m.now())
	if err != nil {
		m.logger.ErrorWithErr(err, "Expiry sweep failed")
		return n
	}
	m.logger.With("expired", n).Debug("Expiry sweep completed")
	return n
}

// RunResetSweep resets overdue daily counters once
func (m *Maintenance) RunResetSweep(ctx context.Context) int {
	n, err := m.resets.ResetDue(ctx)
	if err != nil {
		m.logger.ErrorWithErr(err, "Daily reset sweep failed")
		return n
	}
	m.logger.With("reset", n).Debug("Daily reset sweep completed")
	return n
}
