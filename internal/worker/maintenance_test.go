package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
)

type fakeSweeps struct {
	mu        sync.Mutex
	expiredAt []time.Time
	resets    int
	err       error
}

func (f *fakeSweeps) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expiredAt = append(f.expiredAt, now)
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

func (f *fakeSweeps) ResetDue(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	if f.err != nil {
		return 1, f.err
	}
	return 5, nil
}

func newTestMaintenance(sweeps *fakeSweeps, expiry, reset string) *Maintenance {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewMaintenance(sweeps, sweeps, expiry, reset, log)
}

func TestMaintenance_RunSweeps(t *testing.T) {
	sweeps := &fakeSweeps{}
	m := newTestMaintenance(sweeps, "@every 1h", "@every 1h")
	fixed := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	if n := m.RunExpirySweep(context.Background()); n != 2 {
		t.Errorf("RunExpirySweep() = %d, want 2", n)
	}
	if len(sweeps.expiredAt) != 1 || !sweeps.expiredAt[0].Equal(fixed) {
		t.Errorf("SweepExpired called with %v", sweeps.expiredAt)
	}
	if n := m.RunResetSweep(context.Background()); n != 5 {
		t.Errorf("RunResetSweep() = %d, want 5", n)
	}

	sweeps.err = errors.New("database is locked")
	if n := m.RunExpirySweep(context.Background()); n != 0 {
		t.Errorf("RunExpirySweep() = %d after failure, want 0", n)
	}
	if n := m.RunResetSweep(context.Background()); n != 1 {
		t.Errorf("RunResetSweep() = %d after failure, want partial count 1", n)
	}
}

func TestMaintenance_StartStop(t *testing.T) {
	m := newTestMaintenance(&fakeSweeps{}, "@every 1h", "*/15 * * * *")

	if m.IsRunning() {
		t.Fatal("new worker must not be running")
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !m.IsRunning() {
		t.Error("worker should be running after Start")
	}
	if err := m.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}

	m.Stop()
	if m.IsRunning() {
		t.Error("worker should be stopped")
	}
	// stopping twice is harmless
	m.Stop()
}

func TestMaintenance_InvalidSchedule(t *testing.T) {
	tests := []struct {
		name   string
		expiry string
		reset  string
	}{
		{"bad expiry schedule", "every hour", "@every 1h"},
		{"bad reset schedule", "@every 1h", "61 * * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMaintenance(&fakeSweeps{}, tt.expiry, tt.reset)
			if err := m.Start(context.Background()); err == nil {
				t.Error("Start() expected error")
			}
			if m.IsRunning() {
				t.Error("worker must not run with an invalid schedule")
			}
		})
	}
}

func TestMaintenance_CronRunsSweeps(t *testing.T) {
	sweeps := &fakeSweeps{}
	m := newTestMaintenance(sweeps, "@every 1s", "@every 1s")

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer m.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		sweeps.mu.Lock()
		done := len(sweeps.expiredAt) > 0 && sweeps.resets > 0
		sweeps.mu.Unlock()
		if done {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Error("cron did not run both sweeps")
}
