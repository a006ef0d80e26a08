package usecase

import (
	"context"
	"time"

	"github.com/nurefexc/rss-bridge-ntfy/internal/ports"
)

// Scheduler wires the run driver with the cycle orchestrator.
type Scheduler struct {
	driver ports.Scheduler
	runner *Runner
}

// NewScheduler returns a helper to start/stop recurring cycles.
func NewScheduler(driver ports.Scheduler, runner *Runner) *Scheduler {
	return &Scheduler{driver: driver, runner: runner}
}

// Start registers the cycle with the provided driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}

	job := func(_ time.Time) {
		s.runner.SafeCycle(ctx)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
