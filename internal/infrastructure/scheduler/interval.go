package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nurefexc/rss-bridge-ntfy/internal/ports"
)

// IntervalScheduler drives cycles on a fixed interval with an immediate
// first run, or on a cron expression when one is configured. The sleep is
// cancellation-aware so shutdown latency stays bounded.
type IntervalScheduler struct {
	interval time.Duration
	spec     string
	loc      *time.Location

	cron *cron.Cron
	stop chan struct{}
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// New builds a scheduler; spec, when non-empty, takes precedence over the
// fixed interval.
func New(interval time.Duration, spec string, loc *time.Location) *IntervalScheduler {
	if interval <= 0 {
		interval = 600 * time.Second
	}
	if loc == nil {
		loc = time.UTC
	}
	return &IntervalScheduler{interval: interval, spec: spec, loc: loc}
}

// Start begins running job; it returns immediately.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if s.stop != nil {
		return nil
	}
	s.stop = make(chan struct{})

	if s.spec != "" {
		c := cron.New(cron.WithLocation(s.loc))
		if _, err := c.AddFunc(s.spec, func() { job(time.Now().In(s.loc)) }); err != nil {
			s.stop = nil
			return fmt.Errorf("parse cron expression %q: %w", s.spec, err)
		}
		s.cron = c
		c.Start()
		return nil
	}

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		job(time.Now().In(s.loc))
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the driver; no new cycles start after it returns.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil

	if s.cron != nil {
		stopCtx := s.cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
		s.cron = nil
	}

	return nil
}
