// Package scheduler runs the collection pipeline periodically.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/intelscope/intelscope/pkg/processor"
)

// Runner executes one collection pass
type Runner interface {
	Run(ctx context.Context) (*processor.Result, error)
}

// Scheduler triggers a runner on a fixed interval, starting with an
// immediate run
type Scheduler struct {
	runner   Runner
	interval time.Duration
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

// NewScheduler creates a scheduler; a zero interval defaults to 6 hours
func NewScheduler(runner Runner, interval time.Duration) *Scheduler {
	if interval == 0 {
		interval = 6 * time.Hour
	}
	return &Scheduler{runner: runner, interval: interval}
}

// Start begins periodic runs until the context is canceled or Stop is
// called
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.worker(ctx)

	lgr.Printf("[INFO] scheduler started with interval %v", s.interval)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// run immediately on start
	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	result, err := s.runner.Run(ctx)
	if err != nil {
		lgr.Printf("[ERROR] collection run failed: %v", err)
		return
	}
	lgr.Printf("[INFO] scheduled run produced %d articles in %s", result.Total, result.ReportPath)
}
