package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/environmental-risk-aggregation/internal/logger"
)

// DefaultInterval applies when no positive interval is configured.
const DefaultInterval = 60 * time.Second

// Refresher runs one refresh cycle.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler periodically runs refresh cycles. Runs are not serialized; a slow cycle
// may overlap the next one.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	timeout   time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	job      *gocron.Job
	interval time.Duration
}

// New creates a new Scheduler. timeout bounds each cycle.
func New(refresher Refresher, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		timeout:   timeout,
		logger:    logger,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The first
// cycle runs immediately.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.schedule(s.interval); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Reschedule replaces the job with one running every interval.
func (s *Scheduler) Reschedule(interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if interval == s.interval && s.job != nil {
		return nil
	}
	if s.job != nil {
		s.scheduler.RemoveByReference(s.job)
		s.job = nil
	}
	s.interval = interval
	s.logger.Info("scheduler: refresh interval changed", "interval", interval)
	return s.schedule(interval)
}

// Interval returns the current refresh period.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Scheduler) schedule(interval time.Duration) error {
	job, err := s.scheduler.Every(interval).Do(s.run)
	if err != nil {
		return err
	}
	s.job = job
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Debug("scheduler: running refresh job")
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Warn("scheduler: refresh failed", logger.Err(err))
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
