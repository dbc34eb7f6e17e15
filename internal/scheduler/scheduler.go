// Package scheduler drives the periodic ETL runs. It wraps gocron with
// cron-expression jobs defined in configuration, one per pipeline, each run
// bounded by a timeout.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is a named unit of scheduled work. Both ETL pipelines satisfy it via
// small adapter closures in the entry point.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to the Job interface.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name returns the job's name.
func (j JobFunc) Name() string { return j.JobName }

// Run invokes the wrapped function.
func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }

// Scheduler runs registered jobs on cron schedules.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	runTimeout time.Duration
	logger     *slog.Logger
}

// New creates a Scheduler. Every job run is bounded by runTimeout. A nil
// logger falls back to slog.Default.
func New(runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		runTimeout: runTimeout,
		logger:     logger,
	}
}

// Register schedules a job with a standard five-field cron expression.
func (s *Scheduler) Register(cronExpr string, job Job) error {
	_, err := s.scheduler.Cron(cronExpr).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()

		started := time.Now()
		s.logger.Info("scheduled job starting", slog.String("job", job.Name()))

		if err := job.Run(ctx); err != nil {
			s.logger.Error("scheduled job failed",
				slog.String("job", job.Name()),
				slog.String("error", err.Error()),
				slog.Duration("elapsed", time.Since(started)),
			)
			return
		}
		s.logger.Info("scheduled job complete",
			slog.String("job", job.Name()),
			slog.Duration("elapsed", time.Since(started)),
		)
	})
	return err
}

// Start begins executing scheduled jobs without blocking.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
