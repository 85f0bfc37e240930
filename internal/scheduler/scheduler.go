// Package scheduler runs the pipeline's background sweeps on cron specs
// and fixed intervals.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/metrics"
)

// Job is one schedulable unit of work. Run is invoked with the scheduler's
// context and should return rather than retry internally; the schedule is
// the retry.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type cronEntry struct {
	spec string
	job  Job
}

type intervalEntry struct {
	every time.Duration
	job   Job
}

// Scheduler manages the background jobs: cron-scheduled sweeps plus
// interval tickers. Register jobs before Start; registration after Start
// is not supported.
type Scheduler struct {
	cron      *cron.Cron
	cronJobs  []cronEntry
	intervals []intervalEntry
	tickers   []*time.Ticker
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// AddCron registers a job on a standard five-field cron spec.
func (s *Scheduler) AddCron(spec string, job Job) {
	s.cronJobs = append(s.cronJobs, cronEntry{spec: spec, job: job})
}

// AddInterval registers a job on a fixed interval. The first run happens
// one interval after Start, not immediately.
func (s *Scheduler) AddInterval(every time.Duration, job Job) {
	s.intervals = append(s.intervals, intervalEntry{every: every, job: job})
}

// Start schedules the registered jobs and returns. Jobs run until Stop or
// until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().
		Int("cron_jobs", len(s.cronJobs)).
		Int("interval_jobs", len(s.intervals)).
		Msg("Scheduler starting...")

	for _, entry := range s.cronJobs {
		entry := entry
		if _, err := s.cron.AddFunc(entry.spec, func() {
			s.runJob(ctx, entry.job)
		}); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", entry.job.Name, err)
		}
		log.Info().
			Str("job", entry.job.Name).
			Str("schedule", entry.spec).
			Msg("Cron job scheduled")
	}
	s.cron.Start()

	for _, entry := range s.intervals {
		ticker := time.NewTicker(entry.every)
		s.tickers = append(s.tickers, ticker)
		s.wg.Add(1)
		go s.runInterval(ctx, ticker, entry.job)
		log.Info().
			Str("job", entry.job.Name).
			Dur("interval", entry.every).
			Msg("Interval job started")
	}

	return nil
}

// Stop stops the cron scheduler and the interval tickers and waits for
// interval goroutines to exit. In-flight job runs are not interrupted.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}
	for _, ticker := range s.tickers {
		ticker.Stop()
	}

	close(s.stopChan)
	s.wg.Wait()
	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) runInterval(ctx context.Context, ticker *time.Ticker, job Job) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("job", job.Name).Msg("Context cancelled, stopping interval job")
			return
		case <-s.stopChan:
			log.Info().Str("job", job.Name).Msg("Stop signal received, stopping interval job")
			return
		case <-ticker.C:
			s.runJob(ctx, job)
		}
	}
}

// runJob executes one run under a fresh run ID for log correlation. Panics
// are recovered and recorded so a bad sweep never takes the worker down.
func (s *Scheduler) runJob(ctx context.Context, job Job) {
	runID := uuid.NewString()
	logger := log.With().Str("job", job.Name).Str("run_id", runID).Logger()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			metrics.RecordSweep(job.Name, "panic", time.Since(start).Seconds())
			logger.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Job panicked")
		}
	}()

	logger.Info().Msg("Job starting")

	if err := job.Run(ctx); err != nil {
		metrics.RecordSweep(job.Name, "error", time.Since(start).Seconds())
		logger.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("Job failed")
		return
	}

	metrics.RecordSweep(job.Name, "success", time.Since(start).Seconds())
	logger.Info().
		Dur("duration", time.Since(start)).
		Msg("Job complete")
}
