// Package scheduler runs periodic value scans on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-better/internal/logger"
	"github.com/yourusername/value-better/internal/metrics"
)

// Scan status labels
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Job is one scan run. The context carries the per-run timeout.
type Job func(ctx context.Context) error

var (
	ErrRunning = errors.New("scheduler is already running")
	ErrNoJobs  = errors.New("no jobs scheduled")
)

// RunResult is the outcome of the last run of a job
type RunResult struct {
	Name     string
	Started  time.Time
	Duration time.Duration
	Err      error
}

// Scheduler manages scheduled scan jobs
type Scheduler struct {
	cron            *cron.Cron
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	last            *RunResult
	gracefulTimeout time.Duration
	onRun           func(RunResult)
	baseCtx         context.Context
}

// NewScheduler creates a new scheduler. Overlapping runs of a job are skipped.
func NewScheduler(log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logger.Discard()
	}
	entry := log.WithField("component", "scheduler")
	cl := cronLogger{entry}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:          entry,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
		baseCtx:         context.Background(),
	}
}

// OnRun registers a callback invoked after every run
func (s *Scheduler) OnRun(fn func(RunResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRun = fn
}

// ScheduleScan adds a job on a standard five-field cron expression or a descriptor
// such as "@every 15m". Each run is bounded by timeout when it is positive.
func (s *Scheduler) ScheduleScan(cronExpression, name string, timeout time.Duration, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		s.RunNow(s.baseContext(), name, timeout, job)
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{"job": name, "cron": cronExpression}).Info("Scheduled scan job")

	return nil
}

// RunNow runs job once, synchronously, recording its metrics and result
func (s *Scheduler) RunNow(ctx context.Context, name string, timeout time.Duration, job Job) RunResult {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result := RunResult{Name: name, Started: time.Now()}
	result.Err = job(ctx)
	result.Duration = time.Since(result.Started)

	entry := s.logger.WithFields(logrus.Fields{
		"job":         name,
		"duration_ms": result.Duration.Milliseconds(),
	})
	if result.Err != nil {
		metrics.RecordScheduledScan(StatusError)
		entry.WithError(result.Err).Error("Scheduled scan failed")
	} else {
		metrics.RecordScheduledScan(StatusSuccess)
		entry.Info("Scheduled scan completed")
	}

	s.mu.Lock()
	s.last = &result
	onRun := s.onRun
	s.mu.Unlock()

	if onRun != nil {
		onRun(result)
	}
	return result
}

// LastRun returns the most recent run, if any
func (s *Scheduler) LastRun() (RunResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return RunResult{}, false
	}
	return *s.last, true
}

// Start starts the scheduler. Scheduled runs derive their context from ctx, so
// cancelling it cancels any run in flight.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return ErrRunning
	}

	if len(s.jobIDs) == 0 {
		return ErrNoJobs
	}

	s.baseCtx = ctx
	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for running jobs up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("timed out waiting for running jobs after %s", s.gracefulTimeout)
	}
}

func (s *Scheduler) baseContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseCtx
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) fields(keysAndValues []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.entry.WithFields(fields)
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).WithError(err).Error(msg)
}
