package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	robfig "github.com/robfig/cron/v3"
)

// Job represents a scheduled job. Interval jobs run on start and then every
// Interval; daily jobs (Daily set) run at a wall-clock time in Location.
type Job struct {
	Name     string
	Interval time.Duration
	Daily    *ClockTime
	Location *time.Location
	Fn       func(ctx context.Context) error
}

// ClockTime is a time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// Scheduler manages scheduled jobs. Daily jobs run on a robfig/cron engine
// that skips a trigger while the previous run is still going.
type Scheduler struct {
	jobs   []Job
	cron   *robfig.Cron
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a new cron scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	logger := slogLogger{}
	return &Scheduler{
		jobs: make([]Job, 0),
		cron: robfig.New(
			robfig.WithLogger(logger),
			robfig.WithChain(robfig.SkipIfStillRunning(logger)),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// slogLogger adapts slog to the robfig/cron logger interface.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("Cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("Cron: "+msg, append(keysAndValues, "error", err)...)
}

// AddJob adds an interval job to the scheduler
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// AddDailyJob adds a job that fires once a day at hour:minute in loc.
func (s *Scheduler) AddDailyJob(name string, at ClockTime, loc *time.Location, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{
		Name:     name,
		Daily:    &at,
		Location: loc,
		Fn:       fn,
	})
	slog.Info("Cron job registered", "name", name, "at", at.String(), "zone", loc.String())
}

func (c ClockTime) String() string {
	return time.Date(0, 1, 1, c.Hour, c.Minute, 0, 0, time.UTC).Format("15:04")
}

// dailySchedule is the "MM HH * * *" cron schedule for at, evaluated in loc.
func dailySchedule(at ClockTime, loc *time.Location) (*robfig.SpecSchedule, error) {
	parsed, err := robfig.ParseStandard(fmt.Sprintf("%d %d * * *", at.Minute, at.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to parse daily schedule %s: %w", at, err)
	}
	spec := parsed.(*robfig.SpecSchedule)
	if loc != nil {
		spec.Location = loc
	}
	return spec, nil
}

// NextDailyRun returns the first hour:minute in loc strictly after now.
func NextDailyRun(now time.Time, at ClockTime, loc *time.Location) time.Time {
	spec, err := dailySchedule(at, loc)
	if err != nil {
		return time.Time{}
	}
	return spec.Next(now)
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		if job.Daily == nil {
			s.wg.Add(1)
			go s.runJob(job)
			continue
		}

		spec, err := dailySchedule(*job.Daily, job.Location)
		if err != nil {
			slog.Error("Cron job not scheduled", "name", job.Name, "error", err)
			continue
		}
		s.cron.Schedule(spec, robfig.FuncJob(func() { s.executeJob(job) }))
	}
	s.cron.Start()

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops all scheduled jobs and waits for running ones.
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// runJob runs a single job on its schedule
func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.executeJob(job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.executeJob(job)
		}
	}
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(job Job) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	if err := job.Fn(s.ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
}

// RunOnce runs all jobs once, in registration order (useful for testing)
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		if err := job.Fn(ctx); err != nil {
			slog.Error("Cron job failed", "name", job.Name, "error", err)
		}
	}
}

// Jobs returns the registered jobs.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Job(nil), s.jobs...)
}
