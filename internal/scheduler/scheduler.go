// Package scheduler enqueues periodic background tasks on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	JobBackup       = "backup"
	JobAuditCleanup = "audit_cleanup"

	// AuditCleanupSchedule runs retention cleanup daily at 04:00.
	AuditCleanupSchedule = "0 4 * * *"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Enqueuer hands a task to the background queue.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

type job struct {
	schedule string
	task     backlite.Task
	entryID  cron.EntryID
}

// Scheduler enqueues a fixed task each time its schedule fires. The work
// itself runs on the task queue, not on the cron goroutine.
type Scheduler struct {
	queue Enqueuer
	log   *zap.Logger
	cron  *cron.Cron

	mu        sync.RWMutex
	jobs      map[string]*job
	isRunning bool
}

func New(queue Enqueuer, log *zap.Logger) *Scheduler {
	return &Scheduler{
		queue: queue,
		log:   log,
		cron:  cron.New(cron.WithParser(parser)),
		jobs:  make(map[string]*job),
	}
}

// ValidateCronSchedule checks a standard five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// Add registers a named job. Adding a name twice replaces the earlier job.
func (s *Scheduler) Add(name, schedule string, task backlite.Task) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s' for %s: %w", schedule, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.jobs[name]; ok {
		s.cron.Remove(old.entryID)
	}

	entryID, err := s.cron.AddFunc(schedule, func() { s.enqueue(name) })
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.jobs[name] = &job{schedule: schedule, task: task, entryID: entryID}
	return nil
}

// Start runs the cron loop until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.cron.Start()
	s.isRunning = true
	names := s.jobNames()
	s.mu.Unlock()

	for _, name := range names {
		if next := s.NextRun(name); next != nil {
			s.log.Info("scheduled job", zap.String("job", name), zap.Time("next_run", *next))
		}
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop waits for running enqueue calls and stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	// a firing job takes the read lock, so wait outside it
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunNow enqueues the named job immediately.
func (s *Scheduler) RunNow(name string) (string, error) {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown job %q", name)
	}
	return s.queue.Enqueue(j.task)
}

// NextRun returns when the named job fires next, nil if unknown or stopped.
func (s *Scheduler) NextRun(name string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[name]
	if !ok || !s.isRunning {
		return nil
	}
	next := s.cron.Entry(j.entryID).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

// Jobs lists registered job names, sorted.
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobNames()
}

func (s *Scheduler) jobNames() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) enqueue(name string) {
	id, err := s.RunNow(name)
	if err != nil {
		s.log.Error("failed to enqueue scheduled job", zap.String("job", name), zap.Error(err))
		return
	}
	s.log.Info("enqueued scheduled job", zap.String("job", name), zap.String("task_id", id))
}
