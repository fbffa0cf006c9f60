// Package jobs runs periodic maintenance tasks on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Task is a unit of periodic work. Run receives a context that is canceled when the scheduler stops.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// TaskFunc adapts a function to a Task.
type TaskFunc struct {
	TaskName string
	Fn       func(ctx context.Context) error
}

// Name returns the task name.
func (f TaskFunc) Name() string { return f.TaskName }

// Run calls the wrapped function.
func (f TaskFunc) Run(ctx context.Context) error { return f.Fn(ctx) }

// Scheduler runs registered tasks on cron schedules with six fields (seconds first).
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler. Overlapping runs of the same task are skipped.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scheduler")

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(
				cron.SkipIfStillRunning(cron.DiscardLogger),
				recoverWrapper(logger),
			),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register schedules task on schedule, e.g. "0 */30 * * * *".
func (s *Scheduler) Register(schedule string, task Task) error {
	_, err := s.cron.AddJob(schedule, &taskJob{task: task, ctx: s.ctx, logger: s.logger})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", task.Name(), err)
	}
	s.logger.Info("Registered periodic task", "task", task.Name(), "schedule", schedule)
	return nil
}

// RunNow executes task once, synchronously, with the same logging as scheduled runs.
func (s *Scheduler) RunNow(task Task) {
	(&taskJob{task: task, ctx: s.ctx, logger: s.logger}).Run()
}

// Start begins running scheduled tasks in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", "tasks", len(s.cron.Entries()))
}

// Stop cancels running tasks and waits for them to return, up to the deadline of ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown implements do.Shutdownable.
func (s *Scheduler) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Stop(ctx)
}

type taskJob struct {
	task   Task
	ctx    context.Context
	logger *slog.Logger
}

func (j *taskJob) Name() string { return j.task.Name() }

func (j *taskJob) Run() {
	log := j.logger.With(
		slog.String("task", j.task.Name()),
		slog.String("execution_id", uuid.NewString()),
	)
	start := time.Now()
	if err := j.task.Run(j.ctx); err != nil {
		log.Warn("Task failed", "error", err, "duration", time.Since(start))
		return
	}
	log.Debug("Task finished", "duration", time.Since(start))
}

func recoverWrapper(logger *slog.Logger) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			defer func() {
				if r := recover(); r != nil {
					name := "unknown"
					if named, ok := j.(interface{ Name() string }); ok {
						name = named.Name()
					}
					logger.Error("Task panicked",
						slog.String("task", name),
						slog.Any("panic", r),
						slog.String("stack_trace", string(debug.Stack())),
					)
				}
			}()
			j.Run()
		})
	}
}
