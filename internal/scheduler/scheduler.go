// Package scheduler runs periodic background tasks such as refreshing the
// status catalogs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultTaskTimeout bounds a single task run.
const DefaultTaskTimeout = 30 * time.Second

// Scheduler runs tasks on cron schedules. A task that is still running when
// its next tick arrives is skipped rather than run twice.
type Scheduler struct {
	cron     *cron.Cron
	timeout  time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

// New creates a new Scheduler.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		timeout: DefaultTaskTimeout,
		stop:    make(chan struct{}),
		logger:  logger,
	}
}

// SetTimeout overrides the per-run timeout.
func (s *Scheduler) SetTimeout(d time.Duration) {
	s.timeout = d
}

// Add registers fn under name to run on spec (standard five-field cron or a
// descriptor such as "@every 10m").
func (s *Scheduler) Add(name, spec string, fn func(context.Context) error) error {
	if _, err := s.cron.AddFunc(spec, func() { s.runTask(name, fn) }); err != nil {
		return fmt.Errorf("schedule %s with %q: %w", name, spec, err)
	}
	s.logger.Info("task scheduled", "task", name, "spec", spec)
	return nil
}

// Len returns the number of registered tasks.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start begins running scheduled tasks in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running tasks to finish. It is safe to
// call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.cron.Stop().Done()
	})
}

func (s *Scheduler) runTask(name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := fn(ctx); err != nil {
		s.logger.Error("scheduled task failed", "task", name, "error", err)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
