package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/amishk599/vacancydb/internal/model"
)

// Runner performs one full refresh.
type Runner interface {
	Run(ctx context.Context) (model.RunSummary, error)
}

// Scheduler repeats a Runner on a cron schedule. Runs never overlap: a tick
// that fires while the previous run is still going is skipped.
type Scheduler struct {
	spec   string
	runner Runner
	logger *slog.Logger
}

// NewScheduler creates a scheduler for spec, a standard 5-field cron
// expression or a descriptor such as "@every 6h".
func NewScheduler(spec string, runner Runner, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		spec:   spec,
		runner: runner,
		logger: logger,
	}
}

// Run executes one immediate refresh, then hands over to cron until ctx is
// cancelled. It returns nil on graceful shutdown.
func (s *Scheduler) Run(ctx context.Context) error {
	schedule, err := cron.ParseStandard(s.spec)
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", s.spec, err)
	}

	cl := cronLogger{s.logger}
	c := cron.New(cron.WithLogger(cl))
	job := cron.NewChain(cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() {
		s.runOnce(ctx)
	}))
	c.Schedule(schedule, job)

	s.logger.Info("starting scheduler", "schedule", s.spec)

	// Run one immediate cycle before the first tick.
	job.Run()

	c.Start()
	<-ctx.Done()

	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.runner.Run(ctx); err != nil {
		s.logger.Error("scheduled run failed", "error", err)
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
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
