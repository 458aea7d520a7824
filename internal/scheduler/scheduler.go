package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"partpulse/internal/logger"
)

// Job is one scheduled unit of work. Returned errors are logged and never
// stop the schedule.
type Job func(ctx context.Context) error

type Service struct {
	expr       string
	runOnStart bool
	job        Job
	log        *slog.Logger
}

func NewService(expr string, runOnStart bool, job Job, log *slog.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{expr: expr, runOnStart: runOnStart, job: job, log: log}
}

// Run fires the job on every schedule tick until ctx is done. A tick that
// arrives while the previous one is still running is skipped. Run returns
// only after every started job has finished.
func (s *Service) Run(ctx context.Context) error {
	schedule, err := cron.ParseStandard(s.expr)
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", s.expr, err)
	}

	clog := cronLogger{log: s.log}
	job := cron.NewChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)).
		Then(cron.FuncJob(func() { s.tick(ctx) }))

	c := cron.New(cron.WithLogger(clog))
	id := c.Schedule(schedule, job)
	c.Start()
	s.log.Info("scheduler started", "schedule", s.expr, "next", c.Entry(id).Next)

	var eager sync.WaitGroup
	if s.runOnStart {
		eager.Add(1)
		go func() {
			defer eager.Done()
			job.Run()
		}()
	}

	<-ctx.Done()
	s.log.Info("scheduler stopping")
	<-c.Stop().Done()
	eager.Wait()
	return nil
}

func (s *Service) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := s.job(ctx); err != nil {
		s.log.Error("scheduled run failed", "error", err, "took", time.Since(start))
		return
	}
	s.log.Info("scheduled run finished", "took", time.Since(start))
}

type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
