package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

func NewScheduler(loc *time.Location, logger zerolog.Logger) *Scheduler {
	adapter := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		logger: logger,
	}
}

// Add registers job under name with a standard five field cron spec.
func (s *Scheduler) Add(name, spec string, job Job) error {
	logger := s.logger.With().Str("job", name).Logger()
	_, err := s.cron.AddFunc(spec, func() {
		ctx := logger.WithContext(context.Background())
		start := time.Now()
		if err := job(ctx); err != nil {
			logger.Error().Err(err).Dur("took", time.Since(start)).Msg("job failed")
			return
		}
		logger.Info().Dur("took", time.Since(start)).Msg("job completed")
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	logger.Info().Str("spec", spec).Msg("job scheduled")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("scheduler stop timed out")
	}
}

// cronLogger routes cron's own messages through zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
