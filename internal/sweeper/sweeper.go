package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/resource-booking-backend/internal/config"
	"github.com/nekogravitycat/resource-booking-backend/internal/logger"
)

// jobTimeout bounds a single sweep run.
const jobTimeout = 2 * time.Minute

// Jobs is the set of periodic booking maintenance tasks.
type Jobs interface {
	CompletePast(ctx context.Context, now time.Time) (int64, error)
	SendReminders(ctx context.Context, now time.Time) (int, error)
	SendDailySummary(ctx context.Context, today time.Time) (int, error)
}

// Scheduler runs Jobs on cron schedules. Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron *cron.Cron
	jobs Jobs
	now  func() time.Time
}

// New registers every job whose cron spec is non-empty. Specs use the standard
// five-field format and are evaluated in loc.
func New(jobs Jobs, cfg config.SweepConfig, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}

	l := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		jobs: jobs,
		now:  time.Now,
	}

	specs := []struct {
		name string
		spec string
		run  func(ctx context.Context)
	}{
		{"complete_past", cfg.CompleteCron, s.completePast},
		{"reminders", cfg.ReminderCron, s.sendReminders},
		{"daily_summary", cfg.SummaryCron, s.sendDailySummary},
	}
	for _, j := range specs {
		if j.spec == "" {
			log.Info().Str("job", j.name).Msg("sweep job disabled")
			continue
		}
		run := j.run
		if _, err := s.cron.AddFunc(j.spec, func() { s.runJob(run) }); err != nil {
			return nil, fmt.Errorf("invalid cron spec %q for %s: %w", j.spec, j.name, err)
		}
	}

	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("sweeper started")
}

// Stop prevents new runs and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		log.Info().Msg("sweeper stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sweeper did not stop in time: %w", ctx.Err())
	}
}

func (s *Scheduler) runJob(run func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	run(ctx)
}

func (s *Scheduler) completePast(ctx context.Context) {
	n, err := s.jobs.CompletePast(ctx, s.now())
	if err != nil {
		logger.ErrorWithStack(err).Msg("complete past bookings failed")
		return
	}
	log.Debug().Int64("count", n).Msg("complete past bookings finished")
}

func (s *Scheduler) sendReminders(ctx context.Context) {
	n, err := s.jobs.SendReminders(ctx, s.now())
	if err != nil {
		logger.ErrorWithStack(err).Msg("booking reminders failed")
		return
	}
	log.Debug().Int("sent", n).Msg("booking reminders finished")
}

func (s *Scheduler) sendDailySummary(ctx context.Context) {
	n, err := s.jobs.SendDailySummary(ctx, s.now())
	if err != nil {
		logger.ErrorWithStack(err).Msg("daily summary failed")
		return
	}
	log.Info().Int("sent", n).Msg("daily summary finished")
}

// cronLogger forwards cron's internal logging to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
