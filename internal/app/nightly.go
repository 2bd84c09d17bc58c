package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sandeepkv93/goodmorning/internal/calendar"
	"github.com/sandeepkv93/goodmorning/internal/model"
)

const nightlyTimeout = 2 * time.Minute

// NightlyReport summarizes one maintenance pass.
type NightlyReport struct {
	Enriched int
	Missed   int
}

// RunNightly re-arms notifications, retries health enrichment for recent
// records, and optionally marks yesterday's unanswered alarms as missed.
// Enrichment failures are logged and never returned.
func (s *Service) RunNightly(ctx context.Context) (NightlyReport, error) {
	var report NightlyReport
	var errs error

	if err := s.Reschedule(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("reschedule: %w", err))
	}
	if err := s.Alarms.RescheduleAll(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("reschedule alarms: %w", err))
	}

	today := calendar.FormatDate(s.now())
	if s.health.IsAvailable(ctx) {
		since, err := calendar.AddDays(today, -enrichLookback)
		if err != nil {
			return report, err
		}
		for _, rec := range s.Records.PendingEnrichment(since) {
			ok, err := s.enrichRecord(ctx, rec)
			if err != nil {
				s.log.Debugw("wake record enrichment failed", "record_id", rec.ID, "error", err)
				continue
			}
			if ok {
				report.Enriched++
			}
		}
	}

	if s.markMissed {
		n, err := s.markMissedFor(ctx, today)
		report.Missed = n
		errs = multierr.Append(errs, err)
	}

	s.log.Infow("nightly maintenance finished", "enriched", report.Enriched, "missed", report.Missed, "error", errs)
	return report, errs
}

func (s *Service) markMissedFor(ctx context.Context, today string) (int, error) {
	yesterday, err := calendar.AddDays(today, -1)
	if err != nil {
		return 0, err
	}
	day, err := calendar.ParseDate(yesterday)
	if err != nil {
		return 0, err
	}

	marked := 0
	var errs error
	mark := func(alarmID, label string, at model.AlarmTime) {
		ok, err := s.Records.MarkMissed(ctx, alarmID, label, yesterday, at)
		if err != nil {
			errs = multierr.Append(errs, err)
			return
		}
		if ok {
			marked++
		}
	}

	if t, ok := s.Targets.Get(); ok && t.Enabled {
		if at, ok := model.Resolve(t, day); ok {
			mark(model.TargetAlarmID, "", at)
		}
	}
	for _, a := range s.Alarms.List() {
		if a.Enabled && slices.Contains(a.RepeatDays, day.Weekday()) {
			mark(a.ID, a.Label, a.Time)
		}
	}
	return marked, errs
}

// StartNightly registers RunNightly on a cron schedule. The returned cron
// must be stopped by the caller.
func (s *Service) StartNightly(schedule string) (*cron.Cron, error) {
	logger := cronLogger{log: s.log.Named("cron")}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), nightlyTimeout)
		defer cancel()
		if _, err := s.RunNightly(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warnw("nightly maintenance failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("add nightly job %q: %w", schedule, err)
	}
	s.log.Infow("nightly maintenance scheduled", "schedule", schedule)
	c.Start()
	return c, nil
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
