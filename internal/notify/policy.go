package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sandeepkv93/goodmorning/internal/calendar"
	"github.com/sandeepkv93/goodmorning/internal/model"
)

// Policy turns wake targets and alarm templates into notification bursts.
type Policy struct {
	notifier Notifier
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewPolicy(n Notifier, log *zap.SugaredLogger, now func() time.Time) *Policy {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if now == nil {
		now = time.Now
	}
	return &Policy{notifier: n, log: log, now: now}
}

// BurstOffsets returns the offsets of one burst from its first trigger.
func BurstOffsets() []time.Duration {
	out := make([]time.Duration, RepeatCount)
	for i := range out {
		out[i] = time.Duration(i*RepeatIntervalSeconds) * time.Second
	}
	return out
}

// Burst returns the instants of a burst starting at start. Offsets that cross
// midnight land on the following calendar day and weekday.
func Burst(start time.Time) []time.Time {
	out := make([]time.Time, 0, RepeatCount)
	for _, off := range BurstOffsets() {
		out = append(out, start.Add(off))
	}
	return out
}

// Schedule replaces previous with a fresh set of triggers for target and
// returns the new ids in emission order. Without notification permission it
// schedules nothing and returns an empty list.
func (p *Policy) Schedule(ctx context.Context, target model.WakeTarget, previous []string) ([]string, error) {
	p.cancelLogged(ctx, previous)

	ids := make([]string, 0, 8*RepeatCount)
	if !p.permitted(ctx) {
		p.log.Warnw("notification permission not granted; no alarms scheduled")
		return ids, nil
	}

	now := p.now()
	for day := time.Sunday; day <= time.Saturday; day++ {
		date := calendar.NextWeekday(now, day)
		at, ok := model.Resolve(target, date)
		if !ok {
			continue
		}
		start := upcoming(at.On(date), now, 7)
		episode := fmt.Sprintf("%s:%s", model.TargetAlarmID, strings.ToLower(calendar.ShortWeekday(day)))
		created, err := p.scheduleBurst(ctx, start, true, p.content(model.TargetAlarmID, "", episode))
		ids = append(ids, created...)
		if err != nil {
			return ids, err
		}
	}

	if target.NextOverride != nil {
		start := upcoming(target.NextOverride.Time.On(now), now, 1)
		episode := model.TargetAlarmID + ":next"
		created, err := p.scheduleBurst(ctx, start, false, p.content(model.TargetAlarmID, "", episode))
		ids = append(ids, created...)
		if err != nil {
			return ids, err
		}
	}

	p.log.Infow("wake target scheduled", "triggers", len(ids), "enabled", target.Enabled)
	return ids, nil
}

// ScheduleAlarm schedules a burst per repeat day. A one-time alarm gets one
// burst at ArmedAt, or at its next occurrence when it has not been armed, and
// nothing once that instant has passed.
func (p *Policy) ScheduleAlarm(ctx context.Context, alarm model.Alarm) ([]string, error) {
	p.cancelLogged(ctx, alarm.NotificationIDs)

	ids := make([]string, 0, (len(alarm.RepeatDays)+1)*RepeatCount)
	if !alarm.Enabled {
		return ids, nil
	}
	if !p.permitted(ctx) {
		p.log.Warnw("notification permission not granted; alarm not scheduled", "alarm_id", alarm.ID)
		return ids, nil
	}

	now := p.now()
	if alarm.Once() {
		start := alarm.NextOnce(now)
		if alarm.ArmedAt != nil {
			start = *alarm.ArmedAt
		}
		if start.Before(now) {
			p.log.Debugw("one-time alarm already passed; not scheduled", "alarm_id", alarm.ID, "armed_at", start)
			return ids, nil
		}
		return p.scheduleBurst(ctx, start, false, p.content(alarm.ID, alarm.Label, alarm.ID+":once"))
	}
	for _, day := range alarm.RepeatDays {
		date := calendar.NextWeekday(now, day)
		start := upcoming(alarm.Time.On(date), now, 7)
		episode := fmt.Sprintf("%s:%s", alarm.ID, strings.ToLower(calendar.ShortWeekday(day)))
		created, err := p.scheduleBurst(ctx, start, true, p.content(alarm.ID, alarm.Label, episode))
		ids = append(ids, created...)
		if err != nil {
			return ids, err
		}
	}
	return ids, nil
}

// CancelAll cancels every id independently and returns the combined failures.
func (p *Policy) CancelAll(ctx context.Context, ids []string) error {
	var errs error
	for _, id := range ids {
		if err := p.notifier.CancelTrigger(ctx, id); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("cancel %s: %w", id, err))
		}
	}
	return errs
}

func (p *Policy) cancelLogged(ctx context.Context, ids []string) {
	if err := p.CancelAll(ctx, ids); err != nil {
		p.log.Debugw("some triggers could not be cancelled",
			"failed", len(multierr.Errors(err)), "total", len(ids), "error", err)
	}
}

func (p *Policy) permitted(ctx context.Context) bool {
	if p.notifier.HasPermission(ctx) {
		return true
	}
	return p.notifier.RequestPermission(ctx)
}

func (p *Policy) scheduleBurst(ctx context.Context, start time.Time, weekly bool, content Content) ([]string, error) {
	ids := make([]string, 0, RepeatCount)
	for _, at := range Burst(start) {
		tr := Trigger{
			At:      at,
			Hour:    at.Hour(),
			Minute:  at.Minute(),
			Second:  at.Second(),
			Content: content,
		}
		if weekly {
			wd := at.Weekday()
			tr.Weekday = &wd
		}
		id, err := p.notifier.ScheduleTrigger(ctx, tr)
		if err != nil {
			return ids, fmt.Errorf("schedule trigger at %s: %w", at.Format(time.RFC3339), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (p *Policy) content(alarmID, label, episode string) Content {
	body := strings.TrimSpace(label)
	if body == "" {
		body = DefaultBody
	}
	return Content{
		Title:   DefaultTitle,
		Body:    body,
		Sound:   AlarmSound,
		AlarmID: alarmID,
		Episode: episode,
	}
}

// upcoming moves start forward in steps of days until it is not before now.
func upcoming(start, now time.Time, days int) time.Time {
	for start.Before(now) {
		start = start.AddDate(0, 0, days)
	}
	return start
}
