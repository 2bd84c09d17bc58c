package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/goodmorning/internal/alarm"
	"github.com/sandeepkv93/goodmorning/internal/calendar"
	"github.com/sandeepkv93/goodmorning/internal/health"
	"github.com/sandeepkv93/goodmorning/internal/model"
	"github.com/sandeepkv93/goodmorning/internal/notify"
	"github.com/sandeepkv93/goodmorning/internal/record"
	"github.com/sandeepkv93/goodmorning/internal/session"
	"github.com/sandeepkv93/goodmorning/internal/stats"
	"github.com/sandeepkv93/goodmorning/internal/storage"
	"github.com/sandeepkv93/goodmorning/internal/target"
)

var (
	ErrNotRinging        = errors.New("app: no alarm is ringing")
	ErrSessionIncomplete = errors.New("app: morning tasks are not all completed")
)

const (
	burstWindow    = time.Duration(notify.RepeatCount*notify.RepeatIntervalSeconds) * time.Second
	enrichTimeout  = 30 * time.Second
	enrichLookback = 7
)

type Options struct {
	KV         storage.KV
	Notifier   notify.Notifier
	Health     health.Source
	Logger     *zap.SugaredLogger
	Now        func() time.Time
	MarkMissed bool
}

// Ringing describes the alarm episode waiting to be dismissed.
type Ringing struct {
	AlarmID     string
	Episode     string
	Label       string
	TriggeredAt time.Time
}

// episodeMark remembers when an alarm last started ringing. Any trigger for
// the same alarm inside one burst window belongs to that ring, whichever
// burst (weekly or one-shot) it came from.
type episodeMark struct {
	alarmID   string
	startedAt time.Time
}

func (e episodeMark) covers(alarmID string, at time.Time) bool {
	if e.alarmID == "" || e.alarmID != alarmID {
		return false
	}
	since := at.Sub(e.startedAt)
	return since >= 0 && since <= burstWindow
}

// Service owns every store and runs the wake flow across them.
type Service struct {
	Targets  *target.Store
	Records  *record.Store
	Sessions *session.Store
	Alarms   *alarm.Store

	kv         storage.KV
	policy     *notify.Policy
	health     health.Source
	log        *zap.SugaredLogger
	now        func() time.Time
	markMissed bool

	mu              sync.Mutex
	notificationIDs []string
	ringing         *Ringing
	lastEpisode     episodeMark
	enrich          sync.WaitGroup
}

func NewService(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	src := opts.Health
	if src == nil {
		src = health.NoopSource{}
	}
	policy := notify.NewPolicy(opts.Notifier, log.Named("notify"), now)
	return &Service{
		Targets:    target.NewStore(opts.KV, log.Named("target")),
		Records:    record.NewStore(opts.KV, log.Named("record")),
		Sessions:   session.NewStore(opts.KV, log.Named("session"), now),
		Alarms:     alarm.NewStore(opts.KV, policy, log.Named("alarm"), now),
		kv:         opts.KV,
		policy:     policy,
		health:     src,
		log:        log,
		now:        now,
		markMissed: opts.MarkMissed,
	}
}

// Load reads every store, creates the default target on first launch, and
// re-arms all notifications.
func (s *Service) Load(ctx context.Context) error {
	if err := s.Targets.Load(ctx); err != nil {
		return err
	}
	if err := s.Records.Load(ctx); err != nil {
		return err
	}
	if err := s.Sessions.Load(ctx); err != nil {
		return err
	}
	if err := s.Alarms.Load(ctx); err != nil {
		return err
	}
	if err := s.loadNotificationIDs(ctx); err != nil {
		return err
	}
	if _, ok := s.Targets.Get(); !ok {
		if err := s.Targets.SetTarget(ctx, model.DefaultWakeTarget()); err != nil {
			return err
		}
		s.log.Infow("created default wake target")
	}
	if err := s.Reschedule(ctx); err != nil {
		return err
	}
	return s.Alarms.RescheduleAll(ctx)
}

func (s *Service) Target() (model.WakeTarget, bool) {
	return s.Targets.Get()
}

// EditTarget applies a persisted target mutation, then reschedules.
func (s *Service) EditTarget(ctx context.Context, edit func(context.Context, *target.Store) error) error {
	if err := edit(ctx, s.Targets); err != nil {
		return err
	}
	return s.Reschedule(ctx)
}

// Reschedule replaces the wake target triggers, or cancels them all when the
// target is disabled. The resulting ids are persisted even on partial failure.
func (s *Service) Reschedule(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rescheduleLocked(ctx)
}

func (s *Service) rescheduleLocked(ctx context.Context) error {
	t, ok := s.Targets.Get()
	if !ok {
		return nil
	}
	previous := s.notificationIDs
	var (
		ids []string
		err error
	)
	if t.Enabled {
		ids, err = s.policy.Schedule(ctx, t, previous)
	} else {
		if cancelErr := s.policy.CancelAll(ctx, previous); cancelErr != nil {
			s.log.Debugw("some triggers could not be cancelled", "error", cancelErr)
		}
		ids = []string{}
	}
	if saveErr := s.saveNotificationIDs(ctx, ids); saveErr != nil {
		return saveErr
	}
	return err
}

func (s *Service) NotificationIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notificationIDs...)
}

func (s *Service) Ringing() (Ringing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ringing == nil {
		return Ringing{}, false
	}
	return *s.ringing, true
}

// TriggerFired starts a wake cycle. Later triggers for the same alarm within
// one burst window are ignored and reported as false.
func (s *Service) TriggerFired(ctx context.Context, f notify.Fired) (Ringing, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.FiredAt.IsZero() {
		f.FiredAt = s.now()
	}
	if f.AlarmID == "" {
		f.AlarmID = model.TargetAlarmID
	}
	if s.lastEpisode.covers(f.AlarmID, f.FiredAt) {
		if s.ringing != nil {
			return *s.ringing, false, nil
		}
		return Ringing{}, false, nil
	}

	if s.Sessions.IsActive() {
		if err := s.finalizeInterruptedLocked(ctx); err != nil {
			return Ringing{}, false, err
		}
	}

	label := ""
	if f.AlarmID == model.TargetAlarmID {
		s.Targets.ResetTodos()
	} else {
		s.Alarms.ResetTodos(f.AlarmID)
		if a, ok := s.Alarms.Get(f.AlarmID); ok {
			label = a.Label
			if a.Once() {
				if err := s.Alarms.Expire(ctx, a.ID); err != nil {
					s.log.Warnw("one-time alarm not expired", "alarm_id", a.ID, "error", err)
				}
			}
		}
	}

	s.lastEpisode = episodeMark{alarmID: f.AlarmID, startedAt: f.FiredAt}
	s.ringing = &Ringing{AlarmID: f.AlarmID, Episode: f.Episode, Label: label, TriggeredAt: f.FiredAt}
	s.log.Infow("alarm ringing", "alarm_id", f.AlarmID, "episode", f.Episode, "trigger_id", f.TriggerID)
	return *s.ringing, true, nil
}

// FinalizeInterrupted closes an open session as incomplete on its record.
func (s *Service) FinalizeInterrupted(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalizeInterruptedLocked(ctx)
}

func (s *Service) finalizeInterruptedLocked(ctx context.Context) error {
	ms, ok := s.Sessions.Get()
	if !ok {
		return nil
	}
	now := s.now()
	err := s.Records.PatchTodos(ctx, ms.RecordID, record.TodoPatch{
		Todos:             ms.Todos,
		Completed:         false,
		CompletedAt:       now,
		CompletionSeconds: int(now.Sub(ms.StartedAt) / time.Second),
	})
	if err != nil && !errors.Is(err, record.ErrNotFound) {
		return err
	}
	if err != nil {
		s.log.Warnw("interrupted session has no record", "record_id", ms.RecordID)
	}
	done, total := ms.Progress()
	s.log.Infow("interrupted session finalized", "record_id", ms.RecordID, "completed", done, "total", total)
	return s.Sessions.Clear(ctx)
}

// Dismiss finalizes the ringing alarm into a wake record, opens a morning
// session when tasks remain, clears the one-shot override, and starts a
// background enrichment when a health source is available.
func (s *Service) Dismiss(ctx context.Context) (model.WakeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ringing == nil {
		return model.WakeRecord{}, ErrNotRinging
	}
	ring := *s.ringing
	now := s.now()

	targetTime, label, todos, err := s.cycleDetails(ring, now)
	if err != nil {
		return model.WakeRecord{}, err
	}
	if s.Sessions.IsActive() {
		if err := s.finalizeInterruptedLocked(ctx); err != nil {
			return model.WakeRecord{}, err
		}
	}

	rec, err := s.Records.Finalize(ctx, record.FinalizeInput{
		AlarmID:     ring.AlarmID,
		AlarmLabel:  label,
		TargetTime:  targetTime,
		TriggeredAt: ring.TriggeredAt,
		DismissedAt: now,
		Todos:       model.SessionTodosFrom(todos, now),
	})
	if err != nil {
		return model.WakeRecord{}, err
	}
	s.ringing = nil

	if !allCompleted(todos) {
		if _, err := s.Sessions.Start(ctx, rec.ID, rec.Date, todos); err != nil {
			return rec, err
		}
	}

	if ring.AlarmID == model.TargetAlarmID {
		if t, ok := s.Targets.Get(); ok && t.NextOverride != nil {
			if err := s.Targets.ClearNextOverride(ctx); err != nil {
				return rec, err
			}
			if err := s.rescheduleLocked(ctx); err != nil {
				s.log.Warnw("reschedule after clearing next override failed", "error", err)
			}
		}
	}

	s.startEnrichment(ctx, rec)
	return rec, nil
}

func (s *Service) cycleDetails(ring Ringing, now time.Time) (model.AlarmTime, string, []model.TodoItem, error) {
	if ring.AlarmID != model.TargetAlarmID {
		a, ok := s.Alarms.Get(ring.AlarmID)
		if !ok {
			return model.AlarmTime{}, "", nil, fmt.Errorf("%w: %q", alarm.ErrNotFound, ring.AlarmID)
		}
		return a.Time, a.Label, a.Todos, nil
	}
	t, ok := s.Targets.Get()
	if !ok {
		return model.AlarmTime{}, "", nil, target.ErrNoTarget
	}
	at, ok := model.Resolve(t, ring.TriggeredAt)
	if !ok {
		at = t.DefaultTime
	}
	return at, "", t.Todos, nil
}

// ToggleSessionTodo flips one session task and reports whether the checklist is now complete.
func (s *Service) ToggleSessionTodo(ctx context.Context, id string) (model.MorningSession, bool, error) {
	ms, err := s.Sessions.ToggleTodo(ctx, id)
	if err != nil {
		return model.MorningSession{}, false, err
	}
	return ms, ms.AllCompleted(), nil
}

// CompleteSession records the finished checklist on its wake record and
// clears the session.
func (s *Service) CompleteSession(ctx context.Context) (model.WakeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.Sessions.Get()
	if !ok {
		return model.WakeRecord{}, session.ErrNoSession
	}
	if !ms.AllCompleted() {
		return model.WakeRecord{}, ErrSessionIncomplete
	}
	completedAt := ms.StartedAt
	for _, todo := range ms.Todos {
		if todo.CompletedAt != nil && todo.CompletedAt.After(completedAt) {
			completedAt = *todo.CompletedAt
		}
	}
	err := s.Records.PatchTodos(ctx, ms.RecordID, record.TodoPatch{
		Todos:             ms.Todos,
		Completed:         true,
		CompletedAt:       completedAt,
		CompletionSeconds: int(completedAt.Sub(ms.StartedAt) / time.Second),
	})
	if err != nil && !errors.Is(err, record.ErrNotFound) {
		return model.WakeRecord{}, err
	}
	if err := s.Sessions.Clear(ctx); err != nil {
		return model.WakeRecord{}, err
	}
	rec, _ := s.Records.FindByID(ms.RecordID)
	s.log.Infow("morning session completed", "record_id", ms.RecordID)
	return rec, nil
}

func (s *Service) startEnrichment(ctx context.Context, rec model.WakeRecord) {
	if !s.health.IsAvailable(ctx) {
		return
	}
	s.enrich.Add(1)
	go func() {
		defer s.enrich.Done()
		ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enrichTimeout)
		defer cancel()
		if _, err := s.enrichRecord(ectx, rec); err != nil {
			s.log.Debugw("wake record enrichment failed", "record_id", rec.ID, "error", err)
		}
	}()
}

func (s *Service) enrichRecord(ctx context.Context, rec model.WakeRecord) (bool, error) {
	day, err := calendar.ParseDate(rec.Date)
	if err != nil {
		return false, err
	}
	summary, ok, err := s.health.QuerySleepSummary(ctx, day)
	if err != nil || !ok {
		return false, err
	}
	return s.Records.Enrich(ctx, rec.ID, summary.WakeUpTime)
}

// WaitEnrichment blocks until background enrichment has finished.
func (s *Service) WaitEnrichment() {
	s.enrich.Wait()
}

func (s *Service) WeekStats(weekStart time.Time) model.WakeStats {
	return stats.WeekStats(s.Records.Records(), weekStart)
}

func (s *Service) CurrentStreak() int {
	return stats.CurrentStreak(s.Records.Records())
}

func (s *Service) DayReview(date string) (model.WakeRecord, bool) {
	return s.Records.FindByDate(date)
}

func (s *Service) loadNotificationIDs(ctx context.Context) error {
	raw, ok, err := s.kv.Load(ctx, storage.KeyNotificationIDs)
	if err != nil {
		return fmt.Errorf("load notification ids: %w", err)
	}
	ids := []string{}
	if ok && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return fmt.Errorf("decode notification ids: %w", err)
		}
	}
	s.mu.Lock()
	s.notificationIDs = ids
	s.mu.Unlock()
	return nil
}

func (s *Service) saveNotificationIDs(ctx context.Context, ids []string) error {
	payload, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := s.kv.Save(ctx, storage.KeyNotificationIDs, string(payload)); err != nil {
		return fmt.Errorf("save notification ids: %w", err)
	}
	s.notificationIDs = ids
	return nil
}

func allCompleted(todos []model.TodoItem) bool {
	for _, todo := range todos {
		if !todo.Completed {
			return false
		}
	}
	return true
}
