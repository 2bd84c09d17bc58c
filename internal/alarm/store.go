package alarm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/goodmorning/internal/calendar"
	"github.com/sandeepkv93/goodmorning/internal/model"
	"github.com/sandeepkv93/goodmorning/internal/storage"
)

var (
	ErrNotLoaded = errors.New("alarm: not loaded")
	ErrNotFound  = errors.New("alarm: not found")
)

// Scheduler creates and cancels the notification bursts of one alarm.
type Scheduler interface {
	ScheduleAlarm(ctx context.Context, a model.Alarm) ([]string, error)
	CancelAll(ctx context.Context, ids []string) error
}

type Form struct {
	Time       model.AlarmTime
	Label      string
	Todos      []model.TodoItem
	RepeatDays []time.Weekday
}

type Store struct {
	mu     sync.RWMutex
	kv     storage.KV
	sched  Scheduler
	log    *zap.SugaredLogger
	now    func() time.Time
	loaded bool
	alarms []model.Alarm
}

func NewStore(kv storage.KV, sched Scheduler, log *zap.SugaredLogger, now func() time.Time) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if now == nil {
		now = time.Now
	}
	return &Store{kv: kv, sched: sched, log: log, now: now}
}

func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Load(ctx, storage.KeyAlarms)
	if err != nil {
		return fmt.Errorf("load alarms: %w", err)
	}
	alarms := make([]model.Alarm, 0)
	if ok && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &alarms); err != nil {
			return fmt.Errorf("decode alarms: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alarms = alarms
	s.loaded = true
	return nil
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) List() []model.Alarm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Alarm, len(s.alarms))
	for i, a := range s.alarms {
		out[i] = a.Clone()
	}
	return out
}

func (s *Store) Get(id string) (model.Alarm, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return model.Alarm{}, false
	}
	return s.alarms[idx].Clone(), true
}

// Add creates an enabled alarm and schedules it.
func (s *Store) Add(ctx context.Context, form Form) (model.Alarm, error) {
	a := model.Alarm{
		ID:         model.NewAlarmID(),
		Time:       form.Time,
		Enabled:    true,
		Label:      strings.TrimSpace(form.Label),
		Todos:      append([]model.TodoItem{}, form.Todos...),
		RepeatDays: append([]time.Weekday{}, form.RepeatDays...),
	}
	if err := a.Validate(); err != nil {
		return model.Alarm{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return model.Alarm{}, ErrNotLoaded
	}
	ids, err := s.arm(ctx, &a)
	if err != nil {
		return model.Alarm{}, err
	}
	next := append(s.cloneLocked(), a)
	if err := s.commitLocked(ctx, next); err != nil {
		s.disarm(ctx, a.ID, ids)
		return model.Alarm{}, err
	}
	s.log.Infow("alarm added", "alarm_id", a.ID, "time", a.Time.String(), "triggers", len(ids))
	return a.Clone(), nil
}

// Update replaces the form fields and reschedules when the alarm is enabled.
func (s *Store) Update(ctx context.Context, id string, form Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	next := s.cloneLocked()
	a := next[idx]
	a.Time = form.Time
	a.Label = strings.TrimSpace(form.Label)
	a.Todos = append([]model.TodoItem{}, form.Todos...)
	a.RepeatDays = append([]time.Weekday{}, form.RepeatDays...)
	if err := a.Validate(); err != nil {
		return err
	}
	var armed []string
	if a.Enabled {
		ids, err := s.arm(ctx, &a)
		if err != nil {
			return err
		}
		armed = ids
	}
	next[idx] = a
	if err := s.commitLocked(ctx, next); err != nil {
		s.disarm(ctx, a.ID, armed)
		return err
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return nil
	}
	if err := s.sched.CancelAll(ctx, s.alarms[idx].NotificationIDs); err != nil {
		s.log.Debugw("alarm triggers not fully cancelled", "alarm_id", id, "error", err)
	}
	next := s.cloneLocked()
	next = append(next[:idx], next[idx+1:]...)
	return s.commitLocked(ctx, next)
}

// Toggle flips enabled; enabling schedules, disabling cancels every trigger.
func (s *Store) Toggle(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, ErrNotLoaded
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return false, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	next := s.cloneLocked()
	a := next[idx]
	a.Enabled = !a.Enabled
	var armed []string
	if a.Enabled {
		ids, err := s.arm(ctx, &a)
		if err != nil {
			return false, err
		}
		armed = ids
	} else {
		if err := s.sched.CancelAll(ctx, a.NotificationIDs); err != nil {
			s.log.Debugw("alarm triggers not fully cancelled", "alarm_id", id, "error", err)
		}
		a.NotificationIDs = []string{}
		a.ArmedAt = nil
	}
	next[idx] = a
	if err := s.commitLocked(ctx, next); err != nil {
		s.disarm(ctx, id, armed)
		return false, err
	}
	return a.Enabled, nil
}

// Expire disables a one-time alarm that has started ringing. Its remaining
// burst triggers stay armed and their ids are kept for a later cancel.
func (s *Store) Expire(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if !s.alarms[idx].Once() || !s.alarms[idx].Enabled {
		return nil
	}
	next := s.cloneLocked()
	next[idx].Enabled = false
	next[idx].ArmedAt = nil
	if err := s.commitLocked(ctx, next); err != nil {
		return err
	}
	s.log.Infow("one-time alarm expired", "alarm_id", id)
	return nil
}

// RescheduleAll re-arms every enabled alarm, e.g. after a restart. A one-time
// alarm whose instant has passed is disabled instead.
func (s *Store) RescheduleAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	now := s.now()
	next := s.cloneLocked()
	for i := range next {
		a := &next[i]
		if !a.Enabled {
			continue
		}
		if a.Once() && a.ArmedAt != nil && !a.ArmedAt.After(now) {
			if err := s.sched.CancelAll(ctx, a.NotificationIDs); err != nil {
				s.log.Debugw("alarm triggers not fully cancelled", "alarm_id", a.ID, "error", err)
			}
			a.Enabled = false
			a.ArmedAt = nil
			a.NotificationIDs = []string{}
			s.log.Infow("one-time alarm passed; disabled", "alarm_id", a.ID)
			continue
		}
		ids, err := s.sched.ScheduleAlarm(ctx, *a)
		if err != nil {
			return err
		}
		a.NotificationIDs = ids
	}
	return s.commitLocked(ctx, next)
}

// ToggleTodo flips a checklist item in memory only.
func (s *Store) ToggleTodo(alarmID, todoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(alarmID)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, alarmID)
	}
	a := s.alarms[idx].Clone()
	for i := range a.Todos {
		if a.Todos[i].ID == todoID {
			a.Todos[i].Completed = !a.Todos[i].Completed
			s.alarms[idx] = a
			return nil
		}
	}
	return fmt.Errorf("%w: todo %q", ErrNotFound, todoID)
}

func (s *Store) ResetTodos(alarmID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(alarmID)
	if idx < 0 {
		return
	}
	a := s.alarms[idx].Clone()
	for i := range a.Todos {
		a.Todos[i].Completed = false
	}
	s.alarms[idx] = a
}

func (s *Store) AreAllTodosCompleted(alarmID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(alarmID)
	if idx < 0 {
		return false
	}
	return s.alarms[idx].AllTodosCompleted()
}

// arm schedules a and stores the new ids on it. One-time alarms are pinned
// to their next occurrence first.
func (s *Store) arm(ctx context.Context, a *model.Alarm) ([]string, error) {
	a.ArmedAt = nil
	if a.Once() {
		at := a.NextOnce(s.now())
		a.ArmedAt = &at
	}
	ids, err := s.sched.ScheduleAlarm(ctx, *a)
	if err != nil {
		return nil, err
	}
	a.NotificationIDs = ids
	return ids, nil
}

// disarm cancels triggers that were scheduled for a change that was not saved.
func (s *Store) disarm(ctx context.Context, id string, ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := s.sched.CancelAll(ctx, ids); err != nil {
		s.log.Warnw("unsaved alarm triggers not fully cancelled", "alarm_id", id, "error", err)
	}
}

func (s *Store) indexLocked(id string) int {
	for i, a := range s.alarms {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) cloneLocked() []model.Alarm {
	out := make([]model.Alarm, len(s.alarms))
	for i, a := range s.alarms {
		out[i] = a.Clone()
	}
	return out
}

func (s *Store) commitLocked(ctx context.Context, next []model.Alarm) error {
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode alarms: %w", err)
	}
	if err := s.kv.Save(ctx, storage.KeyAlarms, string(payload)); err != nil {
		return fmt.Errorf("save alarms: %w", err)
	}
	s.alarms = next
	return nil
}

// RepeatSummary describes repeat days the way the alarm list shows them.
func RepeatSummary(days []time.Weekday) string {
	if len(days) == 0 {
		return "Once"
	}
	set := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	if len(set) == 7 {
		return "Every day"
	}
	weekdays := set[time.Monday] && set[time.Tuesday] && set[time.Wednesday] && set[time.Thursday] && set[time.Friday]
	weekend := set[time.Saturday] || set[time.Sunday]
	if weekdays && !weekend && len(set) == 5 {
		return "Weekdays"
	}
	if set[time.Saturday] && set[time.Sunday] && len(set) == 2 {
		return "Weekends"
	}
	names := make([]string, 0, len(set))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if set[d] {
			names = append(names, calendar.ShortWeekday(d))
		}
	}
	return strings.Join(names, ", ")
}
