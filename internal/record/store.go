package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/goodmorning/internal/calendar"
	"github.com/sandeepkv93/goodmorning/internal/model"
	"github.com/sandeepkv93/goodmorning/internal/storage"
)

var (
	ErrNotLoaded = errors.New("record: not loaded")
	ErrNotFound  = errors.New("record: not found")
)

// Store is the append-only wake record log. Records change after creation
// only through PatchTodos and Enrich, each of which touches a fixed set of fields.
type Store struct {
	mu      sync.RWMutex
	kv      storage.KV
	log     *zap.SugaredLogger
	loaded  bool
	records []model.WakeRecord
}

func NewStore(kv storage.KV, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{kv: kv, log: log}
}

func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Load(ctx, storage.KeyWakeRecords)
	if err != nil {
		return fmt.Errorf("load wake records: %w", err)
	}
	records := make([]model.WakeRecord, 0)
	if ok && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			return fmt.Errorf("decode wake records: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.loaded = true
	s.log.Debugw("wake records loaded", "count", len(records))
	return nil
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) Records() []model.WakeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.records)
}

func (s *Store) Add(ctx context.Context, rec model.WakeRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	next := append(cloneAll(s.records), rec.Clone())
	return s.commitLocked(ctx, next)
}

type FinalizeInput struct {
	AlarmID     string
	AlarmLabel  string
	TargetTime  model.AlarmTime
	TriggeredAt time.Time
	DismissedAt time.Time
	Todos       []model.SessionTodo
}

// Finalize classifies a dismissal and appends the resulting record.
func (s *Store) Finalize(ctx context.Context, in FinalizeInput) (model.WakeRecord, error) {
	rec := BuildRecord(in)
	if err := s.Add(ctx, rec); err != nil {
		return model.WakeRecord{}, err
	}
	s.log.Infow("wake record finalized",
		"record_id", rec.ID, "date", rec.Date, "result", rec.Result, "diff_minutes", rec.DiffMinutes)
	return rec, nil
}

// BuildRecord is the pure half of Finalize.
func BuildRecord(in FinalizeInput) model.WakeRecord {
	diff := model.CalculateDiffMinutes(in.TargetTime, in.DismissedAt)
	todos, allDone, lastDone := Snapshot(in.Todos)
	alarmID := in.AlarmID
	if alarmID == "" {
		alarmID = model.TargetAlarmID
	}
	rec := model.WakeRecord{
		ID:                    model.NewRecordID(),
		AlarmID:               alarmID,
		Date:                  calendar.FormatDate(in.DismissedAt),
		TargetTime:            in.TargetTime,
		AlarmTriggeredAt:      in.TriggeredAt,
		DismissedAt:           in.DismissedAt,
		Result:                model.CalculateWakeResult(diff),
		DiffMinutes:           diff,
		Todos:                 todos,
		TodoCompletionSeconds: secondsBetween(in.TriggeredAt, lastDone),
		AlarmLabel:            in.AlarmLabel,
		TodosCompleted:        allDone,
	}
	if allDone {
		at := in.DismissedAt
		if lastDone != nil {
			at = *lastDone
		}
		rec.TodosCompletedAt = &at
	}
	return rec
}

// Snapshot converts session tasks into record tasks with a 1-based completion
// rank, ordered by completion time. It also reports whether every task is done
// and the latest completion instant.
func Snapshot(todos []model.SessionTodo) ([]model.WakeTodoRecord, bool, *time.Time) {
	out := make([]model.WakeTodoRecord, len(todos))
	done := make([]int, 0, len(todos))
	for i, todo := range todos {
		out[i] = model.WakeTodoRecord{ID: todo.ID, Title: todo.Title}
		if todo.Completed && todo.CompletedAt != nil {
			at := *todo.CompletedAt
			out[i].CompletedAt = &at
			done = append(done, i)
		}
	}
	sort.SliceStable(done, func(a, b int) bool {
		return out[done[a]].CompletedAt.Before(*out[done[b]].CompletedAt)
	})
	var last *time.Time
	for rank, idx := range done {
		order := rank + 1
		out[idx].OrderCompleted = &order
		last = out[idx].CompletedAt
	}
	return out, len(done) == len(todos), last
}

type TodoPatch struct {
	Todos             []model.SessionTodo
	Completed         bool
	CompletedAt       time.Time
	CompletionSeconds int
}

// PatchTodos rewrites only the checklist fields of a record.
func (s *Store) PatchTodos(ctx context.Context, id string, patch TodoPatch) error {
	todos, _, _ := Snapshot(patch.Todos)
	seconds := patch.CompletionSeconds
	if seconds < 0 {
		seconds = 0
	}
	at := patch.CompletedAt
	return s.update(ctx, id, func(rec *model.WakeRecord) bool {
		rec.Todos = todos
		rec.TodosCompleted = patch.Completed
		rec.TodosCompletedAt = &at
		rec.TodoCompletionSeconds = seconds
		return true
	})
}

// Enrich applies a detected wake time once. It is a no-op when the record is
// gone, already enriched, or was never dismissed.
func (s *Store) Enrich(ctx context.Context, id string, wakeUp time.Time) (bool, error) {
	applied := false
	err := s.update(ctx, id, func(rec *model.WakeRecord) bool {
		if rec.HealthKitWakeTime != nil || rec.Result == model.WakeResultMissed {
			return false
		}
		at := wakeUp
		diff := model.CalculateDiffMinutes(rec.TargetTime, wakeUp)
		rec.HealthKitWakeTime = &at
		rec.DiffMinutes = diff
		rec.Result = model.CalculateWakeResult(diff)
		applied = true
		return true
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return applied, err
}

// MarkMissed appends a missed record for an alarm that rang on date but was
// never dismissed. It does nothing when a record for that alarm and date exists.
func (s *Store) MarkMissed(ctx context.Context, alarmID, label, date string, target model.AlarmTime) (bool, error) {
	day, err := calendar.ParseDate(date)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, ErrNotLoaded
	}
	for _, rec := range s.records {
		if rec.AlarmID == alarmID && rec.Date == date {
			return false, nil
		}
	}
	rec := model.WakeRecord{
		ID:               model.NewRecordID(),
		AlarmID:          alarmID,
		Date:             date,
		TargetTime:       target,
		AlarmTriggeredAt: target.On(day),
		Result:           model.WakeResultMissed,
		Todos:            []model.WakeTodoRecord{},
		AlarmLabel:       label,
	}
	if err := s.commitLocked(ctx, append(cloneAll(s.records), rec)); err != nil {
		return false, err
	}
	s.log.Infow("wake record marked missed", "alarm_id", alarmID, "date", date)
	return true, nil
}

func (s *Store) FindByID(id string) (model.WakeRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.ID == id {
			return rec.Clone(), true
		}
	}
	return model.WakeRecord{}, false
}

// FindByDate returns the most recently appended record for date.
func (s *Store) FindByDate(date string) (model.WakeRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Date == date {
			return s.records[i].Clone(), true
		}
	}
	return model.WakeRecord{}, false
}

// RecordsForPeriod returns records with start <= date <= end.
func (s *Store) RecordsForPeriod(start, end string) []model.WakeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.WakeRecord, 0)
	for _, rec := range s.records {
		if rec.Date >= start && rec.Date <= end {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// PendingEnrichment lists dismissed records since date that lack a health wake time.
func (s *Store) PendingEnrichment(since string) []model.WakeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.WakeRecord, 0)
	for _, rec := range s.records {
		if rec.Date >= since && rec.HealthKitWakeTime == nil && rec.Result != model.WakeResultMissed {
			out = append(out, rec.Clone())
		}
	}
	return out
}

func (s *Store) update(ctx context.Context, id string, fn func(*model.WakeRecord) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	next := cloneAll(s.records)
	for i := range next {
		if next[i].ID != id {
			continue
		}
		if !fn(&next[i]) {
			return nil
		}
		return s.commitLocked(ctx, next)
	}
	return fmt.Errorf("%w: %q", ErrNotFound, id)
}

func (s *Store) commitLocked(ctx context.Context, next []model.WakeRecord) error {
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode wake records: %w", err)
	}
	if err := s.kv.Save(ctx, storage.KeyWakeRecords, string(payload)); err != nil {
		return fmt.Errorf("save wake records: %w", err)
	}
	s.records = next
	return nil
}

func cloneAll(in []model.WakeRecord) []model.WakeRecord {
	out := make([]model.WakeRecord, len(in))
	for i, rec := range in {
		out[i] = rec.Clone()
	}
	return out
}

func secondsBetween(from time.Time, to *time.Time) int {
	if to == nil || from.IsZero() {
		return 0
	}
	secs := int(to.Sub(from) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}
