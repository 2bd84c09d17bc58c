package target

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/goodmorning/internal/model"
	"github.com/sandeepkv93/goodmorning/internal/storage"
)

var (
	ErrNotLoaded   = errors.New("target: not loaded")
	ErrNoTarget    = errors.New("target: no wake target")
	ErrUnknownTodo = errors.New("target: unknown todo")
)

// Store holds the single wake target. Every persisted mutation is written
// through to the key-value store before the in-memory copy changes.
type Store struct {
	mu     sync.RWMutex
	kv     storage.KV
	log    *zap.SugaredLogger
	loaded bool
	target *model.WakeTarget
}

func NewStore(kv storage.KV, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{kv: kv, log: log}
}

func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Load(ctx, storage.KeyWakeTarget)
	if err != nil {
		return fmt.Errorf("load wake target: %w", err)
	}
	var loaded *model.WakeTarget
	if ok && strings.TrimSpace(raw) != "" {
		var t model.WakeTarget
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return fmt.Errorf("decode wake target: %w", err)
		}
		if t.Todos == nil {
			t.Todos = []model.TodoItem{}
		}
		loaded = &t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = loaded
	s.loaded = true
	s.log.Debugw("wake target loaded", "present", loaded != nil)
	return nil
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Get returns a copy of the current target, or false before load or onboarding.
func (s *Store) Get() (model.WakeTarget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.target == nil {
		return model.WakeTarget{}, false
	}
	return s.target.Clone(), true
}

func (s *Store) SetTarget(ctx context.Context, t model.WakeTarget) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	next := t.Clone()
	if next.Todos == nil {
		next.Todos = []model.TodoItem{}
	}
	return s.commitLocked(ctx, next)
}

func (s *Store) UpdateDefaultTime(ctx context.Context, at model.AlarmTime) error {
	return s.mutate(ctx, func(t *model.WakeTarget) error {
		t.DefaultTime = at
		return nil
	})
}

func (s *Store) SetNextOverride(ctx context.Context, at model.AlarmTime) error {
	return s.mutate(ctx, func(t *model.WakeTarget) error {
		t.NextOverride = &model.NextOverride{Time: at}
		return nil
	})
}

func (s *Store) ClearNextOverride(ctx context.Context) error {
	return s.mutate(ctx, func(t *model.WakeTarget) error {
		t.NextOverride = nil
		return nil
	})
}

func (s *Store) SetDayOverride(ctx context.Context, day time.Weekday, o model.DayOverride) error {
	return s.mutate(ctx, func(t *model.WakeTarget) error {
		t.DayOverrides = t.DayOverrides.With(day, o)
		return nil
	})
}

func (s *Store) RemoveDayOverride(ctx context.Context, day time.Weekday) error {
	return s.mutate(ctx, func(t *model.WakeTarget) error {
		t.DayOverrides = t.DayOverrides.Without(day)
		return nil
	})
}

func (s *Store) AddTodo(ctx context.Context, title string) (model.TodoItem, error) {
	todo := model.NewTodo(title)
	err := s.mutate(ctx, func(t *model.WakeTarget) error {
		t.Todos = append(t.Todos, todo)
		return nil
	})
	if err != nil {
		return model.TodoItem{}, err
	}
	return todo, nil
}

func (s *Store) RemoveTodo(ctx context.Context, id string) error {
	return s.mutate(ctx, func(t *model.WakeTarget) error {
		idx := indexOf(t.Todos, id)
		if idx < 0 {
			return fmt.Errorf("%w: %q", ErrUnknownTodo, id)
		}
		t.Todos = append(t.Todos[:idx], t.Todos[idx+1:]...)
		return nil
	})
}

// ReorderTodos replaces the checklist order; ids must be a permutation of the current ids.
func (s *Store) ReorderTodos(ctx context.Context, ids []string) error {
	return s.mutate(ctx, func(t *model.WakeTarget) error {
		if len(ids) != len(t.Todos) {
			return fmt.Errorf("%w: reorder expects %d ids, got %d", ErrUnknownTodo, len(t.Todos), len(ids))
		}
		out := make([]model.TodoItem, 0, len(ids))
		used := make(map[string]bool, len(ids))
		for _, id := range ids {
			idx := indexOf(t.Todos, id)
			if idx < 0 || used[id] {
				return fmt.Errorf("%w: %q", ErrUnknownTodo, id)
			}
			used[id] = true
			out = append(out, t.Todos[idx])
		}
		t.Todos = out
		return nil
	})
}

func (s *Store) ToggleEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := s.mutate(ctx, func(t *model.WakeTarget) error {
		t.Enabled = !t.Enabled
		enabled = t.Enabled
		return nil
	})
	return enabled, err
}

// ToggleTodoCompleted flips per-cycle completion in memory only.
func (s *Store) ToggleTodoCompleted(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil {
		return ErrNoTarget
	}
	idx := indexOf(s.target.Todos, id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownTodo, id)
	}
	next := s.target.Clone()
	next.Todos[idx].Completed = !next.Todos[idx].Completed
	s.target = &next
	return nil
}

// ResetTodos clears completion flags at the start of a new wake cycle.
func (s *Store) ResetTodos() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil {
		return
	}
	next := s.target.Clone()
	for i := range next.Todos {
		next.Todos[i].Completed = false
	}
	s.target = &next
}

func (s *Store) AreAllTodosCompleted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.target == nil {
		return false
	}
	return s.target.AllTodosCompleted()
}

func (s *Store) mutate(ctx context.Context, fn func(*model.WakeTarget) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	if s.target == nil {
		return ErrNoTarget
	}
	next := s.target.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	return s.commitLocked(ctx, next)
}

func (s *Store) commitLocked(ctx context.Context, next model.WakeTarget) error {
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode wake target: %w", err)
	}
	if err := s.kv.Save(ctx, storage.KeyWakeTarget, string(payload)); err != nil {
		return fmt.Errorf("save wake target: %w", err)
	}
	s.target = &next
	return nil
}

func indexOf(todos []model.TodoItem, id string) int {
	for i, todo := range todos {
		if todo.ID == id {
			return i
		}
	}
	return -1
}
