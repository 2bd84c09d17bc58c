package session

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
	ErrNotLoaded     = errors.New("session: not loaded")
	ErrSessionActive = errors.New("session: already active")
	ErrNoSession     = errors.New("session: no active session")
	ErrUnknownTodo   = errors.New("session: unknown todo")
)

type State int

const (
	StateAbsent State = iota
	StateActive
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateComplete:
		return "complete"
	default:
		return "absent"
	}
}

// Store holds at most one morning session and persists it on every change.
type Store struct {
	mu      sync.RWMutex
	kv      storage.KV
	log     *zap.SugaredLogger
	now     func() time.Time
	loaded  bool
	current *model.MorningSession
}

func NewStore(kv storage.KV, log *zap.SugaredLogger, now func() time.Time) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if now == nil {
		now = time.Now
	}
	return &Store{kv: kv, log: log, now: now}
}

func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Load(ctx, storage.KeyMorningSession)
	if err != nil {
		return fmt.Errorf("load morning session: %w", err)
	}
	var loaded *model.MorningSession
	if ok && strings.TrimSpace(raw) != "" && strings.TrimSpace(raw) != "null" {
		var ms model.MorningSession
		if err := json.Unmarshal([]byte(raw), &ms); err != nil {
			return fmt.Errorf("decode morning session: %w", err)
		}
		loaded = &ms
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = loaded
	s.loaded = true
	return nil
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) Get() (model.MorningSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return model.MorningSession{}, false
	}
	return s.current.Clone(), true
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stateOf(s.current)
}

// Start opens a session for recordID. An existing session must be finalized
// and cleared first.
func (s *Store) Start(ctx context.Context, recordID, date string, todos []model.TodoItem) (model.MorningSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return model.MorningSession{}, ErrNotLoaded
	}
	if s.current != nil {
		return model.MorningSession{}, fmt.Errorf("%w: record %q", ErrSessionActive, s.current.RecordID)
	}
	now := s.now()
	next := model.MorningSession{
		RecordID:  recordID,
		Date:      date,
		StartedAt: now,
		Todos:     model.SessionTodosFrom(todos, now),
	}
	if err := s.commitLocked(ctx, &next); err != nil {
		return model.MorningSession{}, err
	}
	s.log.Infow("morning session started", "record_id", recordID, "todos", len(next.Todos), "state", stateOf(&next))
	return next.Clone(), nil
}

// ToggleTodo flips one task and stamps or clears its completion time.
func (s *Store) ToggleTodo(ctx context.Context, id string) (model.MorningSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return model.MorningSession{}, ErrNotLoaded
	}
	if s.current == nil {
		return model.MorningSession{}, ErrNoSession
	}
	next := s.current.Clone()
	found := false
	for i := range next.Todos {
		if next.Todos[i].ID != id {
			continue
		}
		found = true
		if next.Todos[i].Completed {
			next.Todos[i].Completed = false
			next.Todos[i].CompletedAt = nil
		} else {
			at := s.now()
			next.Todos[i].Completed = true
			next.Todos[i].CompletedAt = &at
		}
		break
	}
	if !found {
		return model.MorningSession{}, fmt.Errorf("%w: %q", ErrUnknownTodo, id)
	}
	if err := s.commitLocked(ctx, &next); err != nil {
		return model.MorningSession{}, err
	}
	return next.Clone(), nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	if s.current == nil {
		return nil
	}
	return s.commitLocked(ctx, nil)
}

func (s *Store) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// AreAllCompleted is false with no session and true for an empty checklist.
func (s *Store) AreAllCompleted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.AllCompleted()
}

func (s *Store) Progress() (completed, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return 0, 0
	}
	return s.current.Progress()
}

func (s *Store) commitLocked(ctx context.Context, next *model.MorningSession) error {
	if next == nil {
		if err := s.kv.Delete(ctx, storage.KeyMorningSession); err != nil {
			return fmt.Errorf("clear morning session: %w", err)
		}
		s.current = nil
		return nil
	}
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode morning session: %w", err)
	}
	if err := s.kv.Save(ctx, storage.KeyMorningSession, string(payload)); err != nil {
		return fmt.Errorf("save morning session: %w", err)
	}
	s.current = next
	return nil
}

func stateOf(ms *model.MorningSession) State {
	switch {
	case ms == nil:
		return StateAbsent
	case ms.AllCompleted():
		return StateComplete
	default:
		return StateActive
	}
}
