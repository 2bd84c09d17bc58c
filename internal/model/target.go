package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TodoItem struct {
	ID        string `json:"id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Completed bool   `json:"completed"`
}

func (t TodoItem) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTodo)
	}
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTodo, err)
	}
	return nil
}

func NewTodoID() string {
	return "todo_" + uuid.NewString()
}

func NewTodo(title string) TodoItem {
	return TodoItem{ID: NewTodoID(), Title: strings.TrimSpace(title)}
}

// NextOverride replaces every other rule until it is cleared.
type NextOverride struct {
	Time AlarmTime `json:"time"`
}

type WakeTarget struct {
	DefaultTime  AlarmTime     `json:"defaultTime"`
	DayOverrides DayOverrides  `json:"dayOverrides"`
	NextOverride *NextOverride `json:"nextOverride"`
	Todos        []TodoItem    `json:"todos"`
	Enabled      bool          `json:"enabled"`
}

func DefaultWakeTarget() WakeTarget {
	return WakeTarget{
		DefaultTime: AlarmTime{Hour: 7, Minute: 0},
		Todos:       []TodoItem{},
		Enabled:     true,
	}
}

func (t WakeTarget) Validate() error {
	if err := t.DefaultTime.Validate(); err != nil {
		return err
	}
	if err := t.DayOverrides.Validate(); err != nil {
		return err
	}
	if t.NextOverride != nil {
		if err := t.NextOverride.Time.Validate(); err != nil {
			return err
		}
	}
	seen := make(map[string]bool, len(t.Todos))
	for _, todo := range t.Todos {
		if err := todo.Validate(); err != nil {
			return err
		}
		if seen[todo.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidTodo, todo.ID)
		}
		seen[todo.ID] = true
	}
	return nil
}

// Clone returns a copy that shares no mutable state with t.
func (t WakeTarget) Clone() WakeTarget {
	out := t
	if t.NextOverride != nil {
		next := *t.NextOverride
		out.NextOverride = &next
	}
	if t.Todos != nil {
		out.Todos = append([]TodoItem{}, t.Todos...)
	}
	return out
}

func (t WakeTarget) AllTodosCompleted() bool {
	for _, todo := range t.Todos {
		if !todo.Completed {
			return false
		}
	}
	return true
}

// Resolve returns the alarm time for date, or false when the alarm is off that day.
// Priority: next override, then the weekday override, then the default time.
func Resolve(t WakeTarget, date time.Time) (AlarmTime, bool) {
	if t.NextOverride != nil {
		return t.NextOverride.Time, true
	}
	switch o := t.DayOverrides.Get(date.Weekday()).(type) {
	case Off:
		return AlarmTime{}, false
	case Custom:
		return o.Time, true
	default:
		return t.DefaultTime, true
	}
}
