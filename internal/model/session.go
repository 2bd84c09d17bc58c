package model

import "time"

type SessionTodo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

// MorningSession tracks the checklist of one wake record after dismissal.
type MorningSession struct {
	RecordID  string        `json:"recordId"`
	Date      string        `json:"date"`
	StartedAt time.Time     `json:"startedAt"`
	Todos     []SessionTodo `json:"todos"`
}

func SessionTodosFrom(items []TodoItem, now time.Time) []SessionTodo {
	out := make([]SessionTodo, 0, len(items))
	for _, item := range items {
		todo := SessionTodo{ID: item.ID, Title: item.Title, Completed: item.Completed}
		if item.Completed {
			at := now
			todo.CompletedAt = &at
		}
		out = append(out, todo)
	}
	return out
}

func (s MorningSession) Progress() (completed, total int) {
	for _, todo := range s.Todos {
		if todo.Completed {
			completed++
		}
	}
	return completed, len(s.Todos)
}

// AllCompleted is true for an empty checklist.
func (s MorningSession) AllCompleted() bool {
	completed, total := s.Progress()
	return completed == total
}

func (s MorningSession) Clone() MorningSession {
	out := s
	if s.Todos != nil {
		out.Todos = make([]SessionTodo, len(s.Todos))
		for i, todo := range s.Todos {
			todo.CompletedAt = cloneTime(todo.CompletedAt)
			out.Todos[i] = todo
		}
	}
	return out
}
