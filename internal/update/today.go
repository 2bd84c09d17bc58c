package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/goodmorning/internal/model"
	"github.com/sandeepkv93/goodmorning/internal/views"
)

func (m Model) handleTodayKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if _, ringing := m.svc.Ringing(); ringing {
		switch msg.String() {
		case "enter", "d":
			return m.dismiss()
		}
		return m, nil
	}

	ms, active := m.svc.Sessions.Get()
	if !active {
		return m, nil
	}
	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(ms.Todos)-1 {
			m.Cursor++
		}
	case " ", "enter":
		if m.Cursor < 0 || m.Cursor >= len(ms.Todos) {
			return m, nil
		}
		return m.toggleSessionTodo(ms.Todos[m.Cursor].ID)
	case "X":
		if err := m.svc.FinalizeInterrupted(m.ctx); err != nil {
			return m.fail(err), nil
		}
		m.Cursor = 0
		m.setStatus("morning session ended early", false)
	}
	return m, nil
}

func (m Model) dismiss() (Model, tea.Cmd) {
	rec, err := m.svc.Dismiss(m.ctx)
	if err != nil {
		return m.fail(err), nil
	}
	m.Cursor = 0
	m.ReviewDate = rec.Date
	text := fmt.Sprintf("good morning: %s (%s)", rec.Result, signedMinutes(rec.DiffMinutes))
	if m.svc.Sessions.IsActive() {
		text += "; morning tasks started"
	}
	m.setStatus(text, false)
	m.notify("Good morning", text, "info")
	return m, nil
}

func (m Model) toggleSessionTodo(id string) (Model, tea.Cmd) {
	_, done, err := m.svc.ToggleSessionTodo(m.ctx, id)
	if err != nil {
		return m.fail(err), nil
	}
	if !done {
		completed, total := m.svc.Sessions.Progress()
		m.setStatus(fmt.Sprintf("morning tasks %d/%d", completed, total), false)
		return m, nil
	}
	rec, err := m.svc.CompleteSession(m.ctx)
	if err != nil {
		return m.fail(err), nil
	}
	m.Cursor = 0
	m.setStatus(fmt.Sprintf("all morning tasks done in %s", formatDuration(rec.TodoCompletionSeconds)), false)
	m.notify("Morning routine", "all tasks done", "info")
	return m, nil
}

func (m Model) renderTodayView() string {
	now := m.now()
	data := views.TodayPanelData{
		Clock:  now.Format("15:04"),
		Date:   now.Format("Monday, Jan 2"),
		Streak: m.svc.CurrentStreak(),
	}
	t, ok := m.svc.Target()
	if ok {
		data.Enabled = t.Enabled
		if at, when, found := nextWake(t, now); found {
			data.NextWake = fmt.Sprintf("%s %s", when.Format("Mon"), at)
		}
		if t.NextOverride != nil {
			data.NextOverride = t.NextOverride.Time.String()
		}
		for _, todo := range t.Todos {
			data.Routine = append(data.Routine, todo.Title)
		}
	}

	if r, ringing := m.svc.Ringing(); ringing {
		data.Ringing = true
		data.RingingLabel = r.Label
		data.RingingSince = r.TriggeredAt.Format("15:04:05")
		return views.RenderTodayPanel(data)
	}

	if ms, active := m.svc.Sessions.Get(); active {
		done, total := ms.Progress()
		data.SessionActive = true
		data.SessionElapsed = formatDuration(int(now.Sub(ms.StartedAt) / time.Second))
		pct := 1.0
		if total > 0 {
			pct = float64(done) / float64(total)
		}
		data.SessionProgress = m.sessionBar.ViewAs(pct)
		for i, todo := range ms.Todos {
			data.SessionTodos = append(data.SessionTodos, views.ChecklistItem{
				Title:    todo.Title,
				Done:     todo.Completed,
				Selected: i == m.Cursor,
			})
		}
	}

	if rec, ok := m.svc.DayReview(m.today()); ok {
		data.TodayResult = string(rec.Result)
		data.TodayDiff = signedMinutes(rec.DiffMinutes)
	}
	return views.RenderTodayPanel(data)
}

// nextWake finds the first resolved wake time strictly after now within a week.
func nextWake(t model.WakeTarget, now time.Time) (model.AlarmTime, time.Time, bool) {
	if !t.Enabled {
		return model.AlarmTime{}, time.Time{}, false
	}
	for d := 0; d <= 7; d++ {
		date := now.AddDate(0, 0, d)
		at, ok := model.Resolve(t, date)
		if !ok {
			continue
		}
		if when := at.On(date); when.After(now) {
			return at, when, true
		}
	}
	return model.AlarmTime{}, time.Time{}, false
}

func (m Model) fail(err error) Model {
	m.LastError = err
	m.setStatus(err.Error(), true)
	m.log.Debugw("action failed", "error", err)
	return m
}
