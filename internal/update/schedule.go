package update

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/goodmorning/internal/alarm"
	"github.com/sandeepkv93/goodmorning/internal/calendar"
	"github.com/sandeepkv93/goodmorning/internal/model"
	"github.com/sandeepkv93/goodmorning/internal/target"
	"github.com/sandeepkv93/goodmorning/internal/views"
)

var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

func (m Model) handleScheduleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	alarms := m.svc.Alarms.List()
	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(alarms)-1 {
			m.Cursor++
		}
	case "t":
		return m.toggleTarget()
	case " ":
		if m.Cursor < 0 || m.Cursor >= len(alarms) {
			return m, nil
		}
		enabled, err := m.svc.Alarms.Toggle(m.ctx, alarms[m.Cursor].ID)
		if err != nil {
			return m.fail(err), nil
		}
		m.setStatus(fmt.Sprintf("alarm %s %s", alarms[m.Cursor].Time, onOff(enabled)), false)
	case "x":
		if m.Cursor < 0 || m.Cursor >= len(alarms) {
			return m, nil
		}
		if err := m.svc.Alarms.Delete(m.ctx, alarms[m.Cursor].ID); err != nil {
			return m.fail(err), nil
		}
		if m.Cursor > 0 {
			m.Cursor--
		}
		m.setStatus("alarm deleted", false)
	}
	return m, nil
}

func (m Model) toggleTarget() (Model, tea.Cmd) {
	var enabled bool
	err := m.svc.EditTarget(m.ctx, func(ctx context.Context, s *target.Store) error {
		var err error
		enabled, err = s.ToggleEnabled(ctx)
		return err
	})
	if err != nil {
		return m.fail(err), nil
	}
	m.setStatus("wake target "+onOff(enabled), false)
	return m, nil
}

func scheduleRows(t model.WakeTarget, now time.Time) []table.Row {
	rows := make([]table.Row, 0, len(weekOrder))
	for _, day := range weekOrder {
		wake := "off"
		if at, ok := model.Resolve(t, calendar.NextWeekday(now, day)); ok {
			wake = at.String()
		}
		rows = append(rows, table.Row{calendar.ShortWeekday(day), wake, overrideSource(t, day)})
	}
	return rows
}

func overrideSource(t model.WakeTarget, day time.Weekday) string {
	if t.NextOverride != nil {
		return "next"
	}
	switch t.DayOverrides.Get(day).(type) {
	case model.Off:
		return "off"
	case model.Custom:
		return "custom"
	default:
		return "default"
	}
}

func (m Model) renderScheduleView() string {
	data := views.SchedulePanelData{TableView: m.scheduleTable.View()}
	if t, ok := m.svc.Target(); ok {
		data.Enabled = t.Enabled
		data.DefaultTime = t.DefaultTime.String()
		if t.NextOverride != nil {
			data.NextOverride = t.NextOverride.Time.String()
		}
		for _, todo := range t.Todos {
			data.Routine = append(data.Routine, todo.Title)
		}
	}
	data.Triggers = len(m.svc.NotificationIDs())
	for i, a := range m.svc.Alarms.List() {
		data.Alarms = append(data.Alarms, views.AlarmRow{
			Time:     a.Time.String(),
			Label:    a.Label,
			Repeat:   alarm.RepeatSummary(a.RepeatDays),
			Enabled:  a.Enabled,
			Selected: i == m.Cursor,
		})
	}
	return views.RenderSchedulePanel(data)
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
