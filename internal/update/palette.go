package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/goodmorning/internal/alarm"
	"github.com/sandeepkv93/goodmorning/internal/commands"
	"github.com/sandeepkv93/goodmorning/internal/model"
	"github.com/sandeepkv93/goodmorning/internal/target"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.setStatus("command palette closed", false)
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
	return m, nil
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := commands.Parse(raw, m.now())
	if err != nil {
		return m.fail(err), nil
	}

	var followUp tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Default: func(a commands.DefaultArgs) (commands.Result, error) {
			err := m.editTarget(func(ctx context.Context, s *target.Store) error {
				return s.UpdateDefaultTime(ctx, a.Time)
			})
			return commands.Result{Message: "default wake time " + a.Time.String()}, err
		},
		Tomorrow: func(a commands.TomorrowArgs) (commands.Result, error) {
			if a.Clear {
				err := m.editTarget(func(ctx context.Context, s *target.Store) error {
					return s.ClearNextOverride(ctx)
				})
				return commands.Result{Message: "next wake override cleared"}, err
			}
			err := m.editTarget(func(ctx context.Context, s *target.Store) error {
				return s.SetNextOverride(ctx, a.Time)
			})
			return commands.Result{Message: "next wake at " + a.Time.String()}, err
		},
		Day: func(a commands.DayArgs) (commands.Result, error) {
			err := m.editTarget(func(ctx context.Context, s *target.Store) error {
				switch a.Mode {
				case commands.DayOff:
					return s.SetDayOverride(ctx, a.Day, model.Off{})
				case commands.DayCustom:
					return s.SetDayOverride(ctx, a.Day, model.Custom{Time: a.Time})
				default:
					return s.RemoveDayOverride(ctx, a.Day)
				}
			})
			msg := fmt.Sprintf("%s uses the default time", a.Day)
			switch a.Mode {
			case commands.DayOff:
				msg = fmt.Sprintf("%s off", a.Day)
			case commands.DayCustom:
				msg = fmt.Sprintf("%s at %s", a.Day, a.Time)
			}
			return commands.Result{Message: msg}, err
		},
		Todo: func(a commands.TodoArgs) (commands.Result, error) {
			return m.runTodoCommand(a)
		},
		Toggle: func() (commands.Result, error) {
			var enabled bool
			err := m.editTarget(func(ctx context.Context, s *target.Store) error {
				var err error
				enabled, err = s.ToggleEnabled(ctx)
				return err
			})
			return commands.Result{Message: "wake target " + onOff(enabled)}, err
		},
		Ring: func() (commands.Result, error) {
			next, c := m.ringNow()
			m = next
			followUp = c
			if m.Status.IsError {
				return commands.Result{}, m.LastError
			}
			return commands.Result{Message: m.Status.Text}, nil
		},
		Alarm: func(a commands.AlarmArgs) (commands.Result, error) {
			return m.runAlarmCommand(a)
		},
		Review: func(a commands.ReviewArgs) (commands.Result, error) {
			m.ReviewDate = a.Date
			m.CurrentView = ViewReview
			m.reviewViewport.GotoTop()
			return commands.Result{Message: "review " + a.Date}, nil
		},
	})
	if err != nil {
		m = m.fail(err)
		m.notify("Command failed", err.Error(), "error")
		return m, followUp
	}
	m.setStatus(res.Message, false)
	return m, followUp
}

func (m Model) editTarget(fn func(context.Context, *target.Store) error) error {
	return m.svc.EditTarget(m.ctx, fn)
}

func (m Model) runTodoCommand(a commands.TodoArgs) (commands.Result, error) {
	t, ok := m.svc.Target()
	if !ok {
		return commands.Result{}, target.ErrNoTarget
	}
	switch a.Action {
	case commands.TodoAdd:
		var item model.TodoItem
		err := m.editTarget(func(ctx context.Context, s *target.Store) error {
			var err error
			item, err = s.AddTodo(ctx, a.Title)
			return err
		})
		return commands.Result{Message: "morning task added: " + item.Title}, err
	case commands.TodoRemove:
		if a.Index > len(t.Todos) {
			return commands.Result{}, outOfRange(a.Index, len(t.Todos))
		}
		todo := t.Todos[a.Index-1]
		err := m.editTarget(func(ctx context.Context, s *target.Store) error {
			return s.RemoveTodo(ctx, todo.ID)
		})
		return commands.Result{Message: "morning task removed: " + todo.Title}, err
	default:
		if a.Index > len(t.Todos) || a.To > len(t.Todos) {
			return commands.Result{}, outOfRange(max(a.Index, a.To), len(t.Todos))
		}
		ids := make([]string, 0, len(t.Todos))
		for _, todo := range t.Todos {
			ids = append(ids, todo.ID)
		}
		moved := ids[a.Index-1]
		ids = append(ids[:a.Index-1], ids[a.Index:]...)
		ids = append(ids[:a.To-1], append([]string{moved}, ids[a.To-1:]...)...)
		err := m.editTarget(func(ctx context.Context, s *target.Store) error {
			return s.ReorderTodos(ctx, ids)
		})
		return commands.Result{Message: fmt.Sprintf("morning task moved to %d", a.To)}, err
	}
}

func (m Model) runAlarmCommand(a commands.AlarmArgs) (commands.Result, error) {
	alarms := m.svc.Alarms.List()
	switch a.Action {
	case commands.AlarmAdd:
		created, err := m.svc.Alarms.Add(m.ctx, alarm.Form{Time: a.Time, Label: a.Label, RepeatDays: a.RepeatDays})
		if err != nil {
			return commands.Result{}, err
		}
		return commands.Result{Message: fmt.Sprintf("alarm %s %s added", created.Time, alarm.RepeatSummary(created.RepeatDays))}, nil
	case commands.AlarmRemove:
		if a.Index > len(alarms) {
			return commands.Result{}, outOfRange(a.Index, len(alarms))
		}
		if err := m.svc.Alarms.Delete(m.ctx, alarms[a.Index-1].ID); err != nil {
			return commands.Result{}, err
		}
		return commands.Result{Message: "alarm removed"}, nil
	default:
		if a.Index > len(alarms) {
			return commands.Result{}, outOfRange(a.Index, len(alarms))
		}
		enabled, err := m.svc.Alarms.Toggle(m.ctx, alarms[a.Index-1].ID)
		if err != nil {
			return commands.Result{}, err
		}
		return commands.Result{Message: "alarm " + onOff(enabled)}, nil
	}
}

func outOfRange(n, size int) error {
	return &commands.CommandError{
		Code:    commands.ErrCodeInvalidArgument,
		Message: fmt.Sprintf("position %d out of range (have %d)", n, size),
	}
}
