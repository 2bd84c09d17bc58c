package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/goodmorning/internal/app"
	"github.com/sandeepkv93/goodmorning/internal/model"
	"github.com/sandeepkv93/goodmorning/internal/notify"
	"github.com/sandeepkv93/goodmorning/internal/storage"
)

type countingNotifier struct {
	next int
}

func (n *countingNotifier) HasPermission(context.Context) bool     { return true }
func (n *countingNotifier) RequestPermission(context.Context) bool { return true }

func (n *countingNotifier) ScheduleTrigger(context.Context, notify.Trigger) (string, error) {
	n.next++
	return fmt.Sprintf("n-%d", n.next), nil
}

func (n *countingNotifier) CancelTrigger(context.Context, string) error { return nil }

type recordingDesktop struct {
	sent []Notification
}

func (r *recordingDesktop) Send(n Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func newTestModel(t *testing.T) (Model, *testClock) {
	t.Helper()
	// Monday 2026-02-09 05:00 UTC.
	clock := &testClock{t: time.Date(2026, 2, 9, 5, 0, 0, 0, time.UTC)}
	svc := app.NewService(app.Options{
		KV:       storage.NewMemoryKV(),
		Notifier: &countingNotifier{},
		Now:      clock.now,
	})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load service: %v", err)
	}
	return NewModel(Options{Service: svc, Now: clock.now}), clock
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func typeCommand(t *testing.T, m Model, input string) Model {
	t.Helper()
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !m.Palette.Active {
		t.Fatal("expected palette to open")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(input)})
	return send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := newTestModel(t)
	if m.CurrentView != ViewToday {
		t.Fatalf("expected default view %q, got %q", ViewToday, m.CurrentView)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if m.ReviewDate != "2026-02-09" {
		t.Fatalf("unexpected review date: %s", m.ReviewDate)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	if m.CurrentView != ViewSchedule {
		t.Fatalf("expected schedule view, got %q", m.CurrentView)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	if m.CurrentView != ViewStats {
		t.Fatalf("expected stats view, got %q", m.CurrentView)
	}
	m = send(t, m, SwitchViewMsg{View: View("Unknown")})
	if m.CurrentView != ViewStats {
		t.Fatalf("expected view unchanged for unknown view, got %q", m.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, SetStatusMsg{Text: "ready"})
	if m.Status.Text != "ready" || m.Status.IsError {
		t.Fatalf("unexpected status: %+v", m.Status)
	}

	m = send(t, m, AppErrorMsg{Err: errors.New("boom")})
	if m.LastError == nil || m.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", m.LastError)
	}
	if !m.Status.IsError || m.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", m.Status)
	}

	m = send(t, m, ClearStatusMsg{})
	if m.Status.Text != "" || m.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", m.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !updated.(Model).Quitting {
		t.Fatal("expected quitting flag true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestPaletteEditsTarget(t *testing.T) {
	m, _ := newTestModel(t)

	m = typeCommand(t, m, "default 06:45")
	if m.Status.IsError {
		t.Fatalf("unexpected error: %s", m.Status.Text)
	}
	tg, _ := m.svc.Target()
	if tg.DefaultTime.String() != "06:45" {
		t.Fatalf("default time not updated: %s", tg.DefaultTime)
	}

	m = typeCommand(t, m, "day sun off")
	tg, _ = m.svc.Target()
	if _, ok := tg.DayOverrides.Get(time.Sunday).(model.Off); !ok {
		t.Fatalf("expected sunday off, got %#v", tg.DayOverrides.Get(time.Sunday))
	}
	if got := len(m.svc.NotificationIDs()); got != 6*notify.RepeatCount {
		t.Fatalf("expected reschedule without sunday, got %d triggers", got)
	}

	m = typeCommand(t, m, "todo add Drink water")
	m = typeCommand(t, m, "todo add Stretch")
	m = typeCommand(t, m, "todo mv 2 1")
	tg, _ = m.svc.Target()
	if len(tg.Todos) != 2 || tg.Todos[0].Title != "Stretch" {
		t.Fatalf("unexpected todos: %+v", tg.Todos)
	}
	m = typeCommand(t, m, "todo rm 5")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "out of range") {
		t.Fatalf("expected out of range error, got %+v", m.Status)
	}
}

func TestPaletteUnknownCommand(t *testing.T) {
	m, _ := newTestModel(t)
	m = typeCommand(t, m, "snooze 5")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "unknown_command") {
		t.Fatalf("expected unknown command status, got %+v", m.Status)
	}
	if m.Palette.Active {
		t.Fatal("expected palette closed after execution")
	}
}

func TestAlarmFiredDismissAndSession(t *testing.T) {
	m, clock := newTestModel(t)
	m = typeCommand(t, m, "todo add Drink water")
	m = send(t, m, SwitchViewMsg{View: ViewStats})

	clock.t = time.Date(2026, 2, 9, 7, 0, 0, 0, time.UTC)
	desktop := &recordingDesktop{}
	m.DesktopEnabled = true
	m.notifier = desktop
	m = send(t, m, AlarmFiredMsg{Fired: notify.Fired{AlarmID: model.TargetAlarmID, Episode: "wake-target:mon", FiredAt: clock.t}})
	if m.CurrentView != ViewToday {
		t.Fatalf("expected jump to today view, got %q", m.CurrentView)
	}
	if len(desktop.sent) != 1 || desktop.sent[0].Title != notify.DefaultTitle {
		t.Fatalf("expected one desktop notification, got %+v", desktop.sent)
	}
	if !strings.Contains(m.View(), "WAKE UP") {
		t.Fatal("expected ringing panel in view")
	}

	clock.t = clock.t.Add(30 * time.Second)
	m = send(t, m, AlarmFiredMsg{Fired: notify.Fired{AlarmID: model.TargetAlarmID, Episode: "wake-target:mon", FiredAt: clock.t}})
	if len(desktop.sent) != 1 {
		t.Fatalf("burst repeat should not notify again, got %d", len(desktop.sent))
	}

	clock.t = time.Date(2026, 2, 9, 7, 4, 0, 0, time.UTC)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.Status.Text, "great") {
		t.Fatalf("expected great result, got %q", m.Status.Text)
	}
	if !m.svc.Sessions.IsActive() {
		t.Fatal("expected morning session to start")
	}

	clock.t = clock.t.Add(2 * time.Minute)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	if m.svc.Sessions.IsActive() {
		t.Fatal("expected session to complete after last task")
	}
	if !strings.Contains(m.Status.Text, "02:00") {
		t.Fatalf("expected completion time in status, got %q", m.Status.Text)
	}
	rec, ok := m.svc.DayReview("2026-02-09")
	if !ok || !rec.TodosCompleted {
		t.Fatalf("expected completed record, got %+v", rec)
	}
}

func TestReviewViewRendersRecord(t *testing.T) {
	m, clock := newTestModel(t)
	m = typeCommand(t, m, "ring")
	clock.t = time.Date(2026, 2, 9, 7, 20, 0, 0, time.UTC)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m = typeCommand(t, m, "review today")
	if m.CurrentView != ViewReview || m.ReviewDate != "2026-02-09" {
		t.Fatalf("unexpected review state: %q %s", m.CurrentView, m.ReviewDate)
	}
	if !strings.Contains(m.reviewMarkdown(), "Result: **") {
		t.Fatalf("unexpected review markdown: %q", m.reviewMarkdown())
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	if m.ReviewDate != "2026-02-08" {
		t.Fatalf("expected previous day, got %s", m.ReviewDate)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	if m.ReviewDate != "2026-02-09" {
		t.Fatalf("review should not move past today, got %s", m.ReviewDate)
	}
}

func TestScheduleViewTogglesAlarm(t *testing.T) {
	m, _ := newTestModel(t)
	m = typeCommand(t, m, "alarm add 06:00 weekdays Gym")
	if m.Status.IsError {
		t.Fatalf("alarm add failed: %s", m.Status.Text)
	}
	m = send(t, m, SwitchViewMsg{View: ViewSchedule})
	if !strings.Contains(m.View(), "Gym") {
		t.Fatal("expected alarm in schedule view")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	alarms := m.svc.Alarms.List()
	if len(alarms) != 1 || alarms[0].Enabled {
		t.Fatalf("expected alarm disabled, got %+v", alarms)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	tg, _ := m.svc.Target()
	if tg.Enabled || len(m.svc.NotificationIDs()) != 0 {
		t.Fatalf("expected wake target disabled with no triggers, got %+v", tg)
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m, _ := newTestModel(t)
	m.Status = StatusBar{Text: "all good"}
	out := m.View()
	for _, want := range []string{"view: Today", "status: all good", "next wake: Mon 07:00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output: %q", want, out)
		}
	}
}
