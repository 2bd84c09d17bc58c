package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/goodmorning/internal/views"
)

const clockInterval = 15 * time.Second

func clockTickCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg { return ClockTickMsg{At: t} })
}

func (m Model) Init() tea.Cmd {
	return clockTickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.SetValue("")
			m.setStatus("command palette active", false)
			cmd := m.commandInput.Focus()
			return m, cmd
		case m.Keys.Today:
			return m.switchView(ViewToday), nil
		case m.Keys.Schedule:
			return m.switchView(ViewSchedule), nil
		case m.Keys.Stats:
			return m.switchView(ViewStats), nil
		case m.Keys.Review:
			return m.switchView(ViewReview), nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.setStatus("help shown", false)
			} else {
				m.setStatus("help hidden", false)
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}

		switch m.CurrentView {
		case ViewToday:
			return m.handleTodayKey(typed)
		case ViewSchedule:
			return m.handleScheduleKey(typed)
		case ViewStats:
			return m.handleStatsKey(typed)
		case ViewReview:
			return m.handleReviewKey(typed)
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m = m.switchView(typed.View)
		}
		return m, nil
	case SetStatusMsg:
		m.setStatus(typed.Text, typed.IsError)
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		if typed.Err != nil {
			m = m.fail(typed.Err)
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case AlarmFiredMsg:
		return m.onAlarmFired(typed)
	case ClockTickMsg:
		return m, clockTickCmd()
	case tea.WindowSizeMsg:
		m.reviewViewport.Width = max(typed.Width/2-6, 20)
		m.reviewViewport.Height = max(typed.Height-10, 5)
		return m, nil
	}

	return m, nil
}

func (m Model) switchView(v View) Model {
	if m.CurrentView != v {
		m.Cursor = 0
	}
	m.CurrentView = v
	if v == ViewReview {
		m.reviewViewport.GotoTop()
	}
	return m
}

func (m *Model) syncBubbleData() {
	if m.svc == nil {
		return
	}
	if t, ok := m.svc.Target(); ok {
		m.scheduleTable.SetRows(scheduleRows(t, m.now()))
	}
	if m.CurrentView == ViewReview {
		m.reviewViewport.SetContent(views.RenderMarkdown(m.reviewMarkdown(), m.reviewViewport.Width))
	}
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	switch m.CurrentView {
	case ViewToday:
		leftPane = m.renderTodayView()
	case ViewSchedule:
		leftPane = m.renderScheduleView()
	case ViewStats:
		leftPane = m.renderStatsView()
	case ViewReview:
		leftPane = m.renderReviewView()
	}
	rightPane := m.renderCommandPalette() + m.renderHelpIfVisible()

	_, ringing := m.svc.Ringing()
	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("good morning | view: %s | %s", m.CurrentView, m.now().Format("Mon 15:04")),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Ringing:      ringing,
		Notification: m.renderNotificationsView(),
		Footer:       fmt.Sprintf("keys: %s today | %s schedule | %s stats | %s review | / cmd | %s help | %s quit", m.Keys.Today, m.Keys.Schedule, m.Keys.Stats, m.Keys.Review, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewToday, ViewSchedule, ViewStats, ViewReview:
		return true
	default:
		return false
	}
}
