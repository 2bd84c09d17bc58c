package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/goodmorning/internal/model"
	"github.com/sandeepkv93/goodmorning/internal/notify"
)

func (m Model) onAlarmFired(msg AlarmFiredMsg) (Model, tea.Cmd) {
	r, started, err := m.svc.TriggerFired(m.ctx, msg.Fired)
	if err != nil {
		return m.fail(err), nil
	}
	if !started {
		m.log.Debugw("burst trigger while ringing", "episode", msg.Fired.Episode)
		return m, nil
	}
	m.CurrentView = ViewToday
	m.Cursor = 0
	title := strings.TrimSpace(msg.Title)
	if title == "" {
		title = notify.DefaultTitle
	}
	body := strings.TrimSpace(msg.Body)
	if body == "" {
		body = notify.DefaultBody
	}
	if r.Label != "" && !strings.Contains(body, r.Label) {
		body = fmt.Sprintf("%s: %s", r.Label, body)
	}
	m.setStatus(fmt.Sprintf("ringing since %s; press enter to dismiss", r.TriggeredAt.Format("15:04")), false)
	m.notify(title, body, "alarm")
	return m, nil
}

// ringNow simulates a wake target delivery, for checking the flow end to end.
func (m Model) ringNow() (Model, tea.Cmd) {
	now := m.now()
	return m.onAlarmFired(AlarmFiredMsg{Fired: notify.Fired{
		AlarmID: model.TargetAlarmID,
		Episode: model.TargetAlarmID + ":manual:" + now.Format(time.RFC3339),
		FiredAt: now,
	}})
}
