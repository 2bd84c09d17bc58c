package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/goodmorning/internal/calendar"
	"github.com/sandeepkv93/goodmorning/internal/views"
)

func (m Model) handleReviewKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.shiftReviewDate(-1)
	case "l", "right":
		if m.ReviewDate < m.today() {
			m.shiftReviewDate(1)
		}
	case "0":
		m.ReviewDate = m.today()
	default:
		var cmd tea.Cmd
		m.reviewViewport, cmd = m.reviewViewport.Update(msg)
		return m, cmd
	}
	m.reviewViewport.GotoTop()
	return m, nil
}

func (m *Model) shiftReviewDate(days int) {
	next, err := calendar.AddDays(m.ReviewDate, days)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.ReviewDate = next
}

func (m Model) reviewMarkdown() string {
	rec, ok := m.svc.DayReview(m.ReviewDate)
	if !ok {
		return views.ReviewMarkdown(m.ReviewDate, nil)
	}
	return views.ReviewMarkdown(m.ReviewDate, &rec)
}

func (m Model) renderReviewView() string {
	return views.RenderReviewPanel(m.ReviewDate, m.reviewViewport.View())
}
