package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/goodmorning/internal/calendar"
	"github.com/sandeepkv93/goodmorning/internal/stats"
	"github.com/sandeepkv93/goodmorning/internal/views"
)

func (m Model) handleStatsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.StatsWeek = m.StatsWeek.AddDate(0, 0, -7)
	case "l", "right":
		next := m.StatsWeek.AddDate(0, 0, 7)
		if !next.After(m.now()) {
			m.StatsWeek = next
		}
	case "0":
		m.StatsWeek = calendar.WeekStart(m.now())
	}
	return m, nil
}

func (m Model) renderStatsView() string {
	st := m.svc.WeekStats(m.StatsWeek)
	streak := m.svc.CurrentStreak()
	longest := stats.PeriodStats(m.svc.Records.Records(), "0000-01-01", "9999-12-31").LongestStreak
	ratio := 0.0
	if longest > 0 {
		ratio = float64(streak) / float64(longest)
	}

	days := make([]views.DayResultData, 0, 7)
	for _, d := range stats.DailyResults(m.svc.Records.Records(), m.StatsWeek) {
		days = append(days, views.DayResultData{
			Weekday: calendar.ShortWeekday(d.Weekday),
			Date:    d.Date,
			Result:  string(d.Result),
			Present: d.Present,
			Today:   d.Date == m.today(),
		})
	}
	counts := make(map[string]int, len(st.ResultCounts))
	for result, n := range st.ResultCounts {
		counts[string(result)] = n
	}

	return views.RenderStatsPanel(views.StatsPanelData{
		WeekOf:        calendar.FormatDate(m.StatsWeek),
		SuccessRate:   fmt.Sprintf("%.1f%%", st.SuccessRate),
		AverageDiff:   fmt.Sprintf("%+.1f min", st.AverageDiffMinutes),
		TotalRecords:  st.TotalRecords,
		CurrentStreak: streak,
		LongestStreak: longest,
		WeekStreak:    st.CurrentStreak,
		StreakBar:     m.streakProgress.ViewAs(ratio),
		ResultCounts:  counts,
		Days:          days,
	})
}
