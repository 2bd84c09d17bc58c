package views

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sandeepkv93/goodmorning/internal/model"
)

type ChecklistItem struct {
	Title    string
	Done     bool
	Selected bool
}

type TodayPanelData struct {
	Clock        string
	Date         string
	Enabled      bool
	NextWake     string
	NextOverride string
	Streak       int
	Routine      []string

	Ringing      bool
	RingingLabel string
	RingingSince string

	SessionActive   bool
	SessionElapsed  string
	SessionProgress string
	SessionTodos    []ChecklistItem

	TodayResult string
	TodayDiff   string
}

type AlarmRow struct {
	Time     string
	Label    string
	Repeat   string
	Enabled  bool
	Selected bool
}

type SchedulePanelData struct {
	Enabled      bool
	DefaultTime  string
	NextOverride string
	TableView    string
	Routine      []string
	Triggers     int
	Alarms       []AlarmRow
}

type DayResultData struct {
	Weekday string
	Date    string
	Result  string
	Present bool
	Today   bool
}

type StatsPanelData struct {
	WeekOf        string
	SuccessRate   string
	AverageDiff   string
	TotalRecords  int
	CurrentStreak int
	LongestStreak int
	WeekStreak    int
	StreakBar     string
	ResultCounts  map[string]int
	Days          []DayResultData
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	Commands    []string
	HelpView    string
}

func RenderTodayPanel(data TodayPanelData) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(data.Clock) + "  " + data.Date + "\n")

	if data.Ringing {
		b.WriteString("\n" + ringingStyle.Render("WAKE UP") + "\n")
		if data.RingingLabel != "" {
			b.WriteString(data.RingingLabel + "\n")
		}
		b.WriteString(fmt.Sprintf("ringing since %s\n", data.RingingSince))
		b.WriteString("actions: [enter]dismiss\n")
		return strings.TrimSpace(b.String())
	}

	if data.SessionActive {
		b.WriteString("\nmorning tasks:\n")
		for _, item := range data.SessionTodos {
			b.WriteString(renderChecklistItem(item) + "\n")
		}
		b.WriteString(fmt.Sprintf("\n%s  elapsed %s\n", data.SessionProgress, data.SessionElapsed))
		b.WriteString("actions: [j/k]move [space]check [X]end early\n")
		return strings.TrimSpace(b.String())
	}

	if !data.Enabled {
		b.WriteString("\nwake target: off\n")
	} else if data.NextWake != "" {
		b.WriteString(fmt.Sprintf("\nnext wake: %s\n", data.NextWake))
	} else {
		b.WriteString("\nnext wake: none this week\n")
	}
	if data.NextOverride != "" {
		b.WriteString(fmt.Sprintf("override: %s (next alarm only)\n", data.NextOverride))
	}
	if data.TodayResult != "" {
		b.WriteString(fmt.Sprintf("today: %s %s, %s\n", ResultBadge(data.TodayResult), data.TodayResult, data.TodayDiff))
	}
	b.WriteString(fmt.Sprintf("streak: %d day(s)\n", data.Streak))
	if len(data.Routine) > 0 {
		b.WriteString("\nmorning routine:\n")
		for i, title := range data.Routine {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, title))
		}
	}
	return strings.TrimSpace(b.String())
}

func renderChecklistItem(item ChecklistItem) string {
	cursor := " "
	if item.Selected {
		cursor = ">"
	}
	if item.Done {
		return fmt.Sprintf("%s [x] %s", cursor, doneStyle.Render(item.Title))
	}
	return fmt.Sprintf("%s [ ] %s", cursor, item.Title)
}

func RenderSchedulePanel(data SchedulePanelData) string {
	var b strings.Builder
	b.WriteString("schedule:\n")
	b.WriteString(fmt.Sprintf("wake target: %s | default: %s | triggers: %d\n", onOff(data.Enabled), data.DefaultTime, data.Triggers))
	if data.NextOverride != "" {
		b.WriteString(fmt.Sprintf("next alarm override: %s\n", data.NextOverride))
	}
	b.WriteString("actions: [t]toggle target [j/k]alarm [space]toggle alarm [x]delete alarm\n")
	b.WriteString(data.TableView + "\n")

	b.WriteString("\nmorning routine:\n")
	if len(data.Routine) == 0 {
		b.WriteString(dimStyle.Render("  (none, add with /todo add <title>)") + "\n")
	}
	for i, title := range data.Routine {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, title))
	}

	b.WriteString("\nalarms:\n")
	if len(data.Alarms) == 0 {
		b.WriteString(dimStyle.Render("  (none, add with /alarm add 06:00 weekdays Gym)") + "\n")
	}
	for i, a := range data.Alarms {
		cursor := " "
		if a.Selected {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %d. %s %-10s %s", cursor, i+1, a.Time, a.Repeat, a.Label)
		if !a.Enabled {
			line = dimStyle.Render(line + " (off)")
		}
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderStatsPanel(data StatsPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("stats: week of %s\n", data.WeekOf))
	b.WriteString("actions: [h/l]week [0]this week\n\n")

	for _, d := range data.Days {
		mark := dimStyle.Render("·")
		if d.Present {
			mark = ResultBadge(d.Result)
		}
		label := d.Weekday
		if d.Today {
			label = headerStyle.Render(label)
		}
		b.WriteString(fmt.Sprintf("%s %s  ", label, mark))
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("success rate: %s of %d\n", data.SuccessRate, data.TotalRecords))
	b.WriteString(fmt.Sprintf("average: %s\n", data.AverageDiff))
	b.WriteString(fmt.Sprintf("best run this week: %d\n", data.WeekStreak))
	if len(data.ResultCounts) > 0 {
		keys := make([]string, 0, len(data.ResultCounts))
		for k := range data.ResultCounts {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return resultRank(keys[i]) < resultRank(keys[j]) })
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s %d", k, data.ResultCounts[k]))
		}
		b.WriteString("results: " + strings.Join(parts, ", ") + "\n")
	}
	b.WriteString(fmt.Sprintf("\nstreak: %d (longest %d)\n%s\n", data.CurrentStreak, data.LongestStreak, data.StreakBar))
	return strings.TrimSpace(b.String())
}

// ReviewMarkdown describes one day's wake record for glamour rendering.
func ReviewMarkdown(date string, rec *model.WakeRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", date))
	if rec == nil {
		b.WriteString("_No wake record for this day._\n")
		return b.String()
	}
	if rec.AlarmLabel != "" {
		b.WriteString(fmt.Sprintf("**%s**\n\n", rec.AlarmLabel))
	}
	b.WriteString(fmt.Sprintf("- Result: **%s**\n", rec.Result))
	b.WriteString(fmt.Sprintf("- Target: %s\n", rec.TargetTime))
	if rec.Result != model.WakeResultMissed {
		b.WriteString(fmt.Sprintf("- Rang: %s\n", clock(rec.AlarmTriggeredAt)))
		b.WriteString(fmt.Sprintf("- Dismissed: %s\n", clock(rec.DismissedAt)))
		b.WriteString(fmt.Sprintf("- Difference: %+d min\n", rec.DiffMinutes))
	}
	if rec.HealthKitWakeTime != nil {
		b.WriteString(fmt.Sprintf("- Detected wake-up: %s\n", clock(*rec.HealthKitWakeTime)))
	}
	if len(rec.Todos) == 0 {
		return b.String()
	}

	b.WriteString("\n## Morning tasks\n\n")
	for _, todo := range rec.Todos {
		box := " "
		suffix := ""
		if todo.CompletedAt != nil {
			box = "x"
			suffix = " at " + clock(*todo.CompletedAt)
			if todo.OrderCompleted != nil {
				suffix += fmt.Sprintf(" (#%d)", *todo.OrderCompleted)
			}
		}
		b.WriteString(fmt.Sprintf("- [%s] %s%s\n", box, todo.Title, suffix))
	}
	if rec.TodosCompleted {
		b.WriteString(fmt.Sprintf("\nAll done in %d min %02d s.\n", rec.TodoCompletionSeconds/60, rec.TodoCompletionSeconds%60))
	} else if rec.TodosCompletedAt != nil {
		b.WriteString("\nSession ended before every task was done.\n")
	}
	return b.String()
}

func RenderReviewPanel(date, body string) string {
	return fmt.Sprintf("review: %s\nactions: [h/l]day [j/k]scroll [0]today\n\n%s", date, body)
}

func RenderCommandPalette(inputView string) string {
	return fmt.Sprintf("command:\n%s", inputView)
}

func RenderNotification(level, title, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	if title == "" {
		return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
	}
	return fmt.Sprintf("notification: [%s] %s: %s", strings.ToUpper(level), title, body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n\ncommands:\n%s\n\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		"  /"+strings.Join(data.Commands, "\n  /"),
		data.HelpView,
	)
}

// ResultBadge is a colored one-cell marker for a wake result.
func ResultBadge(result string) string {
	switch model.WakeResult(result) {
	case model.WakeResultGreat:
		return greatStyle.Render("●")
	case model.WakeResultOK:
		return okStyle.Render("●")
	case model.WakeResultLate:
		return lateStyle.Render("●")
	case model.WakeResultMissed:
		return missedStyle.Render("✕")
	default:
		return dimStyle.Render("·")
	}
}

func resultRank(result string) int {
	for i, r := range model.WakeResults {
		if string(r) == result {
			return i
		}
	}
	return len(model.WakeResults)
}

func clock(t time.Time) string {
	return t.Format("15:04")
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
