package stats

import (
	"math"
	"sort"
	"time"

	"github.com/sandeepkv93/goodmorning/internal/calendar"
	"github.com/sandeepkv93/goodmorning/internal/model"
)

// CurrentStreak counts trailing successes from the newest record backward.
// It stops at the first late or missed result, or where consecutive records
// are more than one calendar day apart.
func CurrentStreak(records []model.WakeRecord) int {
	sorted := sortedByDate(records)
	streak := 0
	prev := ""
	for i := len(sorted) - 1; i >= 0; i-- {
		rec := sorted[i]
		if !rec.Result.IsSuccess() {
			break
		}
		if prev != "" {
			gap, err := calendar.DaysBetween(rec.Date, prev)
			if err != nil || gap > 1 {
				break
			}
		}
		streak++
		prev = rec.Date
	}
	return streak
}

func WeekStats(records []model.WakeRecord, weekStart time.Time) model.WakeStats {
	start := calendar.FormatDate(weekStart)
	end := calendar.FormatDate(weekStart.AddDate(0, 0, 6))
	return PeriodStats(records, start, end)
}

// PeriodStats aggregates records dated within [start, end], both YYYY-MM-DD.
// Its streaks break only on non-success results, not on missing days.
func PeriodStats(records []model.WakeRecord, start, end string) model.WakeStats {
	out := model.WakeStats{ResultCounts: model.EmptyResultCounts()}
	period := Filter(records, start, end)
	if len(period) == 0 {
		return out
	}

	totalDiff := 0
	for _, rec := range period {
		out.ResultCounts[rec.Result]++
		totalDiff += rec.DiffMinutes
	}
	total := len(period)
	success := out.ResultCounts[model.WakeResultGreat] + out.ResultCounts[model.WakeResultOK]

	run := 0
	for _, rec := range sortedByDate(period) {
		if rec.Result.IsSuccess() {
			run++
			if run > out.LongestStreak {
				out.LongestStreak = run
			}
		} else {
			run = 0
		}
	}

	out.TotalRecords = total
	out.SuccessRate = roundTenth(100 * float64(success) / float64(total))
	out.AverageDiffMinutes = float64(totalDiff) / float64(total)
	out.CurrentStreak = run
	return out
}

// Filter keeps records with start <= date <= end; the fixed-width date
// format makes string comparison match calendar order.
func Filter(records []model.WakeRecord, start, end string) []model.WakeRecord {
	out := make([]model.WakeRecord, 0, len(records))
	for _, rec := range records {
		if rec.Date >= start && rec.Date <= end {
			out = append(out, rec)
		}
	}
	return out
}

// DailyResults maps each date of the week starting at weekStart to the
// result of its latest record, for calendar strips.
func DailyResults(records []model.WakeRecord, weekStart time.Time) []DayResult {
	byDate := make(map[string]model.WakeResult, len(records))
	for _, rec := range records {
		byDate[rec.Date] = rec.Result
	}
	days := calendar.WeekDates(weekStart)
	out := make([]DayResult, 0, len(days))
	for _, day := range days {
		date := calendar.FormatDate(day)
		result, ok := byDate[date]
		out = append(out, DayResult{Date: date, Weekday: day.Weekday(), Result: result, Present: ok})
	}
	return out
}

type DayResult struct {
	Date    string
	Weekday time.Weekday
	Result  model.WakeResult
	Present bool
}

func sortedByDate(records []model.WakeRecord) []model.WakeRecord {
	out := append([]model.WakeRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
