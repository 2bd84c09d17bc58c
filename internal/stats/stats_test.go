package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/goodmorning/internal/model"
)

func rec(date string, result model.WakeResult, diff int) model.WakeRecord {
	return model.WakeRecord{ID: "wake-" + date, Date: date, Result: result, DiffMinutes: diff}
}

func TestCurrentStreakConsecutiveSuccesses(t *testing.T) {
	records := []model.WakeRecord{
		rec("2026-02-07", model.WakeResultGreat, 0),
		rec("2026-02-09", model.WakeResultOK, 10),
		rec("2026-02-08", model.WakeResultGreat, 2),
	}
	assert.Equal(t, 3, CurrentStreak(records))
}

func TestCurrentStreakStopsAtNonSuccess(t *testing.T) {
	records := []model.WakeRecord{
		rec("2026-02-05", model.WakeResultGreat, 0),
		rec("2026-02-06", model.WakeResultGreat, 0),
		rec("2026-02-07", model.WakeResultLate, 30),
		rec("2026-02-08", model.WakeResultGreat, 0),
		rec("2026-02-09", model.WakeResultGreat, 0),
	}
	assert.Equal(t, 2, CurrentStreak(records))

	records[4].Result = model.WakeResultMissed
	assert.Equal(t, 0, CurrentStreak(records))
}

func TestCurrentStreakStopsAtDateGap(t *testing.T) {
	records := []model.WakeRecord{
		rec("2026-02-04", model.WakeResultGreat, 0),
		rec("2026-02-05", model.WakeResultGreat, 0),
		rec("2026-02-06", model.WakeResultGreat, 0),
		rec("2026-02-08", model.WakeResultGreat, 0),
		rec("2026-02-09", model.WakeResultGreat, 0),
	}
	assert.Equal(t, 2, CurrentStreak(records))
}

func TestCurrentStreakAcrossMonthBoundary(t *testing.T) {
	records := []model.WakeRecord{
		rec("2026-02-28", model.WakeResultGreat, 0),
		rec("2026-03-01", model.WakeResultOK, 7),
	}
	assert.Equal(t, 2, CurrentStreak(records))
	assert.Equal(t, 0, CurrentStreak(nil))
}

func TestWeekStatsEmpty(t *testing.T) {
	got := WeekStats(nil, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, model.WakeStats{ResultCounts: map[model.WakeResult]int{
		model.WakeResultGreat:  0,
		model.WakeResultOK:     0,
		model.WakeResultLate:   0,
		model.WakeResultMissed: 0,
	}}, got)
}

func TestWeekStatsRoundsSuccessRate(t *testing.T) {
	monday := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	records := []model.WakeRecord{
		rec("2026-02-09", model.WakeResultGreat, 0),
		rec("2026-02-10", model.WakeResultLate, 20),
		rec("2026-02-11", model.WakeResultOK, 10),
	}
	got := WeekStats(records, monday)
	assert.Equal(t, 3, got.TotalRecords)
	assert.InDelta(t, 66.7, got.SuccessRate, 1e-9)
	assert.InDelta(t, 10.0, got.AverageDiffMinutes, 1e-9)
	assert.Equal(t, 1, got.ResultCounts[model.WakeResultLate])
	assert.Equal(t, 1, got.LongestStreak)
	assert.Equal(t, 1, got.CurrentStreak)
}

func TestWeekStatsWindowIsInclusive(t *testing.T) {
	monday := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	records := []model.WakeRecord{
		rec("2026-02-08", model.WakeResultLate, 40),
		rec("2026-02-09", model.WakeResultGreat, 0),
		rec("2026-02-11", model.WakeResultGreat, 0),
		rec("2026-02-12", model.WakeResultGreat, -5),
		rec("2026-02-13", model.WakeResultLate, 25),
		rec("2026-02-15", model.WakeResultOK, 8),
		rec("2026-02-16", model.WakeResultGreat, 0),
	}
	got := WeekStats(records, monday)
	require.Equal(t, 5, got.TotalRecords)
	assert.Equal(t, 3, got.LongestStreak, "gaps inside the week do not break the run")
	assert.Equal(t, 1, got.CurrentStreak)
	assert.InDelta(t, 80.0, got.SuccessRate, 1e-9)
	assert.InDelta(t, 5.6, got.AverageDiffMinutes, 1e-9)
}

func TestDailyResults(t *testing.T) {
	monday := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	days := DailyResults([]model.WakeRecord{rec("2026-02-10", model.WakeResultOK, 9)}, monday)
	require.Len(t, days, 7)
	assert.False(t, days[0].Present)
	assert.True(t, days[1].Present)
	assert.Equal(t, model.WakeResultOK, days[1].Result)
	assert.Equal(t, time.Sunday, days[6].Weekday)
}
