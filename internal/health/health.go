package health

import (
	"context"
	"math"
	"time"
)

type SleepSummary struct {
	Bedtime      time.Time `json:"bedtime"`
	WakeUpTime   time.Time `json:"wakeUpTime"`
	TotalMinutes int       `json:"totalMinutes"`
}

type Sample struct {
	Start time.Time
	End   time.Time
}

// Source reads sleep data. A missing summary is reported as false, not an error.
type Source interface {
	IsAvailable(ctx context.Context) bool
	QuerySleepSummary(ctx context.Context, date time.Time) (SleepSummary, bool, error)
}

// Summarize spans the earliest sample start to the latest sample end.
func Summarize(samples []Sample) (SleepSummary, bool) {
	if len(samples) == 0 {
		return SleepSummary{}, false
	}
	start, end := samples[0].Start, samples[0].End
	for _, s := range samples[1:] {
		if s.Start.Before(start) {
			start = s.Start
		}
		if s.End.After(end) {
			end = s.End
		}
	}
	return SleepSummary{
		Bedtime:      start,
		WakeUpTime:   end,
		TotalMinutes: int(math.Round(end.Sub(start).Minutes())),
	}, true
}

type NoopSource struct{}

func (NoopSource) IsAvailable(context.Context) bool { return false }

func (NoopSource) QuerySleepSummary(context.Context, time.Time) (SleepSummary, bool, error) {
	return SleepSummary{}, false, nil
}
