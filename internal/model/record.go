package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type WakeResult string

const (
	WakeResultGreat  WakeResult = "great"
	WakeResultOK     WakeResult = "ok"
	WakeResultLate   WakeResult = "late"
	WakeResultMissed WakeResult = "missed"
)

// WakeResults lists every tier in display order.
var WakeResults = []WakeResult{WakeResultGreat, WakeResultOK, WakeResultLate, WakeResultMissed}

func (r WakeResult) IsValid() bool {
	switch r {
	case WakeResultGreat, WakeResultOK, WakeResultLate, WakeResultMissed:
		return true
	default:
		return false
	}
}

func (r WakeResult) IsSuccess() bool {
	return r == WakeResultGreat || r == WakeResultOK
}

const (
	greatThresholdMinutes = 5
	okThresholdMinutes    = 15
)

// CalculateWakeResult never returns WakeResultMissed; that tier is reserved
// for alarms that were never dismissed.
func CalculateWakeResult(diffMinutes int) WakeResult {
	switch {
	case diffMinutes <= greatThresholdMinutes:
		return WakeResultGreat
	case diffMinutes <= okThresholdMinutes:
		return WakeResultOK
	default:
		return WakeResultLate
	}
}

const minutesPerDay = 24 * 60

// CalculateDiffMinutes compares clock readings only. The difference is folded
// into [-720, 720) so a dismissal shortly after midnight for a late-evening
// target reads as a few minutes late rather than almost a day early.
func CalculateDiffMinutes(target AlarmTime, actual time.Time) int {
	diff := actual.Hour()*60 + actual.Minute() - target.MinutesOfDay()
	if diff >= minutesPerDay/2 {
		diff -= minutesPerDay
	}
	if diff < -minutesPerDay/2 {
		diff += minutesPerDay
	}
	return diff
}

type WakeTodoRecord struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	CompletedAt    *time.Time `json:"completedAt"`
	OrderCompleted *int       `json:"orderCompleted"`
}

type WakeRecord struct {
	ID                    string           `json:"id"`
	AlarmID               string           `json:"alarmId"`
	Date                  string           `json:"date"`
	TargetTime            AlarmTime        `json:"targetTime"`
	AlarmTriggeredAt      time.Time        `json:"alarmTriggeredAt"`
	DismissedAt           time.Time        `json:"dismissedAt"`
	HealthKitWakeTime     *time.Time       `json:"healthKitWakeTime"`
	Result                WakeResult       `json:"result"`
	DiffMinutes           int              `json:"diffMinutes"`
	Todos                 []WakeTodoRecord `json:"todos"`
	TodoCompletionSeconds int              `json:"todoCompletionSeconds"`
	AlarmLabel            string           `json:"alarmLabel"`
	TodosCompleted        bool             `json:"todosCompleted"`
	TodosCompletedAt      *time.Time       `json:"todosCompletedAt"`
}

func NewRecordID() string {
	return "wake_" + uuid.NewString()
}

func (r WakeRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRecord)
	}
	if len(r.Date) != len("2006-01-02") {
		return fmt.Errorf("%w: date %q", ErrInvalidRecord, r.Date)
	}
	if !r.Result.IsValid() {
		return fmt.Errorf("%w: result %q", ErrInvalidRecord, r.Result)
	}
	if r.TodoCompletionSeconds < 0 {
		return fmt.Errorf("%w: negative todo completion seconds", ErrInvalidRecord)
	}
	return r.TargetTime.Validate()
}

func (r WakeRecord) Clone() WakeRecord {
	out := r
	out.HealthKitWakeTime = cloneTime(r.HealthKitWakeTime)
	out.TodosCompletedAt = cloneTime(r.TodosCompletedAt)
	if r.Todos != nil {
		out.Todos = make([]WakeTodoRecord, len(r.Todos))
		for i, todo := range r.Todos {
			todo.CompletedAt = cloneTime(todo.CompletedAt)
			if todo.OrderCompleted != nil {
				n := *todo.OrderCompleted
				todo.OrderCompleted = &n
			}
			out.Todos[i] = todo
		}
	}
	return out
}

type WakeStats struct {
	SuccessRate        float64            `json:"successRate"`
	AverageDiffMinutes float64            `json:"averageDiffMinutes"`
	CurrentStreak      int                `json:"currentStreak"`
	LongestStreak      int                `json:"longestStreak"`
	TotalRecords       int                `json:"totalRecords"`
	ResultCounts       map[WakeResult]int `json:"resultCounts"`
}

func EmptyResultCounts() map[WakeResult]int {
	out := make(map[WakeResult]int, len(WakeResults))
	for _, r := range WakeResults {
		out[r] = 0
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
