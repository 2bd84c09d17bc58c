package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// TargetAlarmID is the alarm id carried by records and triggers of the wake target.
const TargetAlarmID = "wake-target"

// Alarm is a standalone alarm template with its own checklist.
// An empty RepeatDays means the alarm rings once.
type Alarm struct {
	ID              string         `json:"id" validate:"required"`
	Time            AlarmTime      `json:"time"`
	Enabled         bool           `json:"enabled"`
	Label           string         `json:"label" validate:"max=64"`
	Todos           []TodoItem     `json:"todos" validate:"dive"`
	RepeatDays      []time.Weekday `json:"repeatDays" validate:"dive,gte=0,lte=6"`
	NotificationIDs []string       `json:"notificationIds"`
	// ArmedAt is the first trigger of a one-time alarm's burst.
	ArmedAt *time.Time `json:"armedAt,omitempty"`
}

func NewAlarmID() string {
	return "alarm_" + uuid.NewString()
}

func (a Alarm) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAlarm, err)
	}
	days := append([]time.Weekday(nil), a.RepeatDays...)
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	for i := 1; i < len(days); i++ {
		if days[i] == days[i-1] {
			return fmt.Errorf("%w: duplicate repeat day %s", ErrInvalidAlarm, days[i])
		}
	}
	return nil
}

func (a Alarm) Once() bool {
	return len(a.RepeatDays) == 0
}

// NextOnce is the next instant at or after now that the alarm time falls on.
func (a Alarm) NextOnce(now time.Time) time.Time {
	at := a.Time.On(now)
	if at.Before(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}

func (a Alarm) Clone() Alarm {
	out := a
	if a.ArmedAt != nil {
		armed := *a.ArmedAt
		out.ArmedAt = &armed
	}
	if a.Todos != nil {
		out.Todos = append([]TodoItem{}, a.Todos...)
	}
	if a.RepeatDays != nil {
		out.RepeatDays = append([]time.Weekday{}, a.RepeatDays...)
	}
	if a.NotificationIDs != nil {
		out.NotificationIDs = append([]string{}, a.NotificationIDs...)
	}
	return out
}

func (a Alarm) AllTodosCompleted() bool {
	for _, todo := range a.Todos {
		if !todo.Completed {
			return false
		}
	}
	return true
}
