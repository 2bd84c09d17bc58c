package notify

import (
	"context"
	"time"
)

const (
	RepeatCount           = 5
	RepeatIntervalSeconds = 30

	AlarmSound   = "alarm-notification.wav"
	DefaultTitle = "Good morning"
	DefaultBody  = "Time to wake up"
)

type Content struct {
	Title   string
	Body    string
	Sound   string
	AlarmID string
	// Episode is shared by every trigger of one burst.
	Episode string
}

// Trigger is a calendar trigger. Weekly triggers repeat on Weekday at
// Hour:Minute:Second; one-shot triggers fire once at At.
type Trigger struct {
	At      time.Time
	Weekday *time.Weekday
	Hour    int
	Minute  int
	Second  int
	Content Content
}

func (t Trigger) Repeats() bool {
	return t.Weekday != nil
}

// Notifier delivers local notifications.
type Notifier interface {
	HasPermission(ctx context.Context) bool
	RequestPermission(ctx context.Context) bool
	ScheduleTrigger(ctx context.Context, t Trigger) (string, error)
	CancelTrigger(ctx context.Context, id string) error
}

// Fired is what a delivered trigger reports back to the app.
type Fired struct {
	TriggerID string
	AlarmID   string
	Episode   string
	FiredAt   time.Time
}
