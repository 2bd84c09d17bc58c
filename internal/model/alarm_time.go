package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidAlarmTime = errors.New("model: invalid alarm time")
	ErrInvalidTodo      = errors.New("model: invalid todo")
	ErrInvalidOverride  = errors.New("model: invalid day override")
	ErrInvalidAlarm     = errors.New("model: invalid alarm")
	ErrInvalidRecord    = errors.New("model: invalid wake record")
)

var validate = validator.New()

// AlarmTime is a wall-clock hour and minute with no date attached.
type AlarmTime struct {
	Hour   int `json:"hour" validate:"gte=0,lte=23"`
	Minute int `json:"minute" validate:"gte=0,lte=59"`
}

func NewAlarmTime(hour, minute int) (AlarmTime, error) {
	t := AlarmTime{Hour: hour, Minute: minute}
	if err := t.Validate(); err != nil {
		return AlarmTime{}, err
	}
	return t, nil
}

// ParseAlarmTime accepts H:MM or HH:MM.
func ParseAlarmTime(raw string) (AlarmTime, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 || len(parts[1]) != 2 {
		return AlarmTime{}, fmt.Errorf("%w: %q", ErrInvalidAlarmTime, raw)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return AlarmTime{}, fmt.Errorf("%w: %q", ErrInvalidAlarmTime, raw)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return AlarmTime{}, fmt.Errorf("%w: %q", ErrInvalidAlarmTime, raw)
	}
	return NewAlarmTime(h, m)
}

func (t AlarmTime) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %02d:%02d: %v", ErrInvalidAlarmTime, t.Hour, t.Minute, err)
	}
	return nil
}

func (t AlarmTime) MinutesOfDay() int {
	return t.Hour*60 + t.Minute
}

func (t AlarmTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns the instant at this clock time on day's calendar date.
func (t AlarmTime) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, day.Location())
}
