package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the fixed-width form used for record and session dates.
// Lexicographic order on it matches chronological order.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("calendar: invalid date")

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatClock(t time.Time) string {
	return t.Format("15:04")
}

// ParseDate returns midnight UTC of the given YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// DaysBetween returns the whole-day difference to - from, ignoring time of day.
func DaysBetween(from, to string) (int, error) {
	a, err := ParseDate(from)
	if err != nil {
		return 0, err
	}
	b, err := ParseDate(to)
	if err != nil {
		return 0, err
	}
	return int(b.Sub(a).Hours() / 24), nil
}

func AddDays(date string, n int) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(d.AddDate(0, 0, n)), nil
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns the Monday that opens the week containing t.
func WeekStart(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// WeekDates returns Monday through Sunday of the week containing t.
func WeekDates(t time.Time) []time.Time {
	monday := WeekStart(t)
	out := make([]time.Time, 0, 7)
	for i := 0; i < 7; i++ {
		out = append(out, monday.AddDate(0, 0, i))
	}
	return out
}

// NextWeekday returns the first date on or after from's date that falls on wd.
func NextWeekday(from time.Time, wd time.Weekday) time.Time {
	delta := (int(wd) - int(from.Weekday()) + 7) % 7
	return StartOfDay(from).AddDate(0, 0, delta)
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

var ErrInvalidWeekday = errors.New("calendar: invalid weekday")

// ParseWeekday accepts full or abbreviated English day names in any case.
func ParseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
	}
	return wd, nil
}

// ShortWeekday returns the three-letter name, e.g. "Mon".
func ShortWeekday(wd time.Weekday) string {
	return wd.String()[:3]
}
