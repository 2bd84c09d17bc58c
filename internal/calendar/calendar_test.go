package calendar

import (
	"errors"
	"testing"
	"time"
)

func TestFormatAndParseDate(t *testing.T) {
	ts := time.Date(2026, 3, 7, 23, 59, 0, 0, time.UTC)
	if got := FormatDate(ts); got != "2026-03-07" {
		t.Fatalf("unexpected date: %s", got)
	}
	parsed, err := ParseDate("2026-03-07")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if !parsed.Equal(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected parsed date: %s", parsed)
	}
	if _, err := ParseDate("2026-3-7"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDaysBetweenIgnoresTimeOfDayAndCrossesMonths(t *testing.T) {
	n, err := DaysBetween("2026-02-27", "2026-03-02")
	if err != nil {
		t.Fatalf("days between: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 days, got %d", n)
	}
	n, _ = DaysBetween("2026-03-02", "2026-02-27")
	if n != -3 {
		t.Fatalf("expected -3 days, got %d", n)
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2026-12-29", 6)
	if err != nil {
		t.Fatalf("add days: %v", err)
	}
	if got != "2027-01-04" {
		t.Fatalf("unexpected result: %s", got)
	}
}

func TestWeekStartIsMonday(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC), "2026-02-09"},  // Monday
		{time.Date(2026, 2, 15, 8, 0, 0, 0, time.UTC), "2026-02-09"}, // Sunday
		{time.Date(2026, 2, 12, 8, 0, 0, 0, time.UTC), "2026-02-09"}, // Thursday
	}
	for _, tc := range cases {
		if got := FormatDate(WeekStart(tc.in)); got != tc.want {
			t.Fatalf("week start of %s = %s, want %s", tc.in.Format(time.RFC3339), got, tc.want)
		}
	}
}

func TestWeekDates(t *testing.T) {
	dates := WeekDates(time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC))
	if len(dates) != 7 {
		t.Fatalf("expected 7 dates, got %d", len(dates))
	}
	if dates[0].Weekday() != time.Monday || dates[6].Weekday() != time.Sunday {
		t.Fatalf("unexpected week bounds: %s..%s", dates[0].Weekday(), dates[6].Weekday())
	}
	if FormatDate(dates[6]) != "2026-02-15" {
		t.Fatalf("unexpected last date: %s", FormatDate(dates[6]))
	}
}

func TestNextWeekday(t *testing.T) {
	from := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC) // Friday
	if got := FormatDate(NextWeekday(from, time.Friday)); got != "2026-02-13" {
		t.Fatalf("same weekday should be today, got %s", got)
	}
	if got := FormatDate(NextWeekday(from, time.Monday)); got != "2026-02-16" {
		t.Fatalf("unexpected next monday: %s", got)
	}
	if got := FormatDate(NextWeekday(from, time.Thursday)); got != "2026-02-19" {
		t.Fatalf("unexpected next thursday: %s", got)
	}
}

func TestParseWeekday(t *testing.T) {
	cases := map[string]time.Weekday{"mon": time.Monday, "Thursday": time.Thursday, " SUN ": time.Sunday, "thurs": time.Thursday}
	for in, want := range cases {
		got, err := ParseWeekday(in)
		if err != nil || got != want {
			t.Fatalf("ParseWeekday(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseWeekday("someday"); !errors.Is(err, ErrInvalidWeekday) {
		t.Fatalf("expected invalid weekday error, got %v", err)
	}
	if ShortWeekday(time.Wednesday) != "Wed" {
		t.Fatalf("unexpected short weekday: %s", ShortWeekday(time.Wednesday))
	}
}
