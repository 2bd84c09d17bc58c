package commands

import (
	"errors"
	"testing"
	"time"
)

// Wednesday 2026-02-11.
var today = time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/default 07:00", TypeDefault},
		{"tomorrow 06:30", TypeTomorrow},
		{"tomorrow clear", TypeTomorrow},
		{"day sat off", TypeDay},
		{"day Mon 08:15", TypeDay},
		{"todo add drink water", TypeTodo},
		{"todo rm 2", TypeTodo},
		{"todo mv 3 1", TypeTodo},
		{"toggle", TypeToggle},
		{"/ring", TypeRing},
		{"alarm add 06:00 weekdays Gym", TypeAlarm},
		{"alarm toggle 1", TypeAlarm},
		{"review yesterday", TypeReview},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in, today)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseArguments(t *testing.T) {
	cmd, err := Parse("day thursday default", today)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Day.Day != time.Thursday || cmd.Day.Mode != DayDefault {
		t.Fatalf("unexpected day args: %+v", cmd.Day)
	}

	cmd, err = Parse("tomorrow 06:30", today)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Tomorrow.Clear || cmd.Tomorrow.Time.String() != "06:30" {
		t.Fatalf("unexpected tomorrow args: %+v", cmd.Tomorrow)
	}

	cmd, err = Parse("alarm add 05:45 mon,thu,mon Early run", today)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(cmd.Alarm.RepeatDays) != 2 || cmd.Alarm.RepeatDays[1] != time.Thursday {
		t.Fatalf("unexpected repeat days: %v", cmd.Alarm.RepeatDays)
	}
	if cmd.Alarm.Label != "Early run" {
		t.Fatalf("unexpected label: %q", cmd.Alarm.Label)
	}

	cmd, err = Parse("alarm add 05:45 Nap", today)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(cmd.Alarm.RepeatDays) != 0 || cmd.Alarm.Label != "Nap" {
		t.Fatalf("one-shot alarm parsed wrong: %+v", cmd.Alarm)
	}

	cmd, err = Parse("review", today)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Review.Date != "2026-02-11" {
		t.Fatalf("unexpected review date: %s", cmd.Review.Date)
	}
	cmd, _ = Parse("review yesterday", today)
	if cmd.Review.Date != "2026-02-10" {
		t.Fatalf("unexpected yesterday: %s", cmd.Review.Date)
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{
		"default 25:00",
		"default",
		"tomorrow later",
		"day someday 07:00",
		"day mon",
		"todo add",
		"todo rm zero",
		"todo rm 0",
		"todo mv 1",
		"toggle now",
		"alarm add",
		"review 2026-13-01",
	} {
		_, err := Parse(in, today)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument error, got %v", in, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x", today)
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "  ", "/"} {
		_, err := Parse(in, today)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input error, got %v", in, err)
		}
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/todo add write journal", today)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Todo: func(a TodoArgs) (Result, error) {
			called = true
			if a.Action != TodoAdd || a.Title != "write journal" {
				t.Fatalf("unexpected todo args: %+v", a)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("toggle", today)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
