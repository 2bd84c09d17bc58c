package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func mustAlarmTime(t *testing.T, raw string) AlarmTime {
	t.Helper()
	at, err := ParseAlarmTime(raw)
	if err != nil {
		t.Fatalf("parse alarm time %q: %v", raw, err)
	}
	return at
}

func TestResolvePriority(t *testing.T) {
	monday := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	target := DefaultWakeTarget()
	target.DayOverrides = target.DayOverrides.With(time.Monday, Custom{Time: mustAlarmTime(t, "8:30")})

	got, ok := Resolve(target, monday)
	if !ok || got != mustAlarmTime(t, "08:30") {
		t.Fatalf("expected day override 08:30, got %s ok=%v", got, ok)
	}

	got, ok = Resolve(target, monday.AddDate(0, 0, 1))
	if !ok || got != mustAlarmTime(t, "07:00") {
		t.Fatalf("expected default 07:00 on tuesday, got %s ok=%v", got, ok)
	}

	target.NextOverride = &NextOverride{Time: mustAlarmTime(t, "05:45")}
	got, ok = Resolve(target, monday)
	if !ok || got != mustAlarmTime(t, "05:45") {
		t.Fatalf("expected next override 05:45, got %s ok=%v", got, ok)
	}
}

func TestResolveOffDay(t *testing.T) {
	sunday := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)
	target := DefaultWakeTarget()
	target.DayOverrides = target.DayOverrides.With(time.Sunday, Off{})

	if _, ok := Resolve(target, sunday); ok {
		t.Fatal("expected no alarm on an off day")
	}

	target.NextOverride = &NextOverride{Time: mustAlarmTime(t, "09:00")}
	got, ok := Resolve(target, sunday)
	if !ok || got.Hour != 9 {
		t.Fatalf("next override should win over off day, got %s ok=%v", got, ok)
	}
}

func TestParseAlarmTimeRejectsOutOfRange(t *testing.T) {
	for _, raw := range []string{"24:00", "7:60", "7", "07:5", "ab:cd", "-1:00"} {
		if _, err := ParseAlarmTime(raw); !errors.Is(err, ErrInvalidAlarmTime) {
			t.Fatalf("expected ErrInvalidAlarmTime for %q, got %v", raw, err)
		}
	}
	if got := mustAlarmTime(t, "6:05").String(); got != "06:05" {
		t.Fatalf("unexpected string form: %s", got)
	}
}

func TestWakeTargetJSONRoundTrip(t *testing.T) {
	target := DefaultWakeTarget()
	target.DayOverrides = target.DayOverrides.
		With(time.Saturday, Off{}).
		With(time.Wednesday, Custom{Time: AlarmTime{Hour: 6, Minute: 15}})
	target.NextOverride = &NextOverride{Time: AlarmTime{Hour: 5, Minute: 30}}
	target.Todos = []TodoItem{{ID: "todo-1", Title: "Stretch"}}

	raw, err := json.Marshal(target)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got WakeTarget
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := got.DayOverrides.Get(time.Saturday).(Off); !ok {
		t.Fatalf("expected saturday off, got %#v", got.DayOverrides.Get(time.Saturday))
	}
	custom, ok := got.DayOverrides.Get(time.Wednesday).(Custom)
	if !ok || custom.Time.String() != "06:15" {
		t.Fatalf("expected wednesday custom 06:15, got %#v", got.DayOverrides.Get(time.Wednesday))
	}
	if got.DayOverrides.Get(time.Monday) != nil {
		t.Fatalf("expected monday without override")
	}
	if got.NextOverride == nil || got.NextOverride.Time.String() != "05:30" {
		t.Fatalf("unexpected next override: %#v", got.NextOverride)
	}
	if len(got.Todos) != 1 || got.Todos[0].Title != "Stretch" || !got.Enabled {
		t.Fatalf("unexpected decoded target: %#v", got)
	}
}

func TestDayOverridesRejectUnknownType(t *testing.T) {
	var d DayOverrides
	err := json.Unmarshal([]byte(`{"2":{"type":"snooze"}}`), &d)
	if !errors.Is(err, ErrInvalidOverride) {
		t.Fatalf("expected ErrInvalidOverride, got %v", err)
	}
	err = json.Unmarshal([]byte(`{"9":{"type":"off"}}`), &d)
	if !errors.Is(err, ErrInvalidOverride) {
		t.Fatalf("expected ErrInvalidOverride for bad weekday, got %v", err)
	}
}

func TestWakeTargetValidateTodos(t *testing.T) {
	target := DefaultWakeTarget()
	target.Todos = []TodoItem{{ID: "a", Title: "One"}, {ID: "a", Title: "Two"}}
	if err := target.Validate(); !errors.Is(err, ErrInvalidTodo) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	target.Todos = []TodoItem{{ID: "a", Title: "  "}}
	if err := target.Validate(); !errors.Is(err, ErrInvalidTodo) {
		t.Fatalf("expected blank title error, got %v", err)
	}
}

func TestWakeTargetCloneIsIndependent(t *testing.T) {
	target := DefaultWakeTarget()
	target.NextOverride = &NextOverride{Time: AlarmTime{Hour: 6}}
	target.Todos = []TodoItem{{ID: "a", Title: "Water"}}

	clone := target.Clone()
	clone.NextOverride.Time.Hour = 9
	clone.Todos[0].Completed = true
	if target.NextOverride.Time.Hour != 6 || target.Todos[0].Completed {
		t.Fatalf("clone shares state with original: %#v", target)
	}
}
