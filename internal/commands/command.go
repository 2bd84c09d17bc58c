package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/goodmorning/internal/calendar"
	"github.com/sandeepkv93/goodmorning/internal/model"
)

type Type string

const (
	TypeDefault  Type = "default"
	TypeTomorrow Type = "tomorrow"
	TypeDay      Type = "day"
	TypeTodo     Type = "todo"
	TypeToggle   Type = "toggle"
	TypeRing     Type = "ring"
	TypeAlarm    Type = "alarm"
	TypeReview   Type = "review"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type DefaultArgs struct {
	Time model.AlarmTime
}

// TomorrowArgs sets or clears the one-shot override.
type TomorrowArgs struct {
	Time  model.AlarmTime
	Clear bool
}

type DayMode string

const (
	DayCustom  DayMode = "custom"
	DayOff     DayMode = "off"
	DayDefault DayMode = "default"
)

type DayArgs struct {
	Day  time.Weekday
	Mode DayMode
	Time model.AlarmTime
}

type TodoAction string

const (
	TodoAdd    TodoAction = "add"
	TodoRemove TodoAction = "rm"
	TodoMove   TodoAction = "mv"
)

// TodoArgs positions are 1-based as shown in the checklist.
type TodoArgs struct {
	Action TodoAction
	Title  string
	Index  int
	To     int
}

type AlarmAction string

const (
	AlarmAdd    AlarmAction = "add"
	AlarmRemove AlarmAction = "rm"
	AlarmToggle AlarmAction = "toggle"
)

type AlarmArgs struct {
	Action     AlarmAction
	Time       model.AlarmTime
	Label      string
	RepeatDays []time.Weekday
	Index      int
}

type ReviewArgs struct {
	Date string
}

type Command struct {
	Type     Type
	Raw      string
	Default  *DefaultArgs
	Tomorrow *TomorrowArgs
	Day      *DayArgs
	Todo     *TodoArgs
	Alarm    *AlarmArgs
	Review   *ReviewArgs
}

// Parse reads one palette line. today anchors relative review dates.
func Parse(input string, today time.Time) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeDefault:
		return parseDefault(input, args)
	case TypeTomorrow:
		return parseTomorrow(input, args)
	case TypeDay:
		return parseDay(input, args)
	case TypeTodo:
		return parseTodo(input, args)
	case TypeToggle, TypeRing:
		if len(args) != 0 {
			return Command{}, invalid("%s takes no arguments", head)
		}
		return Command{Type: Type(head), Raw: input}, nil
	case TypeAlarm:
		return parseAlarm(input, args)
	case TypeReview:
		return parseReview(input, args, today)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseDefault(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("default requires a time like 07:00")
	}
	at, err := model.ParseAlarmTime(args[0])
	if err != nil {
		return Command{}, invalid("%v", err)
	}
	return Command{Type: TypeDefault, Raw: raw, Default: &DefaultArgs{Time: at}}, nil
}

func parseTomorrow(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("tomorrow requires a time or clear")
	}
	if strings.EqualFold(args[0], "clear") {
		return Command{Type: TypeTomorrow, Raw: raw, Tomorrow: &TomorrowArgs{Clear: true}}, nil
	}
	at, err := model.ParseAlarmTime(args[0])
	if err != nil {
		return Command{}, invalid("%v", err)
	}
	return Command{Type: TypeTomorrow, Raw: raw, Tomorrow: &TomorrowArgs{Time: at}}, nil
}

func parseDay(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("day requires a weekday and a time, off or default")
	}
	wd, err := calendar.ParseWeekday(args[0])
	if err != nil {
		return Command{}, invalid("%v", err)
	}
	out := &DayArgs{Day: wd}
	switch strings.ToLower(args[1]) {
	case "off":
		out.Mode = DayOff
	case "default":
		out.Mode = DayDefault
	default:
		at, err := model.ParseAlarmTime(args[1])
		if err != nil {
			return Command{}, invalid("%v", err)
		}
		out.Mode = DayCustom
		out.Time = at
	}
	return Command{Type: TypeDay, Raw: raw, Day: out}, nil
}

func parseTodo(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("todo requires add, rm or mv")
	}
	action := TodoAction(strings.ToLower(args[0]))
	rest := args[1:]
	switch action {
	case TodoAdd:
		title := strings.TrimSpace(strings.Join(rest, " "))
		if title == "" {
			return Command{}, invalid("todo add requires a title")
		}
		return Command{Type: TypeTodo, Raw: raw, Todo: &TodoArgs{Action: action, Title: title}}, nil
	case TodoRemove:
		if len(rest) != 1 {
			return Command{}, invalid("todo rm requires a position")
		}
		n, err := position(rest[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeTodo, Raw: raw, Todo: &TodoArgs{Action: action, Index: n}}, nil
	case TodoMove:
		if len(rest) != 2 {
			return Command{}, invalid("todo mv requires two positions")
		}
		from, err := position(rest[0])
		if err != nil {
			return Command{}, err
		}
		to, err := position(rest[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeTodo, Raw: raw, Todo: &TodoArgs{Action: action, Index: from, To: to}}, nil
	default:
		return Command{}, invalid("unsupported todo action: %s", action)
	}
}

func parseAlarm(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("alarm requires add, rm or toggle")
	}
	action := AlarmAction(strings.ToLower(args[0]))
	rest := args[1:]
	switch action {
	case AlarmAdd:
		if len(rest) == 0 {
			return Command{}, invalid("alarm add requires a time")
		}
		at, err := model.ParseAlarmTime(rest[0])
		if err != nil {
			return Command{}, invalid("%v", err)
		}
		out := &AlarmArgs{Action: action, Time: at}
		rest = rest[1:]
		if len(rest) > 0 {
			if days, ok := parseRepeat(rest[0]); ok {
				out.RepeatDays = days
				rest = rest[1:]
			}
		}
		out.Label = strings.Join(rest, " ")
		return Command{Type: TypeAlarm, Raw: raw, Alarm: out}, nil
	case AlarmRemove, AlarmToggle:
		if len(rest) != 1 {
			return Command{}, invalid("alarm %s requires a position", action)
		}
		n, err := position(rest[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeAlarm, Raw: raw, Alarm: &AlarmArgs{Action: action, Index: n}}, nil
	default:
		return Command{}, invalid("unsupported alarm action: %s", action)
	}
}

// parseRepeat accepts daily, weekdays, weekends or a comma list like mon,thu.
func parseRepeat(token string) ([]time.Weekday, bool) {
	switch strings.ToLower(token) {
	case "daily":
		return []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}, true
	case "weekdays":
		return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, true
	case "weekends":
		return []time.Weekday{time.Sunday, time.Saturday}, true
	}
	var days []time.Weekday
	seen := map[time.Weekday]bool{}
	for _, part := range strings.Split(token, ",") {
		wd, err := calendar.ParseWeekday(part)
		if err != nil {
			return nil, false
		}
		if !seen[wd] {
			seen[wd] = true
			days = append(days, wd)
		}
	}
	return days, len(days) > 0
}

func parseReview(raw string, args []string, today time.Time) (Command, error) {
	date := calendar.FormatDate(today)
	if len(args) > 1 {
		return Command{}, invalid("review takes at most one date")
	}
	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "today":
		case "yesterday":
			date = calendar.FormatDate(today.AddDate(0, 0, -1))
		default:
			if _, err := calendar.ParseDate(args[0]); err != nil {
				return Command{}, invalid("%v", err)
			}
			date = args[0]
		}
	}
	return Command{Type: TypeReview, Raw: raw, Review: &ReviewArgs{Date: date}}, nil
}

func position(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, invalid("position must be a positive number: %q", s)
	}
	return n, nil
}
