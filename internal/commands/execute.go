package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Default  func(DefaultArgs) (Result, error)
	Tomorrow func(TomorrowArgs) (Result, error)
	Day      func(DayArgs) (Result, error)
	Todo     func(TodoArgs) (Result, error)
	Toggle   func() (Result, error)
	Ring     func() (Result, error)
	Alarm    func(AlarmArgs) (Result, error)
	Review   func(ReviewArgs) (Result, error)
}

func missing(name string) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: name + " handler not configured"}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeDefault:
		if handlers.Default == nil {
			return Result{}, missing("default")
		}
		return handlers.Default(*cmd.Default)
	case TypeTomorrow:
		if handlers.Tomorrow == nil {
			return Result{}, missing("tomorrow")
		}
		return handlers.Tomorrow(*cmd.Tomorrow)
	case TypeDay:
		if handlers.Day == nil {
			return Result{}, missing("day")
		}
		return handlers.Day(*cmd.Day)
	case TypeTodo:
		if handlers.Todo == nil {
			return Result{}, missing("todo")
		}
		return handlers.Todo(*cmd.Todo)
	case TypeToggle:
		if handlers.Toggle == nil {
			return Result{}, missing("toggle")
		}
		return handlers.Toggle()
	case TypeRing:
		if handlers.Ring == nil {
			return Result{}, missing("ring")
		}
		return handlers.Ring()
	case TypeAlarm:
		if handlers.Alarm == nil {
			return Result{}, missing("alarm")
		}
		return handlers.Alarm(*cmd.Alarm)
	case TypeReview:
		if handlers.Review == nil {
			return Result{}, missing("review")
		}
		return handlers.Review(*cmd.Review)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
