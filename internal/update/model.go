package update

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"

	"github.com/sandeepkv93/goodmorning/internal/app"
	"github.com/sandeepkv93/goodmorning/internal/calendar"
	"github.com/sandeepkv93/goodmorning/internal/notify"
)

type View string

const (
	ViewToday    View = "Today"
	ViewSchedule View = "Schedule"
	ViewStats    View = "Stats"
	ViewReview   View = "Review"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Today    string
	Schedule string
	Stats    string
	Review   string
	Help     string
	Quit     string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type Options struct {
	Context        context.Context
	Service        *app.Service
	Logger         *zap.SugaredLogger
	Now            func() time.Time
	DesktopEnabled bool
	Notifier       DesktopNotifier
}

type Model struct {
	CurrentView   View
	Palette       CommandPaletteState
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error
	ReviewDate    string
	StatsWeek     time.Time
	// Cursor indexes the session checklist on Today and the alarm list on Schedule.
	Cursor int

	DesktopEnabled bool
	notifier       DesktopNotifier

	ctx context.Context
	svc *app.Service
	log *zap.SugaredLogger
	now func() time.Time

	scheduleTable  table.Model
	commandInput   textinput.Model
	streakProgress progress.Model
	sessionBar     progress.Model
	helpModel      help.Model
	reviewViewport viewport.Model
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// AlarmFiredMsg carries a delivered trigger into the program.
type AlarmFiredMsg struct {
	Fired notify.Fired
	Title string
	Body  string
}

type ClockTickMsg struct {
	At time.Time
}

func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NoopDesktopNotifier{}
	}
	m := Model{
		CurrentView:    ViewToday,
		DesktopEnabled: opts.DesktopEnabled,
		notifier:       notifier,
		ctx:            ctx,
		svc:            opts.Service,
		log:            log,
		now:            now,
		Keys: GlobalKeyMap{
			Today:    "1",
			Schedule: "2",
			Stats:    "3",
			Review:   "4",
			Help:     "?",
			Quit:     "q",
		},
	}
	m.ReviewDate = m.today()
	m.StatsWeek = calendar.WeekStart(m.now())
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.Placeholder = "default 07:00"
	m.commandInput.CharLimit = 200

	m.scheduleTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "Day", Width: 5},
			{Title: "Wake", Width: 7},
			{Title: "Source", Width: 10},
		}),
		table.WithHeight(8),
	)

	m.streakProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))
	m.sessionBar = progress.New(progress.WithSolidFill("10"), progress.WithWidth(30))
	m.helpModel = help.New()
	m.reviewViewport = viewport.New(56, 14)
}

func (m Model) today() string {
	return calendar.FormatDate(m.now())
}
