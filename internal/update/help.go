package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/goodmorning/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		Commands:    paletteCommands,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

var paletteCommands = []string{
	"default 07:00",
	"tomorrow 06:30 | tomorrow clear",
	"day sat 09:00 | day sun off | day mon default",
	"todo add <title> | todo rm <n> | todo mv <n> <m>",
	"alarm add 06:00 [weekdays|mon,thu] [label] | alarm rm <n> | alarm toggle <n>",
	"toggle | ring | review [yesterday|YYYY-MM-DD]",
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Today, Action: "switch to Today"},
		{Key: m.Keys.Schedule, Action: "switch to Schedule"},
		{Key: m.Keys.Stats, Action: "switch to Stats"},
		{Key: m.Keys.Review, Action: "switch to Review"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewToday:
		return []KeyBinding{
			{Key: "enter", Action: "dismiss ringing alarm"},
			{Key: "j/k", Action: "move through morning tasks"},
			{Key: "space", Action: "check or uncheck task"},
			{Key: "X", Action: "end morning session early"},
		}
	case ViewSchedule:
		return []KeyBinding{
			{Key: "t", Action: "enable/disable wake target"},
			{Key: "j/k", Action: "move alarm cursor"},
			{Key: "space", Action: "enable/disable alarm"},
			{Key: "x", Action: "delete alarm"},
		}
	case ViewStats:
		return []KeyBinding{
			{Key: "h/l", Action: "previous/next week"},
			{Key: "0", Action: "this week"},
		}
	case ViewReview:
		return []KeyBinding{
			{Key: "h/l", Action: "previous/next day"},
			{Key: "j/k", Action: "scroll"},
			{Key: "0", Action: "today"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
