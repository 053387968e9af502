package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines the key bindings of the assessment screens.
type KeyMap struct {
	Options   []key.Binding // 1..8
	PageLeft  key.Binding
	PageRight key.Binding
	Confirm   key.Binding
	NextField key.Binding
	PrevField key.Binding
	Quit      key.Binding
	Abort     key.Binding
}

// DefaultKeyMap provides the default key bindings.
var DefaultKeyMap = newKeyMap()

func newKeyMap() KeyMap {
	km := KeyMap{
		PageLeft: key.NewBinding(
			key.WithKeys("[", "pgup"),
			key.WithHelp("[", "previous page"),
		),
		PageRight: key.NewBinding(
			key.WithKeys("]", "pgdown"),
			key.WithHelp("]", "next page"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "continue / submit"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "exit"),
		),
		// Only honored outside a running phase.
		Abort: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "abort"),
		),
	}
	for n := 1; n <= 8; n++ {
		s := string(rune('0' + n))
		km.Options = append(km.Options, key.NewBinding(
			key.WithKeys(s),
			key.WithHelp(s, "choose option "+s),
		))
	}
	return km
}

// optionFor returns the option number bound to msg, or 0.
func (km KeyMap) optionFor(msg tea.KeyMsg) int {
	for i, b := range km.Options {
		if key.Matches(msg, b) {
			return i + 1
		}
	}
	return 0
}
