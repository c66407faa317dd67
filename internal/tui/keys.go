package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all dashboard key bindings with built-in help text.
type KeyMap struct {
	// Global
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
	Escape    key.Binding

	// Navigation
	NextDeck key.Binding
	PrevDeck key.Binding
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding

	// Actions
	Pause  key.Binding
	Export key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "h"),
			key.WithHelp("?/h", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("escape", "esc"),
			key.WithHelp("esc", "close"),
		),

		NextDeck: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next deck"),
		),
		PrevDeck: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev deck"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "inspect"),
		),

		Pause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/resume polling"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export charts as PNG"),
		),
	}
}

// helpBindings lists the bindings shown in the help modal, in order.
func (k KeyMap) helpBindings() []key.Binding {
	return []key.Binding{
		k.NextDeck, k.PrevDeck, k.Up, k.Down, k.Enter,
		k.Pause, k.Export, k.Help, k.Escape, k.Quit, k.ForceQuit,
	}
}
