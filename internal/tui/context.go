package tui

import tea "github.com/charmbracelet/bubbletea"

// ViewContext provides read-only context to decks for rendering.
type ViewContext struct {
	ContentWidth  int
	DeckLastError string // last fetch error of the deck's resource
	DeckLoading   bool   // first fetch for the deck's resource still pending
	Paused        bool
}

// Action identifies what a deck wants the dashboard to do.
type Action int

const (
	ActionPushModal Action = iota
)

// ActionMsg is returned by deck OnSelect to communicate with the dashboard
// without mutating it directly.
type ActionMsg struct {
	Action  Action
	Payload any
}

// actionMsg wraps ActionMsg as a tea.Msg.
func actionMsg(a ActionMsg) tea.Cmd {
	return func() tea.Msg { return a }
}
