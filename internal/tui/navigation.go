package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyPress dispatches key events: modal stack first, then global
// dashboard shortcuts.
func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	if modal := m.TopModal(); modal != nil {
		pop, cmd := modal.Update(msg)
		if pop {
			m.PopModal()
		}
		return m, cmd
	}

	return m.handleGlobalKeys(msg)
}

// handleGlobalKeys handles dashboard-level shortcuts.
// Only reached when no modal is on the stack.
func (m *DashboardModel) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys

	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.PushModal(NewHelpModal(k))
		return m, nil

	case key.Matches(msg, k.NextDeck):
		m.focusDeck(m.activeDeckIdx + 1)
		return m, nil

	case key.Matches(msg, k.PrevDeck):
		m.focusDeck(m.activeDeckIdx - 1)
		return m, nil

	case key.Matches(msg, k.Up):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, k.Down):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, k.Enter):
		if m.activeDeckIdx < len(m.decks) {
			idx := m.activeDeckIdx
			return m, m.decks[idx].OnSelect(m.viewContext(idx), m.deckSelIdx[idx])
		}
		return m, nil

	case key.Matches(msg, k.Pause):
		m.paused = !m.paused
		if m.paused {
			m.setNotice("Polling paused")
		} else {
			m.setNotice("Polling resumed")
		}
		return m, nil

	case key.Matches(msg, k.Export):
		return m, m.exportCmd()
	}

	return m, nil
}

// focusDeck moves focus to deck idx, wrapping around.
func (m *DashboardModel) focusDeck(idx int) {
	if len(m.decks) == 0 {
		return
	}
	m.activeDeckIdx = (idx%len(m.decks) + len(m.decks)) % len(m.decks)
}

// moveSelection moves the focused deck's selection by delta.
func (m *DashboardModel) moveSelection(delta int) {
	if m.activeDeckIdx >= len(m.decks) {
		return
	}
	n := m.decks[m.activeDeckIdx].ItemCount()
	if n == 0 {
		m.deckSelIdx[m.activeDeckIdx] = 0
		return
	}
	sel := m.deckSelIdx[m.activeDeckIdx] + delta
	m.deckSelIdx[m.activeDeckIdx] = min(max(sel, 0), n-1)
}

// handleMouseEvent processes mouse interactions
func (m *DashboardModel) handleMouseEvent(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if modal := m.TopModal(); modal != nil {
		pop, cmd := modal.Update(msg)
		if pop {
			m.PopModal()
		}
		return m, cmd
	}

	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonLeft:
		decksHeight := m.height - 1
		if idx, ok := m.deckAt(m.width, decksHeight, msg.X, msg.Y); ok {
			m.focusDeck(idx)
		}
	case tea.MouseButtonWheelUp:
		m.moveSelection(-1)
	case tea.MouseButtonWheelDown:
		m.moveSelection(1)
	}
	return m, nil
}
