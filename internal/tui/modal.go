package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is a self-contained modal that owns its own Update/View lifecycle.
// Modals are managed via a stack on DashboardModel; the topmost modal
// receives all input and renders full-screen.
type Modal interface {
	// ID returns a unique identifier used to deduplicate pushes.
	ID() string
	// Update processes a message. Return pop=true to close the modal.
	Update(msg tea.Msg) (pop bool, cmd tea.Cmd)
	// View renders the modal content for the given terminal dimensions.
	View(width, height int) string
}

// DetailModal displays scrollable text content.
type DetailModal struct {
	id       string
	title    string
	content  string
	viewport viewport.Model
}

func NewDetailModal(title, content string) *DetailModal {
	return &DetailModal{
		id:       "detail",
		title:    title,
		content:  content,
		viewport: viewport.New(80, 20),
	}
}

func (d *DetailModal) ID() string { return d.id }

func (d *DetailModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			d.viewport.ScrollUp(1)
			return false, nil
		case "down", "j":
			d.viewport.ScrollDown(1)
			return false, nil
		case "pgup":
			d.viewport.HalfPageUp()
			return false, nil
		case "pgdown":
			d.viewport.HalfPageDown()
			return false, nil
		case "escape", "esc", "q", "enter":
			return true, nil
		}
		var cmd tea.Cmd
		d.viewport, cmd = d.viewport.Update(msg)
		return false, cmd

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				d.viewport.ScrollUp(1)
			case tea.MouseButtonWheelDown:
				d.viewport.ScrollDown(1)
			}
		}
		return false, nil
	}
	return false, nil
}

func (d *DetailModal) View(width, height int) string {
	return renderSingleModalView(&d.viewport, d.title, d.content, width, height)
}

// renderSingleModalView renders a simple scrollable modal with the given content.
func renderSingleModalView(vp *viewport.Model, title, content string, width, height int) string {
	modalWidth := max(width-8, 20)
	modalHeight := max(height-6, 8)

	contentWidth := modalWidth - 4
	contentHeight := modalHeight - 4

	vp.Width = contentWidth
	vp.Height = contentHeight
	vp.SetContent(lipgloss.NewStyle().Width(contentWidth - 2).Render(content))

	contentPane := lipgloss.NewStyle().
		Width(contentWidth).
		Height(contentHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorGray).
		Render(vp.View())

	header := lipgloss.NewStyle().
		Width(contentWidth).
		Foreground(ColorBlue).
		Bold(true).
		Render(title)

	modal := lipgloss.JoinVertical(lipgloss.Left, header, contentPane, renderModalStatusBar())

	finalModal := lipgloss.NewStyle().
		Width(modalWidth).
		Height(modalHeight).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlue).
		Render(modal)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, finalModal)
}

// renderModalStatusBar renders the status bar for modals
func renderModalStatusBar() string {
	statusItems := []string{"up/down/Wheel: Scroll", "PgUp/PgDn: Page", "ESC: Close"}
	return lipgloss.NewStyle().Foreground(ColorGray).Render(strings.Join(statusItems, " | "))
}
