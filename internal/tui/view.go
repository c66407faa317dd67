package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/soclens/internal/poll"
)

const noticeTTL = 10 * time.Second

// View renders the dashboard
func (m *DashboardModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "Initializing dashboard..."
	}

	if modal := m.TopModal(); modal != nil {
		return modal.View(m.width, m.height)
	}

	if m.height < 20 || m.width < 60 {
		return "Terminal too small. Resize to at least 60x20."
	}

	statusLineHeight := 1
	grid := m.renderDecksGrid(m.width, m.height-statusLineHeight)
	return lipgloss.JoinVertical(lipgloss.Left, grid, m.renderStatusLine())
}

// renderBranding renders the product name with a red to green gradient.
func renderBranding() string {
	colors := []string{"#FF3B3B", "#FF6A2B", "#FFA01B", "#FFD700", "#9BEA4F", "#5BF27A", "#00FF9F"}
	chars := []string{"S", "O", "C", "L", "e", "n", "s"}

	var result string
	for i, char := range chars {
		result += lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(lipgloss.Color(colors[i])).
			Bold(true).
			Render(char)
	}
	return result
}

// resourceDot renders a colored connectivity dot for one polled resource:
// red after a failed fetch, yellow while the last success is stale, green otherwise.
func (m *DashboardModel) resourceDot(st poll.ResourceState) string {
	color := lipgloss.Color("#44FF44")
	switch {
	case !st.LastTickOK:
		color = lipgloss.Color("#FF4444")
	case st.LastOKAt.IsZero() || m.now().Sub(st.LastOKAt) > 3*st.Interval:
		color = lipgloss.Color("#FFAA00")
	}
	return lipgloss.NewStyle().Background(ColorNavy).Foreground(color).Render("●")
}

// renderStatusLine renders the status/help line at the bottom of the screen
func (m *DashboardModel) renderStatusLine() string {
	baseStyle := lipgloss.NewStyle().
		Background(ColorNavy).
		Foreground(ColorWhite)

	w := m.width
	narrow := w < 100

	var leftText string
	if m.activeDeckIdx < len(m.decks) {
		leftText = fmt.Sprintf("[%s]", m.decks[m.activeDeckIdx].Title())
	}

	var statusText string
	switch {
	case m.notice != "" && m.now().Sub(m.noticeAt) < noticeTTL:
		statusText = m.notice
	case m.HasModal():
		statusText = "ESC: Close"
	case narrow:
		statusText = "?: Help • Tab • Enter • Space • q"
	default:
		statusText = "?: Help • Tab: Navigate • ↑↓: Select • Enter: Inspect • Space: Pause • e: Export • q: Quit"
	}

	var rightParts []string
	st := m.controller.State()
	rightParts = append(rightParts, fmt.Sprintf("Total %d  Critical %d", st.Totals.Total, st.Totals.Critical))
	for _, rs := range m.sched.States() {
		part := m.resourceDot(rs) + " " + string(rs.Resource)
		if rs.ConsecutiveErrs > 0 && !narrow {
			part += errorStyle.Background(ColorNavy).Render(fmt.Sprintf(" ×%d", rs.ConsecutiveErrs))
		}
		rightParts = append(rightParts, part)
	}
	if m.paused {
		rightParts = append(rightParts, "⏸ Paused")
	}
	if !narrow {
		rightParts = append(rightParts, renderBranding())
	}
	rightText := strings.Join(rightParts, "  ")

	leftWidth := lipgloss.Width(leftText) + 2
	rightWidth := lipgloss.Width(rightText) + 2
	centerWidth := max(w-leftWidth-rightWidth, 0)

	if lipgloss.Width(statusText) > centerWidth {
		statusText = truncate(statusText, centerWidth)
	}

	leftPart := baseStyle.Align(lipgloss.Left).Width(leftWidth).Render(leftText)
	centerPart := baseStyle.Align(lipgloss.Center).Width(centerWidth).Render(statusText)
	rightPart := baseStyle.Align(lipgloss.Right).Width(rightWidth).Render(rightText)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPart, centerPart, rightPart)
}
