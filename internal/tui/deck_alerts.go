package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/soclens/internal/poll"
	"github.com/tinytelemetry/soclens/internal/projector"
	"github.com/tinytelemetry/soclens/internal/risk"
)

const riskMeterWidth = 10

// AlertsDeck shows the most recent alerts as a table.
type AlertsDeck struct {
	baseURL string
	rows    []projector.AlertRow
}

func NewAlertsDeck(baseURL string) *AlertsDeck {
	return &AlertsDeck{baseURL: baseURL}
}

// Render replaces the table body.
func (p *AlertsDeck) Render(rows []projector.AlertRow) {
	p.rows = append(p.rows[:0], rows...)
}

func (p *AlertsDeck) ID() string              { return "alerts" }
func (p *AlertsDeck) Title() string           { return "Recent Alerts" }
func (p *AlertsDeck) Resource() poll.Resource { return poll.ResourceAlerts }
func (p *AlertsDeck) ItemCount() int          { return len(p.rows) }

func (p *AlertsDeck) ContentLines(_ ViewContext) int {
	return max(len(p.rows), 1) + 1
}

// Row returns the row at idx.
func (p *AlertsDeck) Row(idx int) (projector.AlertRow, bool) {
	if idx < 0 || idx >= len(p.rows) {
		return projector.AlertRow{}, false
	}
	return p.rows[idx], true
}

func (p *AlertsDeck) OnSelect(_ ViewContext, selIdx int) tea.Cmd {
	row, ok := p.Row(selIdx)
	if !ok {
		return nil
	}
	return actionMsg(ActionMsg{Action: ActionPushModal, Payload: NewIncidentModal(row, p.baseURL)})
}

func (p *AlertsDeck) Draw(ctx ViewContext, width, height int, active bool, selIdx int) string {
	style := sectionStyle.Width(width).Height(height)
	if active {
		style = activeSectionStyle.Width(width).Height(height)
	}

	leftTitle := deckTitleWithBadges(p.Title(), ctx)
	headerText := leftTitle
	if ctx.DeckLastError != "" {
		msg := truncate(ctx.DeckLastError, max(width-8-lipgloss.Width(leftTitle), 0))
		if spacer := width - 4 - lipgloss.Width(leftTitle) - lipgloss.Width(msg); spacer > 0 && msg != "" {
			headerText = leftTitle + strings.Repeat(" ", spacer) + errorStyle.Render(msg)
		}
	}
	title := deckTitleStyle.Render(headerText)

	contentLines := max(height-3, 1)
	var content string
	switch {
	case len(p.rows) > 0:
		content = p.renderTable(width-4, contentLines, active, selIdx)
	case ctx.DeckLoading:
		content = renderLoadingPlaceholder(width-2, contentLines)
	default:
		content = helpStyle.Render("No alerts")
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (p *AlertsDeck) renderTable(width, lines int, active bool, selIdx int) string {
	header := labelStyle.Render(formatAlertColumns("TIME", "SOURCE IP", "COUNTRY", "TYPE", "RISK", width))
	out := []string{header}

	for i, row := range p.rows {
		if len(out) >= lines {
			break
		}
		meter := renderRiskMeter(row)
		line := formatAlertColumns(row.Time, row.IP, row.Country+" "+row.CountryCode, row.Type, "", width-lipgloss.Width(meter))
		line += meter
		if active && i == selIdx {
			line = selectedRowStyle.Render(line)
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// formatAlertColumns pads the fixed columns; the risk column takes what is left.
func formatAlertColumns(ts, ip, country, typ, riskCol string, width int) string {
	line := fmt.Sprintf("%-9s %-16s %-18s %-12s ", truncate(ts, 9), truncate(ip, 16), truncate(country, 18), truncate(typ, 12))
	line += riskCol
	if lipgloss.Width(line) > width && width > 0 {
		return truncate(line, width)
	}
	return line
}

// renderRiskMeter draws a bar whose filled width is proportional to the
// clamped risk, colored by tier, followed by the raw value.
func renderRiskMeter(row projector.AlertRow) string {
	filled := int(risk.Clamp(row.Risk) / 100 * riskMeterWidth)
	bar := colorStyle(row.BarColor).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(ColorGrid).Render(strings.Repeat("░", riskMeterWidth-filled))
	return bar + " " + row.RiskLabel()
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
