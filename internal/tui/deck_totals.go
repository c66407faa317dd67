package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/soclens/internal/poll"
	"github.com/tinytelemetry/soclens/internal/projector"
)

// TotalsDeck shows the total and critical alert counters.
type TotalsDeck struct {
	totals projector.Totals
}

func NewTotalsDeck() *TotalsDeck {
	return &TotalsDeck{}
}

func (p *TotalsDeck) Render(t projector.Totals) { p.totals = t }

func (p *TotalsDeck) ID() string                            { return "totals" }
func (p *TotalsDeck) Title() string                         { return "Totals" }
func (p *TotalsDeck) Resource() poll.Resource               { return poll.ResourceStats }
func (p *TotalsDeck) ItemCount() int                        { return 2 }
func (p *TotalsDeck) ContentLines(_ ViewContext) int        { return 4 }
func (p *TotalsDeck) OnSelect(_ ViewContext, _ int) tea.Cmd { return nil }

func (p *TotalsDeck) Draw(ctx ViewContext, width, height int, active bool, _ int) string {
	style := sectionStyle.Width(width).Height(height)
	if active {
		style = activeSectionStyle.Width(width).Height(height)
	}
	title := deckTitleStyle.Render(deckTitleWithBadges(p.Title(), ctx))

	counter := func(label string, value int64, color lipgloss.Color) string {
		return lipgloss.JoinVertical(lipgloss.Center,
			labelStyle.Render(label),
			lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%d", value)),
		)
	}

	half := max((width-4)/2, 10)
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.PlaceHorizontal(half, lipgloss.Center, counter("Total Alerts", p.totals.Total, ColorBlue)),
		lipgloss.PlaceHorizontal(half, lipgloss.Center, counter("Critical", p.totals.Critical, ColorRed)),
	)
	content := lipgloss.Place(width-4, max(height-3, 2), lipgloss.Center, lipgloss.Center, row)
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}
