package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/soclens/internal/poll"
)

// TrafficDeck shows the sliding traffic window as a line chart.
type TrafficDeck struct {
	samples []float64
}

func NewTrafficDeck() *TrafficDeck {
	return &TrafficDeck{}
}

// Render replaces the window contents.
func (p *TrafficDeck) Render(samples []float64) {
	p.samples = append(p.samples[:0], samples...)
}

func (p *TrafficDeck) ID() string              { return "traffic" }
func (p *TrafficDeck) Title() string           { return "Traffic" }
func (p *TrafficDeck) Resource() poll.Resource { return "" }
func (p *TrafficDeck) ItemCount() int          { return len(p.samples) }

func (p *TrafficDeck) ContentLines(ctx ViewContext) int {
	if ctx.ContentWidth < 80 {
		return 6
	}
	return 8
}

func (p *TrafficDeck) OnSelect(_ ViewContext, _ int) tea.Cmd { return nil }

func (p *TrafficDeck) Draw(ctx ViewContext, width, height int, active bool, _ int) string {
	style := sectionStyle.Width(width).Height(height)
	if active {
		style = activeSectionStyle.Width(width).Height(height)
	}

	leftTitle := deckTitleWithBadges("Requests/sec", ctx)
	headerText := leftTitle
	if len(p.samples) > 0 {
		rightStats := fmt.Sprintf("Last: %.0f | Max: %.0f", p.samples[len(p.samples)-1], maxOf(p.samples))
		spacerWidth := width - 4 - lipgloss.Width(leftTitle) - len(rightStats)
		if spacerWidth > 0 {
			headerText = leftTitle + strings.Repeat(" ", spacerWidth) + rightStats
		}
	}
	title := deckTitleStyle.Render(headerText)

	contentLines := max(height-3, 1)
	var content string
	if len(p.samples) == 0 {
		content = helpStyle.Render("No data available")
	} else {
		content = p.renderChart(max(width-4, 10), contentLines)
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (p *TrafficDeck) renderChart(width, height int) string {
	slc := streamlinechart.New(width, max(height, 2))
	for _, v := range p.samples {
		slc.Push(v)
	}
	slc.Draw()
	return colorStyle(string(ColorGreen)).Render(slc.View())
}

func maxOf(vs []float64) float64 {
	m := 0.0
	for _, v := range vs {
		if v > m {
			m = v
		}
	}
	return m
}
