package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/poll"
)

// DistributionDeck shows alert counts per attack category as bars.
type DistributionDeck struct {
	dist model.Distribution
}

func NewDistributionDeck() *DistributionDeck {
	return &DistributionDeck{}
}

// Render replaces all five category counts.
func (p *DistributionDeck) Render(d model.Distribution) { p.dist = d }

func (p *DistributionDeck) ID() string              { return "distribution" }
func (p *DistributionDeck) Title() string           { return "Attack Distribution" }
func (p *DistributionDeck) Resource() poll.Resource { return poll.ResourceStats }
func (p *DistributionDeck) ItemCount() int          { return model.CategoryCount }

func (p *DistributionDeck) ContentLines(ctx ViewContext) int {
	if ctx.ContentWidth < 80 {
		return 6
	}
	return 8
}

func (p *DistributionDeck) OnSelect(_ ViewContext, _ int) tea.Cmd { return nil }

func (p *DistributionDeck) Draw(ctx ViewContext, width, height int, active bool, _ int) string {
	style := sectionStyle.Width(width).Height(height)
	if active {
		style = activeSectionStyle.Width(width).Height(height)
	}

	leftTitle := deckTitleWithBadges(p.Title(), ctx)
	headerText := leftTitle
	rightStats := fmt.Sprintf("Sum: %d", p.dist.Sum())
	if spacer := width - 4 - lipgloss.Width(leftTitle) - len(rightStats); spacer > 0 {
		headerText = leftTitle + strings.Repeat(" ", spacer) + rightStats
	}
	title := deckTitleStyle.Render(headerText)

	contentLines := max(height-3, 1)
	var content string
	if ctx.DeckLoading && p.dist.Sum() == 0 {
		content = renderLoadingPlaceholder(width-2, contentLines)
	} else {
		content = p.renderContent(width-2, contentLines)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (p *DistributionDeck) renderContent(deckWidth, availableLines int) string {
	legendWidth := 20
	chartHeight := max(availableLines, 4)
	chartWidth := max(deckWidth-legendWidth-2, 15)

	bc := barchart.New(chartWidth, chartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(max((chartWidth-4)/model.CategoryCount, 1)),
		barchart.WithNoAxis(),
	)
	for i, info := range model.Categories {
		bc.Push(barchart.BarData{
			Label: "",
			Values: []barchart.BarValue{
				{Name: info.Label, Value: float64(p.dist[i]), Style: blockStyle(info.Color)},
			},
		})
	}
	bc.Draw()
	chartLines := strings.Split(bc.View(), "\n")

	legendLines := make([]string, 0, chartHeight)
	for i, info := range model.Categories {
		label := fmt.Sprintf("%-11s", info.Label)
		legendLines = append(legendLines, colorStyle(info.Color).Render(label+fmt.Sprintf("%7d", p.dist[i])))
	}

	lines := make([]string, 0, chartHeight)
	for i := 0; i < chartHeight; i++ {
		chartLine, legendLine := "", ""
		if i < len(chartLines) {
			chartLine = chartLines[i]
		}
		if i < len(legendLines) {
			legendLine = legendLines[i]
		}
		if w := lipgloss.Width(chartLine); w < chartWidth {
			chartLine += strings.Repeat(" ", chartWidth-w)
		}
		lines = append(lines, chartLine+"  "+legendLine)
	}
	return strings.Join(lines, "\n")
}
