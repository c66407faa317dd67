package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/soclens/internal/poll"
	"github.com/tinytelemetry/soclens/internal/projector"
)

// MapDeck plots alert sources on an equirectangular grid.
type MapDeck struct {
	markers []projector.Marker
}

func NewMapDeck() *MapDeck {
	return &MapDeck{}
}

// Render replaces the plotted markers.
func (p *MapDeck) Render(markers []projector.Marker) {
	p.markers = append(p.markers[:0], markers...)
}

func (p *MapDeck) ID() string                     { return "map" }
func (p *MapDeck) Title() string                  { return "Risk Map" }
func (p *MapDeck) Resource() poll.Resource        { return "" }
func (p *MapDeck) ItemCount() int                 { return len(p.markers) }
func (p *MapDeck) ContentLines(_ ViewContext) int { return 10 }

func (p *MapDeck) OnSelect(_ ViewContext, selIdx int) tea.Cmd {
	if selIdx < 0 || selIdx >= len(p.markers) {
		return nil
	}
	m := p.markers[selIdx]
	content := fmt.Sprintf("%s\n\nLat: %.4f\nLon: %.4f\nTier: %s", m.Popup, m.Lat, m.Lon, m.Tier)
	return actionMsg(ActionMsg{Action: ActionPushModal, Payload: NewDetailModal("Map Point", content)})
}

func (p *MapDeck) Draw(ctx ViewContext, width, height int, active bool, selIdx int) string {
	style := sectionStyle.Width(width).Height(height)
	if active {
		style = activeSectionStyle.Width(width).Height(height)
	}

	leftTitle := deckTitleWithBadges(p.Title(), ctx)
	headerText := leftTitle
	rightStats := fmt.Sprintf("%d sources", len(p.markers))
	if spacer := width - 4 - lipgloss.Width(leftTitle) - len(rightStats); spacer > 0 {
		headerText = leftTitle + strings.Repeat(" ", spacer) + rightStats
	}
	title := deckTitleStyle.Render(headerText)

	sel := -1
	if active {
		sel = selIdx
	}
	grid := renderMapGrid(p.markers, max(width-4, 10), max(height-3, 3), sel)
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, grid))
}

// gridPos maps a coordinate to a cell of a cols x rows grid.
func gridPos(lat, lon float64, cols, rows int) (int, int) {
	x := int((lon + 180) / 360 * float64(cols-1))
	y := int((90 - lat) / 180 * float64(rows-1))
	return min(max(x, 0), cols-1), min(max(y, 0), rows-1)
}

// renderMapGrid draws a dotted graticule with one cell per marker. When two
// markers share a cell the riskier one is shown.
func renderMapGrid(markers []projector.Marker, cols, rows, selected int) string {
	type cell struct {
		idx  int
		risk float64
	}
	cells := make(map[[2]int]cell, len(markers))
	for i, m := range markers {
		x, y := gridPos(m.Lat, m.Lon, cols, rows)
		key := [2]int{x, y}
		if c, ok := cells[key]; ok && c.risk >= m.Risk && c.idx != selected {
			continue
		}
		cells[key] = cell{idx: i, risk: m.Risk}
	}

	dot := lipgloss.NewStyle().Foreground(ColorGrid)
	equator := rows / 2
	var b strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if c, ok := cells[[2]int{x, y}]; ok {
				glyph := "●"
				if c.idx == selected {
					glyph = "◉"
				}
				b.WriteString(colorStyle(markers[c.idx].Color).Render(glyph))
				continue
			}
			switch {
			case y == equator:
				b.WriteString(dot.Render("─"))
			case x%6 == 0 && y%2 == 0:
				b.WriteString(dot.Render("·"))
			default:
				b.WriteByte(' ')
			}
		}
		if y < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
