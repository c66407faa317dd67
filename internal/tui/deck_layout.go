package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m *DashboardModel) deckColumnCount() int {
	if len(m.decks) <= 1 || m.width < 100 {
		return 1
	}
	return 2
}

func (m *DashboardModel) deckHeight(idx int) int {
	h := m.decks[idx].ContentLines(m.viewContext(idx)) + 3
	if h < 4 {
		return 4
	}
	return h
}

func (m *DashboardModel) deckRowHeights() []int {
	if len(m.decks) == 0 {
		return nil
	}

	cols := m.deckColumnCount()
	rows := (len(m.decks) + cols - 1) / cols
	heights := make([]int, rows)

	for row := 0; row < rows; row++ {
		rowHeight := 4
		for col := 0; col < cols; col++ {
			idx := row*cols + col
			if idx >= len(m.decks) {
				break
			}
			rowHeight = max(rowHeight, m.deckHeight(idx))
		}
		heights[row] = rowHeight
	}
	return heights
}

// deckRowHeightsFor scales the required row heights to fit height, giving
// any surplus or deficit to the last row.
func (m *DashboardModel) deckRowHeightsFor(height int) []int {
	required := m.deckRowHeights()
	if len(required) == 0 {
		return nil
	}

	rows := len(required)
	perRow := max(height/rows, 3)

	scaled := make([]int, rows)
	for i := range scaled {
		scaled[i] = perRow
	}
	scaled[rows-1] = max(height-perRow*(rows-1), 3)
	return scaled
}

func (m *DashboardModel) deckAt(contentWidth int, chartHeight int, x int, y int) (int, bool) {
	if len(m.decks) == 0 || x < 0 || y < 0 {
		return 0, false
	}

	cols := m.deckColumnCount()
	deckWidth := contentWidth
	colGap := 0
	if cols > 1 {
		colGap = 1
		deckWidth = max(1, (contentWidth-colGap)/cols)
	}

	rowY := 0
	for row, rowHeight := range m.deckRowHeightsFor(chartHeight) {
		if y < rowY+rowHeight {
			col := 0
			if cols > 1 {
				col = min(x/(deckWidth+colGap), cols-1)
			}
			idx := row*cols + col
			if idx >= len(m.decks) {
				return 0, false
			}
			return idx, true
		}
		rowY += rowHeight
	}
	return 0, false
}

// renderDecksGrid renders a two-column deck grid (single-column when narrow).
func (m *DashboardModel) renderDecksGrid(width int, height int) string {
	if width < 20 {
		return "Terminal too narrow"
	}
	if len(m.decks) == 0 {
		return "No decks mounted"
	}

	cols := m.deckColumnCount()
	rowHeights := m.deckRowHeightsFor(height)

	// Each deck adds 2 chars for borders (left+right) on top of its Width.
	borderWidth := 2
	deckWidth := width - borderWidth
	colGap := 0
	if cols > 1 {
		colGap = 1
		deckWidth = max((width-colGap-cols*borderWidth)/cols, 25)
	}

	renderDeck := func(idx int, h int) string {
		active := m.activeDeckIdx == idx
		// Height excludes the top and bottom border lines.
		return m.decks[idx].Draw(m.viewContext(idx), deckWidth, max(h-2, 1), active, m.deckSelIdx[idx])
	}

	renderedRows := make([]string, 0, len(rowHeights))
	for row, deckHeight := range rowHeights {
		rowDecks := make([]string, 0, cols)
		for col := 0; col < cols; col++ {
			idx := row*cols + col
			if idx >= len(m.decks) {
				if cols > 1 {
					rowDecks = append(rowDecks, lipgloss.NewStyle().Width(deckWidth).Height(deckHeight).Render(""))
				}
				continue
			}
			rowDecks = append(rowDecks, renderDeck(idx, deckHeight))
		}

		rowView := rowDecks[0]
		if len(rowDecks) > 1 {
			withGaps := make([]string, 0, len(rowDecks)*2-1)
			for i, panel := range rowDecks {
				if i > 0 {
					withGaps = append(withGaps, " ")
				}
				withGaps = append(withGaps, panel)
			}
			rowView = lipgloss.JoinHorizontal(lipgloss.Top, withGaps...)
		}
		renderedRows = append(renderedRows, rowView)
	}

	return lipgloss.NewStyle().
		Height(height).
		MaxHeight(height).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, renderedRows...))
}
