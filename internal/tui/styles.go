package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	ColorNavy   = lipgloss.Color("#0B1020")
	ColorWhite  = lipgloss.Color("#E6E6E6")
	ColorGray   = lipgloss.Color("#6C6C6C")
	ColorBlue   = lipgloss.Color("#00BFFF")
	ColorGreen  = lipgloss.Color("#00FF9F")
	ColorYellow = lipgloss.Color("#FFD700")
	ColorRed    = lipgloss.Color("#FF3B3B")
	ColorGrid   = lipgloss.Color("#333333")
)

var (
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	activeSectionStyle = sectionStyle.
				BorderForeground(ColorBlue)

	deckTitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#1E2A44"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6666"))
)

// colorStyle returns a foreground style for a hex color.
func colorStyle(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

// blockStyle returns a style that paints both foreground and background,
// as used for chart bars.
func blockStyle(hex string) lipgloss.Style {
	c := lipgloss.Color(hex)
	return lipgloss.NewStyle().Foreground(c).Background(c)
}
