package tui

import "github.com/charmbracelet/lipgloss"

const displayWidth = 28

var (
	accent = lipgloss.AdaptiveColor{Light: "26", Dark: "81"}
	subtle = lipgloss.AdaptiveColor{Light: "245", Dark: "244"}
	border = lipgloss.AdaptiveColor{Light: "250", Dark: "238"}
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	displayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			Width(displayWidth).
			Align(lipgloss.Right)

	previousStyle = lipgloss.NewStyle().
			Foreground(subtle)

	currentStyle = lipgloss.NewStyle().
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	dimStyle = lipgloss.NewStyle().
			Foreground(subtle)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)
