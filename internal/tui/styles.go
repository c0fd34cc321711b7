package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	columnTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#5B8DEF"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	focusedBoxStyle = boxStyle.
			BorderForeground(lipgloss.Color("#5B8DEF"))
	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))
	activeButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#4CAF50")).
				Bold(true)
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	logTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#F7B801")).
			Foreground(lipgloss.Color("#F7B801")).
			Bold(true).
			Padding(1, 3)
)

func button(label string, active bool) string {
	if active {
		return activeButtonStyle.Render("[" + label + "]")
	}
	return buttonStyle.Render("[" + label + "]")
}
