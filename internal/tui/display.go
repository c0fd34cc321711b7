package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/tasklist/internal/task"
)

// renderDisplay draws the read-only mirror of snap. It keeps no state.
func renderDisplay(snap task.Snapshot, width int) string {
	title := columnTitleStyle.Render(fmt.Sprintf("All Tasks (%d)", snap.Len()))
	if snap.Len() == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("No tasks yet."))
	}
	lines := make([]string, 0, snap.Len())
	for _, name := range snap.Names() {
		lines = append(lines, "• "+name)
	}
	body := lipgloss.NewStyle().Width(max(10, width)).Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}
