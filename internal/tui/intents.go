package tui

import tea "github.com/charmbracelet/bubbletea"

// Intents are the only way the views ask the store for a change.

type addIntentMsg struct {
	name string
}

type updateIntentMsg struct {
	id   string
	name string
}

type deleteIntentMsg struct {
	id string
}

// emptySubmissionMsg asks the App to block input behind an alert.
type emptySubmissionMsg struct{}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}
