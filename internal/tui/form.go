package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/tasklist/internal/task"
)

// addForm owns the not-yet-submitted text for a new task. The buffer lives
// here, never in the store.
type addForm struct {
	input textinput.Model
	keys  *keyMap
}

func newTextInput(placeholder string, charLimit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = charLimit
	ti.Width = 40
	ti.Prompt = "› "
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newAddForm(placeholder string, charLimit int, keys *keyMap) *addForm {
	return &addForm{
		input: newTextInput(placeholder, charLimit),
		keys:  keys,
	}
}

func (f *addForm) Focus() tea.Cmd {
	return f.input.Focus()
}

func (f *addForm) Blur() {
	f.input.Blur()
}

func (f *addForm) Focused() bool {
	return f.input.Focused()
}

func (f *addForm) SetWidth(width int) {
	f.input.Width = max(10, width)
}

func (f *addForm) Update(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, f.keys.Submit) {
		return f.submit()
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

// submit blocks blank text and otherwise hands the buffer to the store,
// clearing it for the next entry.
func (f *addForm) submit() tea.Cmd {
	text := f.input.Value()
	if task.IsBlank(text) {
		return emit(emptySubmissionMsg{})
	}
	f.input.SetValue("")
	return emit(addIntentMsg{name: text})
}

func (f *addForm) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		f.input.View(),
		" ",
		button("Add Task", f.Focused()),
	)
}
