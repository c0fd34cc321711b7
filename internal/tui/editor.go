package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/tasklist/internal/task"
)

// editorView renders one row per task with Edit/Save/Delete controls.
// Edit mode and the edit buffers are row-local state keyed by task id.
type editorView struct {
	tasks     task.Snapshot
	cursor    int
	editing   map[string]*textinput.Model
	typing    bool
	keys      *keyMap
	charLimit int
	width     int
}

func newEditorView(charLimit int, keys *keyMap) *editorView {
	return &editorView{
		editing:   map[string]*textinput.Model{},
		keys:      keys,
		charLimit: charLimit,
	}
}

// sync adopts a new snapshot. Rows whose task disappeared lose their edit
// state, and open edit fields pick up a changed name unless the user is
// typing in them. The cursor stays on the same task when it survives.
func (v *editorView) sync(snap task.Snapshot) {
	selected := v.selectedID()
	for id, field := range v.editing {
		current, ok := snap.Find(id)
		if !ok {
			delete(v.editing, id)
			continue
		}
		if v.typing && id == selected {
			continue
		}
		if previous, found := v.tasks.Find(id); found && previous.Name != current.Name {
			field.SetValue(current.Name)
		}
	}
	v.tasks = snap
	if idx := snap.Index(selected); idx >= 0 {
		v.cursor = idx
	}
	v.clampCursor()
	if _, ok := v.editing[v.selectedID()]; !ok {
		v.typing = false
	}
}

func (v *editorView) clampCursor() {
	if v.cursor >= len(v.tasks) {
		v.cursor = len(v.tasks) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *editorView) selectedID() string {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return ""
	}
	return v.tasks[v.cursor].ID
}

// Typing reports whether key presses currently go to an edit field.
func (v *editorView) Typing() bool {
	return v.typing
}

// IsEditing reports whether the row for id is in edit mode.
func (v *editorView) IsEditing(id string) bool {
	_, ok := v.editing[id]
	return ok
}

// Release takes key focus away from the edit field without leaving edit mode.
func (v *editorView) Release() {
	if field, ok := v.editing[v.selectedID()]; ok {
		field.Blur()
	}
	v.typing = false
}

func (v *editorView) SetWidth(width int) {
	v.width = width
	for _, field := range v.editing {
		field.Width = v.fieldWidth()
	}
}

func (v *editorView) fieldWidth() int {
	return max(10, v.width-22)
}

func (v *editorView) Update(msg tea.KeyMsg) tea.Cmd {
	id := v.selectedID()
	if id == "" {
		return nil
	}
	if v.typing {
		field, ok := v.editing[id]
		if !ok {
			v.typing = false
			return nil
		}
		switch {
		case key.Matches(msg, v.keys.Submit):
			return v.save(id)
		case key.Matches(msg, v.keys.Release):
			v.Release()
			return nil
		}
		var cmd tea.Cmd
		*field, cmd = field.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
		}
	case key.Matches(msg, v.keys.Edit):
		return v.beginEdit(id)
	case key.Matches(msg, v.keys.Submit):
		if v.IsEditing(id) {
			return v.save(id)
		}
	case key.Matches(msg, v.keys.Delete):
		return emit(deleteIntentMsg{id: id})
	}
	return nil
}

// beginEdit puts the row in edit mode with the current name pre-filled, or
// refocuses the field when the row is already being edited.
func (v *editorView) beginEdit(id string) tea.Cmd {
	field, ok := v.editing[id]
	if !ok {
		current, _ := v.tasks.Find(id)
		ti := newTextInput("", v.charLimit)
		ti.Prompt = ""
		ti.Width = v.fieldWidth()
		ti.SetValue(current.Name)
		field = &ti
		v.editing[id] = field
	}
	v.typing = true
	return field.Focus()
}

// save leaves edit mode whatever the store decides and asks for the rename.
func (v *editorView) save(id string) tea.Cmd {
	field, ok := v.editing[id]
	if !ok {
		return nil
	}
	value := field.Value()
	delete(v.editing, id)
	v.typing = false
	return emit(updateIntentMsg{id: id, name: value})
}

func (v *editorView) View(focused bool) string {
	title := columnTitleStyle.Render("Edit Tasks")
	if len(v.tasks) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("Add a task to get started."))
	}
	rows := make([]string, 0, len(v.tasks))
	for i, t := range v.tasks {
		rows = append(rows, v.renderRow(i, t, focused))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n"))
}

func (v *editorView) renderRow(idx int, t task.Task, focused bool) string {
	indicator := " "
	selected := focused && idx == v.cursor
	if selected {
		indicator = ">"
	}
	if field, ok := v.editing[t.ID]; ok {
		return fmt.Sprintf("%s %s %s %s",
			indicator,
			field.View(),
			button("Save", selected),
			button("Delete", false),
		)
	}
	name := t.Name
	if name == "" {
		name = mutedStyle.Render("(untitled)")
	}
	return fmt.Sprintf("%s %s %s %s",
		indicator,
		name,
		button("Edit", selected),
		button("Delete", false),
	)
}
