// internal/tui/app.go
//
// This is the task manager's TUI (Terminal User Interface).
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: the App, holding the latest task snapshot and view-local state
// 2. Update: key messages become intents, intents are applied to the store
// 3. View: both task lists render from the same snapshot
//
// The flow is: Key -> View emits intent -> Store mutates -> Snapshot -> View

package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/tasklist/internal/config"
	"github.com/kingrea/tasklist/internal/logbook"
	"github.com/kingrea/tasklist/internal/task"
)

const emptySubmissionAlert = "Task cannot be empty!"

// focusArea represents which pane receives key presses
type focusArea int

const (
	focusForm   focusArea = iota // Add form text field
	focusEditor                  // Editable task list
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithStore injects the task store instead of creating a fresh one.
func WithStore(store *task.Store) AppOption {
	return func(a *App) {
		if store != nil {
			a.store = store
		}
	}
}

// WithLogbook injects the logbook instead of opening the configured file.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
		a.logbookInjected = true
	}
}

// App is the main application model.
type App struct {
	config          *config.Config
	store           *task.Store
	logbook         *logbook.Logbook
	logbookInjected bool
	ownsLogbook     bool
	unsubscribe     func()

	// snapshot is the single value both task lists render from
	snapshot task.Snapshot

	// UI components
	keys    keyMap
	help    help.Model
	form    *addForm
	editor  *editorView
	focus   focusArea
	alert   string // non-empty while the blocking alert is shown

	statusMsg string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp creates a new App. A nil cfg uses in-memory defaults.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	a := &App{
		config: cfg,
		keys:   defaultKeyMap(),
		help:   help.New(),
		focus:  focusForm,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.store == nil {
		a.store = task.NewStore(task.WithEmptyRenames(cfg.AllowEmptyNames()))
	}
	if !a.logbookInjected && cfg.LogEnabled() {
		lb, err := logbook.New(cfg.LogPath())
		if err != nil {
			return nil, err
		}
		a.logbook = lb
		a.ownsLogbook = true
	}

	a.form = newAddForm(cfg.Project.Form.Placeholder, cfg.Project.Form.CharLimit, &a.keys)
	a.editor = newEditorView(cfg.Project.Form.CharLimit, &a.keys)
	a.form.Focus()

	a.applySnapshot(a.store.Snapshot())
	a.unsubscribe = a.store.Subscribe(task.ListenerFunc(a.applySnapshot))
	a.statusMsg = "Type a task and press enter. Tab switches to the list."
	a.logInfo("Session opened · %d task(s)", a.snapshot.Len())
	return a, nil
}

// Close detaches from the store and releases the logbook if the App opened it.
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.logInfo("Session closed · %d task(s) discarded", a.snapshot.Len())
	if a.ownsLogbook {
		return a.logbook.Close()
	}
	return nil
}

// applySnapshot is the store listener. Both lists read a.snapshot, so they
// can never show different collections.
func (a *App) applySnapshot(snap task.Snapshot) {
	a.snapshot = snap
	a.editor.sync(snap)
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		left, _ := a.columnWidths()
		a.form.SetWidth(msg.Width - 40)
		a.editor.SetWidth(left - 4)
		return a, nil

	case addIntentMsg:
		return a, a.handleAdd(msg)

	case updateIntentMsg:
		return a, a.handleUpdate(msg)

	case deleteIntentMsg:
		return a, a.handleDelete(msg)

	case emptySubmissionMsg:
		a.alert = emptySubmissionAlert
		a.logInfo("Form · blank submission blocked")
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ForceQuit) {
		return a, tea.Quit
	}
	if a.alert != "" {
		if key.Matches(msg, a.keys.Dismiss) {
			a.alert = ""
		}
		return a, nil
	}
	if key.Matches(msg, a.keys.NextFocus) || key.Matches(msg, a.keys.PrevFocus) {
		return a, a.toggleFocus()
	}

	switch a.focus {
	case focusForm:
		return a, a.form.Update(msg)
	case focusEditor:
		if !a.editor.Typing() {
			switch {
			case key.Matches(msg, a.keys.Quit):
				return a, tea.Quit
			case key.Matches(msg, a.keys.Help):
				a.help.ShowAll = !a.help.ShowAll
				return a, nil
			case key.Matches(msg, a.keys.Blanks):
				a.toggleBlankRenames()
				return a, nil
			}
		}
		return a, a.editor.Update(msg)
	}
	return a, nil
}

func (a *App) toggleFocus() tea.Cmd {
	if a.focus == focusForm {
		a.focus = focusEditor
		a.form.Blur()
		return nil
	}
	a.focus = focusForm
	a.editor.Release()
	return a.form.Focus()
}

// toggleBlankRenames flips the rename policy on the running store and
// writes it back to config.yaml.
func (a *App) toggleBlankRenames() {
	allow := !a.store.AllowsEmptyRenames()
	a.store.SetEmptyRenames(allow)
	if err := a.config.SetAllowEmptyNames(allow); err != nil {
		a.logError("Config · save rename policy: %v", err)
	}
	if allow {
		a.statusMsg = "Blank renames are now saved as untitled tasks."
	} else {
		a.statusMsg = "Blank renames are now rejected."
	}
	a.logInfo("Config · allow_empty_names = %t", allow)
}

func (a *App) handleAdd(msg addIntentMsg) tea.Cmd {
	created, err := a.store.Add(msg.name)
	if err != nil {
		if errors.Is(err, task.ErrEmptySubmission) {
			a.alert = emptySubmissionAlert
		}
		a.logWarn("Task · add rejected: %v", err)
		return nil
	}
	a.statusMsg = fmt.Sprintf("Added %q", created.Name)
	a.logInfo("Task · added %q (id %s)", created.Name, created.ID)
	return nil
}

// handleUpdate applies a rename. Failures are not shown to the user; the
// row has already left edit mode.
func (a *App) handleUpdate(msg updateIntentMsg) tea.Cmd {
	before, _ := a.store.Get(msg.id)
	if err := a.store.Update(msg.id, msg.name); err != nil {
		switch {
		case errors.Is(err, task.ErrNotFound):
			a.logWarn("Task · update ignored: %v", err)
		case errors.Is(err, task.ErrEmptySubmission):
			a.logWarn("Task · rename of %q rejected: %v", before.Name, err)
		default:
			a.logError("Task · update failed: %v", err)
		}
		return nil
	}
	a.statusMsg = fmt.Sprintf("Saved %q", msg.name)
	a.logInfo("Task · renamed %q -> %q (id %s)", before.Name, msg.name, msg.id)
	return nil
}

func (a *App) handleDelete(msg deleteIntentMsg) tea.Cmd {
	removed, _ := a.store.Get(msg.id)
	if err := a.store.Delete(msg.id); err != nil {
		if errors.Is(err, task.ErrNotFound) {
			a.logWarn("Task · delete ignored: %v", err)
		} else {
			a.logError("Task · delete failed: %v", err)
		}
		return nil
	}
	a.statusMsg = fmt.Sprintf("Deleted %q", removed.Name)
	a.logInfo("Task · deleted %q (id %s)", removed.Name, msg.id)
	return nil
}

// View renders the current state to a string.
func (a *App) View() string {
	if a.alert != "" {
		return a.renderAlert()
	}
	left, right := a.columnWidths()

	header := headerStyle.Render("⬡ " + strings.ToUpper(a.config.Title()))
	formBox := a.paneStyle(focusForm).
		Width(max(20, left+right+4)).
		Render(a.form.View())

	editorBox := a.paneStyle(focusEditor).
		Width(max(20, left)).
		Render(a.editor.View(a.focus == focusEditor))
	displayBox := boxStyle.
		Width(max(20, right)).
		Render(renderDisplay(a.snapshot, right-4))
	columns := lipgloss.JoinHorizontal(lipgloss.Top, editorBox, displayBox)

	sections := []string{header, formBox, columns}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := mutedStyle.Render(a.statusMsg)
	sections = append(sections, footer, a.help.View(a.keys))
	return strings.Join(sections, "\n")
}

func (a *App) paneStyle(area focusArea) lipgloss.Style {
	if a.focus == area {
		return focusedBoxStyle
	}
	return boxStyle
}

func (a *App) columnWidths() (int, int) {
	width := a.width
	if width <= 0 {
		width = 100
	}
	right := max(24, (width-4)*2/5)
	left := width - right - 4
	if left < 30 {
		left = 30
	}
	return left, right
}

func (a *App) renderLogPanel() string {
	lines, total := a.logbook.Tail(a.config.Project.Log.PanelLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := columnTitleStyle.Render(fmt.Sprintf("LOG · %s · %d entr%s", fileName, total, plural(total, "y", "ies")))
	body := logTextStyle.Render(strings.Join(lines, "\n"))
	return boxStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderAlert() string {
	box := alertStyle.Render(fmt.Sprintf("⚠ %s\n\n%s", a.alert, mutedStyle.Render("Press enter to continue")))
	if a.width <= 0 || a.height <= 0 {
		return box
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
