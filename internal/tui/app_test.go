package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/tasklist/internal/config"
	"github.com/kingrea/tasklist/internal/logbook"
	"github.com/kingrea/tasklist/internal/task"
)

func TestAddTaskRendersInBothLists(t *testing.T) {
	app := newTestApp(t)
	app = sendKey(t, app, typeText("Buy milk"))
	app = sendKey(t, app, press(tea.KeyEnter))
	app = sendKey(t, app, typeText("Walk dog"))
	app = sendKey(t, app, press(tea.KeyEnter))

	if got := app.store.Len(); got != 2 {
		t.Fatalf("store length = %d, want 2", got)
	}
	if app.form.input.Value() != "" {
		t.Fatalf("form buffer should be cleared, got %q", app.form.input.Value())
	}
	assertListsAgree(t, app, "Buy milk", "Walk dog")
	if !strings.Contains(app.statusMsg, "Walk dog") {
		t.Fatalf("status should mention last add, got %q", app.statusMsg)
	}
}

func TestBlankSubmissionBlocksBehindAlert(t *testing.T) {
	app := newTestApp(t)
	app = sendKey(t, app, typeText("   "))
	app = sendKey(t, app, press(tea.KeyEnter))

	if app.alert != emptySubmissionAlert {
		t.Fatalf("expected alert %q, got %q", emptySubmissionAlert, app.alert)
	}
	if app.store.Len() != 0 {
		t.Fatalf("blank submission must not add a task")
	}
	if !strings.Contains(app.View(), emptySubmissionAlert) {
		t.Fatalf("alert should be rendered")
	}

	app = sendKey(t, app, typeText("x"))
	if got := app.form.input.Value(); got != "   " {
		t.Fatalf("input must be suspended while alert is open, buffer = %q", got)
	}

	app = sendKey(t, app, press(tea.KeyEnter))
	if app.alert != "" {
		t.Fatalf("enter should dismiss the alert")
	}
	if app.store.Len() != 0 {
		t.Fatalf("dismissing the alert must not submit")
	}
}

func TestEditSaveRenamesInPlace(t *testing.T) {
	store := task.NewStore()
	milk, _ := store.Add("Buy milk")
	dog, _ := store.Add("Walk dog")
	app := newTestApp(t, WithStore(store))

	app = sendKey(t, app, press(tea.KeyTab))
	app = sendKey(t, app, typeText("e"))
	if !app.editor.IsEditing(milk.ID) {
		t.Fatalf("expected first row in edit mode")
	}
	if got := app.editor.editing[milk.ID].Value(); got != "Buy milk" {
		t.Fatalf("edit field should be pre-filled, got %q", got)
	}
	app.editor.editing[milk.ID].SetValue("Buy oat milk")
	app = sendKey(t, app, press(tea.KeyEnter))

	if app.editor.IsEditing(milk.ID) || app.editor.Typing() {
		t.Fatalf("save must leave edit mode")
	}
	assertListsAgree(t, app, "Buy oat milk", "Walk dog")
	if got, _ := store.Get(dog.ID); got.Name != "Walk dog" {
		t.Fatalf("other task changed: %q", got.Name)
	}
}

func TestTypingAppendsToEditField(t *testing.T) {
	store := task.NewStore()
	milk, _ := store.Add("Buy milk")
	app := newTestApp(t, WithStore(store))

	app = sendKey(t, app, press(tea.KeyTab))
	app = sendKey(t, app, typeText("e"))
	app = sendKey(t, app, typeText(" today"))
	// q and ? belong to the field while typing
	app = sendKey(t, app, typeText("?q"))
	app = sendKey(t, app, press(tea.KeyEnter))

	got, _ := store.Get(milk.ID)
	if got.Name != "Buy milk today?q" {
		t.Fatalf("renamed to %q", got.Name)
	}
}

func TestReleasedEditFieldStillSaves(t *testing.T) {
	store := task.NewStore()
	milk, _ := store.Add("Buy milk")
	app := newTestApp(t, WithStore(store))

	app = sendKey(t, app, press(tea.KeyTab))
	app = sendKey(t, app, typeText("e"))
	app.editor.editing[milk.ID].SetValue("Buy bread")
	app = sendKey(t, app, press(tea.KeyEsc))
	if app.editor.Typing() {
		t.Fatalf("esc should release the field")
	}
	if !app.editor.IsEditing(milk.ID) {
		t.Fatalf("esc must keep the row in edit mode")
	}
	app = sendKey(t, app, press(tea.KeyEnter))
	if got, _ := store.Get(milk.ID); got.Name != "Buy bread" {
		t.Fatalf("renamed to %q", got.Name)
	}
}

func TestEmptyRenameStoredByDefault(t *testing.T) {
	store := task.NewStore()
	milk, _ := store.Add("Buy milk")
	app := newTestApp(t, WithStore(store))

	app = sendKey(t, app, press(tea.KeyTab))
	app = sendKey(t, app, typeText("e"))
	app.editor.editing[milk.ID].SetValue("")
	app = sendKey(t, app, press(tea.KeyEnter))

	if got, _ := store.Get(milk.ID); got.Name != "" {
		t.Fatalf("expected empty name, got %q", got.Name)
	}
	if app.editor.IsEditing(milk.ID) {
		t.Fatalf("save must leave edit mode")
	}
	if !strings.Contains(app.editor.View(true), "(untitled)") {
		t.Fatalf("empty names should render a placeholder in the editable list")
	}
	if app.alert != "" {
		t.Fatalf("renames never raise the alert")
	}
}

func TestEmptyRenameRejectedWhenConfigured(t *testing.T) {
	store := task.NewStore(task.WithEmptyRenames(false))
	milk, _ := store.Add("Buy milk")
	app := newTestApp(t, WithStore(store))

	app = sendKey(t, app, press(tea.KeyTab))
	app = sendKey(t, app, typeText("e"))
	app.editor.editing[milk.ID].SetValue("  ")
	app = sendKey(t, app, press(tea.KeyEnter))

	if app.editor.IsEditing(milk.ID) {
		t.Fatalf("row must leave edit mode even when the rename is rejected")
	}
	if got, _ := store.Get(milk.ID); got.Name != "Buy milk" {
		t.Fatalf("blank rename should be rejected, got %q", got.Name)
	}
	if app.alert != "" {
		t.Fatalf("rename failures are not surfaced as alerts")
	}
}

func TestNewAppAppliesConfiguredRenamePolicy(t *testing.T) {
	cfg := config.Defaults()
	if err := cfg.SetAllowEmptyNames(false); err != nil {
		t.Fatalf("SetAllowEmptyNames: %v", err)
	}
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if app.store.AllowsEmptyRenames() {
		t.Fatalf("store should reject blank renames when configured")
	}
}

func TestBlanksKeyTogglesRenamePolicy(t *testing.T) {
	store := task.NewStore()
	milk, _ := store.Add("Buy milk")
	app := newTestApp(t, WithStore(store))

	app = sendKey(t, app, press(tea.KeyTab))
	app = sendKey(t, app, typeText("r"))
	if store.AllowsEmptyRenames() || app.config.AllowEmptyNames() {
		t.Fatalf("r should switch to rejecting blank renames")
	}
	if !strings.Contains(app.statusMsg, "rejected") {
		t.Fatalf("status = %q", app.statusMsg)
	}

	app = sendKey(t, app, typeText("e"))
	app.editor.editing[milk.ID].SetValue("")
	app = sendKey(t, app, press(tea.KeyEnter))
	if got, _ := store.Get(milk.ID); got.Name != "Buy milk" {
		t.Fatalf("blank rename should be rejected after toggling, got %q", got.Name)
	}

	app = sendKey(t, app, typeText("r"))
	if !store.AllowsEmptyRenames() || !app.config.AllowEmptyNames() {
		t.Fatalf("second r should allow blank renames again")
	}
}

func TestBlanksKeyTypesInFormAndEditField(t *testing.T) {
	store := task.NewStore()
	milk, _ := store.Add("Buy milk")
	app := newTestApp(t, WithStore(store))

	app = sendKey(t, app, typeText("r"))
	if got := app.form.input.Value(); got != "r" {
		t.Fatalf("form buffer = %q", got)
	}
	app = sendKey(t, app, press(tea.KeyTab))
	app = sendKey(t, app, typeText("e"))
	app = sendKey(t, app, typeText("r"))
	if got := app.editor.editing[milk.ID].Value(); got != "Buy milkr" {
		t.Fatalf("edit field = %q", got)
	}
	if !store.AllowsEmptyRenames() {
		t.Fatalf("typing r must not toggle the policy")
	}
}

func TestBlanksKeyPersistsRenamePolicy(t *testing.T) {
	projectDir := t.TempDir()
	if err := config.InitTasksDir(projectDir); err != nil {
		t.Fatalf("init tasks dir: %v", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	app, err := NewApp(cfg, WithLogbook(nil))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	app = sendKey(t, app, press(tea.KeyTab))
	app = sendKey(t, app, typeText("r"))

	reloaded, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.AllowEmptyNames() {
		t.Fatalf("toggle should persist allow_empty_names: false")
	}
}

func TestEditFieldFollowsExternalRename(t *testing.T) {
	store := task.NewStore()
	milk, _ := store.Add("Buy milk")
	app := newTestApp(t, WithStore(store))

	app = sendKey(t, app, press(tea.KeyTab))
	app = sendKey(t, app, typeText("e"))
	app = sendKey(t, app, press(tea.KeyEsc))
	if err := store.Update(milk.ID, "Buy oat milk"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !app.editor.IsEditing(milk.ID) {
		t.Fatalf("row should stay in edit mode")
	}
	if got := app.editor.editing[milk.ID].Value(); got != "Buy oat milk" {
		t.Fatalf("released edit field should follow the rename, got %q", got)
	}

	app = sendKey(t, app, press(tea.KeyEnter))
	if got, _ := store.Get(milk.ID); got.Name != "Buy oat milk" {
		t.Fatalf("saving the synced field renamed to %q", got.Name)
	}
}

func TestEditFieldKeepsBufferWhileTyping(t *testing.T) {
	store := task.NewStore()
	milk, _ := store.Add("Buy milk")
	app := newTestApp(t, WithStore(store))

	app = sendKey(t, app, press(tea.KeyTab))
	app = sendKey(t, app, typeText("e"))
	app = sendKey(t, app, typeText("!"))
	if err := store.Update(milk.ID, "Buy oat milk"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !app.editor.Typing() {
		t.Fatalf("external rename should not release the field")
	}
	if got := app.editor.editing[milk.ID].Value(); got != "Buy milk!" {
		t.Fatalf("typed buffer should be kept, got %q", got)
	}
}

func TestDeleteKeyRemovesSelectedRow(t *testing.T) {
	store := task.NewStore()
	_, _ = store.Add("Buy milk")
	dog, _ := store.Add("Walk dog")
	_, _ = store.Add("Pay rent")
	app := newTestApp(t, WithStore(store))

	app = sendKey(t, app, press(tea.KeyTab))
	app = sendKey(t, app, press(tea.KeyDown))
	app = sendKey(t, app, typeText("d"))

	if _, ok := store.Get(dog.ID); ok {
		t.Fatalf("selected task should be deleted")
	}
	assertListsAgree(t, app, "Buy milk", "Pay rent")

	app = sendKey(t, app, press(tea.KeyDown))
	app = sendKey(t, app, typeText("x"))
	assertListsAgree(t, app, "Buy milk")
	if app.editor.cursor != 0 {
		t.Fatalf("cursor should clamp to remaining rows, got %d", app.editor.cursor)
	}
}

func TestDeletingEditedRowDropsEditState(t *testing.T) {
	store := task.NewStore()
	milk, _ := store.Add("Buy milk")
	app := newTestApp(t, WithStore(store))

	app = sendKey(t, app, press(tea.KeyTab))
	app = sendKey(t, app, typeText("e"))
	if err := store.Delete(milk.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if app.editor.IsEditing(milk.ID) || app.editor.Typing() {
		t.Fatalf("edit state should be dropped with the task")
	}
	if app.snapshot.Len() != 0 {
		t.Fatalf("snapshot should be empty")
	}
}

func TestStaleIntentsAreSilent(t *testing.T) {
	book, err := logbook.New(filepath.Join(t.TempDir(), "tasks.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	t.Cleanup(func() { _ = book.Close() })
	store := task.NewStore()
	_, _ = store.Add("Buy milk")
	app := newTestApp(t, WithStore(store), WithLogbook(book))
	status := app.statusMsg

	model, cmd := app.Update(updateIntentMsg{id: "missing", name: "x"})
	app = runCommands(t, model, cmd)
	model, cmd = app.Update(deleteIntentMsg{id: "missing"})
	app = runCommands(t, model, cmd)

	if app.statusMsg != status {
		t.Fatalf("stale intents must not change the status line, got %q", app.statusMsg)
	}
	if app.alert != "" {
		t.Fatalf("stale intents must not raise alerts")
	}
	assertListsAgree(t, app, "Buy milk")
	lines, _ := book.Tail(10)
	warnings := 0
	for _, line := range lines {
		if strings.Contains(line, "WARN") && strings.Contains(line, "not found") {
			warnings++
		}
	}
	if warnings != 2 {
		t.Fatalf("expected 2 not-found warnings in log, got %d: %q", warnings, lines)
	}
}

func TestQuitOnlyOutsideTextFields(t *testing.T) {
	app := newTestApp(t)
	_, cmd := app.Update(typeText("q"))
	if isQuit(cmd) {
		t.Fatalf("q in the add form should be typed, not quit")
	}
	if app.form.input.Value() != "q" {
		t.Fatalf("form buffer = %q", app.form.input.Value())
	}

	app = sendKey(t, app, press(tea.KeyTab))
	_, cmd = app.Update(typeText("q"))
	if !isQuit(cmd) {
		t.Fatalf("q in the list should quit")
	}

	_, cmd = app.Update(press(tea.KeyCtrlC))
	if !isQuit(cmd) {
		t.Fatalf("ctrl+c should always quit")
	}
}

func TestHelpToggle(t *testing.T) {
	app := newTestApp(t)
	app = sendKey(t, app, press(tea.KeyTab))
	app = sendKey(t, app, typeText("?"))
	if !app.help.ShowAll {
		t.Fatalf("? should expand help")
	}
	app = sendKey(t, app, typeText("?"))
	if app.help.ShowAll {
		t.Fatalf("? should collapse help")
	}
}

func TestFocusCycleReleasesEditField(t *testing.T) {
	store := task.NewStore()
	_, _ = store.Add("Buy milk")
	app := newTestApp(t, WithStore(store))

	app = sendKey(t, app, press(tea.KeyTab))
	if app.form.Focused() {
		t.Fatalf("form should blur when the list takes focus")
	}
	app = sendKey(t, app, typeText("e"))
	app = sendKey(t, app, press(tea.KeyShiftTab))
	if app.focus != focusForm || !app.form.Focused() {
		t.Fatalf("shift+tab should return focus to the form")
	}
	if app.editor.Typing() {
		t.Fatalf("leaving the list should release the edit field")
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	store := task.NewStore()
	app := newTestApp(t, WithStore(store))
	if err := app.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	_, _ = store.Add("Buy milk")
	if app.snapshot.Len() != 0 {
		t.Fatalf("closed app should stop receiving snapshots")
	}
}

func TestViewShowsColumns(t *testing.T) {
	store := task.NewStore()
	_, _ = store.Add("Buy milk")
	app := newTestApp(t, WithStore(store))
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = model.(*App)

	view := app.View()
	for _, want := range []string{"TASK MANAGER", "Edit Tasks", "All Tasks (1)", "Add Task", "Buy milk"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func newTestApp(t *testing.T, opts ...AppOption) *App {
	t.Helper()
	app, err := NewApp(nil, opts...)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app
}

func sendKey(t *testing.T, app *App, msg tea.KeyMsg) *App {
	t.Helper()
	model, cmd := app.Update(msg)
	return runCommands(t, model, cmd)
}

func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 64 {
			t.Fatalf("command loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		switch m := msg.(type) {
		case nil:
			continue
		case tea.BatchMsg:
			queue = append(queue, m...)
			continue
		case tea.QuitMsg:
			return app
		}
		nextModel, nextCmd := app.Update(msg)
		app, ok = nextModel.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", nextModel)
		}
		queue = append(queue, nextCmd)
	}
	return app
}

func assertListsAgree(t *testing.T, app *App, names ...string) {
	t.Helper()
	got := app.snapshot.Names()
	if strings.Join(got, "|") != strings.Join(names, "|") {
		t.Fatalf("snapshot = %q, want %q", got, names)
	}
	if strings.Join(app.editor.tasks.Names(), "|") != strings.Join(names, "|") {
		t.Fatalf("editable list = %q, want %q", app.editor.tasks.Names(), names)
	}
	if strings.Join(app.store.Snapshot().Names(), "|") != strings.Join(names, "|") {
		t.Fatalf("store = %q, want %q", app.store.Snapshot().Names(), names)
	}
	display := renderDisplay(app.snapshot, 80)
	editor := app.editor.View(true)
	last := -1
	for _, name := range names {
		idx := strings.Index(display, "• "+name)
		if idx < 0 || idx < last {
			t.Fatalf("display list missing or misordered %q:\n%s", name, display)
		}
		last = idx
		if !strings.Contains(editor, name) {
			t.Fatalf("editable list missing %q:\n%s", name, editor)
		}
	}
}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}
