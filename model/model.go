package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/electr1fy0/jot/config"
	"github.com/electr1fy0/jot/controller"
	"github.com/electr1fy0/jot/storage"
)

func newPasswordInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 30
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	return ti
}

func newModel(ctx context.Context, cfg *config.Config, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	in := textinput.New()
	in.Placeholder = "Write a note..."
	in.CharLimit = cfg.MaxLength
	in.Width = 50
	in.Focus()

	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Notes"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	ed := textarea.New()
	ed.CharLimit = cfg.MaxLength
	ed.ShowLineNumbers = false
	ed.SetWidth(50)
	ed.SetHeight(6)

	return Model{
		ctx:          ctx,
		cfg:          cfg,
		log:          logger,
		input:        in,
		inputFocused: true,
		list:         l,
		editor:       ed,
		keys:         newKeyMap(),
	}
}

// New returns a model showing the notes of an already open store.
func New(ctx context.Context, cfg *config.Config, store storage.Store, logger *slog.Logger) Model {
	m := newModel(ctx, cfg, logger)
	m.attach(store)
	m.state = stateList
	return m
}

// NewLocked returns a model that asks for a password and opens its store
// through unlock.
func NewLocked(ctx context.Context, cfg *config.Config, unlock Unlocker, logger *slog.Logger) Model {
	m := newModel(ctx, cfg, logger)
	m.unlock = unlock
	m.pwInput = newPasswordInput("enter password")
	m.state = statePass
	return m
}

// Store returns the open store, or nil while the model is still locked.
func (m Model) Store() storage.Store {
	return m.store
}

func (m *Model) attach(store storage.Store) {
	m.store = store
	m.rendered = &viewBuffer{}
	m.ctrl = controller.New(store, m.rendered, controller.WithLogger(m.log))
	if err := m.ctrl.Reload(m.ctx); err != nil {
		m.fail("Failed to load notes", err)
	}
	m.syncList()
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, max(msg.Height-10, 3))
		m.resizeEditor()
		if m.state == stateView && m.current != "" {
			m.refreshPreview()
		}
		return m, nil

	case noticeExpiredMsg:
		if m.ctrl != nil {
			m.dispatch(controller.Event{Action: controller.ActionExpire, Gen: msg.gen})
		}
		return m, nil

	case focusEditorMsg:
		if m.state == stateEdit && msg.seq == m.editSeq {
			return m, m.editor.Focus()
		}
		return m, nil

	case editorFinishedMsg:
		return m.finishExternalEdit(msg), nil
	}

	switch m.state {
	case statePass:
		return m.updatePass(msg)
	case stateList:
		return m.updateList(msg)
	case stateEdit:
		return m.updateEdit(msg)
	case stateView:
		return m.updateView(msg)
	case stateChangePass:
		return m.updateChangePass(msg)
	}
	return m, nil
}

func (m Model) updatePass(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			store, err := m.unlock(m.pwInput.Value())
			m.pwInput.SetValue("")
			if err != nil {
				if errors.Is(err, storage.ErrBadPassword) {
					m.status = "Wrong password"
					m.lastError = err.Error()
				} else {
					m.fail("Failed to open vault", err)
				}
				return m, nil
			}
			m.ok("")
			m.attach(store)
			m.state = stateList
			if m.lastError == "" {
				m.ok(fmt.Sprintf("Unlocked vault (%d notes)", len(m.rendered.view.Items)))
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.pwInput, cmd = m.pwInput.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, isKey := msg.(tea.KeyMsg)

	if m.inputFocused {
		if isKey {
			switch {
			case k.String() == "ctrl+c":
				return m, tea.Quit
			case key.Matches(k, m.keys.focus), k.Type == tea.KeyEsc:
				m.inputFocused = false
				m.input.Blur()
				return m, nil
			case key.Matches(k, m.keys.save):
				res, err := m.dispatch(controller.Event{Action: controller.ActionSave, Text: m.input.Value()})
				if err != nil {
					m.fail("Save failed", err)
					return m, nil
				}
				if res.Changed {
					m.input.Reset()
					m.ok("Note saved")
				}
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if isKey {
		switch {
		case key.Matches(k, m.keys.quit):
			return m, tea.Quit
		case key.Matches(k, m.keys.focus):
			m.inputFocused = true
			return m, m.input.Focus()
		case key.Matches(k, m.keys.edit):
			if id, ok := m.selectedID(); ok {
				return m.beginEdit(id)
			}
			return m, nil
		case key.Matches(k, m.keys.delete):
			if id, ok := m.selectedID(); ok {
				return m.deleteNote(id)
			}
			return m, nil
		case key.Matches(k, m.keys.undo):
			return m.undo()
		case key.Matches(k, m.keys.copy):
			if id, ok := m.selectedID(); ok {
				return m.copyNote(id)
			}
			return m, nil
		case key.Matches(k, m.keys.open):
			if id, ok := m.selectedID(); ok {
				m.openPreview(id)
			}
			return m, nil
		case key.Matches(k, m.keys.changePass):
			if _, ok := m.store.(passwordChanger); ok {
				m.pwInput = newPasswordInput("new password")
				m.state = stateChangePass
				return m, textinput.Blink
			}
			m.status = "Password change needs the vault backend"
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && !m.insideModal(msg.X, msg.Y) {
			m.cancelEdit()
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.cancel):
			m.cancelEdit()
			return m, nil
		case key.Matches(msg, m.keys.confirm):
			return m.confirmEdit()
		case key.Matches(msg, m.keys.external):
			return m, m.openExternalEditor()
		}
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) updateView(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case k.String() == "ctrl+c", k.String() == "q":
		return m, tea.Quit
	case key.Matches(k, m.keys.back):
		m.state = stateList
		m.current = ""
	case key.Matches(k, m.keys.edit):
		return m.beginEdit(m.current)
	case key.Matches(k, m.keys.delete):
		id := m.current
		m.state = stateList
		m.current = ""
		return m.deleteNote(id)
	case key.Matches(k, m.keys.copy):
		return m.copyNote(m.current)
	}
	return m, nil
}

func (m Model) updateChangePass(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.state = stateList
			m.status = "Password unchanged"
			return m, nil
		case "enter":
			pw := m.pwInput.Value()
			m.pwInput.SetValue("")
			if err := m.changePassword(pw); err != nil {
				m.fail("Password change failed", err)
				return m, nil
			}
			m.state = stateList
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.pwInput, cmd = m.pwInput.Update(msg)
	return m, cmd
}

func (m Model) beginEdit(id string) (tea.Model, tea.Cmd) {
	res, err := m.dispatch(controller.Event{Action: controller.ActionEdit, ID: id})
	if err != nil {
		m.fail("Cannot edit note", err)
		return m, nil
	}
	m.editor.Reset()
	m.editor.SetValue(res.Text)
	m.editor.Blur()
	m.state = stateEdit
	m.current = ""
	m.editSeq++
	seq := m.editSeq
	return m, tea.Tick(m.cfg.FocusDelay, func(time.Time) tea.Msg {
		return focusEditorMsg{seq: seq}
	})
}

func (m Model) confirmEdit() (tea.Model, tea.Cmd) {
	res, err := m.dispatch(controller.Event{Action: controller.ActionConfirmEdit, Text: m.editor.Value()})
	if err != nil {
		m.fail("Update failed", err)
		return m, nil
	}
	switch res.Edit {
	case controller.EditEmpty:
		m.status = "Note text cannot be empty"
		return m, nil
	case controller.EditSaved:
		m.closeEditor()
		m.ok("")
		return m, m.expireAfter(res.Notice)
	}
	m.closeEditor()
	return m, nil
}

func (m *Model) cancelEdit() {
	m.dispatch(controller.Event{Action: controller.ActionCancelEdit})
	m.closeEditor()
}

func (m *Model) closeEditor() {
	m.editor.Blur()
	m.editSeq++
	m.state = stateList
}

func (m Model) deleteNote(id string) (tea.Model, tea.Cmd) {
	res, err := m.dispatch(controller.Event{Action: controller.ActionDelete, ID: id})
	if err != nil {
		m.fail("Delete failed", err)
	}
	return m, m.expireAfter(res.Notice)
}

func (m Model) undo() (tea.Model, tea.Cmd) {
	res, err := m.dispatch(controller.Event{Action: controller.ActionUndo})
	if err != nil {
		m.fail("Undo failed", err)
		return m, nil
	}
	if res.Changed {
		m.ok("Note restored")
	} else {
		m.status = "Nothing to undo"
	}
	return m, nil
}

func (m *Model) dispatch(ev controller.Event) (controller.Result, error) {
	res, err := m.ctrl.Dispatch(m.ctx, ev)
	m.syncList()
	return res, err
}

// expireAfter schedules the timeout of n. A later notice bumps the
// generation so older timers become no-ops.
func (m Model) expireAfter(n *controller.Notice) tea.Cmd {
	if n == nil {
		return nil
	}
	gen := n.Gen
	return tea.Tick(m.cfg.UndoTimeout, func(time.Time) tea.Msg {
		return noticeExpiredMsg{gen: gen}
	})
}

func (m *Model) ok(status string) {
	m.status = status
	m.lastError = ""
}

func (m *Model) fail(prefix string, err error) {
	m.status = prefix + ": " + err.Error()
	m.lastError = err.Error()
	m.log.Error(prefix, "error", err)
}
