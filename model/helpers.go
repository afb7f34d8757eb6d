package model

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/electr1fy0/jot/controller"
	"github.com/electr1fy0/jot/utils"
)

func (m *Model) changePassword(newPassword string) error {
	pc, ok := m.store.(passwordChanger)
	if !ok {
		return fmt.Errorf("store does not support passwords")
	}
	if newPassword == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if err := pc.ChangePassword(newPassword); err != nil {
		return err
	}
	m.ok("Password changed.")
	return nil
}

func (m Model) copyNote(id string) (tea.Model, tea.Cmd) {
	note, err := m.store.Get(m.ctx, id)
	if err != nil {
		m.fail("Copy failed", err)
		return m, nil
	}
	if err := clipboard.WriteAll(note.Text); err != nil {
		m.fail("Copy failed", err)
		return m, nil
	}
	n := m.ctrl.Notify("Copied to clipboard", controller.NoticeInfo)
	return m, m.expireAfter(&n)
}

func (m *Model) openPreview(id string) {
	m.current = id
	if !m.refreshPreview() {
		m.current = ""
		return
	}
	m.state = stateView
}

func (m *Model) refreshPreview() bool {
	note, err := m.store.Get(m.ctx, m.current)
	if err != nil {
		m.fail("Cannot open note", err)
		return false
	}
	m.viewContent = renderPreview(note.Text, m.width)
	return true
}

func (m Model) openExternalEditor() tea.Cmd {
	s, err := utils.NewEditorSession(m.editor.Value())
	if err != nil {
		return func() tea.Msg { return editorFinishedMsg{err: err} }
	}
	return tea.ExecProcess(s.Cmd, func(err error) tea.Msg {
		return editorFinishedMsg{session: s, err: err}
	})
}

func (m Model) finishExternalEdit(msg editorFinishedMsg) Model {
	err := msg.err
	if msg.session != nil {
		text, rerr := msg.session.Result()
		if err == nil {
			err = rerr
		}
		if err == nil && m.state == stateEdit {
			m.editor.SetValue(text)
		}
	}
	if err != nil {
		m.fail("Editor failed", err)
	}
	return m
}

func (m *Model) resizeEditor() {
	w := min(max(m.width-16, 20), 72)
	h := min(max(m.height/3, 3), 12)
	m.editor.SetWidth(w)
	m.editor.SetHeight(h)
}
