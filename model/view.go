package model

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/electr1fy0/jot/controller"
)

func (m Model) View() string {
	if m.state == stateEdit {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.modal())
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("jot: quick notes"))
	s.WriteString("\n\n")

	switch m.state {
	case statePass:
		s.WriteString("Enter password to unlock/create vault:\n\n")
		s.WriteString(m.pwInput.View())
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("enter: unlock  ctrl+c: quit"))

	case stateChangePass:
		s.WriteString("Enter a new vault password:\n\n")
		s.WriteString(m.pwInput.View())
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("enter: confirm  esc: cancel"))

	case stateView:
		s.WriteString(m.viewContent)
		s.WriteString("\n")
		s.WriteString(helpStyle.Render(helpLine(m.keys.back, m.keys.edit, m.keys.delete, m.keys.copy, m.keys.quit)))

	case stateList:
		s.WriteString(m.input.View())
		s.WriteString("  ")
		s.WriteString(m.saveButton())
		s.WriteString("\n\n")
		if m.rendered == nil || m.rendered.view.Empty() {
			s.WriteString(emptyStyle.Render("No notes yet. Write one above and press enter."))
		} else {
			s.WriteString(m.list.View())
		}
		s.WriteString("\n")
		if m.inputFocused {
			s.WriteString(helpStyle.Render(helpLine(m.keys.save, m.keys.focus) + "  ctrl+c:quit"))
		} else {
			s.WriteString(helpStyle.Render(helpLine(
				m.keys.open, m.keys.edit, m.keys.delete, m.keys.undo,
				m.keys.copy, m.keys.changePass, m.keys.focus, m.keys.quit,
			)))
		}
	}

	if banner := m.noticeBanner(); banner != "" {
		s.WriteString("\n")
		s.WriteString(banner)
	}
	if m.status != "" {
		s.WriteString("\n")
		if m.lastError != "" {
			s.WriteString(errorStyle.Render(m.status))
		} else {
			s.WriteString(helpStyle.Render(m.status))
		}
	}
	return s.String()
}

// saveButton is rendered disabled while the input holds nothing.
func (m Model) saveButton() string {
	if m.input.Value() == "" {
		return disabledStyle.Render("Save")
	}
	return buttonStyle.Render("Save")
}

func (m Model) noticeBanner() string {
	if m.ctrl == nil {
		return ""
	}
	n, ok := m.ctrl.Notice()
	if !ok {
		return ""
	}
	var text string
	switch n.Kind {
	case controller.NoticeSuccess:
		text = successStyle.Render(n.Text)
	case controller.NoticeUndo:
		text = warningStyle.Render(n.Text) + "  " + helpStyle.Render(helpLine(m.keys.undo))
	default:
		text = helpStyle.Render(n.Text)
	}
	return noticeStyle.Render(text)
}

func (m Model) modal() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Edit note"))
	s.WriteString("\n\n")
	s.WriteString(m.editor.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(helpLine(m.keys.confirm, m.keys.cancel, m.keys.external)))
	if m.status != "" && m.lastError != "" {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(m.status))
	}
	return modalStyle.Render(s.String())
}

// modalRect returns the screen cells covered by the centred edit modal.
func (m Model) modalRect() (x, y, w, h int) {
	box := m.modal()
	w = lipgloss.Width(box)
	h = lipgloss.Height(box)
	x = max((m.width-w)/2, 0)
	y = max((m.height-h)/2, 0)
	return x, y, w, h
}

func (m Model) insideModal(px, py int) bool {
	x, y, w, h := m.modalRect()
	return px >= x && px < x+w && py >= y && py < y+h
}
