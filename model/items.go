package model

import (
	"github.com/charmbracelet/bubbles/list"
)

func (i noteItem) FilterValue() string { return i.text }

func (i noteItem) Title() string { return i.text }

func (i noteItem) Description() string { return i.age }

// syncList copies the latest controller render into the list widget.
func (m *Model) syncList() {
	if m.rendered == nil || !m.rendered.dirty {
		return
	}
	items := make([]list.Item, 0, len(m.rendered.view.Items))
	for _, it := range m.rendered.view.Items {
		items = append(items, noteItem{id: it.ID, text: it.Text, age: it.Age})
	}
	m.list.SetItems(items)
	if idx := m.list.Index(); idx >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
	m.rendered.dirty = false
}

func (m Model) selectedID() (string, bool) {
	it, ok := m.list.SelectedItem().(noteItem)
	if !ok {
		return "", false
	}
	return it.id, true
}
