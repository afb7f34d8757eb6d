package model

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/electr1fy0/jot/config"
	"github.com/electr1fy0/jot/controller"
	"github.com/electr1fy0/jot/storage"
	"github.com/electr1fy0/jot/utils"
)

type state int

const (
	statePass state = iota
	stateList
	stateEdit
	stateView
	stateChangePass
)

// Unlocker opens a password protected store.
type Unlocker func(password string) (storage.Store, error)

// passwordChanger is implemented by stores that can be re-keyed.
type passwordChanger interface {
	ChangePassword(newPassword string) error
}

type noteItem struct {
	id   string
	text string
	age  string
}

// viewBuffer receives controller renders; Update copies them into the list.
type viewBuffer struct {
	view  controller.View
	dirty bool
}

func (b *viewBuffer) Render(v controller.View) {
	b.view = v
	b.dirty = true
}

// noticeExpiredMsg fires when the display timeout of notice gen elapses.
type noticeExpiredMsg struct{ gen int }

// focusEditorMsg fires once the edit modal has settled.
type focusEditorMsg struct{ seq int }

type editorFinishedMsg struct {
	session *utils.EditorSession
	err     error
}

type Model struct {
	state state
	ctx   context.Context
	cfg   *config.Config
	log   *slog.Logger

	width  int
	height int

	unlock   Unlocker
	pwInput  textinput.Model
	store    storage.Store
	ctrl     *controller.Controller
	rendered *viewBuffer

	input        textinput.Model
	inputFocused bool
	list         list.Model

	editor  textarea.Model
	editSeq int

	current     string
	viewContent string

	status    string
	lastError string

	keys keyMap
}
