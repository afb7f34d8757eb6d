// Package controller reconciles note list actions with the store and keeps a
// rendered view of every persisted note. It does not depend on any UI toolkit:
// callers feed it actions and receive Views through a Renderer.
package controller

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/electr1fy0/jot/storage"
)

// Item is one rendered note.
type Item struct {
	ID        string
	Text      string
	Age       string
	CreatedAt int64
}

// View is a full rendering of the note list, newest first.
type View struct {
	Items []Item
}

// Empty reports whether the placeholder should be shown instead of a list.
func (v View) Empty() bool { return len(v.Items) == 0 }

// Renderer receives a fresh View after every reload.
type Renderer interface {
	Render(View)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(View)

func (f RendererFunc) Render(v View) { f(v) }

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeUndo
)

// Notice is the banner currently on screen. Gen identifies the timer that
// will dismiss it.
type Notice struct {
	Gen  int
	Text string
	Kind NoticeKind
}

func (n Notice) Undoable() bool { return n.Kind == NoticeUndo }

// EditOutcome describes what a confirm-edit did.
type EditOutcome int

const (
	EditIgnored  EditOutcome = iota // no edit in progress
	EditEmpty                       // trimmed text empty, still editing
	EditVanished                    // note was deleted meanwhile, edit dropped
	EditSaved
)

func (o EditOutcome) String() string {
	switch o {
	case EditEmpty:
		return "empty"
	case EditVanished:
		return "vanished"
	case EditSaved:
		return "saved"
	default:
		return "ignored"
	}
}

// Controller owns the transient state of the note list: the note being
// edited, the single undo slot and the current notice.
type Controller struct {
	store  storage.Store
	render Renderer
	now    func() time.Time
	log    *slog.Logger

	editingID string
	held      *storage.Note
	notice    *Notice
	noticeGen int

	handlers map[Action]handler
}

type Option func(*Controller)

// WithClock overrides the time source used for createdAt and age labels.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func New(store storage.Store, r Renderer, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		render: r,
		now:    time.Now,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.render == nil {
		c.render = RendererFunc(func(View) {})
	}
	c.handlers = c.dispatchTable()
	return c
}

// Reload fetches every note, sorts newest first and renders.
func (c *Controller) Reload(ctx context.Context) error {
	notes, err := c.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	slices.SortFunc(notes, func(a, b storage.Note) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})

	now := c.now()
	v := View{Items: make([]Item, 0, len(notes))}
	for _, n := range notes {
		v.Items = append(v.Items, Item{
			ID:        n.ID,
			Text:      Sanitize(n.Text),
			Age:       RelativeTime(n.Created(), now),
			CreatedAt: n.CreatedAt,
		})
	}
	c.render.Render(v)
	return nil
}

// Save creates a note from input. Blank input is ignored and reported with
// created == false.
func (c *Controller) Save(ctx context.Context, input string) (storage.Note, bool, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return storage.Note{}, false, nil
	}
	n, err := c.store.Create(ctx, text, c.now().UnixMilli())
	if err != nil {
		return storage.Note{}, false, fmt.Errorf("save note: %w", err)
	}
	c.log.Debug("note saved", "id", n.ID)
	return n, true, c.Reload(ctx)
}

// BeginEdit enters the editing state for id and returns its current text.
func (c *Controller) BeginEdit(ctx context.Context, id string) (string, error) {
	n, err := c.store.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("begin edit: %w", err)
	}
	c.editingID = id
	return n.Text, nil
}

// Editing returns the id of the note being edited.
func (c *Controller) Editing() (string, bool) {
	return c.editingID, c.editingID != ""
}

// CancelEdit discards the edit without touching the store.
func (c *Controller) CancelEdit() {
	c.editingID = ""
}

// ConfirmEdit replaces the text of the note being edited. Blank text keeps
// the edit open; a note deleted in the meantime drops the edit silently.
func (c *Controller) ConfirmEdit(ctx context.Context, input string) (EditOutcome, error) {
	if c.editingID == "" {
		return EditIgnored, nil
	}
	text := strings.TrimSpace(input)
	if text == "" {
		return EditEmpty, nil
	}

	id := c.editingID
	n, err := c.store.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		c.editingID = ""
		c.log.Debug("edit target vanished", "id", id)
		return EditVanished, nil
	}
	if err != nil {
		return EditIgnored, fmt.Errorf("confirm edit: %w", err)
	}

	n.Text = text
	if err := c.store.Replace(ctx, n); err != nil {
		return EditIgnored, fmt.Errorf("confirm edit: %w", err)
	}
	c.editingID = ""
	c.log.Debug("note edited", "id", id)
	if err := c.Reload(ctx); err != nil {
		return EditSaved, err
	}
	c.Notify("Note updated", NoticeSuccess)
	return EditSaved, nil
}

// Delete removes id, keeping a copy in the undo slot. Any older copy is
// dropped. Deleting an id that is already gone does nothing.
func (c *Controller) Delete(ctx context.Context, id string) (bool, error) {
	n, err := c.store.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	if err := c.store.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	if c.held != nil {
		c.log.Debug("undo slot overwritten", "dropped", c.held.ID)
	}
	c.held = &n
	c.log.Debug("note deleted", "id", id)
	// the notice timer bounds the undo slot, reload failure or not
	c.Notify("Note deleted", NoticeUndo)
	if err := c.Reload(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// Held returns the note in the undo slot.
func (c *Controller) Held() (storage.Note, bool) {
	if c.held == nil {
		return storage.Note{}, false
	}
	return *c.held, true
}

// Undo restores the note in the undo slot under its original id.
func (c *Controller) Undo(ctx context.Context) (bool, error) {
	if c.held == nil {
		return false, nil
	}
	n := *c.held
	if err := c.store.Replace(ctx, n); err != nil {
		return false, fmt.Errorf("undo delete: %w", err)
	}
	c.held = nil
	c.notice = nil
	c.log.Debug("note restored", "id", n.ID)
	return true, c.Reload(ctx)
}

// Notify replaces the current notice. The caller is expected to call Expire
// with the returned Gen once the display timeout elapses.
func (c *Controller) Notify(text string, kind NoticeKind) Notice {
	c.noticeGen++
	c.notice = &Notice{Gen: c.noticeGen, Text: text, Kind: kind}
	return *c.notice
}

// Notice returns the notice on screen, if any.
func (c *Controller) Notice() (Notice, bool) {
	if c.notice == nil {
		return Notice{}, false
	}
	return *c.notice, true
}

// Expire handles the timer of notice gen: the banner is cleared and the undo
// slot emptied. Timers of superseded notices are ignored.
func (c *Controller) Expire(gen int) bool {
	if c.notice == nil || c.notice.Gen != gen {
		return false
	}
	c.notice = nil
	if c.held != nil {
		c.log.Debug("undo expired", "id", c.held.ID)
		c.held = nil
	}
	return true
}
