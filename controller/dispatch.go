package controller

import (
	"context"
	"errors"
	"fmt"
)

// Action names a user action understood by Dispatch.
type Action string

const (
	ActionSave        Action = "save"
	ActionEdit        Action = "edit"
	ActionCancelEdit  Action = "cancel-edit"
	ActionConfirmEdit Action = "confirm-edit"
	ActionDelete      Action = "delete"
	ActionUndo        Action = "undo"
	ActionExpire      Action = "expire"
)

var ErrUnknownAction = errors.New("unknown action")

// Event carries an action and its arguments. ID addresses a note, Text is
// user input and Gen names a notice timer.
type Event struct {
	Action Action
	ID     string
	Text   string
	Gen    int
}

// Result reports what an action did. Notice is set when the action raised a
// new notice whose timer the caller must schedule.
type Result struct {
	Changed bool
	Text    string
	Edit    EditOutcome
	Notice  *Notice
}

type handler func(ctx context.Context, ev Event) (Result, error)

func (c *Controller) dispatchTable() map[Action]handler {
	return map[Action]handler{
		ActionSave: func(ctx context.Context, ev Event) (Result, error) {
			_, created, err := c.Save(ctx, ev.Text)
			return Result{Changed: created}, err
		},
		ActionEdit: func(ctx context.Context, ev Event) (Result, error) {
			text, err := c.BeginEdit(ctx, ev.ID)
			return Result{Text: text}, err
		},
		ActionCancelEdit: func(context.Context, Event) (Result, error) {
			c.CancelEdit()
			return Result{}, nil
		},
		ActionConfirmEdit: func(ctx context.Context, ev Event) (Result, error) {
			out, err := c.ConfirmEdit(ctx, ev.Text)
			res := Result{Edit: out, Changed: out == EditSaved}
			if out == EditSaved && err == nil {
				res.Notice = c.currentNotice()
			}
			return res, err
		},
		ActionDelete: func(ctx context.Context, ev Event) (Result, error) {
			deleted, err := c.Delete(ctx, ev.ID)
			res := Result{Changed: deleted}
			if deleted {
				res.Notice = c.currentNotice()
			}
			return res, err
		},
		ActionUndo: func(ctx context.Context, ev Event) (Result, error) {
			restored, err := c.Undo(ctx)
			return Result{Changed: restored}, err
		},
		ActionExpire: func(_ context.Context, ev Event) (Result, error) {
			c.Expire(ev.Gen)
			return Result{}, nil
		},
	}
}

// Dispatch routes ev to its handler.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (Result, error) {
	h, ok := c.handlers[ev.Action]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, ev.Action)
	}
	return h(ctx, ev)
}

func (c *Controller) currentNotice() *Notice {
	n, ok := c.Notice()
	if !ok {
		return nil
	}
	return &n
}
