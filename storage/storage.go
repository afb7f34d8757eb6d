package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Note is a single persisted note. CreatedAt is milliseconds since the epoch
// and never changes after creation.
type Note struct {
	ID        string `json:"id"         yaml:"id"`
	Text      string `json:"text"       yaml:"text"`
	CreatedAt int64  `json:"created_at" yaml:"created_at"`
}

// Created returns CreatedAt as a time.Time.
func (n Note) Created() time.Time {
	return time.UnixMilli(n.CreatedAt)
}

// Store is a local collection of notes keyed by id.
type Store interface {
	// Create assigns a fresh id and persists the note.
	Create(ctx context.Context, text string, createdAt int64) (Note, error)
	// GetAll returns every note in no particular order.
	GetAll(ctx context.Context) ([]Note, error)
	// Get returns ErrNotFound when id is unknown.
	Get(ctx context.Context, id string) (Note, error)
	// Replace overwrites the note stored under n.ID, inserting it if absent.
	Replace(ctx context.Context, n Note) error
	// Delete removes id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	Close() error
}

var (
	ErrNotFound    = errors.New("note not found")
	ErrBadPassword = errors.New("wrong vault password")
)

// StorageError reports a failure of the persistence layer itself.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func newID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}
