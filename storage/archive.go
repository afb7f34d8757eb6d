package storage

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const archiveVersion = 1

var ErrEmptyArchive = errors.New("archive contains no notes")

// Archive is the portable export format.
type Archive struct {
	Version    int       `yaml:"version"`
	ExportedAt time.Time `yaml:"exported_at"`
	Notes      []Note    `yaml:"notes"`
}

// WriteArchive encodes notes as a YAML archive.
func WriteArchive(w io.Writer, notes []Note, now time.Time) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	a := Archive{Version: archiveVersion, ExportedAt: now.UTC(), Notes: notes}
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}
	return enc.Close()
}

// ReadArchive decodes and validates a YAML archive.
func ReadArchive(r io.Reader) ([]Note, error) {
	var a Archive
	if err := yaml.NewDecoder(r).Decode(&a); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyArchive
		}
		return nil, fmt.Errorf("decode archive: %w", err)
	}
	if a.Version > archiveVersion {
		return nil, fmt.Errorf("archive version %d is newer than supported version %d", a.Version, archiveVersion)
	}
	if len(a.Notes) == 0 {
		return nil, ErrEmptyArchive
	}
	for i, n := range a.Notes {
		if n.ID == "" {
			return nil, fmt.Errorf("note %d: missing id", i)
		}
		if strings.TrimSpace(n.Text) == "" {
			return nil, fmt.Errorf("note %s: empty text", n.ID)
		}
	}
	return a.Notes, nil
}
