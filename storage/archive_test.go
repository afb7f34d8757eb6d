package storage

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveRoundTrip(t *testing.T) {
	notes := []Note{
		{ID: "a", Text: "first", CreatedAt: 100},
		{ID: "b", Text: "multi\nline", CreatedAt: 300},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, notes, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Contains(t, buf.String(), "version: 1")
	assert.Contains(t, buf.String(), "created_at: 300")

	got, err := ReadArchive(&buf)
	require.NoError(t, err)
	assert.Equal(t, notes, got)
}

func TestReadArchiveValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty input", "", "no notes"},
		{"no notes", "version: 1\nnotes: []\n", "no notes"},
		{"missing id", "version: 1\nnotes:\n  - text: hi\n    created_at: 1\n", "missing id"},
		{"empty text", "version: 1\nnotes:\n  - id: x\n    text: \"\"\n", "empty text"},
		{"blank text", "version: 1\nnotes:\n  - id: a\n    text: \"   \"\n    created_at: 1\n", "empty text"},
		{"future version", "version: 9\nnotes:\n  - id: x\n    text: y\n", "newer"},
		{"garbage", "notes: [unterminated", "decode archive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadArchive(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
