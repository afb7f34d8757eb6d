package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorPrefersEnv(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "nano")
	assert.Equal(t, "nano", Editor())

	t.Setenv("VISUAL", "code --wait")
	assert.Equal(t, "code --wait", Editor())
}

func TestEditorSession(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "myedit -n")

	s, err := NewEditorSession("hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"myedit", "-n", s.Path}, s.Cmd.Args)

	// simulate the editor saving new content
	require.NoError(t, os.WriteFile(s.Path, []byte("edited text\n"), 0o600))

	out, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, "edited text", out)

	_, err = os.Stat(s.Path)
	assert.True(t, os.IsNotExist(err))
}
