package utils

import (
	"os"
	"os/exec"
	"strings"
)

// Editor resolves the user's editor: $VISUAL, $EDITOR, then nvim, vi, ed.
func Editor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if ed := strings.TrimSpace(os.Getenv(env)); ed != "" {
			return ed
		}
	}
	// prefer nvim if available
	for _, name := range []string{"nvim", "vi"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return "ed"
}

// EditorSession is a temp file handed to an external editor.
type EditorSession struct {
	Path string
	Cmd  *exec.Cmd
}

// NewEditorSession writes initial to a temp file and prepares the editor
// command for it. The caller runs Cmd, then calls Result.
func NewEditorSession(initial string) (*EditorSession, error) {
	tmp, err := os.CreateTemp("", "jot-note-*.txt")
	if err != nil {
		return nil, err
	}
	if _, err := tmp.WriteString(initial); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}

	// $EDITOR may carry flags, e.g. "code --wait"
	parts := strings.Fields(Editor())
	args := append(parts[1:], tmp.Name())
	return &EditorSession{
		Path: tmp.Name(),
		Cmd:  exec.Command(parts[0], args...),
	}, nil
}

// Result reads back the edited text and removes the temp file.
func (s *EditorSession) Result() (string, error) {
	defer os.Remove(s.Path)
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\n"), nil
}
