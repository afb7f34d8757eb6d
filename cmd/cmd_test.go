package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electr1fy0/jot/controller"
)

func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "db_path: " + filepath.Join(dir, "notes.db") + "\n" +
		"vault_path: " + filepath.Join(dir, "vault") + "\n" +
		"log_file: " + filepath.Join(dir, "jot.log") + "\n" + extra
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewCmdRoot()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestAddThenList(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "add", "Buy", "milk")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved ")

	out, err = run(t, cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "just now")
}

func TestListEmpty(t *testing.T) {
	out, err := run(t, writeConfig(t, ""), "list")
	require.NoError(t, err)
	assert.Equal(t, "No notes yet.\n", out)
}

func TestAddRejectsBlankText(t *testing.T) {
	_, err := run(t, writeConfig(t, ""), "add", "   ")
	assert.ErrorContains(t, err, "empty")
}

func TestAddRejectsLongText(t *testing.T) {
	_, err := run(t, writeConfig(t, "max_length: 5\n"), "add", "too long for this")
	assert.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := writeConfig(t, "")
	_, err := run(t, src, "add", "first")
	require.NoError(t, err)
	_, err = run(t, src, "add", "second")
	require.NoError(t, err)

	archive := filepath.Join(t.TempDir(), "notes.yaml")
	_, err = run(t, src, "export", archive)
	require.NoError(t, err)

	dst := writeConfig(t, "")
	out, err := run(t, dst, "import", archive)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 notes")

	out, err = run(t, dst, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
}

func TestImportMissingFile(t *testing.T) {
	_, err := run(t, writeConfig(t, ""), "import", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestVaultNeedsPassword(t *testing.T) {
	t.Setenv("JOT_PASSWORD", "")
	_, err := run(t, writeConfig(t, ""), "--backend", "vault", "list")
	assert.ErrorContains(t, err, "JOT_PASSWORD")
}

func TestVaultWithPassword(t *testing.T) {
	t.Setenv("JOT_PASSWORD", "hunter2")
	cfg := writeConfig(t, "backend: vault\n")

	_, err := run(t, cfg, "add", "secret plan")
	require.NoError(t, err)

	out, err := run(t, cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "secret plan")
}

func TestUnknownBackend(t *testing.T) {
	_, err := run(t, writeConfig(t, ""), "--backend", "paper", "list")
	assert.ErrorContains(t, err, "unknown backend")
}

func TestVersion(t *testing.T) {
	out, err := run(t, writeConfig(t, ""), "version")
	require.NoError(t, err)
	assert.Equal(t, "jot dev\n", out)
}

func TestTableRendererTruncates(t *testing.T) {
	var buf bytes.Buffer
	r := tableRenderer{w: &buf, width: 10}
	r.Render(controller.View{Items: []controller.Item{
		{ID: "0123456789abcdef", Text: "a note that is much too long", Age: "2 hours ago"},
	}})

	line := strings.TrimSuffix(buf.String(), "\n")
	assert.True(t, strings.HasPrefix(line, "01234567  "))
	assert.Contains(t, line, "…")
	assert.NotContains(t, line, "much too long")
	assert.True(t, strings.HasSuffix(line, "2 hours ago"))
}
