package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestApplyCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.properties")
	require.NoError(t, os.WriteFile(path, []byte("a = 1\nb : 2\n"), 0o644))

	out, err := execute(t, newApplyCmd(), "--no-cache", path)
	require.NoError(t, err)
	assert.Contains(t, out, "> Task :formatPropertiesApply SUCCESS")
	assert.Contains(t, out, "formatted: ")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a=1\nb=2\n", string(data))
}

func TestCheckCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.properties")
	require.NoError(t, os.WriteFile(path, []byte("a = 1\n"), 0o644))

	out, err := execute(t, newCheckCmd(), "--no-cache", path)
	require.Error(t, err)
	assert.Contains(t, out, "-a = 1\n")
	assert.Contains(t, out, "+a=1\n")
	assert.Contains(t, out, "> Task :formatPropertiesCheck FAILED")

	require.NoError(t, os.WriteFile(path, []byte("a=1\n"), 0o644))
	out, err = execute(t, newCheckCmd(), "--no-cache", path)
	require.NoError(t, err)
	assert.Contains(t, out, "> Task :formatPropertiesCheck SUCCESS")
}

func TestParseCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.properties")
	require.NoError(t, os.WriteFile(path, []byte("b=2\na=1\nb=3\n"), 0o644))

	out, err := execute(t, newParseCmd(), "--charset", "UTF-8", "-f", "json", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":"3","a":"1"}`, out)

	_, err = execute(t, newParseCmd(), "--charset", "UTF-8", "-f", "xml", path)
	assert.Error(t, err)
}

func TestFmtCommandWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.properties")
	require.NoError(t, os.WriteFile(path, []byte("b : 2\n\n\na = 1"), 0o644))

	out, err := execute(t, newFmtCmd(), "-w", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "b=2\n\na=1\n", string(data))

	_, err = execute(t, newFmtCmd(), "-w")
	assert.Error(t, err)
}

func TestFmtCommandUsesConfigNextToFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "propfmt.toml"), []byte("[properties]\nseparator = \" = \"\n"), 0o644))
	path := filepath.Join(dir, "messages.properties")
	require.NoError(t, os.WriteFile(path, []byte("a=1\n"), 0o644))

	out, err := execute(t, newFmtCmd(), path)
	require.NoError(t, err)
	assert.Equal(t, "a = 1\n", out)
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, newInitCmd(), dir)
	require.NoError(t, err)
	path := filepath.Join(dir, "propfmt.toml")
	assert.Equal(t, "Created "+path+"\n", out)
	assert.FileExists(t, path)

	_, err = execute(t, newInitCmd(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestProjectCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "propfmt.toml"), []byte("[properties]\nsort_keys = true\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "messages.properties"), []byte("a=1\n"), 0o644))
	t.Chdir(dir)

	out, err := execute(t, newProjectCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Config:    "+filepath.Join(dir, "propfmt.toml"))
	assert.Contains(t, out, "Sort keys: true")
	assert.Contains(t, out, "Files (1):\n  messages.properties\n")
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a\n", "b\n"}, splitLines("a\nb"))
	assert.Empty(t, splitLines(""))
}
