package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/loader"
)

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "2026-01-01", "abc1234")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())

	out := buf.String()
	if !strings.Contains(out, "weft v1.2.3") {
		t.Errorf("output should contain version, got: %s", out)
	}
	if !strings.Contains(out, "abc1234") {
		t.Errorf("output should contain commit, got: %s", out)
	}
}

func TestNewInitCommand(t *testing.T) {
	dir := t.TempDir()

	cmd := NewInitCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{dir})

	require.NoError(t, cmd.Execute())

	for _, f := range []string{"weft.yaml", "models", filepath.Join("models", "sales.yaml")} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("expected %s to exist: %v", f, err)
		}
	}

	// the scaffolded model definition must itself load cleanly
	m, err := loader.LoadFile(filepath.Join(dir, "models", "sales.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Sales", m.Name)
	assert.Len(t, m.Tables(), 2)
}

func TestNewInitCommand_ExistingConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weft.yaml"), []byte("existing"), 0o600))

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	// with --force it succeeds
	cmd = NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{dir, "--force"})
	require.NoError(t, cmd.Execute())
}
