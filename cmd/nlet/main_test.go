package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/muir/nlet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const decl = `
host: db.example.com
port: 5432
url: !ref host
Settings: !ns
  url: !ref ^host
  port: !ref ^port
broken: !ref missing
`

func writeDecl(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(decl), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRunPaths(t *testing.T) {
	t.Parallel()
	file := writeDecl(t)
	stdout, _, err := runCLI(t, "--file", file, "Settings.url", "port")
	require.NoError(t, err)
	assert.Equal(t, "Settings.url: db.example.com\nport: 5432\n", stdout)

	stdout, _, err = runCLI(t, "--file", file, "--json", "Settings.port")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Settings.port": 5432}`, stdout)
}

func TestRunSet(t *testing.T) {
	t.Parallel()
	file := writeDecl(t)
	stdout, _, err := runCLI(t, "--file", file, "--set", "host=localhost", "--set", "port=1", "Settings.url", "Settings.port")
	require.NoError(t, err)
	assert.Equal(t, "Settings.port: 1\nSettings.url: localhost\n", stdout)

	_, _, err = runCLI(t, "--file", file, "--set", "nope")
	require.Error(t, err)

	_, _, err = runCLI(t, "--file", file, "--set", "let=1")
	require.Error(t, err)
	assert.ErrorIs(t, err, nlet.ErrDefinition)
}

func TestRunNames(t *testing.T) {
	t.Parallel()
	stdout, _, err := runCLI(t, "--file", writeDecl(t), "--names")
	require.NoError(t, err)
	assert.Equal(t, "Settings\nbroken\nhost\nport\nurl\n", stdout)
}

func TestRunErrors(t *testing.T) {
	t.Parallel()
	file := writeDecl(t)
	_, stderr, err := runCLI(t, "--file", file, "--debug", "broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, nlet.ErrNotFound)
	assert.Contains(t, stderr, "broken: reference this.missing")

	_, _, err = runCLI(t, "--file", file)
	require.Error(t, err, "resolving every name includes broken")

	_, _, err = runCLI(t)
	require.Error(t, err)

	_, stderr, err = runCLI(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Usage:")
}
