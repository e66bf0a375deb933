package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "cfdl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"compile", "validate", "history", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	for _, name := range []string{"config", "db"} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, "", f.DefValue)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, stderr, err := execute(t, "version", "--format", "xml")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, `invalid format "xml"`)
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cfdl "+Version+"\n", stdout)
}

func TestConfig_FileSetsDefaults(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "history.db")
	cfg := writeFile(t, dir, "cfdl.yaml", "output:\n  format: json\nstore:\n  path: "+db+"\n")

	stdout, _, err := execute(t, "--config", cfg, "history")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","data":[]}`, stdout)
}

func TestConfig_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "cfdl.yaml", "output:\n  format: json\n")

	stdout, _, err := execute(t, "--config", cfg, "--format", "text", "version")
	require.NoError(t, err)
	assert.Equal(t, "cfdl "+Version+"\n", stdout)
}

func TestConfig_UnresolvedAsError(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "cfdl.yaml", "build:\n  unresolved: error\n")
	src := writeFile(t, dir, "deal.cfdl", dealSource+contractSource)

	stdout, _, err := execute(t, "--config", cfg, "validate", src)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "ERRORS (1):\n  1. Unresolved reference: P1\n")
}

func TestConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "cfdl.yaml", "build:\n  unresolved: maybe\n")

	_, stderr, err := execute(t, "--config", cfg, "version")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, ErrCodeConfig)
	assert.Contains(t, stderr, `"maybe" must be one of: warning, error`)
}

func TestConfig_Missing(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "version")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
