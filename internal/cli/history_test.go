package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cfdl/internal/store"
)

// saveCompile compiles src into db and returns the build id.
func saveCompile(t *testing.T, db, src string) string {
	t.Helper()
	stdout, _, _ := execute(t, "--db", db, "--format", "json", "compile", "--save", src)
	var resp struct {
		Data CompileOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.True(t, resp.Data.Saved)
	return resp.Data.BuildID
}

func TestHistory_RequiresDatabase(t *testing.T) {
	_, stderr, err := execute(t, "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "no history database")
}

func TestHistory_EmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	stdout, _, err := execute(t, "--db", db, "history")
	require.NoError(t, err)
	assert.Equal(t, "No builds recorded.\n", stdout)
}

func TestHistory_ListAndShow(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "history.db")
	good := saveCompile(t, db, writeFile(t, dir, "deal.cfdl", dealSource))
	bad := saveCompile(t, db, writeFile(t, dir, "wf.cfdl", badWaterfall))

	stdout, _, err := execute(t, "--db", db, "history")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "BUILD"))
	assert.True(t, strings.HasPrefix(lines[1], bad), "newest first")
	assert.Contains(t, lines[1], "failed")
	assert.True(t, strings.HasPrefix(lines[2], good))

	stdout, _, err = execute(t, "--db", db, "history", "--limit", "1", "--format", "json")
	require.NoError(t, err)
	var listed struct {
		Data []store.BuildRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, bad, listed.Data[0].ID)

	stdout, _, err = execute(t, "--db", db, "history", bad)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Build "+bad+" (failed)\n")
	assert.Contains(t, stdout, "ERRORS (1):\n")
	assert.Contains(t, stdout, "  - Waterfall W1 ")
	assert.Contains(t, stdout, "[INVALID]")
}

func TestHistory_UnknownBuild(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	_, stderr, err := execute(t, "--db", db, "history", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, ErrCodeBuildNotFound)
}

func TestHistory_Node(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "history.db")
	src := writeFile(t, dir, "deal.cfdl", dealSource)
	saveCompile(t, db, src)
	saveCompile(t, db, src)
	writeFile(t, dir, "deal.cfdl", strings.Replace(dealSource, "acquisition", "development", 1))
	saveCompile(t, db, src)

	stdout, _, err := execute(t, "--db", db, "history", "--node", "D1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[1], "first"))
	assert.True(t, strings.HasSuffix(lines[2], "same"))
	assert.True(t, strings.HasSuffix(lines[3], "changed"))
}

func TestHistory_BuildIDAndNodeConflict(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	_, _, err := execute(t, "--db", db, "history", "--node", "D1", "some-id")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
