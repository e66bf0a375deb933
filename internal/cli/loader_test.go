package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cfdl/internal/parser"
)

func nodeIDs(res *LoadResult) []string {
	ids := make([]string, len(res.Nodes))
	for i, n := range res.Nodes {
		ids[i] = n.ID
	}
	return ids
}

func TestLoadSource_SingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "deal.cfdl", dealSource)

	res, err := LoadSource(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, res.Files)
	assert.Equal(t, []string{"D1"}, nodeIDs(res))
}

func TestLoadSource_ImportsComeFirst(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shared/deal.cfdl", dealSource)
	writeFile(t, dir, "shared/party.cfdl", `import "deal.cfdl";
party P1 { name: "Tenant Co"; partyType: organization; }
`)
	main := writeFile(t, dir, "main.cfdl", `import "shared/party.cfdl";
import "shared/deal.cfdl";
`+contractSource)

	res, err := LoadSource(main)
	require.NoError(t, err)
	assert.Equal(t, []string{"D1", "P1", "C1"}, nodeIDs(res), "each file is loaded once, imports first")
	assert.Len(t, res.Files, 3)
}

func TestLoadSource_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "deal.yaml", `- deal:
    D1:
      name: Main Deal
      dealType: acquisition
`)

	res, err := LoadSource(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"D1"}, nodeIDs(res))
}

func TestLoadSource_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.cfdl", `import "b.cfdl";`+"\n"+dealSource)
	writeFile(t, dir, "b.cfdl", `import "a.cfdl";`+"\n")
	writeFile(t, dir, "broken.cfdl", "deal D1 { name: ; }\n")
	writeFile(t, dir, "dangling.cfdl", `import "gone.cfdl";`+"\n")

	tests := []struct {
		name     string
		file     string
		code     string
		contains string
		exit     int
	}{
		{"missing entry", "nope.cfdl", ErrCodeNotFound, "file not found", ExitCommandError},
		{"missing import", "dangling.cfdl", ErrCodeNotFound, `import "gone.cfdl" not found`, ExitFailure},
		{"syntax", "broken.cfdl", ErrCodeSyntax, "broken.cfdl:1:", ExitFailure},
		{"cycle", "a.cfdl", ErrCodeImportCycle, "import cycle: ", ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := LoadSource(filepath.Join(dir, tt.file))
			require.Error(t, err)
			assert.Nil(t, res, "no partial results")
			assert.Equal(t, tt.code, loadErrorCode(err))
			assert.Contains(t, loadMessage(err), tt.contains)
			assert.Equal(t, tt.exit, loadExitCode(err))
		})
	}
}

func TestLoadSource_SyntaxErrorUnwraps(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.cfdl", "deal { }\n")

	_, err := LoadSource(path)
	assert.ErrorIs(t, err, parser.ErrSyntax)
}
