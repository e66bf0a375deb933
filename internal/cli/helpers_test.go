package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const dealSource = `deal D1 {
  name: "Main Deal";
  dealType: acquisition;
  currency: "USD";
  entryDate: "2024-01-01";
  exitDate: "2029-01-01";
  analysisStart: "2024-01-01";
  holdingPeriodYears: 5;
}
`

const contractSource = `contract C1 {
  name: "Ground Lease";
  dealId: D1;
  contractType: lease;
  startDate: "2024-01-01";
  endDate: "2034-01-01";
  parties: [ { partyId: P1; role: tenant } ];
}
`

const badWaterfall = `waterfall W1 {
  tiers: [
    { id: T1; condition: "always"; distribute: [ { recipient: P1; percentage: 0.6 }, { recipient: P1; percentage: 0.3 } ] }
  ];
}
`

// writeFile creates dir/name with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
