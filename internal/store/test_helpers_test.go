package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cfdl/internal/ast"
	"github.com/roach88/cfdl/internal/compiler"
	"github.com/roach88/cfdl/internal/parser"
	"github.com/roach88/cfdl/internal/testutil"
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

contract C1 {
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

// createTestStore opens a store in a temp dir with the given clock.
func createTestStore(t *testing.T, clock *testutil.FixedClock) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// compile builds src with a silent logger and a stopped clock.
func compile(t *testing.T, src string) *compiler.Result {
	t.Helper()
	file, err := parser.Parse("test.cfdl", []byte(src))
	require.NoError(t, err)
	b := compiler.New(compiler.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    testutil.NewFixedClock(testutil.Epoch).Now,
	})
	return b.Build(context.Background(), ast.Build(file))
}
