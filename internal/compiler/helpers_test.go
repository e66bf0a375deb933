package compiler

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cfdl/internal/ast"
	"github.com/roach88/cfdl/internal/ir"
	"github.com/roach88/cfdl/internal/parser"
	"github.com/roach88/cfdl/internal/testutil"
)

// parse runs the parser and AST builder over src.
func parse(t *testing.T, src string) []*ast.Node {
	t.Helper()
	file, err := parser.Parse("test.cfdl", []byte(src))
	require.NoError(t, err)
	return ast.Build(file)
}

// testOptions returns options with a silent logger and a stopped clock.
func testOptions() Options {
	return Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    testutil.NewFixedClock(testutil.Epoch).Now,
	}
}

// build compiles src with testOptions, adjusted by mods.
func build(t *testing.T, src string, mods ...func(*Options)) *Result {
	t.Helper()
	opts := testOptions()
	for _, mod := range mods {
		mod(&opts)
	}
	return New(opts).Build(context.Background(), parse(t, src))
}

// newNode returns a bare IR node with the given dependencies.
func newNode(t *testing.T, kind ir.Kind, id string, deps ...string) ir.Node {
	t.Helper()
	n, ok := ir.New(kind, id, id)
	require.True(t, ok)
	for _, dep := range deps {
		n.Common().AddDependency(dep)
	}
	return n
}

// registryOf registers nodes in order and fails on any error.
func registryOf(t *testing.T, nodes ...ir.Node) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, n := range nodes {
		require.NoError(t, reg.Register(n))
	}
	return reg
}

// validDeal is a deal that passes validation on its own.
const validDeal = `deal D1 {
  name: "Main Deal";
  dealType: acquisition;
  currency: "USD";
  entryDate: "2024-01-01";
  exitDate: "2029-01-01";
  analysisStart: "2024-01-01";
  holdingPeriodYears: 5;
}
`
