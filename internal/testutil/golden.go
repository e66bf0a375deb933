package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/cfdl/internal/ir"
)

// AssertGolden compares got with testdata/golden/<name>.golden relative to
// the calling package.
//
// To regenerate golden files, run:
//
//	go test ./internal/... -update
func AssertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, got)
}

// AssertGoldenDocument renders v as canonical JSON and compares it with
// the named golden file.
func AssertGoldenDocument(t *testing.T, name string, v any) {
	t.Helper()
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		t.Fatalf("canonical JSON for %s: %v", name, err)
	}
	AssertGolden(t, name, data)
}
