package harness

import (
	"context"
	"testing"

	"github.com/roach88/cfdl/internal/ir"
	"github.com/roach88/cfdl/internal/testutil"
)

// Snapshot is what a golden file records for one scenario: the engine
// documents and the findings. Build ids and durations are left out so
// the file is stable.
func Snapshot(name string, r *Result) map[string]any {
	docs := make([]any, 0, len(r.Build.Nodes))
	for _, n := range r.Build.Nodes {
		docs = append(docs, ir.EngineDocument(n))
	}
	return map[string]any{
		"scenario":  name,
		"success":   r.Build.Success,
		"errors":    nonNil(r.Build.Errors),
		"warnings":  nonNil(r.Build.Warnings),
		"documents": docs,
	}
}

// RunWithGolden runs s, fails the test on any expectation failure, and
// compares the snapshot with testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) *Result {
	t.Helper()
	r, err := Run(context.Background(), s)
	if err != nil {
		t.Fatalf("scenario %s: %v", s.Name, err)
	}
	for _, msg := range r.Errors {
		t.Errorf("scenario %s: %s", s.Name, msg)
	}
	testutil.AssertGoldenDocument(t, s.Name, Snapshot(s.Name, r))
	return r
}
