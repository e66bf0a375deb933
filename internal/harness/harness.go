package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/cfdl/internal/ast"
	"github.com/roach88/cfdl/internal/compiler"
	"github.com/roach88/cfdl/internal/parser"
	"github.com/roach88/cfdl/internal/schema"
	"github.com/roach88/cfdl/internal/testutil"
)

// Result is the outcome of one scenario.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool

	// Build is the compiler result, nil when a source failed to parse.
	Build *compiler.Result

	// Errors lists every failed expectation, in scenario order.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run compiles the scenario's sources and checks the result. The error
// return is reserved for problems with the scenario itself, such as an
// unreadable or unparsable source; failed expectations are reported in
// Result.Errors.
func Run(ctx context.Context, s *Scenario) (*Result, error) {
	nodes, err := parseSources(s)
	if err != nil {
		return nil, err
	}

	b, err := newBuilder(s.Options)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.Build = b.Build(ctx, nodes)
	checkExpect(result, s.Expect)
	for i, a := range s.Assertions {
		if err := checkAssertion(result.Build, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return result, nil
}

func parseSources(s *Scenario) ([]*ast.Node, error) {
	var nodes []*ast.Node
	for _, path := range s.Sources {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read source: %w", err)
		}
		var file *parser.File
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			file, err = parser.ParseYAML(path, src)
		default:
			file, err = parser.Parse(path, src)
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, ast.Build(file)...)
	}
	if s.Source != "" {
		file, err := parser.Parse(s.Name+".cfdl", []byte(s.Source))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, ast.Build(file)...)
	}
	return nodes, nil
}

func newBuilder(o Options) (*compiler.Builder, error) {
	severity, err := compiler.ParseSeverity(o.Unresolved)
	if err != nil {
		return nil, err
	}
	opts := compiler.Options{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:        testutil.NewFixedClock(testutil.Epoch).Now,
		Workers:    o.Workers,
		Unresolved: severity,
	}
	if o.SchemaCheck {
		if opts.SchemaCheck, err = schema.NewChecker(); err != nil {
			return nil, err
		}
	}
	return compiler.New(opts), nil
}

func checkExpect(r *Result, e Expect) {
	res := r.Build
	if e.Success != nil && res.Success != *e.Success {
		r.AddError(fmt.Sprintf("expect.success: want %t, got %t (errors: %v)", *e.Success, res.Success, res.Errors))
	}
	if e.Nodes != nil && res.NodeCount() != *e.Nodes {
		r.AddError(fmt.Sprintf("expect.nodes: want %d, got %d", *e.Nodes, res.NodeCount()))
	}
	if e.Errors != nil {
		checkList(r, "expect.errors", e.Errors, res.Errors)
	}
	if e.Warnings != nil {
		checkList(r, "expect.warnings", e.Warnings, res.Warnings)
	}
}

func checkList(r *Result, field string, want, got []string) {
	if len(want) != len(got) {
		r.AddError(fmt.Sprintf("%s: want %d, got %d: %q", field, len(want), len(got), got))
		return
	}
	for i := range want {
		if want[i] != got[i] {
			r.AddError(fmt.Sprintf("%s[%d]: want %q, got %q", field, i, want[i], got[i]))
		}
	}
}
