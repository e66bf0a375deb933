package compiler

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/cfdl/internal/ir"
)

// Result is the outcome of one Build call.
//
// Nodes holds every top-level node whose transform succeeded, in source
// order, valid or not. Embedded children are reachable through their
// parents. Errors and Warnings are human-readable and ordered by phase,
// then by source position.
type Result struct {
	BuildID    string         `json:"build_id"`
	Nodes      []ir.Node      `json:"-"`
	Errors     []string       `json:"errors"`
	Warnings   []string       `json:"warnings"`
	Success    bool           `json:"success"`
	Duration   time.Duration  `json:"duration"`
	Unresolved []string       `json:"unresolved,omitempty"`
	Cycles     []CycleWarning `json:"cycles,omitempty"`

	// Issues holds the coded validation errors behind every
	// "Validation error in" entry of Errors, in source order.
	Issues []ValidationError `json:"issues,omitempty"`

	// Outcomes has one entry per input AST node, in input order.
	Outcomes []Outcome `json:"-"`

	errorCount int
}

func newResult() *Result {
	return &Result{BuildID: newBuildID()}
}

// newBuildID returns a time-ordered id so stored builds sort naturally.
func newBuildID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (r *Result) addError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.errorCount++
}

func (r *Result) addWarning(msg string) { r.Warnings = append(r.Warnings, msg) }

// NodeCount returns the number of top-level nodes built.
func (r *Result) NodeCount() int { return len(r.Nodes) }

// ErrorCount returns the number of errors recorded, whatever their cause.
func (r *Result) ErrorCount() int { return r.errorCount }

// ValidationErrorCount returns the number of failed validation rules.
func (r *Result) ValidationErrorCount() int { return len(r.Issues) }

// FullyValid reports a successful build in which every node is valid.
func (r *Result) FullyValid() bool {
	if !r.Success || len(r.Errors) > 0 {
		return false
	}
	for _, n := range r.Nodes {
		if !n.Common().Valid() {
			return false
		}
	}
	return true
}

// HasIssues reports whether the build produced any error or warning.
func (r *Result) HasIssues() bool {
	return len(r.Errors) > 0 || len(r.Warnings) > 0
}

// Node returns the top-level node with the given id.
func (r *Result) Node(id string) (ir.Node, bool) {
	for _, n := range r.Nodes {
		if n.Common().ID == id {
			return n, true
		}
	}
	return nil, false
}

// Summary returns a one-line description of the build.
func (r *Result) Summary() string {
	return fmt.Sprintf("IRBuildResult{success=%t, nodes=%d, errors=%d, warnings=%d, buildTime=%dms}",
		r.Success, len(r.Nodes), len(r.Errors), len(r.Warnings), r.Duration.Milliseconds())
}

// DetailedReport renders the build for humans: status, numbered errors
// and warnings, then one line per node.
func (r *Result) DetailedReport() string {
	var sb strings.Builder
	sb.WriteString("=== IR Build Result ===\n")
	fmt.Fprintf(&sb, "Build Success: %t\n", r.Success)
	fmt.Fprintf(&sb, "Nodes Built: %d\n", len(r.Nodes))
	fmt.Fprintf(&sb, "Build Time: %dms\n\n", r.Duration.Milliseconds())

	writeNumbered(&sb, "ERRORS", r.Errors)
	writeNumbered(&sb, "WARNINGS", r.Warnings)

	if len(r.Nodes) > 0 {
		fmt.Fprintf(&sb, "IR NODES (%d):\n", len(r.Nodes))
		for _, n := range r.Nodes {
			sb.WriteString("  - ")
			sb.WriteString(Describe(n))
			if b := n.Common(); !b.Valid() {
				fmt.Fprintf(&sb, " [INVALID: %d errors]", len(b.Messages))
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func writeNumbered(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s (%d):\n", title, len(items))
	for i, item := range items {
		fmt.Fprintf(sb, "  %d. %s\n", i+1, item)
	}
	sb.WriteByte('\n')
}

// Describe returns a short identification of n, e.g.
// Deal{id='D1', name='Main Deal', valid=true}.
func Describe(n ir.Node) string {
	b := n.Common()
	return fmt.Sprintf("%s{id='%s', name='%s', valid=%t}", n.Kind(), b.ID, b.Name, b.Valid())
}
