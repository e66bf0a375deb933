package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/cfdl/internal/compiler"
	"github.com/roach88/cfdl/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// checkAssertion evaluates a against res.
func checkAssertion(res *compiler.Result, a Assertion) error {
	switch a.Type {
	case AssertNodeValid:
		n, err := findNode(res, a)
		if err != nil {
			return err
		}
		if b := n.Common(); !b.Valid() {
			return fail(a, a.Node+" valid", fmt.Sprintf("invalid: %v", b.Messages))
		}

	case AssertNodeInvalid:
		n, err := findNode(res, a)
		if err != nil {
			return err
		}
		b := n.Common()
		if b.Valid() {
			return fail(a, a.Node+" invalid", "valid")
		}
		if a.Contains != "" && !containsSubstring(b.Messages, a.Contains) {
			return fail(a, fmt.Sprintf("message containing %q", a.Contains), fmt.Sprintf("%v", b.Messages))
		}

	case AssertMetaEquals:
		n, err := findNode(res, a)
		if err != nil {
			return err
		}
		return compareField(a, n.Common().Meta)

	case AssertDocumentEquals:
		n, err := findNode(res, a)
		if err != nil {
			return err
		}
		return compareField(a, ir.EngineDocument(n))

	case AssertDependsOn:
		n, err := findNode(res, a)
		if err != nil {
			return err
		}
		deps := n.Common().Deps
		for _, id := range a.IDs {
			if !slices.Contains(deps, id) {
				return fail(a, fmt.Sprintf("%s depends on %s", a.Node, id), fmt.Sprintf("dependencies %v", deps))
			}
		}

	case AssertUnresolved:
		if !slices.Equal(nonNil(res.Unresolved), nonNil(a.IDs)) {
			return fail(a, fmt.Sprintf("%v", nonNil(a.IDs)), fmt.Sprintf("%v", nonNil(res.Unresolved)))
		}

	case AssertCycle:
		for _, c := range res.Cycles {
			if slices.Equal(c.Path, a.Path) {
				return nil
			}
		}
		paths := make([]string, len(res.Cycles))
		for i, c := range res.Cycles {
			paths[i] = strings.Join(c.Path, " -> ")
		}
		return fail(a, strings.Join(a.Path, " -> "), fmt.Sprintf("cycles %v", paths))

	case AssertErrorContains:
		if !containsSubstring(res.Errors, a.Contains) {
			return fail(a, fmt.Sprintf("error containing %q", a.Contains), fmt.Sprintf("%v", res.Errors))
		}

	case AssertWarningContains:
		if !containsSubstring(res.Warnings, a.Contains) {
			return fail(a, fmt.Sprintf("warning containing %q", a.Contains), fmt.Sprintf("%v", res.Warnings))
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// findNode looks through every built node, embedded children included.
func findNode(res *compiler.Result, a Assertion) (ir.Node, error) {
	var found ir.Node
	for _, top := range res.Nodes {
		ir.Walk(top, func(n ir.Node) {
			if found == nil && n.Common().ID == a.Node {
				found = n
			}
		})
	}
	if found == nil {
		return nil, fail(a, "node "+a.Node, "not built")
	}
	return found, nil
}

// compareField compares canonical JSON, so 5 and 5.0 are equal.
func compareField(a Assertion, obj ir.IRObject) error {
	got, ok := obj[a.Field]
	if !ok {
		return fail(a, fmt.Sprintf("%s.%s = %v", a.Node, a.Field, a.Value), "field missing")
	}
	want, err := ir.MarshalCanonical(a.Value)
	if err != nil {
		return fmt.Errorf("%s: expected value: %w", a.Type, err)
	}
	have, err := ir.MarshalCanonical(got)
	if err != nil {
		return fmt.Errorf("%s: actual value: %w", a.Type, err)
	}
	if string(want) != string(have) {
		return fail(a, fmt.Sprintf("%s.%s = %s", a.Node, a.Field, want), string(have))
	}
	return nil
}

func fail(a Assertion, expected, actual string) *AssertionError {
	return &AssertionError{Type: a.Type, Expected: expected, Actual: actual}
}

func containsSubstring(msgs []string, sub string) bool {
	for _, m := range msgs {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
