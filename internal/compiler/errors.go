package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/cfdl/internal/ast"
	"github.com/roach88/cfdl/internal/ir"
)

var (
	// ErrUnsupportedKind is returned for definitions with no IR variant
	// (schedule, metric and the generic categories).
	ErrUnsupportedKind = errors.New("unsupported definition kind")

	// ErrDuplicateID is returned when a second node registers an id that
	// is already taken. The first node keeps the slot.
	ErrDuplicateID = errors.New("duplicate node id")

	// ErrEmptyID is returned when a node without an id is registered.
	ErrEmptyID = errors.New("node id is empty")
)

// TransformError reports an AST node that could not become an IR node.
type TransformError struct {
	NodeID string `json:"node_id"`
	Kind   string `json:"kind"`
	Err    error  `json:"-"`
}

// Error implements the error interface.
func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s %s: %v", e.Kind, e.NodeID, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// Stage names the pipeline step a node reached.
type Stage string

const (
	StageTransform Stage = "transform"
	StageRegister  Stage = "register"
	StageEnrich    Stage = "enrich"
	StageValidate  Stage = "validate"
	StageDone      Stage = "done"
)

// Outcome is the per-node record threaded through a build. Node is nil when
// the transform failed; Err holds the failure of the last stage reached.
// Issues are the validation errors of Node and its embedded children.
type Outcome struct {
	Source *ast.Node
	Node   ir.Node
	Stage  Stage
	Err    error
	Issues []ValidationError
}

// Failed reports whether the node dropped out of the build.
func (o Outcome) Failed() bool { return o.Node == nil }
