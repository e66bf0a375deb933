// Package schema checks engine documents against CUE definitions of the
// CFDL ontology.
//
// The validator in internal/compiler enforces the rules a node must meet
// to be valid. The schema check is a second, structural opinion on what the
// engine will actually receive: types of nested values, enum members deep
// inside lists, closed numeric ranges. Its findings are warnings.
package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/cfdl/internal/ir"
)

//go:embed cfdl.cue
var definitions string

// Violation is one schema finding. Path is the dotted path inside the
// engine document, or "$" for the document itself.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// Checker holds the compiled definitions. It is safe for concurrent use;
// calls are serialized because a cue.Context is not.
type Checker struct {
	mu   sync.Mutex
	ctx  *cue.Context
	defs map[ir.Kind]cue.Value
}

// NewChecker compiles the embedded definitions.
func NewChecker() (*Checker, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(definitions, cue.Filename("cfdl.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile schema definitions: %w", err)
	}

	defs := make(map[ir.Kind]cue.Value, len(ir.Kinds()))
	for _, kind := range ir.Kinds() {
		def := root.LookupPath(cue.ParsePath("#" + kind.String()))
		if !def.Exists() {
			return nil, fmt.Errorf("schema definitions: missing #%s", kind)
		}
		defs[kind] = def
	}
	return &Checker{ctx: ctx, defs: defs}, nil
}

// Check unifies doc with the definition for kind and returns every
// violation in the order CUE reports them.
func (c *Checker) Check(kind ir.Kind, doc ir.IRObject) []Violation {
	def, ok := c.defs[kind]
	if !ok {
		return []Violation{{Path: "$", Message: fmt.Sprintf("no schema definition for %s", kind)}}
	}

	data, err := ir.MarshalCanonical(doc)
	if err != nil {
		return []Violation{{Path: "$", Message: fmt.Sprintf("encode document: %v", err)}}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	v := c.ctx.CompileBytes(data, cue.Filename(doc.Str("id")+".json"))
	if err := v.Err(); err != nil {
		return violations(err)
	}
	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return violations(err)
	}
	return nil
}

// violations converts a CUE error list. Messages are rendered without the
// path prefix CUE adds, since Path carries it.
func violations(err error) []Violation {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return []Violation{{Path: "$", Message: err.Error()}}
	}

	seen := make(map[Violation]bool, len(errs))
	out := make([]Violation, 0, len(errs))
	for _, e := range errs {
		format, args := e.Msg()
		v := Violation{Path: joinPath(e.Path()), Message: fmt.Sprintf(format, args...)}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// joinPath drops the leading definition label, e.g. #Deal.
func joinPath(path []string) string {
	if len(path) > 0 && strings.HasPrefix(path[0], "#") {
		path = path[1:]
	}
	if len(path) == 0 {
		return "$"
	}
	return strings.Join(path, ".")
}
