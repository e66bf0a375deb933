package compiler

import (
	"fmt"
	"slices"

	"github.com/roach88/cfdl/internal/ir"
)

// Registry maps node ids to nodes for one build. It is filled before any
// reference is resolved and only read afterwards.
type Registry struct {
	nodes map[string]ir.Node
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]ir.Node)}
}

// Register adds n under its id. A taken id returns ErrDuplicateID and
// leaves the first node in place.
func (r *Registry) Register(n ir.Node) error {
	id := n.Common().ID
	if id == "" {
		return fmt.Errorf("%s: %w", n.Kind(), ErrEmptyID)
	}
	if prev, ok := r.nodes[id]; ok {
		return fmt.Errorf("%s %s already declared as %s: %w", n.Kind(), id, prev.Kind(), ErrDuplicateID)
	}
	r.nodes[id] = n
	r.order = append(r.order, id)
	return nil
}

// Lookup returns the node registered under id.
func (r *Registry) Lookup(id string) (ir.Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Template returns the template registered under id, for use with
// ir.Assumption.EffectiveValue.
func (r *Registry) Template(id string) (*ir.Template, bool) {
	t, ok := r.nodes[id].(*ir.Template)
	return t, ok
}

// IDs returns registered ids in registration order.
func (r *Registry) IDs() []string {
	return slices.Clone(r.order)
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int { return len(r.nodes) }

// Resolve checks every dependency of nodes and their embedded children
// against reg and returns the ids nothing registered, sorted and unique.
// It also links each capital stack to its registered waterfall.
func Resolve(nodes []ir.Node, reg *Registry) []string {
	missing := make(map[string]bool)
	for _, root := range nodes {
		ir.Walk(root, func(n ir.Node) {
			for _, dep := range n.Common().Deps {
				if _, ok := reg.Lookup(dep); !ok {
					missing[dep] = true
				}
			}
			if cs, ok := n.(*ir.CapitalStack); ok {
				if w, ok := reg.Lookup(cs.WaterfallID()); ok {
					cs.Waterfall, _ = w.(*ir.Waterfall)
				}
			}
		})
	}

	out := make([]string, 0, len(missing))
	for id := range missing {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
