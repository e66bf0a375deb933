package compiler

import (
	"slices"
	"strings"

	"github.com/roach88/cfdl/internal/ir"
)

// CycleWarning describes a dependency cycle among registered nodes, e.g.
// two logic blocks that take each other's output as input. An engine
// ordering nodes by dependency cannot schedule them.
type CycleWarning struct {
	Path    []string `json:"path"` // ["A1", "C1", "A1"]
	Message string   `json:"message"`
}

// AnalyzeCycles finds dependency cycles among the nodes in reg.
//
// It builds an id → dependency graph over registered nodes only
// (unresolved ids cannot take part in a cycle) and without ownership
// back-references, so an asset naming its deal while the deal lists the
// asset is not a cycle. It then runs Tarjan's algorithm and
// reports every strongly connected component with more than one member,
// plus self-references. Output is sorted so that it does not depend on
// declaration order.
func AnalyzeCycles(reg *Registry) []CycleWarning {
	graph := buildDependencyGraph(reg)
	if len(graph) == 0 {
		return nil
	}

	var warnings []CycleWarning
	for _, scc := range tarjanSCC(graph, reg.IDs()) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			warnings = append(warnings, cycleWarning(scc, graph))
		}
	}
	slices.SortFunc(warnings, func(a, b CycleWarning) int {
		return strings.Compare(a.Message, b.Message)
	})
	return warnings
}

// dependencyGraph maps node id → ids it depends on.
type dependencyGraph map[string][]string

func buildDependencyGraph(reg *Registry) dependencyGraph {
	graph := make(dependencyGraph, reg.Len())
	for _, id := range reg.IDs() {
		n, _ := reg.Lookup(id)
		owners := ownerRefs(n)
		edges := []string{}
		for _, dep := range n.Common().Deps {
			if slices.Contains(owners, dep) {
				continue
			}
			if _, ok := reg.Lookup(dep); ok {
				edges = append(edges, dep)
			}
		}
		graph[id] = edges
	}
	return graph
}

// ownerRefs returns the ids n names as its container. The container
// already depends on n through its id lists.
func ownerRefs(n ir.Node) []string {
	switch v := n.(type) {
	case *ir.Asset:
		return []string{v.DealID()}
	case *ir.Component:
		return []string{v.AssetID()}
	case *ir.Contract:
		return []string{v.DealID(), v.AssetID(), v.ComponentID()}
	default:
		return nil
	}
}

func hasSelfLoop(node string, graph dependencyGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components, visiting roots in the
// given order.
func tarjanSCC(graph dependencyGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func cycleWarning(scc []string, graph dependencyGraph) CycleWarning {
	var path []string
	if len(scc) == 1 {
		path = []string{scc[0], scc[0]}
	} else {
		path = reconstructCyclePath(scc, graph)
	}
	return CycleWarning{
		Path:    path,
		Message: "Dependency cycle: " + strings.Join(path, " -> "),
	}
}

// reconstructCyclePath returns the shortest cycle through the smallest id
// of the SCC. A breadth-first search over members always finds one since
// every member reaches every other.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, id := range scc {
		members[id] = true
	}

	start := slices.Min(scc)
	parent := map[string]string{}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range graph[current] {
			if !members[next] {
				continue
			}
			if next == start {
				path := []string{start}
				for at := current; at != start; at = parent[at] {
					path = append(path, at)
				}
				slices.Reverse(path[1:])
				return append(path, start)
			}
			if _, seen := parent[next]; !seen {
				parent[next] = current
				queue = append(queue, next)
			}
		}
	}
	return []string{start, start}
}
