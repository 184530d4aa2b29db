// Package graph builds the workspace dependency graph and provides
// topological sort and closure operations over it.
package graph

import (
	"sort"

	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
)

// Graph is a classic adjacency map keyed by package name. Packages
// themselves live in a name->Package map; edges and orderings
// reference them by name only.
type Graph struct {
	byName map[string]*pkgmodel.Package
	edges  map[string]map[string]struct{} // P -> set of D it depends on
}

// Build constructs the graph for a package set. An edge P->D is added
// whenever D's name appears in P's dependencies or dev_dependencies and
// D is itself one of the given packages; non-workspace dependency
// names add no edge.
func Build(packages []*pkgmodel.Package) *Graph {
	g := &Graph{
		byName: make(map[string]*pkgmodel.Package, len(packages)),
		edges:  make(map[string]map[string]struct{}, len(packages)),
	}
	for _, p := range packages {
		g.byName[p.Name] = p
	}
	for _, p := range packages {
		set := make(map[string]struct{})
		for name := range p.AllDependencyNames() {
			if _, ok := g.byName[name]; ok {
				set[name] = struct{}{}
			}
		}
		g.edges[p.Name] = set
	}
	return g
}

// Package looks up a package by name.
func (g *Graph) Package(name string) (*pkgmodel.Package, bool) {
	p, ok := g.byName[name]
	return p, ok
}

// DependenciesOf returns the direct dependency names of a package (workspace members only).
func (g *Graph) DependenciesOf(name string) []string {
	set := g.edges[name]
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// DependentsOf returns the names of packages that directly depend on name.
func (g *Graph) DependentsOf(name string) []string {
	var out []string
	for p, deps := range g.edges {
		if _, ok := deps[name]; ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// TopoSort returns packages in dependency order (a dependency always
// precedes its dependents) using Kahn's algorithm; ties are broken by
// name ascending. If the graph has a cycle, ok is false and cycle holds
// the residual node names with non-zero in-degree.
func (g *Graph) TopoSort() (order []*pkgmodel.Package, cycle []string, ok bool) {
	inDegree := make(map[string]int, len(g.byName))
	for name := range g.byName {
		inDegree[name] = 0
	}
	for _, deps := range g.edges {
		for d := range deps {
			inDegree[d]++
		}
	}

	// A package with in-degree 0 (no dependent yet processed pointing to it... )
	// We want dependencies before dependents, i.e. process nodes with no
	// remaining *unprocessed dependents* first? Kahn's works on out-edges
	// pointing from a node to things that must come after it. Here edge
	// P->D means "P depends on D", so D must be emitted before P. We run
	// Kahn's over the reversed relation: emit nodes with in-degree 0 in
	// the "depended upon by" count, i.e. nodes nothing depends on... that
	// is backwards. Instead, track remaining dependency counts per node
	// and emit nodes whose dependencies have all been emitted.
	remaining := make(map[string]int, len(g.byName))
	for name, deps := range g.edges {
		remaining[name] = len(deps)
	}

	emitted := make(map[string]bool, len(g.byName))
	var queue []string
	for name := range g.byName {
		if remaining[name] == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		sort.Strings(queue)
		name := queue[0]
		queue = queue[1:]
		if emitted[name] {
			continue
		}
		emitted[name] = true
		order = append(order, g.byName[name])

		for dependent, deps := range g.edges {
			if emitted[dependent] {
				continue
			}
			if _, dependsOnName := deps[name]; dependsOnName {
				remaining[dependent]--
				if remaining[dependent] == 0 {
					queue = append(queue, dependent)
				}
			}
		}
	}

	if len(order) != len(g.byName) {
		var residual []string
		for name := range g.byName {
			if !emitted[name] {
				residual = append(residual, name)
			}
		}
		sort.Strings(residual)
		return nil, residual, false
	}
	return order, nil, true
}

// ForwardClosure is a BFS from seed following P->D edges (dependencies),
// returning seed plus every package reachable by following "depends on".
func (g *Graph) ForwardClosure(seed []*pkgmodel.Package) []*pkgmodel.Package {
	in := make(map[string]bool, len(seed))
	queue := make([]string, 0, len(seed))
	for _, p := range seed {
		if !in[p.Name] {
			in[p.Name] = true
			queue = append(queue, p.Name)
		}
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for dep := range g.edges[name] {
			if !in[dep] {
				in[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return g.materialize(in)
}

// ReverseClosure is a fixed-point iteration adding any package with an
// edge into the current set (i.e. any dependent of a member), until stable.
func (g *Graph) ReverseClosure(seed []*pkgmodel.Package) []*pkgmodel.Package {
	in := make(map[string]bool, len(seed))
	for _, p := range seed {
		in[p.Name] = true
	}
	for {
		added := false
		for name, deps := range g.edges {
			if in[name] {
				continue
			}
			for dep := range deps {
				if in[dep] {
					in[name] = true
					added = true
					break
				}
			}
		}
		if !added {
			break
		}
	}
	return g.materialize(in)
}

func (g *Graph) materialize(set map[string]bool) []*pkgmodel.Package {
	out := make([]*pkgmodel.Package, 0, len(set))
	for name := range set {
		out = append(out, g.byName[name])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
