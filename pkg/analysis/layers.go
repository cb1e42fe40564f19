package analysis

import (
	"sort"

	"github.com/kraitsura/techtree/pkg/model"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// DependencyGraph is the sanitized dependency structure of a node set.
// Edges point from a dependency to its dependent.
type DependencyGraph struct {
	IDs  []string            // All node ids, sorted
	Deps map[string][]string // node id -> known dependency ids, input order, deduplicated
}

// BuildDependencyGraph drops self references, duplicates and references to
// ids that are not part of the node set. The first node wins on duplicate ids.
func BuildDependencyGraph(nodes []model.Node) DependencyGraph {
	known := make(map[string]bool, len(nodes))
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.ID == "" || known[n.ID] {
			continue
		}
		known[n.ID] = true
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)

	deps := make(map[string][]string, len(ids))
	done := make(map[string]bool, len(ids))
	for _, n := range nodes {
		if !known[n.ID] || done[n.ID] {
			continue
		}
		done[n.ID] = true
		seen := make(map[string]bool, len(n.DependsOn))
		var kept []string
		for _, dep := range n.DependsOn {
			if dep == n.ID || !known[dep] || seen[dep] {
				continue
			}
			seen[dep] = true
			kept = append(kept, dep)
		}
		deps[n.ID] = kept
	}
	return DependencyGraph{IDs: ids, Deps: deps}
}

// ComputeLayers partitions nodes into ordered columns so that every
// dependency lives in a strictly earlier column than its dependent.
// A node's layer is one more than the deepest of its dependencies; roots
// land in layer 0. Cycles are broken before layering so the result is
// always defined. Each layer is sorted by id.
func ComputeLayers(nodes []model.Node) [][]string {
	g := BuildDependencyGraph(nodes)
	if len(g.IDs) == 0 {
		return nil
	}

	order, ok := topoOrder(g)
	if !ok {
		BreakCycles(&g)
		order, _ = topoOrder(g)
	}

	layerOf := make(map[string]int, len(order))
	maxLayer := 0
	for _, id := range order {
		layer := 0
		for _, dep := range g.Deps[id] {
			if l := layerOf[dep] + 1; l > layer {
				layer = l
			}
		}
		layerOf[id] = layer
		if layer > maxLayer {
			maxLayer = layer
		}
	}

	layers := make([][]string, maxLayer+1)
	for _, id := range g.IDs {
		l := layerOf[id]
		layers[l] = append(layers[l], id)
	}
	return layers
}

// topoOrder returns the ids in dependency order, or false if the graph has a cycle.
func topoOrder(g DependencyGraph) ([]string, bool) {
	index := make(map[string]int64, len(g.IDs))
	dg := simple.NewDirectedGraph()
	for i, id := range g.IDs {
		index[id] = int64(i)
		dg.AddNode(simple.Node(i))
	}
	for _, id := range g.IDs {
		for _, dep := range g.Deps[id] {
			dg.SetEdge(dg.NewEdge(simple.Node(index[dep]), simple.Node(index[id])))
		}
	}

	sorted, err := topo.Sort(dg)
	if err != nil {
		return nil, false
	}
	order := make([]string, len(sorted))
	for i, n := range sorted {
		order[i] = g.IDs[n.ID()]
	}
	return order, true
}

// BreakCycles removes back edges found by a depth-first walk that visits
// nodes in id order, so the same input always loses the same edges.
// Returns the number of edges removed.
func BreakCycles(g *DependencyGraph) int {
	const (
		white = iota
		gray
		black
	)

	children := make(map[string][]string, len(g.IDs))
	for _, id := range g.IDs {
		for _, dep := range g.Deps[id] {
			children[dep] = append(children[dep], id)
		}
	}
	for _, kids := range children {
		sort.Strings(kids)
	}

	color := make(map[string]int, len(g.IDs))
	back := make(map[[2]string]bool)

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		for _, child := range children[id] {
			switch color[child] {
			case white:
				visit(child)
			case gray:
				back[[2]string{id, child}] = true
			}
		}
		color[id] = black
	}

	// Roots first so cycles hanging off a root keep their forward edges
	for _, id := range g.IDs {
		if len(g.Deps[id]) == 0 && color[id] == white {
			visit(id)
		}
	}
	for _, id := range g.IDs {
		if color[id] == white {
			visit(id)
		}
	}

	if len(back) == 0 {
		return 0
	}
	for _, id := range g.IDs {
		kept := g.Deps[id][:0:0]
		for _, dep := range g.Deps[id] {
			if !back[[2]string{dep, id}] {
				kept = append(kept, dep)
			}
		}
		g.Deps[id] = kept
	}
	return len(back)
}
