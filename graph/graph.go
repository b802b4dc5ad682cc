package graph

import (
	"github.com/sghaida/graft/keys"
)

// BindingGraph is the immutable, fully-resolved graph for one root
// component. All accessors are read-only; validators and the emitter share
// one graph by reference.
type BindingGraph struct {
	root  *ComponentNode
	nodes map[string]Node
	order []string

	edges []Edge
	out   map[string][]int
	in    map[string][]int

	byKey      map[string][]*BindingNode
	missing    []*MissingNode
	components []*ComponentNode
}

// Root returns the root component node.
func (g *BindingGraph) Root() *ComponentNode { return g.root }

// Node returns the node with the given ID.
func (g *BindingGraph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node in deterministic order.
func (g *BindingGraph) Nodes() []Node {
	out := make([]Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// BindingNodes returns every binding node in deterministic order.
func (g *BindingGraph) BindingNodes() []*BindingNode {
	var out []*BindingNode
	for _, id := range g.order {
		if bn, ok := g.nodes[id].(*BindingNode); ok {
			out = append(out, bn)
		}
	}
	return out
}

// ComponentNodes returns every component node, root first, in tree order.
func (g *BindingGraph) ComponentNodes() []*ComponentNode { return g.components }

// MissingNodes returns the unresolved-key markers in deterministic order.
func (g *BindingGraph) MissingNodes() []*MissingNode { return g.missing }

// Edges returns all edges in deterministic order.
func (g *BindingGraph) Edges() []Edge { return g.edges }

// OutEdges returns the edges leaving the node.
func (g *BindingGraph) OutEdges(id string) []Edge {
	return g.pick(g.out[id])
}

// InEdges returns the edges arriving at the node.
func (g *BindingGraph) InEdges(id string) []Edge {
	return g.pick(g.in[id])
}

func (g *BindingGraph) pick(idx []int) []Edge {
	out := make([]Edge, len(idx))
	for i, j := range idx {
		out[i] = g.edges[j]
	}
	return out
}

// BindingsFor returns every binding node resolving the key, across all
// owning components. Keys are compared after normalization.
func (g *BindingGraph) BindingsFor(k keys.Key) []*BindingNode {
	return g.byKey[keys.Normalized(k).ID()]
}

// EntryPointEdges returns the dependency edges that originate at a component
// surface.
func (g *BindingGraph) EntryPointEdges() []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.EntryPoint {
			out = append(out, e)
		}
	}
	return out
}

// TraceFromEntryPoint returns a shortest dependency chain from some entry
// point to the target node, as forward-ordered edges. It returns nil when the
// target is not reachable from any entry point.
func (g *BindingGraph) TraceFromEntryPoint(target string) []Edge {
	// Breadth-first over in-edges, stopping at the first entry-point edge.
	type hop struct {
		edge Edge
		next int
	}
	hops := []hop{}
	seen := map[string]bool{target: true}
	frontier := []struct {
		id   string
		from int
	}{{target, -1}}

	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		for _, e := range g.InEdges(cur.id) {
			if e.Kind != DependencyEdge {
				continue
			}
			hops = append(hops, hop{edge: e, next: cur.from})
			at := len(hops) - 1
			if e.EntryPoint {
				var chain []Edge
				for i := at; i >= 0; i = hops[i].next {
					chain = append(chain, hops[i].edge)
				}
				return chain
			}
			if !seen[e.From] {
				seen[e.From] = true
				frontier = append(frontier, struct {
					id   string
					from int
				}{e.From, at})
			}
		}
	}
	return nil
}

// Subgraph derives the graph rooted at the component with the given path:
// the nodes reachable from that component node, including ancestor-owned
// bindings it depends on. The derived graph shares node values with g.
func (g *BindingGraph) Subgraph(path ComponentPath) (*BindingGraph, bool) {
	rootID := (&ComponentNode{path: path}).ID()
	root, ok := g.nodes[rootID]
	if !ok {
		return nil, false
	}

	keep := map[string]bool{}
	frontier := []string{rootID}
	keep[rootID] = true
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		for _, e := range g.OutEdges(id) {
			if !keep[e.To] {
				keep[e.To] = true
				frontier = append(frontier, e.To)
			}
		}
	}

	sub := newBindingGraph(root.(*ComponentNode))
	for _, id := range g.order {
		if keep[id] {
			sub.addNode(g.nodes[id])
		}
	}
	for _, e := range g.edges {
		if keep[e.From] && keep[e.To] {
			sub.addEdge(e)
		}
	}
	return sub, true
}

func newBindingGraph(root *ComponentNode) *BindingGraph {
	return &BindingGraph{
		root:  root,
		nodes: map[string]Node{},
		out:   map[string][]int{},
		in:    map[string][]int{},
		byKey: map[string][]*BindingNode{},
	}
}

func (g *BindingGraph) addNode(n Node) {
	id := n.ID()
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = n
	g.order = append(g.order, id)
	switch t := n.(type) {
	case *BindingNode:
		nk := keys.Normalized(t.key).ID()
		g.byKey[nk] = append(g.byKey[nk], t)
	case *MissingNode:
		g.missing = append(g.missing, t)
	case *ComponentNode:
		g.components = append(g.components, t)
	}
}

func (g *BindingGraph) addEdge(e Edge) {
	g.edges = append(g.edges, e)
	i := len(g.edges) - 1
	g.out[e.From] = append(g.out[e.From], i)
	g.in[e.To] = append(g.in[e.To], i)
}
