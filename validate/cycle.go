package validate

import (
	"strings"

	"github.com/sghaida/graft/graph"
	"github.com/sghaida/graft/model"
)

// Cycles reports dependency cycles in which every edge is a direct instance
// request. Any deferred edge on the cycle (provider, lazy, producer) makes
// construction schedulable and the cycle legal, so deferred edges are left
// out of the strongly-connected-component computation entirely.
type Cycles struct{}

// Name implements Validator.
func (Cycles) Name() string { return "dependency cycles" }

// Validate implements Validator.
func (Cycles) Validate(g *graph.BindingGraph, r Reporter) {
	adj := map[string][]string{}
	var ids []string
	for _, bn := range g.BindingNodes() {
		id := bn.ID()
		ids = append(ids, id)
		for _, e := range g.OutEdges(id) {
			if e.Kind != graph.DependencyEdge || e.Deferred() {
				continue
			}
			if _, isBinding := mustNode(g, e.To).(*graph.BindingNode); isBinding {
				adj[id] = append(adj[id], e.To)
			}
		}
	}

	for _, scc := range tarjan(ids, adj) {
		if len(scc) > 1 || selfLoop(adj, scc[0]) {
			reportCycle(g, scc, r)
		}
	}
}

func mustNode(g *graph.BindingGraph, id string) graph.Node {
	n, _ := g.Node(id)
	return n
}

func selfLoop(adj map[string][]string, id string) bool {
	for _, to := range adj[id] {
		if to == id {
			return true
		}
	}
	return false
}

func reportCycle(g *graph.BindingGraph, scc []string, r Reporter) {
	var parts []string
	var sites []model.Element
	for _, id := range scc {
		bn := mustNode(g, id).(*graph.BindingNode)
		parts = append(parts, bn.Key().ID())
		if elem, ok := bn.Binding().Element(); ok {
			sites = append(sites, elem)
		}
	}
	parts = append(parts, parts[0])

	d := Diagnostic{
		Severity: Error,
		Message:  "dependency cycle: " + strings.Join(parts, " -> "),
		Sites:    sites,
	}
	if len(sites) > 0 {
		d.Element = sites[0]
	}
	r.Report(d)
}

// tarjan computes strongly connected components over the given adjacency,
// iteratively to keep deep graphs off the call stack. Components are
// returned with members in discovery order.
func tarjan(ids []string, adj map[string][]string) [][]string {
	index := map[string]int{}
	low := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	var sccs [][]string
	next := 0

	type frame struct {
		id string
		ni int
	}

	for _, root := range ids {
		if _, seen := index[root]; seen {
			continue
		}
		frames := []frame{{id: root}}
		index[root], low[root] = next, next
		next++
		stack = append(stack, root)
		onStack[root] = true

		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			if f.ni < len(adj[f.id]) {
				to := adj[f.id][f.ni]
				f.ni++
				if _, seen := index[to]; !seen {
					index[to], low[to] = next, next
					next++
					stack = append(stack, to)
					onStack[to] = true
					frames = append(frames, frame{id: to})
				} else if onStack[to] && index[to] < low[f.id] {
					low[f.id] = index[to]
				}
				continue
			}

			if low[f.id] == index[f.id] {
				var scc []string
				for {
					top := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[top] = false
					scc = append(scc, top)
					if top == f.id {
						break
					}
				}
				// reverse to discovery order
				for i, j := 0, len(scc)-1; i < j; i, j = i+1, j-1 {
					scc[i], scc[j] = scc[j], scc[i]
				}
				sccs = append(sccs, scc)
			}

			done := f.id
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := &frames[len(frames)-1]
				if low[done] < low[parent.id] {
					low[parent.id] = low[done]
				}
			}
		}
	}
	return sccs
}
