package graph

import (
	"github.com/sghaida/graft/binding"
	"github.com/sghaida/graft/model"
)

// Assemble turns a resolved component tree into an immutable BindingGraph.
//
// Every candidate binding becomes its own node, placed at the component that
// owns the resolution; inherited resolutions do not duplicate nodes. After
// all edges are laid down the graph is pruned to what is reachable from the
// root component node, so subcomponents that were never installed and
// bindings nothing requests disappear from the result.
func Assemble(root *ResolvedComponent) (*BindingGraph, error) {
	a := &assembler{
		nodes:   map[string]Node{},
		rbNodes: map[*ResolvedBindings][]Node{},
	}

	a.collectNodes(root)
	if err := a.collectEdges(root); err != nil {
		return nil, err
	}
	return a.prune(root), nil
}

type assembler struct {
	nodes   map[string]Node
	order   []string
	edges   []Edge
	rbNodes map[*ResolvedBindings][]Node
}

func (a *assembler) add(n Node) {
	id := n.ID()
	if _, ok := a.nodes[id]; ok {
		return
	}
	a.nodes[id] = n
	a.order = append(a.order, id)
}

// collectNodes creates the component node for rc, the nodes for every
// resolution rc owns, and recurses into children. Aliased resolutions are
// materialized only at their owner.
func (a *assembler) collectNodes(rc *ResolvedComponent) {
	a.add(&ComponentNode{path: rc.Path, descriptor: rc.Descriptor})

	for _, id := range rc.sortedKeyIDs() {
		rb := rc.Bindings[id]
		if !rb.Owner.Equal(rc.Path) {
			continue
		}
		if rb.Missing {
			n := &MissingNode{path: rb.Owner, key: rb.Key}
			a.add(n)
			a.rbNodes[rb] = append(a.rbNodes[rb], n)
			continue
		}
		for i, b := range rb.Bindings {
			n := &BindingNode{path: rb.Owner, key: rb.Key, binding: b, index: i}
			a.add(n)
			a.rbNodes[rb] = append(a.rbNodes[rb], n)
		}
	}

	for _, child := range rc.Children {
		a.collectNodes(child)
	}
}

func (a *assembler) collectEdges(rc *ResolvedComponent) error {
	compID := (&ComponentNode{path: rc.Path}).ID()

	for _, ep := range rc.Descriptor.EntryPoints {
		if err := a.dependencyEdges(rc, compID, ep.Request, true); err != nil {
			return err
		}
	}

	for _, id := range rc.sortedKeyIDs() {
		rb := rc.Bindings[id]
		if !rb.Owner.Equal(rc.Path) || rb.Missing {
			continue
		}
		for _, n := range a.rbNodes[rb] {
			bn := n.(*BindingNode)
			for _, req := range bn.binding.Requests() {
				if err := a.dependencyEdges(rc, bn.ID(), req, false); err != nil {
					return err
				}
			}
			if bn.binding.Kind() == binding.SubcomponentCreator {
				a.creatorEdge(rc, bn)
			}
		}
	}

	for _, fm := range rc.Descriptor.FactoryMethods {
		for _, child := range rc.Children {
			if child.Descriptor.Type.Equal(fm.Child.Type) {
				a.edges = append(a.edges, Edge{
					Kind:    ChildFactoryMethodEdge,
					From:    compID,
					To:      (&ComponentNode{path: child.Path}).ID(),
					Element: fm.Element,
				})
			}
		}
	}

	for _, child := range rc.Children {
		if err := a.collectEdges(child); err != nil {
			return err
		}
	}
	return nil
}

// dependencyEdges connects from to every candidate node satisfying the
// request, as seen from rc.
func (a *assembler) dependencyEdges(rc *ResolvedComponent, from string, req binding.DependencyRequest, entryPoint bool) error {
	rb, ok := rc.Resolution(req.Key)
	if !ok {
		return model.Internalf("no resolution for %s at %s", req.Key, rc.Path)
	}
	for _, n := range a.rbNodes[rb] {
		a.edges = append(a.edges, Edge{
			Kind:       DependencyEdge,
			From:       from,
			To:         n.ID(),
			Request:    req,
			EntryPoint: entryPoint,
			Element:    req.Element,
		})
	}
	return nil
}

// creatorEdge links a subcomponent-creator binding to the child component it
// builds, matching the child by its creator key.
func (a *assembler) creatorEdge(rc *ResolvedComponent, bn *BindingNode) {
	want := bn.key.WithoutContribution().ID()
	for _, child := range rc.Children {
		if child.Descriptor.CreatorKey().ID() == want {
			elem, _ := bn.binding.Element()
			a.edges = append(a.edges, Edge{
				Kind:    SubcomponentCreatorEdge,
				From:    bn.ID(),
				To:      (&ComponentNode{path: child.Path}).ID(),
				Element: elem,
			})
			return
		}
	}
}

// prune keeps only what the root component node can reach.
func (a *assembler) prune(root *ResolvedComponent) *BindingGraph {
	out := map[string][]int{}
	for i, e := range a.edges {
		out[e.From] = append(out[e.From], i)
	}

	rootID := (&ComponentNode{path: root.Path}).ID()
	keep := map[string]bool{rootID: true}
	frontier := []string{rootID}
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		for _, i := range out[id] {
			to := a.edges[i].To
			if !keep[to] {
				keep[to] = true
				frontier = append(frontier, to)
			}
		}
	}

	g := newBindingGraph(a.nodes[rootID].(*ComponentNode))
	for _, id := range a.order {
		if keep[id] {
			g.addNode(a.nodes[id])
		}
	}
	for _, e := range a.edges {
		if keep[e.From] && keep[e.To] {
			g.addEdge(e)
		}
	}
	return g
}
