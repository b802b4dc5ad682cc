package validate

import (
	"sort"
	"strings"

	"github.com/sghaida/graft/binding"
	"github.com/sghaida/graft/graph"
	"github.com/sghaida/graft/keys"
	"github.com/sghaida/graft/model"
)

// DuplicateBindings reports keys with more than one non-multibinding
// candidate, keys bound both uniquely and into a collection, and multibound
// maps with colliding entry keys. All conflicting sites appear in one
// message.
type DuplicateBindings struct{}

// Name implements Validator.
func (DuplicateBindings) Name() string { return "duplicate bindings" }

// Validate implements Validator.
func (DuplicateBindings) Validate(g *graph.BindingGraph, r Reporter) {
	groups := map[string][]*graph.BindingNode{}
	var order []string
	for _, bn := range g.BindingNodes() {
		if bn.Key().Contribution != nil {
			// Contributions are distinct keys on purpose; the aggregate is
			// judged instead.
			continue
		}
		id := keys.Normalized(bn.Key()).ID()
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], bn)
	}
	sort.Strings(order)

	for _, id := range order {
		nodes := groups[id]
		checkConflicts(id, nodes, r)
		for _, bn := range nodes {
			if bn.Binding().Kind() == binding.MultiboundMap {
				checkMapKeys(g, bn, r)
			}
		}
	}
}

// checkConflicts reports every cluster of candidates visible from one
// component chain. Candidates in unrelated sibling subcomponents do not
// conflict with each other.
func checkConflicts(id string, nodes []*graph.BindingNode, r Reporter) {
	for _, cluster := range chainClusters(nodes) {
		if len(cluster) >= 2 {
			reportConflict(id, cluster, r)
		}
	}
}

// chainClusters groups nodes whose owning components lie on one ancestor
// chain.
func chainClusters(nodes []*graph.BindingNode) [][]*graph.BindingNode {
	related := func(a, b *graph.BindingNode) bool {
		pa, pb := a.ComponentPath(), b.ComponentPath()
		return pa.HasPrefix(pb) || pb.HasPrefix(pa)
	}

	var clusters [][]*graph.BindingNode
next:
	for _, bn := range nodes {
		for i, c := range clusters {
			for _, member := range c {
				if related(bn, member) {
					clusters[i] = append(c, bn)
					continue next
				}
			}
		}
		clusters = append(clusters, []*graph.BindingNode{bn})
	}
	return clusters
}

func reportConflict(id string, nodes []*graph.BindingNode, r Reporter) {
	var sites []model.Element
	aggregate, unique := false, false
	for _, bn := range nodes {
		if bn.Binding().Kind().IsMultibound() {
			aggregate = true
		} else {
			unique = true
		}
		if elem, ok := bn.Binding().Element(); ok {
			sites = append(sites, elem)
		}
	}

	msg := id + " is bound multiple times"
	if aggregate && unique {
		msg = id + " is bound both uniquely and as a multibinding"
	}
	var sb strings.Builder
	sb.WriteString(msg)
	for _, s := range sites {
		sb.WriteString("\n    ")
		sb.WriteString(s.String())
	}

	d := Diagnostic{Severity: Error, Message: sb.String(), Sites: sites}
	if len(sites) > 0 {
		d.Element = sites[0]
	}
	r.Report(d)
}

// checkMapKeys reports multibound-map contributions sharing an entry key.
func checkMapKeys(g *graph.BindingGraph, agg *graph.BindingNode, r Reporter) {
	byEntry := map[string][]model.Element{}
	for _, e := range g.OutEdges(agg.ID()) {
		if e.Kind != graph.DependencyEdge {
			continue
		}
		target, ok := g.Node(e.To)
		if !ok {
			continue
		}
		bn, ok := target.(*graph.BindingNode)
		if !ok {
			continue
		}
		mk := bn.Binding().MapKey()
		if mk == "" {
			continue
		}
		if elem, ok := bn.Binding().Element(); ok {
			byEntry[mk] = append(byEntry[mk], elem)
		}
	}

	entries := make([]string, 0, len(byEntry))
	for mk := range byEntry {
		entries = append(entries, mk)
	}
	sort.Strings(entries)

	for _, mk := range entries {
		sites := byEntry[mk]
		if len(sites) < 2 {
			continue
		}
		var sb strings.Builder
		sb.WriteString(agg.Key().ID())
		sb.WriteString(" has multiple contributions for map key ")
		sb.WriteString(strings.TrimSpace(mk))
		for _, s := range sites {
			sb.WriteString("\n    ")
			sb.WriteString(s.String())
		}
		r.Report(Diagnostic{Severity: Error, Message: sb.String(), Element: sites[0], Sites: sites})
	}
}
