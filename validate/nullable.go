package validate

import (
	"github.com/sghaida/graft/graph"
)

// Nullability confirms a nullable binding is only injected into requests
// that explicitly tolerate absence.
type Nullability struct{}

// Name implements Validator.
func (Nullability) Name() string { return "nullability" }

// Validate implements Validator.
func (Nullability) Validate(g *graph.BindingGraph, r Reporter) {
	for _, e := range g.Edges() {
		if e.Kind != graph.DependencyEdge || e.Request.Nullable {
			continue
		}
		target, ok := g.Node(e.To)
		if !ok {
			continue
		}
		bn, ok := target.(*graph.BindingNode)
		if !ok || !bn.Binding().Nullable() {
			continue
		}
		d := Diagnostic{
			Severity: Error,
			Message: bn.Key().ID() + " is nullable but is requested at a site" +
				" that does not accept a nullable value",
			Element: e.Element,
		}
		if elem, ok := bn.Binding().Element(); ok {
			d.Sites = append(d.Sites, elem)
		}
		r.Report(d)
	}
}
