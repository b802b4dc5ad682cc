package validate

import (
	"github.com/sghaida/graft/graph"
)

// Scoping reports bindings whose scope is not declared by the component that
// ends up owning them. Resolution deliberately never rejects these, since a
// binding may be redeclared at the correct scope elsewhere; the finished
// graph is where the mismatch becomes a fact.
type Scoping struct{}

// Name implements Validator.
func (Scoping) Name() string { return "scoping" }

// Validate implements Validator.
func (Scoping) Validate(g *graph.BindingGraph, r Reporter) {
	descriptors := map[string]*graph.ComponentNode{}
	for _, cn := range g.ComponentNodes() {
		descriptors[cn.ComponentPath().String()] = cn
	}

	for _, bn := range g.BindingNodes() {
		scope := bn.Binding().Scope()
		if scope.IsUnscoped() {
			continue
		}
		owner, ok := descriptors[bn.ComponentPath().String()]
		if !ok || owner.Descriptor().HasScope(scope) {
			continue
		}
		d := Diagnostic{
			Severity: Error,
			Message: bn.Key().ID() + " is scoped " + scope.String() +
				" but " + owner.Descriptor().Type.String() + " does not declare that scope",
		}
		if elem, ok := bn.Binding().Element(); ok {
			d.Element = elem
		}
		r.Report(d)
	}
}
