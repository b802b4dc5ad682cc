package validate

import (
	"github.com/sghaida/graft/graph"
)

// Visibility confirms every binding's declaring element can be referenced
// from the package of the root component, where the generated code lives.
// Unexported declarations used across package boundaries are flagged.
type Visibility struct{}

// Name implements Validator.
func (Visibility) Name() string { return "dependency visibility" }

// Validate implements Validator.
func (Visibility) Validate(g *graph.BindingGraph, r Reporter) {
	rootPkg := g.Root().Descriptor().Element.Pkg

	for _, bn := range g.BindingNodes() {
		elem, ok := bn.Binding().Element()
		if !ok {
			continue
		}
		if elem.VisibleFrom(rootPkg) {
			continue
		}
		r.Report(Diagnostic{
			Severity: Error,
			Message: elem.String() + " is not visible from " + rootPkg +
				" where the generated component lives",
			Element: elem,
		})
	}
}
