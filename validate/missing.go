package validate

import (
	"strings"

	"github.com/sghaida/graft/graph"
)

// MissingBindings reports every unresolved key, naming the dependency chain
// from an entry point so the user sees how the missing key is reached.
type MissingBindings struct{}

// Name implements Validator.
func (MissingBindings) Name() string { return "missing bindings" }

// Validate implements Validator.
func (MissingBindings) Validate(g *graph.BindingGraph, r Reporter) {
	for _, m := range g.MissingNodes() {
		var sb strings.Builder
		sb.WriteString(m.Key().ID())
		sb.WriteString(" cannot be provided without a binding")

		d := Diagnostic{Severity: Error}
		if trace := g.TraceFromEntryPoint(m.ID()); len(trace) > 0 {
			sb.WriteString("\n  requested via:")
			for _, e := range trace {
				sb.WriteString("\n    ")
				sb.WriteString(e.Request.Key.ID())
				if e.Element.Name != "" {
					sb.WriteString(" at ")
					sb.WriteString(e.Element.String())
				}
			}
			d.Element = trace[len(trace)-1].Element
		}
		d.Message = sb.String()
		r.Report(d)
	}
}
