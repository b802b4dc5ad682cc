package validate

import (
	"github.com/sghaida/graft/graph"
)

// Validator is one read-only pass over an assembled graph.
type Validator interface {
	Name() string
	Validate(g *graph.BindingGraph, r Reporter)
}

// Default returns the standard validator set, in run order.
func Default() []Validator {
	return []Validator{
		MissingBindings{},
		DuplicateBindings{},
		Cycles{},
		Scoping{},
		Visibility{},
		Nullability{},
	}
}

// Run executes every validator against the graph, collecting all
// diagnostics into the returned collector.
func Run(g *graph.BindingGraph, validators []Validator) *Collector {
	c := &Collector{}
	for _, v := range validators {
		v.Validate(g, c)
	}
	return c
}
