// Package graph defines the finished artifact of resolution: an immutable
// directed graph whose nodes are bindings, components and missing-binding
// markers, and whose edges are dependency, child-factory-method and
// subcomponent-creator edges.
//
// The resolver produces a ResolvedComponent tree; Assemble turns it into a
// BindingGraph. Once assembled the graph is read-only and is shared by
// reference across all validators and the emitter.
package graph
