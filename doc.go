// Package graft is a compile-time dependency injection code generator for Go.
//
// graft reads Go packages containing //graft: directive comments — components,
// modules, provides/binds functions and inject constructors — builds a binding
// graph per root component, validates it, and emits factory code implementing
// the graph.
//
// The repository is organized as a pipeline:
//
//   - load: go/packages front end that turns directives into descriptors
//   - model, keys, binding, component: the data model (types, keys, bindings)
//   - resolver: the graph-construction algorithm
//   - graph: the assembled, immutable binding graph
//   - validate: read-only diagnostic passes over the finished graph
//   - gen: the factory-code emitter
//   - inject: the small runtime package imported by generated code
//   - cmd/graft: the command line tool (generate / check)
//
// Start with cmd/graft and the examples directory for end-to-end usage.
package graft
