// Package resolver implements the graph-construction algorithm: starting
// from a root component's entry points it transitively resolves every
// requested key to a set of candidate bindings, synthesizes multibound and
// optional bindings, inherits ancestor resolutions, and records missing keys
// explicitly instead of failing.
//
// Resolution never errors on user mistakes. Duplicates, cycles, scope
// mismatches and missing bindings all survive into the assembled graph so
// the validate package can report them together with full context. Only
// internal consistency failures abort resolution.
package resolver
