// Package gen emits Go source for validated binding graphs: one generated
// file per root component containing the component implementation struct,
// memoized scoped providers, entry-point methods and subcomponent
// factories.
//
// Output is deterministic for a fixed graph: providers are numbered in
// sorted key order and the emitted file carries a content hash of the graph
// shape, so regeneration with an unchanged graph is byte-identical.
package gen
