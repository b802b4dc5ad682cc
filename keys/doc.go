// Package keys defines the canonical identity of an injectable value: its
// semantic type, an optional qualifier, and an optional multibinding
// contribution identifier. Keys are the map key for every binding lookup in
// the resolver and the graph; they are immutable and structurally comparable.
package keys
