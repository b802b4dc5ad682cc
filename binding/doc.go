// Package binding models one concrete way of satisfying a key — the Binding
// value — together with the raw per-module declarations bindings are built
// from and the Factory that builds them.
//
// Binding is a tagged union: a common record (kind, key, dependency requests,
// scope, declaring element) plus kind-specific payload fields. Bindings are
// constructed through the Factory, validated while still mutable, and frozen
// before being handed out; they are never mutated afterwards.
package binding
