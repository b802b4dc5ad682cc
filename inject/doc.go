// Package inject is the small runtime consumed by generated components. Its
// generic wrapper types are recognized structurally by the generator: a
// constructor parameter of type Provider[T] or Lazy[T] changes how the
// dependency is requested, not what is bound.
package inject
