// Package component describes annotated components and modules: entry
// points, creator shape, component dependencies, and the transitively
// expanded module set. Descriptors are built once per annotated type by the
// front end and are immutable afterwards.
package component
