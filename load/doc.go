// Package load is the front end: it scans Go packages for //graft:
// directives, converts go/types information into the backend-independent
// model, and produces component descriptors plus the inject-constructor and
// members registries the resolver consumes.
//
// The resolution core never touches go/types; this package is the single
// binding between the host toolchain and the model.
//
// Malformed directives are reported as diagnostics at their declaration and
// the element is skipped; loading is only fatal when packages fail to load
// or type-check.
package load
