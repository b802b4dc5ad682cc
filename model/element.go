package model

import "strings"

// ElementKind classifies a declaration site.
type ElementKind int

const (
	ElementType ElementKind = iota
	ElementFunc
	ElementMethod
	ElementField
	ElementParam
)

// String returns the human-readable name of the kind.
func (k ElementKind) String() string {
	switch k {
	case ElementType:
		return "type"
	case ElementFunc:
		return "func"
	case ElementMethod:
		return "method"
	case ElementField:
		return "field"
	case ElementParam:
		return "param"
	default:
		return "unknown"
	}
}

// Element identifies a declaration site in user source. It is attached to
// bindings and diagnostics so errors can name the exact conflicting or
// offending declarations.
type Element struct {
	Kind ElementKind

	// Pkg is the import path of the declaring package.
	Pkg string

	// Name is the declared name; methods use "Type.Method" form.
	Name string

	// Pos is the "file:line" position, best effort.
	Pos string

	// Exported reports whether the declaration is exported.
	Exported bool
}

// String renders "pkg.Name (pos)" with the position omitted when unknown.
func (e Element) String() string {
	var sb strings.Builder
	if e.Pkg != "" {
		sb.WriteString(e.Pkg)
		sb.WriteByte('.')
	}
	sb.WriteString(e.Name)
	if e.Pos != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Pos)
		sb.WriteByte(')')
	}
	return sb.String()
}

// VisibleFrom reports whether the element can be referenced from generated
// code living in pkg.
func (e Element) VisibleFrom(pkg string) bool {
	return e.Exported || e.Pkg == pkg
}
