package model

import (
	"strings"
)

// TypeKind discriminates the structural shape of a TypeRef.
type TypeKind int

const (
	// KindNamed is a named or builtin type, possibly with type arguments.
	// Builtins (string, int, ...) have an empty package path.
	KindNamed TypeKind = iota

	// KindPointer is *Elem. Args holds exactly the element type.
	KindPointer

	// KindSlice is []Elem. Args holds exactly the element type.
	KindSlice

	// KindMap is map[Key]Elem. Args holds the key type then the element type.
	KindMap
)

// String returns the human-readable name of the kind.
func (k TypeKind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindPointer:
		return "pointer"
	case KindSlice:
		return "slice"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// TypeRef is a structural, backend-independent reference to a Go type.
//
// Equality is structural (see Equal) and the canonical String form is stable,
// so a TypeRef's String may be used as a map key. TypeRefs are values and are
// never mutated after construction.
type TypeRef struct {
	Kind TypeKind

	// Pkg is the full import path of the declaring package.
	// Empty for builtins and for unbound type parameters.
	Pkg string

	// Name is the declared type name. Empty for pointer/slice/map shapes.
	Name string

	// Args holds type arguments for named generics, or the element types for
	// pointer/slice/map shapes (see TypeKind).
	Args []TypeRef
}

// Named constructs a named type reference, optionally parameterized.
func Named(pkg, name string, args ...TypeRef) TypeRef {
	return TypeRef{Kind: KindNamed, Pkg: pkg, Name: name, Args: args}
}

// Builtin constructs a reference to a predeclared type such as "string".
func Builtin(name string) TypeRef {
	return TypeRef{Kind: KindNamed, Name: name}
}

// TypeParam constructs a placeholder for an unbound type parameter.
// It renders as its bare name and is replaced by Substitute.
func TypeParam(name string) TypeRef {
	return TypeRef{Kind: KindNamed, Name: name}
}

// PointerTo constructs *elem.
func PointerTo(elem TypeRef) TypeRef {
	return TypeRef{Kind: KindPointer, Args: []TypeRef{elem}}
}

// SliceOf constructs []elem.
func SliceOf(elem TypeRef) TypeRef {
	return TypeRef{Kind: KindSlice, Args: []TypeRef{elem}}
}

// MapOf constructs map[key]elem.
func MapOf(key, elem TypeRef) TypeRef {
	return TypeRef{Kind: KindMap, Args: []TypeRef{key, elem}}
}

// IsZero reports whether t is the zero TypeRef.
func (t TypeRef) IsZero() bool {
	return t.Kind == KindNamed && t.Pkg == "" && t.Name == "" && len(t.Args) == 0
}

// Elem returns the element type for pointer/slice shapes and the value type
// for maps. It returns (zero, false) for named types.
func (t TypeRef) Elem() (TypeRef, bool) {
	switch t.Kind {
	case KindPointer, KindSlice:
		if len(t.Args) == 1 {
			return t.Args[0], true
		}
	case KindMap:
		if len(t.Args) == 2 {
			return t.Args[1], true
		}
	}
	return TypeRef{}, false
}

// MapKey returns the key type of a map shape.
func (t TypeRef) MapKey() (TypeRef, bool) {
	if t.Kind == KindMap && len(t.Args) == 2 {
		return t.Args[0], true
	}
	return TypeRef{}, false
}

// Erased returns the type with all type arguments removed. Pointer, slice and
// map shapes are returned unchanged since their Args are structural, not
// parametric.
func (t TypeRef) Erased() TypeRef {
	if t.Kind == KindNamed {
		return TypeRef{Kind: KindNamed, Pkg: t.Pkg, Name: t.Name}
	}
	return t
}

// Equal reports structural equality.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.Kind != o.Kind || t.Pkg != o.Pkg || t.Name != o.Name || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// String renders the canonical form, e.g.
//
//	example.com/app.Repo[string]
//	map[string]*example.com/app.Handler
//
// The form is unambiguous and stable, suitable as a map key.
func (t TypeRef) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t TypeRef) write(sb *strings.Builder) {
	switch t.Kind {
	case KindPointer:
		sb.WriteByte('*')
		if len(t.Args) == 1 {
			t.Args[0].write(sb)
		}
	case KindSlice:
		sb.WriteString("[]")
		if len(t.Args) == 1 {
			t.Args[0].write(sb)
		}
	case KindMap:
		sb.WriteString("map[")
		if len(t.Args) == 2 {
			t.Args[0].write(sb)
			sb.WriteByte(']')
			t.Args[1].write(sb)
		} else {
			sb.WriteByte(']')
		}
	default:
		if t.Pkg != "" {
			sb.WriteString(t.Pkg)
			sb.WriteByte('.')
		}
		sb.WriteString(t.Name)
		if len(t.Args) > 0 {
			sb.WriteByte('[')
			for i, a := range t.Args {
				if i > 0 {
					sb.WriteByte(',')
				}
				a.write(sb)
			}
			sb.WriteByte(']')
		}
	}
}

// Substitute replaces unbound type parameters (bare names found in bind) with
// their bound arguments, recursively. Types not present in bind are returned
// unchanged.
func Substitute(t TypeRef, bind map[string]TypeRef) TypeRef {
	if t.Kind == KindNamed && t.Pkg == "" && len(t.Args) == 0 {
		if b, ok := bind[t.Name]; ok {
			return b
		}
		return t
	}
	if len(t.Args) == 0 {
		return t
	}
	args := make([]TypeRef, len(t.Args))
	for i, a := range t.Args {
		args[i] = Substitute(a, bind)
	}
	return TypeRef{Kind: t.Kind, Pkg: t.Pkg, Name: t.Name, Args: args}
}
