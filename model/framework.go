package model

// RuntimePkg is the import path of the runtime package consumed by generated
// code. The generic wrapper types declared there carry injection semantics
// and are recognized structurally by the key and request logic.
const RuntimePkg = "github.com/sghaida/graft/inject"

// FrameworkKind identifies one of the runtime wrapper types.
type FrameworkKind int

const (
	// FrameworkNone marks a type that is not a runtime wrapper.
	FrameworkNone FrameworkKind = iota

	// FrameworkProvider is inject.Provider[T].
	FrameworkProvider

	// FrameworkLazy is inject.Lazy[T].
	FrameworkLazy

	// FrameworkProducer is inject.Producer[T].
	FrameworkProducer

	// FrameworkProduced is inject.Produced[T].
	FrameworkProduced

	// FrameworkOptional is inject.Optional[T].
	FrameworkOptional

	// FrameworkMembersInjector is inject.MembersInjector[T].
	FrameworkMembersInjector
)

var frameworkNames = map[string]FrameworkKind{
	"Provider":        FrameworkProvider,
	"Lazy":            FrameworkLazy,
	"Producer":        FrameworkProducer,
	"Produced":        FrameworkProduced,
	"Optional":        FrameworkOptional,
	"MembersInjector": FrameworkMembersInjector,
}

var frameworkTypeNames = map[FrameworkKind]string{
	FrameworkProvider:        "Provider",
	FrameworkLazy:            "Lazy",
	FrameworkProducer:        "Producer",
	FrameworkProduced:        "Produced",
	FrameworkOptional:        "Optional",
	FrameworkMembersInjector: "MembersInjector",
}

// String returns the runtime type name for the kind, or "none".
func (k FrameworkKind) String() string {
	if n, ok := frameworkTypeNames[k]; ok {
		return n
	}
	return "none"
}

// FrameworkOf inspects one wrapping level of t. If t is a runtime wrapper
// with exactly one type argument it returns the kind and the wrapped type;
// otherwise it returns (FrameworkNone, zero, false).
func FrameworkOf(t TypeRef) (FrameworkKind, TypeRef, bool) {
	if t.Kind != KindNamed || t.Pkg != RuntimePkg || len(t.Args) != 1 {
		return FrameworkNone, TypeRef{}, false
	}
	k, ok := frameworkNames[t.Name]
	if !ok {
		return FrameworkNone, TypeRef{}, false
	}
	return k, t.Args[0], true
}

// WrapFramework wraps t in the given runtime wrapper type.
// Wrapping with FrameworkNone returns t unchanged.
func WrapFramework(kind FrameworkKind, t TypeRef) TypeRef {
	name, ok := frameworkTypeNames[kind]
	if !ok {
		return t
	}
	return Named(RuntimePkg, name, t)
}
