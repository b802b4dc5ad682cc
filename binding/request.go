package binding

import (
	"github.com/sghaida/graft/keys"
	"github.com/sghaida/graft/model"
)

// RequestKind tags how a dependency is requested — directly, or behind one
// of the runtime indirections that defer construction.
type RequestKind int

const (
	// Instance requests the value itself.
	Instance RequestKind = iota

	// ProviderRequest requests inject.Provider[T].
	ProviderRequest

	// LazyRequest requests inject.Lazy[T].
	LazyRequest

	// ProviderOfLazy requests inject.Provider[inject.Lazy[T]].
	ProviderOfLazy

	// ProducerRequest requests inject.Producer[T].
	ProducerRequest

	// ProducedRequest requests inject.Produced[T].
	ProducedRequest

	// FutureRequest is a production entry point awaiting the value.
	FutureRequest

	// MembersInjectionRequest requests injection into an existing instance.
	MembersInjectionRequest
)

var requestKindNames = [...]string{
	Instance:                "instance",
	ProviderRequest:         "provider",
	LazyRequest:             "lazy",
	ProviderOfLazy:          "provider of lazy",
	ProducerRequest:         "producer",
	ProducedRequest:         "produced",
	FutureRequest:           "future",
	MembersInjectionRequest: "members injection",
}

// String returns the human-readable request kind.
func (k RequestKind) String() string {
	if int(k) < len(requestKindNames) {
		return requestKindNames[k]
	}
	return "unknown"
}

// Deferred reports whether the request defers construction past the edge, so
// that a dependency cycle through it is legal.
func (k RequestKind) Deferred() bool {
	switch k {
	case ProviderRequest, LazyRequest, ProviderOfLazy, ProducerRequest:
		return true
	default:
		return false
	}
}

// DependencyRequest is an edge from a binding (or component entry point) to a
// key it needs, tagged with how it is needed.
type DependencyRequest struct {
	Kind RequestKind
	Key  keys.Key

	// Element is the requesting declaration site, used in diagnostics.
	Element model.Element

	// Nullable reports whether the requesting site tolerates a nullable
	// binding.
	Nullable bool
}

// NewRequest derives a request from a declared type: runtime wrappers peel
// into the matching request kind, everything else is an instance request.
//
//	inject.Provider[Foo]              -> provider request for Foo
//	inject.Provider[inject.Lazy[Foo]] -> provider-of-lazy request for Foo
//	Foo                               -> instance request for Foo
//
// Collection keys keep their framework form here; the resolver normalizes
// them at lookup time so map[K]Provider[V] still resolves the multibound map.
func NewRequest(declared model.TypeRef, qualifier *model.Qualifier, elem model.Element, nullable bool) DependencyRequest {
	kind := Instance
	target := declared

	if fw, inner, ok := model.FrameworkOf(declared); ok {
		switch fw {
		case model.FrameworkProvider:
			kind, target = ProviderRequest, inner
			if lz, ok2 := lazyElem(inner); ok2 {
				kind, target = ProviderOfLazy, lz
			}
		case model.FrameworkLazy:
			kind, target = LazyRequest, inner
		case model.FrameworkProducer:
			kind, target = ProducerRequest, inner
		case model.FrameworkProduced:
			kind, target = ProducedRequest, inner
		case model.FrameworkMembersInjector:
			// MembersInjector[T] is itself the canonical members key.
			kind, target = Instance, declared
		}
	} else if lz, ok := lazyElem(declared); ok {
		kind, target = LazyRequest, lz
	}

	return DependencyRequest{
		Kind:     kind,
		Key:      keys.Qualified(target, qualifier),
		Element:  elem,
		Nullable: nullable,
	}
}

// lazyElem unwraps a lazy spelling to its element type. Lazy values are
// handed out by pointer, so both *inject.Lazy[T] and the bare inject.Lazy[T]
// form resolve to T.
func lazyElem(t model.TypeRef) (model.TypeRef, bool) {
	if t.Kind == model.KindPointer {
		if e, ok := t.Elem(); ok {
			t = e
		}
	}
	if fw, inner, ok := model.FrameworkOf(t); ok && fw == model.FrameworkLazy {
		return inner, true
	}
	return model.TypeRef{}, false
}

// MembersKey is the canonical key under which members injection for typ is
// resolved and memoized: the runtime MembersInjector wrapper of the type.
func MembersKey(typ model.TypeRef) keys.Key {
	return keys.New(model.WrapFramework(model.FrameworkMembersInjector, typ))
}
