package keys

import "github.com/sghaida/graft/model"

// The conversions here are pure: given a key not of the expected shape they
// return ok=false rather than erroring. Callers decide whether absence of a
// conversion is significant.

func mapValueWrapper(fw model.FrameworkKind) bool {
	switch fw {
	case model.FrameworkProvider, model.FrameworkProducer, model.FrameworkProduced:
		return true
	default:
		return false
	}
}

// WrappedMapValue converts a plain map key map[K]V into the framework form
// map[K]W[V] used internally for multibound maps. The value type must not
// already be framework-wrapped.
func WrappedMapValue(k Key, fw model.FrameworkKind) (Key, bool) {
	if !mapValueWrapper(fw) {
		return Key{}, false
	}
	mk, ok := k.Type.MapKey()
	if !ok {
		return Key{}, false
	}
	v, _ := k.Type.Elem()
	if _, _, wrapped := model.FrameworkOf(v); wrapped {
		return Key{}, false
	}
	return k.WithType(model.MapOf(mk, model.WrapFramework(fw, v))), true
}

// UnwrappedMapValue converts a framework map key map[K]W[V] back to the
// underlying map[K]V form. It also reports which wrapper was removed.
func UnwrappedMapValue(k Key) (Key, model.FrameworkKind, bool) {
	mk, ok := k.Type.MapKey()
	if !ok {
		return Key{}, model.FrameworkNone, false
	}
	v, _ := k.Type.Elem()
	fw, inner, wrapped := model.FrameworkOf(v)
	if !wrapped || !mapValueWrapper(fw) {
		return Key{}, model.FrameworkNone, false
	}
	return k.WithType(model.MapOf(mk, inner)), fw, true
}

// WrappedSetProduced converts a set key []T to []inject.Produced[T], the form
// used for produced set contributions.
func WrappedSetProduced(k Key) (Key, bool) {
	if k.Type.Kind != model.KindSlice {
		return Key{}, false
	}
	elem, _ := k.Type.Elem()
	if _, _, wrapped := model.FrameworkOf(elem); wrapped {
		return Key{}, false
	}
	return k.WithType(model.SliceOf(model.WrapFramework(model.FrameworkProduced, elem))), true
}

// UnwrappedSetProduced converts []inject.Produced[T] back to []T.
func UnwrappedSetProduced(k Key) (Key, bool) {
	if k.Type.Kind != model.KindSlice {
		return Key{}, false
	}
	elem, _ := k.Type.Elem()
	fw, inner, wrapped := model.FrameworkOf(elem)
	if !wrapped || fw != model.FrameworkProduced {
		return Key{}, false
	}
	return k.WithType(model.SliceOf(inner)), true
}

// Normalized maps any framework-wrapped collection key to its canonical
// unwrapped form, so requests for map[K]Provider[V] and map[K]V resolve to
// the same multibound binding. Non-collection keys pass through unchanged.
func Normalized(k Key) Key {
	if n, _, ok := UnwrappedMapValue(k); ok {
		return n
	}
	if n, ok := UnwrappedSetProduced(k); ok {
		return n
	}
	return k
}
