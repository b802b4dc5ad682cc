package keys

import (
	"strings"

	"github.com/sghaida/graft/model"
)

// Contribution disambiguates several contributions to the same multibound
// collection. It identifies the declaring module and method so each
// contribution gets its own Key even when the contributed types collide.
type Contribution struct {
	Module model.TypeRef
	Method string
}

// String renders "module#method".
func (c Contribution) String() string {
	return c.Module.String() + "#" + c.Method
}

// Key is the canonical identity of an injectable value. Two Keys are equal
// iff their type, qualifier and contribution are structurally equal. Keys are
// never mutated after construction.
type Key struct {
	Type         model.TypeRef
	Qualifier    *model.Qualifier
	Contribution *Contribution
}

// New constructs an unqualified key for a type.
func New(t model.TypeRef) Key {
	return Key{Type: t}
}

// Qualified constructs a qualified key for a type.
func Qualified(t model.TypeRef, q *model.Qualifier) Key {
	return Key{Type: t, Qualifier: q}
}

// WithType returns a copy of k with its type replaced.
func (k Key) WithType(t model.TypeRef) Key {
	return Key{Type: t, Qualifier: k.Qualifier, Contribution: k.Contribution}
}

// WithContribution returns a copy of k carrying the contribution identifier.
func (k Key) WithContribution(c Contribution) Key {
	return Key{Type: k.Type, Qualifier: k.Qualifier, Contribution: &c}
}

// WithoutContribution returns a copy of k with the contribution cleared.
func (k Key) WithoutContribution() Key {
	return Key{Type: k.Type, Qualifier: k.Qualifier}
}

// Equal reports structural equality.
func (k Key) Equal(o Key) bool {
	if !k.Type.Equal(o.Type) || !k.Qualifier.Equal(o.Qualifier) {
		return false
	}
	switch {
	case k.Contribution == nil && o.Contribution == nil:
		return true
	case k.Contribution == nil || o.Contribution == nil:
		return false
	default:
		return k.Contribution.Module.Equal(o.Contribution.Module) &&
			k.Contribution.Method == o.Contribution.Method
	}
}

// ID returns the canonical string form, stable and unique per distinct key,
// used as the map key in all resolution and graph tables.
func (k Key) ID() string {
	var sb strings.Builder
	if k.Qualifier != nil {
		sb.WriteString(k.Qualifier.String())
		sb.WriteByte(' ')
	}
	sb.WriteString(k.Type.String())
	if k.Contribution != nil {
		sb.WriteByte('/')
		sb.WriteString(k.Contribution.String())
	}
	return sb.String()
}

// String is the human-readable form, identical to ID.
func (k Key) String() string { return k.ID() }
