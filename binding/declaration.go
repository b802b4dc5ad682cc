package binding

import (
	"github.com/sghaida/graft/keys"
	"github.com/sghaida/graft/model"
)

// ContributionType says how a declaration contributes to its key: as the
// unique binding, or as one element of a multibound collection.
type ContributionType int

const (
	// Unique is a plain one-key one-binding contribution.
	Unique ContributionType = iota

	// IntoSet contributes a single element to a set key.
	IntoSet

	// ElementsIntoSet contributes a slice of elements to a set key.
	ElementsIntoSet

	// IntoMap contributes one entry to a map key.
	IntoMap
)

// String returns the directive-style name of the contribution type.
func (c ContributionType) String() string {
	switch c {
	case Unique:
		return "unique"
	case IntoSet:
		return "intoset"
	case ElementsIntoSet:
		return "elementsintoset"
	case IntoMap:
		return "intomap"
	default:
		return "unknown"
	}
}

// IsMultibinding reports whether the contribution feeds a collection.
func (c ContributionType) IsMultibinding() bool { return c != Unique }

// ProvidesDeclaration is one provides (or produces) function collected from a
// module. Key is the key the declaration targets: for multibinding
// contributions this is the collection key, with Provided holding the
// declared element type.
type ProvidesDeclaration struct {
	Key      keys.Key
	Provided model.TypeRef
	Element  model.Element
	Module   model.TypeRef
	Scope    model.Scope

	// Nullable marks a declaration annotated (or inferred) nullable.
	Nullable bool

	// Production marks a produces declaration; its declared future return
	// type has already been unwrapped into Provided by the front end.
	Production bool

	Contribution ContributionType

	// MapKey is the map entry key for IntoMap contributions.
	MapKey string

	// Requests are the declaration's parameters.
	Requests []DependencyRequest
}

// DelegateDeclaration is a binds declaration: the single parameter is
// presented as the binding for Key.
type DelegateDeclaration struct {
	Key      keys.Key
	Delegate DependencyRequest
	Element  model.Element
	Module   model.TypeRef
	Scope    model.Scope

	Contribution ContributionType
	MapKey       string
}

// MultibindsDeclaration declares that a set or map key exists even with zero
// contributions.
type MultibindsDeclaration struct {
	Key     keys.Key
	Element model.Element
	Module  model.TypeRef
}

// SubcomponentDeclaration is a module-level declaration that installs a
// child component, making its creator injectable in the parent.
type SubcomponentDeclaration struct {
	// Subcomponent is the child component type.
	Subcomponent model.TypeRef

	// CreatorKey is the key under which the child's creator is bound.
	CreatorKey keys.Key

	Element model.Element
	Module  model.TypeRef
}

// BoundInstanceDeclaration is an instance bound through a component creator
// method or field.
type BoundInstanceDeclaration struct {
	Key      keys.Key
	Element  model.Element
	Nullable bool
}

// ConstructorParam is one parameter of an inject constructor.
type ConstructorParam struct {
	Name    string
	Request DependencyRequest

	// Assisted parameters are excluded from dependency requests and become
	// factory parameters instead.
	Assisted bool
}

// InjectConstructor describes an inject-annotated constructor for a type.
// Generic constructors carry type parameter names; their param request types
// may reference those names as placeholders.
type InjectConstructor struct {
	// Type is the constructed type as declared, e.g. p.Repo[T].
	Type model.TypeRef

	// TypeParams are the declared type parameter names, in order.
	TypeParams []string

	Element model.Element
	Scope   model.Scope
	Params  []ConstructorParam
}

// MembersDeclaration lists the injectable fields of a type for members
// injection.
type MembersDeclaration struct {
	// Type is the injected type, normally a pointer type.
	Type    model.TypeRef
	Element model.Element
	Fields  []DependencyRequest
}

// DependencyMethod is one provision (or production) method on a component
// dependency.
type DependencyMethod struct {
	Name       string
	Key        keys.Key
	Element    model.Element
	Production bool
}
