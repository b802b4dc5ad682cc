package component

import (
	"github.com/sghaida/graft/binding"
	"github.com/sghaida/graft/keys"
	"github.com/sghaida/graft/model"
)

// Module is the collected declaration set of one module type.
type Module struct {
	Type    model.TypeRef
	Element model.Element

	// Includes are the module types this module pulls in transitively.
	Includes []model.TypeRef

	Provides      []binding.ProvidesDeclaration
	Binds         []binding.DelegateDeclaration
	Multibinds    []binding.MultibindsDeclaration
	Subcomponents []binding.SubcomponentDeclaration
}

// Dependency is one component dependency: an instance supplied to the
// builder whose methods become provision/production bindings.
type Dependency struct {
	Type    model.TypeRef
	Element model.Element
	Methods []binding.DependencyMethod
}

// Creator is the builder/factory shape of a component.
type Creator struct {
	Type           model.TypeRef
	Element        model.Element
	BoundInstances []binding.BoundInstanceDeclaration
}

// EntryPoint is one requested key on the component surface.
type EntryPoint struct {
	Name    string
	Element model.Element
	Request binding.DependencyRequest
}

// FactoryMethod is a component method returning a child subcomponent.
type FactoryMethod struct {
	Name    string
	Element model.Element
	Child   *Descriptor
}

// Descriptor describes one component or subcomponent: its entry points,
// modules (transitively expanded), dependencies, scopes, creator shape and
// child subcomponents.
type Descriptor struct {
	Type    model.TypeRef
	Element model.Element

	// Subcomponent is true for child components installed in a parent.
	Subcomponent bool

	// Production marks a production component (async entry points).
	Production bool

	Scopes      []model.Scope
	EntryPoints []EntryPoint

	// Modules is the transitively expanded, deduplicated module set, in
	// deterministic declaration-then-includes order.
	Modules []*Module

	Dependencies   []Dependency
	Creator        *Creator
	FactoryMethods []FactoryMethod

	// Children are subcomponents reachable from this component, via factory
	// methods or module subcomponent declarations.
	Children []*Descriptor
}

// HasScope reports whether the component declares the scope.
func (d *Descriptor) HasScope(s model.Scope) bool {
	for _, own := range d.Scopes {
		if own == s {
			return true
		}
	}
	return false
}

// CreatorKey is the key under which this component's creator (or, without a
// declared creator, the component itself) is bound in its parent.
func (d *Descriptor) CreatorKey() keys.Key {
	if d.Creator != nil {
		return keys.New(d.Creator.Type)
	}
	return keys.New(d.Type)
}

// Child returns the child descriptor with the given component type.
func (d *Descriptor) Child(t model.TypeRef) (*Descriptor, bool) {
	for _, c := range d.Children {
		if c.Type.Equal(t) {
			return c, true
		}
	}
	return nil, false
}
