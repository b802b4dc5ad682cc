package graph

import (
	"fmt"

	"github.com/sghaida/graft/binding"
	"github.com/sghaida/graft/component"
	"github.com/sghaida/graft/keys"
	"github.com/sghaida/graft/model"
)

// Node is a vertex in the binding graph. IDs are stable and unique within
// one assembled graph.
type Node interface {
	ID() string
	ComponentPath() ComponentPath
}

// BindingNode is one candidate binding for a key, placed at the component
// that owns it. Duplicate candidates for the same key become sibling nodes.
type BindingNode struct {
	path    ComponentPath
	key     keys.Key
	binding *binding.Binding
	index   int
}

// ID implements Node.
func (n *BindingNode) ID() string {
	return fmt.Sprintf("binding:%s|%s#%d", n.path, n.key.ID(), n.index)
}

// ComponentPath returns the owning component's path.
func (n *BindingNode) ComponentPath() ComponentPath { return n.path }

// Key returns the key this node resolves.
func (n *BindingNode) Key() keys.Key { return n.key }

// Binding returns the underlying binding.
func (n *BindingNode) Binding() *binding.Binding { return n.binding }

// ComponentNode is one component on the path tree.
type ComponentNode struct {
	path       ComponentPath
	descriptor *component.Descriptor
}

// ID implements Node.
func (n *ComponentNode) ID() string { return "component:" + n.path.String() }

// ComponentPath returns the node's own path.
func (n *ComponentNode) ComponentPath() ComponentPath { return n.path }

// Descriptor returns the component's descriptor.
func (n *ComponentNode) Descriptor() *component.Descriptor { return n.descriptor }

// IsRoot reports whether this is the root component of the graph.
func (n *ComponentNode) IsRoot() bool { return len(n.path) == 1 }

// MissingNode marks a key that could not be resolved anywhere on the
// ancestor chain of the recorded component.
type MissingNode struct {
	path ComponentPath
	key  keys.Key
}

// ID implements Node.
func (n *MissingNode) ID() string { return "missing:" + n.path.String() + "|" + n.key.ID() }

// ComponentPath returns the component where the key failed to resolve.
func (n *MissingNode) ComponentPath() ComponentPath { return n.path }

// Key returns the unresolved key.
func (n *MissingNode) Key() keys.Key { return n.key }

// EdgeKind discriminates the three edge shapes of the graph.
type EdgeKind int

const (
	// DependencyEdge connects a requesting binding (or a component, for entry
	// points) to the binding or missing node satisfying the request.
	DependencyEdge EdgeKind = iota
	// ChildFactoryMethodEdge connects a parent component to a child declared
	// through a factory method on the parent surface.
	ChildFactoryMethodEdge
	// SubcomponentCreatorEdge connects a subcomponent-creator binding to the
	// child component it instantiates.
	SubcomponentCreatorEdge
)

// Edge is one directed edge between two nodes, identified by node ID.
type Edge struct {
	Kind EdgeKind
	From string
	To   string

	// Request is the dependency request carried by DependencyEdge edges.
	Request binding.DependencyRequest

	// EntryPoint marks dependency edges originating at a component surface.
	EntryPoint bool

	// Element is the declaration site the edge originates from.
	Element model.Element
}

// Deferred reports whether the edge's request defers instantiation, which
// makes a cycle through it legal.
func (e Edge) Deferred() bool {
	return e.Kind == DependencyEdge && e.Request.Kind.Deferred()
}
