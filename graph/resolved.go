package graph

import (
	"sort"

	"github.com/sghaida/graft/binding"
	"github.com/sghaida/graft/component"
	"github.com/sghaida/graft/keys"
)

// ResolvedBindings is the outcome of resolving one key at one component: the
// set of candidate bindings (more than one means a duplicate conflict, which
// validation reports later) or, with no candidates at all, a missing marker.
//
// A child component that inherits an ancestor's resolution shares the same
// *ResolvedBindings value, so ownership is carried by the value itself.
type ResolvedBindings struct {
	Key   keys.Key
	Owner ComponentPath

	Bindings []*binding.Binding

	// Missing is set when no declaration, inject constructor or synthesis
	// produced a candidate anywhere on the ancestor chain.
	Missing bool
}

// ResolvedComponent is one component in the resolved tree, produced by the
// resolver and consumed by Assemble.
type ResolvedComponent struct {
	Descriptor *component.Descriptor
	Path       ComponentPath
	Parent     *ResolvedComponent

	// Bindings maps normalized key IDs to their resolution outcome. Entries
	// inherited from an ancestor alias the ancestor's value.
	Bindings map[string]*ResolvedBindings

	Children []*ResolvedComponent
}

// NewResolvedComponent initializes a resolved component under the given
// parent, deriving its path and linking it into the parent's children.
func NewResolvedComponent(d *component.Descriptor, parent *ResolvedComponent) *ResolvedComponent {
	rc := &ResolvedComponent{
		Descriptor: d,
		Parent:     parent,
		Bindings:   make(map[string]*ResolvedBindings),
	}
	if parent == nil {
		rc.Path = RootPath(d.Type)
	} else {
		rc.Path = parent.Path.Child(d.Type)
		parent.Children = append(parent.Children, rc)
	}
	return rc
}

// Resolution returns the outcome recorded for the key, if any.
func (rc *ResolvedComponent) Resolution(k keys.Key) (*ResolvedBindings, bool) {
	rb, ok := rc.Bindings[keys.Normalized(k).ID()]
	return rb, ok
}

// sortedKeyIDs returns the component's resolved key IDs in sorted order, for
// deterministic iteration.
func (rc *ResolvedComponent) sortedKeyIDs() []string {
	ids := make([]string, 0, len(rc.Bindings))
	for id := range rc.Bindings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
