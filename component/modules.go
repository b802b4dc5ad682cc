package component

import (
	"github.com/sghaida/graft/model"
)

// UnknownModuleError is returned when a component or include names a module
// type that was never declared.
type UnknownModuleError struct {
	Module model.TypeRef
	Site   model.Element
}

// Error implements the error interface.
func (e *UnknownModuleError) Error() string {
	return "unknown module " + e.Module.String() + " referenced at " + e.Site.String()
}

// ModuleIndex looks up collected modules by type.
type ModuleIndex struct {
	byID map[string]*Module
}

// NewModuleIndex builds an index over the given modules.
func NewModuleIndex(mods ...*Module) *ModuleIndex {
	x := &ModuleIndex{byID: make(map[string]*Module, len(mods))}
	for _, m := range mods {
		x.Add(m)
	}
	return x
}

// Add registers a module, replacing any previous module of the same type.
func (x *ModuleIndex) Add(m *Module) {
	x.byID[m.Type.String()] = m
}

// Lookup returns the module declared for the type.
func (x *ModuleIndex) Lookup(t model.TypeRef) (*Module, bool) {
	m, ok := x.byID[t.String()]
	return m, ok
}

// ExpandModules resolves the declared module types to their transitive
// closure over includes. Expansion is depth-first in declaration order,
// deduplicated, and cycle-safe: a module including itself (directly or
// through a chain) is visited once and does not recurse.
func ExpandModules(declared []model.TypeRef, site model.Element, idx *ModuleIndex) ([]*Module, error) {
	var out []*Module
	seen := map[string]bool{}

	var walk func(t model.TypeRef, at model.Element) error
	walk = func(t model.TypeRef, at model.Element) error {
		id := t.String()
		if seen[id] {
			return nil
		}
		seen[id] = true

		m, ok := idx.Lookup(t)
		if !ok {
			return &UnknownModuleError{Module: t, Site: at}
		}
		out = append(out, m)
		for _, inc := range m.Includes {
			if err := walk(inc, m.Element); err != nil {
				return err
			}
		}
		return nil
	}

	for _, t := range declared {
		if err := walk(t, site); err != nil {
			return nil, err
		}
	}
	return out, nil
}
