package resolver

import (
	"github.com/sghaida/graft/binding"
	"github.com/sghaida/graft/component"
	"github.com/sghaida/graft/keys"
	"github.com/sghaida/graft/model"
)

// contributionRef points at one multibinding contribution declaration and the
// contribution-stamped key it materializes under.
type contributionRef struct {
	key keys.Key
}

type depMethodRef struct {
	dep    model.TypeRef
	method binding.DependencyMethod
}

// declIndex is the per-component lookup over everything the component's
// expanded module set, dependencies and creator declare. All maps are keyed
// by normalized key ID; multibinding contributions are indexed twice, under
// the collection key and under their stamped contribution key.
type declIndex struct {
	provides       map[string][]binding.ProvidesDeclaration
	delegates      map[string][]binding.DelegateDeclaration
	contributions  map[string][]contributionRef
	multibinds     map[string][]binding.MultibindsDeclaration
	subcomponents  map[string][]binding.SubcomponentDeclaration
	boundInstances map[string][]binding.BoundInstanceDeclaration
	depMethods     map[string][]depMethodRef
	dependencies   map[string]component.Dependency
}

func stampKey(key keys.Key, module model.TypeRef, elem model.Element) keys.Key {
	return key.WithContribution(keys.Contribution{Module: module, Method: elem.Name})
}

func buildIndex(d *component.Descriptor) *declIndex {
	x := &declIndex{
		provides:       map[string][]binding.ProvidesDeclaration{},
		delegates:      map[string][]binding.DelegateDeclaration{},
		contributions:  map[string][]contributionRef{},
		multibinds:     map[string][]binding.MultibindsDeclaration{},
		subcomponents:  map[string][]binding.SubcomponentDeclaration{},
		boundInstances: map[string][]binding.BoundInstanceDeclaration{},
		depMethods:     map[string][]depMethodRef{},
		dependencies:   map[string]component.Dependency{},
	}

	for _, m := range d.Modules {
		for _, p := range m.Provides {
			key := keys.Normalized(p.Key)
			if p.Contribution.IsMultibinding() {
				stamped := stampKey(key, p.Module, p.Element)
				x.contributions[key.ID()] = append(x.contributions[key.ID()], contributionRef{key: stamped})
				x.provides[stamped.ID()] = append(x.provides[stamped.ID()], p)
				continue
			}
			x.provides[key.ID()] = append(x.provides[key.ID()], p)
		}
		for _, b := range m.Binds {
			key := keys.Normalized(b.Key)
			if b.Contribution.IsMultibinding() {
				stamped := stampKey(key, b.Module, b.Element)
				x.contributions[key.ID()] = append(x.contributions[key.ID()], contributionRef{key: stamped})
				x.delegates[stamped.ID()] = append(x.delegates[stamped.ID()], b)
				continue
			}
			x.delegates[key.ID()] = append(x.delegates[key.ID()], b)
		}
		for _, mb := range m.Multibinds {
			id := keys.Normalized(mb.Key).ID()
			x.multibinds[id] = append(x.multibinds[id], mb)
		}
		for _, s := range m.Subcomponents {
			id := keys.Normalized(s.CreatorKey).ID()
			x.subcomponents[id] = append(x.subcomponents[id], s)
		}
	}

	for _, dep := range d.Dependencies {
		x.dependencies[keys.New(dep.Type).ID()] = dep
		for _, m := range dep.Methods {
			id := keys.Normalized(m.Key).ID()
			x.depMethods[id] = append(x.depMethods[id], depMethodRef{dep: dep.Type, method: m})
		}
	}

	if d.Creator != nil {
		for _, bi := range d.Creator.BoundInstances {
			id := keys.Normalized(bi.Key).ID()
			x.boundInstances[id] = append(x.boundInstances[id], bi)
		}
	}
	return x
}

// hasExplicit reports whether any non-collection declaration targets the key.
func (x *declIndex) hasExplicit(id string) bool {
	return len(x.provides[id]) > 0 ||
		len(x.delegates[id]) > 0 ||
		len(x.subcomponents[id]) > 0 ||
		len(x.boundInstances[id]) > 0 ||
		len(x.depMethods[id]) > 0
}

// hasCollection reports whether the key has multibinding contributions or an
// explicit multibinds declaration here.
func (x *declIndex) hasCollection(id string) bool {
	return len(x.contributions[id]) > 0 || len(x.multibinds[id]) > 0
}
