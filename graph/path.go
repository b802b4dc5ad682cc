package graph

import (
	"strings"

	"github.com/sghaida/graft/model"
)

// ComponentPath is the ordered list of nested component types from the root
// component to the current one. Paths are values; Child copies.
type ComponentPath []model.TypeRef

// RootPath starts a path at the root component type.
func RootPath(root model.TypeRef) ComponentPath {
	return ComponentPath{root}
}

// Child returns the path extended by one nested component.
func (p ComponentPath) Child(t model.TypeRef) ComponentPath {
	out := make(ComponentPath, len(p)+1)
	copy(out, p)
	out[len(p)] = t
	return out
}

// Parent returns the path with the last component removed.
func (p ComponentPath) Parent() (ComponentPath, bool) {
	if len(p) <= 1 {
		return nil, false
	}
	return p[:len(p)-1], true
}

// Current returns the last component type on the path.
func (p ComponentPath) Current() model.TypeRef {
	if len(p) == 0 {
		return model.TypeRef{}
	}
	return p[len(p)-1]
}

// Equal reports element-wise equality.
func (p ComponentPath) Equal(o ComponentPath) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if !p[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a leading sub-path of p.
func (p ComponentPath) HasPrefix(prefix ComponentPath) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if !p[i].Equal(prefix[i]) {
			return false
		}
	}
	return true
}

// String renders the chain root -> ... -> current.
func (p ComponentPath) String() string {
	parts := make([]string, len(p))
	for i, t := range p {
		parts[i] = t.String()
	}
	return strings.Join(parts, " -> ")
}
