package model

import (
	"sort"
	"strconv"
	"strings"
)

// Qualifier disambiguates several bindings of the same type, mirroring a
// qualifier annotation. Two qualifiers are equal iff their name and all
// values are equal; Values are kept sorted by name so String is canonical.
type Qualifier struct {
	// Name identifies the qualifier, e.g. "named".
	Name string

	// Values are the qualifier's settings, sorted by name.
	Values []QualifierValue
}

// QualifierValue is one name=value pair on a qualifier.
type QualifierValue struct {
	Name  string
	Value string
}

// NewQualifier constructs a qualifier with its values in canonical order.
func NewQualifier(name string, values ...QualifierValue) *Qualifier {
	vs := make([]QualifierValue, len(values))
	copy(vs, values)
	sort.Slice(vs, func(i, j int) bool { return vs[i].Name < vs[j].Name })
	return &Qualifier{Name: name, Values: vs}
}

// NamedQualifier is shorthand for the common name-based qualifier.
func NamedQualifier(value string) *Qualifier {
	return NewQualifier("named", QualifierValue{Name: "value", Value: value})
}

// Equal reports structural equality. Both receivers may be nil.
func (q *Qualifier) Equal(o *Qualifier) bool {
	if q == nil || o == nil {
		return q == o
	}
	if q.Name != o.Name || len(q.Values) != len(o.Values) {
		return false
	}
	for i := range q.Values {
		if q.Values[i] != o.Values[i] {
			return false
		}
	}
	return true
}

// String renders the canonical form, e.g. @named(value="primary").
func (q *Qualifier) String() string {
	if q == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte('@')
	sb.WriteString(q.Name)
	if len(q.Values) > 0 {
		sb.WriteByte('(')
		for i, v := range q.Values {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(v.Name)
			sb.WriteByte('=')
			sb.WriteString(strconv.Quote(v.Value))
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

// Scope is the lifecycle annotation constraining a binding to at most one
// instance per owning component instance. The zero value means unscoped.
type Scope struct {
	Name string
}

// Unscoped is the absent scope.
var Unscoped = Scope{}

// IsUnscoped reports whether s is the absent scope.
func (s Scope) IsUnscoped() bool { return s.Name == "" }

// String returns the scope name, or "unscoped".
func (s Scope) String() string {
	if s.IsUnscoped() {
		return "unscoped"
	}
	return s.Name
}
