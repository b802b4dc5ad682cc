package binding

import (
	"github.com/sghaida/graft/keys"
	"github.com/sghaida/graft/model"
)

// AssistedParam is a caller-supplied factory parameter of an assisted
// injection binding.
type AssistedParam struct {
	Name string
	Type model.TypeRef
}

// Binding is one concrete way of satisfying a key. The common record lives
// in shared fields; kind-specific data lives in payload fields that are only
// set for the matching kinds. Bindings are immutable once built — accessors
// return internal slices which callers must not mutate.
type Binding struct {
	kind     Kind
	key      keys.Key
	requests []DependencyRequest
	scope    model.Scope
	decl     *model.Element
	module   *model.TypeRef
	nullable bool

	// production is true for produces declarations, component production
	// methods, and multibindings promoted because a contribution requires
	// production.
	production bool

	contribution ContributionType
	mapKey       string
	assisted     []AssistedParam

	// unresolved is the type-erased sibling of a generic binding, shared by
	// the emitter across instantiations.
	unresolved *Binding
}

// Kind returns the variant tag.
func (b *Binding) Kind() Kind { return b.kind }

// Key returns the key this binding satisfies.
func (b *Binding) Key() keys.Key { return b.key }

// Requests returns the binding's dependency requests.
func (b *Binding) Requests() []DependencyRequest { return b.requests }

// Scope returns the binding's scope; Unscoped when absent.
func (b *Binding) Scope() model.Scope { return b.scope }

// Element returns the originating declaration element, if any.
func (b *Binding) Element() (model.Element, bool) {
	if b.decl == nil {
		return model.Element{}, false
	}
	return *b.decl, true
}

// Module returns the contributing module type, if any.
func (b *Binding) Module() (model.TypeRef, bool) {
	if b.module == nil {
		return model.TypeRef{}, false
	}
	return *b.module, true
}

// Nullable reports whether the binding may produce an absent value.
func (b *Binding) Nullable() bool { return b.nullable }

// Production reports whether satisfying this binding requires the
// asynchronous production path in generated code.
func (b *Binding) Production() bool { return b.production }

// Contribution returns how the binding contributes to its key.
func (b *Binding) Contribution() ContributionType { return b.contribution }

// MapKey returns the map entry key of an IntoMap contribution.
func (b *Binding) MapKey() string { return b.mapKey }

// AssistedParams returns the factory parameters of an assisted binding.
func (b *Binding) AssistedParams() []AssistedParam { return b.assisted }

// Unresolved returns the type-erased sibling of a generic binding.
func (b *Binding) Unresolved() (*Binding, bool) {
	return b.unresolved, b.unresolved != nil
}

// String renders "<kind> binding for <key>".
func (b *Binding) String() string {
	return b.kind.String() + " binding for " + b.key.ID()
}

// draft is the staged, mutable form a Binding passes through inside the
// factory. It is never exposed; freeze validates cross-field invariants and
// produces the immutable value.
type draft struct {
	kind         Kind
	key          keys.Key
	requests     []DependencyRequest
	scope        model.Scope
	decl         *model.Element
	module       *model.TypeRef
	nullable     bool
	production   bool
	contribution ContributionType
	mapKey       string
	assisted     []AssistedParam
	unresolved   *Binding
}

func (d draft) freeze() (*Binding, error) {
	if d.key.Type.IsZero() {
		return nil, model.Internalf("%s binding frozen without a key", d.kind)
	}
	if len(d.assisted) > 0 && d.kind != AssistedInjection && d.kind != AssistedFactory {
		return nil, model.Internalf("assisted params on %s binding for %s", d.kind, d.key.ID())
	}
	if d.kind == Delegate && len(d.requests) != 1 {
		return nil, model.Internalf("delegate binding for %s must have exactly one request", d.key.ID())
	}
	if d.contribution == IntoMap && d.mapKey == "" {
		elem := model.Element{}
		if d.decl != nil {
			elem = *d.decl
		}
		return nil, &InvalidDeclarationError{Element: elem, Reason: "intomap contribution requires key="}
	}
	return &Binding{
		kind:         d.kind,
		key:          d.key,
		requests:     d.requests,
		scope:        d.scope,
		decl:         d.decl,
		module:       d.module,
		nullable:     d.nullable,
		production:   d.production,
		contribution: d.contribution,
		mapKey:       d.mapKey,
		assisted:     d.assisted,
		unresolved:   d.unresolved,
	}, nil
}
