package binding

import (
	"github.com/sghaida/graft/keys"
	"github.com/sghaida/graft/model"
)

// Factory builds Binding values from declarations and already-resolved type
// information. It is stateless; all memoization lives in the resolver's
// per-round context.
type Factory struct{}

// contributionKey stamps the contribution identifier onto a declaration's
// collection key so every contribution gets a distinct key.
func contributionKey(key keys.Key, module model.TypeRef, elem model.Element) keys.Key {
	return key.WithContribution(keys.Contribution{Module: module, Method: elem.Name})
}

// Injection builds an injection (or assisted-injection) binding for the
// requested type from an inject constructor. Non-assisted parameters become
// dependency requests; assisted parameters are recorded as factory
// parameters instead. For generic constructors the requested type's
// arguments are bound to the declared type parameters, and the binding
// records a type-erased unresolved sibling so generated code can be shared
// across instantiations.
func (f Factory) Injection(ctor InjectConstructor, requested model.TypeRef) (*Binding, error) {
	bind := map[string]model.TypeRef{}
	if len(ctor.TypeParams) > 0 {
		params := map[string]bool{}
		for _, p := range ctor.TypeParams {
			params[p] = true
		}
		if err := bindTypeParams(ctor.Type, requested, params, bind); err != nil {
			return nil, err
		}
		if len(bind) != len(ctor.TypeParams) {
			return nil, &TypeArgumentMismatchError{Declared: ctor.Type, Requested: requested}
		}
	} else if !ctor.Type.Equal(requested) {
		return nil, &TypeArgumentMismatchError{Declared: ctor.Type, Requested: requested}
	}

	kind := Injection
	var requests []DependencyRequest
	var assisted []AssistedParam
	for _, p := range ctor.Params {
		if p.Assisted {
			kind = AssistedInjection
			assisted = append(assisted, AssistedParam{
				Name: p.Name,
				Type: model.Substitute(p.Request.Key.Type, bind),
			})
			continue
		}
		req := p.Request
		req.Key = req.Key.WithType(model.Substitute(req.Key.Type, bind))
		requests = append(requests, req)
	}

	decl := ctor.Element
	d := draft{
		kind:     kind,
		key:      keys.New(requested),
		requests: requests,
		scope:    ctor.Scope,
		decl:     &decl,
		assisted: assisted,
	}

	if len(ctor.TypeParams) > 0 && len(requested.Args) > 0 {
		erased, err := f.erasedInjection(ctor, kind)
		if err != nil {
			return nil, err
		}
		d.unresolved = erased
	}
	return d.freeze()
}

// erasedInjection builds the unresolved sibling: the binding as declared,
// with type parameters left in place and the key erased.
func (f Factory) erasedInjection(ctor InjectConstructor, kind Kind) (*Binding, error) {
	var requests []DependencyRequest
	var assisted []AssistedParam
	for _, p := range ctor.Params {
		if p.Assisted {
			assisted = append(assisted, AssistedParam{Name: p.Name, Type: p.Request.Key.Type})
			continue
		}
		requests = append(requests, p.Request)
	}
	decl := ctor.Element
	return draft{
		kind:     kind,
		key:      keys.New(ctor.Type.Erased()),
		requests: requests,
		scope:    ctor.Scope,
		decl:     &decl,
		assisted: assisted,
	}.freeze()
}

// bindTypeParams structurally matches the declared type against the
// requested type, recording the subtree bound to each type parameter
// placeholder. A shape mismatch or a parameter bound to two different types
// is a type-argument mismatch.
func bindTypeParams(declared, requested model.TypeRef, params map[string]bool, bind map[string]model.TypeRef) error {
	if declared.Kind == model.KindNamed && declared.Pkg == "" && params[declared.Name] {
		if prev, ok := bind[declared.Name]; ok && !prev.Equal(requested) {
			return &TypeArgumentMismatchError{Declared: declared, Requested: requested}
		}
		bind[declared.Name] = requested
		return nil
	}
	if declared.Kind != requested.Kind || declared.Pkg != requested.Pkg ||
		declared.Name != requested.Name || len(declared.Args) != len(requested.Args) {
		return &TypeArgumentMismatchError{Declared: declared, Requested: requested}
	}
	for i := range declared.Args {
		if err := bindTypeParams(declared.Args[i], requested.Args[i], params, bind); err != nil {
			return err
		}
	}
	return nil
}

// Provision builds a provision (or production) binding from a provides
// declaration. Multibinding contributions get the contribution identifier
// stamped onto their key.
func (f Factory) Provision(decl ProvidesDeclaration) (*Binding, error) {
	kind := Provision
	if decl.Production {
		kind = Production
	}
	key := decl.Key
	if decl.Contribution.IsMultibinding() {
		key = contributionKey(key, decl.Module, decl.Element)
	}
	elem, module := decl.Element, decl.Module
	return draft{
		kind:         kind,
		key:          key,
		requests:     decl.Requests,
		scope:        decl.Scope,
		decl:         &elem,
		module:       &module,
		nullable:     decl.Nullable,
		production:   decl.Production,
		contribution: decl.Contribution,
		mapKey:       decl.MapKey,
	}.freeze()
}

// Delegate builds a binds binding: the single parameter wrapped as the one
// dependency request.
func (f Factory) Delegate(decl DelegateDeclaration) (*Binding, error) {
	key := decl.Key
	if decl.Contribution.IsMultibinding() {
		key = contributionKey(key, decl.Module, decl.Element)
	}
	elem, module := decl.Element, decl.Module
	return draft{
		kind:         Delegate,
		key:          key,
		requests:     []DependencyRequest{decl.Delegate},
		scope:        decl.Scope,
		decl:         &elem,
		module:       &module,
		contribution: decl.Contribution,
		mapKey:       decl.MapKey,
	}.freeze()
}

// MultiboundSet synthesizes the aggregate binding for a set key. The
// dependencies are exactly the contribution bindings; the kind is promoted
// to production when any contribution requires production.
func (f Factory) MultiboundSet(key keys.Key, contributions []*Binding) (*Binding, error) {
	return f.multibound(MultiboundSet, key, contributions)
}

// MultiboundMap synthesizes the aggregate binding for a map key. Duplicate
// map entry keys are left for the duplicate-bindings validator to report.
func (f Factory) MultiboundMap(key keys.Key, contributions []*Binding) (*Binding, error) {
	return f.multibound(MultiboundMap, key, contributions)
}

func (f Factory) multibound(kind Kind, key keys.Key, contributions []*Binding) (*Binding, error) {
	production := false
	requests := make([]DependencyRequest, 0, len(contributions))
	for _, c := range contributions {
		if !c.Key().WithoutContribution().Equal(key) {
			return nil, model.Internalf("contribution %s aggregated under %s", c.Key().ID(), key.ID())
		}
		rk := Instance
		if c.Production() {
			production = true
			rk = ProducedRequest
		}
		requests = append(requests, DependencyRequest{Kind: rk, Key: c.Key()})
	}
	return draft{
		kind:       kind,
		key:        key,
		requests:   requests,
		production: production,
	}.freeze()
}

// OptionalPresent synthesizes a present optional binding whose single
// dependency is the underlying key.
func (f Factory) OptionalPresent(key keys.Key, underlying DependencyRequest) (*Binding, error) {
	if err := checkOptionalKey(key); err != nil {
		return nil, err
	}
	return draft{
		kind:     Optional,
		key:      key,
		requests: []DependencyRequest{underlying},
	}.freeze()
}

// OptionalAbsent synthesizes an absent optional binding with no
// dependencies.
func (f Factory) OptionalAbsent(key keys.Key) (*Binding, error) {
	if err := checkOptionalKey(key); err != nil {
		return nil, err
	}
	return draft{kind: Optional, key: key}.freeze()
}

func checkOptionalKey(key keys.Key) error {
	if fw, _, ok := model.FrameworkOf(key.Type); !ok || fw != model.FrameworkOptional {
		return model.Internalf("optional binding for non-optional key %s", key.ID())
	}
	return nil
}

// Component binds the component type itself, so entry points and bindings
// can depend on their own component.
func (f Factory) Component(typ model.TypeRef) (*Binding, error) {
	return draft{kind: Component, key: keys.New(typ)}.freeze()
}

// ComponentDependency binds an instance handed to the component builder.
func (f Factory) ComponentDependency(typ model.TypeRef, elem model.Element) (*Binding, error) {
	return draft{kind: ComponentDependency, key: keys.New(typ), decl: &elem}.freeze()
}

// ComponentMethod binds one provision or production method of a component
// dependency; its single request is the dependency instance the generated
// code will call through.
func (f Factory) ComponentMethod(dep model.TypeRef, m DependencyMethod) (*Binding, error) {
	kind := ComponentProvision
	if m.Production {
		kind = ComponentProduction
	}
	elem := m.Element
	return draft{
		kind:       kind,
		key:        m.Key,
		requests:   []DependencyRequest{{Kind: Instance, Key: keys.New(dep), Element: m.Element}},
		decl:       &elem,
		production: m.Production,
	}.freeze()
}

// BoundInstance binds an instance supplied through the component creator.
func (f Factory) BoundInstance(decl BoundInstanceDeclaration) (*Binding, error) {
	elem := decl.Element
	return draft{
		kind:     BoundInstance,
		key:      decl.Key,
		decl:     &elem,
		nullable: decl.Nullable,
	}.freeze()
}

// SubcomponentCreator binds a child component's creator in the parent.
func (f Factory) SubcomponentCreator(decl SubcomponentDeclaration) (*Binding, error) {
	elem, module := decl.Element, decl.Module
	return draft{
		kind:   SubcomponentCreator,
		key:    decl.CreatorKey,
		decl:   &elem,
		module: &module,
	}.freeze()
}

// MembersInjection builds the binding that injects the declared fields of an
// existing instance. It is keyed by the canonical members key so explicit
// MembersInjector requests and members-injection entry points share one
// binding.
func (f Factory) MembersInjection(decl MembersDeclaration) (*Binding, error) {
	elem := decl.Element
	return draft{
		kind:     MembersInjection,
		key:      MembersKey(decl.Type),
		requests: decl.Fields,
		decl:     &elem,
	}.freeze()
}
