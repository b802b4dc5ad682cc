package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/graft/binding"
	"github.com/sghaida/graft/component"
	"github.com/sghaida/graft/graph"
	"github.com/sghaida/graft/keys"
	"github.com/sghaida/graft/model"
)

const app = "example.com/app"

func typ(name string) model.TypeRef { return model.Named(app, name) }

func elem(name string) model.Element {
	return model.Element{Kind: model.ElementFunc, Pkg: app, Name: name, Exported: true}
}

func instanceReq(t model.TypeRef) binding.DependencyRequest {
	return binding.DependencyRequest{Kind: binding.Instance, Key: keys.New(t)}
}

func provides(module, target string, deps ...string) binding.ProvidesDeclaration {
	d := binding.ProvidesDeclaration{
		Key:     keys.New(typ(target)),
		Element: elem("Provide" + target),
		Module:  typ(module),
	}
	for _, dep := range deps {
		d.Requests = append(d.Requests, instanceReq(typ(dep)))
	}
	return d
}

func intoSet(module, setElem, method string) binding.ProvidesDeclaration {
	return binding.ProvidesDeclaration{
		Key:          keys.New(model.SliceOf(typ(setElem))),
		Provided:     typ(setElem),
		Element:      elem(method),
		Module:       typ(module),
		Contribution: binding.IntoSet,
	}
}

func moduleOf(name string, decls ...binding.ProvidesDeclaration) *component.Module {
	return &component.Module{Type: typ(name), Element: elem(name), Provides: decls}
}

func descriptor(name string, entryPoints []string, modules ...*component.Module) *component.Descriptor {
	d := &component.Descriptor{Type: typ(name), Element: elem(name), Modules: modules}
	for _, ep := range entryPoints {
		d.EntryPoints = append(d.EntryPoints, component.EntryPoint{
			Name:    ep,
			Element: elem(ep),
			Request: instanceReq(typ(ep)),
		})
	}
	return d
}

func resolve(t *testing.T, ctx *Context, d *component.Descriptor) *graph.ResolvedComponent {
	t.Helper()
	rc, err := New(ctx).Resolve(d)
	require.NoError(t, err)
	return rc
}

//
// -----------------------------------------------------------------------------
// Core resolution
// -----------------------------------------------------------------------------

// TestResolve_UniqueBindingIdempotent verifies a key with one unique
// declaration resolves to exactly one binding and that re-resolution returns
// the identical memoized value.
func TestResolve_UniqueBindingIdempotent(t *testing.T) {
	t.Parallel()

	ctx := NewContext(nil)
	d := descriptor("App", []string{"Service"},
		moduleOf("AppModule", provides("AppModule", "Service", "Repo"), provides("AppModule", "Repo")))

	r := New(ctx)
	rc, err := r.Resolve(d)
	require.NoError(t, err)

	first, ok := rc.Resolution(keys.New(typ("Service")))
	require.True(t, ok)
	require.Len(t, first.Bindings, 1)
	assert.Equal(t, binding.Provision, first.Bindings[0].Kind())

	again, ok := rc.Resolution(keys.New(typ("Service")))
	require.True(t, ok)
	assert.Same(t, first, again)
}

// TestResolve_InjectConstructorFallback verifies a key with no declaration
// falls back to its registered inject constructor, with dependencies
// resolved transitively.
func TestResolve_InjectConstructorFallback(t *testing.T) {
	t.Parallel()

	ctx := NewContext(nil)
	ctx.RegisterInject(binding.InjectConstructor{
		Type:    typ("Service"),
		Element: elem("NewService"),
		Params:  []binding.ConstructorParam{{Name: "repo", Request: instanceReq(typ("Repo"))}},
	})
	ctx.RegisterInject(binding.InjectConstructor{Type: typ("Repo"), Element: elem("NewRepo")})

	rc := resolve(t, ctx, descriptor("App", []string{"Service"}))

	svc, ok := rc.Resolution(keys.New(typ("Service")))
	require.True(t, ok)
	require.Len(t, svc.Bindings, 1)
	assert.Equal(t, binding.Injection, svc.Bindings[0].Kind())

	repo, ok := rc.Resolution(keys.New(typ("Repo")))
	require.True(t, ok)
	assert.False(t, repo.Missing)
}

// TestResolve_MissingRecordedNotFatal verifies an unresolvable dependency is
// recorded as a missing marker while resolution still completes.
func TestResolve_MissingRecordedNotFatal(t *testing.T) {
	t.Parallel()

	ctx := NewContext(nil)
	ctx.RegisterInject(binding.InjectConstructor{
		Type:    typ("Foo"),
		Element: elem("NewFoo"),
		Params:  []binding.ConstructorParam{{Name: "bar", Request: instanceReq(typ("Bar"))}},
	})

	rc := resolve(t, ctx, descriptor("App", []string{"Foo"}))

	bar, ok := rc.Resolution(keys.New(typ("Bar")))
	require.True(t, ok)
	assert.True(t, bar.Missing)
	assert.True(t, bar.Owner.Equal(rc.Path))
}

// TestResolve_DuplicatesKeepAllCandidates verifies two unique declarations
// for one key both materialize, so the duplicate validator can show every
// conflicting site.
func TestResolve_DuplicatesKeepAllCandidates(t *testing.T) {
	t.Parallel()

	ctx := NewContext(nil)
	d := descriptor("App", []string{"Service"},
		moduleOf("ModuleA", provides("ModuleA", "Service")),
		moduleOf("ModuleB", provides("ModuleB", "Service")))

	rc := resolve(t, ctx, d)

	svc, ok := rc.Resolution(keys.New(typ("Service")))
	require.True(t, ok)
	assert.Len(t, svc.Bindings, 2)
}

// TestResolve_InstanceCycleCompletes verifies a direct dependency cycle
// terminates through the memoized placeholder instead of recursing, leaving
// both bindings resolved for the cycle validator to judge.
func TestResolve_InstanceCycleCompletes(t *testing.T) {
	t.Parallel()

	ctx := NewContext(nil)
	d := descriptor("App", []string{"A"},
		moduleOf("AppModule",
			provides("AppModule", "A", "B"),
			provides("AppModule", "B", "A")))

	rc := resolve(t, ctx, d)

	a, ok := rc.Resolution(keys.New(typ("A")))
	require.True(t, ok)
	require.Len(t, a.Bindings, 1)
	b, ok := rc.Resolution(keys.New(typ("B")))
	require.True(t, ok)
	require.Len(t, b.Bindings, 1)
}

//
// -----------------------------------------------------------------------------
// Ancestor inheritance
// -----------------------------------------------------------------------------

func withChild(parent *component.Descriptor, child *component.Descriptor) *component.Descriptor {
	child.Subcomponent = true
	parent.FactoryMethods = append(parent.FactoryMethods, component.FactoryMethod{
		Name:    child.Type.Name,
		Element: elem(child.Type.Name),
		Child:   child,
	})
	parent.Children = append(parent.Children, child)
	return parent
}

// TestResolve_ChildInheritsAncestorResolution verifies a key declared in the
// parent is owned by the parent even when only the child requests it.
func TestResolve_ChildInheritsAncestorResolution(t *testing.T) {
	t.Parallel()

	ctx := NewContext(nil)
	child := descriptor("Sub", []string{"Repo"})
	root := withChild(
		descriptor("App", nil, moduleOf("AppModule", provides("AppModule", "Repo"))),
		child)

	rc := resolve(t, ctx, root)
	require.Len(t, rc.Children, 1)

	repo, ok := rc.Children[0].Resolution(keys.New(typ("Repo")))
	require.True(t, ok)
	assert.True(t, repo.Owner.Equal(rc.Path))

	parentRepo, ok := rc.Resolution(keys.New(typ("Repo")))
	require.True(t, ok)
	assert.Same(t, parentRepo, repo)
}

// TestResolve_ScopedConstructorOwnedByScopeComponent verifies a scoped inject
// constructor requested from a child is resolved at the ancestor declaring
// the scope.
func TestResolve_ScopedConstructorOwnedByScopeComponent(t *testing.T) {
	t.Parallel()

	singleton := model.Scope{Name: "Singleton"}
	ctx := NewContext(nil)
	ctx.RegisterInject(binding.InjectConstructor{
		Type:    typ("Cache"),
		Element: elem("NewCache"),
		Scope:   singleton,
	})

	child := descriptor("Sub", []string{"Cache"})
	root := withChild(descriptor("App", nil), child)
	root.Scopes = []model.Scope{singleton}

	rc := resolve(t, ctx, root)

	cache, ok := rc.Children[0].Resolution(keys.New(typ("Cache")))
	require.True(t, ok)
	assert.True(t, cache.Owner.Equal(rc.Path), "scoped binding must live at the scope's component")
}

// TestResolve_UnscopedConstructorOwnedByRequester verifies an unscoped inject
// constructor first requested from a child stays in the child.
func TestResolve_UnscopedConstructorOwnedByRequester(t *testing.T) {
	t.Parallel()

	ctx := NewContext(nil)
	ctx.RegisterInject(binding.InjectConstructor{Type: typ("Widget"), Element: elem("NewWidget")})

	child := descriptor("Sub", []string{"Widget"})
	root := withChild(descriptor("App", nil), child)

	rc := resolve(t, ctx, root)

	w, ok := rc.Children[0].Resolution(keys.New(typ("Widget")))
	require.True(t, ok)
	assert.True(t, w.Owner.Equal(rc.Children[0].Path))
}

//
// -----------------------------------------------------------------------------
// Multibindings
// -----------------------------------------------------------------------------

// TestResolve_SetMultibinding verifies three intoset contributions aggregate
// into one multibound-set binding whose dependencies are exactly the three
// contribution bindings.
func TestResolve_SetMultibinding(t *testing.T) {
	t.Parallel()

	ctx := NewContext(nil)
	setKey := keys.New(model.SliceOf(typ("Handler")))
	d := &component.Descriptor{
		Type:    typ("App"),
		Element: elem("App"),
		EntryPoints: []component.EntryPoint{{
			Name: "Handlers", Element: elem("Handlers"),
			Request: binding.DependencyRequest{Kind: binding.Instance, Key: setKey},
		}},
		Modules: []*component.Module{moduleOf("AppModule",
			intoSet("AppModule", "Handler", "ProvideA"),
			intoSet("AppModule", "Handler", "ProvideB"),
			intoSet("AppModule", "Handler", "ProvideC"))},
	}

	rc := resolve(t, ctx, d)

	set, ok := rc.Resolution(setKey)
	require.True(t, ok)
	require.Len(t, set.Bindings, 1)
	agg := set.Bindings[0]
	assert.Equal(t, binding.MultiboundSet, agg.Kind())
	require.Len(t, agg.Requests(), 3)

	// Every contribution key resolved at the same component.
	for _, req := range agg.Requests() {
		crb, ok := rc.Resolution(req.Key)
		require.True(t, ok)
		require.Len(t, crb.Bindings, 1)
		assert.Equal(t, binding.IntoSet, crb.Bindings[0].Contribution())
	}
}

// TestResolve_ChildAggregatesAncestorContributions verifies a child with its
// own contribution owns the aggregate and folds the parent's contributions
// into it.
func TestResolve_ChildAggregatesAncestorContributions(t *testing.T) {
	t.Parallel()

	ctx := NewContext(nil)
	setKey := keys.New(model.SliceOf(typ("Handler")))

	child := &component.Descriptor{
		Type:    typ("Sub"),
		Element: elem("Sub"),
		EntryPoints: []component.EntryPoint{{
			Name: "Handlers", Element: elem("Handlers"),
			Request: binding.DependencyRequest{Kind: binding.Instance, Key: setKey},
		}},
		Modules: []*component.Module{moduleOf("SubModule", intoSet("SubModule", "Handler", "ProvideSub"))},
	}
	root := withChild(
		descriptor("App", nil, moduleOf("AppModule", intoSet("AppModule", "Handler", "ProvideRoot"))),
		child)

	rc := resolve(t, ctx, root)

	set, ok := rc.Children[0].Resolution(setKey)
	require.True(t, ok)
	assert.True(t, set.Owner.Equal(rc.Children[0].Path))
	require.Len(t, set.Bindings, 1)
	assert.Len(t, set.Bindings[0].Requests(), 2)
}

// TestResolve_MalformedIntoMapSkipped verifies an intomap declaration
// without a map key is skipped and recorded rather than failing resolution.
func TestResolve_MalformedIntoMapSkipped(t *testing.T) {
	t.Parallel()

	ctx := NewContext(nil)
	mapKey := keys.New(model.MapOf(model.Builtin("string"), typ("Handler")))
	bad := binding.ProvidesDeclaration{
		Key:          mapKey,
		Provided:     typ("Handler"),
		Element:      elem("ProvideBad"),
		Module:       typ("AppModule"),
		Contribution: binding.IntoMap,
	}
	d := &component.Descriptor{
		Type:    typ("App"),
		Element: elem("App"),
		EntryPoints: []component.EntryPoint{{
			Name: "Handlers", Element: elem("Handlers"),
			Request: binding.DependencyRequest{Kind: binding.Instance, Key: mapKey},
		}},
		Modules: []*component.Module{moduleOf("AppModule", bad)},
	}

	rc := resolve(t, ctx, d)

	set, ok := rc.Resolution(mapKey)
	require.True(t, ok)
	require.Len(t, set.Bindings, 1)
	assert.Equal(t, binding.MultiboundMap, set.Bindings[0].Kind())
	assert.Empty(t, set.Bindings[0].Requests())

	require.Len(t, ctx.Malformed(), 1)
	assert.Equal(t, "ProvideBad", ctx.Malformed()[0].Element.Name)
}

//
// -----------------------------------------------------------------------------
// Synthesized bindings
// -----------------------------------------------------------------------------

// TestResolve_OptionalPresentAndAbsent verifies optional synthesis follows
// the availability of the underlying key and that absence is not a missing
// binding.
func TestResolve_OptionalPresentAndAbsent(t *testing.T) {
	t.Parallel()

	ctx := NewContext(nil)
	presentKey := keys.New(model.WrapFramework(model.FrameworkOptional, typ("Repo")))
	absentKey := keys.New(model.WrapFramework(model.FrameworkOptional, typ("Ghost")))

	d := &component.Descriptor{
		Type:    typ("App"),
		Element: elem("App"),
		EntryPoints: []component.EntryPoint{
			{Name: "Repo", Element: elem("Repo"), Request: binding.DependencyRequest{Kind: binding.Instance, Key: presentKey}},
			{Name: "Ghost", Element: elem("Ghost"), Request: binding.DependencyRequest{Kind: binding.Instance, Key: absentKey}},
		},
		Modules: []*component.Module{moduleOf("AppModule", provides("AppModule", "Repo"))},
	}

	rc := resolve(t, ctx, d)

	present, ok := rc.Resolution(presentKey)
	require.True(t, ok)
	require.Len(t, present.Bindings, 1)
	assert.Len(t, present.Bindings[0].Requests(), 1)

	absent, ok := rc.Resolution(absentKey)
	require.True(t, ok)
	require.Len(t, absent.Bindings, 1)
	assert.Empty(t, absent.Bindings[0].Requests())
	assert.False(t, absent.Missing)

	// The underlying key of an absent optional must not be recorded missing.
	_, ok = rc.Resolution(keys.New(typ("Ghost")))
	assert.False(t, ok)
}

// TestResolve_MembersInjection verifies the canonical members key resolves
// through the registered members declaration and pulls in field deps.
func TestResolve_MembersInjection(t *testing.T) {
	t.Parallel()

	ctx := NewContext(nil)
	target := model.PointerTo(typ("Server"))
	ctx.RegisterMembers(binding.MembersDeclaration{
		Type:    target,
		Element: elem("Server"),
		Fields:  []binding.DependencyRequest{instanceReq(typ("Repo"))},
	})
	ctx.RegisterInject(binding.InjectConstructor{Type: typ("Repo"), Element: elem("NewRepo")})

	membersKey := binding.MembersKey(target)
	d := &component.Descriptor{
		Type:    typ("App"),
		Element: elem("App"),
		EntryPoints: []component.EntryPoint{{
			Name: "InjectServer", Element: elem("InjectServer"),
			Request: binding.DependencyRequest{Kind: binding.Instance, Key: membersKey},
		}},
	}

	rc := resolve(t, ctx, d)

	mi, ok := rc.Resolution(membersKey)
	require.True(t, ok)
	require.Len(t, mi.Bindings, 1)
	assert.Equal(t, binding.MembersInjection, mi.Bindings[0].Kind())

	_, ok = rc.Resolution(keys.New(typ("Repo")))
	assert.True(t, ok)
}

//
// -----------------------------------------------------------------------------
// Subcomponents and component surface
// -----------------------------------------------------------------------------

// TestResolve_SubcomponentCreatorDescends verifies requesting a module
// installed subcomponent's creator resolves the child's surface.
func TestResolve_SubcomponentCreatorDescends(t *testing.T) {
	t.Parallel()

	ctx := NewContext(nil)
	ctx.RegisterInject(binding.InjectConstructor{Type: typ("Handler"), Element: elem("NewHandler")})

	child := &component.Descriptor{
		Type:         typ("Sub"),
		Element:      elem("Sub"),
		Subcomponent: true,
		EntryPoints: []component.EntryPoint{{
			Name: "Handler", Element: elem("Handler"),
			Request: instanceReq(typ("Handler")),
		}},
	}
	mod := moduleOf("AppModule")
	mod.Subcomponents = []binding.SubcomponentDeclaration{{
		Subcomponent: child.Type,
		CreatorKey:   keys.New(child.Type),
		Element:      elem("AppModule"),
		Module:       typ("AppModule"),
	}}
	root := descriptor("App", []string{"Sub"}, mod)
	root.Children = []*component.Descriptor{child}

	rc := resolve(t, ctx, root)

	creator, ok := rc.Resolution(keys.New(typ("Sub")))
	require.True(t, ok)
	require.Len(t, creator.Bindings, 1)
	assert.Equal(t, binding.SubcomponentCreator, creator.Bindings[0].Kind())

	require.Len(t, rc.Children, 1)
	_, ok = rc.Children[0].Resolution(keys.New(typ("Handler")))
	assert.True(t, ok)
}

// TestResolve_ComponentSelfAndDependency verifies the component binds itself
// and its declared dependencies' provision methods.
func TestResolve_ComponentSelfAndDependency(t *testing.T) {
	t.Parallel()

	ctx := NewContext(nil)
	d := &component.Descriptor{
		Type:    typ("App"),
		Element: elem("App"),
		EntryPoints: []component.EntryPoint{
			{Name: "Self", Element: elem("Self"), Request: instanceReq(typ("App"))},
			{Name: "Clock", Element: elem("Clock"), Request: instanceReq(typ("Clock"))},
		},
		Dependencies: []component.Dependency{{
			Type:    typ("Platform"),
			Element: elem("Platform"),
			Methods: []binding.DependencyMethod{{
				Name: "Clock", Key: keys.New(typ("Clock")), Element: elem("Clock"),
			}},
		}},
	}

	rc := resolve(t, ctx, d)

	self, ok := rc.Resolution(keys.New(typ("App")))
	require.True(t, ok)
	require.Len(t, self.Bindings, 1)
	assert.Equal(t, binding.Component, self.Bindings[0].Kind())

	clock, ok := rc.Resolution(keys.New(typ("Clock")))
	require.True(t, ok)
	require.Len(t, clock.Bindings, 1)
	assert.Equal(t, binding.ComponentProvision, clock.Bindings[0].Kind())

	// The provision method depends on the dependency instance itself.
	dep, ok := rc.Resolution(keys.New(typ("Platform")))
	require.True(t, ok)
	require.Len(t, dep.Bindings, 1)
	assert.Equal(t, binding.ComponentDependency, dep.Bindings[0].Kind())
}
