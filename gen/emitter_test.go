package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/graft/binding"
	"github.com/sghaida/graft/component"
	"github.com/sghaida/graft/graph"
	"github.com/sghaida/graft/keys"
	"github.com/sghaida/graft/model"
	"github.com/sghaida/graft/resolver"
)

const app = "example.com/app"

func typ(name string) model.TypeRef { return model.Named(app, name) }

func elem(name string) model.Element {
	return model.Element{Kind: model.ElementFunc, Pkg: app, Name: name, Exported: true}
}

func req(kind binding.RequestKind, target string) binding.DependencyRequest {
	return binding.DependencyRequest{Kind: kind, Key: keys.New(typ(target))}
}

func provides(module, target string, deps ...binding.DependencyRequest) binding.ProvidesDeclaration {
	return binding.ProvidesDeclaration{
		Key:      keys.New(typ(target)),
		Element:  elem("Provide" + target),
		Module:   typ(module),
		Requests: deps,
	}
}

func moduleOf(name string, decls ...binding.ProvidesDeclaration) *component.Module {
	return &component.Module{Type: typ(name), Element: elem(name), Provides: decls}
}

func assemble(t *testing.T, d *component.Descriptor) *graph.BindingGraph {
	t.Helper()
	rc, err := resolver.New(resolver.NewContext(nil)).Resolve(d)
	require.NoError(t, err)
	g, err := graph.Assemble(rc)
	require.NoError(t, err)
	return g
}

func emit(t *testing.T, d *component.Descriptor) string {
	t.Helper()
	_, src, err := New(nil).Emit(assemble(t, d))
	require.NoError(t, err)
	return string(src)
}

//
// -----------------------------------------------------------------------------
// Basic emission
// -----------------------------------------------------------------------------

// TestEmit_SimpleComponent verifies the generated file shape for a root
// component with one provision chain: package clause, impl struct,
// constructor, entry point and provider methods.
func TestEmit_SimpleComponent(t *testing.T) {
	t.Parallel()

	d := &component.Descriptor{
		Type:    typ("App"),
		Element: elem("App"),
		EntryPoints: []component.EntryPoint{{
			Name: "Service", Element: elem("Service"), Request: req(binding.Instance, "Service"),
		}},
		Modules: []*component.Module{moduleOf("AppModule",
			provides("AppModule", "Service", req(binding.Instance, "Repo")),
			provides("AppModule", "Repo"))},
	}

	src := emit(t, d)
	assert.Contains(t, src, "// Code generated by graft; DO NOT EDIT.")
	assert.Contains(t, src, "// Graph-SHA256: ")
	assert.Contains(t, src, "package app")
	assert.Contains(t, src, "type appImpl struct")
	assert.Contains(t, src, "appModule AppModule")
	assert.Contains(t, src, "func NewApp() App {")
	assert.Contains(t, src, "func (c *appImpl) Service() Service {")
	assert.Contains(t, src, "c.appModule.ProvideService(")
	assert.Contains(t, src, "c.appModule.ProvideRepo()")
}

// TestEmit_Deterministic verifies two emissions of the same graph are
// byte-identical.
func TestEmit_Deterministic(t *testing.T) {
	t.Parallel()

	d := &component.Descriptor{
		Type:    typ("App"),
		Element: elem("App"),
		EntryPoints: []component.EntryPoint{{
			Name: "A", Element: elem("A"), Request: req(binding.Instance, "A"),
		}},
		Modules: []*component.Module{moduleOf("AppModule",
			provides("AppModule", "A", req(binding.Instance, "B"), req(binding.Instance, "C")),
			provides("AppModule", "B"),
			provides("AppModule", "C"))},
	}

	g := assemble(t, d)
	name1, src1, err := New(nil).Emit(g)
	require.NoError(t, err)
	name2, src2, err := New(nil).Emit(g)
	require.NoError(t, err)

	assert.Equal(t, name1, name2)
	assert.Equal(t, src1, src2)
	assert.Equal(t, "app_graft.gen.go", name1)
}

//
// -----------------------------------------------------------------------------
// Scoping and request kinds
// -----------------------------------------------------------------------------

// TestEmit_ScopedProviderMemoized verifies a scoped binding gets a sync.Once
// guarded provider with a cached value field.
func TestEmit_ScopedProviderMemoized(t *testing.T) {
	t.Parallel()

	scoped := provides("AppModule", "Cache")
	scoped.Scope = model.Scope{Name: "Singleton"}

	d := &component.Descriptor{
		Type:    typ("App"),
		Element: elem("App"),
		Scopes:  []model.Scope{{Name: "Singleton"}},
		EntryPoints: []component.EntryPoint{{
			Name: "Cache", Element: elem("Cache"), Request: req(binding.Instance, "Cache"),
		}},
		Modules: []*component.Module{moduleOf("AppModule", scoped)},
	}

	src := emit(t, d)
	assert.Contains(t, src, "once0")
	assert.Contains(t, src, "sync.Once")
	assert.Contains(t, src, "c.once0.Do(func() {")
	assert.Contains(t, src, "c.val0 = c.appModule.ProvideCache()")
	assert.Contains(t, src, "return c.val0")
}

// TestEmit_ProviderAndLazyWrapping verifies deferred requests are wrapped in
// the runtime types at the call site.
func TestEmit_ProviderAndLazyWrapping(t *testing.T) {
	t.Parallel()

	d := &component.Descriptor{
		Type:    typ("App"),
		Element: elem("App"),
		EntryPoints: []component.EntryPoint{{
			Name: "Service", Element: elem("Service"), Request: req(binding.Instance, "Service"),
		}},
		Modules: []*component.Module{moduleOf("AppModule",
			provides("AppModule", "Service",
				req(binding.ProviderRequest, "Repo"),
				req(binding.LazyRequest, "Clock")),
			provides("AppModule", "Repo"),
			provides("AppModule", "Clock"))},
	}

	src := emit(t, d)
	assert.Contains(t, src, `"github.com/sghaida/graft/inject"`)
	assert.Contains(t, src, "inject.Provider[Repo](func() Repo {")
	assert.Contains(t, src, "inject.MakeLazy(func() Clock {")
}

//
// -----------------------------------------------------------------------------
// Subcomponents and inheritance
// -----------------------------------------------------------------------------

// TestEmit_SubcomponentFactoryAndParentChain verifies the child impl holds a
// parent pointer, the factory method constructs it, and inherited bindings
// are reached through the parent.
func TestEmit_SubcomponentFactoryAndParentChain(t *testing.T) {
	t.Parallel()

	child := &component.Descriptor{
		Type:         typ("Sub"),
		Element:      elem("Sub"),
		Subcomponent: true,
		EntryPoints: []component.EntryPoint{{
			Name: "Handler", Element: elem("Handler"), Request: req(binding.Instance, "Handler"),
		}},
		Modules: []*component.Module{moduleOf("SubModule",
			provides("SubModule", "Handler", req(binding.Instance, "Repo")))},
	}
	root := &component.Descriptor{
		Type:    typ("App"),
		Element: elem("App"),
		Modules: []*component.Module{moduleOf("AppModule", provides("AppModule", "Repo"))},
		EntryPoints: []component.EntryPoint{{
			Name: "Repo", Element: elem("Repo"), Request: req(binding.Instance, "Repo"),
		}},
		FactoryMethods: []component.FactoryMethod{{Name: "Sub", Element: elem("Sub"), Child: child}},
		Children:       []*component.Descriptor{child},
	}

	src := emit(t, root)
	assert.Contains(t, src, "type subImpl struct")
	assert.Contains(t, src, "parent *appImpl")
	assert.Contains(t, src, "func (c *appImpl) Sub() Sub {")
	assert.Contains(t, src, "return &subImpl{parent: c}")
	assert.Contains(t, src, "c.parent.provide")
}

//
// -----------------------------------------------------------------------------
// Multibindings and collections
// -----------------------------------------------------------------------------

// TestEmit_SetAndMapAggregation verifies slice aggregates build with append
// and map aggregates emit keyed literals.
func TestEmit_SetAndMapAggregation(t *testing.T) {
	t.Parallel()

	setKey := keys.New(model.SliceOf(typ("Handler")))
	mapKey := keys.New(model.MapOf(model.Builtin("string"), typ("Handler")))

	intoSet := func(method string) binding.ProvidesDeclaration {
		return binding.ProvidesDeclaration{
			Key: setKey, Provided: typ("Handler"),
			Element: elem(method), Module: typ("AppModule"),
			Contribution: binding.IntoSet,
		}
	}
	intoMap := func(method, entry string) binding.ProvidesDeclaration {
		return binding.ProvidesDeclaration{
			Key: mapKey, Provided: typ("Handler"),
			Element: elem(method), Module: typ("AppModule"),
			Contribution: binding.IntoMap, MapKey: entry,
		}
	}

	d := &component.Descriptor{
		Type:    typ("App"),
		Element: elem("App"),
		EntryPoints: []component.EntryPoint{
			{Name: "All", Element: elem("All"),
				Request: binding.DependencyRequest{Kind: binding.Instance, Key: setKey}},
			{Name: "ByName", Element: elem("ByName"),
				Request: binding.DependencyRequest{Kind: binding.Instance, Key: mapKey}},
		},
		Modules: []*component.Module{moduleOf("AppModule",
			intoSet("ProvideA"), intoSet("ProvideB"),
			intoMap("ProvideUsers", "users"), intoMap("ProvideOrders", "orders"))},
	}

	src := emit(t, d)
	assert.Contains(t, src, "func (c *appImpl) All() []Handler {")
	assert.Contains(t, src, "append(append([]Handler{}, ")
	assert.Contains(t, src, "func (c *appImpl) ByName() map[string]Handler {")
	assert.Contains(t, src, `"users": `)
	assert.Contains(t, src, `"orders": `)
}

//
// -----------------------------------------------------------------------------
// File output
// -----------------------------------------------------------------------------

// TestEmitFile_WritesAtomically verifies the generated file lands under the
// directory with the component-derived name and no temp files remain.
func TestEmitFile_WritesAtomically(t *testing.T) {
	t.Parallel()

	d := &component.Descriptor{
		Type:    typ("App"),
		Element: elem("App"),
		EntryPoints: []component.EntryPoint{{
			Name: "Repo", Element: elem("Repo"), Request: req(binding.Instance, "Repo"),
		}},
		Modules: []*component.Module{moduleOf("AppModule", provides("AppModule", "Repo"))},
	}

	dir := t.TempDir()
	out, err := New(nil).EmitFile(assemble(t, d), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app_graft.gen.go"), out)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	src, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(src), "package app")
}

// TestUnsupportedBindingError_Message verifies the error names the kind and
// declaration site.
func TestUnsupportedBindingError_Message(t *testing.T) {
	t.Parallel()

	err := &UnsupportedBindingError{Kind: binding.AssistedInjection, Element: elem("NewThing")}
	assert.Contains(t, err.Error(), "assisted injection")
	assert.Contains(t, err.Error(), "NewThing")
}
