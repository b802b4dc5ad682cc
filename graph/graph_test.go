package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/graft/binding"
	"github.com/sghaida/graft/component"
	"github.com/sghaida/graft/keys"
	"github.com/sghaida/graft/model"
)

const app = "example.com/app"

func typ(name string) model.TypeRef { return model.Named(app, name) }

func elem(name string) model.Element {
	return model.Element{Kind: model.ElementFunc, Pkg: app, Name: name, Exported: true}
}

func provision(t *testing.T, target string, deps ...string) *binding.Binding {
	t.Helper()
	decl := binding.ProvidesDeclaration{
		Key:     keys.New(typ(target)),
		Element: elem("Provide" + target),
		Module:  typ("AppModule"),
	}
	for _, d := range deps {
		decl.Requests = append(decl.Requests, binding.DependencyRequest{
			Kind:    binding.Instance,
			Key:     keys.New(typ(d)),
			Element: elem("Provide" + target),
		})
	}
	b, err := binding.Factory{}.Provision(decl)
	require.NoError(t, err)
	return b
}

func record(rc *ResolvedComponent, rb *ResolvedBindings) {
	rc.Bindings[keys.Normalized(rb.Key).ID()] = rb
}

// fixture builds: root App owning Service -> Repo, an unreferenced Orphan,
// and a child Sub (via factory method) whose Handler depends on the
// parent-owned Repo through an aliased resolution.
func fixture(t *testing.T) *ResolvedComponent {
	t.Helper()

	subDesc := &component.Descriptor{
		Type:         typ("Sub"),
		Subcomponent: true,
		EntryPoints: []component.EntryPoint{{
			Name:    "Handler",
			Element: elem("Handler"),
			Request: binding.DependencyRequest{Kind: binding.Instance, Key: keys.New(typ("Handler"))},
		}},
	}
	rootDesc := &component.Descriptor{
		Type: typ("App"),
		EntryPoints: []component.EntryPoint{{
			Name:    "Service",
			Element: elem("Service"),
			Request: binding.DependencyRequest{Kind: binding.Instance, Key: keys.New(typ("Service"))},
		}},
		FactoryMethods: []component.FactoryMethod{{Name: "Sub", Element: elem("Sub"), Child: subDesc}},
		Children:       []*component.Descriptor{subDesc},
	}

	root := NewResolvedComponent(rootDesc, nil)
	repo := &ResolvedBindings{
		Key: keys.New(typ("Repo")), Owner: root.Path,
		Bindings: []*binding.Binding{provision(t, "Repo")},
	}
	record(root, &ResolvedBindings{
		Key: keys.New(typ("Service")), Owner: root.Path,
		Bindings: []*binding.Binding{provision(t, "Service", "Repo")},
	})
	record(root, repo)
	record(root, &ResolvedBindings{
		Key: keys.New(typ("Orphan")), Owner: root.Path,
		Bindings: []*binding.Binding{provision(t, "Orphan")},
	})

	sub := NewResolvedComponent(subDesc, root)
	record(sub, &ResolvedBindings{
		Key: keys.New(typ("Handler")), Owner: sub.Path,
		Bindings: []*binding.Binding{provision(t, "Handler", "Repo")},
	})
	record(sub, repo) // inherited resolution aliases the parent's value
	return root
}

//
// -----------------------------------------------------------------------------
// Assemble
// -----------------------------------------------------------------------------

// TestAssemble_PrunesUnreachable verifies that a binding nothing requests is
// dropped from the assembled graph.
func TestAssemble_PrunesUnreachable(t *testing.T) {
	t.Parallel()

	g, err := Assemble(fixture(t))
	require.NoError(t, err)

	assert.Empty(t, g.BindingsFor(keys.New(typ("Orphan"))))
	assert.Len(t, g.BindingsFor(keys.New(typ("Service"))), 1)
}

// TestAssemble_SharedOwnership verifies an inherited resolution produces a
// single node, owned by the ancestor, referenced from both components.
func TestAssemble_SharedOwnership(t *testing.T) {
	t.Parallel()

	root := fixture(t)
	g, err := Assemble(root)
	require.NoError(t, err)

	repos := g.BindingsFor(keys.New(typ("Repo")))
	require.Len(t, repos, 1)
	assert.True(t, repos[0].ComponentPath().Equal(root.Path))

	// Both the root Service and the child Handler depend on the same node.
	assert.Len(t, g.InEdges(repos[0].ID()), 2)
}

// TestAssemble_ChildFactoryMethodEdge verifies the parent component links to
// the child through a factory-method edge.
func TestAssemble_ChildFactoryMethodEdge(t *testing.T) {
	t.Parallel()

	g, err := Assemble(fixture(t))
	require.NoError(t, err)

	var found bool
	for _, e := range g.Edges() {
		if e.Kind == ChildFactoryMethodEdge {
			found = true
			assert.Equal(t, g.Root().ID(), e.From)
		}
	}
	assert.True(t, found)
	assert.Len(t, g.ComponentNodes(), 2)
}

// TestAssemble_MissingNode verifies an unresolved key surfaces as a missing
// node reachable from its dependents.
func TestAssemble_MissingNode(t *testing.T) {
	t.Parallel()

	desc := &component.Descriptor{
		Type: typ("App"),
		EntryPoints: []component.EntryPoint{{
			Name:    "Service",
			Element: elem("Service"),
			Request: binding.DependencyRequest{Kind: binding.Instance, Key: keys.New(typ("Service"))},
		}},
	}
	root := NewResolvedComponent(desc, nil)
	record(root, &ResolvedBindings{
		Key: keys.New(typ("Service")), Owner: root.Path,
		Bindings: []*binding.Binding{provision(t, "Service", "Repo")},
	})
	record(root, &ResolvedBindings{Key: keys.New(typ("Repo")), Owner: root.Path, Missing: true})

	g, err := Assemble(root)
	require.NoError(t, err)

	require.Len(t, g.MissingNodes(), 1)
	missing := g.MissingNodes()[0]
	assert.Equal(t, keys.New(typ("Repo")).ID(), missing.Key().ID())

	trace := g.TraceFromEntryPoint(missing.ID())
	require.Len(t, trace, 2)
	assert.True(t, trace[0].EntryPoint)
	assert.Equal(t, missing.ID(), trace[1].To)
}

// TestAssemble_Subgraph verifies a child subgraph keeps ancestor-owned nodes
// it reaches while dropping root-only ones.
func TestAssemble_Subgraph(t *testing.T) {
	t.Parallel()

	root := fixture(t)
	g, err := Assemble(root)
	require.NoError(t, err)

	sub, ok := g.Subgraph(root.Path.Child(typ("Sub")))
	require.True(t, ok)

	assert.Len(t, sub.BindingsFor(keys.New(typ("Handler"))), 1)
	assert.Len(t, sub.BindingsFor(keys.New(typ("Repo"))), 1)
	assert.Empty(t, sub.BindingsFor(keys.New(typ("Service"))))
}

//
// -----------------------------------------------------------------------------
// ComponentPath
// -----------------------------------------------------------------------------

// TestComponentPath verifies child/parent navigation and rendering.
func TestComponentPath(t *testing.T) {
	t.Parallel()

	p := RootPath(typ("App")).Child(typ("Sub"))
	assert.Equal(t, app+".App -> "+app+".Sub", p.String())
	assert.Equal(t, typ("Sub"), p.Current())
	assert.True(t, p.HasPrefix(RootPath(typ("App"))))

	parent, ok := p.Parent()
	require.True(t, ok)
	assert.True(t, parent.Equal(RootPath(typ("App"))))

	_, ok = parent.Parent()
	assert.False(t, ok)
}
