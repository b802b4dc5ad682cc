package load

import (
	"go/ast"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/sghaida/graft/component"
	"github.com/sghaida/graft/model"
)

// factoryFixture builds a component interface with a single Sub() Sub
// factory method and the type information linkChildren needs.
func factoryFixture() (*rawComponent, *component.Descriptor) {
	pkg := types.NewPackage("example.com/app", "app")
	subNamed := types.NewNamed(
		types.NewTypeName(token.NoPos, pkg, "Sub", nil),
		types.NewInterfaceType(nil, nil), nil)

	method := &ast.Field{
		Names: []*ast.Ident{ast.NewIdent("Sub")},
		Type: &ast.FuncType{
			Params:  &ast.FieldList{},
			Results: &ast.FieldList{List: []*ast.Field{{Type: ast.NewIdent("Sub")}}},
		},
	}
	sig := types.NewSignatureType(nil, nil, nil,
		types.NewTuple(),
		types.NewTuple(types.NewVar(token.NoPos, pkg, "", subNamed)), false)

	rc := &rawComponent{
		typ:   model.Named("example.com/app", "App"),
		iface: &ast.InterfaceType{Methods: &ast.FieldList{List: []*ast.Field{method}}},
		pkg: &packages.Package{
			PkgPath: "example.com/app",
			TypesInfo: &types.Info{Types: map[ast.Expr]types.TypeAndValue{
				method.Type: {Type: sig},
			}},
		},
	}
	d := &component.Descriptor{
		Type: rc.typ,
		FactoryMethods: []component.FactoryMethod{{
			Name: "Sub",
			Element: model.Element{
				Kind: model.ElementMethod, Pkg: "example.com/app",
				Name: "App.Sub", Exported: true,
			},
		}},
	}
	return rc, d
}

//
// -----------------------------------------------------------------------------
// Child linking
// -----------------------------------------------------------------------------

// TestLinkChildren_DropsFactoryMethodWithoutDescriptor verifies a factory
// method whose subcomponent descriptor never built (it was skipped with a
// diagnostic during scanning) is removed instead of carrying a nil child
// into resolution.
func TestLinkChildren_DropsFactoryMethodWithoutDescriptor(t *testing.T) {
	t.Parallel()

	rc, d := factoryFixture()
	s := newScan(nil)

	s.linkChildren(rc, d)

	assert.Empty(t, d.FactoryMethods)
	assert.Empty(t, d.Children)
}

// TestLinkChildren_LinksKnownDescriptor verifies the happy path: the child
// descriptor is attached to the factory method and installed exactly once.
func TestLinkChildren_LinksKnownDescriptor(t *testing.T) {
	t.Parallel()

	rc, d := factoryFixture()
	s := newScan(nil)
	child := &component.Descriptor{
		Type:         model.Named("example.com/app", "Sub"),
		Subcomponent: true,
	}
	s.descriptors[child.Type.String()] = child

	s.linkChildren(rc, d)

	require.Len(t, d.FactoryMethods, 1)
	assert.Same(t, child, d.FactoryMethods[0].Child)
	require.Len(t, d.Children, 1)
	assert.Same(t, child, d.Children[0])
}
