package load

import (
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sghaida/graft/model"
)

// TestTypeRef_Shapes verifies go/types conversion for the shapes the model
// expresses directly.
func TestTypeRef_Shapes(t *testing.T) {
	t.Parallel()

	pkg := types.NewPackage("example.com/app", "app")
	named := types.NewNamed(
		types.NewTypeName(token.NoPos, pkg, "Repo", nil),
		types.NewStruct(nil, nil), nil)

	assert.Equal(t, model.Builtin("string"), typeRef(types.Typ[types.String]))
	assert.Equal(t, model.Named("example.com/app", "Repo"), typeRef(named))
	assert.Equal(t,
		model.PointerTo(model.Named("example.com/app", "Repo")),
		typeRef(types.NewPointer(named)))
	assert.Equal(t,
		model.SliceOf(model.Named("example.com/app", "Repo")),
		typeRef(types.NewSlice(named)))
	assert.Equal(t,
		model.MapOf(model.Builtin("string"), model.Named("example.com/app", "Repo")),
		typeRef(types.NewMap(types.Typ[types.String], named)))
}
