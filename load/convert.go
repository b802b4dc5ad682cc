package load

import (
	"go/types"

	"github.com/sghaida/graft/model"
)

// typeRef converts a go/types type into the structural model form. Types the
// model cannot express (channels, funcs, unnamed structs) collapse to their
// string form as an opaque named type, which still gives them stable key
// identity.
func typeRef(t types.Type) model.TypeRef {
	switch tt := t.(type) {
	case *types.Basic:
		return model.Builtin(tt.Name())
	case *types.Pointer:
		return model.PointerTo(typeRef(tt.Elem()))
	case *types.Slice:
		return model.SliceOf(typeRef(tt.Elem()))
	case *types.Map:
		return model.MapOf(typeRef(tt.Key()), typeRef(tt.Elem()))
	case *types.Named:
		obj := tt.Obj()
		pkg := ""
		if obj.Pkg() != nil {
			pkg = obj.Pkg().Path()
		}
		var args []model.TypeRef
		if ta := tt.TypeArgs(); ta != nil {
			for i := 0; i < ta.Len(); i++ {
				args = append(args, typeRef(ta.At(i)))
			}
		}
		return model.Named(pkg, obj.Name(), args...)
	case *types.Alias:
		return typeRef(types.Unalias(tt))
	case *types.TypeParam:
		return model.TypeParam(tt.Obj().Name())
	default:
		return model.Builtin(t.String())
	}
}
