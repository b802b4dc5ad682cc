package binding

import (
	"strconv"

	"github.com/sghaida/graft/model"
)

// InvalidDeclarationError reports a malformed user declaration, e.g. an
// intomap contribution without a map key. It is a build-time validation
// failure attached to the offending element, never a crash.
type InvalidDeclarationError struct {
	Element model.Element
	Reason  string
}

// Error implements the error interface.
func (e *InvalidDeclarationError) Error() string {
	// Example: invalid declaration at p.M.Provide (f.go:10): intomap requires key=
	return "invalid declaration at " + e.Element.String() + ": " + e.Reason
}

// TypeArgumentMismatchError reports a generic declaration requested at an
// incompatible parameterization. This is an internal consistency failure:
// the front end resolves use sites before the factory runs, so reaching this
// state indicates a bug in the engine rather than a user mistake.
type TypeArgumentMismatchError struct {
	Declared  model.TypeRef
	Requested model.TypeRef
}

// Error implements the error interface.
func (e *TypeArgumentMismatchError) Error() string {
	return "graft internal: type arguments of " + e.Requested.String() +
		" do not match declaration " + e.Declared.String() +
		" (want " + strconv.Itoa(len(e.Declared.Args)) + " args)"
}
