// Package model defines the small immutable value types shared by every
// stage of the pipeline: structural type references, qualifiers, scopes and
// declaration elements.
//
// Nothing in this package depends on go/types; the load package converts
// go/types values into these shapes once, and the resolution core only ever
// sees model values. That keeps the core independent of the host toolchain
// and trivially constructible in tests.
package model
