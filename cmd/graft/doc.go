// Command graft — compile-time dependency injection code generator for Go
//
// graft reads Go packages containing //graft: directive comments, builds a
// binding graph per root component, validates it, and emits the wiring code
// as plain Go source. Resolution happens entirely at generation time: there
// is no runtime container, no reflection, and no lifecycle framework.
//
// Usage
//
//	graft generate [packages...]   scan, validate and write generated files
//	graft check [packages...]      scan and validate only; exit 1 on errors
//
// Package patterns default to ./... and accept anything the Go build system
// accepts. Options may be supplied via flags or an optional graft.yaml file
// in the working directory; flags win on conflict.
//
// Directive surface
//
//	//graft:component modules=AppModule,LogModule deps=Platform scope=Singleton
//	//graft:subcomponent modules=RequestModule scope=Request
//	//graft:module includes=StoreModule
//	//graft:provides scope=Singleton qualifier=primary
//	//graft:provides intoset
//	//graft:provides intomap key="users"
//	//graft:binds
//	//graft:multibinds
//	//graft:inject scope=Request
//	//graft:bindsinstance
//
// Components are interfaces: their zero-parameter methods are entry points,
// methods returning a subcomponent type are child factories, and an inner
// creator interface with bindsinstance methods shapes the generated
// constructor. Struct fields tagged `graft:"inject"` receive members
// injection.
//
// Validation reports every problem it can find in one run: missing bindings
// with the dependency path that reached them, duplicate bindings with all
// conflicting sites, non-deferred dependency cycles, scope mismatches,
// visibility violations and nullability violations. Generation is skipped
// only for the root components that had errors.
package main
