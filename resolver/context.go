package resolver

import (
	"errors"
	"log/slog"

	"github.com/sghaida/graft/binding"
	"github.com/sghaida/graft/model"
)

// Context is the per-round resolution state: the registries of inject
// constructors and members declarations gathered by the front end, the
// binding factory, and the malformed-declaration sink. A Context is created
// fresh for each processing round and discarded with it; nothing here is
// global.
type Context struct {
	factory binding.Factory
	log     *slog.Logger

	inject  map[string]binding.InjectConstructor
	members map[string]binding.MembersDeclaration

	malformed []*binding.InvalidDeclarationError
}

// NewContext creates an empty per-round context. A nil logger discards all
// resolution tracing.
func NewContext(log *slog.Logger) *Context {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Context{
		log:     log,
		inject:  map[string]binding.InjectConstructor{},
		members: map[string]binding.MembersDeclaration{},
	}
}

// RegisterInject records an inject constructor, indexed by the erased
// constructed type so generic instantiations find their declaration.
func (c *Context) RegisterInject(ctor binding.InjectConstructor) {
	c.inject[ctor.Type.Erased().String()] = ctor
}

// RegisterMembers records the injectable fields of a type.
func (c *Context) RegisterMembers(decl binding.MembersDeclaration) {
	c.members[decl.Type.String()] = decl
}

// Malformed returns the declarations skipped during resolution because they
// were invalid, for reporting alongside graph diagnostics.
func (c *Context) Malformed() []*binding.InvalidDeclarationError {
	return c.malformed
}

func (c *Context) injectFor(t model.TypeRef) (binding.InjectConstructor, bool) {
	ctor, ok := c.inject[t.Erased().String()]
	return ctor, ok
}

func (c *Context) membersFor(t model.TypeRef) (binding.MembersDeclaration, bool) {
	decl, ok := c.members[t.String()]
	return decl, ok
}

// skipMalformed filters a factory failure: invalid declarations are recorded
// and suppressed, anything else propagates as an internal error.
func (c *Context) skipMalformed(err error) error {
	var invalid *binding.InvalidDeclarationError
	if errors.As(err, &invalid) {
		c.log.Warn("skipping invalid declaration", "at", invalid.Element.String(), "reason", invalid.Reason)
		c.malformed = append(c.malformed, invalid)
		return nil
	}
	return err
}
