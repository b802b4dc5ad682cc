package resolver

import (
	"strings"

	"github.com/sghaida/graft/binding"
	"github.com/sghaida/graft/component"
	"github.com/sghaida/graft/graph"
	"github.com/sghaida/graft/keys"
	"github.com/sghaida/graft/model"
)

// Resolver drives one resolution round over a component tree. It is not safe
// for concurrent use; a round runs single-threaded and the Resolver is
// discarded with its Context afterwards.
type Resolver struct {
	ctx *Context

	// stack is the explicit chain of keys currently being resolved. An entry
	// found on it while its resolution is still open is a dependency cycle;
	// the memoized placeholder ends the recursion, the chain is only kept for
	// tracing.
	stack      []string
	inProgress map[string]int
}

// New creates a resolver over the given per-round context.
func New(ctx *Context) *Resolver {
	return &Resolver{ctx: ctx, inProgress: map[string]int{}}
}

// Resolve resolves every entry point of the root component and of all
// installed subcomponents, returning the resolved tree for graph assembly.
// Only internal consistency failures produce an error; user mistakes are
// recorded in the tree.
func (r *Resolver) Resolve(root *component.Descriptor) (*graph.ResolvedComponent, error) {
	cr := newComponentResolver(r, root, nil)
	if err := cr.resolveSurface(); err != nil {
		return nil, err
	}
	return cr.rc, nil
}

// componentResolver resolves keys at one component, delegating to its parent
// for inherited resolutions.
type componentResolver struct {
	r      *Resolver
	rc     *graph.ResolvedComponent
	parent *componentResolver
	index  *declIndex

	children map[string]*componentResolver
	surfaced bool
}

func newComponentResolver(r *Resolver, d *component.Descriptor, parent *componentResolver) *componentResolver {
	var prc *graph.ResolvedComponent
	if parent != nil {
		prc = parent.rc
	}
	return &componentResolver{
		r:        r,
		rc:       graph.NewResolvedComponent(d, prc),
		parent:   parent,
		index:    buildIndex(d),
		children: map[string]*componentResolver{},
	}
}

// resolveSurface resolves the component's declared surface: every entry
// point, then every factory-method child. Module-installed subcomponents are
// resolved on demand when their creator key is requested.
func (cr *componentResolver) resolveSurface() error {
	if cr.surfaced {
		return nil
	}
	cr.surfaced = true

	for _, ep := range cr.rc.Descriptor.EntryPoints {
		if _, err := cr.resolve(ep.Request.Key); err != nil {
			return err
		}
	}
	for _, fm := range cr.rc.Descriptor.FactoryMethods {
		if err := cr.child(fm.Child).resolveSurface(); err != nil {
			return err
		}
	}
	return nil
}

func (cr *componentResolver) child(d *component.Descriptor) *componentResolver {
	id := d.Type.String()
	if c, ok := cr.children[id]; ok {
		return c
	}
	c := newComponentResolver(cr.r, d, cr)
	cr.children[id] = c
	return c
}

// resolve resolves one key at this component. The result is memoized per
// (component, key); the placeholder is published before dependencies are
// descended into, so a key reached again on the same chain terminates
// immediately instead of recursing forever.
func (cr *componentResolver) resolve(k keys.Key) (*graph.ResolvedBindings, error) {
	key := keys.Normalized(k)
	id := key.ID()

	if rb, ok := cr.rc.Bindings[id]; ok {
		if cr.r.inProgress[id] > 0 {
			cr.r.ctx.log.Debug("dependency cycle",
				"key", id, "chain", strings.Join(cr.r.stack, " -> "))
		}
		return rb, nil
	}

	cr.r.stack = append(cr.r.stack, id)
	cr.r.inProgress[id]++
	defer func() {
		cr.r.stack = cr.r.stack[:len(cr.r.stack)-1]
		cr.r.inProgress[id]--
	}()
	cr.r.ctx.log.Debug("resolving", "component", cr.rc.Path.Current().String(), "key", id, "depth", len(cr.r.stack))

	if key.Contribution == nil && (key.Type.Kind == model.KindSlice || key.Type.Kind == model.KindMap) {
		if rb, handled, err := cr.resolveMultibound(key, id); handled || err != nil {
			return rb, err
		}
	}

	if fw, inner, ok := model.FrameworkOf(key.Type); ok {
		switch fw {
		case model.FrameworkOptional:
			return cr.resolveOptional(key, id, inner)
		case model.FrameworkMembersInjector:
			if rb, handled, err := cr.resolveMembers(key, id, inner); handled || err != nil {
				return rb, err
			}
		}
	}

	local, err := cr.localBindings(key)
	if err != nil {
		return nil, err
	}
	if len(local) > 0 {
		return cr.complete(cr.own(key, id), local)
	}

	// Nothing declared here. Inherit from the nearest ancestor that declares
	// or already resolved the key, preserving scope semantics: the key is
	// never re-resolved in the child.
	if cr.parent != nil && cr.parent.canResolve(key, id) {
		return cr.inherit(key, id)
	}

	// Injectable-constructor fallback. A scoped constructor belongs to the
	// nearest enclosing component declaring its scope; an unscoped one to the
	// requesting component.
	if ctor, ok := cr.r.ctx.injectFor(key.Type); ok && key.Qualifier == nil && key.Contribution == nil {
		if cr.parent != nil && !ctor.Scope.IsUnscoped() &&
			!cr.rc.Descriptor.HasScope(ctor.Scope) && cr.ancestorHasScope(ctor.Scope) {
			return cr.inherit(key, id)
		}
		b, err := cr.r.ctx.factory.Injection(ctor, key.Type)
		if err != nil {
			return nil, err
		}
		return cr.complete(cr.own(key, id), []*binding.Binding{b})
	}

	// No binding anywhere. Record the gap explicitly so the graph still
	// assembles and all missing keys report together.
	rb := cr.own(key, id)
	rb.Missing = true
	cr.r.ctx.log.Debug("missing binding", "component", cr.rc.Path.Current().String(), "key", id)
	return rb, nil
}

// own publishes a fresh resolution owned by this component.
func (cr *componentResolver) own(key keys.Key, id string) *graph.ResolvedBindings {
	rb := &graph.ResolvedBindings{Key: key, Owner: cr.rc.Path}
	cr.rc.Bindings[id] = rb
	return rb
}

// inherit resolves the key at the parent and aliases the result locally.
func (cr *componentResolver) inherit(key keys.Key, id string) (*graph.ResolvedBindings, error) {
	rb, err := cr.parent.resolve(key)
	if err != nil {
		return nil, err
	}
	cr.rc.Bindings[id] = rb
	return rb, nil
}

// complete fills the resolution with its candidate bindings and descends
// into every dependency request. Subcomponent-creator bindings also resolve
// the installed child's surface.
func (cr *componentResolver) complete(rb *graph.ResolvedBindings, bs []*binding.Binding) (*graph.ResolvedBindings, error) {
	rb.Bindings = bs
	for _, b := range bs {
		for _, req := range b.Requests() {
			if _, err := cr.resolve(req.Key); err != nil {
				return nil, err
			}
		}
		if b.Kind() == binding.SubcomponentCreator {
			if err := cr.descend(b.Key()); err != nil {
				return nil, err
			}
		}
	}
	return rb, nil
}

// descend resolves the surface of the child component installed under the
// given creator key.
func (cr *componentResolver) descend(creatorKey keys.Key) error {
	want := creatorKey.WithoutContribution().ID()
	for _, d := range cr.rc.Descriptor.Children {
		if d.CreatorKey().ID() == want {
			return cr.child(d).resolveSurface()
		}
	}
	return nil
}

// canResolve probes, without recording anything, whether this component or
// an ancestor declares or has already resolved the key.
func (cr *componentResolver) canResolve(key keys.Key, id string) bool {
	if _, ok := cr.rc.Bindings[id]; ok {
		return true
	}
	if cr.hasLocal(key, id) {
		return true
	}
	if cr.parent != nil {
		return cr.parent.canResolve(key, id)
	}
	return false
}

func (cr *componentResolver) hasLocal(key keys.Key, id string) bool {
	if cr.index.hasExplicit(id) || cr.index.hasCollection(id) {
		return true
	}
	if _, ok := cr.index.dependencies[id]; ok {
		return true
	}
	return key.Qualifier == nil && key.Contribution == nil && key.Type.Equal(cr.rc.Descriptor.Type)
}

func (cr *componentResolver) ancestorHasScope(s model.Scope) bool {
	for link := cr.parent; link != nil; link = link.parent {
		if link.rc.Descriptor.HasScope(s) {
			return true
		}
	}
	return false
}

// localBindings materializes every explicit candidate this component's
// declarations provide for the key. Invalid declarations are skipped and
// recorded on the context.
func (cr *componentResolver) localBindings(key keys.Key) ([]*binding.Binding, error) {
	id := key.ID()
	f := cr.r.ctx.factory
	var out []*binding.Binding

	add := func(b *binding.Binding, err error) error {
		if err != nil {
			return cr.r.ctx.skipMalformed(err)
		}
		out = append(out, b)
		return nil
	}

	for _, d := range cr.index.provides[id] {
		if err := add(f.Provision(d)); err != nil {
			return nil, err
		}
	}
	for _, d := range cr.index.delegates[id] {
		if err := add(f.Delegate(d)); err != nil {
			return nil, err
		}
	}
	for _, d := range cr.index.subcomponents[id] {
		if err := add(f.SubcomponentCreator(d)); err != nil {
			return nil, err
		}
	}
	for _, d := range cr.index.boundInstances[id] {
		if err := add(f.BoundInstance(d)); err != nil {
			return nil, err
		}
	}
	for _, m := range cr.index.depMethods[id] {
		if err := add(f.ComponentMethod(m.dep, m.method)); err != nil {
			return nil, err
		}
	}
	if dep, ok := cr.index.dependencies[id]; ok {
		if err := add(f.ComponentDependency(dep.Type, dep.Element)); err != nil {
			return nil, err
		}
	}
	if key.Qualifier == nil && key.Contribution == nil && key.Type.Equal(cr.rc.Descriptor.Type) {
		if err := add(f.Component(cr.rc.Descriptor.Type)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// resolveMultibound synthesizes the aggregate binding for a multibound
// collection key. Contributions are gathered from this component and every
// ancestor; the child-most component with a local contribution (or an
// explicit multibinds declaration) owns the aggregate. A unique declaration
// for the same collection key is materialized alongside the aggregate so the
// duplicate validator can report the conflict.
func (cr *componentResolver) resolveMultibound(key keys.Key, id string) (*graph.ResolvedBindings, bool, error) {
	declared := false
	for link := cr; link != nil; link = link.parent {
		if link.index.hasCollection(id) {
			declared = true
			break
		}
	}
	if !declared {
		return nil, false, nil
	}

	if !cr.index.hasCollection(id) && cr.parent != nil && cr.parent.canResolve(key, id) {
		rb, err := cr.inherit(key, id)
		return rb, true, err
	}

	rb := cr.own(key, id)

	// Ancestor contributions first, so a chain from root to leaf keeps a
	// stable order; set membership itself is by contribution identity.
	var chain []*componentResolver
	for link := cr; link != nil; link = link.parent {
		chain = append([]*componentResolver{link}, chain...)
	}
	var contribs []*binding.Binding
	for _, link := range chain {
		for _, ref := range link.index.contributions[id] {
			crb, err := link.resolve(ref.key)
			if err != nil {
				return nil, true, err
			}
			if link != cr {
				cr.rc.Bindings[keys.Normalized(ref.key).ID()] = crb
			}
			contribs = append(contribs, crb.Bindings...)
		}
	}

	var agg *binding.Binding
	var err error
	if key.Type.Kind == model.KindMap {
		agg, err = cr.r.ctx.factory.MultiboundMap(key, contribs)
	} else {
		agg, err = cr.r.ctx.factory.MultiboundSet(key, contribs)
	}
	if err != nil {
		return nil, true, err
	}

	uniques, err := cr.localBindings(key)
	if err != nil {
		return nil, true, err
	}
	rb, err = cr.complete(rb, append(uniques, agg))
	return rb, true, err
}

// resolveOptional synthesizes a present or absent optional binding depending
// on whether the underlying key has any binding in sight. Absence is not a
// missing binding; that is the point of the optional.
func (cr *componentResolver) resolveOptional(key keys.Key, id string, inner model.TypeRef) (*graph.ResolvedBindings, error) {
	under := keys.Qualified(inner, key.Qualifier)
	if !cr.available(under) {
		b, err := cr.r.ctx.factory.OptionalAbsent(key)
		if err != nil {
			return nil, err
		}
		rb := cr.own(key, id)
		rb.Bindings = []*binding.Binding{b}
		return rb, nil
	}
	b, err := cr.r.ctx.factory.OptionalPresent(key, binding.DependencyRequest{
		Kind: binding.Instance,
		Key:  under,
	})
	if err != nil {
		return nil, err
	}
	return cr.complete(cr.own(key, id), []*binding.Binding{b})
}

// available probes whether the key would resolve to something other than a
// missing marker, without recording a resolution.
func (cr *componentResolver) available(k keys.Key) bool {
	key := keys.Normalized(k)
	id := key.ID()
	for link := cr; link != nil; link = link.parent {
		if rb, ok := link.rc.Bindings[id]; ok {
			return !rb.Missing
		}
		if link.hasLocal(key, id) {
			return true
		}
	}
	if key.Qualifier != nil {
		return false
	}
	_, ok := cr.r.ctx.injectFor(key.Type)
	return ok
}

// resolveMembers resolves the canonical members-injection key for a type
// with a registered members declaration.
func (cr *componentResolver) resolveMembers(key keys.Key, id string, inner model.TypeRef) (*graph.ResolvedBindings, bool, error) {
	decl, ok := cr.r.ctx.membersFor(inner)
	if !ok {
		return nil, false, nil
	}
	b, err := cr.r.ctx.factory.MembersInjection(decl)
	if err != nil {
		return nil, true, err
	}
	rb, err := cr.complete(cr.own(key, id), []*binding.Binding{b})
	return rb, true, err
}
