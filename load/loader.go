package load

import (
	"fmt"
	"go/ast"
	"go/types"
	"log/slog"
	"reflect"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/sghaida/graft/binding"
	"github.com/sghaida/graft/component"
	"github.com/sghaida/graft/keys"
	"github.com/sghaida/graft/model"
	"github.com/sghaida/graft/validate"
)

// Result is everything the scanner gathered for one resolution round.
type Result struct {
	// Roots are the top-level components, in scan order.
	Roots []*component.Descriptor

	Injects []binding.InjectConstructor
	Members []binding.MembersDeclaration

	// Diagnostics are the malformed declarations skipped during scanning.
	Diagnostics []validate.Diagnostic
}

// HasErrors reports whether scanning produced any error diagnostic.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == validate.Error {
			return true
		}
	}
	return false
}

// Loader scans Go packages for graft directives.
type Loader struct {
	log *slog.Logger

	// Dir is the working directory for package loading; empty means the
	// process working directory.
	Dir string
}

// NewLoader creates a loader. A nil logger discards scan tracing.
func NewLoader(log *slog.Logger) *Loader {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Loader{log: log}
}

// Load type-checks the given package patterns and scans them. It fails only
// when packages cannot be loaded; malformed directives become diagnostics on
// the result.
func (l *Loader) Load(patterns ...string) (*Result, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports | packages.NeedDeps,
		Dir: l.Dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	for _, p := range pkgs {
		for _, e := range p.Errors {
			return nil, fmt.Errorf("loading %s: %s", p.PkgPath, e.Msg)
		}
	}

	s := newScan(l.log)
	for _, p := range pkgs {
		s.scanPackage(p)
	}
	return s.finish()
}

// rawComponent is a component type seen during scanning, before its module
// set can be expanded.
type rawComponent struct {
	typ          model.TypeRef
	elem         model.Element
	subcomponent bool
	scopes       []model.Scope
	moduleTypes  []model.TypeRef
	depTypes     []model.TypeRef
	iface        *ast.InterfaceType
	pkg          *packages.Package
}

type scan struct {
	log *slog.Logger
	res *Result

	modules    []*component.Module
	moduleByID map[string]*component.Module

	comps  []*rawComponent
	byType map[string]*rawComponent // component type ID -> raw

	descriptors map[string]*component.Descriptor
}

func newScan(log *slog.Logger) *scan {
	return &scan{
		log:         log,
		res:         &Result{},
		moduleByID:  map[string]*component.Module{},
		byType:      map[string]*rawComponent{},
		descriptors: map[string]*component.Descriptor{},
	}
}

func (s *scan) errorf(elem model.Element, format string, args ...any) {
	s.res.Diagnostics = append(s.res.Diagnostics, validate.Diagnostic{
		Severity: validate.Error,
		Message:  fmt.Sprintf(format, args...),
		Element:  elem,
	})
}

// scanPackage walks one package's files: type declarations first so module
// and component types are known, then functions and methods.
func (s *scan) scanPackage(p *packages.Package) {
	s.log.Debug("scanning package", "pkg", p.PkgPath)

	for _, f := range p.Syntax {
		for _, decl := range f.Decls {
			if gd, ok := decl.(*ast.GenDecl); ok {
				s.scanGenDecl(p, gd)
			}
		}
	}
	for _, f := range p.Syntax {
		for _, decl := range f.Decls {
			if fd, ok := decl.(*ast.FuncDecl); ok {
				s.scanFuncDecl(p, fd)
			}
		}
	}
}

func (s *scan) scanGenDecl(p *packages.Package, gd *ast.GenDecl) {
	for _, spec := range gd.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		doc := ts.Doc
		if doc == nil {
			doc = gd.Doc
		}
		elem := s.element(p, model.ElementType, ts.Name.Name, doc)
		dirs, err := parseDirectives(doc, p.Fset)
		if err != nil {
			s.errorf(elem, "invalid directive: %v", err)
			continue
		}
		for _, d := range dirs {
			s.scanTypeDirective(p, ts, elem, d)
		}
	}
}

func (s *scan) scanTypeDirective(p *packages.Package, ts *ast.TypeSpec, elem model.Element, d directive) {
	typ := model.Named(p.PkgPath, ts.Name.Name)

	switch d.name {
	case "module":
		m := &component.Module{Type: typ, Element: elem}
		for _, inc := range d.list("includes") {
			m.Includes = append(m.Includes, model.Named(p.PkgPath, inc))
		}
		s.modules = append(s.modules, m)
		s.moduleByID[typ.String()] = m

	case "component", "subcomponent":
		iface, ok := ts.Type.(*ast.InterfaceType)
		if !ok {
			s.errorf(elem, "graft:%s requires an interface type", d.name)
			return
		}
		rc := &rawComponent{
			typ:          typ,
			elem:         elem,
			subcomponent: d.name == "subcomponent",
			iface:        iface,
			pkg:          p,
		}
		if sc := d.get("scope"); sc != "" {
			rc.scopes = append(rc.scopes, model.Scope{Name: sc})
		}
		for _, m := range d.list("modules") {
			rc.moduleTypes = append(rc.moduleTypes, model.Named(p.PkgPath, m))
		}
		for _, dep := range d.list("deps") {
			rc.depTypes = append(rc.depTypes, model.Named(p.PkgPath, dep))
		}
		s.comps = append(s.comps, rc)
		s.byType[typ.String()] = rc

	case "inject":
		st, ok := ts.Type.(*ast.StructType)
		if !ok {
			s.errorf(elem, "graft:inject on a type requires a struct")
			return
		}
		s.scanMembers(p, typ, elem, st)

	default:
		s.errorf(elem, "directive graft:%s is not valid on a type", d.name)
	}
}

// scanMembers turns a struct marked graft:inject into a members declaration
// covering every field tagged graft:"inject".
func (s *scan) scanMembers(p *packages.Package, typ model.TypeRef, elem model.Element, st *ast.StructType) {
	decl := binding.MembersDeclaration{Type: model.PointerTo(typ), Element: elem}
	for _, f := range st.Fields.List {
		if f.Tag == nil || len(f.Names) == 0 {
			continue
		}
		tag := reflect.StructTag(strings.Trim(f.Tag.Value, "`"))
		if tag.Get("graft") != "inject" {
			continue
		}
		ft := typeRef(p.TypesInfo.TypeOf(f.Type))
		fieldElem := model.Element{
			Kind:     model.ElementField,
			Pkg:      p.PkgPath,
			Name:     typ.Name + "." + f.Names[0].Name,
			Exported: ast.IsExported(f.Names[0].Name),
		}
		decl.Fields = append(decl.Fields, binding.NewRequest(ft, nil, fieldElem, false))
	}
	s.res.Members = append(s.res.Members, decl)
}

func (s *scan) scanFuncDecl(p *packages.Package, fd *ast.FuncDecl) {
	dirs, err := parseDirectives(fd.Doc, p.Fset)
	if err != nil {
		s.errorf(s.funcElement(p, fd), "invalid directive: %v", err)
		return
	}
	if len(dirs) == 0 {
		return
	}

	if fd.Recv == nil {
		for _, d := range dirs {
			if d.name != "inject" {
				s.errorf(s.funcElement(p, fd), "directive graft:%s is not valid on a function", d.name)
				continue
			}
			s.scanInject(p, fd, d)
		}
		return
	}

	recv := receiverType(fd)
	if recv == "" {
		return
	}
	m, ok := s.moduleByID[model.Named(p.PkgPath, recv).String()]
	if !ok {
		s.errorf(s.funcElement(p, fd), "graft directive on method of %s, which is not a graft:module", recv)
		return
	}
	for _, d := range dirs {
		s.scanModuleMethod(p, fd, m, d)
	}
}

func receiverType(fd *ast.FuncDecl) string {
	if len(fd.Recv.List) != 1 {
		return ""
	}
	expr := fd.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if id, ok := expr.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

func (s *scan) funcElement(p *packages.Package, fd *ast.FuncDecl) model.Element {
	kind := model.ElementFunc
	name := fd.Name.Name
	if fd.Recv != nil {
		kind = model.ElementMethod
		if recv := receiverType(fd); recv != "" {
			name = recv + "." + name
		}
	}
	return s.element(p, kind, name, fd.Doc)
}

func (s *scan) element(p *packages.Package, kind model.ElementKind, name string, doc *ast.CommentGroup) model.Element {
	pos := ""
	if doc != nil && len(doc.List) > 0 {
		pp := p.Fset.Position(doc.List[0].Pos())
		pos = fmt.Sprintf("%s:%d", pp.Filename, pp.Line)
	}
	short := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		short = name[i+1:]
	}
	return model.Element{Kind: kind, Pkg: p.PkgPath, Name: name, Pos: pos, Exported: ast.IsExported(short)}
}

// scanInject records a package-level constructor.
func (s *scan) scanInject(p *packages.Package, fd *ast.FuncDecl, d directive) {
	elem := s.funcElement(p, fd)
	sig, ok := funcSignature(p, fd)
	if !ok || sig.Results().Len() < 1 {
		s.errorf(elem, "graft:inject constructor must return the constructed type")
		return
	}

	ctor := binding.InjectConstructor{
		Type:    typeRef(sig.Results().At(0).Type()),
		Element: elem,
		Scope:   model.Scope{Name: d.get("scope")},
	}
	if tp := sig.TypeParams(); tp != nil {
		for i := 0; i < tp.Len(); i++ {
			ctor.TypeParams = append(ctor.TypeParams, tp.At(i).Obj().Name())
		}
	}
	for i := 0; i < sig.Params().Len(); i++ {
		prm := sig.Params().At(i)
		ctor.Params = append(ctor.Params, binding.ConstructorParam{
			Name:    prm.Name(),
			Request: binding.NewRequest(typeRef(prm.Type()), nil, elem, false),
		})
	}
	s.res.Injects = append(s.res.Injects, ctor)
}

func funcSignature(p *packages.Package, fd *ast.FuncDecl) (*types.Signature, bool) {
	obj := p.TypesInfo.Defs[fd.Name]
	if obj == nil {
		return nil, false
	}
	sig, ok := obj.Type().(*types.Signature)
	return sig, ok
}

func qualifierOf(d directive) *model.Qualifier {
	if q := d.get("qualifier"); q != "" {
		return model.NamedQualifier(q)
	}
	return nil
}

func contributionOf(d directive) binding.ContributionType {
	switch {
	case d.flags["intoset"]:
		return binding.IntoSet
	case d.flags["elementsintoset"]:
		return binding.ElementsIntoSet
	case d.flags["intomap"]:
		return binding.IntoMap
	default:
		return binding.Unique
	}
}

// contributionKey derives the collection key a contribution targets from the
// declared result type.
func contributionKey(ret model.TypeRef, q *model.Qualifier, c binding.ContributionType) keys.Key {
	switch c {
	case binding.IntoSet:
		return keys.Qualified(model.SliceOf(ret), q)
	case binding.IntoMap:
		return keys.Qualified(model.MapOf(model.Builtin("string"), ret), q)
	default:
		// Unique and ElementsIntoSet use the declared type as is.
		return keys.Qualified(ret, q)
	}
}

func (s *scan) scanModuleMethod(p *packages.Package, fd *ast.FuncDecl, m *component.Module, d directive) {
	elem := s.funcElement(p, fd)
	sig, ok := funcSignature(p, fd)
	if !ok {
		s.errorf(elem, "cannot type-check %s", elem.Name)
		return
	}

	switch d.name {
	case "provides":
		if sig.Results().Len() < 1 {
			s.errorf(elem, "graft:provides method must return the provided type")
			return
		}
		ret := typeRef(sig.Results().At(0).Type())
		contribution := contributionOf(d)
		decl := binding.ProvidesDeclaration{
			Key:          contributionKey(ret, qualifierOf(d), contribution),
			Provided:     ret,
			Element:      elem,
			Module:       m.Type,
			Scope:        model.Scope{Name: d.get("scope")},
			Nullable:     d.flags["nullable"],
			Contribution: contribution,
			MapKey:       d.get("key"),
		}
		for i := 0; i < sig.Params().Len(); i++ {
			prm := sig.Params().At(i)
			decl.Requests = append(decl.Requests, binding.NewRequest(typeRef(prm.Type()), nil, elem, false))
		}
		m.Provides = append(m.Provides, decl)

	case "binds":
		if sig.Params().Len() != 1 || sig.Results().Len() != 1 {
			s.errorf(elem, "graft:binds method must take the implementation and return the bound type")
			return
		}
		ret := typeRef(sig.Results().At(0).Type())
		contribution := contributionOf(d)
		m.Binds = append(m.Binds, binding.DelegateDeclaration{
			Key:          contributionKey(ret, qualifierOf(d), contribution),
			Delegate:     binding.NewRequest(typeRef(sig.Params().At(0).Type()), nil, elem, false),
			Element:      elem,
			Module:       m.Type,
			Scope:        model.Scope{Name: d.get("scope")},
			Contribution: contribution,
			MapKey:       d.get("key"),
		})

	case "multibinds":
		if sig.Results().Len() != 1 {
			s.errorf(elem, "graft:multibinds method must return the collection type")
			return
		}
		ret := typeRef(sig.Results().At(0).Type())
		if ret.Kind != model.KindSlice && ret.Kind != model.KindMap {
			s.errorf(elem, "graft:multibinds must declare a slice or map collection")
			return
		}
		m.Multibinds = append(m.Multibinds, binding.MultibindsDeclaration{
			Key:     keys.Qualified(ret, qualifierOf(d)),
			Element: elem,
			Module:  m.Type,
		})

	case "subcomponent":
		if sig.Results().Len() != 1 {
			s.errorf(elem, "graft:subcomponent method must return the subcomponent type")
			return
		}
		child := typeRef(sig.Results().At(0).Type())
		if _, ok := s.byType[child.String()]; !ok {
			s.errorf(elem, "%s is not a graft:subcomponent type", child.String())
			return
		}
		m.Subcomponents = append(m.Subcomponents, binding.SubcomponentDeclaration{
			Subcomponent: child,
			CreatorKey:   keys.New(child),
			Element:      elem,
			Module:       m.Type,
		})

	default:
		s.errorf(elem, "directive graft:%s is not valid on a module method", d.name)
	}
}

// finish expands module sets, builds descriptors and links children.
func (s *scan) finish() (*Result, error) {
	idx := component.NewModuleIndex(s.modules...)

	for _, rc := range s.comps {
		s.buildDescriptor(rc, idx)
	}

	// Link children after every descriptor exists.
	for _, rc := range s.comps {
		d, ok := s.descriptors[rc.typ.String()]
		if !ok {
			continue
		}
		s.linkChildren(rc, d)
		if !rc.subcomponent {
			s.res.Roots = append(s.res.Roots, d)
		}
	}
	return s.res, nil
}

func (s *scan) buildDescriptor(rc *rawComponent, idx *component.ModuleIndex) {
	mods, err := component.ExpandModules(rc.moduleTypes, rc.elem, idx)
	if err != nil {
		s.errorf(rc.elem, "%v", err)
		return
	}

	d := &component.Descriptor{
		Type:         rc.typ,
		Element:      rc.elem,
		Subcomponent: rc.subcomponent,
		Scopes:       rc.scopes,
		Modules:      mods,
	}
	for _, depType := range rc.depTypes {
		dep, ok := s.dependency(rc.pkg, depType)
		if !ok {
			s.errorf(rc.elem, "dependency %s has no usable provision methods", depType.String())
			continue
		}
		d.Dependencies = append(d.Dependencies, dep)
	}
	s.scanSurface(rc, d)
	s.descriptors[rc.typ.String()] = d
}

// scanSurface classifies each interface method: bound-instance creator
// methods, subcomponent factory methods, and entry points.
func (s *scan) scanSurface(rc *rawComponent, d *component.Descriptor) {
	p := rc.pkg
	for _, f := range rc.iface.Methods.List {
		if len(f.Names) == 0 {
			continue // embedded interface
		}
		name := f.Names[0].Name
		elem := model.Element{
			Kind:     model.ElementMethod,
			Pkg:      p.PkgPath,
			Name:     rc.typ.Name + "." + name,
			Exported: ast.IsExported(name),
		}
		sig, ok := p.TypesInfo.TypeOf(f.Type).(*types.Signature)
		if !ok {
			s.errorf(elem, "cannot type-check %s", elem.Name)
			continue
		}

		dirs, err := parseDirectives(f.Doc, p.Fset)
		if err != nil {
			s.errorf(elem, "invalid directive: %v", err)
			continue
		}
		if len(dirs) > 0 && dirs[0].name == "bindsinstance" {
			if sig.Params().Len() != 1 {
				s.errorf(elem, "graft:bindsinstance method must take exactly one value")
				continue
			}
			if d.Creator == nil {
				d.Creator = &component.Creator{Type: rc.typ, Element: rc.elem}
			}
			d.Creator.BoundInstances = append(d.Creator.BoundInstances, binding.BoundInstanceDeclaration{
				Key:      keys.Qualified(typeRef(sig.Params().At(0).Type()), qualifierOf(dirs[0])),
				Element:  elem,
				Nullable: dirs[0].flags["nullable"],
			})
			continue
		}

		if sig.Results().Len() != 1 {
			s.errorf(elem, "component method %s must return exactly one value", elem.Name)
			continue
		}
		ret := typeRef(sig.Results().At(0).Type())

		if child, ok := s.byType[ret.String()]; ok && child.subcomponent {
			d.FactoryMethods = append(d.FactoryMethods, component.FactoryMethod{
				Name:    name,
				Element: elem,
				// Child linked in finish, after all descriptors exist.
			})
			continue
		}

		if sig.Params().Len() != 0 {
			s.errorf(elem, "entry point %s must not take parameters", elem.Name)
			continue
		}
		d.EntryPoints = append(d.EntryPoints, component.EntryPoint{
			Name:    name,
			Element: elem,
			Request: binding.NewRequest(ret, nil, elem, false),
		})
	}
}

// linkChildren resolves factory-method and module-installed child
// descriptors.
func (s *scan) linkChildren(rc *rawComponent, d *component.Descriptor) {
	p := rc.pkg
	seen := map[string]bool{}
	add := func(child *component.Descriptor) {
		if child != nil && !seen[child.Type.String()] {
			seen[child.Type.String()] = true
			d.Children = append(d.Children, child)
		}
	}

	kept := d.FactoryMethods[:0]
	for _, fm := range d.FactoryMethods {
		// Recover the child type from the interface method's return type.
		for _, f := range rc.iface.Methods.List {
			if len(f.Names) == 0 || rc.typ.Name+"."+f.Names[0].Name != fm.Element.Name {
				continue
			}
			sig, ok := p.TypesInfo.TypeOf(f.Type).(*types.Signature)
			if !ok || sig.Results().Len() != 1 {
				continue
			}
			fm.Child = s.descriptors[typeRef(sig.Results().At(0).Type()).String()]
		}
		if fm.Child == nil {
			// The child descriptor failed to build; its own diagnostic
			// explains why. The factory method cannot resolve without it.
			continue
		}
		add(fm.Child)
		kept = append(kept, fm)
	}
	d.FactoryMethods = kept

	for _, m := range d.Modules {
		for _, sub := range m.Subcomponents {
			add(s.descriptors[sub.Subcomponent.String()])
		}
	}
}

// dependency inspects a component dependency type: every zero-parameter
// single-result method becomes a provision binding.
func (s *scan) dependency(p *packages.Package, depType model.TypeRef) (component.Dependency, bool) {
	obj := p.Types.Scope().Lookup(depType.Name)
	if obj == nil {
		return component.Dependency{}, false
	}
	dep := component.Dependency{
		Type: depType,
		Element: model.Element{
			Kind:     model.ElementType,
			Pkg:      p.PkgPath,
			Name:     depType.Name,
			Exported: ast.IsExported(depType.Name),
		},
	}
	mset := types.NewMethodSet(obj.Type())
	for i := 0; i < mset.Len(); i++ {
		fn, ok := mset.At(i).Obj().(*types.Func)
		if !ok {
			continue
		}
		sig := fn.Type().(*types.Signature)
		if sig.Params().Len() != 0 || sig.Results().Len() != 1 {
			continue
		}
		dep.Methods = append(dep.Methods, binding.DependencyMethod{
			Name: fn.Name(),
			Key:  keys.New(typeRef(sig.Results().At(0).Type())),
			Element: model.Element{
				Kind:     model.ElementMethod,
				Pkg:      p.PkgPath,
				Name:     depType.Name + "." + fn.Name(),
				Exported: ast.IsExported(fn.Name()),
			},
		})
	}
	return dep, len(dep.Methods) > 0
}
