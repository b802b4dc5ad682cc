package gen

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"go/format"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/sghaida/graft/binding"
	"github.com/sghaida/graft/graph"
	"github.com/sghaida/graft/model"
)

// DefaultSuffix is the generated file suffix.
const DefaultSuffix = "_graft.gen.go"

// UnsupportedBindingError marks a graph that validates but uses a binding
// kind this emitter cannot express yet.
type UnsupportedBindingError struct {
	Kind    binding.Kind
	Element model.Element
}

// Error implements the error interface.
func (e *UnsupportedBindingError) Error() string {
	msg := "cannot generate code for " + e.Kind.String() + " binding"
	if e.Element.Name != "" {
		msg += " declared at " + e.Element.String()
	}
	return msg
}

// Emitter turns a validated binding graph into Go source. Run it only on
// graphs with no error diagnostics; it assumes every request resolves to
// exactly one binding.
type Emitter struct {
	log *slog.Logger

	// Suffix overrides the generated file suffix.
	Suffix string

	// Header is extra comment text placed under the generated-code marker.
	Header string
}

// New creates an emitter. A nil logger discards progress output.
func New(log *slog.Logger) *Emitter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Emitter{log: log, Suffix: DefaultSuffix}
}

// Emit renders the generated file for the graph's root component, returning
// the file name and formatted source.
func (e *Emitter) Emit(g *graph.BindingGraph) (string, []byte, error) {
	f := newFileBuilder(g, e.Header)
	src, err := f.build()
	if err != nil {
		return "", nil, err
	}
	formatted, err := format.Source(src)
	if err != nil {
		return "", nil, fmt.Errorf("formatting generated source: %w", err)
	}
	name := strings.ToLower(g.Root().Descriptor().Type.Name) + e.suffix()
	return name, formatted, nil
}

// EmitFile emits and writes the file under dir atomically: the content lands
// in a temp file first and is renamed into place, so a crash never leaves a
// half-written generated file.
func (e *Emitter) EmitFile(g *graph.BindingGraph, dir string) (string, error) {
	name, src, err := e.Emit(g)
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	e.log.Info("generated", "file", out)
	return out, nil
}

func (e *Emitter) suffix() string {
	if e.Suffix != "" {
		return e.Suffix
	}
	return DefaultSuffix
}

// graphHash fingerprints the graph shape so regeneration on an unchanged
// graph is detectably identical.
func graphHash(g *graph.BindingGraph) string {
	h := sha256.New()
	for _, n := range g.Nodes() {
		fmt.Fprintln(h, n.ID())
	}
	for _, edge := range g.Edges() {
		fmt.Fprintln(h, edge.From, "->", edge.To)
	}
	return hex.EncodeToString(h.Sum(nil))
}

var fileTpl = template.Must(template.New("file").Parse(`// Code generated by graft; DO NOT EDIT.
// Graph-SHA256: {{.Hash}}
{{- if .Header}}
// {{.Header}}
{{- end}}

package {{.Package}}

{{if .Imports -}}
import (
{{- range .Imports}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)
{{- end}}

{{range .Decls}}
{{.}}
{{end}}`))

type providerRef struct {
	comp *compBuilder
	name string
}

type fileBuilder struct {
	g       *graph.BindingGraph
	header  string
	pkgPath string
	imports *importSet

	comps      []*compBuilder
	byPath     map[string]*compBuilder
	providerOf map[string]providerRef
}

type compBuilder struct {
	file *fileBuilder
	node *graph.ComponentNode

	implName string
	owned    []*graph.BindingNode

	fields      []string // struct field declarations
	ctorParams  []string
	ctorAssigns []string
	scoped      int
	depVars     map[string]string // node ID -> field name
}

func newFileBuilder(g *graph.BindingGraph, header string) *fileBuilder {
	root := g.Root().Descriptor()
	return &fileBuilder{
		g:          g,
		header:     header,
		pkgPath:    root.Element.Pkg,
		imports:    newImportSet(root.Element.Pkg),
		byPath:     map[string]*compBuilder{},
		providerOf: map[string]providerRef{},
	}
}

func (f *fileBuilder) build() ([]byte, error) {
	for _, cn := range f.g.ComponentNodes() {
		c := &compBuilder{
			file:     f,
			node:     cn,
			implName: lowerFirst(cn.Descriptor().Type.Name) + "Impl",
			depVars:  map[string]string{},
		}
		f.comps = append(f.comps, c)
		f.byPath[cn.ComponentPath().String()] = c
	}

	// Assign provider names before rendering so forward references work.
	for _, bn := range f.g.BindingNodes() {
		c := f.byPath[bn.ComponentPath().String()]
		if c == nil {
			continue
		}
		name := "provide" + strconv.Itoa(len(c.owned))
		c.owned = append(c.owned, bn)
		f.providerOf[bn.ID()] = providerRef{comp: c, name: name}
	}

	// Fields first so providers can reference them across components.
	for _, c := range f.comps {
		if err := c.registerFields(); err != nil {
			return nil, err
		}
	}

	var decls []string
	for _, c := range f.comps {
		out, err := c.render()
		if err != nil {
			return nil, err
		}
		decls = append(decls, out...)
	}

	pkgName := f.pkgPath
	if i := strings.LastIndex(pkgName, "/"); i >= 0 {
		pkgName = pkgName[i+1:]
	}

	var buf bytes.Buffer
	err := fileTpl.Execute(&buf, struct {
		Hash    string
		Header  string
		Package string
		Imports []importLine
		Decls   []string
	}{
		Hash:    graphHash(f.g),
		Header:  f.header,
		Package: pkgName,
		Imports: f.imports.lines(),
		Decls:   decls,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// registerFields declares the struct fields every provider may reference:
// the parent pointer, module instances, and the constructor-supplied
// dependency and bound-instance values.
func (c *compBuilder) registerFields() error {
	desc := c.node.Descriptor()

	if !c.node.IsRoot() {
		parent := c.file.byPath[mustParent(c.node.ComponentPath()).String()]
		c.fields = append(c.fields, "parent *"+parent.implName)
	}
	for _, m := range desc.Modules {
		c.fields = append(c.fields, lowerFirst(m.Type.Name)+" "+typeExpr(m.Type, c.file.imports))
	}

	for _, bn := range c.owned {
		var prefix string
		switch bn.Binding().Kind() {
		case binding.ComponentDependency:
			prefix = "dep"
		case binding.BoundInstance:
			prefix = "inst"
		default:
			continue
		}
		field := prefix + strconv.Itoa(len(c.ctorParams))
		c.depVars[bn.ID()] = field
		t := typeExpr(bn.Key().Type, c.file.imports)
		c.fields = append(c.fields, field+" "+t)
		c.ctorParams = append(c.ctorParams, field+" "+t)
		c.ctorAssigns = append(c.ctorAssigns, field+": "+field)
	}
	if !c.node.IsRoot() && len(c.ctorParams) > 0 {
		return &UnsupportedBindingError{Kind: binding.BoundInstance, Element: desc.Element}
	}
	return nil
}

// render produces the impl struct, constructor (root only), entry points,
// factory methods and providers for one component.
func (c *compBuilder) render() ([]string, error) {
	desc := c.node.Descriptor()

	var providers []string
	for _, bn := range c.owned {
		rendered, err := c.provider(bn)
		if err != nil {
			return nil, err
		}
		if rendered != "" {
			providers = append(providers, rendered)
		}
	}

	var decls []string
	var sb strings.Builder
	fmt.Fprintf(&sb, "// %s is the generated implementation of %s.\n", c.implName, desc.Type.Name)
	fmt.Fprintf(&sb, "type %s struct {\n", c.implName)
	for _, f := range c.fields {
		sb.WriteString("\t" + f + "\n")
	}
	sb.WriteString("}")
	decls = append(decls, sb.String())

	if c.node.IsRoot() {
		ifaceType := typeExpr(desc.Type, c.file.imports)
		var ctor strings.Builder
		fmt.Fprintf(&ctor, "// New%s builds the component.\n", desc.Type.Name)
		fmt.Fprintf(&ctor, "func New%s(%s) %s {\n", desc.Type.Name, strings.Join(c.ctorParams, ", "), ifaceType)
		fmt.Fprintf(&ctor, "\treturn &%s{%s}\n}", c.implName, strings.Join(c.ctorAssigns, ", "))
		decls = append(decls, ctor.String())
	}

	entries, err := c.entryPoints()
	if err != nil {
		return nil, err
	}
	decls = append(decls, entries...)

	factories, err := c.factoryMethods()
	if err != nil {
		return nil, err
	}
	decls = append(decls, factories...)

	decls = append(decls, providers...)
	return decls, nil
}

func mustParent(p graph.ComponentPath) graph.ComponentPath {
	parent, _ := p.Parent()
	return parent
}

// entryPoints renders one exported method per entry point, delegating to the
// target provider.
func (c *compBuilder) entryPoints() ([]string, error) {
	desc := c.node.Descriptor()
	var deps []graph.Edge
	for _, e := range c.file.g.OutEdges(c.node.ID()) {
		if e.Kind == graph.DependencyEdge {
			deps = append(deps, e)
		}
	}
	if len(deps) != len(desc.EntryPoints) {
		return nil, model.Internalf("%d entry edges for %d entry points at %s",
			len(deps), len(desc.EntryPoints), c.node.ComponentPath())
	}

	var out []string
	for i, ep := range desc.EntryPoints {
		expr, err := c.requestExpr(deps[i])
		if err != nil {
			return nil, err
		}
		retType := typeExpr(requestResultType(deps[i].Request), c.file.imports)
		out = append(out, fmt.Sprintf("func (c *%s) %s() %s {\n\treturn %s\n}",
			c.implName, ep.Name, retType, expr))
	}
	return out, nil
}

// requestResultType reconstructs the declared type of a request from its key
// and request kind.
func requestResultType(req binding.DependencyRequest) model.TypeRef {
	t := req.Key.Type
	switch req.Kind {
	case binding.ProviderRequest:
		return model.WrapFramework(model.FrameworkProvider, t)
	case binding.LazyRequest:
		return model.PointerTo(model.WrapFramework(model.FrameworkLazy, t))
	case binding.ProviderOfLazy:
		return model.WrapFramework(model.FrameworkProvider,
			model.PointerTo(model.WrapFramework(model.FrameworkLazy, t)))
	default:
		return t
	}
}

func (c *compBuilder) factoryMethods() ([]string, error) {
	var out []string
	for _, fm := range c.node.Descriptor().FactoryMethods {
		child := c.file.byPath[c.node.ComponentPath().Child(fm.Child.Type).String()]
		if child == nil {
			continue // pruned
		}
		retType := typeExpr(fm.Child.Type, c.file.imports)
		out = append(out, fmt.Sprintf("func (c *%s) %s() %s {\n\treturn &%s{parent: c}\n}",
			c.implName, fm.Name, retType, child.implName))
	}
	return out, nil
}

// provider renders the provider method for one binding node, memoized when
// the binding is scoped. Bindings whose value is a plain field produce no
// method of their own.
func (c *compBuilder) provider(bn *graph.BindingNode) (string, error) {
	switch bn.Binding().Kind() {
	case binding.ComponentDependency, binding.BoundInstance, binding.Component:
		return "", nil
	}

	expr, err := c.bindingExpr(bn)
	if err != nil {
		return "", err
	}
	name := c.file.providerOf[bn.ID()].name
	retType := typeExpr(providedType(bn), c.file.imports)

	if !bn.Binding().Scope().IsUnscoped() {
		n := strconv.Itoa(c.scoped)
		c.scoped++
		c.fields = append(c.fields,
			"once"+n+" "+c.file.imports.alias("sync")+".Once",
			"val"+n+" "+retType)
		return fmt.Sprintf("func (c *%s) %s() %s {\n\tc.once%s.Do(func() {\n\t\tc.val%s = %s\n\t})\n\treturn c.val%s\n}",
			c.implName, name, retType, n, n, expr, n), nil
	}
	return fmt.Sprintf("func (c *%s) %s() %s {\n\treturn %s\n}", c.implName, name, retType, expr), nil
}

// providedType is the Go type a provider returns for the binding.
func providedType(bn *graph.BindingNode) model.TypeRef {
	return bn.Key().Type
}

// targetExpr renders the value expression for a dependency edge target: a
// provider call, possibly through the parent chain, or a field access.
func (c *compBuilder) targetExpr(to string) (string, error) {
	node, ok := c.file.g.Node(to)
	if !ok {
		return "", model.Internalf("edge target %s not in graph", to)
	}
	bn, ok := node.(*graph.BindingNode)
	if !ok {
		return "", model.Internalf("emitting a graph with unresolved nodes: %s", to)
	}

	owner := c.file.byPath[bn.ComponentPath().String()]
	recv := "c"
	for i := len(c.node.ComponentPath()); i > len(bn.ComponentPath()); i-- {
		recv += ".parent"
	}

	switch bn.Binding().Kind() {
	case binding.Component:
		return recv, nil
	case binding.ComponentDependency, binding.BoundInstance:
		return recv + "." + owner.depVars[bn.ID()], nil
	default:
		return recv + "." + c.file.providerOf[bn.ID()].name + "()", nil
	}
}

// requestExpr renders the argument expression for one dependency edge,
// wrapping the target per the request kind.
func (c *compBuilder) requestExpr(e graph.Edge) (string, error) {
	call, err := c.targetExpr(e.To)
	if err != nil {
		return "", err
	}
	inj := func() string { return c.file.imports.alias(model.RuntimePkg) }
	t := func() string { return typeExpr(e.Request.Key.Type, c.file.imports) }

	switch e.Request.Kind {
	case binding.Instance, binding.MembersInjectionRequest:
		return call, nil
	case binding.ProviderRequest:
		return fmt.Sprintf("%s.Provider[%s](func() %s { return %s })", inj(), t(), t(), call), nil
	case binding.LazyRequest:
		return fmt.Sprintf("%s.MakeLazy(func() %s { return %s })", inj(), t(), call), nil
	case binding.ProviderOfLazy:
		lazy := fmt.Sprintf("%s.MakeLazy(func() %s { return %s })", inj(), t(), call)
		return fmt.Sprintf("%s.Provider[*%s.Lazy[%s]](func() *%s.Lazy[%s] { return %s })",
			inj(), inj(), t(), inj(), t(), lazy), nil
	default:
		elem := e.Element
		return "", &UnsupportedBindingError{Kind: binding.Production, Element: elem}
	}
}

// requestEdges returns the dependency edges leaving the node, in request
// order, requiring exactly one edge per request.
func (c *compBuilder) requestEdges(bn *graph.BindingNode) ([]graph.Edge, error) {
	var deps []graph.Edge
	for _, e := range c.file.g.OutEdges(bn.ID()) {
		if e.Kind == graph.DependencyEdge {
			deps = append(deps, e)
		}
	}
	if len(deps) != len(bn.Binding().Requests()) {
		return nil, model.Internalf("emitting an unvalidated graph: %s has %d edges for %d requests",
			bn.Key(), len(deps), len(bn.Binding().Requests()))
	}
	return deps, nil
}

func (c *compBuilder) bindingExpr(bn *graph.BindingNode) (string, error) {
	b := bn.Binding()
	deps, err := c.requestEdges(bn)
	if err != nil {
		return "", err
	}
	args := make([]string, len(deps))
	for i, e := range deps {
		if args[i], err = c.requestExpr(e); err != nil {
			return "", err
		}
	}

	elem, _ := b.Element()
	switch b.Kind() {
	case binding.Injection:
		fn := methodName(elem.Name)
		if a := c.file.imports.alias(elem.Pkg); a != "" {
			fn = a + "." + fn
		}
		return fn + "(" + strings.Join(args, ", ") + ")", nil

	case binding.Provision:
		mod, _ := b.Module()
		recv := "c"
		for i := len(c.node.ComponentPath()); i > len(bn.ComponentPath()); i-- {
			recv += ".parent"
		}
		return recv + "." + lowerFirst(mod.Name) + "." + methodName(elem.Name) +
			"(" + strings.Join(args, ", ") + ")", nil

	case binding.Delegate:
		return args[0], nil

	case binding.ComponentProvision:
		return args[0] + "." + methodName(elem.Name) + "()", nil

	case binding.SubcomponentCreator:
		for _, e := range c.file.g.OutEdges(bn.ID()) {
			if e.Kind != graph.SubcomponentCreatorEdge {
				continue
			}
			child, ok := c.file.g.Node(e.To)
			if !ok {
				continue
			}
			impl := c.file.byPath[child.ComponentPath().String()].implName
			return "&" + impl + "{parent: c}", nil
		}
		return "", model.Internalf("subcomponent creator %s has no child edge", bn.Key())

	case binding.MultiboundSet:
		elemType, _ := bn.Key().Type.Elem()
		expr := "[]" + typeExpr(elemType, c.file.imports) + "{}"
		for i, e := range deps {
			target, ok := c.file.g.Node(e.To)
			if !ok {
				continue
			}
			tb := target.(*graph.BindingNode).Binding()
			if tb.Contribution() == binding.ElementsIntoSet {
				expr = "append(" + expr + ", " + args[i] + "...)"
			} else {
				expr = "append(" + expr + ", " + args[i] + ")"
			}
		}
		return expr, nil

	case binding.MultiboundMap:
		keyType, _ := bn.Key().Type.MapKey()
		valType, _ := bn.Key().Type.Elem()
		var sb strings.Builder
		sb.WriteString("map[" + typeExpr(keyType, c.file.imports) + "]" + typeExpr(valType, c.file.imports) + "{")
		for i, e := range deps {
			target, ok := c.file.g.Node(e.To)
			if !ok {
				continue
			}
			mk := target.(*graph.BindingNode).Binding().MapKey()
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(mapEntryKey(mk) + ": " + args[i])
		}
		sb.WriteString("}")
		return sb.String(), nil

	case binding.Optional:
		inj := c.file.imports.alias(model.RuntimePkg)
		if len(args) == 1 {
			return inj + ".Of(" + args[0] + ")", nil
		}
		inner, _, _ := optionalInner(bn)
		return inj + ".Absent[" + typeExpr(inner, c.file.imports) + "]()", nil

	case binding.MembersInjection:
		inj := c.file.imports.alias(model.RuntimePkg)
		_, inner, _ := model.FrameworkOf(bn.Key().Type)
		t := typeExpr(inner, c.file.imports)
		var body strings.Builder
		for i, req := range b.Requests() {
			field := methodName(req.Element.Name)
			fmt.Fprintf(&body, "\t\ttarget.%s = %s\n", field, args[i])
		}
		return fmt.Sprintf("%s.MembersInjector[%s](func(target %s) {\n%s\t})", inj, t, t, body.String()), nil

	default:
		return "", &UnsupportedBindingError{Kind: b.Kind(), Element: elem}
	}
}

// mapEntryKey renders a map contribution key as a Go expression. Keys arrive
// unquoted from the directive parser; a key already carrying quotes is kept
// as written.
func mapEntryKey(mk string) string {
	if len(mk) >= 2 && strings.HasPrefix(mk, `"`) && strings.HasSuffix(mk, `"`) {
		return mk
	}
	return strconv.Quote(mk)
}

func optionalInner(bn *graph.BindingNode) (model.TypeRef, model.FrameworkKind, bool) {
	fw, inner, ok := model.FrameworkOf(bn.Key().Type)
	return inner, fw, ok
}
