package gen

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sghaida/graft/model"
)

// importSet assigns stable aliases to imported packages. The package the
// generated file lives in is never imported.
type importSet struct {
	self    string
	byPath  map[string]string
	aliases map[string]bool
}

func newImportSet(self string) *importSet {
	return &importSet{self: self, byPath: map[string]string{}, aliases: map[string]bool{}}
}

// alias returns the qualifier for a package path, registering it on first
// use. The empty string means no qualifier is needed.
func (s *importSet) alias(path string) string {
	if path == "" || path == s.self {
		return ""
	}
	if a, ok := s.byPath[path]; ok {
		return a
	}
	base := path
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.Map(func(r rune) rune {
		if r == '.' || r == '-' {
			return '_'
		}
		return r
	}, base)
	a := base
	for n := 2; s.aliases[a]; n++ {
		a = base + strconv.Itoa(n)
	}
	s.aliases[a] = true
	s.byPath[path] = a
	return a
}

type importLine struct {
	Alias string
	Path  string
}

// lines returns the import block in sorted path order, omitting aliases that
// match the path base.
func (s *importSet) lines() []importLine {
	paths := make([]string, 0, len(s.byPath))
	for p := range s.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]importLine, 0, len(paths))
	for _, p := range paths {
		a := s.byPath[p]
		base := p
		if i := strings.LastIndex(base, "/"); i >= 0 {
			base = base[i+1:]
		}
		if a == base {
			a = ""
		}
		out = append(out, importLine{Alias: a, Path: p})
	}
	return out
}

// typeExpr renders a TypeRef as Go source, registering imports as needed.
func typeExpr(t model.TypeRef, imports *importSet) string {
	var sb strings.Builder
	writeTypeExpr(&sb, t, imports)
	return sb.String()
}

func writeTypeExpr(sb *strings.Builder, t model.TypeRef, imports *importSet) {
	switch t.Kind {
	case model.KindPointer:
		sb.WriteByte('*')
		if len(t.Args) == 1 {
			writeTypeExpr(sb, t.Args[0], imports)
		}
	case model.KindSlice:
		sb.WriteString("[]")
		if len(t.Args) == 1 {
			writeTypeExpr(sb, t.Args[0], imports)
		}
	case model.KindMap:
		sb.WriteString("map[")
		writeTypeExpr(sb, t.Args[0], imports)
		sb.WriteByte(']')
		writeTypeExpr(sb, t.Args[1], imports)
	default:
		if a := imports.alias(t.Pkg); a != "" {
			sb.WriteString(a)
			sb.WriteByte('.')
		}
		sb.WriteString(t.Name)
		if len(t.Args) > 0 {
			sb.WriteByte('[')
			for i, arg := range t.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				writeTypeExpr(sb, arg, imports)
			}
			sb.WriteByte(']')
		}
	}
}

// methodName extracts the method part of a "Type.Method" element name.
func methodName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// lowerFirst makes an unexported identifier from a type name.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
