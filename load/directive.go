package load

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"
)

const directivePrefix = "//graft:"

// directive is one parsed //graft: comment line.
type directive struct {
	name  string
	opts  map[string]string
	flags map[string]bool
	pos   string
}

// valueOptions and flagOptions define the closed option surface per
// directive name. Anything else is a malformed directive.
var valueOptions = map[string]map[string]bool{
	"component":     {"modules": true, "deps": true, "scope": true},
	"subcomponent":  {"modules": true, "deps": true, "scope": true},
	"module":        {"includes": true},
	"provides":      {"scope": true, "qualifier": true, "key": true},
	"binds":         {"scope": true, "qualifier": true, "key": true},
	"multibinds":    {"qualifier": true},
	"inject":        {"scope": true},
	"bindsinstance": {"qualifier": true},
}

var flagOptions = map[string]map[string]bool{
	"provides":      {"intoset": true, "elementsintoset": true, "intomap": true, "nullable": true},
	"binds":         {"intoset": true, "elementsintoset": true, "intomap": true},
	"bindsinstance": {"nullable": true},
	"subcomponent":  {},
	"component":     {},
	"module":        {},
	"multibinds":    {},
	"inject":        {},
}

// get returns a value option, or "" when unset.
func (d directive) get(name string) string { return d.opts[name] }

// list splits a comma-separated value option.
func (d directive) list(name string) []string {
	v := d.opts[name]
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseDirectives extracts every //graft: line from a doc comment. A nil
// group parses to nothing.
func parseDirectives(doc *ast.CommentGroup, fset *token.FileSet) ([]directive, error) {
	if doc == nil {
		return nil, nil
	}
	var out []directive
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, directivePrefix) {
			continue
		}
		pos := ""
		if fset != nil {
			p := fset.Position(c.Pos())
			pos = fmt.Sprintf("%s:%d", p.Filename, p.Line)
		}
		d, err := parseDirective(strings.TrimPrefix(c.Text, directivePrefix), pos)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func parseDirective(text, pos string) (directive, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return directive{}, fmt.Errorf("empty graft directive")
	}
	d := directive{
		name:  fields[0],
		opts:  map[string]string{},
		flags: map[string]bool{},
		pos:   pos,
	}
	values, okName := valueOptions[d.name]
	flags := flagOptions[d.name]
	if !okName {
		return directive{}, fmt.Errorf("unknown directive %q", d.name)
	}

	for _, f := range fields[1:] {
		if name, value, ok := strings.Cut(f, "="); ok {
			if !values[name] {
				return directive{}, fmt.Errorf("directive %q does not accept option %q", d.name, name)
			}
			d.opts[name] = strings.Trim(value, `"`)
			continue
		}
		if !flags[f] {
			return directive{}, fmt.Errorf("directive %q does not accept flag %q", d.name, f)
		}
		d.flags[f] = true
	}

	if d.flags["intomap"] && d.opts["key"] == "" {
		return directive{}, fmt.Errorf("directive %q with intomap requires key=", d.name)
	}
	return d, nil
}
