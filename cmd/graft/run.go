package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/sghaida/graft/component"
	"github.com/sghaida/graft/gen"
	"github.com/sghaida/graft/graph"
	"github.com/sghaida/graft/load"
	"github.com/sghaida/graft/resolver"
	"github.com/sghaida/graft/validate"
)

// errDiagnostics is returned when at least one component had error
// diagnostics; the CLI exits 1 without wrapping it in usage output.
var errDiagnostics = errors.New("validation failed")

// runner holds the wiring for one generate/check invocation.
type runner struct {
	log  *slog.Logger
	opts Options
	out  io.Writer

	// emit is false for check: the full pipeline runs but no files are
	// written.
	emit bool
}

func (r *runner) run(patterns []string) error {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	res, err := load.NewLoader(r.log).Load(patterns...)
	if err != nil {
		return err
	}
	failed := r.report(res.Diagnostics)

	if len(res.Roots) == 0 {
		r.log.Warn("no root components found", "patterns", strings.Join(patterns, " "))
	}

	ctx := resolver.NewContext(r.log)
	for _, ic := range res.Injects {
		ctx.RegisterInject(ic)
	}
	for _, m := range res.Members {
		ctx.RegisterMembers(m)
	}

	for _, root := range res.Roots {
		ok, err := r.component(ctx, root)
		if err != nil {
			return err
		}
		if !ok {
			failed = true
		}
	}

	if failed {
		return errDiagnostics
	}
	return nil
}

// component resolves, validates and optionally emits one root. The returned
// bool is false when diagnostics blocked emission.
func (r *runner) component(ctx *resolver.Context, root *component.Descriptor) (bool, error) {
	r.log.Debug("resolving component", "component", root.Type.String())

	rc, err := resolver.New(ctx).Resolve(root)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", root.Type.Name, err)
	}
	g, err := graph.Assemble(rc)
	if err != nil {
		return false, fmt.Errorf("assembling %s: %w", root.Type.Name, err)
	}

	c := validate.Run(g, r.validators())
	if r.opts.FullGraphValidation {
		r.validateSubgraphs(g, c)
	}
	if r.report(c.Diagnostics()) {
		return false, nil
	}
	if !r.emit {
		return true, nil
	}

	dir, ok := packageDir(root)
	if !ok {
		return false, fmt.Errorf("cannot locate source directory for %s", root.Type.Name)
	}
	em := gen.New(r.log)
	em.Suffix = r.opts.OutSuffix
	em.Header = r.opts.Header
	out, err := em.EmitFile(g, dir)
	if err != nil {
		return false, fmt.Errorf("generating %s: %w", root.Type.Name, err)
	}
	fmt.Fprintln(r.out, out)
	return true, nil
}

// validateSubgraphs re-runs the validators on every subcomponent's derived
// subgraph, so problems reachable only from a child root still surface.
func (r *runner) validateSubgraphs(g *graph.BindingGraph, c *validate.Collector) {
	for _, cn := range g.ComponentNodes() {
		if cn.IsRoot() {
			continue
		}
		sub, ok := g.Subgraph(cn.ComponentPath())
		if !ok {
			continue
		}
		for _, d := range validate.Run(sub, r.validators()).Diagnostics() {
			c.Report(d)
		}
	}
}

func (r *runner) validators() []validate.Validator {
	var out []validate.Validator
	for _, v := range validate.Default() {
		if !r.opts.validatorDisabled(v.Name()) {
			out = append(out, v)
		}
	}
	return out
}

// report prints diagnostics and reports whether any was an error.
func (r *runner) report(diags []validate.Diagnostic) bool {
	failed := false
	for _, d := range diags {
		fmt.Fprintln(r.out, d.String())
		if d.Severity == validate.Error {
			failed = true
		}
	}
	return failed
}

// packageDir derives the source directory of the component declaration from
// its recorded position.
func packageDir(root *component.Descriptor) (string, bool) {
	pos := root.Element.Pos
	if i := strings.LastIndex(pos, ":"); i > 0 {
		pos = pos[:i]
	}
	if pos == "" {
		return "", false
	}
	return filepath.Dir(pos), true
}
