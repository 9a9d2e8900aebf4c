package geom

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/scenec/lang"
)

// Filter is a compiled boolean expression over primitives.
//
// The expression sees these variables:
//
//	kind            "strip", "ray", "point" or "procedural"
//	name            path of the source object, e.g. "world.data[2]"
//	color           [r, g, b], or nil when unset
//	opaque          bool
//	geometry_index  int
//	primitive_index int (0 for points)
//	vertices        number of vertices (strip), 2 (ray), 8 (procedural)
//	                or 1 (point)
//	fields          map of the user fields visible at the primitive
//
// For example:
//
//	kind == "strip" && color != nil && color[0] > 128
//	fields.material == 3
type Filter struct {
	program *vm.Program
	source  string
}

// exemplar declares the variable types of a [Filter] for type checking.
func exemplar() map[string]any {
	return map[string]any{
		"kind":            "",
		"name":            "",
		"color":           []any{},
		"opaque":          false,
		"geometry_index":  0,
		"primitive_index": 0,
		"vertices":        0,
		"fields":          map[string]any{},
	}
}

// CompileFilter compiles source into a [Filter]. An empty source yields a
// nil Filter, which matches everything.
func CompileFilter(source string) (*Filter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, nil
	}

	program, err := expr.Compile(source, expr.Env(exemplar()), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", source, err)
	}

	return &Filter{program: program, source: source}, nil
}

// String returns the source expression of f.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}

	return f.source
}

// Match reports whether p satisfies f.
func (f *Filter) Match(p Prim) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, err := vm.Run(f.program, Env(p))
	if err != nil {
		return false, fmt.Errorf("evaluate %q on %s: %w", f.source, p.Meta().Name, err)
	}

	ok, _ := out.(bool)

	return ok, nil
}

// Env returns the variables p exposes to a [Filter].
func Env(p Prim) map[string]any {
	m := p.Meta()

	env := exemplar()
	env["kind"] = p.Kind.String()
	env["name"] = m.Name
	env["opaque"] = m.Opaque
	env["geometry_index"] = int(m.GeometryIndex)
	env["primitive_index"] = int(m.PrimitiveIndex)

	if m.Color != nil {
		env["color"] = []any{int(m.Color[0]), int(m.Color[1]), int(m.Color[2])}
	} else {
		env["color"] = nil
	}

	switch p.Kind {
	case lang.KindStrip:
		env["vertices"] = len(p.Strip.Vertices)
	case lang.KindRay:
		env["vertices"] = 2
	case lang.KindProcedural:
		env["vertices"] = 8
	default:
		env["vertices"] = 1
	}

	fields := make(map[string]any, m.Fields.Len())
	for k, b := range m.Fields.All() {
		fields[k] = b.Native()
	}

	env["fields"] = fields

	return env
}

// Select returns the primitives of l matched by f, in order. Primitive
// indices are left as assigned over the whole scene.
func Select(l *List, f *Filter) (*List, error) {
	if f == nil {
		return l, nil
	}

	out := new(List)

	for _, p := range l.Prims {
		ok, err := f.Match(p)
		if err != nil {
			return nil, err
		}

		if ok {
			out.add(p)
		}
	}

	return out, nil
}
