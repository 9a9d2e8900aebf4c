package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/scenec/geom"
	"github.com/ardnew/scenec/lang"
	"github.com/ardnew/scenec/linear"
)

// inspectIndent is the indent width of structured inspect output.
const inspectIndent = 2

// Inspect prints the flattened primitives of a scene.
type Inspect struct {
	Source `embed:""`

	Where string `help:"Expression selecting the primitives to print." short:"w"`
	As    string `default:"text" enum:"text,json,yaml" help:"Output encoding."`
}

// Run executes the inspect command.
func (i *Inspect) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s, err := i.compile(ctx)
	if err != nil {
		return err
	}

	l, err := s.selection(i.Where)
	if err != nil {
		return err
	}

	w := stdout(ctx)

	switch i.As {
	case "json":
		data, err := json.MarshalIndent(makeListing(l), "", strings.Repeat(" ", inspectIndent))
		if err != nil {
			return ErrMarshal.With(slog.String("as", i.As)).Wrap(err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case "yaml":
		data, err := yaml.MarshalContext(ctx, makeListing(l), yaml.Indent(inspectIndent))
		if err != nil {
			return ErrMarshal.With(slog.String("as", i.As)).Wrap(err)
		}

		_, err = w.Write(data)

		return err

	default:
		return writeListing(w, l)
	}
}

// listing is the structured form of a geometry list.
type listing struct {
	Stats      geom.Stats `json:"stats"      yaml:"stats"`
	Primitives []record   `json:"primitives" yaml:"primitives"`
}

// record is one primitive of a [listing]. Only the geometry fields of its
// kind are set.
type record struct { //nolint:govet // field order is output order
	Kind           string         `json:"kind"                      yaml:"kind"`
	Name           string         `json:"name"                      yaml:"name"`
	PrimitiveIndex *uint32        `json:"primitive_index,omitempty" yaml:"primitive_index,omitempty"`
	GeometryIndex  uint32         `json:"geometry_index"            yaml:"geometry_index"`
	Opaque         bool           `json:"opaque"                    yaml:"opaque"`
	Color          *[3]int        `json:"color,omitempty"           yaml:"color,omitempty"`
	Vertices       [][3]float64   `json:"vertices,omitempty"        yaml:"vertices,omitempty"`
	Origin         *[3]float64    `json:"origin,omitempty"          yaml:"origin,omitempty"`
	Direction      *[3]float64    `json:"direction,omitempty"       yaml:"direction,omitempty"`
	Min            *float64       `json:"min,omitempty"             yaml:"min,omitempty"`
	Max            *float64       `json:"max,omitempty"             yaml:"max,omitempty"`
	Position       *[3]float64    `json:"position,omitempty"        yaml:"position,omitempty"`
	MinBounds      *[3]float64    `json:"min_bounds,omitempty"      yaml:"min_bounds,omitempty"`
	MaxBounds      *[3]float64    `json:"max_bounds,omitempty"      yaml:"max_bounds,omitempty"`
	Fields         map[string]any `json:"fields,omitempty"          yaml:"fields,omitempty"`
}

func makeListing(l *geom.List) listing {
	out := listing{Stats: l.Stats(), Primitives: make([]record, 0, len(l.Prims))}

	for _, p := range l.Prims {
		m := p.Meta()

		r := record{
			Kind:          p.Kind.String(),
			Name:          m.Name,
			GeometryIndex: m.GeometryIndex,
			Opaque:        m.Opaque,
		}

		if m.Color != nil {
			r.Color = &[3]int{int(m.Color[0]), int(m.Color[1]), int(m.Color[2])}
		}

		if m.Fields.Len() > 0 {
			r.Fields = make(map[string]any, m.Fields.Len())
			for k, b := range m.Fields.All() {
				r.Fields[k] = b.Native()
			}
		}

		switch p.Kind {
		case lang.KindStrip:
			r.PrimitiveIndex = &m.PrimitiveIndex

			r.Vertices = make([][3]float64, len(p.Strip.Vertices))
			for j, v := range p.Strip.Vertices {
				r.Vertices[j] = v
			}

		case lang.KindRay:
			r.PrimitiveIndex = &m.PrimitiveIndex
			r.Origin = vec(p.Ray.Origin)
			r.Direction = vec(p.Ray.Direction)
			r.Min, r.Max = &p.Ray.Min, &p.Ray.Max

		case lang.KindPoint:
			r.Position = vec(p.Point.Position)

		case lang.KindProcedural:
			r.PrimitiveIndex = &m.PrimitiveIndex
			r.MinBounds = vec(p.Procedural.Bounds.Min)
			r.MaxBounds = vec(p.Procedural.Bounds.Max)
		}

		out.Primitives = append(out.Primitives, r)
	}

	return out
}

func vec(v linear.V3) *[3]float64 {
	a := [3]float64(v)

	return &a
}

// writeListing prints one line per primitive followed by a summary.
func writeListing(w io.Writer, l *geom.List) error {
	var sb strings.Builder

	for _, p := range l.Prims {
		m := p.Meta()

		fmt.Fprintf(&sb, "%-6s %s", p.Kind, m.Name)

		if p.Kind != lang.KindPoint {
			fmt.Fprintf(&sb, " prim=%d", m.PrimitiveIndex)
		}

		fmt.Fprintf(&sb, " geom=%d opaque=%t", m.GeometryIndex, m.Opaque)

		if m.Color != nil {
			fmt.Fprintf(&sb, " color=#%02x%02x%02x", m.Color[0], m.Color[1], m.Color[2])
		}

		switch p.Kind {
		case lang.KindStrip:
			fmt.Fprintf(&sb, " vertices=%d", len(p.Strip.Vertices))
		case lang.KindRay:
			fmt.Fprintf(&sb, " origin=%v direction=%v t=[%g,%g]",
				[3]float64(p.Ray.Origin), [3]float64(p.Ray.Direction), p.Ray.Min, p.Ray.Max)
		case lang.KindPoint:
			fmt.Fprintf(&sb, " position=%v", [3]float64(p.Point.Position))
		case lang.KindProcedural:
			fmt.Fprintf(&sb, " bounds=%v..%v",
				[3]float64(p.Procedural.Bounds.Min), [3]float64(p.Procedural.Bounds.Max))
		}

		sb.WriteByte('\n')
	}

	st := l.Stats()
	fmt.Fprintf(&sb, "%d strips (%d triangles), %d rays, %d points, %d procedurals\n",
		st.Strips, st.Triangles, st.Rays, st.Points, st.Procedurals)

	_, err := io.WriteString(w, sb.String())

	return err
}
