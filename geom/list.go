package geom

import (
	"iter"

	"github.com/ardnew/scenec/lang"
	"github.com/ardnew/scenec/linear"
)

// Meta holds the resolved attributes of a flattened primitive.
type Meta struct {
	// Fields are the user fields visible at the primitive, nearest first.
	Fields lang.Fields
	// Color is nil when no color was set anywhere above the primitive.
	Color *lang.Color
	// Name is the path of the source object in the scene.
	Name string
	// Source is the object the primitive was flattened from. Instanced
	// copies share a Source.
	Source         lang.ObjectRef
	GeometryIndex  uint32
	PrimitiveIndex uint32
	Opaque         bool
}

// Strip is a triangle strip in world space.
type Strip struct {
	Meta

	Vertices []linear.V3
}

// Triangle is one triangle of a [Strip], in winding order.
type Triangle struct {
	Meta

	Vertices [3]linear.V3
}

// Ray is a segment origin + t·direction, t in [Min, Max], in world space.
type Ray struct {
	Meta

	Origin    linear.V3
	Direction linear.V3
	Min       float64
	Max       float64
}

// Start returns the point at parameter Min.
func (r *Ray) Start() linear.V3 {
	return linear.AddV3(r.Origin, linear.ScaleV3(r.Min, r.Direction))
}

// End returns the point at parameter Max.
func (r *Ray) End() linear.V3 {
	return linear.AddV3(r.Origin, linear.ScaleV3(r.Max, r.Direction))
}

// Point is a marker position in world space.
type Point struct {
	Meta

	Position linear.V3
}

// Procedural is a world-space box whose contents a ray tracer resolves
// with its own intersection code.
type Procedural struct {
	Meta

	Bounds Bounds
}

// Prim is one flattened primitive. Exactly one pointer, selected by Kind, is
// non-nil.
type Prim struct {
	Strip      *Strip
	Ray        *Ray
	Point      *Point
	Procedural *Procedural
	Kind       lang.Kind
}

// Meta returns the attributes of p.
func (p Prim) Meta() *Meta {
	switch p.Kind {
	case lang.KindStrip:
		return &p.Strip.Meta
	case lang.KindRay:
		return &p.Ray.Meta
	case lang.KindProcedural:
		return &p.Procedural.Meta
	default:
		return &p.Point.Meta
	}
}

// List is the flattened geometry of a scene in traversal order.
type List struct {
	Prims []Prim
}

func (l *List) add(p Prim) { l.Prims = append(l.Prims, p) }

// Strips returns an iterator over the strips of l.
func (l *List) Strips() iter.Seq[*Strip] {
	return func(yield func(*Strip) bool) {
		for _, p := range l.Prims {
			if p.Kind == lang.KindStrip && !yield(p.Strip) {
				return
			}
		}
	}
}

// Rays returns an iterator over the rays of l.
func (l *List) Rays() iter.Seq[*Ray] {
	return func(yield func(*Ray) bool) {
		for _, p := range l.Prims {
			if p.Kind == lang.KindRay && !yield(p.Ray) {
				return
			}
		}
	}
}

// Points returns an iterator over the points of l.
func (l *List) Points() iter.Seq[*Point] {
	return func(yield func(*Point) bool) {
		for _, p := range l.Prims {
			if p.Kind == lang.KindPoint && !yield(p.Point) {
				return
			}
		}
	}
}

// Procedurals returns an iterator over the procedural boxes of l.
func (l *List) Procedurals() iter.Seq[*Procedural] {
	return func(yield func(*Procedural) bool) {
		for _, p := range l.Prims {
			if p.Kind == lang.KindProcedural && !yield(p.Procedural) {
				return
			}
		}
	}
}

// Triangles returns an iterator over the triangles of every strip of l.
func (l *List) Triangles() iter.Seq[Triangle] {
	return func(yield func(Triangle) bool) {
		for s := range l.Strips() {
			for _, t := range Triangulate(s) {
				if !yield(t) {
					return
				}
			}
		}
	}
}

// Stats counts the primitives of a [List].
type Stats struct {
	Strips      int `json:"strips"      yaml:"strips"`
	Triangles   int `json:"triangles"   yaml:"triangles"`
	Rays        int `json:"rays"        yaml:"rays"`
	Points      int `json:"points"      yaml:"points"`
	Procedurals int `json:"procedurals" yaml:"procedurals"`
}

// Stats counts the primitives of l.
func (l *List) Stats() (s Stats) {
	for _, p := range l.Prims {
		switch p.Kind {
		case lang.KindStrip:
			s.Strips++
			s.Triangles += len(p.Strip.Vertices) - 2
		case lang.KindRay:
			s.Rays++
		case lang.KindPoint:
			s.Points++
		case lang.KindProcedural:
			s.Procedurals++
		}
	}

	return s
}
