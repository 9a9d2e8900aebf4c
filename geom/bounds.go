package geom

import (
	"math"

	"github.com/ardnew/scenec/linear"
)

// Bounds is an axis-aligned bounding box. The zero value is not empty; use
// [EmptyBounds] as the identity for [Bounds.Union].
type Bounds struct {
	Min linear.V3
	Max linear.V3
}

// EmptyBounds returns a box containing nothing.
func EmptyBounds() Bounds {
	inf := math.Inf(1)

	return Bounds{
		Min: linear.V3{inf, inf, inf},
		Max: linear.V3{-inf, -inf, -inf},
	}
}

// Empty reports whether b contains no point.
func (b Bounds) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Add returns b grown to contain p.
func (b Bounds) Add(p linear.V3) Bounds {
	return Bounds{Min: linear.MinV3(b.Min, p), Max: linear.MaxV3(b.Max, p)}
}

// Union returns the smallest box containing b and c.
func (b Bounds) Union(c Bounds) Bounds {
	return Bounds{Min: linear.MinV3(b.Min, c.Min), Max: linear.MaxV3(b.Max, c.Max)}
}

// Centroid returns the center of b.
func (b Bounds) Centroid() linear.V3 {
	return linear.ScaleV3(0.5, linear.AddV3(b.Min, b.Max))
}

// LongestAxis returns the index of the widest dimension of b, preferring
// the lowest index on ties.
func (b Bounds) LongestAxis() int {
	d := linear.SubV3(b.Max, b.Min)

	axis := 0
	for i := 1; i < len(d); i++ {
		if d[i] > d[axis] {
			axis = i
		}
	}

	return axis
}

// Corner returns corner i of b, 0 <= i < 8. Bits 2, 1 and 0 of i select
// the max side of x, y and z, in that order.
func (b Bounds) Corner(i int) linear.V3 {
	var c linear.V3

	for axis := range c {
		if i&(4>>axis) != 0 {
			c[axis] = b.Max[axis]
		} else {
			c[axis] = b.Min[axis]
		}
	}

	return c
}

// Transform returns the bounds of b after the affine map a.
func (b Bounds) Transform(a *linear.A) Bounds {
	out := EmptyBounds()
	for i := range 8 {
		out = out.Add(linear.Clean(a.Point(b.Corner(i))))
	}

	return out
}

// TriangleBounds returns the bounds of t.
func TriangleBounds(t Triangle) Bounds {
	b := EmptyBounds()
	for _, v := range t.Vertices {
		b = b.Add(v)
	}

	return b
}

// RayBounds returns the bounds of the segment of r.
func RayBounds(r *Ray) Bounds {
	return EmptyBounds().Add(r.Start()).Add(r.End())
}

// Bounds returns the bounds of every primitive in l.
func (l *List) Bounds() Bounds {
	b := EmptyBounds()

	for _, p := range l.Prims {
		switch {
		case p.Strip != nil:
			for _, v := range p.Strip.Vertices {
				b = b.Add(v)
			}
		case p.Ray != nil:
			b = b.Union(RayBounds(p.Ray))
		case p.Point != nil:
			b = b.Add(p.Point.Position)
		case p.Procedural != nil:
			b = b.Union(p.Procedural.Bounds)
		}
	}

	return b
}
