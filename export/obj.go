package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ardnew/scenec/geom"
	"github.com/ardnew/scenec/lang"
	"github.com/ardnew/scenec/linear"
)

// DefaultMaterial is the material of primitives without a color.
const DefaultMaterial = "color_000000"

// Obj exports geometry as Wavefront OBJ for viewing in modeling tools.
//
// Each strip becomes an object "stripN" of triangles, each ray an object
// "rayN" with one line element from its Min to its Max point, each point
// an object "pointN" with one point element, and each procedural box an
// object "proceduralN" of 8 vertices, filled when opaque and wireframe
// otherwise. Every distinct color becomes a material named after its hex
// code.
//
// With Boxes set, the boxes of the [Bvh] over l follow as wireframe objects
// "boxN" in the default material.
type Obj struct {
	// Header lines are written as comments at the top of the output.
	Header []string
	// Materials receives the material library when non-nil. Otherwise the
	// materials are written inline, before the geometry.
	Materials io.Writer
	// MaterialLib is the file name referenced by "mtllib" when Materials is
	// set.
	MaterialLib string
	// BoxSize bounds the children per box when Boxes is set, as in
	// [NewBvh].
	BoxSize int
	Boxes   bool
}

// boxFaces and boxEdges index the corners of a box as ordered by
// [geom.Bounds.Corner].
var (
	boxFaces = [6][4]int{
		{0, 1, 3, 2}, {0, 1, 5, 4}, {1, 3, 7, 5},
		{4, 5, 7, 6}, {2, 3, 7, 6}, {0, 2, 6, 4},
	}
	boxEdges = [][]int{
		{0, 1, 3, 2, 0}, {4, 5, 7, 6, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
)

// MaterialName returns the name of the material for c, or
// [DefaultMaterial] for nil.
func MaterialName(c *lang.Color) string {
	if c == nil {
		return DefaultMaterial
	}

	return "color_" + strings.TrimPrefix(colorOf(c).Hex(), "#")
}

func colorOf(c *lang.Color) colorful.Color {
	if c == nil {
		return colorful.Color{}
	}

	return colorful.Color{
		R: float64(c[0]) / 255,
		G: float64(c[1]) / 255,
		B: float64(c[2]) / 255,
	}
}

// Encode writes l to w.
func (o Obj) Encode(w io.Writer, l *geom.List) error {
	var tree *Bvh

	if o.Boxes {
		var err error
		if tree, err = NewBvh(l, o.BoxSize); err != nil {
			return err
		}
	}

	out := &lineWriter{w: bufio.NewWriter(w)}

	for _, h := range o.Header {
		out.line("# " + h)
	}

	if o.Materials != nil {
		mtl := &lineWriter{w: bufio.NewWriter(o.Materials)}
		writeMaterials(mtl, l)

		if err := mtl.flush(); err != nil {
			return err
		}

		if o.MaterialLib != "" {
			out.line("mtllib " + o.MaterialLib)
		}
	} else {
		writeMaterials(out, l)
	}

	var (
		vertex  int // last vertex index written, 1-based
		current string
		counts  = map[lang.Kind]int{}
	)

	use := func(c *lang.Color) {
		if name := MaterialName(c); name != current {
			out.line("usemtl " + name)
			current = name
		}
	}

	for _, p := range l.Prims {
		m := p.Meta()
		n := counts[p.Kind]
		counts[p.Kind]++

		out.line("")
		out.line(fmt.Sprintf("o %s%d", p.Kind, n))
		use(m.Color)

		switch p.Kind {
		case lang.KindStrip:
			base := vertex
			for _, v := range p.Strip.Vertices {
				out.vertex(v)
				vertex++
			}

			for _, t := range geom.StripOrder(len(p.Strip.Vertices)) {
				out.line(fmt.Sprintf("f %d %d %d", base+t[0]+1, base+t[1]+1, base+t[2]+1))
			}

		case lang.KindRay:
			out.vertex(p.Ray.Start())
			out.vertex(p.Ray.End())
			vertex += 2
			out.line(fmt.Sprintf("l %d %d", vertex-1, vertex))

		case lang.KindPoint:
			out.vertex(p.Point.Position)
			vertex++
			out.line(fmt.Sprintf("p %d", vertex))

		case lang.KindProcedural:
			vertex = out.box(p.Procedural.Bounds, p.Procedural.Opaque, vertex)
		}
	}

	if tree != nil {
		for i, node := range tree.Document.BoxNodes {
			if len(node.ChildNodes) == 0 {
				continue
			}

			out.line("")
			out.line(fmt.Sprintf("o box%d", i))
			use(nil)

			vertex = out.box(geom.Bounds{Min: node.MinBounds, Max: node.MaxBounds}, false, vertex)
		}
	}

	return out.flush()
}

// writeMaterials writes the default material and one material per distinct
// color of l, in order of first use.
func writeMaterials(out *lineWriter, l *geom.List) {
	seen := map[string]bool{DefaultMaterial: true}
	colors := []*lang.Color{nil}

	for _, p := range l.Prims {
		c := p.Meta().Color
		if name := MaterialName(c); !seen[name] {
			seen[name] = true
			colors = append(colors, c)
		}
	}

	for _, c := range colors {
		rgb := colorOf(c)

		out.line("")
		out.line("newmtl " + MaterialName(c))
		out.line("Kd " + formatFloat(rgb.R) + " " + formatFloat(rgb.G) + " " + formatFloat(rgb.B))
		out.line("Ks 0.5 0.5 0.5")
		out.line("Ns 18.0")
	}
}

// lineWriter writes lines until the first error, which it keeps.
type lineWriter struct {
	w   *bufio.Writer
	err error
}

func (lw *lineWriter) line(s string) {
	if lw.err != nil {
		return
	}

	if _, err := lw.w.WriteString(s); err != nil {
		lw.err = err

		return
	}

	lw.err = lw.w.WriteByte('\n')
}

func (lw *lineWriter) vertex(v linear.V3) {
	lw.line("v " + formatFloat(v[0]) + " " + formatFloat(v[1]) + " " + formatFloat(v[2]))
}

// box writes the corners of b after vertex base, then its faces when fill
// is set or its edges otherwise. It returns the last vertex index written.
func (lw *lineWriter) box(b geom.Bounds, fill bool, base int) int {
	for i := range 8 {
		lw.vertex(b.Corner(i))
	}

	elem := func(kind string, corners []int) {
		var sb strings.Builder

		sb.WriteString(kind)

		for _, c := range corners {
			sb.WriteString(" " + strconv.Itoa(base+c+1))
		}

		lw.line(sb.String())
	}

	if fill {
		for _, f := range boxFaces {
			elem("f", f[:])
		}
	} else {
		for _, e := range boxEdges {
			elem("l", e)
		}
	}

	return base + 8
}

func (lw *lineWriter) flush() error {
	if lw.err != nil {
		return lw.err
	}

	return lw.w.Flush()
}

// formatFloat formats f in the shortest exact decimal form, without
// exponent or negative zero.
func formatFloat(f float64) string {
	if f == 0 {
		f = 0
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}
