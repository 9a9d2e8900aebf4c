package export

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/scenec/geom"
	"github.com/ardnew/scenec/lang"
)

// Node majors of a [NodeRef]. Major 1 addresses instance_nodes, which stays
// empty because instancing is resolved during flattening.
const (
	MajorBox        uint32 = 0
	MajorTriangle   uint32 = 2
	MajorProcedural uint32 = 3
)

// NodeRef addresses a node as [major, minor]: the node list and the index
// within it.
type NodeRef [2]uint32

// BoxNode is an axis-aligned box over child nodes.
type BoxNode struct {
	MinBounds  [3]float64 `json:"min_bounds"  yaml:"min_bounds"`
	MaxBounds  [3]float64 `json:"max_bounds"  yaml:"max_bounds"`
	ChildNodes []NodeRef  `json:"child_nodes" yaml:"child_nodes"`
}

// TriangleNode is one triangle.
type TriangleNode struct {
	GeometryIndex  uint32        `json:"geometry_index"  yaml:"geometry_index"`
	PrimitiveIndex uint32        `json:"primitive_index" yaml:"primitive_index"`
	Opaque         bool          `json:"opaque"          yaml:"opaque"`
	Vertices       [3][3]float64 `json:"vertices"        yaml:"vertices"`
	Color          *[3]int       `json:"color,omitempty" yaml:"color,omitempty"`
}

// ProceduralNode is a box whose contents the interpreter intersects with
// user code.
type ProceduralNode struct {
	GeometryIndex  uint32     `json:"geometry_index"  yaml:"geometry_index"`
	PrimitiveIndex uint32     `json:"primitive_index" yaml:"primitive_index"`
	Opaque         bool       `json:"opaque"          yaml:"opaque"`
	MinBounds      [3]float64 `json:"min_bounds"      yaml:"min_bounds"`
	MaxBounds      [3]float64 `json:"max_bounds"      yaml:"max_bounds"`
	Color          *[3]int    `json:"color,omitempty" yaml:"color,omitempty"`
}

// RayNode is one query ray.
type RayNode struct {
	GeometryIndex  uint32     `json:"geometry_index"  yaml:"geometry_index"`
	PrimitiveIndex uint32     `json:"primitive_index" yaml:"primitive_index"`
	Opaque         bool       `json:"opaque"          yaml:"opaque"`
	Origin         [3]float64 `json:"origin"          yaml:"origin"`
	Direction      [3]float64 `json:"direction"       yaml:"direction"`
	Min            float64    `json:"min"             yaml:"min"`
	Max            float64    `json:"max"             yaml:"max"`
	Color          *[3]int    `json:"color,omitempty" yaml:"color,omitempty"`
}

// Document is the acceleration structure read by the ray-tracing
// interpreter. The interpreter expects every node list, so InstanceNodes is
// written as an empty list.
type Document struct {
	Tlas            NodeRef          `json:"tlas"             yaml:"tlas"`
	BoxNodes        []BoxNode        `json:"box_nodes"        yaml:"box_nodes"`
	InstanceNodes   []struct{}       `json:"instance_nodes"   yaml:"instance_nodes"`
	TriangleNodes   []TriangleNode   `json:"triangle_nodes"   yaml:"triangle_nodes"`
	ProceduralNodes []ProceduralNode `json:"procedural_nodes" yaml:"procedural_nodes"`
	RayNodes        []RayNode        `json:"ray_nodes"        yaml:"ray_nodes"`
}

// ErrBoxSize is returned for a box size that cannot bound a tree.
var ErrBoxSize = errors.New("box size must be 0 or at least 2")

// Bvh exports triangles, procedural boxes and rays as a [Document]. Points
// are dropped.
type Bvh struct {
	Document Document
	// Indent is the indentation width of the encoded output. Zero writes
	// compact JSON or flow-style YAML.
	Indent int
}

// NewBvh builds the document for l.
//
// Triangles and procedural boxes are grouped into a tree of boxes with at
// most boxSize children each, split at the median centroid along the
// longest axis. A boxSize of 0 puts every leaf directly under one root box.
// The root box is always box_nodes[0], and boxes are listed in preorder.
func NewBvh(l *geom.List, boxSize int) (*Bvh, error) {
	if err := CheckBoxSize(boxSize); err != nil {
		return nil, err
	}

	doc := Document{
		Tlas:            NodeRef{MajorBox, 0},
		BoxNodes:        []BoxNode{},
		InstanceNodes:   []struct{}{},
		TriangleNodes:   []TriangleNode{},
		ProceduralNodes: []ProceduralNode{},
		RayNodes:        []RayNode{},
	}

	var leaves []leaf

	for _, p := range l.Prims {
		switch p.Kind {
		case lang.KindStrip:
			for _, t := range geom.Triangulate(p.Strip) {
				leaves = append(leaves, leaf{
					bounds: geom.TriangleBounds(t),
					ref:    NodeRef{MajorTriangle, uint32(len(doc.TriangleNodes))},
				})

				doc.TriangleNodes = append(doc.TriangleNodes, TriangleNode{
					GeometryIndex:  t.GeometryIndex,
					PrimitiveIndex: t.PrimitiveIndex,
					Opaque:         t.Opaque,
					Vertices:       [3][3]float64{t.Vertices[0], t.Vertices[1], t.Vertices[2]},
					Color:          color(t.Color),
				})
			}

		case lang.KindProcedural:
			pr := p.Procedural
			leaves = append(leaves, leaf{
				bounds: pr.Bounds,
				ref:    NodeRef{MajorProcedural, uint32(len(doc.ProceduralNodes))},
			})

			doc.ProceduralNodes = append(doc.ProceduralNodes, ProceduralNode{
				GeometryIndex:  pr.GeometryIndex,
				PrimitiveIndex: pr.PrimitiveIndex,
				Opaque:         pr.Opaque,
				MinBounds:      pr.Bounds.Min,
				MaxBounds:      pr.Bounds.Max,
				Color:          color(pr.Color),
			})
		}
	}

	for r := range l.Rays() {
		doc.RayNodes = append(doc.RayNodes, RayNode{
			GeometryIndex:  r.GeometryIndex,
			PrimitiveIndex: r.PrimitiveIndex,
			Opaque:         r.Opaque,
			Origin:         r.Origin,
			Direction:      r.Direction,
			Min:            r.Min,
			Max:            r.Max,
			Color:          color(r.Color),
		})
	}

	b := boxer{doc: &doc, size: boxSize}
	b.box(leaves)

	return &Bvh{Document: doc, Indent: 2}, nil
}

// CheckBoxSize reports whether size can bound a tree.
func CheckBoxSize(size int) error {
	if size == 1 || size < 0 {
		return fmt.Errorf("%w: %d", ErrBoxSize, size)
	}

	return nil
}

// Encode writes the document to w.
func (b *Bvh) Encode(ctx context.Context, w io.Writer, enc Encoding) error {
	switch enc {
	case EncodingJSON:
		var (
			data []byte
			err  error
		)

		if b.Indent > 0 {
			data, err = json.MarshalIndent(b.Document, "", strings.Repeat(" ", b.Indent))
		} else {
			data, err = json.Marshal(b.Document)
		}

		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case EncodingYAML:
		var opts []yaml.EncodeOption
		if b.Indent > 0 {
			opts = append(opts, yaml.Indent(b.Indent))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		data, err := yaml.MarshalContext(ctx, b.Document, opts...)
		if err != nil {
			return err
		}

		_, err = w.Write(data)

		return err

	default:
		return fmt.Errorf("%w: encoding %d", ErrUnknownFormat, enc)
	}
}

func color(c *lang.Color) *[3]int {
	if c == nil {
		return nil
	}

	return &[3]int{int(c[0]), int(c[1]), int(c[2])}
}

type leaf struct {
	bounds geom.Bounds
	ref    NodeRef
}

type boxer struct {
	doc  *Document
	size int
}

// box appends the box over leaves and its descendants, returning its index.
func (b *boxer) box(leaves []leaf) uint32 {
	idx := uint32(len(b.doc.BoxNodes))
	b.doc.BoxNodes = append(b.doc.BoxNodes, BoxNode{ChildNodes: []NodeRef{}})

	bounds := geom.EmptyBounds()
	for _, lf := range leaves {
		bounds = bounds.Union(lf.bounds)
	}

	var children []NodeRef

	if b.size == 0 || len(leaves) <= b.size {
		for _, lf := range leaves {
			children = append(children, lf.ref)
		}
	} else {
		for _, part := range b.split(leaves) {
			children = append(children, NodeRef{MajorBox, b.box(part)})
		}
	}

	node := &b.doc.BoxNodes[idx]
	if children != nil {
		node.ChildNodes = children
	}

	if !bounds.Empty() {
		node.MinBounds, node.MaxBounds = bounds.Min, bounds.Max
	}

	return idx
}

// split halves leaves at the median centroid along the longest axis of
// their centroids. Ties keep document order.
func (b *boxer) split(leaves []leaf) [2][]leaf {
	centroids := geom.EmptyBounds()
	for _, lf := range leaves {
		centroids = centroids.Add(lf.bounds.Centroid())
	}

	axis := centroids.LongestAxis()

	sorted := slices.Clone(leaves)
	slices.SortStableFunc(sorted, func(x, y leaf) int {
		return cmp.Compare(x.bounds.Centroid()[axis], y.bounds.Centroid()[axis])
	})

	mid := len(sorted) / 2

	return [2][]leaf{sorted[:mid], sorted[mid:]}
}
