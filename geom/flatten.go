package geom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ardnew/scenec/lang"
	"github.com/ardnew/scenec/linear"
	"github.com/ardnew/scenec/log"
)

// DefaultMaxDepth is the default limit on nested objects during
// flattening, counting both custom and instance levels.
const DefaultMaxDepth = 1024

// Option configures [Flatten].
type Option func(*flattener)

// WithLogger sets the logger used to trace the traversal.
func WithLogger(logger log.Logger) Option {
	return func(f *flattener) { f.logger = logger }
}

// WithMaxDepth sets the maximum traversal depth.
func WithMaxDepth(depth int) Option {
	return func(f *flattener) { f.maxDepth = depth }
}

// WithMaxInstancing limits the number of instance levels. 0 is unbounded,
// 1 allows no instances, 2 allows instances of objects without instances,
// and so on.
func WithMaxInstancing(levels int) Option {
	return func(f *flattener) { f.maxInstancing = levels }
}

// frame is the state inherited by the objects below a traversal point.
type frame struct {
	inherit   lang.Attributes
	fields    lang.Fields
	xform     linear.A
	depth     int
	instances int
}

type flattener struct {
	ctx           context.Context
	graph         *lang.Graph
	list          *List
	alloc         allocator
	logger        log.Logger
	maxDepth      int
	maxInstancing int
}

// Flatten walks g from its world object and returns the world-space geometry
// it describes.
//
// Custom objects pass their fields down unchanged in space. Instances also
// apply their transform to everything under their target. Fields set nearer
// to a primitive win, the primitive's own fields above all. A custom object
// with min and max vector fields is also a procedural primitive bounded by
// them. Primitive indices are assigned once the whole scene is known; see
// [allocator].
func Flatten(ctx context.Context, g *lang.Graph, opts ...Option) (*List, error) {
	if g == nil || g.Object(g.World) == nil {
		return nil, lang.ErrMissingWorldData.
			At([]string{lang.WorldName}).
			Wrap(errors.New("scene has no world object"))
	}

	f := &flattener{
		ctx:      ctx,
		graph:    g,
		list:     new(List),
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(f)
	}

	var root frame
	root.xform.I()

	if err := f.walk(g.World, root); err != nil {
		return nil, err
	}

	if err := f.alloc.assign(); err != nil {
		return nil, err
	}

	f.logger.DebugContext(ctx, "scene flattened",
		slog.Int("prims", len(f.list.Prims)),
		slog.Int("explicit_indices", len(f.alloc.claims)),
	)

	return f.list, nil
}

func (f *flattener) walk(ref lang.ObjectRef, fr frame) error {
	obj := f.graph.Object(ref)
	if obj == nil {
		return lang.ErrUnresolvedReference.
			With(slog.Int("ref", int(ref))).
			Wrap(fmt.Errorf("object %d is not in the scene", ref))
	}

	if fr.depth >= f.maxDepth {
		return lang.ErrMaxDepthExceeded.
			At(path(obj.Name)).
			With(slog.Int("max_depth", f.maxDepth))
	}

	fr.depth++

	f.logger.TraceContext(f.ctx, "flatten object",
		slog.String("path", obj.Name),
		slog.String("kind", obj.Kind.String()),
		slog.Int("depth", fr.depth),
	)

	switch obj.Kind {
	case lang.KindCustom:
		c := obj.Custom

		if b, ok := ownBounds(c); ok {
			rec := &Procedural{Bounds: b.Transform(&fr.xform)}
			rec.Meta = f.meta(ref, obj, fr, false)

			f.alloc.add(&rec.Meta, c.PrimitiveIndex)
			f.list.add(Prim{Kind: lang.KindProcedural, Procedural: rec})
		}

		fr.inherit = c.Attributes.Over(fr.inherit)
		fr.fields = c.Fields.Overlay(fr.fields)

		for _, child := range c.Children {
			if err := f.walk(child, fr); err != nil {
				return err
			}
		}

	case lang.KindInstance:
		in := obj.Instance

		fr.instances++
		if f.maxInstancing > 0 && fr.instances >= f.maxInstancing {
			return lang.ErrInstancingExceeded.
				At(path(obj.Name)).
				With(slog.Int("max_instancing", f.maxInstancing)).
				Wrap(fmt.Errorf("%d instance levels allowed", f.maxInstancing))
		}

		var local linear.A
		local.TRS(in.Translate, in.Rotate, in.Scale)
		fr.xform.Mul(&fr.xform, &local)

		fr.inherit = in.Attributes.Over(fr.inherit)
		fr.fields = in.Fields.Overlay(fr.fields)

		return f.walk(in.Target, fr)

	case lang.KindStrip:
		s := obj.Strip
		rec := &Strip{Vertices: make([]linear.V3, len(s.Vertices))}
		rec.Meta = f.meta(ref, obj, fr, true)

		for i, v := range s.Vertices {
			rec.Vertices[i] = linear.Clean(fr.xform.Point(v))
		}

		f.alloc.add(&rec.Meta, s.PrimitiveIndex)
		f.list.add(Prim{Kind: lang.KindStrip, Strip: rec})

	case lang.KindRay:
		r := obj.Ray
		rec := &Ray{
			Origin:    linear.Clean(fr.xform.Point(r.Origin)),
			Direction: linear.Clean(fr.xform.Vector(r.Direction)),
			Min:       r.Min,
			Max:       r.Max,
		}
		rec.Meta = f.meta(ref, obj, fr, true)

		f.alloc.add(&rec.Meta, r.PrimitiveIndex)
		f.list.add(Prim{Kind: lang.KindRay, Ray: rec})

	case lang.KindPoint:
		rec := &Point{Position: linear.Clean(fr.xform.Point(obj.Point.Position))}
		rec.Meta = f.meta(ref, obj, fr, true)

		f.list.add(Prim{Kind: lang.KindPoint, Point: rec})
	}

	return nil
}

// meta resolves the attributes of a primitive object under fr. Opaque
// applies when no enclosing object sets it.
func (f *flattener) meta(ref lang.ObjectRef, obj *lang.Object, fr frame, opaque bool) Meta {
	a := obj.Attrs().Over(fr.inherit)

	m := Meta{
		Fields: obj.UserFields().Overlay(fr.fields),
		Color:  a.Color,
		Name:   obj.Name,
		Source: ref,
		Opaque: opaque,
	}

	if a.Opaque != nil {
		m.Opaque = *a.Opaque
	}

	if a.GeometryIndex != nil {
		m.GeometryIndex = *a.GeometryIndex
	}

	return m
}

// ownBounds returns the box given by the min and max fields of c itself.
// Inherited fields do not count.
func ownBounds(c *lang.Custom) (Bounds, bool) {
	lo, ok := c.Fields.Get("min")
	if !ok {
		return Bounds{}, false
	}

	hi, ok := c.Fields.Get("max")
	if !ok {
		return Bounds{}, false
	}

	minV, okMin := lo.Vector()
	maxV, okMax := hi.Vector()

	if !okMin || !okMax {
		return Bounds{}, false
	}

	return EmptyBounds().Add(minV).Add(maxV), true
}
