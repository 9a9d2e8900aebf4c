package lang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/scenec/linear"
	"github.com/ardnew/scenec/log"
)

// DefaultMaxDepth is the default limit on object nesting.
const DefaultMaxDepth = 256

// WorldName is the path label of the document root.
const WorldName = "world"

// Option configures a scene build.
type Option func(*builder)

// WithMaxDepth sets the maximum nesting depth of objects.
func WithMaxDepth(depth int) Option {
	return func(b *builder) {
		b.maxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(b *builder) {
		b.logger = logger
	}
}

type builder struct {
	ctx      context.Context
	graph    *Graph
	scopes   *Resolver
	logger   log.Logger
	chain    []string
	maxDepth int
}

// Build compiles the document root into an object graph.
//
// The root must be a mapping with a data sequence; it becomes the world
// object. Every reference is resolved during the build. The first error
// aborts it and no graph is returned.
func Build(ctx context.Context, root *Value, opts ...Option) (*Graph, error) {
	b := &builder{
		ctx:      ctx,
		graph:    &Graph{World: NoObject},
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(b)
	}

	b.scopes = NewResolver(b.evaluate)

	if !root.Has("data") {
		return nil, ErrMissingWorldData.
			At([]string{WorldName}).
			Wrap(errors.New("document root must define data"))
	}

	world, err := b.object(root, WorldName)
	if err != nil {
		return nil, err
	}

	if b.graph.Objects[world].Kind != KindCustom {
		return nil, ErrMissingWorldData.
			At([]string{WorldName}).
			With(slog.String("kind", b.graph.Objects[world].Kind.String())).
			Wrap(errors.New("document root must be a custom object"))
	}

	b.graph.World = world

	b.logger.DebugContext(ctx, "scene built",
		slog.Int("objects", len(b.graph.Objects)),
	)

	return b.graph, nil
}

// fail attaches the current object path to err.
func (b *builder) fail(err error) error {
	return WrapError(err).At(b.chain)
}

// enter tracks name in the object chain until the returned func is called.
func (b *builder) enter(name string) (leave func(), err error) {
	if len(b.chain) >= b.maxDepth {
		return nil, ErrMaxDepthExceeded.
			At(b.chain).
			With(
				slog.Int("depth", len(b.chain)),
				slog.Int("max_depth", b.maxDepth),
			)
	}

	b.chain = append(b.chain, name)

	return func() { b.chain = b.chain[:len(b.chain)-1] }, nil
}

// object builds mapping v as a new object named name.
func (b *builder) object(v *Value, name string) (ObjectRef, error) {
	leave, err := b.enter(name)
	if err != nil {
		return NoObject, err
	}
	defer leave()

	kind, err := Classify(v)
	if err != nil {
		return NoObject, b.fail(err)
	}

	// Reserve the slot first so parents precede their children in the arena.
	ref := ObjectRef(len(b.graph.Objects))
	b.graph.Objects = append(b.graph.Objects, Object{
		Name: strings.Join(b.chain, "."),
		Kind: kind,
	})

	b.logger.TraceContext(b.ctx, "build object",
		slog.String("path", strings.Join(b.chain, ".")),
		slog.String("kind", kind.String()),
		slog.Int("depth", len(b.chain)),
	)

	var obj Object

	switch kind {
	case KindStrip:
		obj.Strip, err = b.strip(v)
	case KindRay:
		obj.Ray, err = b.ray(v)
	case KindInstance:
		obj.Instance, err = b.instance(v)
	case KindPoint:
		obj.Point, err = b.point(v)
	default:
		obj.Custom, err = b.custom(v)
	}

	if err != nil {
		return NoObject, b.fail(err)
	}

	obj.Name, obj.Kind = b.graph.Objects[ref].Name, kind
	b.graph.Objects[ref] = obj

	return ref, nil
}

// evaluate binds the source value of a field. It is the [Evaluator] of the
// builder's resolver.
func (b *builder) evaluate(name string, v *Value) (Binding, error) {
	return b.value(v, name)
}

// value resolves v in the current scope. Mappings are built as objects.
func (b *builder) value(v *Value, name string) (Binding, error) {
	switch v.Type {
	case TypeNumber:
		return Binding{Kind: BindNumber, Number: v.Number}, nil
	case TypeBool:
		return Binding{Kind: BindBool, Bool: v.Bool}, nil
	case TypeString:
		bind, err := b.scopes.Resolve(v.Text, ExpectAny)
		if err != nil {
			return Binding{}, b.fail(WrapError(err).With(slog.String("field", name)))
		}

		return bind, nil
	case TypeSequence:
		seq := Binding{Kind: BindSequence, Sequence: make([]Binding, len(v.Sequence))}
		for i, item := range v.Sequence {
			bind, err := b.value(item, fmt.Sprintf("%s[%d]", name, i))
			if err != nil {
				return Binding{}, err
			}

			seq.Sequence[i] = bind
		}

		return seq, nil
	case TypeMapping:
		ref, err := b.object(v, name)
		if err != nil {
			return Binding{}, err
		}

		return Binding{Kind: BindObject, Object: ref}, nil
	default:
		return Binding{}, b.fail(ErrTypeMismatch.
			With(slog.String("field", name)).
			Wrap(fmt.Errorf("%s has no value", name)))
	}
}

// fields binds every field of v whose key is not in skip, storing typed
// attributes in a and everything else in f. Fields are resolved in the
// current scope.
func (b *builder) fields(v *Value, a *Attributes, f *Fields, skip ...string) error {
	for _, fld := range v.Mapping {
		if contains(skip, fld.Key) {
			continue
		}

		if IsReserved(fld.Key) {
			return ErrReservedIdentifier.
				With(slog.String("field", fld.Key)).
				Wrap(fmt.Errorf("%q cannot name a field", fld.Key))
		}

		bind, err := b.value(fld.Value, fld.Key)
		if err != nil {
			return err
		}

		if err := b.assign(a, f, fld.Key, bind); err != nil {
			return err
		}
	}

	return nil
}

func (b *builder) assign(a *Attributes, f *Fields, name string, bind Binding) error {
	typed, err := setAttr(a, name, bind)
	if err != nil {
		return err
	}

	if !typed {
		f.set(name, bind)
	}

	return nil
}

// custom builds a custom object: its fields in a new scope, then its data.
func (b *builder) custom(v *Value) (*Custom, error) {
	c := new(Custom)

	data, hasData := v.Get("data")
	if hasData && data.Type != TypeSequence {
		return nil, ErrReservedIdentifier.
			With(slog.String("field", "data"), slog.String("actual", data.Type.String())).
			Wrap(fmt.Errorf("data must be a sequence of objects, not a %s", data.Type))
	}

	own := make([]*Field, 0, len(v.Mapping))

	for _, f := range v.Mapping {
		switch {
		case f.Key == "data":
		case f.Key == "instance" && hasData:
			b.logger.DebugContext(b.ctx, "ignoring instance on custom object",
				slog.String("path", strings.Join(b.chain, ".")),
			)
		default:
			own = append(own, f)
		}
	}

	pop, err := b.scopes.Push(strings.Join(b.chain, "."), own)
	if err != nil {
		return nil, err
	}
	defer pop()

	for _, f := range own {
		bind, err := b.scopes.Resolve(f.Key, ExpectAny)
		if err != nil {
			return nil, err
		}

		if err := b.assign(&c.Attributes, &c.Fields, f.Key, bind); err != nil {
			return nil, err
		}
	}

	if !hasData {
		return c, nil
	}

	for i, item := range data.Sequence {
		name := fmt.Sprintf("data[%d]", i)

		switch item.Type {
		case TypeMapping:
			ref, err := b.object(item, name)
			if err != nil {
				return nil, err
			}

			c.Children = append(c.Children, ref)
		case TypeString:
			bind, err := b.scopes.Resolve(item.Text, ExpectObject)
			if err != nil {
				return nil, WrapError(err).With(slog.String("field", name))
			}

			c.Children = append(c.Children, bind.Object)
		default:
			return nil, ErrTypeMismatch.
				With(slog.String("field", name), slog.String("actual", item.Type.String())).
				Wrap(fmt.Errorf("data entries must be objects, not a %s", item.Type))
		}
	}

	return c, nil
}

func (b *builder) strip(v *Value) (*Strip, error) {
	s := new(Strip)

	src, _ := v.Get("strip")

	verts, err := b.value(src, "strip")
	if err != nil {
		return nil, err
	}

	if verts.Kind != BindSequence {
		return nil, ErrMalformedStrip.
			With(slog.String("actual", verts.Kind.String())).
			Wrap(fmt.Errorf("strip must be a sequence of vertices, not a %s", verts.Kind))
	}

	if n := len(verts.Sequence); n < 3 {
		return nil, ErrMalformedStrip.
			With(slog.Int("vertices", n)).
			Wrap(fmt.Errorf("strip needs at least 3 vertices, found %d", n))
	}

	s.Vertices = make([]linear.V3, len(verts.Sequence))

	for i, vert := range verts.Sequence {
		p, ok := vert.Vector()
		if !ok {
			return nil, ErrTypeMismatch.
				With(slog.String("field", "strip"), slog.Int("vertex", i)).
				Wrap(fmt.Errorf("vertex %d must be a vector of 3 numbers", i))
		}

		s.Vertices[i] = p
	}

	return s, b.fields(v, &s.Attributes, &s.Fields, "strip")
}

func (b *builder) ray(v *Value) (*Ray, error) {
	r := new(Ray)
	src := v

	if nested, ok := v.Get("ray"); ok {
		if nested.Type != TypeMapping {
			return nil, ErrIncompleteRay.
				With(slog.String("actual", nested.Type.String())).
				Wrap(fmt.Errorf("ray must be a mapping, not a %s", nested.Type))
		}

		src = nested

		if err := b.fields(v, &r.Attributes, &r.Fields, "ray"); err != nil {
			return nil, err
		}
	}

	var missing []string

	vector := func(key string, dst *linear.V3) error {
		val, ok := src.Get(key)
		if !ok {
			missing = append(missing, key)

			return nil
		}

		bind, err := b.value(val, key)
		if err != nil {
			return err
		}

		p, ok := bind.Vector()
		if !ok {
			return mismatch(key, "vector of 3 numbers", bind)
		}

		*dst = p

		return nil
	}

	scalar := func(key string, dst *float64) (bool, error) {
		val, ok := src.Get(key)
		if !ok {
			return false, nil
		}

		bind, err := b.value(val, key)
		if err != nil {
			return true, err
		}

		if bind.Kind != BindNumber {
			return true, mismatch(key, "number", bind)
		}

		*dst = bind.Number

		return true, nil
	}

	if err := vector("origin", &r.Origin); err != nil {
		return nil, err
	}

	if err := vector("direction", &r.Direction); err != nil {
		return nil, err
	}

	hasMax, err := scalar("max", &r.Max)
	if err != nil {
		return nil, err
	}

	if !hasMax {
		if hasMax, err = scalar("extent", &r.Max); err != nil {
			return nil, err
		}
	}

	if !hasMax {
		missing = append(missing, "max")
	}

	if len(missing) > 0 {
		return nil, ErrIncompleteRay.
			With(slog.String("missing", strings.Join(missing, ","))).
			Wrap(fmt.Errorf("ray is missing %s", strings.Join(missing, ", ")))
	}

	if _, err := scalar("min", &r.Min); err != nil {
		return nil, err
	}

	if src == v {
		err = b.fields(v, &r.Attributes, &r.Fields,
			"origin", "direction", "max", "extent", "min")
	} else {
		err = b.fields(src, &r.Attributes, &r.Fields,
			"origin", "direction", "max", "extent", "min")
	}

	return r, err
}

func (b *builder) instance(v *Value) (*Instance, error) {
	in := &Instance{Scale: linear.V3{1, 1, 1}}

	target, _ := v.Get("instance")

	switch target.Type {
	case TypeString:
		bind, err := b.scopes.Resolve(target.Text, ExpectObject)
		if err != nil {
			return nil, WrapError(err).With(slog.String("field", "instance"))
		}

		in.Target = bind.Object
	case TypeMapping:
		ref, err := b.object(target, "instance")
		if err != nil {
			return nil, err
		}

		in.Target = ref
	default:
		return nil, ErrTypeMismatch.
			With(slog.String("field", "instance"), slog.String("actual", target.Type.String())).
			Wrap(fmt.Errorf("instance must refer to an object, not a %s", target.Type))
	}

	for _, t := range []struct {
		key string
		dst *linear.V3
	}{
		{"scale", &in.Scale},
		{"rotate", &in.Rotate},
		{"translate", &in.Translate},
	} {
		key, dst := t.key, t.dst

		val, ok := v.Get(key)
		if !ok {
			continue
		}

		bind, err := b.value(val, key)
		if err != nil {
			return nil, err
		}

		p, ok := bind.Vector()
		if !ok {
			return nil, mismatch(key, "vector of 3 numbers", bind)
		}

		*dst = p
	}

	return in, b.fields(v, &in.Attributes, &in.Fields,
		"instance", "scale", "rotate", "translate")
}

func (b *builder) point(v *Value) (*Point, error) {
	p := new(Point)

	src, _ := v.Get("point")

	bind, err := b.value(src, "point")
	if err != nil {
		return nil, err
	}

	pos, ok := bind.Vector()
	if !ok {
		return nil, mismatch("point", "vector of 3 numbers", bind)
	}

	p.Position = pos

	return p, b.fields(v, &p.Attributes, &p.Fields, "point")
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}

	return false
}
