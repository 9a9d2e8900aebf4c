package lang

//go:generate go tool stringer --linecomment --type Kind,BindingKind --output kind_string.go

import (
	"iter"

	"github.com/ardnew/scenec/linear"
)

// Kind identifies the variant of an [Object].
type Kind int

const (
	KindCustom   Kind = iota // custom
	KindStrip                // strip
	KindRay                  // ray
	KindInstance             // instance
	KindPoint                // point
	// KindProcedural is never classified. Flattening produces it from a
	// custom object with min and max bounds.
	KindProcedural // procedural
)

// ObjectRef addresses an [Object] in the arena of a [Graph].
type ObjectRef int

// NoObject is the zero-value sentinel for an unset [ObjectRef].
const NoObject ObjectRef = -1

// Object is one node of a compiled scene.
// Exactly one of the variant pointers, selected by Kind, is non-nil.
type Object struct {
	Name     string // dotted path from the world root
	Strip    *Strip
	Ray      *Ray
	Instance *Instance
	Custom   *Custom
	Point    *Point
	Kind     Kind
}

// Attrs returns the typed attributes of o's variant.
func (o *Object) Attrs() Attributes {
	switch o.Kind {
	case KindStrip:
		return o.Strip.Attributes
	case KindRay:
		return o.Ray.Attributes
	case KindInstance:
		return o.Instance.Attributes
	case KindPoint:
		return o.Point.Attributes
	default:
		return o.Custom.Attributes
	}
}

// UserFields returns the untyped fields of o's variant.
func (o *Object) UserFields() Fields {
	switch o.Kind {
	case KindStrip:
		return o.Strip.Fields
	case KindRay:
		return o.Ray.Fields
	case KindInstance:
		return o.Instance.Fields
	case KindPoint:
		return o.Point.Fields
	default:
		return o.Custom.Fields
	}
}

// Strip is a triangle strip of at least three vertices.
type Strip struct {
	Fields
	Attributes

	Vertices []linear.V3
}

// Ray is a parametric segment origin + t·direction for t in [Min, Max].
type Ray struct {
	Fields
	Attributes

	Origin    linear.V3
	Direction linear.V3
	Min       float64
	Max       float64
}

// Instance places its Target with a scale, rotation (degrees) and
// translation.
type Instance struct {
	Fields
	Attributes

	Target    ObjectRef
	Scale     linear.V3
	Rotate    linear.V3
	Translate linear.V3
}

// Custom carries inheritable fields and an ordered list of children.
type Custom struct {
	Fields
	Attributes

	Children []ObjectRef
}

// Point marks a single position. It has no ray-tracing counterpart.
type Point struct {
	Fields
	Attributes

	Position linear.V3
}

// Color is an 8-bit RGB triple.
type Color [3]uint8

// Attributes holds the typed fields understood by the exporters.
// A nil member is unset and may be inherited.
type Attributes struct {
	Color          *Color
	Opaque         *bool
	GeometryIndex  *uint32
	PrimitiveIndex *uint32
}

// Over returns a with every unset member taken from inherited.
// PrimitiveIndex identifies a single primitive and is never inherited.
func (a Attributes) Over(inherited Attributes) Attributes {
	if a.Color == nil {
		a.Color = inherited.Color
	}

	if a.Opaque == nil {
		a.Opaque = inherited.Opaque
	}

	if a.GeometryIndex == nil {
		a.GeometryIndex = inherited.GeometryIndex
	}

	return a
}

// Fields is an ordered set of named bindings.
type Fields struct {
	values map[string]Binding
	keys   []string
}

// Get returns the binding named key.
func (f Fields) Get(key string) (Binding, bool) {
	b, ok := f.values[key]

	return b, ok
}

// Len returns the number of fields.
func (f Fields) Len() int { return len(f.keys) }

// All returns an iterator over the fields in declaration order.
func (f Fields) All() iter.Seq2[string, Binding] {
	return func(yield func(string, Binding) bool) {
		for _, k := range f.keys {
			if !yield(k, f.values[k]) {
				return
			}
		}
	}
}

// Overlay returns the union of f and inherited, with f winning on collision.
func (f Fields) Overlay(inherited Fields) Fields {
	if inherited.Len() == 0 {
		return f
	}

	if f.Len() == 0 {
		return inherited
	}

	var u Fields

	for k, b := range inherited.All() {
		if _, own := f.values[k]; !own {
			u.set(k, b)
		}
	}

	for k, b := range f.All() {
		u.set(k, b)
	}

	return u
}

func (f *Fields) set(key string, b Binding) {
	if f.values == nil {
		f.values = make(map[string]Binding)
	}

	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}

	f.values[key] = b
}

// BindingKind identifies the kind of a resolved [Binding].
type BindingKind int

const (
	BindNumber   BindingKind = iota // number
	BindBool                        // bool
	BindSequence                    // sequence
	BindObject                      // object
)

// Binding is a fully resolved field value: a literal or an object reference.
type Binding struct {
	Sequence []Binding
	Number   float64
	Object   ObjectRef
	Kind     BindingKind
	Bool     bool
}

// Native returns b as plain Go values: float64, bool, []any, or
// [ObjectRef].
func (b Binding) Native() any {
	switch b.Kind {
	case BindNumber:
		return b.Number
	case BindBool:
		return b.Bool
	case BindSequence:
		s := make([]any, len(b.Sequence))
		for i := range b.Sequence {
			s[i] = b.Sequence[i].Native()
		}

		return s
	default:
		return b.Object
	}
}

// Vector returns b as a 3-vector if it is a sequence of three numbers.
func (b Binding) Vector() (linear.V3, bool) {
	var v linear.V3

	if b.Kind != BindSequence || len(b.Sequence) != len(v) {
		return v, false
	}

	for i, c := range b.Sequence {
		if c.Kind != BindNumber {
			return v, false
		}

		v[i] = c.Number
	}

	return v, true
}

// Graph is the arena of objects compiled from one scene document.
type Graph struct {
	Objects []Object
	World   ObjectRef
}

// Object returns the object addressed by ref.
func (g *Graph) Object(ref ObjectRef) *Object {
	if ref < 0 || int(ref) >= len(g.Objects) {
		return nil
	}

	return &g.Objects[ref]
}

// Len returns the number of objects in g, reachable or not.
func (g *Graph) Len() int { return len(g.Objects) }
