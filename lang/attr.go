package lang

import (
	"fmt"
	"log/slog"
	"math"
)

// Names of the typed attributes understood by the exporters.
const (
	AttrColor          = "color"
	AttrOpaque         = "opaque"
	AttrGeometryIndex  = "geometry_index"
	AttrPrimitiveIndex = "primitive_index"
)

// setAttr stores b in a if name is a typed attribute.
// It reports false for any other name.
func setAttr(a *Attributes, name string, b Binding) (bool, error) {
	switch name {
	case AttrColor:
		c, err := color(b)
		if err != nil {
			return true, err
		}

		a.Color = &c
	case AttrOpaque:
		if b.Kind != BindBool {
			return true, mismatch(name, "bool", b)
		}

		o := b.Bool
		a.Opaque = &o
	case AttrGeometryIndex:
		n, err := index(name, b)
		if err != nil {
			return true, err
		}

		a.GeometryIndex = &n
	case AttrPrimitiveIndex:
		n, err := index(name, b)
		if err != nil {
			return true, err
		}

		a.PrimitiveIndex = &n
	default:
		return false, nil
	}

	return true, nil
}

func color(b Binding) (Color, error) {
	var c Color

	if b.Kind != BindSequence || len(b.Sequence) != len(c) {
		return c, mismatch(AttrColor, "vector of 3 channels", b)
	}

	for i, ch := range b.Sequence {
		if ch.Kind != BindNumber || ch.Number < 0 || ch.Number > math.MaxUint8 {
			return c, ErrTypeMismatch.
				With(slog.String("field", AttrColor), slog.Int("channel", i)).
				Wrap(fmt.Errorf("color channel %d must be a number in [0, 255]", i))
		}

		c[i] = uint8(math.Round(ch.Number))
	}

	return c, nil
}

func index(name string, b Binding) (uint32, error) {
	if b.Kind != BindNumber || b.Number < 0 || b.Number > math.MaxUint32 ||
		b.Number != math.Trunc(b.Number) {
		return 0, mismatch(name, "non-negative integer", b)
	}

	return uint32(b.Number), nil
}

func mismatch(field, want string, b Binding) *Error {
	return ErrTypeMismatch.
		With(
			slog.String("field", field),
			slog.String("expected", want),
			slog.String("actual", b.Kind.String()),
		).
		Wrap(fmt.Errorf("%s must be a %s, not a %s", field, want, b.Kind))
}
