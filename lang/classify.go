package lang

import (
	"fmt"
	"log/slog"
)

// geometryKeys are the keys that make a mapping something other than a strip.
var geometryKeys = []string{"data", "instance", "ray", "origin", "direction", "point"}

// rayKeys are the keys of a ray given directly on its mapping.
var rayKeys = []string{"origin", "direction", "max", "extent"}

// rayAxisKeys are the ray keys a bounded custom object ({min, max}) never
// has.
var rayAxisKeys = []string{"origin", "direction"}

// Classify returns the object variant described by the keys of mapping m.
//
// The first matching rule wins:
//
//  1. strip without other geometry keys: [KindStrip]
//  2. data and instance: [KindCustom]
//  3. instance: [KindInstance]
//  4. ray, or origin or direction with at least one other of origin,
//     direction, max, extent: [KindRay]
//  5. data: [KindCustom] with children
//  6. point: [KindPoint]
//  7. anything else: [KindCustom] without children
//
// Classify looks only at keys. Field values are validated by [Build].
func Classify(m *Value) (Kind, error) {
	if m == nil || m.Type != TypeMapping {
		t := TypeNull
		if m != nil {
			t = m.Type
		}

		return KindCustom, ErrTypeMismatch.
			With(slog.String("actual", t.String())).
			Wrap(fmt.Errorf("object must be a mapping, not a %s", t))
	}

	switch {
	case m.Has("strip") && countKeys(m, geometryKeys) == 0:
		return KindStrip, nil
	case m.Has("data") && m.Has("instance"):
		return KindCustom, nil
	case m.Has("instance"):
		return KindInstance, nil
	case m.Has("ray") || (countKeys(m, rayAxisKeys) > 0 && countKeys(m, rayKeys) >= 2):
		return KindRay, nil
	case m.Has("data"):
		return KindCustom, nil
	case m.Has("point"):
		return KindPoint, nil
	default:
		return KindCustom, nil
	}
}

func countKeys(m *Value, keys []string) (n int) {
	for _, k := range keys {
		if m.Has(k) {
			n++
		}
	}

	return n
}
